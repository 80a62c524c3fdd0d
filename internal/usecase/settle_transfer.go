package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

// SettleTransferUseCase is the asynchronous half of a transfer: authorization, the
// atomic balance movement and the completion notice.
type SettleTransferUseCase struct {
	userRepository     gateway.UserRepository
	transferRepository gateway.TransferRepository
	transactionManager gateway.TransactionManager
	authorizer         gateway.Authorizer
	notifications      *NotificationDispatcher
	metrics            gateway.Metrics
}

func NewSettleTransfer(
	userRepo gateway.UserRepository,
	transferRepo gateway.TransferRepository,
	txManager gateway.TransactionManager,
	authorizer gateway.Authorizer,
	notifications *NotificationDispatcher,
	metrics gateway.Metrics,
) *SettleTransferUseCase {
	if metrics == nil {
		metrics = gateway.NoopMetrics{}
	}
	return &SettleTransferUseCase{
		userRepository:     userRepo,
		transferRepository: transferRepo,
		transactionManager: txManager,
		authorizer:         authorizer,
		notifications:      notifications,
		metrics:            metrics,
	}
}

// Execute is safe to call any number of times for the same id.
func (u *SettleTransferUseCase) Execute(ctx context.Context, id string) (*SettlementOutcome, error) {
	transfer, err := u.transferRepository.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transfer %s: %w", id, err)
	}

	outcome := &SettlementOutcome{
		Kind:   domain.TaskTransfer,
		ID:     id,
		Status: transfer.Status,
		Reason: transfer.FailureReason,
		Value:  transfer.Value.StringFixed(domain.MoneyScale),
	}
	// Redelivery of a settled transfer: report what is stored and do nothing else.
	if transfer.Status.IsTerminal() {
		log.Debug().Str("transfer_id", id).Str("status", string(transfer.Status)).Msg("transfer already settled, skipping")
		return outcome, nil
	}

	// The oracle is asked outside the transaction; no row lock is held across the HTTP call.
	// Denied and unavailable are both final; the task is not retried.
	decision := u.authorizer.Authorize(ctx)
	u.metrics.ObserveGateway("authorization", decision.String())
	if decision != gateway.DecisionAuthorized {
		reason := domain.ReasonAuthorizationDenied
		if decision == gateway.DecisionUnavailable {
			reason = domain.ReasonAuthorizationUnavailable
		}
		if err := u.fail(ctx, u.transferRepository, outcome, reason); err != nil {
			return nil, err
		}
		log.Warn().Str("transfer_id", id).Str("reason", reason).Msg("transfer not authorized")
		return outcome, nil
	}

	// Run commits on nil and rolls back on error: balance moves and the status change
	// land together or not at all.
	err = u.transactionManager.Run(ctx, func(contextWithTx context.Context) error {
		// The unit of work put its transaction in the context; bind the repositories to it.
		transactionObject := gateway.TxFrom(contextWithTx)
		if transactionObject == nil {
			return fmt.Errorf("transaction missing from context")
		}
		userRepoTx := u.userRepository.WithTx(transactionObject)
		transferRepoTx := u.transferRepository.WithTx(transactionObject)

		// Lock the transfer row first. A concurrent delivery either waits here or
		// finds the transfer already terminal once it gets the lock.
		current, err := transferRepoTx.GetByIDForUpdate(contextWithTx, id)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			outcome.Status, outcome.Reason = current.Status, current.FailureReason
			return nil
		}
		outcome.Value = current.Value.StringFixed(domain.MoneyScale)

		// Lock both users in id order so A->B and B->A cannot deadlock.
		firstID, secondID := current.Payer, current.Payee
		if firstID > secondID {
			firstID, secondID = secondID, firstID
		}
		first, err := userRepoTx.GetByIDForUpdate(contextWithTx, firstID)
		if errors.Is(err, domain.ErrUserNotFound) {
			// A party removed after admission can never be settled against.
			return u.fail(contextWithTx, transferRepoTx, outcome, domain.ReasonPartyMissing)
		}
		if err != nil {
			return fmt.Errorf("failed to lock user %d: %w", firstID, err)
		}
		second, err := userRepoTx.GetByIDForUpdate(contextWithTx, secondID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return u.fail(contextWithTx, transferRepoTx, outcome, domain.ReasonPartyMissing)
		}
		if err != nil {
			return fmt.Errorf("failed to lock user %d: %w", secondID, err)
		}
		payer := first
		if second.ID == current.Payer {
			payer = second
		}

		// Balances are re-read under lock; admission saw an older value.
		if !payer.HasSufficientFunds(current.Value) {
			return u.fail(contextWithTx, transferRepoTx, outcome, domain.ReasonInsufficientBalance)
		}

		// Debit is guarded by balance >= value in the store as well.
		if err := userRepoTx.Debit(contextWithTx, current.Payer, current.Value); err != nil {
			return fmt.Errorf("failed to debit payer %d: %w", current.Payer, err)
		}
		if err := userRepoTx.Credit(contextWithTx, current.Payee, current.Value); err != nil {
			return fmt.Errorf("failed to credit payee %d: %w", current.Payee, err)
		}
		// Finalize only matches pending rows.
		if err := transferRepoTx.Finalize(contextWithTx, id, domain.StatusCompleted, ""); err != nil {
			return fmt.Errorf("failed to complete transfer: %w", err)
		}
		outcome.Status, outcome.Reason, outcome.Changed = domain.StatusCompleted, "", true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle transfer %s: %w", id, err)
	}

	// Committed. The notice is best effort and never changes the stored status.
	switch {
	case !outcome.Changed:
		log.Debug().Str("transfer_id", id).Msg("transfer settled concurrently by another delivery")
	case outcome.Status == domain.StatusCompleted:
		log.Info().Str("transfer_id", id).Str("value", outcome.Value).Msg("transfer completed")
		outcome.Notified = u.notifications.Dispatch(ctx, gateway.Notification{EntityID: id, Status: string(outcome.Status)})
	default:
		log.Warn().Str("transfer_id", id).Str("reason", outcome.Reason).Msg("transfer failed")
	}
	return outcome, nil
}

// fail marks the transfer failed. When another delivery finalized it first, the
// outcome reports that stored status instead.
func (u *SettleTransferUseCase) fail(ctx context.Context, repo gateway.TransferRepository, outcome *SettlementOutcome, reason string) error {
	err := repo.Finalize(ctx, outcome.ID, domain.StatusFailed, reason)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		stored, err := repo.GetByID(ctx, outcome.ID)
		if err != nil {
			return fmt.Errorf("failed to reload transfer %s: %w", outcome.ID, err)
		}
		outcome.Status, outcome.Reason = stored.Status, stored.FailureReason
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark transfer %s as failed: %w", outcome.ID, err)
	}
	outcome.Status, outcome.Reason, outcome.Changed = domain.StatusFailed, reason, true
	return nil
}
