package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/rs/zerolog/log"
)

// SettleDepositUseCase credits an authorized deposit. Credits cannot be insufficient, so
// a deposit only fails on authorization or a receiver removed after admission.
type SettleDepositUseCase struct {
	userRepository     gateway.UserRepository
	depositRepository  gateway.DepositRepository
	transactionManager gateway.TransactionManager
	authorizer         gateway.Authorizer
	notifications      *NotificationDispatcher
	metrics            gateway.Metrics
}

func NewSettleDeposit(
	userRepo gateway.UserRepository,
	depositRepo gateway.DepositRepository,
	txManager gateway.TransactionManager,
	authorizer gateway.Authorizer,
	notifications *NotificationDispatcher,
	metrics gateway.Metrics,
) *SettleDepositUseCase {
	if metrics == nil {
		metrics = gateway.NoopMetrics{}
	}
	return &SettleDepositUseCase{
		userRepository:     userRepo,
		depositRepository:  depositRepo,
		transactionManager: txManager,
		authorizer:         authorizer,
		notifications:      notifications,
		metrics:            metrics,
	}
}

func (u *SettleDepositUseCase) Execute(ctx context.Context, id string) (*SettlementOutcome, error) {
	deposit, err := u.depositRepository.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load deposit %s: %w", id, err)
	}

	outcome := &SettlementOutcome{
		Kind:   domain.TaskDeposit,
		ID:     id,
		Status: deposit.Status,
		Reason: deposit.FailureReason,
		Value:  deposit.Value.StringFixed(domain.MoneyScale),
	}
	if deposit.Status.IsTerminal() {
		log.Debug().Str("deposit_id", id).Str("status", string(deposit.Status)).Msg("deposit already settled, skipping")
		return outcome, nil
	}

	// Same oracle as transfers, consulted before any lock is taken.
	decision := u.authorizer.Authorize(ctx)
	u.metrics.ObserveGateway("authorization", decision.String())
	if decision != gateway.DecisionAuthorized {
		reason := domain.ReasonAuthorizationDenied
		if decision == gateway.DecisionUnavailable {
			reason = domain.ReasonAuthorizationUnavailable
		}
		if err := u.fail(ctx, u.depositRepository, outcome, reason); err != nil {
			return nil, err
		}
		log.Warn().Str("deposit_id", id).Str("reason", reason).Msg("deposit not authorized")
		return outcome, nil
	}

	err = u.transactionManager.Run(ctx, func(contextWithTx context.Context) error {
		transactionObject := gateway.TxFrom(contextWithTx)
		if transactionObject == nil {
			return fmt.Errorf("transaction missing from context")
		}
		userRepoTx := u.userRepository.WithTx(transactionObject)
		depositRepoTx := u.depositRepository.WithTx(transactionObject)

		// Deposit row first, then the receiver: the same order transfers use.
		current, err := depositRepoTx.GetByIDForUpdate(contextWithTx, id)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			outcome.Status, outcome.Reason = current.Status, current.FailureReason
			return nil
		}
		outcome.Value = current.Value.StringFixed(domain.MoneyScale)

		_, err = userRepoTx.GetByIDForUpdate(contextWithTx, current.Receiver)
		if errors.Is(err, domain.ErrUserNotFound) {
			return u.fail(contextWithTx, depositRepoTx, outcome, domain.ReasonPartyMissing)
		}
		if err != nil {
			return fmt.Errorf("failed to lock user %d: %w", current.Receiver, err)
		}

		// A credit has no insufficiency case; credit and status commit together.
		if err := userRepoTx.Credit(contextWithTx, current.Receiver, current.Value); err != nil {
			return fmt.Errorf("failed to credit receiver %d: %w", current.Receiver, err)
		}
		if err := depositRepoTx.Finalize(contextWithTx, id, domain.StatusCompleted, ""); err != nil {
			return fmt.Errorf("failed to complete deposit: %w", err)
		}
		outcome.Status, outcome.Reason, outcome.Changed = domain.StatusCompleted, "", true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle deposit %s: %w", id, err)
	}

	switch {
	case !outcome.Changed:
		log.Debug().Str("deposit_id", id).Msg("deposit settled concurrently by another delivery")
	case outcome.Status == domain.StatusCompleted:
		log.Info().Str("deposit_id", id).Str("value", outcome.Value).Msg("deposit completed")
		outcome.Notified = u.notifications.Dispatch(ctx, gateway.Notification{EntityID: id, Status: string(outcome.Status)})
	default:
		log.Warn().Str("deposit_id", id).Str("reason", outcome.Reason).Msg("deposit failed")
	}
	return outcome, nil
}

// fail mirrors SettleTransferUseCase.fail for deposits.
func (u *SettleDepositUseCase) fail(ctx context.Context, repo gateway.DepositRepository, outcome *SettlementOutcome, reason string) error {
	err := repo.Finalize(ctx, outcome.ID, domain.StatusFailed, reason)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		stored, err := repo.GetByID(ctx, outcome.ID)
		if err != nil {
			return fmt.Errorf("failed to reload deposit %s: %w", outcome.ID, err)
		}
		outcome.Status, outcome.Reason = stored.Status, stored.FailureReason
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to mark deposit %s as failed: %w", outcome.ID, err)
	}
	outcome.Status, outcome.Reason, outcome.Changed = domain.StatusFailed, reason, true
	return nil
}
