package memory

import (
	"context"
	"sort"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/google/uuid"
)

type transferRepository struct {
	store *Store
}

func (r *transferRepository) Create(ctx context.Context, transfer *domain.Transfer) error {
	s := r.store
	return s.write(ctx, func() error {
		if transfer.ID == "" {
			transfer.ID = uuid.NewString()
		}
		if transfer.Status == "" {
			transfer.Status = domain.StatusPending
		}
		now := s.now()
		transfer.CreatedAt, transfer.UpdatedAt = now, now
		s.transfers[transfer.ID] = transferRecord{transfer: *transfer}
		return nil
	})
}

func (r *transferRepository) GetByID(_ context.Context, id string) (*domain.Transfer, error) {
	var (
		rec transferRecord
		ok  bool
	)
	r.store.read(func() { rec, ok = r.store.transfers[id] })
	if !ok || rec.deleted {
		return nil, domain.ErrTransferNotFound
	}
	return &rec.transfer, nil
}

func (r *transferRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepository) List(ctx context.Context) ([]domain.Transfer, error) {
	return r.UpdatedSince(ctx, time.Time{})
}

func (r *transferRepository) UpdatedSince(_ context.Context, since time.Time) ([]domain.Transfer, error) {
	var transfers []domain.Transfer
	r.store.read(func() {
		for _, rec := range r.store.transfers {
			if !rec.deleted && !rec.transfer.UpdatedAt.Before(since) {
				transfers = append(transfers, rec.transfer)
			}
		}
	})
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].CreatedAt.Before(transfers[j].CreatedAt) })
	return transfers, nil
}

func (r *transferRepository) UpdateDetails(ctx context.Context, transfer *domain.Transfer) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.transfers[transfer.ID]
		if !ok || rec.deleted {
			return domain.ErrTransferNotFound
		}
		rec.transfer.Payer, rec.transfer.Payee, rec.transfer.Value = transfer.Payer, transfer.Payee, transfer.Value
		rec.transfer.UpdatedAt = s.now()
		s.transfers[transfer.ID] = rec
		*transfer = rec.transfer
		return nil
	})
}

func (r *transferRepository) Finalize(ctx context.Context, id string, status domain.Status, reason string) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.transfers[id]
		if !ok {
			return domain.ErrTransferNotFound
		}
		if rec.transfer.Status != domain.StatusPending {
			return domain.ErrAlreadyFinalized
		}
		rec.transfer.Status, rec.transfer.FailureReason = status, reason
		rec.transfer.UpdatedAt = s.now()
		s.transfers[id] = rec
		return nil
	})
}

func (r *transferRepository) SoftDelete(ctx context.Context, id string) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.transfers[id]
		if !ok || rec.deleted {
			return domain.ErrTransferNotFound
		}
		rec.deleted = true
		s.transfers[id] = rec
		return nil
	})
}

func (r *transferRepository) WithTx(gateway.TransactionObject) gateway.TransferRepository {
	return r
}

type depositRepository struct {
	store *Store
}

func (r *depositRepository) Create(ctx context.Context, deposit *domain.Deposit) error {
	s := r.store
	return s.write(ctx, func() error {
		if deposit.ID == "" {
			deposit.ID = uuid.NewString()
		}
		if deposit.Status == "" {
			deposit.Status = domain.StatusPending
		}
		now := s.now()
		deposit.CreatedAt, deposit.UpdatedAt = now, now
		s.deposits[deposit.ID] = depositRecord{deposit: *deposit}
		return nil
	})
}

func (r *depositRepository) GetByID(_ context.Context, id string) (*domain.Deposit, error) {
	var (
		rec depositRecord
		ok  bool
	)
	r.store.read(func() { rec, ok = r.store.deposits[id] })
	if !ok || rec.deleted {
		return nil, domain.ErrDepositNotFound
	}
	return &rec.deposit, nil
}

func (r *depositRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Deposit, error) {
	return r.GetByID(ctx, id)
}

func (r *depositRepository) List(ctx context.Context) ([]domain.Deposit, error) {
	return r.UpdatedSince(ctx, time.Time{})
}

func (r *depositRepository) UpdatedSince(_ context.Context, since time.Time) ([]domain.Deposit, error) {
	var deposits []domain.Deposit
	r.store.read(func() {
		for _, rec := range r.store.deposits {
			if !rec.deleted && !rec.deposit.UpdatedAt.Before(since) {
				deposits = append(deposits, rec.deposit)
			}
		}
	})
	sort.Slice(deposits, func(i, j int) bool { return deposits[i].CreatedAt.Before(deposits[j].CreatedAt) })
	return deposits, nil
}

func (r *depositRepository) UpdateDetails(ctx context.Context, deposit *domain.Deposit) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.deposits[deposit.ID]
		if !ok || rec.deleted {
			return domain.ErrDepositNotFound
		}
		rec.deposit.Receiver, rec.deposit.Value = deposit.Receiver, deposit.Value
		rec.deposit.UpdatedAt = s.now()
		s.deposits[deposit.ID] = rec
		*deposit = rec.deposit
		return nil
	})
}

func (r *depositRepository) Finalize(ctx context.Context, id string, status domain.Status, reason string) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.deposits[id]
		if !ok {
			return domain.ErrDepositNotFound
		}
		if rec.deposit.Status != domain.StatusPending {
			return domain.ErrAlreadyFinalized
		}
		rec.deposit.Status, rec.deposit.FailureReason = status, reason
		rec.deposit.UpdatedAt = s.now()
		s.deposits[id] = rec
		return nil
	})
}

func (r *depositRepository) SoftDelete(ctx context.Context, id string) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.deposits[id]
		if !ok || rec.deleted {
			return domain.ErrDepositNotFound
		}
		rec.deleted = true
		s.deposits[id] = rec
		return nil
	})
}

func (r *depositRepository) WithTx(gateway.TransactionObject) gateway.DepositRepository {
	return r
}
