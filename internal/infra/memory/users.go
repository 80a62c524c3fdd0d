package memory

import (
	"context"
	"sort"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/shopspring/decimal"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	s := r.store
	return s.write(ctx, func() error {
		for _, rec := range s.users {
			if rec.user.Email == user.Email || rec.user.Document == user.Document {
				return domain.ErrUserExists
			}
		}
		s.nextUserID++
		now := s.now()
		user.ID = s.nextUserID
		user.CreatedAt, user.UpdatedAt = now, now
		s.users[user.ID] = userRecord{user: *user}
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.store.read(func() {
		var rec userRecord
		rec, ok = r.store.users[id]
		ok = ok && !rec.deleted
		user = rec.user
	})
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

// GetByIDForUpdate needs no extra locking: callers already hold the unit of work.
func (r *userRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) List(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	r.store.read(func() {
		for _, rec := range r.store.users {
			if !rec.deleted {
				users = append(users, rec.user)
			}
		}
	})
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *userRepository) UpdateDetails(ctx context.Context, user *domain.User) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.users[user.ID]
		if !ok || rec.deleted {
			return domain.ErrUserNotFound
		}
		for id, other := range s.users {
			if id != user.ID && (other.user.Email == user.Email || other.user.Document == user.Document) {
				return domain.ErrUserExists
			}
		}
		rec.user.Name, rec.user.Email = user.Name, user.Email
		rec.user.Document, rec.user.Type = user.Document, user.Type
		rec.user.UpdatedAt = s.now()
		s.users[user.ID] = rec
		*user = rec.user
		return nil
	})
}

func (r *userRepository) SoftDelete(ctx context.Context, id int64) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.users[id]
		if !ok || rec.deleted {
			return domain.ErrUserNotFound
		}
		for _, t := range s.transfers {
			if t.transfer.Status == domain.StatusPending && (t.transfer.Payer == id || t.transfer.Payee == id) {
				return domain.ErrUserInUse
			}
		}
		for _, d := range s.deposits {
			if d.deposit.Status == domain.StatusPending && d.deposit.Receiver == id {
				return domain.ErrUserInUse
			}
		}
		rec.deleted = true
		s.users[id] = rec
		return nil
	})
}

func (r *userRepository) Debit(ctx context.Context, id int64, amount decimal.Decimal) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.users[id]
		if !ok || rec.deleted {
			return domain.ErrUserNotFound
		}
		if rec.user.Balance.LessThan(amount) {
			return domain.ErrInsufficientBalance
		}
		rec.user.Balance = rec.user.Balance.Sub(amount)
		rec.user.UpdatedAt = s.now()
		s.users[id] = rec
		return nil
	})
}

func (r *userRepository) Credit(ctx context.Context, id int64, amount decimal.Decimal) error {
	s := r.store
	return s.write(ctx, func() error {
		rec, ok := s.users[id]
		if !ok || rec.deleted {
			return domain.ErrUserNotFound
		}
		rec.user.Balance = rec.user.Balance.Add(amount)
		rec.user.UpdatedAt = s.now()
		s.users[id] = rec
		return nil
	})
}

func (r *userRepository) WithTx(gateway.TransactionObject) gateway.UserRepository {
	return r
}
