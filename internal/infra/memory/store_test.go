package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, s *Store, document, balance string) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:     "user " + document,
		Email:    document + "@example.com",
		Document: document,
		Type:     domain.UserTypeIndividual,
		Balance:  decimal.RequireFromString(balance),
	}
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

func TestStore_RunRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	payer := seedUser(t, s, "11111111111", "100")
	payee := seedUser(t, s, "22222222222", "0")
	transfer := &domain.Transfer{Payer: payer.ID, Payee: payee.ID, Value: decimal.NewFromInt(40)}
	require.NoError(t, s.Transfers().Create(ctx, transfer))

	boom := errors.New("boom")
	err := s.Run(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Users().Debit(ctx, payer.ID, transfer.Value))
		require.NoError(t, s.Users().Credit(ctx, payee.ID, transfer.Value))
		require.NoError(t, s.Transfers().Finalize(ctx, transfer.ID, domain.StatusCompleted, ""))
		return boom
	})

	assert.ErrorIs(t, err, boom)
	got, err := s.Users().GetByID(ctx, payer.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(100)))
	stored, err := s.Transfers().GetByID(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestStore_RunCommits(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := seedUser(t, s, "11111111111", "10")

	require.NoError(t, s.Run(ctx, func(ctx context.Context) error {
		return s.Users().Credit(ctx, user.ID, decimal.NewFromInt(5))
	}))

	got, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(15)))
}

func TestUserRepository_DebitNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := seedUser(t, s, "11111111111", "10")

	assert.ErrorIs(t, s.Users().Debit(ctx, user.ID, decimal.RequireFromString("10.01")), domain.ErrInsufficientBalance)
	assert.NoError(t, s.Users().Debit(ctx, user.ID, decimal.NewFromInt(10)))

	got, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}

func TestUserRepository_UniqueEmailAndDocument(t *testing.T) {
	s := NewStore()
	seedUser(t, s, "11111111111", "0")

	dup := &domain.User{Name: "x", Email: "other@example.com", Document: "11111111111", Type: domain.UserTypeBusiness}
	assert.ErrorIs(t, s.Users().Create(context.Background(), dup), domain.ErrUserExists)
}

func TestTransferRepository_FinalizeOnlyOnce(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	transfer := &domain.Transfer{Payer: 1, Payee: 2, Value: decimal.NewFromInt(1)}
	require.NoError(t, s.Transfers().Create(ctx, transfer))

	require.NoError(t, s.Transfers().Finalize(ctx, transfer.ID, domain.StatusFailed, domain.ReasonAuthorizationDenied))
	assert.ErrorIs(t, s.Transfers().Finalize(ctx, transfer.ID, domain.StatusCompleted, ""), domain.ErrAlreadyFinalized)
	assert.ErrorIs(t, s.Transfers().Finalize(ctx, "missing", domain.StatusCompleted, ""), domain.ErrTransferNotFound)

	stored, err := s.Transfers().GetByID(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, domain.ReasonAuthorizationDenied, stored.FailureReason)
}

func TestUserRepository_SoftDeleteRefusedWhilePending(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	user := seedUser(t, s, "11111111111", "0")
	deposit := &domain.Deposit{Receiver: user.ID, Value: decimal.NewFromInt(3)}
	require.NoError(t, s.Deposits().Create(ctx, deposit))

	assert.ErrorIs(t, s.Users().SoftDelete(ctx, user.ID), domain.ErrUserInUse)

	require.NoError(t, s.Deposits().Finalize(ctx, deposit.ID, domain.StatusCompleted, ""))
	require.NoError(t, s.Users().SoftDelete(ctx, user.ID))
	_, err := s.Users().GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, s.Users().SoftDelete(ctx, user.ID), domain.ErrUserNotFound)
}
