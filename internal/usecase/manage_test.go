package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/LuanMakohin/api-simples/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestManageTransfers_Update(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ledger, *ManageTransfersUseCase, *domain.Transfer, *domain.User, *domain.User) {
		l := newLedger()
		payer := l.addUser(t, domain.UserTypeIndividual, "100")
		payee := l.addUser(t, domain.UserTypeIndividual, "0")
		transfer := l.pendingTransfer(t, payer.ID, payee.ID, "10")
		return l, NewManageTransfers(l.transfers, l.users, RecentOptions{}), transfer, payer, payee
	}

	t.Run("changes value without touching status or balances", func(t *testing.T) {
		l, manage, transfer, payer, _ := setup(t)
		value := money("15.75")

		updated, err := manage.Update(ctx, transfer.ID, UpdateTransferInput{Value: &value})

		require.NoError(t, err)
		assert.True(t, updated.Value.Equal(value))
		assert.Equal(t, domain.StatusPending, updated.Status)
		assert.True(t, l.balance(t, payer.ID).Equal(money("100")))
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		_, manage, transfer, payer, _ := setup(t)
		_, err := manage.Update(ctx, transfer.ID, UpdateTransferInput{Payee: &payer.ID})
		assert.ErrorIs(t, err, domain.ErrSelfTransfer)
	})

	t.Run("rejects business payer", func(t *testing.T) {
		l, manage, transfer, _, _ := setup(t)
		business := l.addUser(t, domain.UserTypeBusiness, "100")
		_, err := manage.Update(ctx, transfer.ID, UpdateTransferInput{Payer: &business.ID})
		assert.ErrorIs(t, err, domain.ErrUnauthorizedPayer)
	})

	t.Run("rejects unknown payee", func(t *testing.T) {
		_, manage, transfer, _, _ := setup(t)
		missing := int64(404)
		_, err := manage.Update(ctx, transfer.ID, UpdateTransferInput{Payee: &missing})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("rejects invalid value", func(t *testing.T) {
		_, manage, transfer, _, _ := setup(t)
		value := money("-1")
		_, err := manage.Update(ctx, transfer.ID, UpdateTransferInput{Value: &value})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("unknown transfer", func(t *testing.T) {
		_, manage, _, _, _ := setup(t)
		_, err := manage.Update(ctx, "nope", UpdateTransferInput{})
		assert.ErrorIs(t, err, domain.ErrTransferNotFound)
	})
}

func TestManageTransfers_Delete(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	payer := l.addUser(t, domain.UserTypeIndividual, "100")
	payee := l.addUser(t, domain.UserTypeIndividual, "0")
	transfer := l.pendingTransfer(t, payer.ID, payee.ID, "10")
	manage := NewManageTransfers(l.transfers, l.users, RecentOptions{})

	assert.ErrorIs(t, manage.Delete(ctx, transfer.ID), domain.ErrMovementPending)

	require.NoError(t, l.transfers.Finalize(ctx, transfer.ID, domain.StatusFailed, domain.ReasonAuthorizationDenied))
	require.NoError(t, manage.Delete(ctx, transfer.ID))

	_, err := manage.Find(ctx, transfer.ID)
	assert.ErrorIs(t, err, domain.ErrTransferNotFound)
	assert.ErrorIs(t, manage.Delete(ctx, transfer.ID), domain.ErrTransferNotFound)
}

func TestManageTransfers_FindLastsIsReadThrough(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	payer := l.addUser(t, domain.UserTypeIndividual, "100")
	payee := l.addUser(t, domain.UserTypeIndividual, "0")

	// Older than the window.
	l.store.SetClock(func() time.Time { return time.Now().Add(-5 * time.Minute) })
	l.pendingTransfer(t, payer.ID, payee.ID, "1")
	l.store.SetClock(time.Now)
	recent := l.pendingTransfer(t, payer.ID, payee.ID, "2")

	cache := memory.NewCache()
	manage := NewManageTransfers(l.transfers, l.users, RecentOptions{Cache: cache, Window: time.Minute, TTL: time.Hour})

	lasts, err := manage.FindLasts(ctx)
	require.NoError(t, err)
	require.Len(t, lasts, 1)
	assert.Equal(t, recent.ID, lasts[0].ID)

	raw, err := cache.Get(ctx, RecentTransfersKey)
	require.NoError(t, err)
	assert.NotNil(t, raw)

	// Written behind the cache's back: invisible until invalidation.
	l.pendingTransfer(t, payer.ID, payee.ID, "3")
	lasts, err = manage.FindLasts(ctx)
	require.NoError(t, err)
	assert.Len(t, lasts, 1)

	manage.InvalidateRecent(ctx)
	lasts, err = manage.FindLasts(ctx)
	require.NoError(t, err)
	assert.Len(t, lasts, 2)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, assert.AnError }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return assert.AnError
}
func (failingCache) Invalidate(context.Context, string) error { return assert.AnError }

func TestManageDeposits_FindLastsSurvivesCacheOutage(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	receiver := l.addUser(t, domain.UserTypeIndividual, "0")
	l.pendingDeposit(t, receiver.ID, "10")

	var cache gateway.RecentCache = failingCache{}
	manage := NewManageDeposits(l.deposits, l.users, RecentOptions{Cache: cache})

	lasts, err := manage.FindLasts(ctx)
	require.NoError(t, err)
	assert.Len(t, lasts, 1)
}

func TestManageDeposits_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	receiver := l.addUser(t, domain.UserTypeIndividual, "0")
	other := l.addUser(t, domain.UserTypeBusiness, "0")
	deposit := l.pendingDeposit(t, receiver.ID, "10")
	manage := NewManageDeposits(l.deposits, l.users, RecentOptions{})

	updated, err := manage.Update(ctx, deposit.ID, UpdateDepositInput{Receiver: &other.ID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.Receiver)
	assert.Equal(t, domain.StatusPending, updated.Status)

	missing := int64(77)
	_, err = manage.Update(ctx, deposit.ID, UpdateDepositInput{Receiver: &missing})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.ErrorIs(t, manage.Delete(ctx, deposit.ID), domain.ErrMovementPending)
	require.NoError(t, l.deposits.Finalize(ctx, deposit.ID, domain.StatusCompleted, ""))
	assert.NoError(t, manage.Delete(ctx, deposit.ID))
}

func TestManageUsers(t *testing.T) {
	ctx := context.Background()
	l := newLedger()
	manage := NewManageUsers(l.users)

	user, err := manage.Create(ctx, &domain.User{
		Name:     "Ana",
		Email:    "ana@example.com",
		Document: "98765432100",
		Type:     domain.UserTypeIndividual,
		Balance:  money("10"),
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	_, err = manage.Create(ctx, &domain.User{Name: "Ana 2", Email: "ana@example.com", Document: "98765432101", Type: domain.UserTypeIndividual})
	assert.ErrorIs(t, err, domain.ErrUserExists)

	_, err = manage.Create(ctx, &domain.User{Name: "", Email: "x@example.com", Document: "11111111111", Type: domain.UserTypeIndividual})
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	other := l.addUser(t, domain.UserTypeIndividual, "0")
	transfer := l.pendingTransfer(t, user.ID, other.ID, "5")
	assert.ErrorIs(t, manage.Delete(ctx, other.ID), domain.ErrUserInUse)

	notifier := new(MockNotifier)
	notifier.On("Send", mock.Anything, mock.Anything).Return(nil)
	_, err = newSettleTransfer(l, gateway.DecisionAuthorized, notifier, nil).Execute(ctx, transfer.ID)
	require.NoError(t, err)

	require.NoError(t, manage.Delete(ctx, other.ID))
	_, err = manage.Find(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestManageUsers_Update(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("changes profile but never balance", func(t *testing.T) {
		l := newLedger()
		manage := NewManageUsers(l.users)
		user := l.addUser(t, domain.UserTypeIndividual, "42.50")
		business := domain.UserTypeBusiness

		updated, err := manage.Update(ctx, user.ID, UpdateUserInput{
			Name:     strPtr("Loja da Ana"),
			Document: strPtr("12345678000199"),
			Type:     &business,
		})
		require.NoError(t, err)
		assert.Equal(t, "Loja da Ana", updated.Name)
		assert.Equal(t, domain.UserTypeBusiness, updated.Type)
		assert.Equal(t, user.Email, updated.Email)
		assert.True(t, l.balance(t, user.ID).Equal(money("42.50")))
	})

	t.Run("revalidates", func(t *testing.T) {
		l := newLedger()
		manage := NewManageUsers(l.users)
		user := l.addUser(t, domain.UserTypeIndividual, "0")

		_, err := manage.Update(ctx, user.ID, UpdateUserInput{Document: strPtr("123")})
		assert.ErrorIs(t, err, domain.ErrInvalidUser)
		_, err = manage.Update(ctx, user.ID, UpdateUserInput{Email: strPtr("not-an-email")})
		assert.ErrorIs(t, err, domain.ErrInvalidUser)

		stored, err := manage.Find(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Document, stored.Document)
	})

	t.Run("email and document stay unique", func(t *testing.T) {
		l := newLedger()
		manage := NewManageUsers(l.users)
		first := l.addUser(t, domain.UserTypeIndividual, "0")
		second := l.addUser(t, domain.UserTypeIndividual, "0")

		_, err := manage.Update(ctx, second.ID, UpdateUserInput{Email: strPtr(first.Email)})
		assert.ErrorIs(t, err, domain.ErrUserExists)

		_, err = manage.Update(ctx, second.ID, UpdateUserInput{Email: strPtr(second.Email)})
		assert.NoError(t, err, "keeping its own email is not a conflict")
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := NewManageUsers(newLedger().users).Update(ctx, 99, UpdateUserInput{Name: strPtr("x")})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
