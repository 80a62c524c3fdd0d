package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/LuanMakohin/api-simples/internal/infra/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubAuthorizer struct {
	decision gateway.Decision
	calls    atomic.Int32
	// onAuthorize runs before the decision is returned.
	onAuthorize func()
}

func (s *stubAuthorizer) Authorize(context.Context) gateway.Decision {
	s.calls.Add(1)
	if s.onAuthorize != nil {
		s.onAuthorize()
	}
	return s.decision
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, n gateway.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, task domain.SettlementTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// recordingPublisher accepts every task.
type recordingPublisher struct {
	mu    sync.Mutex
	tasks []domain.SettlementTask
}

func (p *recordingPublisher) Publish(_ context.Context, task domain.SettlementTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return nil
}

func (p *recordingPublisher) Tasks() []domain.SettlementTask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SettlementTask(nil), p.tasks...)
}

type ledger struct {
	store     *memory.Store
	users     gateway.UserRepository
	transfers gateway.TransferRepository
	deposits  gateway.DepositRepository
	seq       int
}

func newLedger() *ledger {
	store := memory.NewStore()
	return &ledger{
		store:     store,
		users:     store.Users(),
		transfers: store.Transfers(),
		deposits:  store.Deposits(),
	}
}

func (l *ledger) addUser(t *testing.T, userType domain.UserType, balance string) *domain.User {
	t.Helper()
	l.seq++
	user := &domain.User{
		Name:     fmt.Sprintf("user %d", l.seq),
		Email:    fmt.Sprintf("user%d@example.com", l.seq),
		Document: fmt.Sprintf("%011d", l.seq),
		Type:     userType,
		Balance:  decimal.RequireFromString(balance),
	}
	require.NoError(t, l.users.Create(context.Background(), user))
	return user
}

func (l *ledger) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()
	user, err := l.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return user.Balance
}

func (l *ledger) transfer(t *testing.T, id string) *domain.Transfer {
	t.Helper()
	transfer, err := l.transfers.GetByID(context.Background(), id)
	require.NoError(t, err)
	return transfer
}

// pendingTransfer stores a pending transfer directly, skipping admission checks.
func (l *ledger) pendingTransfer(t *testing.T, payer, payee int64, value string) *domain.Transfer {
	t.Helper()
	transfer := &domain.Transfer{Payer: payer, Payee: payee, Value: decimal.RequireFromString(value)}
	require.NoError(t, l.transfers.Create(context.Background(), transfer))
	return transfer
}

func (l *ledger) pendingDeposit(t *testing.T, receiver int64, value string) *domain.Deposit {
	t.Helper()
	deposit := &domain.Deposit{Receiver: receiver, Value: decimal.RequireFromString(value)}
	require.NoError(t, l.deposits.Create(context.Background(), deposit))
	return deposit
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
