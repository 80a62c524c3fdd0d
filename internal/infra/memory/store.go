// Package memory implements the ledger ports in process. Units of work are serialized
// and rolled back from a snapshot, which gives the same isolation the postgres store
// gets from row locks.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/shopspring/decimal"
)

type userRecord struct {
	user    domain.User
	deleted bool
}

type transferRecord struct {
	transfer domain.Transfer
	deleted  bool
}

type depositRecord struct {
	deposit domain.Deposit
	deleted bool
}

type txMarker struct {
	store *Store
}

// Store holds users, transfers and deposits and implements gateway.TransactionManager.
type Store struct {
	// txMu serializes units of work and standalone writes.
	txMu sync.Mutex
	mu   sync.RWMutex

	nextUserID int64
	users      map[int64]userRecord
	transfers  map[string]transferRecord
	deposits   map[string]depositRecord

	now func() time.Time
}

var _ gateway.TransactionManager = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		users:     make(map[int64]userRecord),
		transfers: make(map[string]transferRecord),
		deposits:  make(map[string]depositRecord),
		now:       time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() gateway.UserRepository         { return &userRepository{store: s} }
func (s *Store) Transfers() gateway.TransferRepository { return &transferRepository{store: s} }
func (s *Store) Deposits() gateway.DepositRepository   { return &depositRepository{store: s} }

type snapshot struct {
	nextUserID int64
	users      map[int64]userRecord
	transfers  map[string]transferRecord
	deposits   map[string]depositRecord
}

// Run executes fn atomically. Any error restores the state seen when Run started.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		nextUserID: s.nextUserID,
		users:      maps.Clone(s.users),
		transfers:  maps.Clone(s.transfers),
		deposits:   maps.Clone(s.deposits),
	}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, gateway.TransactionKey, &txMarker{store: s})); err != nil {
		s.mu.Lock()
		s.nextUserID = snap.nextUserID
		s.users, s.transfers, s.deposits = snap.users, snap.transfers, snap.deposits
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) inTx(ctx context.Context) bool {
	marker, ok := gateway.TxFrom(ctx).(*txMarker)
	return ok && marker.store == s
}

func (s *Store) write(ctx context.Context, fn func() error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

// TotalBalance sums every live user balance.
func (s *Store) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	s.read(func() {
		for _, rec := range s.users {
			if !rec.deleted {
				total = total.Add(rec.user.Balance)
			}
		}
	})
	return total
}
