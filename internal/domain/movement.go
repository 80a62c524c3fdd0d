package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether no further transition can happen.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Reasons recorded on failed movements.
const (
	ReasonAuthorizationDenied      = "authorization_denied"
	ReasonAuthorizationUnavailable = "authorization_unavailable"
	ReasonInsufficientBalance      = "insufficient_balance"
	ReasonEnqueueFailed            = "enqueue_failed"
	ReasonPartyMissing             = "party_missing"
)

// Transfer moves Value from Payer to Payee.
type Transfer struct {
	ID            string
	Payer         int64
	Payee         int64
	Value         decimal.Decimal
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the invariants that do not need the ledger.
func (t *Transfer) Validate() error {
	if err := ValidateAmount(t.Value); err != nil {
		return err
	}
	if t.Payer == t.Payee {
		return ErrSelfTransfer
	}
	return nil
}

// Deposit credits Value to Receiver.
type Deposit struct {
	ID            string
	Receiver      int64
	Value         decimal.Decimal
	Status        Status
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
