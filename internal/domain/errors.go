package domain

import "errors"

var (
	ErrInvalidAmount       = errors.New("value must be a positive amount with at most two decimal places")
	ErrSelfTransfer        = errors.New("payer and payee must be different users")
	ErrUnauthorizedPayer   = errors.New("business accounts cannot send transfers")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserInUse           = errors.New("user is referenced by pending movements")
	ErrInvalidUser         = errors.New("invalid user data")
	ErrUserExists          = errors.New("user already exists")
	ErrTransferNotFound    = errors.New("transfer not found")
	ErrDepositNotFound     = errors.New("deposit not found")
	ErrAlreadyFinalized    = errors.New("movement already finalized")
	ErrMovementPending     = errors.New("movement is still pending settlement")
)
