package gateway

import "context"

// Decision is the outcome of a single authorization attempt.
type Decision int

const (
	DecisionUnavailable Decision = iota
	DecisionAuthorized
	DecisionDenied
)

func (d Decision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionDenied:
		return "denied"
	default:
		return "unavailable"
	}
}

type Authorizer interface {
	Authorize(ctx context.Context) Decision
}
