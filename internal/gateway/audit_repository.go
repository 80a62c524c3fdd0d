package gateway

import (
	"context"
	"time"
)

// AuditEntry records one settlement attempt that changed a movement.
type AuditEntry struct {
	EntityID    string
	Kind        string
	Status      string
	Reason      string
	Value       string
	Attempt     int
	ProcessedAt time.Time
}

type AuditRepository interface {
	Save(ctx context.Context, entry AuditEntry) error
}
