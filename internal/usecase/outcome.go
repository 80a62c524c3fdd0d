package usecase

import "github.com/LuanMakohin/api-simples/internal/domain"

// SettlementOutcome describes what one settlement attempt observed or did.
type SettlementOutcome struct {
	Kind   domain.TaskKind
	ID     string
	Status domain.Status
	Reason string
	Value  string
	// Changed is false when the movement was already terminal (duplicate delivery).
	Changed bool
	// Notified is true when the sink acknowledged the completion notice.
	Notified bool
}
