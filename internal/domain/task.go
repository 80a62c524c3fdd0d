package domain

type TaskKind string

const (
	TaskTransfer TaskKind = "transfer"
	TaskDeposit  TaskKind = "deposit"
)

// SettlementTask is the queue payload asking a worker to settle one movement.
type SettlementTask struct {
	Kind    TaskKind `json:"kind"`
	ID      string   `json:"id"`
	Attempt int      `json:"attempt"`
}
