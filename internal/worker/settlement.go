package worker

import (
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/LuanMakohin/api-simples/internal/usecase"
)

// Dependencies are the ports the settlement side needs. Audit and NotificationLog may be nil.
type Dependencies struct {
	Users           gateway.UserRepository
	Transfers       gateway.TransferRepository
	Deposits        gateway.DepositRepository
	Transactions    gateway.TransactionManager
	Authorizer      gateway.Authorizer
	Notifier        gateway.Notifier
	NotificationLog gateway.NotificationLog
	Audit           gateway.AuditRepository
	Metrics         gateway.Metrics
}

// NewSettlementDispatcher builds both settlement use cases behind one dispatcher.
func NewSettlementDispatcher(deps Dependencies) *Dispatcher {
	notifications := usecase.NewNotificationDispatcher(deps.Notifier, deps.NotificationLog, deps.Metrics)
	transfers := usecase.NewSettleTransfer(deps.Users, deps.Transfers, deps.Transactions, deps.Authorizer, notifications, deps.Metrics)
	deposits := usecase.NewSettleDeposit(deps.Users, deps.Deposits, deps.Transactions, deps.Authorizer, notifications, deps.Metrics)
	return NewDispatcher(transfers, deposits, deps.Audit, deps.Metrics)
}
