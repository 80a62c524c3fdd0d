package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdmitTransfer_Success(t *testing.T) {
	l := newLedger()
	payer := l.addUser(t, domain.UserTypeIndividual, "100.00")
	payee := l.addUser(t, domain.UserTypeBusiness, "0")
	publisher := &recordingPublisher{}

	transfer, err := NewAdmitTransfer(l.users, l.transfers, publisher).Execute(context.Background(), AdmitTransferInput{
		Payer: payer.ID,
		Payee: payee.ID,
		Value: money("30.00"),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, transfer.ID)
	assert.Equal(t, domain.StatusPending, transfer.Status)
	assert.Equal(t, []domain.SettlementTask{{Kind: domain.TaskTransfer, ID: transfer.ID}}, publisher.Tasks())
	assert.True(t, l.balance(t, payer.ID).Equal(money("100")), "admission never moves money")
}

func TestAdmitTransfer_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payer   string // "individual", "business" or "missing"
		balance string
		self    bool
		value   string
		wantErr error
	}{
		{name: "zero value", payer: "individual", balance: "100", value: "0", wantErr: domain.ErrInvalidAmount},
		{name: "negative value", payer: "individual", balance: "100", value: "-5", wantErr: domain.ErrInvalidAmount},
		{name: "three decimals", payer: "individual", balance: "100", value: "10.001", wantErr: domain.ErrInvalidAmount},
		{name: "invalid amount wins over self transfer", payer: "individual", balance: "100", self: true, value: "0", wantErr: domain.ErrInvalidAmount},
		{name: "self transfer", payer: "individual", balance: "100", self: true, value: "10", wantErr: domain.ErrSelfTransfer},
		{name: "unknown payer", payer: "missing", balance: "100", value: "10", wantErr: domain.ErrUserNotFound},
		{name: "business payer", payer: "business", balance: "1000", value: "10", wantErr: domain.ErrUnauthorizedPayer},
		{name: "business payer wins over insufficient balance", payer: "business", balance: "0", value: "10", wantErr: domain.ErrUnauthorizedPayer},
		{name: "insufficient balance", payer: "individual", balance: "50.00", value: "200.00", wantErr: domain.ErrInsufficientBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			payee := l.addUser(t, domain.UserTypeIndividual, "0")
			payerID := int64(999)
			switch tt.payer {
			case "individual":
				payerID = l.addUser(t, domain.UserTypeIndividual, tt.balance).ID
			case "business":
				payerID = l.addUser(t, domain.UserTypeBusiness, tt.balance).ID
			}
			payeeID := payee.ID
			if tt.self {
				payeeID = payerID
			}
			publisher := new(MockPublisher)

			_, err := NewAdmitTransfer(l.users, l.transfers, publisher).Execute(context.Background(), AdmitTransferInput{
				Payer: payerID,
				Payee: payeeID,
				Value: money(tt.value),
			})

			assert.ErrorIs(t, err, tt.wantErr)
			all, listErr := l.transfers.List(context.Background())
			require.NoError(t, listErr)
			assert.Empty(t, all, "rejected transfers leave no record")
			publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestAdmitTransfer_EnqueueFailureMarksFailed(t *testing.T) {
	l := newLedger()
	payer := l.addUser(t, domain.UserTypeIndividual, "100")
	payee := l.addUser(t, domain.UserTypeIndividual, "0")
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	_, err := NewAdmitTransfer(l.users, l.transfers, publisher).Execute(context.Background(), AdmitTransferInput{
		Payer: payer.ID,
		Payee: payee.ID,
		Value: money("10"),
	})

	require.Error(t, err)
	all, err := l.transfers.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusFailed, all[0].Status)
	assert.Equal(t, domain.ReasonEnqueueFailed, all[0].FailureReason)
	publisher.AssertExpectations(t)
}

func TestAdmitDeposit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		l := newLedger()
		receiver := l.addUser(t, domain.UserTypeBusiness, "0")
		publisher := &recordingPublisher{}

		deposit, err := NewAdmitDeposit(l.users, l.deposits, publisher).Execute(context.Background(), AdmitDepositInput{
			Receiver: receiver.ID,
			Value:    money("75.25"),
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, deposit.Status)
		assert.Equal(t, []domain.SettlementTask{{Kind: domain.TaskDeposit, ID: deposit.ID}}, publisher.Tasks())
	})

	t.Run("invalid amount", func(t *testing.T) {
		l := newLedger()
		receiver := l.addUser(t, domain.UserTypeIndividual, "0")

		_, err := NewAdmitDeposit(l.users, l.deposits, &recordingPublisher{}).Execute(context.Background(), AdmitDepositInput{
			Receiver: receiver.ID,
			Value:    money("0.001"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		l := newLedger()

		_, err := NewAdmitDeposit(l.users, l.deposits, &recordingPublisher{}).Execute(context.Background(), AdmitDepositInput{
			Receiver: 42,
			Value:    money("10"),
		})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
