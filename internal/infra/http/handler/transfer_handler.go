package handler

import (
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes transfer admission and administration over HTTP.
type TransferHandler struct {
	admit  *usecase.AdmitTransferUseCase
	manage *usecase.ManageTransfersUseCase
}

func NewTransferHandler(admit *usecase.AdmitTransferUseCase, manage *usecase.ManageTransfersUseCase) *TransferHandler {
	return &TransferHandler{admit: admit, manage: manage}
}

type CreateTransferRequest struct {
	Payer int64           `json:"payer"`
	Payee int64           `json:"payee"`
	Value decimal.Decimal `json:"value"`
}

type UpdateTransferRequest struct {
	Payer *int64           `json:"payer"`
	Payee *int64           `json:"payee"`
	Value *decimal.Decimal `json:"value"`
}

type TransferResponse struct {
	ID            string    `json:"id"`
	Payer         int64     `json:"payer"`
	Payee         int64     `json:"payee"`
	Value         string    `json:"value"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toTransferResponse(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:            t.ID,
		Payer:         t.Payer,
		Payee:         t.Payee,
		Value:         t.Value.StringFixed(domain.MoneyScale),
		Status:        string(t.Status),
		FailureReason: t.FailureReason,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func toTransferResponses(transfers []domain.Transfer) []TransferResponse {
	out := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		out = append(out, toTransferResponse(&transfers[i]))
	}
	return out
}

// Create admits a transfer and answers 201 with it still pending.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.admit.Execute(r.Context(), usecase.AdmitTransferInput{
		Payer: req.Payer,
		Payee: req.Payee,
		Value: req.Value,
	})
	if err != nil {
		respondMovementError(w, err, "admit transfer")
		return
	}
	h.manage.InvalidateRecent(r.Context())

	respondJSON(w, http.StatusCreated, toTransferResponse(transfer))
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.manage.FindAll(r.Context())
	if err != nil {
		respondDomainError(w, err, "list transfers")
		return
	}
	respondJSON(w, http.StatusOK, toTransferResponses(transfers))
}

func (h *TransferHandler) Lasts(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.manage.FindLasts(r.Context())
	if err != nil {
		respondDomainError(w, err, "list recent transfers")
		return
	}
	respondJSON(w, http.StatusOK, toTransferResponses(transfers))
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	transfer, err := h.manage.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "get transfer")
		return
	}
	respondJSON(w, http.StatusOK, toTransferResponse(transfer))
}

func (h *TransferHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req UpdateTransferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.manage.Update(r.Context(), id, usecase.UpdateTransferInput{
		Payer: req.Payer,
		Payee: req.Payee,
		Value: req.Value,
	})
	if err != nil {
		respondMovementError(w, err, "update transfer")
		return
	}
	respondJSON(w, http.StatusOK, toTransferResponse(transfer))
}

func (h *TransferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.manage.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err, "delete transfer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
