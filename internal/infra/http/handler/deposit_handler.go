package handler

import (
	"net/http"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type DepositHandler struct {
	admit  *usecase.AdmitDepositUseCase
	manage *usecase.ManageDepositsUseCase
}

func NewDepositHandler(admit *usecase.AdmitDepositUseCase, manage *usecase.ManageDepositsUseCase) *DepositHandler {
	return &DepositHandler{admit: admit, manage: manage}
}

type CreateDepositRequest struct {
	User  int64           `json:"user"`
	Value decimal.Decimal `json:"value"`
}

type UpdateDepositRequest struct {
	User  *int64           `json:"user"`
	Value *decimal.Decimal `json:"value"`
}

type DepositResponse struct {
	ID            string    `json:"id"`
	User          int64     `json:"user"`
	Value         string    `json:"value"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toDepositResponse(d *domain.Deposit) DepositResponse {
	return DepositResponse{
		ID:            d.ID,
		User:          d.Receiver,
		Value:         d.Value.StringFixed(domain.MoneyScale),
		Status:        string(d.Status),
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDepositResponses(deposits []domain.Deposit) []DepositResponse {
	out := make([]DepositResponse, 0, len(deposits))
	for i := range deposits {
		out = append(out, toDepositResponse(&deposits[i]))
	}
	return out
}

// Create admits a deposit and answers 201 with it still pending.
func (h *DepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deposit, err := h.admit.Execute(r.Context(), usecase.AdmitDepositInput{
		Receiver: req.User,
		Value:    req.Value,
	})
	if err != nil {
		respondMovementError(w, err, "admit deposit")
		return
	}
	h.manage.InvalidateRecent(r.Context())

	respondJSON(w, http.StatusCreated, toDepositResponse(deposit))
}

func (h *DepositHandler) List(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.manage.FindAll(r.Context())
	if err != nil {
		respondDomainError(w, err, "list deposits")
		return
	}
	respondJSON(w, http.StatusOK, toDepositResponses(deposits))
}

func (h *DepositHandler) Lasts(w http.ResponseWriter, r *http.Request) {
	deposits, err := h.manage.FindLasts(r.Context())
	if err != nil {
		respondDomainError(w, err, "list recent deposits")
		return
	}
	respondJSON(w, http.StatusOK, toDepositResponses(deposits))
}

func (h *DepositHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	deposit, err := h.manage.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "get deposit")
		return
	}
	respondJSON(w, http.StatusOK, toDepositResponse(deposit))
}

func (h *DepositHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	var req UpdateDepositRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deposit, err := h.manage.Update(r.Context(), id, usecase.UpdateDepositInput{
		Receiver: req.User,
		Value:    req.Value,
	})
	if err != nil {
		respondMovementError(w, err, "update deposit")
		return
	}
	respondJSON(w, http.StatusOK, toDepositResponse(deposit))
}

func (h *DepositHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := movementID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.manage.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err, "delete deposit")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
