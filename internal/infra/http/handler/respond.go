package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps domain errors to HTTP status codes.
func respondDomainError(w http.ResponseWriter, err error, action string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidUser):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUnauthorizedPayer):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrTransferNotFound),
		errors.Is(err, domain.ErrDepositNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrMovementPending),
		errors.Is(err, domain.ErrUserInUse),
		errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msgf("failed to %s", action)
		respondError(w, status, "internal server error")
		return
	}
	respondError(w, status, err.Error())
}

// respondMovementError treats a missing party as invalid input rather than a missing resource.
func respondMovementError(w http.ResponseWriter, err error, action string) {
	if errors.Is(err, domain.ErrUserNotFound) {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respondDomainError(w, err, action)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	return true
}

// movementID accepts only the canonical 36-character uuid form.
func movementID(w http.ResponseWriter, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil || len(raw) != 36 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return id.String(), true
}
