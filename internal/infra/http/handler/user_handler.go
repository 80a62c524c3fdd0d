package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type UserHandler struct {
	manage *usecase.ManageUsersUseCase
}

func NewUserHandler(manage *usecase.ManageUsersUseCase) *UserHandler {
	return &UserHandler{manage: manage}
}

type CreateUserRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Document string          `json:"document"`
	UserType string          `json:"user_type"`
	Balance  decimal.Decimal `json:"balance"`
}

// UpdateUserRequest has no balance: only settlement moves money.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Document *string `json:"document"`
	UserType *string `json:"user_type"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Document  string    `json:"document"`
	UserType  string    `json:"user_type"`
	Balance   string    `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Document:  u.Document,
		UserType:  string(u.Type),
		Balance:   u.Balance.StringFixed(domain.MoneyScale),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userType, ok := domain.ParseUserType(req.UserType)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "user_type must be individual (PF) or business (PJ)")
		return
	}

	user, err := h.manage.Create(r.Context(), &domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Document: req.Document,
		Type:     userType,
		Balance:  req.Balance,
	})
	if err != nil {
		respondDomainError(w, err, "create user")
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.manage.FindAll(r.Context())
	if err != nil {
		respondDomainError(w, err, "list users")
		return
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	user, err := h.manage.Find(r.Context(), id)
	if err != nil {
		respondDomainError(w, err, "get user")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input := usecase.UpdateUserInput{Name: req.Name, Email: req.Email, Document: req.Document}
	if req.UserType != nil {
		userType, ok := domain.ParseUserType(*req.UserType)
		if !ok {
			respondError(w, http.StatusUnprocessableEntity, "user_type must be individual (PF) or business (PJ)")
			return
		}
		input.Type = &userType
	}

	user, err := h.manage.Update(r.Context(), id, input)
	if err != nil {
		respondDomainError(w, err, "update user")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.manage.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err, "delete user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
