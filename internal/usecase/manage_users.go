package usecase

import (
	"context"

	"github.com/LuanMakohin/api-simples/internal/domain"
	"github.com/LuanMakohin/api-simples/internal/gateway"
)

// ManageUsersUseCase covers registration, profile edits and soft removal of account holders.
type ManageUsersUseCase struct {
	userRepository gateway.UserRepository
}

func NewManageUsers(userRepo gateway.UserRepository) *ManageUsersUseCase {
	return &ManageUsersUseCase{userRepository: userRepo}
}

func (u *ManageUsersUseCase) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := u.userRepository.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *ManageUsersUseCase) Find(ctx context.Context, id int64) (*domain.User, error) {
	return u.userRepository.GetByID(ctx, id)
}

func (u *ManageUsersUseCase) FindAll(ctx context.Context) ([]domain.User, error) {
	return u.userRepository.List(ctx)
}

// UpdateUserInput carries the optional profile fields. Balance is not editable.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Document *string
	Type     *domain.UserType
}

// Update applies the given fields and revalidates the whole profile.
func (u *ManageUsersUseCase) Update(ctx context.Context, id int64, input UpdateUserInput) (*domain.User, error) {
	user, err := u.userRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Document != nil {
		user.Document = *input.Document
	}
	if input.Type != nil {
		user.Type = *input.Type
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := u.userRepository.UpdateDetails(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *ManageUsersUseCase) Delete(ctx context.Context, id int64) error {
	return u.userRepository.SoftDelete(ctx, id)
}
