package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
	"github.com/pinned-app/pinned/pkg/auth"
)

// UpdateUserCommand represents the command to update a user's profile.
// Empty fields are left unchanged.
type UpdateUserCommand struct {
	ID       uint
	Name     string
	Email    string
	Password string
}

// UpdateUserHandler handles profile updates
type UpdateUserHandler struct {
	repo domain.UserRepository
}

// NewUpdateUserHandler creates a new update user handler
func NewUpdateUserHandler(repo domain.UserRepository) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

// Handle executes the update user command
func (h *UpdateUserHandler) Handle(cmd UpdateUserCommand) (*domain.User, error) {
	if cmd.ID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	user, err := h.repo.FindByID(cmd.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("user %d does not exist", cmd.ID)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(cmd.Email)); email != "" {
		if !strings.Contains(email, "@") {
			return nil, apperror.Validationf("a valid email is required")
		}
		user.Email = email
	}
	if cmd.Password != "" {
		if len(cmd.Password) < 6 {
			return nil, apperror.Validationf("password must be at least 6 characters")
		}
		hashed, err := auth.HashPassword(cmd.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	user.UpdatedAt = time.Now()

	if err := h.repo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccountCommand represents the command to delete the caller's account
type DeleteAccountCommand struct {
	UserID uint
}

// DeleteAccountHandler handles account deletion
type DeleteAccountHandler struct {
	repo domain.UserRepository
}

// NewDeleteAccountHandler creates a new delete account handler
func NewDeleteAccountHandler(repo domain.UserRepository) *DeleteAccountHandler {
	return &DeleteAccountHandler{repo: repo}
}

// Handle deletes the account; the user's stall, reviews and votes go
// with it
func (h *DeleteAccountHandler) Handle(cmd DeleteAccountCommand) error {
	if cmd.UserID == 0 {
		return apperror.ErrUnauthorized
	}
	if err := h.repo.Delete(cmd.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("user %d does not exist", cmd.UserID)
		}
		return err
	}
	return nil
}
