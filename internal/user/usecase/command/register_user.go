package command

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
	"github.com/pinned-app/pinned/pkg/auth"
)

// RegisterUserCommand represents the command to register a new account
type RegisterUserCommand struct {
	Name     string
	Email    string
	Password string
}

// RegisterUserHandler handles account registration
type RegisterUserHandler struct {
	repo domain.UserRepository
}

// NewRegisterUserHandler creates a new register user handler
func NewRegisterUserHandler(repo domain.UserRepository) *RegisterUserHandler {
	return &RegisterUserHandler{repo: repo}
}

// Handle executes the register user command
func (h *RegisterUserHandler) Handle(cmd RegisterUserCommand) (*domain.User, error) {
	name := strings.TrimSpace(cmd.Name)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))

	if name == "" {
		return nil, apperror.Validationf("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.Validationf("a valid email is required")
	}
	if len(cmd.Password) < 6 {
		return nil, apperror.Validationf("password must be at least 6 characters")
	}

	if existing, _ := h.repo.FindByEmail(email); existing != nil {
		return nil, apperror.Validationf("email already registered")
	}

	hashed, err := auth.HashPassword(cmd.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := h.repo.Create(user); err != nil {
		// Unique email index closes the check-then-insert race.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validationf("email already registered")
		}
		return nil, err
	}
	return user, nil
}
