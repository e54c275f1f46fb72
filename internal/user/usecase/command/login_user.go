package command

import (
	"strings"

	"github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
	"github.com/pinned-app/pinned/pkg/auth"
)

// LoginUserCommand represents the command to authenticate a user
type LoginUserCommand struct {
	Email    string
	Password string
}

// LoginResponse carries the issued token and the authenticated user
type LoginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// LoginUserHandler handles user login
type LoginUserHandler struct {
	repo domain.UserRepository
}

// NewLoginUserHandler creates a new login user handler
func NewLoginUserHandler(repo domain.UserRepository) *LoginUserHandler {
	return &LoginUserHandler{repo: repo}
}

// Handle executes the login command. Wrong email and wrong password are
// indistinguishable to the caller.
func (h *LoginUserHandler) Handle(cmd LoginUserCommand) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || cmd.Password == "" {
		return nil, apperror.Validationf("email and password are required")
	}

	user, err := h.repo.FindByEmail(email)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}
	if !auth.CheckPassword(user.Password, cmd.Password) {
		return nil, apperror.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Name)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, User: user}, nil
}
