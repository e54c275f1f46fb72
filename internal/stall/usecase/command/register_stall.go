package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// RegisterStallCommand represents the command to register a new stall
type RegisterStallCommand struct {
	OwnerID        uint
	Name           string
	Description    string
	FoodCategories []string
	Location       string
	LogoPath       string
	Hours          string
	PinX           *float64
	PinY           *float64
}

// RegisterStallHandler handles stall registration
type RegisterStallHandler struct {
	stalls domain.StallRepository
}

// NewRegisterStallHandler creates a new register stall handler
func NewRegisterStallHandler(stalls domain.StallRepository) *RegisterStallHandler {
	return &RegisterStallHandler{stalls: stalls}
}

// Handle executes the register stall command. A user may register at
// most one stall. An initial pin is optional; when given it follows the
// same both-or-nothing and clamping policy as SetPin.
func (h *RegisterStallHandler) Handle(cmd RegisterStallCommand) (*domain.Stall, error) {
	if cmd.OwnerID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validationf("stall name is required")
	}
	if len(name) > domain.MaxStallNameLen {
		return nil, apperror.Validationf("stall name must be %d characters or less", domain.MaxStallNameLen)
	}
	if strings.TrimSpace(cmd.Description) == "" {
		return nil, apperror.Validationf("stall description is required")
	}
	if strings.TrimSpace(cmd.Location) == "" {
		return nil, apperror.Validationf("location is required")
	}

	categories := make([]string, 0, len(cmd.FoodCategories))
	for _, c := range cmd.FoodCategories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return nil, apperror.Validationf("at least one food category is required")
	}

	if existing, _ := h.stalls.FindByOwner(cmd.OwnerID); existing != nil {
		return nil, apperror.Forbiddenf("you have already registered a stall")
	}

	stall := &domain.Stall{
		OwnerID:     cmd.OwnerID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		FoodType:    strings.Join(categories, ","),
		Location:    strings.TrimSpace(cmd.Location),
		LogoPath:    cmd.LogoPath,
		Hours:       cmd.Hours,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if cmd.PinX != nil || cmd.PinY != nil {
		if cmd.PinX == nil || cmd.PinY == nil {
			return nil, apperror.Validationf("pin coordinates are missing or invalid")
		}
		x := domain.ClampCoordinate(*cmd.PinX)
		y := domain.ClampCoordinate(*cmd.PinY)
		stall.PinX = &x
		stall.PinY = &y
	}

	if err := h.stalls.Create(stall); err != nil {
		return nil, err
	}
	return stall, nil
}

// UpdateStallCommand represents the command to update a stall's details
type UpdateStallCommand struct {
	StallID        uint
	OwnerID        uint
	Name           string
	Description    string
	FoodCategories []string
	LogoPath       string
	Hours          string
}

// UpdateStallHandler handles stall detail updates
type UpdateStallHandler struct {
	stalls domain.StallRepository
}

// NewUpdateStallHandler creates a new update stall handler
func NewUpdateStallHandler(stalls domain.StallRepository) *UpdateStallHandler {
	return &UpdateStallHandler{stalls: stalls}
}

// Handle executes the update stall command
func (h *UpdateStallHandler) Handle(cmd UpdateStallCommand) (*domain.Stall, error) {
	if cmd.OwnerID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	stall, err := loadOwnedStall(h.stalls, cmd.StallID, cmd.OwnerID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(cmd.Name); name != "" {
		if len(name) > domain.MaxStallNameLen {
			return nil, apperror.Validationf("stall name must be %d characters or less", domain.MaxStallNameLen)
		}
		stall.Name = name
	}
	if desc := strings.TrimSpace(cmd.Description); desc != "" {
		stall.Description = desc
	}
	if len(cmd.FoodCategories) > 0 {
		categories := make([]string, 0, len(cmd.FoodCategories))
		for _, c := range cmd.FoodCategories {
			if c = strings.TrimSpace(c); c != "" {
				categories = append(categories, c)
			}
		}
		if len(categories) == 0 {
			return nil, apperror.Validationf("at least one food category is required")
		}
		stall.FoodType = strings.Join(categories, ",")
	}
	if cmd.LogoPath != "" {
		stall.LogoPath = cmd.LogoPath
	}
	if cmd.Hours != "" {
		stall.Hours = cmd.Hours
	}
	stall.UpdatedAt = time.Now()

	if err := h.stalls.Update(stall); err != nil {
		return nil, err
	}
	return stall, nil
}

// DeleteStallCommand represents the command to delete a stall
type DeleteStallCommand struct {
	StallID uint
	OwnerID uint
}

// DeleteStallHandler handles stall deletion
type DeleteStallHandler struct {
	stalls domain.StallRepository
}

// NewDeleteStallHandler creates a new delete stall handler
func NewDeleteStallHandler(stalls domain.StallRepository) *DeleteStallHandler {
	return &DeleteStallHandler{stalls: stalls}
}

// Handle executes the delete stall command; the stall's reviews, votes
// and menu items go with it
func (h *DeleteStallHandler) Handle(cmd DeleteStallCommand) error {
	if cmd.OwnerID == 0 {
		return apperror.ErrUnauthorized
	}
	if _, err := loadOwnedStall(h.stalls, cmd.StallID, cmd.OwnerID); err != nil {
		return err
	}
	return h.stalls.Delete(cmd.StallID)
}

// loadOwnedStall fetches a stall and verifies the caller owns it
func loadOwnedStall(stalls domain.StallRepository, stallID, ownerID uint) (*domain.Stall, error) {
	stall, err := stalls.FindByID(stallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("stall %d does not exist", stallID)
		}
		return nil, fmt.Errorf("failed to load stall: %w", err)
	}
	if stall.OwnerID != ownerID {
		return nil, apperror.Forbiddenf("only the stall owner can manage this stall")
	}
	return stall, nil
}
