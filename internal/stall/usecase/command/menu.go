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

// AddMenuItemCommand represents the command to add a dish to a stall's menu
type AddMenuItemCommand struct {
	StallID     uint
	OwnerID     uint
	Name        string
	Description string
	Price       float64
	ImagePath   string
}

// AddMenuItemHandler handles menu item creation
type AddMenuItemHandler struct {
	stalls domain.StallRepository
}

// NewAddMenuItemHandler creates a new add menu item handler
func NewAddMenuItemHandler(stalls domain.StallRepository) *AddMenuItemHandler {
	return &AddMenuItemHandler{stalls: stalls}
}

// Handle executes the add menu item command
func (h *AddMenuItemHandler) Handle(cmd AddMenuItemCommand) (*domain.MenuItem, error) {
	if cmd.OwnerID == 0 {
		return nil, apperror.ErrUnauthorized
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validationf("item name is required")
	}
	if cmd.Price <= 0 {
		return nil, apperror.Validationf("item price is required")
	}

	if _, err := loadOwnedStall(h.stalls, cmd.StallID, cmd.OwnerID); err != nil {
		return nil, err
	}

	item := &domain.MenuItem{
		StallID:     cmd.StallID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		Price:       cmd.Price,
		ImagePath:   cmd.ImagePath,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := h.stalls.CreateMenuItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateMenuItemCommand represents the command to edit a menu item
type UpdateMenuItemCommand struct {
	StallID     uint
	ItemID      uint
	OwnerID     uint
	Name        string
	Description string
	Price       float64
}

// UpdateMenuItemHandler handles menu item edits
type UpdateMenuItemHandler struct {
	stalls domain.StallRepository
}

// NewUpdateMenuItemHandler creates a new update menu item handler
func NewUpdateMenuItemHandler(stalls domain.StallRepository) *UpdateMenuItemHandler {
	return &UpdateMenuItemHandler{stalls: stalls}
}

// Handle executes the update menu item command
func (h *UpdateMenuItemHandler) Handle(cmd UpdateMenuItemCommand) (*domain.MenuItem, error) {
	if cmd.OwnerID == 0 {
		return nil, apperror.ErrUnauthorized
	}
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Validationf("item name is required")
	}
	if cmd.Price <= 0 {
		return nil, apperror.Validationf("item price is required")
	}

	if _, err := loadOwnedStall(h.stalls, cmd.StallID, cmd.OwnerID); err != nil {
		return nil, err
	}

	item, err := h.loadStallItem(cmd.StallID, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	item.Name = name
	item.Description = strings.TrimSpace(cmd.Description)
	item.Price = cmd.Price
	item.UpdatedAt = time.Now()

	if err := h.stalls.UpdateMenuItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (h *UpdateMenuItemHandler) loadStallItem(stallID, itemID uint) (*domain.MenuItem, error) {
	return loadStallItem(h.stalls, stallID, itemID)
}

// DeleteMenuItemCommand represents the command to remove a menu item
type DeleteMenuItemCommand struct {
	StallID uint
	ItemID  uint
	OwnerID uint
}

// DeleteMenuItemHandler handles menu item removal
type DeleteMenuItemHandler struct {
	stalls domain.StallRepository
}

// NewDeleteMenuItemHandler creates a new delete menu item handler
func NewDeleteMenuItemHandler(stalls domain.StallRepository) *DeleteMenuItemHandler {
	return &DeleteMenuItemHandler{stalls: stalls}
}

// Handle executes the delete menu item command
func (h *DeleteMenuItemHandler) Handle(cmd DeleteMenuItemCommand) error {
	if cmd.OwnerID == 0 {
		return apperror.ErrUnauthorized
	}
	if _, err := loadOwnedStall(h.stalls, cmd.StallID, cmd.OwnerID); err != nil {
		return err
	}
	item, err := loadStallItem(h.stalls, cmd.StallID, cmd.ItemID)
	if err != nil {
		return err
	}
	return h.stalls.DeleteMenuItem(item.ID)
}

// loadStallItem fetches a menu item and verifies it belongs to the stall
func loadStallItem(stalls domain.StallRepository, stallID, itemID uint) (*domain.MenuItem, error) {
	item, err := stalls.FindMenuItem(itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("menu item %d does not exist", itemID)
		}
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	if item.StallID != stallID {
		return nil, apperror.NotFoundf("menu item %d does not belong to stall %d", itemID, stallID)
	}
	return item, nil
}
