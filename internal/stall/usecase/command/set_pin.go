package command

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// SetPinCommand represents the command to place or move a stall's map
// pin. Nil coordinates mean the caller did not supply them.
type SetPinCommand struct {
	StallID  uint
	OwnerID  uint
	PinX     *float64
	PinY     *float64
	Location string
}

// SetPinHandler handles pin placement
type SetPinHandler struct {
	stalls domain.StallRepository
}

// NewSetPinHandler creates a new set pin handler
func NewSetPinHandler(stalls domain.StallRepository) *SetPinHandler {
	return &SetPinHandler{stalls: stalls}
}

// Handle executes the set pin command. Partial pins are rejected;
// out-of-range coordinates are clamped into [0,100] so the stored pin
// always matches what the map renders.
func (h *SetPinHandler) Handle(cmd SetPinCommand) (*domain.Stall, error) {
	if cmd.OwnerID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	stall, err := h.stalls.FindByID(cmd.StallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("stall %d does not exist", cmd.StallID)
		}
		return nil, fmt.Errorf("failed to load stall: %w", err)
	}
	if stall.OwnerID != cmd.OwnerID {
		return nil, apperror.Forbiddenf("only the stall owner can move its pin")
	}

	if cmd.PinX == nil || cmd.PinY == nil {
		return nil, apperror.Validationf("pin coordinates are missing or invalid")
	}

	x := domain.ClampCoordinate(*cmd.PinX)
	y := domain.ClampCoordinate(*cmd.PinY)

	if err := h.stalls.UpdatePin(cmd.StallID, x, y, cmd.Location); err != nil {
		return nil, err
	}

	stall.PinX = &x
	stall.PinY = &y
	stall.Location = cmd.Location
	return stall, nil
}
