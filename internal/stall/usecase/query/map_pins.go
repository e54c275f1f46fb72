package query

import (
	"github.com/pinned-app/pinned/internal/stall/domain"
)

// MapPin is one renderable marker on the campus map
type MapPin struct {
	StallID  uint       `json:"stall_id"`
	Name     string     `json:"name"`
	FoodType string     `json:"food_type"`
	Location string     `json:"location"`
	LogoPath string     `json:"logo_path"`
	Pin      domain.Pin `json:"pin"`
}

// GetMapPinsHandler handles the map pins query
type GetMapPinsHandler struct {
	stalls domain.StallRepository
}

// NewGetMapPinsHandler creates a new map pins handler
func NewGetMapPinsHandler(stalls domain.StallRepository) *GetMapPinsHandler {
	return &GetMapPinsHandler{stalls: stalls}
}

// Handle returns markers for every stall with a displayable pin.
// Stalls without both coordinates are omitted entirely rather than
// rendered at the map origin.
func (h *GetMapPinsHandler) Handle() ([]MapPin, error) {
	stalls, err := h.stalls.FindPinned()
	if err != nil {
		return nil, err
	}

	pins := make([]MapPin, 0, len(stalls))
	for _, stall := range stalls {
		pin := stall.DisplayPin()
		if pin == nil {
			continue
		}
		pins = append(pins, MapPin{
			StallID:  stall.ID,
			Name:     stall.Name,
			FoodType: stall.FoodType,
			Location: stall.Location,
			LogoPath: stall.LogoPath,
			Pin:      *pin,
		})
	}
	return pins, nil
}
