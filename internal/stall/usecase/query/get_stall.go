package query

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// GetStallQuery represents the query for one stall's detail page
type GetStallQuery struct {
	ID uint
}

// StallDetail is a stall with its menu, rating aggregate and display pin
type StallDetail struct {
	domain.Stall
	Menu    []domain.MenuItem          `json:"menu"`
	Summary reviewdomain.RatingSummary `json:"summary"`
	Pin     *domain.Pin                `json:"pin"`
}

// GetStallHandler handles the stall detail query
type GetStallHandler struct {
	stalls  domain.StallRepository
	reviews reviewdomain.ReviewRepository
}

// NewGetStallHandler creates a new get stall handler
func NewGetStallHandler(stalls domain.StallRepository, reviews reviewdomain.ReviewRepository) *GetStallHandler {
	return &GetStallHandler{stalls: stalls, reviews: reviews}
}

// Handle executes the stall detail query
func (h *GetStallHandler) Handle(q GetStallQuery) (*StallDetail, error) {
	stall, err := h.stalls.FindByID(q.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("stall %d does not exist", q.ID)
		}
		return nil, fmt.Errorf("failed to load stall: %w", err)
	}

	menu, err := h.stalls.MenuForStall(stall.ID)
	if err != nil {
		return nil, err
	}

	ratings, err := h.reviews.RatingsForStall(stall.ID)
	if err != nil {
		return nil, err
	}

	return &StallDetail{
		Stall:   *stall,
		Menu:    menu,
		Summary: reviewdomain.Summarize(ratings),
		Pin:     stall.DisplayPin(),
	}, nil
}
