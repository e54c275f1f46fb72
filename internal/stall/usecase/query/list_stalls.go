package query

import (
	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/stall/domain"
)

// ListStallsQuery represents the browse query with pagination
type ListStallsQuery struct {
	Limit  int
	Offset int
}

// StallListing is a browse row: the stall plus its rating aggregate
type StallListing struct {
	domain.Stall
	Summary reviewdomain.RatingSummary `json:"summary"`
}

// ListStallsHandler handles the browse query
type ListStallsHandler struct {
	stalls  domain.StallRepository
	reviews reviewdomain.ReviewRepository
}

// NewListStallsHandler creates a new list stalls handler
func NewListStallsHandler(stalls domain.StallRepository, reviews reviewdomain.ReviewRepository) *ListStallsHandler {
	return &ListStallsHandler{stalls: stalls, reviews: reviews}
}

// Handle executes the browse query
func (h *ListStallsHandler) Handle(q ListStallsQuery) ([]StallListing, error) {
	stalls, err := h.stalls.FindAll(q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}

	listings := make([]StallListing, 0, len(stalls))
	for _, stall := range stalls {
		ratings, err := h.reviews.RatingsForStall(stall.ID)
		if err != nil {
			return nil, err
		}
		listings = append(listings, StallListing{
			Stall:   stall,
			Summary: reviewdomain.Summarize(ratings),
		})
	}
	return listings, nil
}
