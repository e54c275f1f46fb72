package query

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/domain"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// ListReviewsQuery represents the query for a stall's review listing.
// CallerID is zero for anonymous visitors.
type ListReviewsQuery struct {
	StallID      uint
	CallerID     uint
	SortBy       string
	FilterRating int
}

// ListReviewsResult is the listing plus the stall-wide aggregate. The
// aggregate always covers all reviews, not just the filtered subset.
type ListReviewsResult struct {
	Reviews      []domain.AnnotatedReview `json:"reviews"`
	Summary      domain.RatingSummary     `json:"summary"`
	SortBy       string                   `json:"sort_by"`
	FilterRating int                      `json:"filter_rating"`
}

// ListReviewsHandler handles the review listing query
type ListReviewsHandler struct {
	reviews domain.ReviewRepository
	stalls  stalldomain.StallRepository
}

// NewListReviewsHandler creates a new list reviews handler
func NewListReviewsHandler(reviews domain.ReviewRepository, stalls stalldomain.StallRepository) *ListReviewsHandler {
	return &ListReviewsHandler{reviews: reviews, stalls: stalls}
}

// Handle executes the review listing query
func (h *ListReviewsHandler) Handle(q ListReviewsQuery) (*ListReviewsResult, error) {
	if q.FilterRating < 0 || q.FilterRating > 5 {
		return nil, apperror.Validationf("filter rating must be between 1 and 5")
	}

	if _, err := h.stalls.FindByID(q.StallID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("stall %d does not exist", q.StallID)
		}
		return nil, fmt.Errorf("failed to load stall: %w", err)
	}

	mode := domain.ParseSortMode(q.SortBy)

	rows, err := h.reviews.ListByStall(q.StallID, q.CallerID, mode, q.FilterRating)
	if err != nil {
		return nil, err
	}

	// Anonymity affects the displayed identity only; vote bookkeeping
	// and the caller's own row are untouched.
	for i := range rows {
		if rows[i].IsAnonymous && rows[i].UserID != q.CallerID {
			rows[i].AuthorName = "Anonymous"
			rows[i].UserID = 0
		}
	}

	ratings, err := h.reviews.RatingsForStall(q.StallID)
	if err != nil {
		return nil, err
	}

	return &ListReviewsResult{
		Reviews:      rows,
		Summary:      domain.Summarize(ratings),
		SortBy:       mode.String(),
		FilterRating: q.FilterRating,
	}, nil
}
