package command

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// DeleteReviewCommand represents the command to delete a review
type DeleteReviewCommand struct {
	ReviewID    uint
	RequesterID uint
}

// DeleteReviewHandler handles review deletion
type DeleteReviewHandler struct {
	reviews domain.ReviewRepository
}

// NewDeleteReviewHandler creates a new delete review handler
func NewDeleteReviewHandler(reviews domain.ReviewRepository) *DeleteReviewHandler {
	return &DeleteReviewHandler{reviews: reviews}
}

// Handle executes the delete review command. Only the author may delete
// a review; its votes are removed by the schema-level cascade.
func (h *DeleteReviewHandler) Handle(cmd DeleteReviewCommand) error {
	if cmd.RequesterID == 0 {
		return apperror.ErrUnauthorized
	}

	review, err := h.reviews.FindByID(cmd.ReviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFoundf("review %d does not exist", cmd.ReviewID)
		}
		return fmt.Errorf("failed to load review: %w", err)
	}

	if review.UserID != cmd.RequesterID {
		return apperror.Forbiddenf("only the author can delete this review")
	}

	return h.reviews.Delete(cmd.ReviewID)
}
