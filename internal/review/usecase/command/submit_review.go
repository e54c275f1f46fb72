package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/domain"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
	"github.com/pinned-app/pinned/pkg/logger"
)

// ReviewEventPublisher publishes review lifecycle events for the
// notification worker. Implementations must be safe to skip when no
// broker is configured.
type ReviewEventPublisher interface {
	PublishReviewSubmitted(ctx context.Context, stallID, reviewID, authorID uint, rating int) error
}

// SubmitReviewCommand represents the command to create or update a
// user's review for a stall
type SubmitReviewCommand struct {
	StallID     uint
	AuthorID    uint
	Rating      int
	Title       string
	Comment     string
	IsAnonymous bool
}

// SubmitReviewResult reports the resulting review and whether it was
// newly created or an edit of an existing one
type SubmitReviewResult struct {
	Review  *domain.Review
	Created bool
}

// SubmitReviewHandler handles review submission
type SubmitReviewHandler struct {
	reviews   domain.ReviewRepository
	stalls    stalldomain.StallRepository
	publisher ReviewEventPublisher
}

// NewSubmitReviewHandler creates a new submit review handler
func NewSubmitReviewHandler(reviews domain.ReviewRepository, stalls stalldomain.StallRepository, publisher ReviewEventPublisher) *SubmitReviewHandler {
	return &SubmitReviewHandler{reviews: reviews, stalls: stalls, publisher: publisher}
}

// Handle executes the submit review command. Submitting a second time
// for the same stall edits the existing review in place.
func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*SubmitReviewResult, error) {
	if cmd.AuthorID == 0 {
		return nil, apperror.ErrUnauthorized
	}
	if cmd.Rating < 1 || cmd.Rating > 5 {
		return nil, apperror.Validationf("please select a rating between 1 and 5 stars")
	}
	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		return nil, apperror.Validationf("review title cannot be empty")
	}

	stall, err := h.stalls.FindByID(cmd.StallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("stall %d does not exist", cmd.StallID)
		}
		return nil, fmt.Errorf("failed to load stall: %w", err)
	}
	if stall.OwnerID == cmd.AuthorID {
		return nil, apperror.Forbiddenf("owners cannot review their own stall")
	}

	existing, err := h.reviews.FindByStallAndAuthor(cmd.StallID, cmd.AuthorID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up existing review: %w", err)
	}

	if existing != nil {
		h.apply(existing, cmd, title)
		if err := h.reviews.Update(existing); err != nil {
			return nil, err
		}
		return &SubmitReviewResult{Review: existing, Created: false}, nil
	}

	review := &domain.Review{
		StallID:     cmd.StallID,
		UserID:      cmd.AuthorID,
		Rating:      cmd.Rating,
		Title:       title,
		Comment:     cmd.Comment,
		IsAnonymous: cmd.IsAnonymous,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := h.reviews.Create(review); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A concurrent submission won the insert; retry as an update.
		existing, err = h.reviews.FindByStallAndAuthor(cmd.StallID, cmd.AuthorID)
		if err != nil {
			return nil, fmt.Errorf("failed to recover from duplicate review: %w", err)
		}
		h.apply(existing, cmd, title)
		if err := h.reviews.Update(existing); err != nil {
			return nil, err
		}
		return &SubmitReviewResult{Review: existing, Created: false}, nil
	}

	h.publish(ctx, stall.ID, review)
	return &SubmitReviewResult{Review: review, Created: true}, nil
}

func (h *SubmitReviewHandler) apply(review *domain.Review, cmd SubmitReviewCommand, title string) {
	review.Rating = cmd.Rating
	review.Title = title
	review.Comment = cmd.Comment
	review.IsAnonymous = cmd.IsAnonymous
	review.UpdatedAt = time.Now()
}

func (h *SubmitReviewHandler) publish(ctx context.Context, stallID uint, review *domain.Review) {
	if h.publisher == nil {
		return
	}
	// Notification delivery must never fail the submission.
	if err := h.publisher.PublishReviewSubmitted(ctx, stallID, review.ID, review.UserID, review.Rating); err != nil {
		logger.Warn(ctx).
			Err(err).
			Uint("review_id", review.ID).
			Msg("Failed to publish review submitted event")
	}
}
