package notifier

import (
	"context"
	"fmt"

	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	userdomain "github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/logger"
)

// Sender delivers a single notification message
type Sender interface {
	Send(to, subject, body string) error
}

// Notifier emails stall owners when their stall receives a review
type Notifier struct {
	reviews reviewdomain.ReviewRepository
	stalls  stalldomain.StallRepository
	users   userdomain.UserRepository
	sender  Sender
}

// New creates a new notifier
func New(reviews reviewdomain.ReviewRepository, stalls stalldomain.StallRepository, users userdomain.UserRepository, sender Sender) *Notifier {
	return &Notifier{reviews: reviews, stalls: stalls, users: users, sender: sender}
}

// NotifyReviewSubmitted looks up the review, its stall and the stall's
// owner, then emails the owner. Anonymous reviews are announced without
// the author's name.
func (n *Notifier) NotifyReviewSubmitted(ctx context.Context, stallID, reviewID uint) error {
	review, err := n.reviews.FindByID(reviewID)
	if err != nil {
		return fmt.Errorf("failed to load review %d: %w", reviewID, err)
	}

	stall, err := n.stalls.FindByID(stallID)
	if err != nil {
		return fmt.Errorf("failed to load stall %d: %w", stallID, err)
	}

	owner, err := n.users.FindByID(stall.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load stall owner %d: %w", stall.OwnerID, err)
	}

	authorName := "Anonymous"
	if !review.IsAnonymous {
		if author, err := n.users.FindByID(review.UserID); err == nil {
			authorName = author.Name
		}
	}

	subject := fmt.Sprintf("New review for %s", stall.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\n%s just left a %d-star review on %s:\n\n%q\n\nSign in to Pinned to read the full review.\n",
		owner.Name, authorName, review.Rating, stall.Name, review.Title,
	)

	if err := n.sender.Send(owner.Email, subject, body); err != nil {
		return err
	}

	logger.Info(ctx).
		Uint("stall_id", stallID).
		Uint("review_id", reviewID).
		Uint("owner_id", owner.ID).
		Msg("Review notification delivered")
	return nil
}
