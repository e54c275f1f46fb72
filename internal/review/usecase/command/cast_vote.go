package command

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

// CastVoteCommand represents one click of an up or down vote button
type CastVoteCommand struct {
	ReviewID uint
	VoterID  uint
	VoteType int
}

// CastVoteResult reports the voter's resulting state and the review's
// refreshed tallies
type CastVoteResult struct {
	CallerVote   int   `json:"userVote"`
	PreviousVote int   `json:"-"`
	Upvotes      int64 `json:"upvotes"`
	Downvotes    int64 `json:"downvotes"`
}

// CastVoteHandler handles vote toggling
type CastVoteHandler struct {
	reviews domain.ReviewRepository
	votes   domain.VoteRepository
}

// NewCastVoteHandler creates a new cast vote handler
func NewCastVoteHandler(reviews domain.ReviewRepository, votes domain.VoteRepository) *CastVoteHandler {
	return &CastVoteHandler{reviews: reviews, votes: votes}
}

// Handle executes one cast: repeating the same vote removes it,
// casting the opposite vote flips it.
func (h *CastVoteHandler) Handle(cmd CastVoteCommand) (*CastVoteResult, error) {
	if cmd.VoterID == 0 {
		return nil, apperror.ErrUnauthorized
	}
	if cmd.VoteType != domain.VoteUp && cmd.VoteType != domain.VoteDown {
		return nil, apperror.Validationf("vote type must be 1 or -1")
	}

	if _, err := h.reviews.FindByID(cmd.ReviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFoundf("review %d does not exist", cmd.ReviewID)
		}
		return nil, fmt.Errorf("failed to load review: %w", err)
	}

	newState, previous, err := h.votes.Toggle(cmd.ReviewID, cmd.VoterID, cmd.VoteType)
	if err != nil {
		return nil, err
	}

	tally, err := h.votes.TallyForReview(cmd.ReviewID)
	if err != nil {
		return nil, err
	}

	return &CastVoteResult{
		CallerVote:   newState,
		PreviousVote: previous,
		Upvotes:      tally.Upvotes,
		Downvotes:    tally.Downvotes,
	}, nil
}
