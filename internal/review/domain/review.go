package domain

import (
	"math"
	"time"
)

// Vote values as stored in review_votes.vote_type
const (
	VoteUp   = 1
	VoteDown = -1
	VoteNone = 0
)

// Review represents a single user's rated, titled comment about a stall.
// A user has at most one review per stall; resubmitting edits it in place.
type Review struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StallID     uint      `json:"stall_id" gorm:"not null;uniqueIndex:idx_reviews_stall_author"`
	UserID      uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_reviews_stall_author"`
	Rating      int       `json:"rating" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Comment     string    `json:"comment"`
	IsAnonymous bool      `json:"is_anonymous" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Review) TableName() string {
	return "reviews"
}

// Vote represents a single user's up/down signal on a review.
// At most one row exists per (review, voter) pair.
type Vote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ReviewID  uint      `json:"review_id" gorm:"not null;uniqueIndex:idx_votes_review_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_votes_review_user"`
	VoteType  int       `json:"vote_type" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (Vote) TableName() string {
	return "review_votes"
}

// VoteTally holds the derived vote counts for one review
type VoteTally struct {
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// RatingSummary holds the derived stall-wide rating aggregate
type RatingSummary struct {
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// Summarize computes the rating aggregate over a snapshot of ratings.
// The average is rounded to one decimal; an empty snapshot yields 0.
// Ratings outside 1..5 are skipped rather than failing the computation.
func Summarize(ratings []int) RatingSummary {
	var sum, count int
	for _, r := range ratings {
		if r < 1 || r > 5 {
			continue
		}
		sum += r
		count++
	}
	if count == 0 {
		return RatingSummary{AverageRating: 0, ReviewCount: 0}
	}
	avg := math.Round(float64(sum)/float64(count)*10) / 10
	return RatingSummary{AverageRating: avg, ReviewCount: count}
}

// NextVoteState resolves the toggle state machine for a (review, voter)
// pair: casting the current vote again removes it, casting the opposite
// vote flips it.
func NextVoteState(current, cast int) int {
	if current == cast {
		return VoteNone
	}
	return cast
}

// SortMode is the closed set of review orderings
type SortMode int

const (
	SortNewest SortMode = iota
	SortOldest
	SortMostUpvoted
	SortMostDownvoted
)

// ParseSortMode maps a request parameter onto a SortMode. Unrecognized
// values fall back to newest-first rather than erroring.
func ParseSortMode(s string) SortMode {
	switch s {
	case "oldest":
		return SortOldest
	case "most_upvoted":
		return SortMostUpvoted
	case "most_downvoted":
		return SortMostDownvoted
	case "newest":
		return SortNewest
	default:
		return SortNewest
	}
}

// String returns the request-parameter form of the sort mode
func (m SortMode) String() string {
	switch m {
	case SortOldest:
		return "oldest"
	case SortMostUpvoted:
		return "most_upvoted"
	case SortMostDownvoted:
		return "most_downvoted"
	default:
		return "newest"
	}
}

// AnnotatedReview is a listing row: the review joined with its author's
// display name, its vote tallies and the requesting user's own vote.
type AnnotatedReview struct {
	Review
	AuthorName string `json:"author_name"`
	Upvotes    int64  `json:"upvotes"`
	Downvotes  int64  `json:"downvotes"`
	CallerVote int    `json:"caller_vote"`
}

// ReviewRepository defines the contract for review data access
type ReviewRepository interface {
	Create(review *Review) error
	Update(review *Review) error
	FindByID(id uint) (*Review, error)
	FindByStallAndAuthor(stallID, userID uint) (*Review, error)
	Delete(id uint) error
	RatingsForStall(stallID uint) ([]int, error)
	ListByStall(stallID, callerID uint, mode SortMode, filterRating int) ([]AnnotatedReview, error)
}

// VoteRepository defines the contract for vote data access. Toggle runs
// the full read-then-write transition inside one transaction so two
// concurrent casts from the same voter cannot produce duplicate rows.
type VoteRepository interface {
	// Toggle returns the voter's new and previous states.
	Toggle(reviewID, userID uint, voteType int) (newState, previous int, err error)
	TallyForReview(reviewID uint) (VoteTally, error)
}
