package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pinned-app/pinned/internal/review/domain"
)

// GormReviewRepository implements ReviewRepository using GORM
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GORM review repository
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create inserts a new review. A duplicate (stall, author) pair surfaces
// as gorm.ErrDuplicatedKey so the caller can retry as an update.
func (r *GormReviewRepository) Create(review *domain.Review) error {
	if err := r.db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// Update saves a review's mutable fields in place
func (r *GormReviewRepository) Update(review *domain.Review) error {
	if err := r.db.Save(review).Error; err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

// FindByID retrieves a review by ID
func (r *GormReviewRepository) FindByID(id uint) (*domain.Review, error) {
	var review domain.Review
	if err := r.db.First(&review, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

// FindByStallAndAuthor retrieves a user's review for a stall, if any
func (r *GormReviewRepository) FindByStallAndAuthor(stallID, userID uint) (*domain.Review, error) {
	var review domain.Review
	err := r.db.Where("stall_id = ? AND user_id = ?", stallID, userID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return &review, nil
}

// Delete removes a review together with its votes
func (r *GormReviewRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", id).Delete(&domain.Vote{}).Error; err != nil {
			return fmt.Errorf("failed to delete review votes: %w", err)
		}
		result := tx.Delete(&domain.Review{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete review: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// RatingsForStall returns the rating snapshot for all of a stall's reviews
func (r *GormReviewRepository) RatingsForStall(stallID uint) ([]int, error) {
	var ratings []int
	err := r.db.Model(&domain.Review{}).
		Where("stall_id = ?", stallID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}
	return ratings, nil
}

// ListByStall returns a stall's reviews annotated with author name, vote
// tallies and the caller's own vote, ordered by the given sort mode.
// The ordering is resolved from the closed SortMode set, never from
// caller-supplied SQL.
func (r *GormReviewRepository) ListByStall(stallID, callerID uint, mode domain.SortMode, filterRating int) ([]domain.AnnotatedReview, error) {
	q := r.db.Table("reviews").
		Select(`reviews.*, COALESCE(users.name, '') AS author_name,
			(SELECT COUNT(*) FROM review_votes rv WHERE rv.review_id = reviews.id AND rv.vote_type = 1) AS upvotes,
			(SELECT COUNT(*) FROM review_votes rv WHERE rv.review_id = reviews.id AND rv.vote_type = -1) AS downvotes,
			COALESCE((SELECT rv.vote_type FROM review_votes rv WHERE rv.review_id = reviews.id AND rv.user_id = ?), 0) AS caller_vote`,
			callerID).
		Joins("LEFT JOIN users ON users.id = reviews.user_id").
		Where("reviews.stall_id = ?", stallID)

	if filterRating > 0 {
		q = q.Where("reviews.rating = ?", filterRating)
	}

	switch mode {
	case domain.SortOldest:
		q = q.Order("reviews.created_at ASC")
	case domain.SortMostUpvoted:
		q = q.Order("upvotes DESC, reviews.created_at DESC")
	case domain.SortMostDownvoted:
		q = q.Order("downvotes DESC, reviews.created_at DESC")
	default:
		q = q.Order("reviews.created_at DESC")
	}

	var rows []domain.AnnotatedReview
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return rows, nil
}

// AutoMigrate runs database migrations for the review tables
func (r *GormReviewRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Review{}, &domain.Vote{})
}

// GormVoteRepository implements VoteRepository using GORM
type GormVoteRepository struct {
	db *gorm.DB
}

// NewGormVoteRepository creates a new GORM vote repository
func NewGormVoteRepository(db *gorm.DB) *GormVoteRepository {
	return &GormVoteRepository{db: db}
}

// Toggle applies one cast of the vote state machine atomically and
// returns the voter's resulting state. The unique index on
// (review_id, user_id) is the safety net against a race between two
// concurrent casts from the same voter: the losing insert falls back to
// the transition path.
func (r *GormVoteRepository) Toggle(reviewID, userID uint, voteType int) (int, int, error) {
	newState := voteType
	previous := domain.VoteNone

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing domain.Vote
		err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			vote := domain.Vote{ReviewID: reviewID, UserID: userID, VoteType: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				if !errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("failed to insert vote: %w", err)
				}
				// Lost the race to a concurrent cast; re-read and transition.
				if err := tx.Where("review_id = ? AND user_id = ?", reviewID, userID).First(&existing).Error; err != nil {
					return fmt.Errorf("failed to re-read vote: %w", err)
				}
				previous = existing.VoteType
				return r.transition(tx, &existing, voteType, &newState)
			}
			newState = voteType
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read vote: %w", err)
		}

		previous = existing.VoteType
		return r.transition(tx, &existing, voteType, &newState)
	})
	if err != nil {
		return domain.VoteNone, domain.VoteNone, err
	}
	return newState, previous, nil
}

func (r *GormVoteRepository) transition(tx *gorm.DB, existing *domain.Vote, voteType int, newState *int) error {
	next := domain.NextVoteState(existing.VoteType, voteType)
	*newState = next

	if next == domain.VoteNone {
		// Same button clicked again removes the vote
		if err := tx.Delete(&domain.Vote{}, existing.ID).Error; err != nil {
			return fmt.Errorf("failed to remove vote: %w", err)
		}
		return nil
	}

	if err := tx.Model(&domain.Vote{}).Where("id = ?", existing.ID).Update("vote_type", next).Error; err != nil {
		return fmt.Errorf("failed to flip vote: %w", err)
	}
	return nil
}

// TallyForReview counts a review's up and down votes
func (r *GormVoteRepository) TallyForReview(reviewID uint) (domain.VoteTally, error) {
	var tally domain.VoteTally

	err := r.db.Model(&domain.Vote{}).
		Where("review_id = ? AND vote_type = ?", reviewID, domain.VoteUp).
		Count(&tally.Upvotes).Error
	if err != nil {
		return tally, fmt.Errorf("failed to count upvotes: %w", err)
	}

	err = r.db.Model(&domain.Vote{}).
		Where("review_id = ? AND vote_type = ?", reviewID, domain.VoteDown).
		Count(&tally.Downvotes).Error
	if err != nil {
		return tally, fmt.Errorf("failed to count downvotes: %w", err)
	}

	return tally, nil
}
