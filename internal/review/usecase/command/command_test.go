package command

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/review/repository"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	stallrepository "github.com/pinned-app/pinned/internal/stall/repository"
	userdomain "github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/apperror"
)

type recordingPublisher struct {
	published []uint
}

func (p *recordingPublisher) PublishReviewSubmitted(ctx context.Context, stallID, reviewID, authorID uint, rating int) error {
	p.published = append(p.published, reviewID)
	return nil
}

type fixture struct {
	db        *gorm.DB
	reviews   *repository.GormReviewRepository
	votes     *repository.GormVoteRepository
	stalls    *stallrepository.GormStallRepository
	publisher *recordingPublisher

	ownerID  uint
	authorID uint
	stallID  uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reviews.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&userdomain.User{}, &stalldomain.Stall{}, &domain.Review{}, &domain.Vote{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	owner := userdomain.User{Name: "owner", Email: "owner@campus.edu", Password: "x"}
	author := userdomain.User{Name: "author", Email: "author@campus.edu", Password: "x"}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&author).Error; err != nil {
		t.Fatal(err)
	}

	stall := stalldomain.Stall{OwnerID: owner.ID, Name: "Noodle Corner", Description: "d", FoodType: "Noodles"}
	if err := db.Create(&stall).Error; err != nil {
		t.Fatal(err)
	}

	return &fixture{
		db:        db,
		reviews:   repository.NewGormReviewRepository(db),
		votes:     repository.NewGormVoteRepository(db),
		stalls:    stallrepository.NewGormStallRepository(db),
		publisher: &recordingPublisher{},
		ownerID:   owner.ID,
		authorID:  author.ID,
		stallID:   stall.ID,
	}
}

func TestSubmitReviewCreates(t *testing.T) {
	f := newFixture(t)
	h := NewSubmitReviewHandler(f.reviews, f.stalls, f.publisher)

	result, err := h.Handle(context.Background(), SubmitReviewCommand{
		StallID:  f.stallID,
		AuthorID: f.authorID,
		Rating:   4,
		Title:    "Solid lunch spot",
		Comment:  "Generous portions.",
	})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !result.Created {
		t.Error("expected Created = true for a first submission")
	}
	if result.Review.ID == 0 {
		t.Error("expected the review to be persisted with an ID")
	}
	if len(f.publisher.published) != 1 || f.publisher.published[0] != result.Review.ID {
		t.Errorf("expected one published event for review %d, got %v", result.Review.ID, f.publisher.published)
	}
}

func TestSubmitReviewUpsertsInPlace(t *testing.T) {
	f := newFixture(t)
	h := NewSubmitReviewHandler(f.reviews, f.stalls, f.publisher)

	first, err := h.Handle(context.Background(), SubmitReviewCommand{
		StallID: f.stallID, AuthorID: f.authorID, Rating: 5, Title: "Amazing",
	})
	if err != nil {
		t.Fatal(err)
	}

	second, err := h.Handle(context.Background(), SubmitReviewCommand{
		StallID: f.stallID, AuthorID: f.authorID, Rating: 2, Title: "Quality dropped",
	})
	if err != nil {
		t.Fatal(err)
	}

	if second.Created {
		t.Error("expected Created = false for a resubmission")
	}
	if second.Review.ID != first.Review.ID {
		t.Errorf("resubmission created review %d, want edit of %d", second.Review.ID, first.Review.ID)
	}
	if second.Review.Rating != 2 || second.Review.Title != "Quality dropped" {
		t.Errorf("review not updated in place: %+v", second.Review)
	}

	var count int64
	f.db.Model(&domain.Review{}).Where("stall_id = ? AND user_id = ?", f.stallID, f.authorID).Count(&count)
	if count != 1 {
		t.Errorf("expected one review row per (stall, author), got %d", count)
	}

	// Only the original creation publishes.
	if len(f.publisher.published) != 1 {
		t.Errorf("expected one published event, got %d", len(f.publisher.published))
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	f := newFixture(t)
	h := NewSubmitReviewHandler(f.reviews, f.stalls, f.publisher)

	tests := []struct {
		name string
		cmd  SubmitReviewCommand
		want error
	}{
		{
			"unauthenticated",
			SubmitReviewCommand{StallID: f.stallID, Rating: 4, Title: "t"},
			apperror.ErrUnauthorized,
		},
		{
			"rating too low",
			SubmitReviewCommand{StallID: f.stallID, AuthorID: f.authorID, Rating: 0, Title: "t"},
			apperror.ErrValidation,
		},
		{
			"rating too high",
			SubmitReviewCommand{StallID: f.stallID, AuthorID: f.authorID, Rating: 6, Title: "t"},
			apperror.ErrValidation,
		},
		{
			"blank title",
			SubmitReviewCommand{StallID: f.stallID, AuthorID: f.authorID, Rating: 4, Title: "   "},
			apperror.ErrValidation,
		},
		{
			"owner reviewing own stall",
			SubmitReviewCommand{StallID: f.stallID, AuthorID: f.ownerID, Rating: 4, Title: "t"},
			apperror.ErrForbidden,
		},
		{
			"missing stall",
			SubmitReviewCommand{StallID: 999, AuthorID: f.authorID, Rating: 4, Title: "t"},
			apperror.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			if !errors.Is(err, tt.want) {
				t.Errorf("Handle() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDeleteReview(t *testing.T) {
	f := newFixture(t)
	submit := NewSubmitReviewHandler(f.reviews, f.stalls, f.publisher)
	del := NewDeleteReviewHandler(f.reviews)

	result, err := submit.Handle(context.Background(), SubmitReviewCommand{
		StallID: f.stallID, AuthorID: f.authorID, Rating: 4, Title: "t",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Someone else cannot delete it.
	err = del.Handle(DeleteReviewCommand{ReviewID: result.Review.ID, RequesterID: f.ownerID})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("foreign delete error = %v, want %v", err, apperror.ErrForbidden)
	}

	// The author can.
	if err := del.Handle(DeleteReviewCommand{ReviewID: result.Review.ID, RequesterID: f.authorID}); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}

	err = del.Handle(DeleteReviewCommand{ReviewID: result.Review.ID, RequesterID: f.authorID})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("second delete error = %v, want %v", err, apperror.ErrNotFound)
	}
}

func TestCastVote(t *testing.T) {
	f := newFixture(t)
	submit := NewSubmitReviewHandler(f.reviews, f.stalls, f.publisher)
	cast := NewCastVoteHandler(f.reviews, f.votes)

	created, err := submit.Handle(context.Background(), SubmitReviewCommand{
		StallID: f.stallID, AuthorID: f.authorID, Rating: 4, Title: "t",
	})
	if err != nil {
		t.Fatal(err)
	}
	reviewID := created.Review.ID

	t.Run("requires sign in", func(t *testing.T) {
		_, err := cast.Handle(CastVoteCommand{ReviewID: reviewID, VoteType: domain.VoteUp})
		if !errors.Is(err, apperror.ErrUnauthorized) {
			t.Errorf("error = %v, want %v", err, apperror.ErrUnauthorized)
		}
	})

	t.Run("rejects invalid vote type", func(t *testing.T) {
		for _, vt := range []int{0, 2, -2, 5} {
			_, err := cast.Handle(CastVoteCommand{ReviewID: reviewID, VoterID: f.ownerID, VoteType: vt})
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("VoteType %d: error = %v, want %v", vt, err, apperror.ErrValidation)
			}
		}
	})

	t.Run("missing review", func(t *testing.T) {
		_, err := cast.Handle(CastVoteCommand{ReviewID: 999, VoterID: f.ownerID, VoteType: domain.VoteUp})
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("error = %v, want %v", err, apperror.ErrNotFound)
		}
	})

	t.Run("toggle cycle", func(t *testing.T) {
		// Fresh upvote.
		result, err := cast.Handle(CastVoteCommand{ReviewID: reviewID, VoterID: f.ownerID, VoteType: domain.VoteUp})
		if err != nil {
			t.Fatal(err)
		}
		if result.CallerVote != domain.VoteUp || result.PreviousVote != domain.VoteNone {
			t.Fatalf("fresh vote = %+v", result)
		}
		if result.Upvotes != 1 || result.Downvotes != 0 {
			t.Fatalf("tallies after fresh vote = %+v", result)
		}

		// Flip to down.
		result, err = cast.Handle(CastVoteCommand{ReviewID: reviewID, VoterID: f.ownerID, VoteType: domain.VoteDown})
		if err != nil {
			t.Fatal(err)
		}
		if result.CallerVote != domain.VoteDown || result.PreviousVote != domain.VoteUp {
			t.Fatalf("flip = %+v", result)
		}
		if result.Upvotes != 0 || result.Downvotes != 1 {
			t.Fatalf("tallies after flip = %+v", result)
		}

		// Repeat removes.
		result, err = cast.Handle(CastVoteCommand{ReviewID: reviewID, VoterID: f.ownerID, VoteType: domain.VoteDown})
		if err != nil {
			t.Fatal(err)
		}
		if result.CallerVote != domain.VoteNone || result.PreviousVote != domain.VoteDown {
			t.Fatalf("removal = %+v", result)
		}
		if result.Upvotes != 0 || result.Downvotes != 0 {
			t.Fatalf("tallies after removal = %+v", result)
		}
	})
}
