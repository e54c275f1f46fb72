package query

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

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

func setup(t *testing.T) (*ListReviewsHandler, *gorm.DB, uint, []userdomain.User) {
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

	users := []userdomain.User{
		{Name: "owner", Email: "owner@campus.edu", Password: "x"},
		{Name: "Alice", Email: "alice@campus.edu", Password: "x"},
		{Name: "Bob", Email: "bob@campus.edu", Password: "x"},
		{Name: "Cara", Email: "cara@campus.edu", Password: "x"},
		{Name: "Dan", Email: "dan@campus.edu", Password: "x"},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatal(err)
		}
	}

	stall := stalldomain.Stall{OwnerID: users[0].ID, Name: "Noodle Corner", Description: "d", FoodType: "Noodles"}
	if err := db.Create(&stall).Error; err != nil {
		t.Fatal(err)
	}

	// Ratings 5, 5, 4, 3 so the aggregate is 4.3 over 4 reviews.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ratings := []int{5, 5, 4, 3}
	for i, rating := range ratings {
		review := domain.Review{
			StallID:     stall.ID,
			UserID:      users[i+1].ID,
			Rating:      rating,
			Title:       "title",
			IsAnonymous: i == 0, // Alice reviews anonymously
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			UpdatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if err := db.Create(&review).Error; err != nil {
			t.Fatal(err)
		}
	}

	handler := NewListReviewsHandler(
		repository.NewGormReviewRepository(db),
		stallrepository.NewGormStallRepository(db),
	)
	return handler, db, stall.ID, users
}

func TestListReviewsAggregateIgnoresFilter(t *testing.T) {
	handler, _, stallID, _ := setup(t)

	result, err := handler.Handle(ListReviewsQuery{StallID: stallID, FilterRating: 5})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(result.Reviews) != 2 {
		t.Errorf("filtered listing has %d reviews, want 2", len(result.Reviews))
	}
	// The aggregate covers all four reviews, not the filtered subset.
	if result.Summary.AverageRating != 4.3 {
		t.Errorf("AverageRating = %v, want 4.3", result.Summary.AverageRating)
	}
	if result.Summary.ReviewCount != 4 {
		t.Errorf("ReviewCount = %d, want 4", result.Summary.ReviewCount)
	}
}

func TestListReviewsSortEcho(t *testing.T) {
	handler, _, stallID, _ := setup(t)

	result, err := handler.Handle(ListReviewsQuery{StallID: stallID, SortBy: "bogus"})
	if err != nil {
		t.Fatal(err)
	}
	if result.SortBy != "newest" {
		t.Errorf("SortBy = %q, want fallback %q", result.SortBy, "newest")
	}

	result, err = handler.Handle(ListReviewsQuery{StallID: stallID, SortBy: "oldest"})
	if err != nil {
		t.Fatal(err)
	}
	if result.SortBy != "oldest" {
		t.Errorf("SortBy = %q, want %q", result.SortBy, "oldest")
	}
}

func TestListReviewsAnonymityMask(t *testing.T) {
	handler, _, stallID, users := setup(t)
	alice := users[1]

	t.Run("other callers see Anonymous", func(t *testing.T) {
		result, err := handler.Handle(ListReviewsQuery{StallID: stallID, CallerID: users[2].ID, SortBy: "oldest"})
		if err != nil {
			t.Fatal(err)
		}
		masked := result.Reviews[0]
		if masked.AuthorName != "Anonymous" {
			t.Errorf("AuthorName = %q, want Anonymous", masked.AuthorName)
		}
		if masked.UserID != 0 {
			t.Errorf("UserID = %d, want 0 (identity hidden)", masked.UserID)
		}
		// The rating still feeds the listing.
		if masked.Rating != 5 {
			t.Errorf("Rating = %d, want 5", masked.Rating)
		}
	})

	t.Run("author sees their own name", func(t *testing.T) {
		result, err := handler.Handle(ListReviewsQuery{StallID: stallID, CallerID: alice.ID, SortBy: "oldest"})
		if err != nil {
			t.Fatal(err)
		}
		own := result.Reviews[0]
		if own.AuthorName != "Alice" || own.UserID != alice.ID {
			t.Errorf("author's own anonymous review masked: %+v", own)
		}
	})
}

func TestListReviewsValidation(t *testing.T) {
	handler, _, stallID, _ := setup(t)

	_, err := handler.Handle(ListReviewsQuery{StallID: stallID, FilterRating: 6})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("FilterRating 6: error = %v, want %v", err, apperror.ErrValidation)
	}

	_, err = handler.Handle(ListReviewsQuery{StallID: stallID, FilterRating: -1})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("FilterRating -1: error = %v, want %v", err, apperror.ErrValidation)
	}

	_, err = handler.Handle(ListReviewsQuery{StallID: 999})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing stall: error = %v, want %v", err, apperror.ErrNotFound)
	}
}
