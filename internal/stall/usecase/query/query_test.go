package query

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	reviewrepository "github.com/pinned-app/pinned/internal/review/repository"
	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/internal/stall/repository"
	userdomain "github.com/pinned-app/pinned/internal/user/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "stalls.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(&userdomain.User{}, &domain.Stall{}, &domain.MenuItem{}, &reviewdomain.Review{})
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedOwner(t *testing.T, db *gorm.DB, email string) uint {
	t.Helper()
	user := userdomain.User{Name: "owner", Email: email, Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func TestGetMapPinsSkipsUnpinnedStalls(t *testing.T) {
	db := openTestDB(t)
	x, y := 40.0, 60.0

	pinned := domain.Stall{
		OwnerID: seedOwner(t, db, "a@campus.edu"), Name: "Laksa House",
		Description: "d", FoodType: "Noodles", Location: "Block A",
		PinX: &x, PinY: &y,
	}
	unpinned := domain.Stall{
		OwnerID: seedOwner(t, db, "b@campus.edu"), Name: "Juice Bar",
		Description: "d", FoodType: "Drinks",
	}
	for _, s := range []*domain.Stall{&pinned, &unpinned} {
		if err := db.Create(s).Error; err != nil {
			t.Fatal(err)
		}
	}

	pins, err := NewGetMapPinsHandler(repository.NewGormStallRepository(db)).Handle()
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(pins) != 1 {
		t.Fatalf("got %d pins, want 1", len(pins))
	}
	if pins[0].StallID != pinned.ID || pins[0].Name != "Laksa House" {
		t.Errorf("pin = %+v", pins[0])
	}
	if pins[0].Pin.X != 40 || pins[0].Pin.Y != 60 {
		t.Errorf("coordinates = (%v, %v), want (40, 60)", pins[0].Pin.X, pins[0].Pin.Y)
	}
}

func TestListStallsCarriesRatingSummary(t *testing.T) {
	db := openTestDB(t)
	ownerID := seedOwner(t, db, "a@campus.edu")

	stall := domain.Stall{OwnerID: ownerID, Name: "Laksa House", Description: "d", FoodType: "Noodles"}
	if err := db.Create(&stall).Error; err != nil {
		t.Fatal(err)
	}
	for i, rating := range []int{5, 4} {
		reviewerID := seedOwner(t, db, fmt.Sprintf("reviewer%d@campus.edu", i))
		review := reviewdomain.Review{StallID: stall.ID, UserID: reviewerID, Rating: rating, Title: "t"}
		if err := db.Create(&review).Error; err != nil {
			t.Fatal(err)
		}
	}

	handler := NewListStallsHandler(
		repository.NewGormStallRepository(db),
		reviewrepository.NewGormReviewRepository(db),
	)
	listings, err := handler.Handle(ListStallsQuery{Limit: 10})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1", len(listings))
	}
	if listings[0].Summary.AverageRating != 4.5 || listings[0].Summary.ReviewCount != 2 {
		t.Errorf("summary = %+v, want 4.5 over 2 reviews", listings[0].Summary)
	}
}
