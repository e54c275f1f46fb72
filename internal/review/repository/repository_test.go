package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pinned-app/pinned/internal/review/domain"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	userdomain "github.com/pinned-app/pinned/internal/user/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reviews.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&userdomain.User{},
		&stalldomain.Stall{},
		&domain.Review{},
		&domain.Vote{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) userdomain.User {
	t.Helper()
	u := userdomain.User{Name: name, Email: email, Password: "x"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedStall(t *testing.T, db *gorm.DB, ownerID uint) stalldomain.Stall {
	t.Helper()
	s := stalldomain.Stall{OwnerID: ownerID, Name: "Noodle Corner", Description: "d", FoodType: "Noodles"}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("failed to seed stall: %v", err)
	}
	return s
}

func seedReview(t *testing.T, db *gorm.DB, stallID, userID uint, rating int, createdAt time.Time) domain.Review {
	t.Helper()
	r := domain.Review{
		StallID:   stallID,
		UserID:    userID,
		Rating:    rating,
		Title:     "title",
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := db.Create(&r).Error; err != nil {
		t.Fatalf("failed to seed review: %v", err)
	}
	return r
}

func TestReviewCreateDuplicate(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormReviewRepository(db)

	owner := seedUser(t, db, "owner", "owner@campus.edu")
	author := seedUser(t, db, "author", "author@campus.edu")
	stall := seedStall(t, db, owner.ID)

	first := &domain.Review{StallID: stall.ID, UserID: author.ID, Rating: 4, Title: "Good"}
	if err := repo.Create(first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second := &domain.Review{StallID: stall.ID, UserID: author.ID, Rating: 2, Title: "Changed my mind"}
	err := repo.Create(second)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected gorm.ErrDuplicatedKey, got %v", err)
	}
}

func TestReviewDeleteMissing(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormReviewRepository(db)

	if err := repo.Delete(999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestVoteToggleStateMachine(t *testing.T) {
	db := openTestDB(t)
	reviews := NewGormReviewRepository(db)
	votes := NewGormVoteRepository(db)

	owner := seedUser(t, db, "owner", "owner@campus.edu")
	author := seedUser(t, db, "author", "author@campus.edu")
	voter := seedUser(t, db, "voter", "voter@campus.edu")
	stall := seedStall(t, db, owner.ID)

	review := &domain.Review{StallID: stall.ID, UserID: author.ID, Rating: 5, Title: "Great"}
	if err := reviews.Create(review); err != nil {
		t.Fatalf("failed to create review: %v", err)
	}

	// Fresh upvote.
	state, previous, err := votes.Toggle(review.ID, voter.ID, domain.VoteUp)
	if err != nil {
		t.Fatalf("fresh upvote failed: %v", err)
	}
	if state != domain.VoteUp || previous != domain.VoteNone {
		t.Fatalf("fresh upvote = (%d, %d), want (%d, %d)", state, previous, domain.VoteUp, domain.VoteNone)
	}

	// Opposite cast flips in place.
	state, previous, err = votes.Toggle(review.ID, voter.ID, domain.VoteDown)
	if err != nil {
		t.Fatalf("flip failed: %v", err)
	}
	if state != domain.VoteDown || previous != domain.VoteUp {
		t.Fatalf("flip = (%d, %d), want (%d, %d)", state, previous, domain.VoteDown, domain.VoteUp)
	}

	var count int64
	db.Model(&domain.Vote{}).Where("review_id = ? AND user_id = ?", review.ID, voter.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one vote row after flip, got %d", count)
	}

	// Repeating the current vote removes the row.
	state, previous, err = votes.Toggle(review.ID, voter.ID, domain.VoteDown)
	if err != nil {
		t.Fatalf("removal failed: %v", err)
	}
	if state != domain.VoteNone || previous != domain.VoteDown {
		t.Fatalf("removal = (%d, %d), want (%d, %d)", state, previous, domain.VoteNone, domain.VoteDown)
	}

	db.Model(&domain.Vote{}).Where("review_id = ? AND user_id = ?", review.ID, voter.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected vote row removed, got %d rows", count)
	}

	tally, err := votes.TallyForReview(review.ID)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Upvotes != 0 || tally.Downvotes != 0 {
		t.Fatalf("tally = %+v, want zeros", tally)
	}
}

func TestTallyCountsPerReview(t *testing.T) {
	db := openTestDB(t)
	reviews := NewGormReviewRepository(db)
	votes := NewGormVoteRepository(db)

	owner := seedUser(t, db, "owner", "owner@campus.edu")
	author := seedUser(t, db, "author", "author@campus.edu")
	stall := seedStall(t, db, owner.ID)

	review := &domain.Review{StallID: stall.ID, UserID: author.ID, Rating: 5, Title: "Great"}
	other := &domain.Review{StallID: stall.ID, UserID: owner.ID, Rating: 1, Title: "Meh"}
	if err := reviews.Create(review); err != nil {
		t.Fatal(err)
	}
	if err := reviews.Create(other); err != nil {
		t.Fatal(err)
	}

	voters := make([]userdomain.User, 3)
	for i := range voters {
		voters[i] = seedUser(t, db, "v", "v"+string(rune('a'+i))+"@campus.edu")
	}

	if _, _, err := votes.Toggle(review.ID, voters[0].ID, domain.VoteUp); err != nil {
		t.Fatal(err)
	}
	if _, _, err := votes.Toggle(review.ID, voters[1].ID, domain.VoteUp); err != nil {
		t.Fatal(err)
	}
	if _, _, err := votes.Toggle(review.ID, voters[2].ID, domain.VoteDown); err != nil {
		t.Fatal(err)
	}
	// A vote on another review must not leak into this tally.
	if _, _, err := votes.Toggle(other.ID, voters[0].ID, domain.VoteDown); err != nil {
		t.Fatal(err)
	}

	tally, err := votes.TallyForReview(review.ID)
	if err != nil {
		t.Fatalf("tally failed: %v", err)
	}
	if tally.Upvotes != 2 || tally.Downvotes != 1 {
		t.Fatalf("tally = %+v, want 2 up / 1 down", tally)
	}
}

func TestListByStall(t *testing.T) {
	db := openTestDB(t)
	reviews := NewGormReviewRepository(db)
	votes := NewGormVoteRepository(db)

	owner := seedUser(t, db, "owner", "owner@campus.edu")
	alice := seedUser(t, db, "Alice", "alice@campus.edu")
	bob := seedUser(t, db, "Bob", "bob@campus.edu")
	cara := seedUser(t, db, "Cara", "cara@campus.edu")
	stall := seedStall(t, db, owner.ID)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := seedReview(t, db, stall.ID, alice.ID, 5, base)
	middle := seedReview(t, db, stall.ID, bob.ID, 3, base.Add(time.Hour))
	newest := seedReview(t, db, stall.ID, cara.ID, 5, base.Add(2*time.Hour))

	// Bob's review is the popular one.
	if _, _, err := votes.Toggle(middle.ID, alice.ID, domain.VoteUp); err != nil {
		t.Fatal(err)
	}
	if _, _, err := votes.Toggle(middle.ID, cara.ID, domain.VoteUp); err != nil {
		t.Fatal(err)
	}
	if _, _, err := votes.Toggle(oldest.ID, bob.ID, domain.VoteDown); err != nil {
		t.Fatal(err)
	}

	t.Run("newest first", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortNewest, 0)
		if err != nil {
			t.Fatal(err)
		}
		wantOrder := []uint{newest.ID, middle.ID, oldest.ID}
		assertOrder(t, rows, wantOrder)
	})

	t.Run("oldest first", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortOldest, 0)
		if err != nil {
			t.Fatal(err)
		}
		assertOrder(t, rows, []uint{oldest.ID, middle.ID, newest.ID})
	})

	t.Run("most upvoted first", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortMostUpvoted, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 || rows[0].ID != middle.ID {
			t.Fatalf("expected review %d first, got %+v", middle.ID, rows)
		}
		if rows[0].Upvotes != 2 {
			t.Errorf("upvotes = %d, want 2", rows[0].Upvotes)
		}
		// Zero-upvote rows tie-break newest first.
		if rows[1].ID != newest.ID || rows[2].ID != oldest.ID {
			t.Errorf("tie-break order = [%d %d], want [%d %d]", rows[1].ID, rows[2].ID, newest.ID, oldest.ID)
		}
	})

	t.Run("most downvoted first", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortMostDownvoted, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 3 || rows[0].ID != oldest.ID {
			t.Fatalf("expected review %d first, got %+v", oldest.ID, rows)
		}
	})

	t.Run("filter by rating", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortNewest, 5)
		if err != nil {
			t.Fatal(err)
		}
		assertOrder(t, rows, []uint{newest.ID, oldest.ID})
	})

	t.Run("author names joined", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortOldest, 0)
		if err != nil {
			t.Fatal(err)
		}
		if rows[0].AuthorName != "Alice" || rows[1].AuthorName != "Bob" {
			t.Errorf("author names = [%q %q], want [Alice Bob]", rows[0].AuthorName, rows[1].AuthorName)
		}
	})

	t.Run("caller vote annotated", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, alice.ID, domain.SortOldest, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			switch row.ID {
			case middle.ID:
				if row.CallerVote != domain.VoteUp {
					t.Errorf("caller vote on %d = %d, want %d", row.ID, row.CallerVote, domain.VoteUp)
				}
			default:
				if row.CallerVote != domain.VoteNone {
					t.Errorf("caller vote on %d = %d, want none", row.ID, row.CallerVote)
				}
			}
		}
	})

	t.Run("anonymous caller sees no votes", func(t *testing.T) {
		rows, err := reviews.ListByStall(stall.ID, 0, domain.SortOldest, 0)
		if err != nil {
			t.Fatal(err)
		}
		for _, row := range rows {
			if row.CallerVote != domain.VoteNone {
				t.Errorf("caller vote on %d = %d, want none for anonymous caller", row.ID, row.CallerVote)
			}
		}
	})
}

func assertOrder(t *testing.T, rows []domain.AnnotatedReview, want []uint) {
	t.Helper()
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, id := range want {
		if rows[i].ID != id {
			t.Errorf("row %d = review %d, want %d", i, rows[i].ID, id)
		}
	}
}
