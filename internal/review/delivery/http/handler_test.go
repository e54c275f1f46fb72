package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/review/repository"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	stallrepository "github.com/pinned-app/pinned/internal/stall/repository"
	userdomain "github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/pkg/auth"
)

type testEnv struct {
	router  *mux.Router
	db      *gorm.DB
	stallID uint
	owner   userdomain.User
	voter   userdomain.User
}

func newTestEnv(t *testing.T) *testEnv {
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

	env := &testEnv{
		db:    db,
		owner: userdomain.User{Name: "owner", Email: "owner@campus.edu", Password: "x"},
		voter: userdomain.User{Name: "voter", Email: "voter@campus.edu", Password: "x"},
	}
	if err := db.Create(&env.owner).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&env.voter).Error; err != nil {
		t.Fatal(err)
	}

	stall := stalldomain.Stall{OwnerID: env.owner.ID, Name: "Laksa House", Description: "d", FoodType: "Noodles"}
	if err := db.Create(&stall).Error; err != nil {
		t.Fatal(err)
	}
	env.stallID = stall.ID

	handler := NewReviewHandler(
		repository.NewGormReviewRepository(db),
		repository.NewGormVoteRepository(db),
		stallrepository.NewGormStallRepository(db),
		nil,
	)
	env.router = mux.NewRouter()
	handler.RegisterRoutes(env.router)
	return env
}

func (env *testEnv) bearer(t *testing.T, user userdomain.User) string {
	t.Helper()
	token, err := auth.GenerateToken(user.ID, user.Name)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + token
}

func (env *testEnv) do(t *testing.T, method, target, authHeader string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) seedReview(t *testing.T, user userdomain.User, rating int) uint {
	t.Helper()
	review := domain.Review{StallID: env.stallID, UserID: user.ID, Rating: rating, Title: "t"}
	if err := env.db.Create(&review).Error; err != nil {
		t.Fatal(err)
	}
	return review.ID
}

func TestSubmitReviewEndpoint(t *testing.T) {
	env := newTestEnv(t)
	body := map[string]interface{}{"rating": 5, "title": "Great laksa"}

	t.Run("requires authentication", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/stalls/1/reviews", "", body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("creates then updates", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/stalls/1/reviews", env.bearer(t, env.voter), body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		rec = env.do(t, http.MethodPost, "/stalls/1/reviews", env.bearer(t, env.voter),
			map[string]interface{}{"rating": 3, "title": "Changed my mind"})
		if rec.Code != http.StatusOK {
			t.Fatalf("resubmit status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if resp.Message != "Your review has been updated successfully!" {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("owner cannot review own stall", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/stalls/1/reviews", env.bearer(t, env.owner), body)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestListReviewsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedReview(t, env.voter, 4)

	rec := env.do(t, http.MethodGet, "/stalls/1/reviews", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Reviews []json.RawMessage `json:"reviews"`
		Summary struct {
			AverageRating float64 `json:"average_rating"`
			ReviewCount   int     `json:"review_count"`
		} `json:"summary"`
		SortBy string `json:"sort_by"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Reviews) != 1 || resp.Summary.ReviewCount != 1 || resp.Summary.AverageRating != 4 {
		t.Errorf("unexpected listing: %s", rec.Body.String())
	}
	if resp.SortBy != "newest" {
		t.Errorf("sort_by = %q, want default newest", resp.SortBy)
	}

	rec = env.do(t, http.MethodGet, "/stalls/1/reviews?filter_rating=abc", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", rec.Code)
	}
}

func TestCastVoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedReview(t, env.owner, 4)
	target := "/reviews/1/vote"

	t.Run("requires authentication", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, target, "", map[string]int{"vote_type": 1})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	type voteResp struct {
		Status    string `json:"status"`
		Message   string `json:"message"`
		Upvotes   int64  `json:"upvotes"`
		Downvotes int64  `json:"downvotes"`
		UserVote  int    `json:"userVote"`
	}
	cast := func(t *testing.T, voteType int) voteResp {
		t.Helper()
		rec := env.do(t, http.MethodPost, target, env.bearer(t, env.voter), map[string]int{"vote_type": voteType})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var resp voteResp
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		return resp
	}

	t.Run("toggle cycle", func(t *testing.T) {
		resp := cast(t, 1)
		if resp.Message != "Your vote has been recorded." || resp.Upvotes != 1 || resp.UserVote != 1 {
			t.Errorf("fresh upvote: %+v", resp)
		}

		resp = cast(t, -1)
		if resp.Message != "Your vote has been updated." || resp.Upvotes != 0 || resp.Downvotes != 1 || resp.UserVote != -1 {
			t.Errorf("flip to downvote: %+v", resp)
		}

		resp = cast(t, -1)
		if resp.Message != "Your vote has been removed." || resp.Downvotes != 0 || resp.UserVote != 0 {
			t.Errorf("repeat removes: %+v", resp)
		}
	})

	t.Run("invalid vote type", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, target, env.bearer(t, env.voter), map[string]int{"vote_type": 5})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing review", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/reviews/999/vote", env.bearer(t, env.voter), map[string]int{"vote_type": 1})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestDeleteReviewEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedReview(t, env.voter, 4)

	rec := env.do(t, http.MethodDelete, "/reviews/1", env.bearer(t, env.owner), nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign delete status = %d, want 403: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/reviews/1", env.bearer(t, env.voter), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("author delete status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodDelete, "/reviews/1", env.bearer(t, env.voter), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}
