package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/review/usecase/command"
	"github.com/pinned-app/pinned/internal/review/usecase/query"
	stalldomain "github.com/pinned-app/pinned/internal/stall/domain"
	userhttp "github.com/pinned-app/pinned/internal/user/delivery/http"
)

var (
	votesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinned_votes_cast_total",
			Help: "Total vote casts, by resulting state",
		},
		[]string{"result"},
	)
	reviewsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinned_reviews_submitted_total",
			Help: "Total review submissions, by kind",
		},
		[]string{"kind"},
	)
)

// ReviewHandler handles HTTP requests for reviews and votes
type ReviewHandler struct {
	submitHandler *command.SubmitReviewHandler
	deleteHandler *command.DeleteReviewHandler
	voteHandler   *command.CastVoteHandler

	listHandler *query.ListReviewsHandler
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews domain.ReviewRepository, votes domain.VoteRepository, stalls stalldomain.StallRepository, publisher command.ReviewEventPublisher) *ReviewHandler {
	return &ReviewHandler{
		submitHandler: command.NewSubmitReviewHandler(reviews, stalls, publisher),
		deleteHandler: command.NewDeleteReviewHandler(reviews),
		voteHandler:   command.NewCastVoteHandler(reviews, votes),
		listHandler:   query.NewListReviewsHandler(reviews, stalls),
	}
}

// ListReviews handles GET /stalls/{id}/reviews
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	filterRating := 0
	if raw := r.URL.Query().Get("filter_rating"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			userhttp.RespondError(w, http.StatusBadRequest, "filter_rating must be a number")
			return
		}
		filterRating = parsed
	}

	result, err := h.listHandler.Handle(query.ListReviewsQuery{
		StallID:      stallID,
		CallerID:     userhttp.CallerID(r),
		SortBy:       r.URL.Query().Get("sort_by"),
		FilterRating: filterRating,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, result)
}

// SubmitReview handles POST /stalls/{id}/reviews
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Rating      int    `json:"rating"`
		Title       string `json:"title"`
		Comment     string `json:"comment"`
		IsAnonymous bool   `json:"is_anonymous"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.submitHandler.Handle(r.Context(), command.SubmitReviewCommand{
		StallID:     stallID,
		AuthorID:    userhttp.CallerID(r),
		Rating:      req.Rating,
		Title:       req.Title,
		Comment:     req.Comment,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	status := http.StatusOK
	message := "Your review has been updated successfully!"
	kind := "updated"
	if result.Created {
		status = http.StatusCreated
		message = "Your review has been submitted successfully!"
		kind = "created"
	}
	reviewsSubmitted.WithLabelValues(kind).Inc()

	userhttp.RespondJSON(w, status, map[string]interface{}{
		"status":  "success",
		"message": message,
		"review":  result.Review,
	})
}

// DeleteReview handles DELETE /reviews/{id}
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.deleteHandler.Handle(command.DeleteReviewCommand{
		ReviewID:    reviewID,
		RequesterID: userhttp.CallerID(r),
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Your review has been deleted.",
	})
}

// CastVote handles POST /reviews/{id}/vote. The response is the small
// structured result the stall page consumes without a reload.
func (h *ReviewHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		VoteType int `json:"vote_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.voteHandler.Handle(command.CastVoteCommand{
		ReviewID: reviewID,
		VoterID:  userhttp.CallerID(r),
		VoteType: req.VoteType,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	var message string
	switch {
	case result.CallerVote == domain.VoteNone:
		message = "Your vote has been removed."
		votesCast.WithLabelValues("removed").Inc()
	case result.PreviousVote == domain.VoteNone:
		message = "Your vote has been recorded."
		votesCast.WithLabelValues("recorded").Inc()
	default:
		message = "Your vote has been updated."
		votesCast.WithLabelValues("updated").Inc()
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   message,
		"upvotes":   result.Upvotes,
		"downvotes": result.Downvotes,
		"userVote":  result.CallerVote,
	})
}

// RegisterRoutes registers all review routes
func (h *ReviewHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stalls/{id}/reviews",
		userhttp.MetricsMiddleware("/stalls/{id}/reviews", userhttp.OptionalAuthMiddleware(h.ListReviews))).Methods("GET")
	router.HandleFunc("/stalls/{id}/reviews",
		userhttp.MetricsMiddleware("/stalls/{id}/reviews", userhttp.AuthMiddleware(h.SubmitReview))).Methods("POST")
	router.HandleFunc("/reviews/{id}",
		userhttp.MetricsMiddleware("/reviews/{id}", userhttp.AuthMiddleware(h.DeleteReview))).Methods("DELETE")
	router.HandleFunc("/reviews/{id}/vote",
		userhttp.MetricsMiddleware("/reviews/{id}/vote", userhttp.AuthMiddleware(h.CastVote))).Methods("POST")
}

// pathID parses a numeric path variable, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
