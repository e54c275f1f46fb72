package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pinned-app/pinned/internal/user/domain"
	"github.com/pinned-app/pinned/internal/user/usecase/command"
	"github.com/pinned-app/pinned/internal/user/usecase/query"
	"github.com/pinned-app/pinned/pkg/apperror"
	"github.com/pinned-app/pinned/pkg/logger"
)

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pinned_user_requests_total",
			Help: "Total number of requests to account endpoints",
		},
		[]string{"method", "endpoint", "status"},
	)
	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pinned_user_request_duration_seconds",
			Help:    "Duration of account requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	registeredUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pinned_registered_users",
			Help: "Number of registered accounts",
		},
	)
)

// UserHandler handles HTTP requests for accounts
type UserHandler struct {
	registerHandler *command.RegisterUserHandler
	loginHandler    *command.LoginUserHandler
	updateHandler   *command.UpdateUserHandler
	deleteHandler   *command.DeleteAccountHandler

	getUserHandler *query.GetUserHandler

	repo domain.UserRepository
}

// NewUserHandler creates a new user handler
func NewUserHandler(repo domain.UserRepository) *UserHandler {
	return &UserHandler{
		registerHandler: command.NewRegisterUserHandler(repo),
		loginHandler:    command.NewLoginUserHandler(repo),
		updateHandler:   command.NewUpdateUserHandler(repo),
		deleteHandler:   command.NewDeleteAccountHandler(repo),
		getUserHandler:  query.NewGetUserHandler(repo),
		repo:            repo,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware wraps handlers with Prometheus request metrics
func MetricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Register handles POST /auth/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.registerHandler.Handle(command.RegisterUserCommand{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondAppError(w, r, err)
		return
	}

	h.updateRegisteredUsersMetric()
	RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.loginHandler.Handle(command.LoginUserCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondAppError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, response)
}

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.getUserHandler.Handle(query.GetUserQuery{ID: CallerID(r)})
	if err != nil {
		RespondAppError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.updateHandler.Handle(command.UpdateUserCommand{
		ID:       CallerID(r),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		RespondAppError(w, r, err)
		return
	}

	RespondJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /users/me
func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.deleteHandler.Handle(command.DeleteAccountCommand{UserID: CallerID(r)}); err != nil {
		RespondAppError(w, r, err)
		return
	}

	h.updateRegisteredUsersMetric()
	RespondJSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}

// HealthCheck handles GET /health
func (h *UserHandler) HealthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
			})
			return
		}

		RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}
}

func (h *UserHandler) updateRegisteredUsersMetric() {
	count, err := h.repo.Count()
	if err == nil {
		registeredUsers.Set(float64(count))
	}
}

// RegisterRoutes registers all account routes
func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", MetricsMiddleware("/auth/register", h.Register)).Methods("POST")
	router.HandleFunc("/auth/login", MetricsMiddleware("/auth/login", h.Login)).Methods("POST")

	router.HandleFunc("/users/me", MetricsMiddleware("/users/me", AuthMiddleware(h.GetProfile))).Methods("GET")
	router.HandleFunc("/users/me", MetricsMiddleware("/users/me", AuthMiddleware(h.UpdateProfile))).Methods("PUT")
	router.HandleFunc("/users/me", MetricsMiddleware("/users/me", AuthMiddleware(h.DeleteAccount))).Methods("DELETE")
}

// RegisterHealthCheck registers the health check endpoint
func (h *UserHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", h.HealthCheck(db)).Methods("GET")
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondAppError maps business errors onto HTTP status codes; anything
// unexpected is logged and reported as a generic internal error
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperror.ErrUnauthorized):
		RespondError(w, http.StatusUnauthorized, "Please sign in to continue")
	case errors.Is(err, apperror.ErrForbidden):
		RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, apperror.ErrNotFound):
		RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apperror.ErrConflict):
		RespondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		RespondError(w, http.StatusInternalServerError, "Something went wrong, please try again later")
	}
}
