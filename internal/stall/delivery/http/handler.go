package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	reviewdomain "github.com/pinned-app/pinned/internal/review/domain"
	"github.com/pinned-app/pinned/internal/stall/domain"
	"github.com/pinned-app/pinned/internal/stall/usecase/command"
	"github.com/pinned-app/pinned/internal/stall/usecase/query"
	userhttp "github.com/pinned-app/pinned/internal/user/delivery/http"
	"github.com/pinned-app/pinned/pkg/logger"
)

var (
	registeredStalls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pinned_registered_stalls",
			Help: "Number of registered food stalls",
		},
	)
	pinsMoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pinned_pins_moved_total",
			Help: "Total pin placements and moves",
		},
	)
)

// StallHandler handles HTTP requests for stalls, pins and menus
type StallHandler struct {
	registerHandler   *command.RegisterStallHandler
	updateHandler     *command.UpdateStallHandler
	deleteHandler     *command.DeleteStallHandler
	setPinHandler     *command.SetPinHandler
	addItemHandler    *command.AddMenuItemHandler
	updateItemHandler *command.UpdateMenuItemHandler
	deleteItemHandler *command.DeleteMenuItemHandler

	getHandler  *query.GetStallHandler
	listHandler *query.ListStallsHandler
	pinsHandler *query.GetMapPinsHandler

	stalls domain.StallRepository
}

// NewStallHandler creates a new stall handler
func NewStallHandler(stalls domain.StallRepository, reviews reviewdomain.ReviewRepository) *StallHandler {
	return &StallHandler{
		registerHandler:   command.NewRegisterStallHandler(stalls),
		updateHandler:     command.NewUpdateStallHandler(stalls),
		deleteHandler:     command.NewDeleteStallHandler(stalls),
		setPinHandler:     command.NewSetPinHandler(stalls),
		addItemHandler:    command.NewAddMenuItemHandler(stalls),
		updateItemHandler: command.NewUpdateMenuItemHandler(stalls),
		deleteItemHandler: command.NewDeleteMenuItemHandler(stalls),
		getHandler:        query.NewGetStallHandler(stalls, reviews),
		listHandler:       query.NewListStallsHandler(stalls, reviews),
		pinsHandler:       query.NewGetMapPinsHandler(stalls),
		stalls:            stalls,
	}
}

type stallRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	FoodCategories []string `json:"food_categories"`
	Location       string   `json:"location"`
	LogoPath       string   `json:"logo_path"`
	Hours          string   `json:"hours"`
	PinX           *float64 `json:"pin_x"`
	PinY           *float64 `json:"pin_y"`
}

// RegisterStall handles POST /stalls
func (h *StallHandler) RegisterStall(w http.ResponseWriter, r *http.Request) {
	var req stallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stall, err := h.registerHandler.Handle(command.RegisterStallCommand{
		OwnerID:        userhttp.CallerID(r),
		Name:           req.Name,
		Description:    req.Description,
		FoodCategories: req.FoodCategories,
		Location:       req.Location,
		LogoPath:       req.LogoPath,
		Hours:          req.Hours,
		PinX:           req.PinX,
		PinY:           req.PinY,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	h.refreshStallGauge(r)
	userhttp.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Your stall has been registered!",
		"stall":   stall,
	})
}

// ListStalls handles GET /stalls
func (h *StallHandler) ListStalls(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	listings, err := h.listHandler.Handle(query.ListStallsQuery{Limit: limit, Offset: offset})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"stalls": listings,
		"count":  len(listings),
	})
}

// GetStall handles GET /stalls/{id}
func (h *StallHandler) GetStall(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.getHandler.Handle(query.GetStallQuery{ID: stallID})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, detail)
}

// UpdateStall handles PUT /stalls/{id}
func (h *StallHandler) UpdateStall(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req stallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stall, err := h.updateHandler.Handle(command.UpdateStallCommand{
		StallID:        stallID,
		OwnerID:        userhttp.CallerID(r),
		Name:           req.Name,
		Description:    req.Description,
		FoodCategories: req.FoodCategories,
		LogoPath:       req.LogoPath,
		Hours:          req.Hours,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Your stall has been updated.",
		"stall":   stall,
	})
}

// DeleteStall handles DELETE /stalls/{id}
func (h *StallHandler) DeleteStall(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	err := h.deleteHandler.Handle(command.DeleteStallCommand{
		StallID: stallID,
		OwnerID: userhttp.CallerID(r),
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	h.refreshStallGauge(r)
	userhttp.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Your stall has been removed.",
	})
}

// SetPin handles PUT /stalls/{id}/pin
func (h *StallHandler) SetPin(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		PinX     *float64 `json:"pin_x"`
		PinY     *float64 `json:"pin_y"`
		Location string   `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	stall, err := h.setPinHandler.Handle(command.SetPinCommand{
		StallID:  stallID,
		OwnerID:  userhttp.CallerID(r),
		PinX:     req.PinX,
		PinY:     req.PinY,
		Location: req.Location,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	pinsMoved.Inc()
	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Your pin has been placed on the map.",
		"pin":     stall.DisplayPin(),
	})
}

// GetMapPins handles GET /map/pins
func (h *StallHandler) GetMapPins(w http.ResponseWriter, r *http.Request) {
	pins, err := h.pinsHandler.Handle()
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"pins":  pins,
		"count": len(pins),
	})
}

// AddMenuItem handles POST /stalls/{id}/menu
func (h *StallHandler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		ImagePath   string  `json:"image_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.addItemHandler.Handle(command.AddMenuItemCommand{
		StallID:     stallID,
		OwnerID:     userhttp.CallerID(r),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImagePath:   req.ImagePath,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "Menu item added.",
		"item":    item,
	})
}

// UpdateMenuItem handles PUT /stalls/{id}/menu/{itemId}
func (h *StallHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		userhttp.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.updateItemHandler.Handle(command.UpdateMenuItemCommand{
		StallID:     stallID,
		ItemID:      itemID,
		OwnerID:     userhttp.CallerID(r),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "Menu item updated.",
		"item":    item,
	})
}

// DeleteMenuItem handles DELETE /stalls/{id}/menu/{itemId}
func (h *StallHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	stallID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	err := h.deleteItemHandler.Handle(command.DeleteMenuItemCommand{
		StallID: stallID,
		ItemID:  itemID,
		OwnerID: userhttp.CallerID(r),
	})
	if err != nil {
		userhttp.RespondAppError(w, r, err)
		return
	}

	userhttp.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Menu item removed.",
	})
}

// RegisterRoutes registers all stall routes
func (h *StallHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/stalls",
		userhttp.MetricsMiddleware("/stalls", h.ListStalls)).Methods("GET")
	router.HandleFunc("/stalls",
		userhttp.MetricsMiddleware("/stalls", userhttp.AuthMiddleware(h.RegisterStall))).Methods("POST")
	router.HandleFunc("/stalls/{id}",
		userhttp.MetricsMiddleware("/stalls/{id}", h.GetStall)).Methods("GET")
	router.HandleFunc("/stalls/{id}",
		userhttp.MetricsMiddleware("/stalls/{id}", userhttp.AuthMiddleware(h.UpdateStall))).Methods("PUT")
	router.HandleFunc("/stalls/{id}",
		userhttp.MetricsMiddleware("/stalls/{id}", userhttp.AuthMiddleware(h.DeleteStall))).Methods("DELETE")
	router.HandleFunc("/stalls/{id}/pin",
		userhttp.MetricsMiddleware("/stalls/{id}/pin", userhttp.AuthMiddleware(h.SetPin))).Methods("PUT")
	router.HandleFunc("/map/pins",
		userhttp.MetricsMiddleware("/map/pins", h.GetMapPins)).Methods("GET")
	router.HandleFunc("/stalls/{id}/menu",
		userhttp.MetricsMiddleware("/stalls/{id}/menu", userhttp.AuthMiddleware(h.AddMenuItem))).Methods("POST")
	router.HandleFunc("/stalls/{id}/menu/{itemId}",
		userhttp.MetricsMiddleware("/stalls/{id}/menu/{itemId}", userhttp.AuthMiddleware(h.UpdateMenuItem))).Methods("PUT")
	router.HandleFunc("/stalls/{id}/menu/{itemId}",
		userhttp.MetricsMiddleware("/stalls/{id}/menu/{itemId}", userhttp.AuthMiddleware(h.DeleteMenuItem))).Methods("DELETE")
}

func (h *StallHandler) refreshStallGauge(r *http.Request) {
	count, err := h.stalls.Count()
	if err != nil {
		logger.Warn(r.Context()).Err(err).Msg("Failed to refresh stall gauge")
		return
	}
	registeredStalls.Set(float64(count))
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

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
