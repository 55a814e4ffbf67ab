package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/httputil"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/validator"
)

// BusinessHandler serves the business endpoints.
type BusinessHandler struct {
	businesses *service.BusinessService
	items      *service.ItemService
	reviews    *service.ReviewService
	cascades   *service.CascadeService
	aggregator service.Aggregator
	users      *service.UserService
	logger     *slog.Logger
}

// NewBusinessHandler creates a business handler.
func NewBusinessHandler(
	businesses *service.BusinessService,
	items *service.ItemService,
	reviews *service.ReviewService,
	cascades *service.CascadeService,
	aggregator service.Aggregator,
	users *service.UserService,
	logger *slog.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		businesses: businesses,
		items:      items,
		reviews:    reviews,
		cascades:   cascades,
		aggregator: aggregator,
		users:      users,
		logger:     logger,
	}
}

// Routes mounts the business endpoints.
func (h *BusinessHandler) Routes(r chi.Router) {
	r.Get("/{businessID}", h.Get)
	r.Get("/{businessID}/items", h.ListItems)
	r.Get("/{businessID}/reviews", h.ListReviews)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Post("/", h.Create)
		r.Post("/{businessID}/claim", h.Claim)
		r.Post("/{businessID}/items", h.CreateItem)
		r.Post("/{businessID}/rating/recompute", h.RecomputeRating)
		r.Delete("/{businessID}", h.Delete)
	})
}

// Create handles POST /businesses.
func (h *BusinessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateBusinessInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	business, err := h.businesses.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: business})
}

// Get handles GET /businesses/{businessID}.
func (h *BusinessHandler) Get(w http.ResponseWriter, r *http.Request) {
	business, err := h.businesses.GetByID(r.Context(), chi.URLParam(r, "businessID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: business})
}

// Claim handles POST /businesses/{businessID}/claim.
func (h *BusinessHandler) Claim(w http.ResponseWriter, r *http.Request) {
	if err := h.businesses.Claim(r.Context(), chi.URLParam(r, "businessID"), callerID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecomputeRating handles POST /businesses/{businessID}/rating/recompute.
// Admin-only: rebuilds the rating snapshot from the business's items and
// reviews and returns the refreshed business.
func (h *BusinessHandler) RecomputeRating(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r, h.users); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	businessID := chi.URLParam(r, "businessID")
	if err := h.aggregator.RecomputeBusiness(r.Context(), businessID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	business, err := h.businesses.GetByID(r.Context(), businessID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: business})
}

// Delete handles DELETE /businesses/{businessID}, cascading through items,
// reviews, and reviewer counters.
func (h *BusinessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cascades.DeleteBusiness(r.Context(), chi.URLParam(r, "businessID"), callerID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateItem handles POST /businesses/{businessID}/items.
func (h *BusinessHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var input service.CreateItemInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	input.BusinessID = chi.URLParam(r, "businessID")
	if err := validator.Validate(&input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.items.Create(r.Context(), callerID(r), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// ListItems handles GET /businesses/{businessID}/items.
func (h *BusinessHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	items, total, err := h.items.ListByBusiness(r.Context(), chi.URLParam(r, "businessID"), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(items, total, page, perPage))
}

// ListReviews handles GET /businesses/{businessID}/reviews.
func (h *BusinessHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	reviews, total, err := h.reviews.ListForBusiness(r.Context(), chi.URLParam(r, "businessID"), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeReviewPage(w, reviews, total, page, perPage)
}
