package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/httputil"
)

// ItemHandler serves the item endpoints.
type ItemHandler struct {
	items   *service.ItemService
	reviews *service.ReviewService
	users   *service.UserService
	logger  *slog.Logger
}

// NewItemHandler creates an item handler.
func NewItemHandler(items *service.ItemService, reviews *service.ReviewService, users *service.UserService, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{items: items, reviews: reviews, users: users, logger: logger}
}

// Routes mounts the item endpoints.
func (h *ItemHandler) Routes(r chi.Router) {
	r.Get("/{itemID}", h.Get)
	r.Get("/{itemID}/reviews", h.ListReviews)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Post("/{itemID}/repair", h.Repair)
	})
}

// Get handles GET /items/{itemID}.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.GetByID(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// ListReviews handles GET /items/{itemID}/reviews.
func (h *ItemHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	reviews, total, err := h.reviews.ListForItem(r.Context(), chi.URLParam(r, "itemID"), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	writeReviewPage(w, reviews, total, page, perPage)
}

type repairResponse struct {
	ItemID string                `json:"item_id"`
	Rating domain.RatingSnapshot `json:"rating"`
}

// Repair handles POST /items/{itemID}/repair. Admin-only: rebuilds the
// item's stats from its reviews, recomputes the owning business, and returns
// the repaired aggregate.
func (h *ItemHandler) Repair(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r, h.users); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	item, err := h.items.Repair(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: repairResponse{
		ItemID: item.ID,
		Rating: item.Stats.Snapshot(),
	}})
}
