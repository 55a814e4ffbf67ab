package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/httputil"
)

// UserHandler serves the user profile, trust, and follow endpoints.
type UserHandler struct {
	users    *service.UserService
	trust    service.TrustEngine
	social   *service.SocialService
	cascades *service.CascadeService
	logger   *slog.Logger
}

// NewUserHandler creates a user handler.
func NewUserHandler(
	users *service.UserService,
	trust service.TrustEngine,
	social *service.SocialService,
	cascades *service.CascadeService,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		users:    users,
		trust:    trust,
		social:   social,
		cascades: cascades,
		logger:   logger,
	}
}

// Routes mounts the user endpoints.
func (h *UserHandler) Routes(r chi.Router) {
	r.Get("/{userID}", h.Get)
	r.Get("/{userID}/activity", h.ListActivity)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Delete("/{userID}", h.Delete)
		r.Post("/{userID}/follow", h.Follow)
		r.Delete("/{userID}/follow", h.Unfollow)
		r.Post("/{userID}/trust/recalculate", h.Recalculate)
	})
}

// Get handles GET /users/{userID}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}

// ListActivity handles GET /users/{userID}/activity.
func (h *UserHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	entries, total, err := h.trust.ListActivity(r.Context(), chi.URLParam(r, "userID"), page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(entries, total, page, perPage))
}

// Delete handles DELETE /users/{userID}, cascading through reviews,
// aggregates, social edges, and the activity ledger.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.cascades.DeleteUser(r.Context(), chi.URLParam(r, "userID"), callerID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Follow handles POST /users/{userID}/follow.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Follow(r.Context(), callerID(r), chi.URLParam(r, "userID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /users/{userID}/follow.
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	if err := h.social.Unfollow(r.Context(), callerID(r), chi.URLParam(r, "userID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recalculate handles POST /users/{userID}/trust/recalculate, an
// operational endpoint to rederive a trust score on demand.
func (h *UserHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	if err := h.trust.Recalculate(r.Context(), chi.URLParam(r, "userID")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: user})
}
