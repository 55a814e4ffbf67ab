package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/domain"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/httputil"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/validator"
)

// ReviewHandler serves the review endpoints.
type ReviewHandler struct {
	reviews *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(reviews *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// Routes mounts the review endpoints.
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Get("/{reviewID}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(requireCaller)
		r.Post("/", h.Create)
		r.Patch("/{reviewID}", h.Update)
		r.Delete("/{reviewID}", h.Delete)
		r.Post("/{reviewID}/response", h.Respond)
		r.Post("/{reviewID}/reactions", h.React)
		r.Post("/{reviewID}/replies", h.Reply)
	})
}

// Create handles POST /reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateReviewInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	input.UserID = callerID(r)

	review, err := h.reviews.Create(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: review})
}

// Get handles GET /reviews/{reviewID}.
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.reviews.GetByID(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Update handles PATCH /reviews/{reviewID}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateReviewInput
	if err := validator.DecodeAndValidate(r, &input); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.reviews.Update(r.Context(), chi.URLParam(r, "reviewID"), callerID(r), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: review})
}

// Delete handles DELETE /reviews/{reviewID}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reviews.Delete(r.Context(), chi.URLParam(r, "reviewID"), callerID(r)); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type respondRequest struct {
	Response string `json:"response" validate:"required,max=2000"`
}

// Respond handles POST /reviews/{reviewID}/response.
func (h *ReviewHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.reviews.Respond(r.Context(), chi.URLParam(r, "reviewID"), callerID(r), req.Response); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reactRequest struct {
	Helpful *bool `json:"helpful" validate:"required"`
}

// React handles POST /reviews/{reviewID}/reactions.
func (h *ReviewHandler) React(w http.ResponseWriter, r *http.Request) {
	var req reactRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.reviews.React(r.Context(), chi.URLParam(r, "reviewID"), callerID(r), *req.Helpful); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type replyRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// Reply handles POST /reviews/{reviewID}/replies.
func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req replyRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	reply, err := h.reviews.Reply(r.Context(), chi.URLParam(r, "reviewID"), callerID(r), req.Body)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: reply})
}

// pagination extracts page/per_page query params with sane defaults.
func pagination(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}

func writeReviewPage(w http.ResponseWriter, reviews []domain.Review, total, page, perPage int) {
	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(reviews, total, page, perPage))
}
