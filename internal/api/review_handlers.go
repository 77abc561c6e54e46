package api

import (
	"log/slog"
	"math"
	"net/http"

	"kickvibe/internal/domain"
	"kickvibe/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// GetShoeReviews handles GET /reviews/shoe/{id}: public, paginated,
// newest first.
func (h *HTTPHandler) GetShoeReviews(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	shoeID := mux.Vars(r)["id"]
	if _, err := h.shoes.GetByID(ctx, shoeID); err != nil {
		return err
	}

	q := r.URL.Query()
	params := store.ReviewListParams{
		Page:     parsePositiveInt(q.Get("page"), 1),
		PageSize: parsePositiveInt(q.Get("limit"), 10),
	}
	reviews, total, err := h.reviews.ListByShoe(ctx, shoeID, params)
	if err != nil {
		return err
	}

	page := domain.ReviewListPage{
		Reviews:     reviews,
		TotalPages:  int(math.Ceil(float64(total) / float64(params.PageSize))),
		CurrentPage: params.Page,
	}
	h.respondJSON(w, r, http.StatusOK, page, "Reviews retrieved successfully")
	return nil
}

// CreateReview handles POST /reviews/create/{id}. One review per user
// per shoe; a second attempt is a 409.
func (h *HTTPHandler) CreateReview(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	shoeID := mux.Vars(r)["id"]
	if _, err := h.shoes.GetByID(ctx, shoeID); err != nil {
		return err
	}

	var req domain.CreateReviewRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	review := &domain.Review{
		ID:      uuid.NewString(),
		ShoeID:  shoeID,
		UserID:  user.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := h.reviews.Create(ctx, review); err != nil {
		return err
	}
	review.Username = user.Username

	h.logger.InfoContext(ctx, "Review created", slog.String("reviewID", review.ID), slog.String("shoeID", shoeID), slog.String("userID", user.ID))
	h.respondJSON(w, r, http.StatusCreated, review, "Review created successfully")
	return nil
}
