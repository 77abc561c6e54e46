package api

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"kickvibe/internal/domain"
	"kickvibe/internal/media"
	"kickvibe/internal/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxShoeImages = 5

// ListShoes handles GET /shoes with the sparse filters and pagination.
func (h *HTTPHandler) ListShoes(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	params := store.ShoeListParams{
		Page:     parsePositiveInt(q.Get("page"), 1),
		PageSize: parsePositiveInt(q.Get("limit"), 10),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
	}
	if v := q.Get("minPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return NewError(http.StatusBadRequest, "minPrice must be a number")
		}
		params.MinPrice = &price
	}
	if v := q.Get("maxPrice"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return NewError(http.StatusBadRequest, "maxPrice must be a number")
		}
		params.MaxPrice = &price
	}

	shoes, total, err := h.shoes.List(r.Context(), params)
	if err != nil {
		return err
	}
	page := domain.ShoeListPage{
		Shoes:       shoes,
		TotalPages:  int(math.Ceil(float64(total) / float64(params.PageSize))),
		CurrentPage: params.Page,
	}
	h.respondJSON(w, r, http.StatusOK, page, "Shoes retrieved successfully")
	return nil
}

// GetShoeByID handles GET /shoes/{id}.
func (h *HTTPHandler) GetShoeByID(w http.ResponseWriter, r *http.Request) error {
	shoe, err := h.shoes.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, shoe, "Shoe retrieved successfully")
	return nil
}

// SearchShoes handles GET /shoes/search?q=..., ordered by relevance.
// No match is a 200 with an empty list, not a 404.
func (h *HTTPHandler) SearchShoes(w http.ResponseWriter, r *http.Request) error {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		return NewError(http.StatusBadRequest, "Search query 'q' is required")
	}
	shoes, err := h.shoes.Search(r.Context(), query)
	if err != nil {
		return err
	}
	message := "Search results retrieved successfully"
	if len(shoes) == 0 {
		message = "No shoes found matching your search"
	}
	h.respondJSON(w, r, http.StatusOK, shoes, message)
	return nil
}

// GetNewArrivals handles GET /shoes/new-arrivals: the ten newest shoes.
func (h *HTTPHandler) GetNewArrivals(w http.ResponseWriter, r *http.Request) error {
	shoes, err := h.shoes.NewArrivals(r.Context(), 10)
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, shoes, "New arrivals retrieved successfully")
	return nil
}

// GetFeaturedShoes handles GET /shoes/featured: up to ten featured shoes.
func (h *HTTPHandler) GetFeaturedShoes(w http.ResponseWriter, r *http.Request) error {
	shoes, err := h.shoes.Featured(r.Context(), 10)
	if err != nil {
		return err
	}
	h.respondJSON(w, r, http.StatusOK, shoes, "Featured shoes retrieved successfully")
	return nil
}

// AddShoe handles POST /shoes/add: multipart form with up to five
// images, at least one required.
func (h *HTTPHandler) AddShoe(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return NewError(http.StatusBadRequest, "Invalid multipart form", err.Error())
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return NewError(http.StatusBadRequest, "price must be a number")
	}
	stock := 0
	if v := r.FormValue("stock"); v != "" {
		stock, err = strconv.Atoi(v)
		if err != nil {
			return NewError(http.StatusBadRequest, "stock must be an integer")
		}
	}

	req := domain.CreateShoeRequest{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Brand:       r.FormValue("brand"),
		Category:    r.FormValue("category"),
		Sizes:       splitSizes(r.FormValue("sizes")),
		Stock:       stock,
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		return err
	}

	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		return NewError(http.StatusBadRequest, "At least one image is required")
	}
	if len(files) > maxShoeImages {
		return NewError(http.StatusBadRequest, "At most five images are allowed")
	}

	uploads := make([]media.Upload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return NewError(http.StatusBadRequest, "Failed to read uploaded image", err.Error())
		}
		defer file.Close()
		uploads = append(uploads, media.Upload{Filename: header.Filename, Reader: file})
	}
	imageURLs, err := h.media.SaveAll(ctx, uploads)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to store shoe images", slog.String("error", err.Error()))
		return NewError(http.StatusInternalServerError, "Error uploading images")
	}

	shoe := &domain.Shoe{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Brand:       req.Brand,
		Category:    req.Category,
		Sizes:       req.Sizes,
		Images:      imageURLs,
		Stock:       req.Stock,
		OwnerID:     user.ID,
	}
	if err := h.shoes.Create(ctx, shoe); err != nil {
		for _, url := range imageURLs {
			if rmErr := h.media.Remove(ctx, url); rmErr != nil {
				h.logger.WarnContext(ctx, "Failed to remove image after create failure", slog.String("error", rmErr.Error()))
			}
		}
		return err
	}

	h.logger.InfoContext(ctx, "Shoe added", slog.String("shoeID", shoe.ID), slog.String("ownerID", user.ID))
	h.respondJSON(w, r, http.StatusCreated, shoe, "Shoe added successfully")
	return nil
}

// UpdateShoe handles PATCH /shoes/{id}. Only the owner may update.
func (h *HTTPHandler) UpdateShoe(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	shoe, err := h.shoes.GetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	if shoe.OwnerID != user.ID {
		return NewError(http.StatusForbidden, "You are not authorized to update this shoe")
	}

	var req domain.UpdateShoeRequest
	if err := h.decodeJSON(r, &req); err != nil {
		return err
	}

	if req.Name != nil {
		shoe.Name = *req.Name
	}
	if req.Description != nil {
		shoe.Description = *req.Description
	}
	if req.Price != nil {
		shoe.Price = *req.Price
	}
	if req.Brand != nil {
		shoe.Brand = *req.Brand
	}
	if req.Category != nil {
		shoe.Category = *req.Category
	}
	if req.Sizes != nil {
		shoe.Sizes = req.Sizes
	}
	if req.Stock != nil {
		shoe.Stock = *req.Stock
	}
	if req.IsFeatured != nil {
		shoe.IsFeatured = *req.IsFeatured
	}
	if err := h.shoes.Update(ctx, shoe); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "Shoe updated", slog.String("shoeID", shoe.ID))
	h.respondJSON(w, r, http.StatusOK, shoe, "Shoe updated successfully")
	return nil
}

// DeleteShoe handles DELETE /shoes/{id}. Only the owner may delete.
func (h *HTTPHandler) DeleteShoe(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	user, err := h.currentUser(r)
	if err != nil {
		return err
	}

	shoe, err := h.shoes.GetByID(ctx, mux.Vars(r)["id"])
	if err != nil {
		return err
	}
	if shoe.OwnerID != user.ID {
		return NewError(http.StatusForbidden, "You are not authorized to delete this shoe")
	}

	if err := h.shoes.Delete(ctx, shoe.ID); err != nil {
		return err
	}
	for _, url := range shoe.Images {
		if rmErr := h.media.Remove(ctx, url); rmErr != nil {
			h.logger.WarnContext(ctx, "Failed to remove image of deleted shoe", slog.String("url", url), slog.String("error", rmErr.Error()))
		}
	}

	h.logger.InfoContext(ctx, "Shoe deleted", slog.String("shoeID", shoe.ID))
	h.respondJSON(w, r, http.StatusOK, nil, "Shoe deleted successfully")
	return nil
}

// splitSizes parses the comma-separated sizes form field.
func splitSizes(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
