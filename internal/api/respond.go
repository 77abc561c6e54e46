package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"kickvibe/internal/store"
	"kickvibe/pkg/auth"

	"github.com/go-playground/validator/v10"
)

// envelope is the uniform success body: {statusCode, data, message, success}.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Errors     []string    `json:"errors,omitempty"`
}

// Error is the typed error handlers return. The central responder maps
// it onto the failure envelope.
type Error struct {
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string { return e.Message }

func NewError(status int, message string, details ...string) *Error {
	return &Error{Status: status, Message: message, Details: details}
}

// handlerFunc is an HTTP handler that reports failure by returning an
// error instead of writing its own error response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc: any returned error goes through the
// single central responder, so no handler serializes errors itself.
func (h *HTTPHandler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.respondError(w, r, err)
		}
	}
}

func (h *HTTPHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	body := envelope{StatusCode: status, Data: data, Message: message, Success: status < 400}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
	}
}

// respondError maps an error to its HTTP status and writes the failure
// envelope. Unanticipated errors become a generic 500; the real cause is
// logged, never leaked.
func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := h.classify(r, err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Status)
	body := envelope{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     apiErr.Details,
	}
	if encodeErr := json.NewEncoder(w).Encode(body); encodeErr != nil {
		h.logger.ErrorContext(r.Context(), "Failed to encode error response", slog.String("error", encodeErr.Error()), slog.String("path", r.URL.Path))
	}
}

func (h *HTTPHandler) classify(r *http.Request, err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, fmt.Sprintf("field %q failed on the %q rule", fe.Field(), fe.Tag()))
		}
		return NewError(http.StatusBadRequest, "Validation failed", details...)
	}

	var stockErr *store.InsufficientStockError
	if errors.As(err, &stockErr) {
		return NewError(http.StatusBadRequest, stockErr.Error())
	}

	switch {
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrShoeNotFound),
		errors.Is(err, store.ErrOrderNotFound),
		errors.Is(err, store.ErrCartItemNotFound),
		errors.Is(err, store.ErrReviewNotFound):
		return NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUserAlreadyExists),
		errors.Is(err, store.ErrDuplicateReview):
		return NewError(http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrTokenReuse),
		errors.Is(err, auth.ErrInvalidToken):
		return NewError(http.StatusUnauthorized, "Invalid or expired token")
	case errors.Is(err, store.ErrEmptyCart):
		return NewError(http.StatusBadRequest, "Cart is empty")
	}

	h.logger.ErrorContext(r.Context(), "Unhandled error in request",
		slog.String("path", r.URL.Path), slog.String("method", r.Method), slog.String("error", err.Error()))
	return NewError(http.StatusInternalServerError, "Something went wrong")
}

// decodeJSON parses a request body into dst, rejecting unknown fields,
// then validates it.
func (h *HTTPHandler) decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return NewError(http.StatusBadRequest, "Invalid request payload", err.Error())
	}
	if err := h.validator.StructCtx(r.Context(), dst); err != nil {
		return err
	}
	return nil
}
