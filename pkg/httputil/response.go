package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/Aphidet6/earth-bettashop/pkg/errors"
	"github.com/Aphidet6/earth-bettashop/pkg/logger"
	"github.com/Aphidet6/earth-bettashop/pkg/validator"
)

// Response is the JSON envelope used by every endpoint:
// {"success": true, "data": ...} or {"success": false, "error": "..."}.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a success envelope with the given data.
func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Response{Success: true, Data: data})
}

// WriteError maps err to an HTTP status and writes the failure envelope.
// Internal errors are logged with full detail through the request-scoped
// logger; the client only ever sees the generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	message := "internal server error"

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		status = appErr.Status
		message = appErr.Message
	case status != http.StatusInternalServerError:
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		// Never leak internal detail (SQL, stack traces) to the client.
		message = "internal server error"
	}

	WriteJSON(w, status, Response{Success: false, Error: message})
}

// WriteValidationError writes a 400 failure envelope for request validation
// failures, keeping field-level detail in the message.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{Success: false, Error: valErr.Error()})
		return
	}
	WriteJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}

// ParseID parses a positive int64 route parameter. On failure it writes a
// 400 response and returns false, signaling the caller to return early.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id < 1 {
		WriteJSON(w, http.StatusBadRequest, Response{Success: false, Error: "invalid id: " + param})
		return 0, false
	}
	return id, true
}
