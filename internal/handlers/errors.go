package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/crucial707/mineops/internal/listview"
	"github.com/crucial707/mineops/internal/middleware"
	"github.com/go-playground/validator/v10"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// ErrMessageBackend is returned with 502 when the operations backend cannot be reached or refuses a request.
const ErrMessageBackend = "backend unavailable"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
// status is typically http.StatusBadRequest (400).
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	writeJSON(w, status, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "err", err)
	}
}

// decodeJSON reads the body into v and answers 400/413 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	switch {
	case err == nil:
		return true
	case middleware.TooLarge(err):
		JSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
	case errors.Is(err, io.EOF):
		JSONError(w, "request body is empty", http.StatusBadRequest)
	default:
		JSONError(w, "invalid JSON", http.StatusBadRequest)
	}
	return false
}

// ===== Validation =====

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationFields maps validator errors to {"field": "problem"} keyed by
// the JSON path, e.g. "rows[0].riskAssessment".
func validationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		_, field, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			field = fe.Field()
		}
		out[field] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return "needs at least " + fe.Param() + " entries"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	}
	return "failed " + fe.Tag()
}

// ===== List responses =====

// listResponse is the body of every list endpoint: the page plus the
// effective query and optional banners.
type listResponse[T any] struct {
	listview.Page[T]
	Query   string `json:"q,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Order   string `json:"order,omitempty"`
	Warning string `json:"warning,omitempty"`
	Info    string `json:"info,omitempty"`
}

func newListResponse[T any](p listview.Page[T], q listview.Query, s listview.Schema[T]) listResponse[T] {
	field, dir := q.SortField, q.Dir
	if field == "" {
		field, dir = s.DefaultSort, s.DefaultDir
	}
	if field != "" && dir == "" {
		dir = listview.Asc
	}
	return listResponse[T]{Page: p, Query: q.Search, Sort: field, Order: string(dir)}
}

// parseList decodes the list query, answering 400 itself when it is invalid.
func parseList[T any](w http.ResponseWriter, r *http.Request, s listview.Schema[T]) (listview.Query, bool) {
	q, err := listview.ParseQuery(r.URL.Query(), s)
	if err != nil {
		var fields listview.FieldErrors
		if errors.As(err, &fields) {
			JSONValidationError(w, "invalid list query", fields, http.StatusBadRequest)
			return q, false
		}
		JSONError(w, err.Error(), http.StatusBadRequest)
		return q, false
	}
	return q, true
}
