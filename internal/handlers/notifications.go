package handlers

import (
	"errors"
	"net/http"

	"github.com/crucial707/mineops/internal/models"
	"github.com/crucial707/mineops/internal/notifications"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the notification feed.
type NotificationHandler struct {
	Feed *notifications.Feed
}

type notificationListResponse struct {
	listResponse[models.Notification]
	Filter string `json:"filter"`
	Unread int    `json:"unread"`
}

// ListNotifications answers GET /v1/notifications?filter=all|read|unread&q&page&size.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	schema := notifications.Schema()
	q, ok := parseList(w, r, schema)
	if !ok {
		return
	}
	filter := r.URL.Query().Get("filter")
	match, err := notifications.Match(filter)
	if err != nil {
		JSONValidationError(w, "invalid list query", map[string]string{"filter": "must be all, read or unread"}, http.StatusBadRequest)
		return
	}
	if filter == "" {
		filter = notifications.FilterAll
	}

	all := h.Feed.List()
	page, err := schema.Run(all, q, match)
	if err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := notificationListResponse{
		listResponse: newListResponse(page, q, schema),
		Filter:       filter,
		Unread:       h.Feed.Unread(),
	}
	if len(all) == 0 {
		resp.Info = "no notifications"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.apply(w, h.Feed.MarkRead(chi.URLParam(r, "id")))
}

func (h *NotificationHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.apply(w, h.Feed.MarkUnread(chi.URLParam(r, "id")))
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.apply(w, h.Feed.Delete(chi.URLParam(r, "id")))
}

// Bulk answers POST /v1/notifications/bulk {action: read|unread|delete}.
func (h *NotificationHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Action string `json:"action" validate:"required,oneof=read unread delete"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONValidationError(w, "validation failed", validationFields(err), http.StatusBadRequest)
		return
	}
	h.apply(w, h.Feed.Bulk(input.Action))
}

func (h *NotificationHandler) apply(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notifications.ErrNotFound):
		JSONError(w, "notification not found", http.StatusNotFound)
	case err != nil:
		JSONError(w, err.Error(), http.StatusBadRequest)
	default:
		writeJSON(w, http.StatusOK, map[string]int{"unread": h.Feed.Unread(), "total": len(h.Feed.List())})
	}
}
