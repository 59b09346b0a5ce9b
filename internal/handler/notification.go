package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/domain"
	"salonhub-backend/internal/notifier"
	"salonhub-backend/internal/server/authctx"
)

// NotificationHandler exposes the unread notification list and a
// server-sent event stream of new notifications.
type NotificationHandler struct {
	Notifier  *notifier.Notifier
	Stream    *notifier.Broadcaster
	Heartbeat time.Duration
}

func (h NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.list)
	r.Post("/notifications/read-all", h.readAll)
	r.Post("/notifications/{id}/read", h.read)
	r.Get("/notifications/stream", h.stream)
}

// allowed rejects admins outside the notifier's audience; acknowledging
// removes the notification for its owner too.
func (h NotificationHandler) allowed(w http.ResponseWriter, r *http.Request) bool {
	u := authctx.FromContext(r.Context())
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if !h.Notifier.Audience.Serves(u.Role, u.Branch) {
		writeError(w, http.StatusForbidden, "notifications belong to another admin")
		return false
	}
	return true
}

func (h NotificationHandler) list(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	items := h.Notifier.List()
	resp := make([]map[string]any, 0, len(items))
	for _, n := range items {
		resp = append(resp, notificationJSON(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"unread":        len(items),
		"notifications": resp,
	})
}

func (h NotificationHandler) read(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	if err := h.Notifier.Acknowledge(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErrorWithErr(w, http.StatusServiceUnavailable, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.Notifier.Unread()})
}

func (h NotificationHandler) readAll(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	if err := h.Notifier.AcknowledgeAll(r.Context()); err != nil {
		writeErrorWithErr(w, http.StatusServiceUnavailable, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": h.Notifier.Unread()})
}

func (h NotificationHandler) stream(w http.ResponseWriter, r *http.Request) {
	if !h.allowed(w, r) {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok || h.Stream == nil {
		writeError(w, http.StatusNotImplemented, "streaming unsupported")
		return
	}
	events, cancel, err := h.Stream.Subscribe()
	if errors.Is(err, notifier.ErrBroadcasterClosed) {
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "event: ready\ndata: {\"unread\":%d}\n\n", h.Notifier.Unread())
	flusher.Flush()

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			body := notificationJSON(ev.Notification)
			body["sound"] = ev.Sound
			data, err := json.Marshal(body)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "id: %s\nevent: notification\ndata: %s\n\n", ev.Notification.ID, data)
			flusher.Flush()
		}
	}
}

func notificationJSON(n domain.Notification) map[string]any {
	return map[string]any{
		"id":        n.ID,
		"source":    string(n.Source),
		"title":     n.Title,
		"body":      n.Body,
		"branch":    n.Branch,
		"createdAt": n.CreatedAt.Format(time.RFC3339),
	}
}
