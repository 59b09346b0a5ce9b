package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/service"
	"salonhub-backend/internal/server/authctx"
)

type MessageHandler struct {
	Service service.MessageService
}

func (h MessageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.inbox)
	r.Post("/messages", h.send)
	r.Post("/messages/{id}/seen", h.seen)
}

func sender(r *http.Request) (service.Sender, bool) {
	u := authctx.FromContext(r.Context())
	if u == nil {
		return service.Sender{}, false
	}
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return service.Sender{ID: u.ID, Name: name, Role: u.Role, BranchID: u.BranchID}, true
}

func (h MessageHandler) inbox(w http.ResponseWriter, r *http.Request) {
	reader, ok := sender(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	items, err := h.Service.Inbox(r.Context(), reader)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, m := range items {
		resp = append(resp, map[string]any{
			"id":                m.ID,
			"content":           m.Content,
			"senderId":          m.SenderID,
			"senderName":        m.SenderName,
			"senderRole":        string(m.SenderRole),
			"senderBranchId":    m.SenderBranchID,
			"recipientBranchId": m.RecipientBranchID,
			"timestamp":         m.Timestamp.Format(time.RFC3339),
			"read":              m.Read,
			"status":            string(m.Status),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	from, ok := sender(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req service.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	msg, err := h.Service.Send(r.Context(), from, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":        msg.ID,
		"status":    string(msg.Status),
		"timestamp": msg.Timestamp.Format(time.RFC3339),
	})
}

func (h MessageHandler) seen(w http.ResponseWriter, r *http.Request) {
	reader, ok := sender(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.Service.MarkSeen(r.Context(), reader, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "seen"})
}
