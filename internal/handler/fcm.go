package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonhub-backend/internal/service"
	"salonhub-backend/internal/server/authctx"
)

type FCMHandler struct {
	Service service.TokenService
}

func (h FCMHandler) RegisterRoutes(r chi.Router) {
	r.Post("/notifications/token", h.register)
}

func (h FCMHandler) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	userID := ""
	if user := authctx.FromContext(r.Context()); user != nil {
		userID = user.ID
	}
	if err := h.Service.Register(r.Context(), userID, req.Token, req.Platform); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
