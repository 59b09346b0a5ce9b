package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"salonhub-backend/internal/repository"
	"salonhub-backend/internal/service"
)

type apiError struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
}

type apiResponse struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	Data    any       `json:"data"`
	Error   *apiError `json:"error,omitempty"`
}

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if status >= 400 {
		writeRawJSON(w, status, apiResponse{
			Status:  "error",
			Message: "",
			Data:    payload,
			Error: &apiError{
				Code:   status,
				Status: http.StatusText(status),
			},
		})
		return
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "ok",
		Message: "",
		Data:    payload,
	})
}

// writeJSONMeta is writeJSON with a message flagging partial or stale data.
func writeJSONMeta(w http.ResponseWriter, payload any, meta service.Meta) {
	msg := ""
	switch {
	case meta.Stale:
		msg = "stale"
	case meta.Partial:
		msg = "partial"
	}
	writeRawJSON(w, http.StatusOK, apiResponse{
		Status:  "ok",
		Message: msg,
		Data:    payload,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{
		Status:  "error",
		Message: message,
		Data:    nil,
		Error: &apiError{
			Code:   status,
			Status: http.StatusText(status),
		},
	})
}

func writeErrorWithErr(w http.ResponseWriter, status int, message string, err error) {
	if err == nil {
		writeError(w, status, message)
		return
	}
	if message == "" {
		writeError(w, status, err.Error())
		return
	}
	writeError(w, status, message+": "+err.Error())
}

// writeServiceError maps service and repository errors to status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeRawJSON(w, http.StatusBadRequest, apiResponse{
			Status:  "error",
			Message: verr.Error(),
			Data:    verr.Fields,
			Error: &apiError{
				Code:   http.StatusBadRequest,
				Status: http.StatusText(http.StatusBadRequest),
			},
		})
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrDashboardTimeout):
		writeErrorWithErr(w, http.StatusGatewayTimeout, "", err)
	case errors.Is(err, service.ErrDashboardUnavailable):
		writeErrorWithErr(w, http.StatusServiceUnavailable, "", err)
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
