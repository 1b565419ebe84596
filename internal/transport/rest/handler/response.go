package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reviewpilot/internal/logger"
	"reviewpilot/internal/service"
	"reviewpilot/internal/transport/rest/middleware"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeServiceError maps service errors to HTTP responses.
// Internal details of generation and store failures are logged, not returned.
func writeServiceError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	log = log.With("requestId", middleware.GetRequestID(r.Context()), "path", r.URL.Path)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStrategyMissing):
		writeError(w, http.StatusBadRequest, service.ErrStrategyMissing.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrParse):
		log.Error("Review generation output rejected", "error", err)
		writeError(w, http.StatusInternalServerError, service.ErrParse.Error())
	case errors.Is(err, service.ErrGeneration):
		log.Error("Review generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, service.ErrGeneration.Error())
	default:
		log.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
