package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fintrack-server/src/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respondError maps err onto a status code. Anything outside the models
// taxonomy is logged with action and hidden behind "internal error".
func respondError(w http.ResponseWriter, err error, action string) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, models.ErrDuplicateUsername),
		errors.Is(err, models.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidToken),
		errors.Is(err, models.ErrMissingAuth):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.Printf("ERROR: Failed to %s: %v", action, err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Backend is running",
		})
	}
}
