package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"fintrack-server/src/models"
)

type Authenticator interface {
	Signup(ctx context.Context, creds models.Credentials) (*models.User, string, error)
	Login(ctx context.Context, creds models.Credentials) (*models.User, string, error)
}

func Signup(authn Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Printf("ERROR: Failed to decode signup request body: %v", err)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		user, token, err := authn.Signup(r.Context(), creds)
		if err != nil {
			respondError(w, err, "sign up "+creds.Username)
			return
		}

		log.Printf("INFO: Successful signup - User: %s, ID: %d", user.Username, user.ID)
		writeJSON(w, http.StatusCreated, models.AuthResponse{User: *user, Token: token})
	}
}

func Login(authn Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			log.Printf("ERROR: Failed to decode login request body: %v", err)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		user, token, err := authn.Login(r.Context(), creds)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				log.Printf("ERROR: Invalid login attempt for username %s from IP %s", creds.Username, r.RemoteAddr)
			}
			respondError(w, err, "log in "+creds.Username)
			return
		}

		log.Printf("INFO: Successful login - User: %s, ID: %d", user.Username, user.ID)
		writeJSON(w, http.StatusOK, models.AuthResponse{User: *user, Token: token})
	}
}
