package main

import (
	"net/http"

	"github.com/google/uuid"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
}

// createSessionHandler godoc
//
//	@Summary		Start a guest cart session
//	@Description	Issues a fresh session id and the bearer token that owns it
//	@Tags			session
//	@Produce		json
//	@Success		201	{object}	sessionResponse
//	@Router			/session [post]
func (app *application) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.New().String()

	token, err := app.authenticator.GenerateSessionToken(sessionID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, sessionResponse{
		SessionID: sessionID,
		Token:     token,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}
