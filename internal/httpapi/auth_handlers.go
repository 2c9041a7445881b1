package httpapi

import (
	"net/http"

	"biblioteca.dev/internal/audit"
	"biblioteca.dev/internal/library"
)

type loginRequest struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// register is the public self-service signup. The policy group is
// forced to the default regardless of the payload.
func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req library.NewUser
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	u, err := a.opts.Users.Register(r.Context(), req)
	if err != nil {
		handleLibraryError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// login exchanges credentials for a bearer token carrying the
// caller's permission snapshot.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	session, err := a.opts.Auth.Login(r.Context(), req.Email, req.Senha)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.token.issued", nil)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: session.Token,
		TokenType:   "bearer",
	})
}
