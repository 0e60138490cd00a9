package main

import (
	"errors"
	"net/http"

	"aquadash/internal/domain/session"
)

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type UserWithToken struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// loginHandler signs in through the configured providers (box office first, then the demo
// accounts) and issues a dashboard token.
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, err := app.store.Session.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			app.unauthorizedErrorResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	token, err := app.authenticator.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user signed in", "user", user.ID, "role", user.Role)

	if err := app.jsonResponse(w, http.StatusOK, UserWithToken{Token: token, User: user}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.Session.Logout(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, "Logged out successfully"); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.store.Session.Current()); err != nil {
		app.internalServerError(w, r, err)
	}
}
