package main

import (
	"errors"
	"net/http"
	"time"

	"aquadash/internal/domain/privacy"
)

type ConsentResponse struct {
	Consent          privacy.Consent      `json:"consent"`
	ConsentTimestamp *time.Time           `json:"consentTimestamp"`
	State            privacy.ConsentState `json:"state"`
	ShowNotification bool                 `json:"showNotification"`
}

type RecordEventPayload struct {
	Type        string         `json:"type" validate:"required,consentcategory"`
	Description string         `json:"description" validate:"max=500"`
	Data        map[string]any `json:"data"`
}

type RecordEventResponse struct {
	Recorded bool           `json:"recorded"`
	Event    *privacy.Event `json:"event,omitempty"`
}

func (app *application) consentResponse() ConsentResponse {
	p := app.store.Privacy
	return ConsentResponse{
		Consent:          p.Consent(),
		ConsentTimestamp: p.ConsentTimestamp(),
		State:            p.State(),
		ShowNotification: p.ShowNotification(),
	}
}

func (app *application) getConsentHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.consentResponse()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateConsentHandler(w http.ResponseWriter, r *http.Request) {
	var payload privacy.ConsentUpdate
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, err := app.store.Privacy.UpdateConsent(r.Context(), payload); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.consentResponse()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) acceptAllConsentHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := app.store.Privacy.AcceptAll(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.consentResponse()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) rejectOptionalConsentHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := app.store.Privacy.RejectOptional(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.consentResponse()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) consentExpiryHandler(w http.ResponseWriter, r *http.Request) {
	expired := app.store.Privacy.CheckConsentExpiry(r.Context())

	resp := map[string]any{
		"expired": expired,
		"consent": app.consentResponse(),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// recordEventHandler answers 201 with the stored event, or 200 with recorded=false when
// the category is not consented to.
func (app *application) recordEventHandler(w http.ResponseWriter, r *http.Request) {
	var payload RecordEventPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ev, err := app.store.Privacy.RecordDataCollection(r.Context(), privacy.EventInput{
		Type:        privacy.Category(payload.Type),
		Description: payload.Description,
		Data:        payload.Data,
	})
	if err != nil {
		if errors.Is(err, privacy.ErrUnknownCategory) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	status := http.StatusOK
	if ev != nil {
		status = http.StatusCreated
	}
	if err := app.jsonResponse(w, status, RecordEventResponse{Recorded: ev != nil, Event: ev}); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) listEventsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.store.Privacy.History()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// exportUserDataHandler serves the portability export as a JSON attachment.
func (app *application) exportUserDataHandler(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		platform = r.Header.Get("Sec-CH-UA-Platform")
	}

	out, err := app.store.Privacy.ExportUserData(privacy.ClientInfo{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
		Platform:  platform,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="aquadash-data-export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (app *application) deleteUserDataHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.DeleteUserData(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user data erased")
	w.WriteHeader(http.StatusNoContent)
}
