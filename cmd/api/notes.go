package main

import (
	"errors"
	"fmt"
	"net/http"

	"aquadash/internal/domain/notes"
	"aquadash/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateNotePayload struct {
	Content       string  `json:"content" validate:"required,max=500"`
	TableNumber   int     `json:"tableNumber" validate:"required,min=1"`
	CustomerCount int     `json:"customerCount" validate:"min=0,max=500"`
	Status        string  `json:"status" validate:"omitempty,notestatus"`
	Priority      string  `json:"priority" validate:"omitempty,notepriority"`
	AssignedTo    *string `json:"assignedTo" validate:"omitempty,max=100"`
}

type UpdateNotePayload struct {
	Content       *string `json:"content" validate:"omitempty,min=1,max=500"`
	TableNumber   *int    `json:"tableNumber" validate:"omitempty,min=1"`
	CustomerCount *int    `json:"customerCount" validate:"omitempty,min=0,max=500"`
	Status        *string `json:"status" validate:"omitempty,notestatus"`
	Priority      *string `json:"priority" validate:"omitempty,notepriority"`
	AssignedTo    *string `json:"assignedTo" validate:"omitempty,max=100"`
}

type NotesViewPayload struct {
	SelectedPeriod *string `json:"selectedPeriod" validate:"omitempty,oneof=day week"`
	FilterStatus   *string `json:"filterStatus" validate:"omitempty,oneof=all pending completed cancelled"`
}

type NotesPage struct {
	Notes      []notes.Note      `json:"notes"`
	Pagination params.Pagination `json:"pagination"`
	View       notes.View        `json:"view"`
}

// listNotesHandler returns the notes matching the current view, newest first.
//
//	GET /v1/notes?page=1&limit=15
func (app *application) listNotesHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())
	page := params.Apply(&p, app.store.Notes.FilteredNotes())

	resp := NotesPage{Notes: page, Pagination: p, View: app.store.Notes.View()}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) createNoteHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateNotePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	note, err := app.store.Notes.AddNote(r.Context(), notes.NewNote{
		Content:       payload.Content,
		TableNumber:   payload.TableNumber,
		CustomerCount: payload.CustomerCount,
		Status:        notes.Status(payload.Status),
		Priority:      notes.Priority(payload.Priority),
		AssignedTo:    payload.AssignedTo,
	})
	if err != nil {
		app.noteError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, note); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) updateNoteHandler(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	var payload UpdateNotePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	patch := notes.Patch{
		Content:       payload.Content,
		TableNumber:   payload.TableNumber,
		CustomerCount: payload.CustomerCount,
		AssignedTo:    payload.AssignedTo,
	}
	if payload.Status != nil {
		s := notes.Status(*payload.Status)
		patch.Status = &s
	}
	if payload.Priority != nil {
		p := notes.Priority(*payload.Priority)
		patch.Priority = &p
	}

	note, ok, err := app.store.Notes.UpdateNote(r.Context(), noteID, patch)
	if err != nil {
		app.noteError(w, r, err)
		return
	}
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("note %q not found", noteID))
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, note); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) deleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	ok, err := app.store.Notes.DeleteNote(r.Context(), noteID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if !ok {
		app.notFoundResponse(w, r, fmt.Errorf("note %q not found", noteID))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *application) updateNotesViewHandler(w http.ResponseWriter, r *http.Request) {
	var payload NotesViewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ctx := r.Context()
	if payload.SelectedPeriod != nil {
		if err := app.store.Notes.SetPeriod(ctx, notes.Period(*payload.SelectedPeriod)); err != nil {
			app.noteError(w, r, err)
			return
		}
	}
	if payload.FilterStatus != nil {
		if err := app.store.Notes.SetFilterStatus(ctx, *payload.FilterStatus); err != nil {
			app.noteError(w, r, err)
			return
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, app.store.Notes.View()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) notesStatsHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.store.Notes.Stats()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) notesWeeklyHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.store.Notes.WeeklyRollup()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) noteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, notes.ErrInvalidNote),
		errors.Is(err, notes.ErrInvalidPeriod),
		errors.Is(err, notes.ErrInvalidFilter):
		app.badRequestResponse(w, r, err)
	default:
		app.internalServerError(w, r, err)
	}
}
