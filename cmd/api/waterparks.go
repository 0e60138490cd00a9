package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (app *application) listWaterParksHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.jsonResponse(w, http.StatusOK, app.store.VisibleParks()); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) refreshWaterParksHandler(w http.ResponseWriter, r *http.Request) {
	if err := app.store.WaterParks.FetchWaterParks(r.Context()); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, app.store.VisibleParks()); err != nil {
		app.internalServerError(w, r, err)
	}
}

// Routes below run behind RequireParkAccess, so the park exists.

func (app *application) getWaterParkHandler(w http.ResponseWriter, r *http.Request) {
	park, _ := app.store.WaterParks.FetchWaterParkDetails(chi.URLParam(r, "parkID"))

	if err := app.jsonResponse(w, http.StatusOK, park); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getCheckersHandler(w http.ResponseWriter, r *http.Request) {
	checkers := app.store.WaterParks.FetchCheckers(chi.URLParam(r, "parkID"))

	if err := app.jsonResponse(w, http.StatusOK, checkers); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getDailyStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := app.store.WaterParks.FetchDailyStats(chi.URLParam(r, "parkID"))

	if err := app.jsonResponse(w, http.StatusOK, stats); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) getMonthlyStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats := app.store.WaterParks.FetchMonthlyStats(chi.URLParam(r, "parkID"))

	if err := app.jsonResponse(w, http.StatusOK, stats); err != nil {
		app.internalServerError(w, r, err)
	}
}
