package main

import (
	"errors"
	"net/http"

	"aquadash/internal/domain/waterparks"
)

type DashboardSummary struct {
	Totals     waterparks.TicketTotals `json:"totals"`
	WaterParks []waterparks.WaterPark  `json:"waterParks"`
}

// dashboardSummaryHandler aggregates the parks visible to the caller.
func (app *application) dashboardSummaryHandler(w http.ResponseWriter, r *http.Request) {
	parks := app.store.VisibleParks()
	summary := DashboardSummary{
		Totals:     waterparks.Totals(parks),
		WaterParks: parks,
	}

	if err := app.jsonResponse(w, http.StatusOK, summary); err != nil {
		app.internalServerError(w, r, err)
	}
}

// ticketSummaryHandler proxies the live box-office counters.
func (app *application) ticketSummaryHandler(w http.ResponseWriter, r *http.Request) {
	if app.store.Tickets == nil {
		app.notFoundResponse(w, r, errors.New("box office integration is not configured"))
		return
	}

	sum, err := app.store.Tickets.Summary(r.Context())
	if err != nil {
		app.badGatewayResponse(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, sum); err != nil {
		app.internalServerError(w, r, err)
	}
}
