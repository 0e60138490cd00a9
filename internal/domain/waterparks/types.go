package waterparks

import "context"

// WaterPark carries the ticket and revenue aggregates of one park. Counts are never negative.
type WaterPark struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Location        string  `json:"location"`
	ActiveTickets   int64   `json:"activeTickets"`
	SoldTickets     int64   `json:"soldTickets"`
	PrintedTickets  int64   `json:"printedTickets"`
	InactiveTickets int64   `json:"inactiveTickets"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// Checker is a ticket-checking staff member of a park.
type Checker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	SoldTickets int64  `json:"soldTickets"`
}

type DailyStats struct {
	Date    string  `json:"date"`
	Tickets int64   `json:"tickets"`
	Revenue float64 `json:"revenue"`
}

type MonthlyStats struct {
	Month   string  `json:"month"`
	Tickets int64   `json:"tickets"`
	Revenue float64 `json:"revenue"`
}

// TicketTotals sums a set of parks for the dashboard summary cards.
type TicketTotals struct {
	Parks           int     `json:"parks"`
	ActiveTickets   int64   `json:"activeTickets"`
	SoldTickets     int64   `json:"soldTickets"`
	PrintedTickets  int64   `json:"printedTickets"`
	InactiveTickets int64   `json:"inactiveTickets"`
	TotalRevenue    float64 `json:"totalRevenue"`
}

// Source produces the park list.
type Source interface {
	ListParks(ctx context.Context) ([]WaterPark, error)
}
