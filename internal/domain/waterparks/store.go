package waterparks

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

const (
	dailyWindow   = 30
	monthlyWindow = 12
)

type Options struct {
	Source Source
	// Generator backs the checker roster and the time series.
	Generator MockSource
	Clock     func() time.Time
	// Latency delays FetchWaterParks to imitate a slow backend in demo builds.
	Latency time.Duration
}

// Store owns the park list and derives rosters and time series per park on demand.
type Store struct {
	mu      sync.RWMutex
	parks   []WaterPark
	source  Source
	gen     MockSource
	clock   func() time.Time
	latency time.Duration
}

func NewStore(opts Options) *Store {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	source := opts.Source
	if source == nil {
		source = opts.Generator
	}
	return &Store{source: source, gen: opts.Generator, clock: clock, latency: opts.Latency}
}

// FetchWaterParks populates or refreshes the park list from the source.
func (s *Store) FetchWaterParks(ctx context.Context) error {
	if s.latency > 0 {
		t := time.NewTimer(s.latency)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	parks, err := s.source.ListParks(ctx)
	if err != nil {
		return fmt.Errorf("list parks: %w", err)
	}

	s.mu.Lock()
	s.parks = parks
	s.mu.Unlock()
	return nil
}

// WaterParks returns a copy of the current list.
func (s *Store) WaterParks() []WaterPark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.parks)
}

// Visible returns the parks allowed by canAccess, in list order.
func (s *Store) Visible(canAccess func(parkID string) bool) []WaterPark {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]WaterPark, 0, len(s.parks))
	for _, p := range s.parks {
		if canAccess(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// FetchWaterParkDetails returns the park with id, or false when it is unknown.
func (s *Store) FetchWaterParkDetails(id string) (*WaterPark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.parks {
		if p.ID == id {
			out := p
			return &out, true
		}
	}
	return nil, false
}

// FetchCheckers returns the checker roster of parkID, nil for an unknown park.
func (s *Store) FetchCheckers(parkID string) []Checker {
	park, ok := s.FetchWaterParkDetails(parkID)
	if !ok {
		return nil
	}
	return s.gen.checkers(*park)
}

// FetchDailyStats returns the trailing 30 days of parkID, oldest first.
func (s *Store) FetchDailyStats(parkID string) []DailyStats {
	if _, ok := s.FetchWaterParkDetails(parkID); !ok {
		return nil
	}
	today := startOfDay(s.clock())
	out := make([]DailyStats, 0, dailyWindow)
	for i := dailyWindow - 1; i >= 0; i-- {
		out = append(out, s.gen.daily(parkID, today.AddDate(0, 0, -i)))
	}
	return out
}

// FetchMonthlyStats returns the trailing 12 months of parkID, oldest first.
func (s *Store) FetchMonthlyStats(parkID string) []MonthlyStats {
	if _, ok := s.FetchWaterParkDetails(parkID); !ok {
		return nil
	}
	now := s.clock()
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]MonthlyStats, 0, monthlyWindow)
	for i := monthlyWindow - 1; i >= 0; i-- {
		out = append(out, s.gen.monthly(parkID, month.AddDate(0, -i, 0)))
	}
	return out
}

// Totals sums the ticket counters and revenue of parks.
func Totals(parks []WaterPark) TicketTotals {
	t := TicketTotals{Parks: len(parks)}
	for _, p := range parks {
		t.ActiveTickets += p.ActiveTickets
		t.SoldTickets += p.SoldTickets
		t.PrintedTickets += p.PrintedTickets
		t.InactiveTickets += p.InactiveTickets
		t.TotalRevenue += p.TotalRevenue
	}
	t.TotalRevenue = roundCents(t.TotalRevenue)
	return t
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
