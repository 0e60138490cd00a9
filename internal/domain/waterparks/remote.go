package waterparks

import (
	"context"

	"aquadash/internal/remote"

	"go.uber.org/zap"
)

// TicketSummarizer is the subset of remote.TicketService used by RemoteSource.
type TicketSummarizer interface {
	Summary(ctx context.Context) (*remote.TicketSummary, error)
}

// RemoteSource overlays the live box-office counters onto one park of the base list.
// When the box office cannot be reached the base list is returned unchanged.
type RemoteSource struct {
	Base    Source
	Tickets TicketSummarizer
	ParkID  string
	Logger  *zap.SugaredLogger
}

func (s *RemoteSource) ListParks(ctx context.Context) ([]WaterPark, error) {
	parks, err := s.Base.ListParks(ctx)
	if err != nil {
		return nil, err
	}

	sum, err := s.Tickets.Summary(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warnw("ticket summary unavailable, using local park data", "park", s.ParkID, "error", err.Error())
		}
		return parks, nil
	}

	for i := range parks {
		if parks[i].ID != s.ParkID {
			continue
		}
		parks[i].ActiveTickets = nonNegative(sum.Active)
		parks[i].SoldTickets = nonNegative(sum.Sold)
		parks[i].PrintedTickets = nonNegative(sum.Printed)
		parks[i].InactiveTickets = nonNegative(sum.Inactive)
	}
	return parks, nil
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
