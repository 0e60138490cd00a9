package remote

import (
	"context"
	"net/http"

	"aquadash/internal/httpclient"
)

type TicketService struct {
	client *httpclient.Client
}

func NewTicketService(client *httpclient.Client) *TicketService {
	return &TicketService{client: client}
}

// Summary fetches the box-office ticket counters from /ResumenTaquilla.
func (s *TicketService) Summary(ctx context.Context) (*TicketSummary, error) {
	var resp envelope[ticketSummaryData]
	if err := s.client.Do(ctx, http.MethodGet, "/ResumenTaquilla", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &httpclient.APIError{Status: http.StatusBadGateway, Message: resp.Message}
	}
	return &TicketSummary{
		Active:   resp.Data.Active,
		Sold:     resp.Data.Sold,
		Printed:  resp.Data.Printed,
		Inactive: resp.Data.Inactive,
	}, nil
}
