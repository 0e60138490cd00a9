package remote

// envelope is the response shape shared by every box-office endpoint.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	AccessToken string `json:"access_token"`
	Name        string `json:"name"`
}

// LoginResult is what a successful remote login yields.
type LoginResult struct {
	AccessToken string
	Name        string
}

type ticketSummaryData struct {
	Active   int64 `json:"tickets_activos"`
	Sold     int64 `json:"tickets_vendidos"`
	Printed  int64 `json:"tickets_impresos"`
	Inactive int64 `json:"tickets_inactivos"`
}

// TicketSummary holds the box-office ticket counters.
type TicketSummary struct {
	Active   int64 `json:"active"`
	Sold     int64 `json:"sold"`
	Printed  int64 `json:"printed"`
	Inactive int64 `json:"inactive"`
}
