// Package httpclient is a small JSON client for the box-office REST API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aquadash/internal/kv"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Message string
	Payload json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

// TokenSource yields the bearer token sent with each request; an empty token sends none.
type TokenSource func(ctx context.Context) (string, error)

// KVTokenSource reads the access token persisted by the auth service.
func KVTokenSource(store kv.Store) TokenSource {
	return func(ctx context.Context) (string, error) {
		raw, err := store.Get(ctx, kv.KeyAccessToken)
		if err != nil {
			if errors.Is(err, kv.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		return string(raw), nil
	}
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body (if non-nil) as JSON and decodes a 2xx response into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	if json.Valid(raw) {
		apiErr.Payload = json.RawMessage(raw)
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}
