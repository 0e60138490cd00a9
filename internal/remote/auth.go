package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"aquadash/internal/httpclient"
	"aquadash/internal/kv"
)

// AuthService wraps the box-office /login and /logout endpoints.
type AuthService struct {
	client *httpclient.Client
	store  kv.Store
}

func NewAuthService(client *httpclient.Client, store kv.Store) *AuthService {
	return &AuthService{client: client, store: store}
}

// Login authenticates against the box office and persists the returned token and display name.
// A response with success=false is reported as an *httpclient.APIError.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp envelope[loginData]
	err := s.client.Do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data.AccessToken == "" {
		return nil, &httpclient.APIError{Status: http.StatusUnauthorized, Message: resp.Message}
	}

	if err := s.store.Set(ctx, kv.KeyAccessToken, []byte(resp.Data.AccessToken)); err != nil {
		return nil, fmt.Errorf("persist access token: %w", err)
	}
	if err := s.store.Set(ctx, kv.KeyUserName, []byte(resp.Data.Name)); err != nil {
		return nil, fmt.Errorf("persist user name: %w", err)
	}

	return &LoginResult{AccessToken: resp.Data.AccessToken, Name: resp.Data.Name}, nil
}

// Logout calls /logout and removes the persisted token and name whatever the outcome.
// The remote error, if any, is returned after the keys are gone.
func (s *AuthService) Logout(ctx context.Context) error {
	var resp envelope[struct{}]
	remoteErr := s.client.Do(ctx, http.MethodPost, "/logout", nil, &resp)

	var errs []error
	if remoteErr != nil {
		errs = append(errs, remoteErr)
	}
	for _, key := range []string{kv.KeyAccessToken, kv.KeyUserName} {
		if err := s.store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// HasToken reports whether an access token is currently persisted.
func (s *AuthService) HasToken(ctx context.Context) bool {
	raw, err := s.store.Get(ctx, kv.KeyAccessToken)
	return err == nil && len(raw) > 0
}
