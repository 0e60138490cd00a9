package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"aquadash/internal/kv"
	"aquadash/internal/metrics"

	"go.uber.org/zap"
)

// RemoteSession is the subset of remote.AuthService used on logout.
type RemoteSession interface {
	HasToken(ctx context.Context) bool
	Logout(ctx context.Context) error
}

type Options struct {
	KV        kv.Store
	Logger    *zap.SugaredLogger
	Metrics   *metrics.Metrics
	Remote    RemoteSession
	Providers []Provider
}

// Store owns the authenticated identity. It is persisted under kv.KeyAuth.
type Store struct {
	mu        sync.RWMutex
	state     State
	kv        kv.Store
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
	remote    RemoteSession
	providers []Provider
}

func NewStore(ctx context.Context, opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Store{
		kv:        opts.KV,
		logger:    logger,
		metrics:   opts.Metrics,
		remote:    opts.Remote,
		providers: opts.Providers,
	}

	var p persisted
	err := kv.GetJSON(ctx, s.kv, kv.KeyAuth, &p)
	switch {
	case err == nil:
		s.state = p.State
	case errors.Is(err, kv.ErrNotFound):
	default:
		return nil, fmt.Errorf("load auth state: %w", err)
	}
	return s, nil
}

// Login tries each provider in order. A failing provider is logged and the next one is tried;
// ErrInvalidCredentials is returned only when every provider failed.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	var user *User
	for _, p := range s.providers {
		u, err := p.Authenticate(ctx, email, password)
		s.metrics.ObserveLogin(p.Name(), err == nil)
		if err != nil {
			s.logger.Infow("login provider failed", "provider", p.Name(), "email", email, "error", err.Error())
			continue
		}
		user = u
		break
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := State{User: user, IsAuthenticated: true, UserRole: user.Role}
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	out := *user
	return &out, nil
}

// Logout tears down the remote session when a token exists, then always clears local state.
// Remote failures are logged, never returned.
func (s *Store) Logout(ctx context.Context) error {
	if s.remote != nil && s.remote.HasToken(ctx) {
		if err := s.remote.Logout(ctx); err != nil {
			s.logger.Warnw("remote logout failed", "error", err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Local state is cleared even when the write fails.
	s.state = State{}
	return s.persist(ctx, s.state)
}

// Forget drops the in-memory session without writing, for when the persisted slice has
// already been erased.
func (s *Store) Forget() {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
}

// Current returns a copy of the auth slice.
func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// CanAccessPark reports whether the current user may see parkID.
func (s *Store) CanAccessPark(parkID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return CanAccessPark(s.state.User, parkID)
}

// CanAccessPark: superadmins see every park, admins only their own.
func CanAccessPark(u *User, parkID string) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return u.WaterParkID != "" && u.WaterParkID == parkID
	}
	return false
}

func (s *Store) persist(ctx context.Context, state State) error {
	if err := kv.SetJSON(ctx, s.kv, kv.KeyAuth, persisted{State: state}); err != nil {
		return fmt.Errorf("persist auth state: %w", err)
	}
	return nil
}
