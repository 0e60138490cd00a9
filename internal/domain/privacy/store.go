package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"

	"aquadash/internal/kv"
	"aquadash/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// HistoryLimit caps the collection history; the oldest entries are dropped.
	HistoryLimit = 100
	// ConsentTTL is how long a consent decision stays valid.
	ConsentTTL = 180 * 24 * time.Hour
)

type Options struct {
	KV      kv.Store
	Logger  *zap.SugaredLogger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// Store is the single writer of the consent record and its collection history.
type Store struct {
	mu      sync.RWMutex
	state   persistedState
	kv      kv.Store
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	clock   func() time.Time
}

func NewStore(ctx context.Context, opts Options) (*Store, error) {
	s := &Store{
		kv:      opts.KV,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		clock:   opts.Clock,
		state:   defaultState(),
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}

	var p persisted
	err := kv.GetJSON(ctx, s.kv, kv.KeyPrivacy, &p)
	switch {
	case err == nil:
		s.state = p.State
		s.state.Consent.Essential = true
		if s.state.CollectionHistory == nil {
			s.state.CollectionHistory = []Event{}
		}
		return s, s.dropLegacy(ctx)
	case errors.Is(err, kv.ErrNotFound):
	default:
		return nil, fmt.Errorf("load privacy state: %w", err)
	}

	migrated, err := s.importLegacy(ctx)
	if err != nil {
		return nil, err
	}
	if !migrated {
		return s, nil
	}
	if err := s.persist(ctx, s.state); err != nil {
		return nil, err
	}
	return s, s.dropLegacy(ctx)
}

func defaultState() persistedState {
	return persistedState{
		Consent:           EssentialOnly,
		CollectionHistory: []Event{},
		ShowNotification:  true,
	}
}

// UpdateConsent merges u into the current consent and stamps the decision time.
// Essential cannot be switched off through this or any other path.
func (s *Store) UpdateConsent(ctx context.Context, u ConsentUpdate) (Consent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	next := s.state
	next.Consent = u.apply(s.state.Consent)
	next.ConsentTimestamp = &now
	next.ShowNotification = false
	if err := s.persist(ctx, next); err != nil {
		return Consent{}, err
	}
	s.state = next
	s.logger.Infow("consent updated", "consent", s.state.Consent)
	return s.state.Consent, nil
}

func (s *Store) AcceptAll(ctx context.Context) (Consent, error) {
	yes := true
	return s.UpdateConsent(ctx, ConsentUpdate{Analytics: &yes, Performance: &yes, Functionality: &yes, Marketing: &yes})
}

func (s *Store) RejectOptional(ctx context.Context) (Consent, error) {
	no := false
	return s.UpdateConsent(ctx, ConsentUpdate{Analytics: &no, Performance: &no, Functionality: &no, Marketing: &no})
}

// RecordDataCollection appends an event when its category is consented to. It returns
// nil, and leaves the history untouched, otherwise.
func (s *Store) RecordDataCollection(ctx context.Context, in EventInput) (*Event, error) {
	if _, err := ParseCategory(string(in.Type)); err != nil {
		return nil, fmt.Errorf("%w: %q", err, in.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.Consent.Allows(in.Type) {
		s.metrics.ObserveTelemetry(string(in.Type), false)
		return nil, nil
	}

	now := s.clock()
	ev := Event{
		ID:          eventID(now),
		Type:        in.Type,
		Timestamp:   now,
		Description: in.Description,
		Data:        maps.Clone(in.Data),
	}
	history := make([]Event, 0, min(len(s.state.CollectionHistory)+1, HistoryLimit))
	history = append(history, ev)
	for _, e := range s.state.CollectionHistory {
		if len(history) == HistoryLimit {
			break
		}
		history = append(history, e)
	}
	next := s.state
	next.CollectionHistory = history
	if err := s.persist(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	s.metrics.ObserveTelemetry(string(in.Type), true)
	return &ev, nil
}

func eventID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(t.UnixMilli(), 10) + "-" + suffix
}

// CheckConsentExpiry reports whether consent must be asked again: never given, or older
// than ConsentTTL. A true result also raises the notification flag.
func (s *Store) CheckConsentExpiry(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.expired() {
		return false
	}
	if !s.state.ShowNotification {
		next := s.state
		next.ShowNotification = true
		if err := s.persist(ctx, next); err != nil {
			s.logger.Warnw("persist consent notification flag", "error", err)
		} else {
			s.state = next
		}
	}
	return true
}

func (s *Store) expired() bool {
	ts := s.state.ConsentTimestamp
	return ts == nil || s.clock().Sub(*ts) > ConsentTTL
}

func (s *Store) State() ConsentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.state.ConsentTimestamp == nil:
		return StateUnset
	case s.expired():
		return StateExpired
	}
	return StateGranted
}

func (s *Store) Consent() Consent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Consent
}

func (s *Store) ConsentTimestamp() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.ConsentTimestamp == nil {
		return nil
	}
	ts := *s.state.ConsentTimestamp
	return &ts
}

func (s *Store) ShowNotification() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ShowNotification
}

// History returns the recorded events, newest first.
func (s *Store) History() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.state.CollectionHistory))
	copy(out, s.state.CollectionHistory)
	return out
}

// ExportUserData renders everything held about the user as indented JSON.
func (s *Store) ExportUserData(info ClientInfo) (string, error) {
	s.mu.RLock()
	e := export{
		Consent:           s.state.Consent,
		ConsentTimestamp:  s.state.ConsentTimestamp,
		CollectionHistory: s.state.CollectionHistory,
		UserAgent:         info.UserAgent,
		Language:          info.Language,
		Platform:          info.Platform,
		ExportDate:        s.clock(),
	}
	b, err := json.MarshalIndent(e, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("export user data: %w", err)
	}
	return string(b), nil
}

// DeleteUserData resets consent to essential-only and wipes the history, the persisted
// session and the theme preference.
func (s *Store) DeleteUserData(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, key := range []string{kv.KeyAuth, kv.KeyTheme} {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	if err := s.persist(ctx, defaultState()); err != nil {
		errs = append(errs, err)
	} else {
		s.state = defaultState()
	}
	s.logger.Infow("user data deleted")
	return errors.Join(errs...)
}

func (s *Store) persist(ctx context.Context, state persistedState) error {
	if err := kv.SetJSON(ctx, s.kv, kv.KeyPrivacy, persisted{State: state}); err != nil {
		return fmt.Errorf("persist privacy state: %w", err)
	}
	return nil
}
