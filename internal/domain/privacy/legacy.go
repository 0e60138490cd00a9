package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"aquadash/internal/kv"
)

// importLegacy reads the consent blob and timestamp that older clients wrote under their
// own keys. It reports whether a blob was found.
func (s *Store) importLegacy(ctx context.Context) (bool, error) {
	raw, err := s.kv.Get(ctx, kv.KeyLegacyConsent)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load legacy consent: %w", err)
	}

	var c Consent
	if err := json.Unmarshal(raw, &c); err != nil {
		s.logger.Warnw("discarding unreadable legacy consent", "error", err)
		return false, nil
	}
	s.state.Consent = ConsentUpdate{
		Analytics:     &c.Analytics,
		Performance:   &c.Performance,
		Functionality: &c.Functionality,
		Marketing:     &c.Marketing,
	}.apply(EssentialOnly)

	rawTS, err := s.kv.Get(ctx, kv.KeyLegacyConsentTS)
	switch {
	case err == nil:
		if ts, ok := parseLegacyTimestamp(string(rawTS)); ok {
			s.state.ConsentTimestamp = &ts
			s.state.ShowNotification = false
		}
	case errors.Is(err, kv.ErrNotFound):
	default:
		return false, fmt.Errorf("load legacy consent timestamp: %w", err)
	}

	s.logger.Infow("migrated legacy consent", "consent", s.state.Consent)
	return true, nil
}

func (s *Store) dropLegacy(ctx context.Context) error {
	var errs []error
	for _, key := range []string{kv.KeyLegacyConsent, kv.KeyLegacyConsentTS} {
		if err := s.kv.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// parseLegacyTimestamp accepts an RFC 3339 string (optionally JSON quoted) or unix
// milliseconds.
func parseLegacyTimestamp(v string) (time.Time, bool) {
	v = strings.Trim(strings.TrimSpace(v), `"`)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, true
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}
