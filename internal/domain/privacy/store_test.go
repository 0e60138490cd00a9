package privacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"aquadash/internal/kv"
	"aquadash/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 15, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestStore(t *testing.T, store kv.Store, c *clock, m *metrics.Metrics) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), Options{KV: store, Clock: c.Now, Metrics: m})
	require.NoError(t, err)
	return s
}

func boolPtr(b bool) *bool { return &b }

func TestDefaults(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), &clock{now: fixedNow}, nil)

	assert.Equal(t, EssentialOnly, s.Consent())
	assert.Equal(t, StateUnset, s.State())
	assert.True(t, s.ShowNotification())
	assert.Nil(t, s.ConsentTimestamp())
	assert.Empty(t, s.History())
	assert.True(t, s.CheckConsentExpiry(context.Background()))
}

func TestUpdateConsentKeepsEssential(t *testing.T) {
	store := kv.NewMemory()
	s := newTestStore(t, store, &clock{now: fixedNow}, nil)

	got, err := s.UpdateConsent(context.Background(), ConsentUpdate{
		Essential: boolPtr(false),
		Analytics: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, Consent{Essential: true, Analytics: true}, got)
	assert.False(t, s.ShowNotification())
	require.NotNil(t, s.ConsentTimestamp())
	assert.Equal(t, fixedNow, *s.ConsentTimestamp())
	assert.Equal(t, StateGranted, s.State())

	got, err = s.RejectOptional(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EssentialOnly, got)

	got, err = s.AcceptAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Consent{true, true, true, true, true}, got)

	reloaded := newTestStore(t, store, &clock{now: fixedNow}, nil)
	assert.Equal(t, got, reloaded.Consent())
}

func TestRecordDataCollectionIsGated(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(nil)
	s := newTestStore(t, kv.NewMemory(), &clock{now: fixedNow}, m)

	ev, err := s.RecordDataCollection(ctx, EventInput{Type: CategoryMarketing, Description: "banner click"})
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.Empty(t, s.History())

	_, err = s.UpdateConsent(ctx, ConsentUpdate{Marketing: boolPtr(true)})
	require.NoError(t, err)

	ev, err = s.RecordDataCollection(ctx, EventInput{
		Type:        CategoryMarketing,
		Description: "banner click",
		Data:        map[string]any{"campaign": "verano"},
	})
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Regexp(t, fmt.Sprintf(`^%d-[0-9a-f]{9}$`, fixedNow.UnixMilli()), ev.ID)
	require.Len(t, s.History(), 1)
	assert.Equal(t, *ev, s.History()[0])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TelemetryEvents.WithLabelValues("marketing", "recorded")))

	_, err = s.RecordDataCollection(ctx, EventInput{Type: "tracking"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestEssentialEventsAlwaysRecorded(t *testing.T) {
	s := newTestStore(t, kv.NewMemory(), &clock{now: fixedNow}, nil)
	ev, err := s.RecordDataCollection(context.Background(), EventInput{Type: CategoryEssential, Description: "session"})
	require.NoError(t, err)
	assert.NotNil(t, ev)
}

func TestHistoryKeepsMostRecentHundred(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: fixedNow}
	s := newTestStore(t, kv.NewMemory(), c, nil)
	_, err := s.AcceptAll(ctx)
	require.NoError(t, err)

	for i := 0; i < 150; i++ {
		c.now = fixedNow.Add(time.Duration(i) * time.Second)
		_, err := s.RecordDataCollection(ctx, EventInput{Type: CategoryAnalytics, Description: fmt.Sprint(i)})
		require.NoError(t, err)
	}

	h := s.History()
	require.Len(t, h, HistoryLimit)
	assert.Equal(t, "149", h[0].Description)
	assert.Equal(t, "50", h[len(h)-1].Description)
	for i := 1; i < len(h); i++ {
		assert.True(t, h[i-1].Timestamp.After(h[i].Timestamp))
	}
}

func TestConsentExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: fixedNow}
	s := newTestStore(t, kv.NewMemory(), c, nil)
	_, err := s.AcceptAll(ctx)
	require.NoError(t, err)

	c.now = fixedNow.AddDate(0, 0, 179)
	assert.False(t, s.CheckConsentExpiry(ctx))
	assert.False(t, s.ShowNotification())
	assert.Equal(t, StateGranted, s.State())

	c.now = fixedNow.AddDate(0, 0, 181)
	assert.True(t, s.CheckConsentExpiry(ctx))
	assert.True(t, s.ShowNotification())
	assert.Equal(t, StateExpired, s.State())

	_, err = s.AcceptAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateGranted, s.State())
	assert.False(t, s.ShowNotification())
}

func TestExportUserData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(), &clock{now: fixedNow}, nil)
	_, err := s.UpdateConsent(ctx, ConsentUpdate{Analytics: boolPtr(true)})
	require.NoError(t, err)
	_, err = s.RecordDataCollection(ctx, EventInput{Type: CategoryAnalytics, Description: "page view"})
	require.NoError(t, err)

	out, err := s.ExportUserData(ClientInfo{UserAgent: "curl/8", Language: "es-MX", Platform: "linux"})
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"consent\"")

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "curl/8", doc["userAgent"])
	assert.Equal(t, "es-MX", doc["language"])
	assert.Equal(t, "linux", doc["platform"])
	assert.Equal(t, fixedNow.Format(time.RFC3339), doc["exportDate"])
	assert.Len(t, doc["collectionHistory"], 1)
}

func TestDeleteUserData(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, kv.KeyAuth, []byte(`{"state":{}}`)))
	require.NoError(t, store.Set(ctx, kv.KeyTheme, []byte(`{"state":{"theme":"dark"}}`)))
	require.NoError(t, store.Set(ctx, kv.KeyNotes, []byte(`{"state":{"notes":[]}}`)))

	s := newTestStore(t, store, &clock{now: fixedNow}, nil)
	_, err := s.AcceptAll(ctx)
	require.NoError(t, err)
	_, err = s.RecordDataCollection(ctx, EventInput{Type: CategoryAnalytics})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUserData(ctx))
	assert.Equal(t, EssentialOnly, s.Consent())
	assert.Empty(t, s.History())
	assert.True(t, s.ShowNotification())
	assert.Equal(t, StateUnset, s.State())

	_, err = store.Get(ctx, kv.KeyAuth)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, kv.KeyTheme)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, kv.KeyNotes)
	assert.NoError(t, err)
}

func TestLegacyConsentIsMigrated(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	ts := fixedNow.AddDate(0, 0, -10)
	require.NoError(t, store.Set(ctx, kv.KeyLegacyConsent, []byte(`{"essential":false,"analytics":true,"marketing":true}`)))
	require.NoError(t, store.Set(ctx, kv.KeyLegacyConsentTS, []byte(ts.Format(time.RFC3339))))

	s := newTestStore(t, store, &clock{now: fixedNow}, nil)
	assert.Equal(t, Consent{Essential: true, Analytics: true, Marketing: true}, s.Consent())
	require.NotNil(t, s.ConsentTimestamp())
	assert.True(t, ts.Equal(*s.ConsentTimestamp()))
	assert.Equal(t, StateGranted, s.State())
	assert.False(t, s.ShowNotification())

	_, err := store.Get(ctx, kv.KeyLegacyConsent)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, kv.KeyLegacyConsentTS)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	_, err = store.Get(ctx, kv.KeyPrivacy)
	assert.NoError(t, err)
}

func TestParseLegacyTimestamp(t *testing.T) {
	want := time.UnixMilli(1767225600000).UTC()
	got, ok := parseLegacyTimestamp("1767225600000")
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	got, ok = parseLegacyTimestamp(`"2026-01-01T00:00:00Z"`)
	require.True(t, ok)
	assert.True(t, want.Equal(got))

	_, ok = parseLegacyTimestamp("yesterday")
	assert.False(t, ok)
}

type failingKV struct {
	kv.Store
	fail bool
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestFailedWriteLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &failingKV{Store: kv.NewMemory()}
	s := newTestStore(t, store, &clock{now: fixedNow}, nil)
	_, err := s.UpdateConsent(ctx, ConsentUpdate{Analytics: boolPtr(true)})
	require.NoError(t, err)

	store.fail = true
	_, err = s.AcceptAll(ctx)
	require.Error(t, err)
	assert.Equal(t, Consent{Essential: true, Analytics: true}, s.Consent())

	_, err = s.RecordDataCollection(ctx, EventInput{Type: CategoryAnalytics})
	require.Error(t, err)
	assert.Empty(t, s.History())

	require.Error(t, s.DeleteUserData(ctx))
	assert.Equal(t, Consent{Essential: true, Analytics: true}, s.Consent())
	assert.Equal(t, StateGranted, s.State())

	store.fail = false
	_, err = s.RecordDataCollection(ctx, EventInput{Type: CategoryEssential})
	require.NoError(t, err)
	reloaded := newTestStore(t, store.Store, &clock{now: fixedNow}, nil)
	assert.Equal(t, Consent{Essential: true, Analytics: true}, reloaded.Consent())
	assert.Len(t, reloaded.History(), 1)
}

func TestRecordedDataIsCopied(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory(), &clock{now: fixedNow}, nil)

	data := map[string]any{"page": "/dashboard"}
	ev, err := s.RecordDataCollection(ctx, EventInput{Type: CategoryEssential, Data: data})
	require.NoError(t, err)
	require.NotNil(t, ev)

	data["page"] = "/tampered"
	data["extra"] = true
	assert.Equal(t, map[string]any{"page": "/dashboard"}, s.History()[0].Data)
	assert.Equal(t, map[string]any{"page": "/dashboard"}, ev.Data)
}
