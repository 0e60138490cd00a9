package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aquadash/internal/domain/session"
	"aquadash/internal/httpclient"
	"aquadash/internal/kv"
	"aquadash/internal/metrics"
	"aquadash/internal/remote"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func TestContainerDemoOnly(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(nil)
	c, err := NewContainer(ctx, Deps{
		KV:       kv.NewMemory(),
		Metrics:  m,
		Clock:    func() time.Time { return fixedNow },
		MockSeed: 42,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Len(t, c.WaterParks.WaterParks(), 5)
	assert.Empty(t, c.VisibleParks())

	u, err := c.Session.Login(ctx, "admin.olas@aquadash.com", "olas123")
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, u.Role)

	visible := c.VisibleParks()
	require.Len(t, visible, 1)
	assert.Equal(t, "2", visible[0].ID)

	_, err = c.Session.Login(ctx, "superadmin@aquadash.com", "super123")
	require.NoError(t, err)
	assert.Len(t, c.VisibleParks(), 5)

	assert.Positive(t, testutil.ToFloat64(m.KVWrites.WithLabelValues(kv.KeyAuth, "set")))
}

func TestContainerWithBoxOffice(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"success":false,"message":"mantenimiento"}`))
	})
	mux.HandleFunc("GET /ResumenTaquilla", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok","data":{"tickets_activos":7,"tickets_vendidos":90,"tickets_impresos":80,"tickets_inactivos":-3}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	store := kv.NewMemory()
	client := httpclient.New(srv.URL, httpclient.WithTokenSource(httpclient.KVTokenSource(store)))
	c, err := NewContainer(ctx, Deps{
		KV:              store,
		Clock:           func() time.Time { return fixedNow },
		Auth:            remote.NewAuthService(client, store),
		Tickets:         remote.NewTicketService(client),
		RemoteRole:      session.RoleSuperAdmin,
		BoxOfficeParkID: "1",
	})
	require.NoError(t, err)

	park, ok := c.WaterParks.FetchWaterParkDetails("1")
	require.True(t, ok)
	assert.Equal(t, int64(90), park.SoldTickets)
	assert.Equal(t, int64(0), park.InactiveTickets)

	u, err := c.Session.Login(ctx, "admin@aquadash.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "1", u.WaterParkID)
}

func TestContainerNeedsKV(t *testing.T) {
	_, err := NewContainer(context.Background(), Deps{})
	assert.Error(t, err)
}

func TestContainerDeleteUserDataSignsOut(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	c, err := NewContainer(ctx, Deps{KV: store, Clock: func() time.Time { return fixedNow }})
	require.NoError(t, err)

	_, err = c.Session.Login(ctx, "admin@aquadash.com", "admin123")
	require.NoError(t, err)
	require.True(t, c.Session.Current().IsAuthenticated)

	require.NoError(t, c.DeleteUserData(ctx))
	assert.False(t, c.Session.Current().IsAuthenticated)
	_, err = store.Get(ctx, kv.KeyAuth)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}
