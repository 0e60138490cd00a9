package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aquadash/internal/auth"
	"aquadash/internal/domain/notes"
	"aquadash/internal/domain/storage"
	"aquadash/internal/kv"
	"aquadash/internal/metrics"
	"aquadash/internal/ratelimiter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func newTestApplication(t *testing.T, limit int) *application {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c, err := storage.NewContainer(context.Background(), storage.Deps{
		KV:       kv.NewMemory(),
		Metrics:  m,
		Clock:    func() time.Time { return fixedNow },
		MockSeed: 3,
	})
	require.NoError(t, err)

	return &application{
		config: config{
			env: "test",
			auth: authConfig{
				basic: basicConfig{user: "ops", pass: "s3cret"},
			},
			rateLimiter: ratelimiter.Config{RequestsPerTimeFrame: limit, TimeFrame: time.Minute, Enabled: true},
		},
		store:         c,
		logger:        zap.NewNop().Sugar(),
		authenticator: auth.NewJWTAuthenticator("test-secret", "AquaDash", "AquaDash", time.Hour),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(limit, time.Minute),
		metrics:       m,
		registry:      reg,
	}
}

func executeRequest(app *application, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	app.mount().ServeHTTP(rr, req)
	return rr
}

func jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func login(t *testing.T, app *application, email, password string) string {
	t.Helper()
	rr := executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", LoginPayload{Email: email, Password: password}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	decodeData(t, rr, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLogin(t *testing.T) {
	app := newTestApplication(t, 20)

	rr := executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", LoginPayload{Email: "admin@aquadash.com", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"success":false,"message":"unauthorized","status":401}`, rr.Body.String())

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", map[string]string{"email": "not-an-email", "password": "x"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	token := login(t, app, "admin@aquadash.com", "admin123")

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/session", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st struct {
		IsAuthenticated bool   `json:"isAuthenticated"`
		UserRole        string `json:"userRole"`
	}
	decodeData(t, rr, &st)
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "admin", st.UserRole)

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/authentication/logout", token, nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks", token, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "token of an ended session")
}

func TestLoginRateLimited(t *testing.T) {
	app := newTestApplication(t, 1)
	login(t, app, "superadmin@aquadash.com", "super123")

	rr := executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", LoginPayload{Email: "superadmin@aquadash.com", Password: "super123"}))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestLoginRateLimitedAcrossPorts(t *testing.T) {
	app := newTestApplication(t, 2)

	var codes []int
	for port := 40000; port < 40005; port++ {
		req := jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", LoginPayload{Email: "superadmin@aquadash.com", Password: "wrong"})
		req.RemoteAddr = fmt.Sprintf("203.0.113.7:%d", port)
		codes = append(codes, executeRequest(app, req).Code)
	}
	assert.Equal(t, []int{401, 401, 429, 429, 429}, codes)

	req := jsonRequest(t, http.MethodPost, "/v1/authentication/login", "", LoginPayload{Email: "superadmin@aquadash.com", Password: "wrong"})
	req.RemoteAddr = "198.51.100.9:40000"
	assert.Equal(t, http.StatusUnauthorized, executeRequest(app, req).Code)
}

func TestWaterParkScoping(t *testing.T) {
	app := newTestApplication(t, 20)

	rr := executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := login(t, app, "admin.cascada@aquadash.com", "cascada123")

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks", token, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var parks []struct {
		ID string `json:"id"`
	}
	decodeData(t, rr, &parks)
	require.Len(t, parks, 1)
	assert.Equal(t, "3", parks[0].ID)

	for path, want := range map[string]int{
		"/v1/waterparks/3":               http.StatusOK,
		"/v1/waterparks/3/checkers":      http.StatusOK,
		"/v1/waterparks/3/stats/daily":   http.StatusOK,
		"/v1/waterparks/3/stats/monthly": http.StatusOK,
		"/v1/waterparks/1":               http.StatusForbidden,
		"/v1/waterparks/1/checkers":      http.StatusForbidden,
		"/v1/waterparks/99":              http.StatusNotFound,
		"/v1/dashboard/tickets":          http.StatusForbidden,
	} {
		rr := executeRequest(app, jsonRequest(t, http.MethodGet, path, token, nil))
		assert.Equal(t, want, rr.Code, path)
	}

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks/3/stats/daily", token, nil))
	var daily []struct {
		Date string `json:"date"`
	}
	decodeData(t, rr, &daily)
	require.Len(t, daily, 30)
	assert.Equal(t, "2026-03-15", daily[29].Date)

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/waterparks/refresh", token, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDashboardSummary(t *testing.T) {
	app := newTestApplication(t, 20)
	token := login(t, app, "superadmin@aquadash.com", "super123")

	rr := executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/dashboard/summary", token, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var summary DashboardSummary
	decodeData(t, rr, &summary)
	assert.Equal(t, 5, summary.Totals.Parks)
	assert.Len(t, summary.WaterParks, 5)

	var sold int64
	for _, p := range summary.WaterParks {
		sold += p.SoldTickets
	}
	assert.Equal(t, sold, summary.Totals.SoldTickets)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/dashboard/tickets", token, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code, "box office not configured")

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/waterparks/refresh", token, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNotesLifecycle(t *testing.T) {
	app := newTestApplication(t, 20)
	token := login(t, app, "admin@aquadash.com", "admin123")

	rr := executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/notes", token, map[string]any{
		"content":       "Mesa 4 pide toallas",
		"tableNumber":   4,
		"customerCount": 3,
		"priority":      "high",
	}))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created notes.Note
	decodeData(t, rr, &created)
	assert.Equal(t, notes.StatusPending, created.Status)
	assert.Equal(t, fixedNow, created.Timestamp.UTC())

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/notes", token, map[string]any{
		"content": "x", "tableNumber": 1, "status": "archived",
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodPatch, "/v1/notes/"+created.ID, token, map[string]any{"status": "completed"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated notes.Note
	decodeData(t, rr, &updated)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, notes.StatusCompleted, updated.Status)

	rr = executeRequest(app, jsonRequest(t, http.MethodPatch, "/v1/notes/missing", token, map[string]any{"status": "completed"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodPut, "/v1/notes/view", token, map[string]any{"selectedPeriod": "week", "filterStatus": "completed"}))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/notes?limit=5", token, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var page NotesPage
	decodeData(t, rr, &page)
	assert.Equal(t, notes.View{Period: notes.PeriodWeek, FilterStatus: "completed"}, page.View)
	assert.LessOrEqual(t, len(page.Notes), 5)
	for _, n := range page.Notes {
		assert.Equal(t, notes.StatusCompleted, n.Status)
	}
	assert.Equal(t, app.store.Notes.Stats().CompletedNotes, page.Pagination.Total)

	rr = executeRequest(app, jsonRequest(t, http.MethodPut, "/v1/notes/view", token, map[string]any{"selectedPeriod": "month"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/notes/weekly", token, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var weekly []notes.DayRollup
	decodeData(t, rr, &weekly)
	assert.Len(t, weekly, 7)

	rr = executeRequest(app, jsonRequest(t, http.MethodDelete, "/v1/notes/"+created.ID, token, nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = executeRequest(app, jsonRequest(t, http.MethodDelete, "/v1/notes/"+created.ID, token, nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/notes/stats", token, nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var stats notes.Stats
	decodeData(t, rr, &stats)
	assert.Equal(t, app.store.Notes.Stats(), stats)
}

func TestPrivacyFlow(t *testing.T) {
	app := newTestApplication(t, 20)

	rr := executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/privacy/consent", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var consent ConsentResponse
	decodeData(t, rr, &consent)
	assert.Equal(t, "unset", string(consent.State))
	assert.True(t, consent.ShowNotification)

	event := map[string]any{"type": "marketing", "description": "promo banner"}
	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/privacy/events", "", event))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":{"recorded":false}}`, rr.Body.String())

	rr = executeRequest(app, jsonRequest(t, http.MethodPut, "/v1/privacy/consent", "", map[string]any{"essential": false, "marketing": true}))
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &consent)
	assert.True(t, consent.Consent.Essential)
	assert.True(t, consent.Consent.Marketing)
	assert.Equal(t, "granted", string(consent.State))

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/privacy/events", "", event))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/privacy/events", "", map[string]any{"type": "tracking"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/privacy/export", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/privacy/events", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	token := login(t, app, "superadmin@aquadash.com", "super123")
	req := jsonRequest(t, http.MethodGet, "/v1/privacy/export?platform=linux", token, nil)
	req.Header.Set("User-Agent", "dashboard-test")
	req.Header.Set("Accept-Language", "es-MX")
	rr = executeRequest(app, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment")
	var export map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &export))
	assert.Equal(t, "dashboard-test", export["userAgent"])
	assert.Equal(t, "linux", export["platform"])
	assert.Len(t, export["collectionHistory"], 1)

	rr = executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/privacy/consent/reject-optional", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &consent)
	assert.False(t, consent.Consent.Marketing)
}

func TestDeleteUserDataEndsSession(t *testing.T) {
	app := newTestApplication(t, 20)
	token := login(t, app, "superadmin@aquadash.com", "super123")

	rr := executeRequest(app, jsonRequest(t, http.MethodPost, "/v1/privacy/consent/accept-all", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodDelete, "/v1/privacy/data", "", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks", token, nil))
	require.Equal(t, http.StatusOK, rr.Code, "anonymous erase leaves the session alone")

	rr = executeRequest(app, jsonRequest(t, http.MethodDelete, "/v1/privacy/data", token, nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/waterparks", token, nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/privacy/consent/expiry", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var out struct {
		Expired bool `json:"expired"`
	}
	decodeData(t, rr, &out)
	assert.True(t, out.Expired)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApplication(t, 20)

	rr := executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/health", "", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := jsonRequest(t, http.MethodGet, "/v1/health", "", nil)
	req.SetBasicAuth("ops", "s3cret")
	rr = executeRequest(app, req)
	require.Equal(t, http.StatusOK, rr.Code)
	var health map[string]string
	decodeData(t, rr, &health)
	assert.Equal(t, "ok", health["status"])

	login(t, app, "admin@aquadash.com", "admin123")
	rr = executeRequest(app, jsonRequest(t, http.MethodGet, "/v1/metrics", "", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `aquadash_login_attempts_total{provider="demo",result="success"} 1`))
}
