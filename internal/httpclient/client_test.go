package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"aquadash/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsJSONAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/echo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	}))
	defer srv.Close()

	store := kv.NewMemory()
	require.NoError(t, store.Set(context.Background(), kv.KeyAccessToken, []byte("tok-1")))

	c := New(srv.URL+"/", WithTokenSource(KVTokenSource(store)))
	var out map[string]string
	require.NoError(t, c.Do(context.Background(), http.MethodPost, "/echo", map[string]string{"say": "hola"}, &out))
	assert.Equal(t, "hola", out["echo"])
}

func TestDoOmitsAuthorizationWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(KVTokenSource(kv.NewMemory())))
	assert.NoError(t, c.Do(context.Background(), http.MethodGet, "/", nil, nil))
}

func TestDoShapesAPIErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		payload bool
	}{
		{"server message", http.StatusUnauthorized, `{"success":false,"message":"Credenciales inválidas"}`, "Credenciales inválidas", true},
		{"json without message", http.StatusBadRequest, `{"errors":["email"]}`, "Bad Request", true},
		{"plain text body", http.StatusInternalServerError, `boom`, "Internal Server Error", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			err := New(srv.URL).Do(context.Background(), http.MethodGet, "/x", nil, nil)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.message, apiErr.Message)
			if tc.payload {
				assert.JSONEq(t, tc.body, string(apiErr.Payload))
			} else {
				assert.Nil(t, apiErr.Payload)
			}
		})
	}
}

func TestDoWrapsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := New(url).Do(context.Background(), http.MethodGet, "/gone", nil, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
