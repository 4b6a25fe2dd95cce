package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestID(t *testing.T) {
	var seen string
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	t.Run("generates an id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get("X-Request-Id")
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "trace-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "trace-123", rec.Header().Get("X-Request-Id"))
		assert.Equal(t, "trace-123", seen)
	})
}

func TestWithCORS(t *testing.T) {
	called := false
	handler := WithCORS("https://boirefacile.fr", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/closest_bars", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://boirefacile.fr", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.False(t, called)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/all_bars", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "https://boirefacile.fr", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, called)
}

func TestRouterDefaultsCORSOrigin(t *testing.T) {
	ts := newTestServer(parisBars)

	rec := ts.do(http.MethodGet, "/all_bars", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestMetricsRoute(t *testing.T) {
	h := NewHandler(nil, nil, nil)
	router := NewRouter(h, RouterOptions{
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("barcrawl_catalog_bars 4\n"))
		}),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "barcrawl_catalog_bars 4\n", rec.Body.String())
}
