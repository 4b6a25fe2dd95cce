package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boirefacile/backend-go/internal/catalog"
	"github.com/boirefacile/backend-go/internal/config"
	"github.com/boirefacile/backend-go/internal/models"
	"github.com/boirefacile/backend-go/internal/participants"
)

const barsCSV = `Nom;Adresse;Prix;latitude;longitude;Happy Hour
Le Saint-Jean;12 rue Saint-Jean, Paris;5;48,8566;2,3522;18h-20h
Le Royal;3 place Colette, Paris;7;48.8606;2.3376;
Le Bouchon;1 rue Mercière, Lyon;6;45.7640;4.8357;17h-19h
Sans GPS;Quelque part;4;;;
`

type memoryStore struct {
	sessions map[string][]models.Participant
}

func (m *memoryStore) Replace(_ context.Context, sessionID string, list []models.Participant) error {
	m.sessions[sessionID] = list
	return nil
}

func (m *memoryStore) List(_ context.Context, sessionID string) ([]models.Participant, error) {
	return m.sessions[sessionID], nil
}

func (m *memoryStore) Stats(_ context.Context) (*participants.Stats, error) {
	return &participants.Stats{Backend: "memory", Count: int64(len(m.sessions))}, nil
}

func newTestApp(t *testing.T, directionsURL string) *App {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(barsCSV), 0o600))

	cfg := config.New(
		config.WithDataset(config.DatasetConfig{File: path}),
		config.WithDirections(config.DirectionsConfig{
			APIKey:          "key",
			BaseURL:         directionsURL,
			EnableCache:     true,
			CacheSize:       10,
			CacheTTLMinutes: 5,
		}),
	)
	a, err := New(context.Background(), cfg, WithStore(&memoryStore{sessions: map[string][]models.Participant{}}))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func serve(a *App, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestNew_ServesCatalog(t *testing.T) {
	a := newTestApp(t, "http://unused.invalid")

	assert.Equal(t, 4, a.Catalog.Len())

	rec := serve(a, http.MethodPost, "/closest_bars", `{"lat": 48.8566, "lon": 2.3522}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Bars []struct {
			Nom       string `json:"nom"`
			DistanceM int64  `json:"distance_m"`
		} `json:"bars"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bars, 3)
	assert.Equal(t, "Le Saint-Jean", resp.Bars[0].Nom)
	assert.Equal(t, "Le Royal", resp.Bars[1].Nom)
	assert.Equal(t, "Le Bouchon", resp.Bars[2].Nom)

	rec = serve(a, http.MethodGet, "/all_bars", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"nom":"Sans GPS"`)
	assert.Contains(t, rec.Body.String(), `"latitude":null`)

	rec = serve(a, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "barcrawl_catalog_bars 4")
	assert.Contains(t, rec.Body.String(), "barcrawl_nearest_skipped_total 1")
	assert.Contains(t, rec.Body.String(), `barcrawl_http_requests_total{code="200",route="/closest_bars"} 1`)
}

func TestNew_MissingDatasetStillServes(t *testing.T) {
	cfg := config.New()
	a, err := New(context.Background(), cfg,
		WithSource(catalog.FileSource{Path: filepath.Join(t.TempDir(), "missing.xlsx")}),
		WithStore(&memoryStore{sessions: map[string][]models.Participant{}}),
	)
	require.NoError(t, err)
	defer a.Close()

	rec := serve(a, http.MethodGet, "/all_bars", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"bars": []}`, rec.Body.String())
}

func TestNew_ParticipantsRoundTrip(t *testing.T) {
	a := newTestApp(t, "http://unused.invalid")

	rec := serve(a, http.MethodPost, "/save_participants", `{"sessionId":"s1","participants":[{"name":"Alice","address":"1 rue A"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(a, http.MethodGet, "/get_participants?id=s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"participants":[{"name":"Alice","address":"1 rue A"}]}`, rec.Body.String())

	rec = serve(a, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), "barcrawl_participants_saved_total 1")
}

func TestNew_DirectionsAreCached(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"status":"OK","routes":[{"legs":[{"duration":{"text":"9 minutes"},"steps":[{"html_instructions":"Marcher"}]}]}]}`)
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)

	for i := 0; i < 2; i++ {
		rec := serve(a, http.MethodPost, "/directions", `{"origin":"Châtelet","destination":"Bastille"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"steps":["Marcher"],"duration":"9 minutes"}`, rec.Body.String())
	}
	assert.Equal(t, 1, calls)

	rec := serve(a, http.MethodGet, "/metrics", "")
	assert.Contains(t, rec.Body.String(), `barcrawl_directions_cache_total{result="hit"} 1`)
	assert.Contains(t, rec.Body.String(), `barcrawl_directions_cache_total{result="miss"} 1`)
}

func TestNew_InvalidCacheSize(t *testing.T) {
	cfg := config.New(config.WithDirections(config.DirectionsConfig{EnableCache: true, CacheSize: 0}))

	_, err := New(context.Background(), cfg,
		WithSource(catalog.FileSource{Path: "missing.xlsx"}),
		WithStore(&memoryStore{}),
	)
	assert.Error(t, err)
}
