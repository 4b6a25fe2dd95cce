package api

import (
	"net/http"
)

type RouterOptions struct {
	CORSOrigin string
	Metrics    RequestObserver
	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler
}

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}

	routes := []struct {
		pattern string
		route   string
		handler http.HandlerFunc
	}{
		{"GET /{$}", "/", h.root},
		{"GET /healthz", "/healthz", h.health},
		{"POST /closest_bars", "/closest_bars", h.closestBars},
		{"GET /all_bars", "/all_bars", h.allBars},
		{"POST /directions", "/directions", h.route},
		{"POST /save_participants", "/save_participants", h.saveParticipants},
		{"GET /get_participants", "/get_participants", h.getParticipants},
		{"GET /debug-db", "/debug-db", h.debugDB},
	}

	mux := http.NewServeMux()
	for _, rt := range routes {
		mux.Handle(rt.pattern, withMetrics(opts.Metrics, rt.route, rt.handler))
	}
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	return WithRequestID(WithLogging(WithCORS(opts.CORSOrigin, mux)))
}
