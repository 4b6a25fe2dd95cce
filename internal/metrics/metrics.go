package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Requests        *prometheus.CounterVec   // route, code
	RequestDuration *prometheus.HistogramVec // route

	CatalogBars    prometheus.Gauge
	NearestSkipped prometheus.Counter

	DirectionsCache *prometheus.CounterVec // result label: hit|miss

	ParticipantsSaved prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barcrawl_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "barcrawl_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}, []string{"route"}),
		CatalogBars: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "barcrawl_catalog_bars",
			Help: "Number of bars loaded in the catalog.",
		}),
		NearestSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcrawl_nearest_skipped_total",
			Help: "Bars left out of nearest queries because no distance could be computed.",
		}),
		DirectionsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barcrawl_directions_cache_total",
			Help: "Directions cache lookups by result.",
		}, []string{"result"}),
		ParticipantsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "barcrawl_participants_saved_total",
			Help: "Participants written by save requests.",
		}),
	}

	reg.MustRegister(
		c.Requests, c.RequestDuration,
		c.CatalogBars, c.NearestSkipped,
		c.DirectionsCache, c.ParticipantsSaved,
	)

	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

func (c *Collector) ObserveRequest(route string, code int, d time.Duration) {
	c.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (c *Collector) SetCatalogBars(n int) { c.CatalogBars.Set(float64(n)) }

func (c *Collector) AddNearestSkipped(n int) { c.NearestSkipped.Add(float64(n)) }

func (c *Collector) ObserveDirectionsCache(hit bool) {
	if hit {
		c.DirectionsCache.WithLabelValues("hit").Inc()
		return
	}
	c.DirectionsCache.WithLabelValues("miss").Inc()
}

func (c *Collector) AddParticipantsSaved(n int) { c.ParticipantsSaved.Add(float64(n)) }
