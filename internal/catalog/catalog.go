// Package catalog holds the in-memory bar dataset and answers
// distance-ranked queries against it.
package catalog

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/boirefacile/backend-go/internal/geo"
	"github.com/boirefacile/backend-go/internal/models"
)

// DefaultLimit is the number of bars returned by a nearest query when the
// caller does not ask for a specific count.
const DefaultLimit = 3

// Catalog is immutable once built and safe for concurrent readers.
type Catalog struct {
	bars   []models.Bar
	onSkip func(n int)
}

type Option func(*Catalog)

// WithSkipObserver registers fn to be told how many bars a nearest query
// left out because their distance could not be computed.
func WithSkipObserver(fn func(n int)) Option {
	return func(c *Catalog) {
		c.onSkip = fn
	}
}

var _ models.BarFinder = (*Catalog)(nil)

// New builds a catalog from bars in the given order.
func New(bars []models.Bar, opts ...Option) *Catalog {
	c := &Catalog{bars: make([]models.Bar, len(bars))}
	copy(c.bars, bars)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads and parses the dataset from src. It never fails: when the
// source cannot be read or parsed the returned catalog is empty and the
// cause is logged.
func Load(ctx context.Context, src Source, opts ...Option) *Catalog {
	bars, err := load(ctx, src)
	if err != nil {
		var unavailable *DatasetUnavailableError
		if !errors.As(err, &unavailable) {
			unavailable = NewDatasetUnavailableError(src.Name(), err)
		}
		log.Warn().Err(unavailable).Str("source", src.Name()).Msg("Bar dataset unavailable, serving an empty catalog")
		return New(nil, opts...)
	}
	log.Info().Str("source", src.Name()).Int("bar_count", len(bars)).Msg("Bar dataset loaded")
	return New(bars, opts...)
}

func load(ctx context.Context, src Source) ([]models.Bar, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, NewDatasetUnavailableError(src.Name(), err)
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("source", src.Name()).Msg("Error closing bar dataset")
		}
	}()

	bars, err := Parse(rc, FormatFor(src.Name()))
	if err != nil {
		return nil, NewDatasetUnavailableError(src.Name(), err)
	}
	return bars, nil
}

// Len returns the number of bars in the catalog.
func (c *Catalog) Len() int {
	return len(c.bars)
}

// AllBars returns every bar in load order. The slice is a copy.
func (c *Catalog) AllBars() []models.Bar {
	out := make([]models.Bar, len(c.bars))
	copy(out, c.bars)
	return out
}

// NearestBars ranks every bar by distance from point and returns the first
// limit of them. Bars whose distance cannot be computed are left out. Bars
// at exactly the same distance keep their load order.
func (c *Catalog) NearestBars(point models.GeoPoint, limit int) []models.RankedBar {
	if limit <= 0 || len(c.bars) == 0 {
		return []models.RankedBar{}
	}

	ranked := make([]models.RankedBar, 0, len(c.bars))
	skipped := 0
	for _, bar := range c.bars {
		d, ok := score(point, bar)
		if !ok {
			skipped++
			log.Debug().Str("bar", bar.Name).Msg("Skipping bar without a usable location")
			continue
		}
		ranked = append(ranked, models.RankedBar{Bar: bar, Distance: d})
	}
	if skipped > 0 && c.onSkip != nil {
		c.onSkip(skipped)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	// Rounded only after ordering is final.
	for i := range ranked {
		ranked[i].DistanceMeters = int64(math.Round(ranked[i].Distance))
	}
	return ranked
}

func score(point models.GeoPoint, bar models.Bar) (float64, bool) {
	if !bar.HasLocation() {
		return 0, false
	}
	d := geo.Distance(point, models.GeoPoint{
		Latitude:  float64(bar.Latitude),
		Longitude: float64(bar.Longitude),
	})
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0, false
	}
	return d, true
}
