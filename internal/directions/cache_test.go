package directions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock implements a mock time source for testing
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Route(_ context.Context, origin, destination string) (*Route, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &Route{Steps: []string{origin + " -> " + destination}, Duration: "10 minutes"}, nil
}

func newTestCache(t *testing.T, next Provider, size int, ttl time.Duration) (*CachedProvider, *fakeClock, *[]bool) {
	t.Helper()
	var observed []bool
	c, err := NewCachedProvider(next, size, ttl, func(hit bool) { observed = append(observed, hit) })
	require.NoError(t, err)
	clk := &fakeClock{now: time.Date(2024, 6, 21, 20, 0, 0, 0, time.UTC)}
	c.clock = clk
	return c, clk, &observed
}

func TestCachedProvider_HitAndExpiry(t *testing.T) {
	next := &countingProvider{}
	c, clk, observed := newTestCache(t, next, 10, 10*time.Minute)
	ctx := context.Background()

	first, err := c.Route(ctx, "Paris", "Lyon")
	require.NoError(t, err)
	second, err := c.Route(ctx, " Paris ", "Lyon")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Same(t, first, second)

	clk.Advance(11 * time.Minute)
	_, err = c.Route(ctx, "Paris", "Lyon")
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Equal(t, []bool{false, true, false}, *observed)
}

func TestCachedProvider_DirectionMatters(t *testing.T) {
	next := &countingProvider{}
	c, _, _ := newTestCache(t, next, 10, time.Hour)

	_, _ = c.Route(context.Background(), "Paris", "Lyon")
	_, _ = c.Route(context.Background(), "Lyon", "Paris")

	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_ErrorsAreNotCached(t *testing.T) {
	next := &countingProvider{err: NewAPIError("OVER_QUERY_LIMIT", nil)}
	c, _, _ := newTestCache(t, next, 10, time.Hour)

	for i := 0; i < 2; i++ {
		_, err := c.Route(context.Background(), "Paris", "Lyon")
		var apiErr *APIError
		assert.True(t, errors.As(err, &apiErr))
	}
	assert.Equal(t, 2, next.calls)
}

func TestCachedProvider_Eviction(t *testing.T) {
	next := &countingProvider{}
	c, _, _ := newTestCache(t, next, 1, time.Hour)
	ctx := context.Background()

	_, _ = c.Route(ctx, "A", "B")
	_, _ = c.Route(ctx, "C", "D")
	_, _ = c.Route(ctx, "A", "B")

	assert.Equal(t, 3, next.calls)
}

func TestCachedProvider_Clear(t *testing.T) {
	next := &countingProvider{}
	c, _, _ := newTestCache(t, next, 10, time.Hour)

	_, _ = c.Route(context.Background(), "A", "B")
	c.Clear()
	_, _ = c.Route(context.Background(), "A", "B")

	assert.Equal(t, 2, next.calls)
}

func TestNewCachedProvider_InvalidSize(t *testing.T) {
	_, err := NewCachedProvider(&countingProvider{}, 0, time.Minute, nil)
	assert.Error(t, err)
}
