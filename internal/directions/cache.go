package directions

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
)

type clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type cacheEntry struct {
	Route     *Route
	ExpiresAt time.Time
}

// CachedProvider keeps recent routes in an LRU cache so repeated lookups
// for the same trip do not hit the provider again until they expire.
type CachedProvider struct {
	next    Provider
	lru     *lru.Cache[string, *cacheEntry]
	ttl     time.Duration
	clock   clock
	observe func(hit bool)
	mu      sync.Mutex
}

var _ Provider = (*CachedProvider)(nil)

func NewCachedProvider(next Provider, size int, ttl time.Duration, observe func(hit bool)) (*CachedProvider, error) {
	cache, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating directions cache: %w", err)
	}
	return &CachedProvider{
		next:    next,
		lru:     cache,
		ttl:     ttl,
		clock:   systemClock{},
		observe: observe,
	}, nil
}

func cacheKey(origin, destination string) string {
	return strings.TrimSpace(origin) + "\x00" + strings.TrimSpace(destination)
}

func (c *CachedProvider) Route(ctx context.Context, origin, destination string) (*Route, error) {
	key := cacheKey(origin, destination)
	if route, ok := c.get(key); ok {
		c.record(true)
		log.Debug().Str("origin", origin).Str("destination", destination).Msg("Cache HIT for directions")
		return route, nil
	}
	c.record(false)

	route, err := c.next.Route(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.lru.Add(key, &cacheEntry{
		Route:     route,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
	c.mu.Unlock()
	return route, nil
}

func (c *CachedProvider) get(key string) (*Route, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(entry.ExpiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return entry.Route, true
}

func (c *CachedProvider) record(hit bool) {
	if c.observe != nil {
		c.observe(hit)
	}
}

// Clear drops every cached route.
func (c *CachedProvider) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}
