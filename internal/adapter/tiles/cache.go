package tiles

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// Prober checks reachability of one tile.
type Prober interface {
	Probe(ctx context.Context, src Source, lat, lon float64, zoom int) error
}

// CachedProber wraps a Prober with an in-memory LRU of tiles already seen
// answering, so repeated screenshots of one area probe once.
type CachedProber struct {
	inner Prober
	cache *lru.Cache[string, struct{}]
}

// NewCachedProber creates a cache decorator around a prober. maxEntries
// below one is raised to one.
func NewCachedProber(inner Prober, maxEntries int) *CachedProber {
	cache, err := lru.New[string, struct{}](max(maxEntries, 1))
	if err != nil {
		panic(fmt.Sprintf("tiles: lru cache: %v", err))
	}
	return &CachedProber{
		inner: inner,
		cache: cache,
	}
}

func (c *CachedProber) Probe(ctx context.Context, src Source, lat, lon float64, zoom int) error {
	tile := maptile.At(orb.Point{lon, lat}, maptile.Zoom(clampZoom(zoom, src.MaxZoom)))
	key := fmt.Sprintf("%s|%d/%d/%d", src.URL, tile.Z, tile.X, tile.Y)
	if _, ok := c.cache.Get(key); ok {
		return nil
	}
	// Failures are not cached so an outage can recover.
	if err := c.inner.Probe(ctx, src, lat, lon, zoom); err != nil {
		return err
	}
	c.cache.Add(key, struct{}{})
	return nil
}
