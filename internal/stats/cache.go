package stats

import (
	"context"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

// CachedProvider memoizes player and matchup lookups of another Provider.
// Concurrent misses for the same key share one upstream call. Failed calls
// are not cached.
type CachedProvider struct {
	next  Provider
	group singleflight.Group

	mu       sync.RWMutex
	players  map[string]map[string]engine.HeroStat
	matchups map[string]map[string]engine.Matchup
}

func NewCachedProvider(next Provider) *CachedProvider {
	return &CachedProvider{
		next:     next,
		players:  map[string]map[string]engine.HeroStat{},
		matchups: map[string]map[string]engine.Matchup{},
	}
}

func (c *CachedProvider) PlayerHeroStats(ctx context.Context, tag, mode string) (map[string]engine.HeroStat, error) {
	key := "player|" + mode + "|" + tag
	c.mu.RLock()
	hit, ok := c.players[key]
	c.mu.RUnlock()
	if ok {
		return maps.Clone(hit), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.next.PlayerHeroStats(ctx, tag, mode)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.players[key] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(map[string]engine.HeroStat)), nil
}

func (c *CachedProvider) Matchups(ctx context.Context, hero string) (map[string]engine.Matchup, error) {
	key := "matchup|" + hero
	c.mu.RLock()
	hit, ok := c.matchups[hero]
	c.mu.RUnlock()
	if ok {
		return maps.Clone(hit), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		res, err := c.next.Matchups(ctx, hero)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.matchups[hero] = res
		c.mu.Unlock()
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return maps.Clone(v.(map[string]engine.Matchup)), nil
}

func (c *CachedProvider) MapWinRates(ctx context.Context, mapName, mode string) (map[string]float64, error) {
	return c.next.MapWinRates(ctx, mapName, mode)
}

func (c *CachedProvider) HeroRoles(ctx context.Context) (map[string][]engine.Role, error) {
	return c.next.HeroRoles(ctx)
}

// Forget drops every cached entry.
func (c *CachedProvider) Forget() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.players)
	clear(c.matchups)
}

// ExpireEvery forgets the cache on every tick until ctx is done, so stats
// refreshed upstream reach new drafts. A non-positive interval disables it.
func (c *CachedProvider) ExpireEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Forget()
		}
	}
}
