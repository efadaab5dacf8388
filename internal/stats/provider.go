package stats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

var ErrProviderUnavailable = errors.New("stats provider unavailable")

// Provider is the read-only stats source a draft is built from. Missing keys
// come back as empty results; errors are reserved for an unreachable source.
type Provider interface {
	PlayerHeroStats(ctx context.Context, tag, mode string) (map[string]engine.HeroStat, error)
	MapWinRates(ctx context.Context, mapName, mode string) (map[string]float64, error)
	Matchups(ctx context.Context, hero string) (map[string]engine.Matchup, error)
	HeroRoles(ctx context.Context) (map[string][]engine.Role, error)
}

type TeamRequest struct {
	Name    string
	Players []string
}

// SetupRequest names everything needed to fetch one draft's inputs.
type SetupRequest struct {
	Map    string
	Mode   string
	First  TeamRequest
	Second TeamRequest
}

// matchupFetchLimit bounds concurrent per-hero matchup lookups.
const matchupFetchLimit = 8

// BuildSetup fetches every input of a draft concurrently. Any provider error
// fails the whole build, before a draft can start.
func BuildSetup(ctx context.Context, p Provider, req SetupRequest) (engine.Setup, error) {
	setup := engine.Setup{
		Map:    req.Map,
		Mode:   req.Mode,
		First:  engine.TeamSetup{Name: req.First.Name, Players: make([]engine.Player, len(req.First.Players))},
		Second: engine.TeamSetup{Name: req.Second.Name, Players: make([]engine.Player, len(req.Second.Players))},
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, team := range []struct {
		tags []string
		out  []engine.Player
	}{
		{req.First.Players, setup.First.Players},
		{req.Second.Players, setup.Second.Players},
	} {
		for i, tag := range team.tags {
			out := team.out
			g.Go(func() error {
				heroes, err := p.PlayerHeroStats(gctx, tag, req.Mode)
				if err != nil {
					return fmt.Errorf("player %s: %w", tag, err)
				}
				out[i] = engine.Player{Tag: tag, Heroes: heroes}
				return nil
			})
		}
	}

	g.Go(func() error {
		rates, err := p.MapWinRates(gctx, req.Map, req.Mode)
		if err != nil {
			return fmt.Errorf("map %s: %w", req.Map, err)
		}
		setup.MapWinRates = rates
		return nil
	})

	g.Go(func() error {
		roles, err := p.HeroRoles(gctx)
		if err != nil {
			return fmt.Errorf("hero roles: %w", err)
		}
		setup.HeroRoles = roles
		return nil
	})

	if err := g.Wait(); err != nil {
		return engine.Setup{}, err
	}

	matchups, err := fetchMatchups(ctx, p, heroNames(setup))
	if err != nil {
		return engine.Setup{}, err
	}
	setup.Matchups = matchups
	return setup, nil
}

// heroNames collects every hero the draft could touch.
func heroNames(s engine.Setup) []string {
	seen := map[string]bool{}
	var out []string
	add := func(h string) {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	for h := range s.HeroRoles {
		add(h)
	}
	for _, ts := range []engine.TeamSetup{s.First, s.Second} {
		for _, pl := range ts.Players {
			for h := range pl.Heroes {
				add(h)
			}
		}
	}
	return out
}

func fetchMatchups(ctx context.Context, p Provider, heroes []string) (map[string]map[string]engine.Matchup, error) {
	var mu sync.Mutex
	out := make(map[string]map[string]engine.Matchup, len(heroes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(matchupFetchLimit)
	for _, h := range heroes {
		g.Go(func() error {
			m, err := p.Matchups(gctx, h)
			if err != nil {
				return fmt.Errorf("matchups for %s: %w", h, err)
			}
			if len(m) == 0 {
				return nil
			}
			mu.Lock()
			out[h] = m
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
