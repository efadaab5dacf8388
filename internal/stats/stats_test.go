package stats

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

type mockProvider struct {
	PlayerHeroStatsFunc func(ctx context.Context, tag, mode string) (map[string]engine.HeroStat, error)
	MapWinRatesFunc     func(ctx context.Context, mapName, mode string) (map[string]float64, error)
	MatchupsFunc        func(ctx context.Context, hero string) (map[string]engine.Matchup, error)
	HeroRolesFunc       func(ctx context.Context) (map[string][]engine.Role, error)
}

func (m *mockProvider) PlayerHeroStats(ctx context.Context, tag, mode string) (map[string]engine.HeroStat, error) {
	if m.PlayerHeroStatsFunc != nil {
		return m.PlayerHeroStatsFunc(ctx, tag, mode)
	}
	return map[string]engine.HeroStat{}, nil
}

func (m *mockProvider) MapWinRates(ctx context.Context, mapName, mode string) (map[string]float64, error) {
	if m.MapWinRatesFunc != nil {
		return m.MapWinRatesFunc(ctx, mapName, mode)
	}
	return map[string]float64{}, nil
}

func (m *mockProvider) Matchups(ctx context.Context, hero string) (map[string]engine.Matchup, error) {
	if m.MatchupsFunc != nil {
		return m.MatchupsFunc(ctx, hero)
	}
	return map[string]engine.Matchup{}, nil
}

func (m *mockProvider) HeroRoles(ctx context.Context) (map[string][]engine.Role, error) {
	if m.HeroRolesFunc != nil {
		return m.HeroRolesFunc(ctx)
	}
	return map[string][]engine.Role{}, nil
}

func TestRoleListUnmarshal(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    RoleList
		wantErr bool
	}{
		{"single string", `"Tank"`, RoleList{"Tank"}, false},
		{"list", `["Bruiser","Melee Assassin"]`, RoleList{"Bruiser", "Melee Assassin"}, false},
		{"empty string", `""`, nil, false},
		{"empty list", `[]`, RoleList{}, false},
		{"number", `3`, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got RoleList
			err := json.Unmarshal([]byte(tc.in), &got)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSnapshotProvider(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.json")
	require.NoError(t, err)
	p := NewSnapshotProvider(snap)
	ctx := context.Background()

	heroes, err := p.PlayerHeroStats(ctx, "Alfie#1948", "Storm League")
	require.NoError(t, err)
	assert.Equal(t, map[string]engine.HeroStat{
		"Muradin": {Rating: 2810.5, GamesPlayed: 31},
		"Valla":   {Rating: 2604, GamesPlayed: 12},
	}, heroes)

	heroes, err = p.PlayerHeroStats(ctx, "Nobody#0000", "Storm League")
	require.NoError(t, err)
	assert.Empty(t, heroes)

	rates, err := p.MapWinRates(ctx, "Cursed Hollow", "Storm League")
	require.NoError(t, err)
	assert.Equal(t, 52.4, rates["Valla"])

	rates, err = p.MapWinRates(ctx, "Cursed Hollow", "ARAM")
	require.NoError(t, err)
	assert.Empty(t, rates)

	m, err := p.Matchups(ctx, "Valla")
	require.NoError(t, err)
	assert.Equal(t, engine.Matchup{AsAlly: 53.1, AsEnemy: 47.2}, m["Uther"])
	// A recorded zero is kept and the missing side reads as neutral.
	assert.Equal(t, engine.Matchup{AsAlly: 0, AsEnemy: 50}, m["Murky"])

	roles, err := p.HeroRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []engine.Role{engine.RoleTank}, roles["Muradin"])
	assert.Equal(t, []engine.Role{engine.RoleBruiser}, roles["Sonya"])
	assert.Equal(t, []engine.Role{engine.RoleHealer, engine.RoleSupport}, roles["Uther"])
	assert.Empty(t, roles["Murky"])
}

func TestLoadSnapshotFailures(t *testing.T) {
	_, err := LoadSnapshot("testdata/missing.json")
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	_, err = LoadSnapshot("stats_test.go")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestBuildSetup(t *testing.T) {
	snap, err := LoadSnapshot("testdata/snapshot.json")
	require.NoError(t, err)

	req := SetupRequest{
		Map:    "Cursed Hollow",
		Mode:   "Storm League",
		First:  TeamRequest{Name: "Fowl", Players: []string{"Alfie#1948", "Ghost#1"}},
		Second: TeamRequest{Name: "Bell", Players: []string{"Silverbell#11333"}},
	}
	setup, err := BuildSetup(context.Background(), NewSnapshotProvider(snap), req)
	require.NoError(t, err)

	assert.Equal(t, "Fowl", setup.First.Name)
	require.Len(t, setup.First.Players, 2)
	assert.Equal(t, "Alfie#1948", setup.First.Players[0].Tag)
	assert.Equal(t, "Ghost#1", setup.First.Players[1].Tag)
	assert.Empty(t, setup.First.Players[1].Heroes)
	assert.Equal(t, 2950.0, setup.Second.Players[0].Heroes["Uther"].Rating)
	assert.Equal(t, 49.8, setup.MapWinRates["Muradin"])
	assert.Contains(t, setup.Matchups, "Valla")
	assert.Contains(t, setup.Matchups, "Sonya")
	assert.NotContains(t, setup.Matchups, "Muradin")
	assert.Len(t, setup.HeroRoles, 5)
}

func TestBuildSetupFailsOnProviderError(t *testing.T) {
	down := errors.New("connection refused")
	cases := []struct {
		name string
		p    *mockProvider
	}{
		{"player", &mockProvider{PlayerHeroStatsFunc: func(context.Context, string, string) (map[string]engine.HeroStat, error) {
			return nil, down
		}}},
		{"map", &mockProvider{MapWinRatesFunc: func(context.Context, string, string) (map[string]float64, error) {
			return nil, down
		}}},
		{"matchups", &mockProvider{
			HeroRolesFunc: func(context.Context) (map[string][]engine.Role, error) {
				return map[string][]engine.Role{"Valla": {engine.RoleRangedAssassin}}, nil
			},
			MatchupsFunc: func(context.Context, string) (map[string]engine.Matchup, error) { return nil, down },
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := SetupRequest{First: TeamRequest{Name: "A", Players: []string{"x"}}, Second: TeamRequest{Name: "B"}}
			_, err := BuildSetup(context.Background(), tc.p, req)
			assert.ErrorIs(t, err, down)
		})
	}
}

func TestCachedProviderSharesCalls(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	next := &mockProvider{PlayerHeroStatsFunc: func(_ context.Context, tag, _ string) (map[string]engine.HeroStat, error) {
		calls.Add(1)
		<-release
		return map[string]engine.HeroStat{"Valla": {Rating: 3000, GamesPlayed: 9}}, nil
	}}
	c := NewCachedProvider(next)

	var wg sync.WaitGroup
	results := make([]map[string]engine.HeroStat, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
			assert.NoError(t, err)
			results[i] = res
		}()
	}
	close(release)
	wg.Wait()

	// Late callers that missed the in-flight call are served from the cache.
	_, err := c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
	require.NoError(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(8))
	before := calls.Load()
	_, err = c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())

	for _, r := range results {
		assert.Equal(t, 3000.0, r["Valla"].Rating)
	}
	// Callers get their own copy.
	results[0]["Valla"] = engine.HeroStat{}
	again, _ := c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
	assert.Equal(t, 3000.0, again["Valla"].Rating)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	var calls int
	next := &mockProvider{MatchupsFunc: func(context.Context, string) (map[string]engine.Matchup, error) {
		calls++
		if calls == 1 {
			return nil, ErrProviderUnavailable
		}
		return map[string]engine.Matchup{"Uther": {AsAlly: 55}}, nil
	}}
	c := NewCachedProvider(next)

	_, err := c.Matchups(context.Background(), "Valla")
	require.ErrorIs(t, err, ErrProviderUnavailable)
	m, err := c.Matchups(context.Background(), "Valla")
	require.NoError(t, err)
	assert.Equal(t, 55.0, m["Uther"].AsAlly)

	_, _ = c.Matchups(context.Background(), "Valla")
	assert.Equal(t, 2, calls)

	c.Forget()
	_, _ = c.Matchups(context.Background(), "Valla")
	assert.Equal(t, 3, calls)
}

func TestCachedProviderExpires(t *testing.T) {
	var calls atomic.Int32
	next := &mockProvider{PlayerHeroStatsFunc: func(context.Context, string, string) (map[string]engine.HeroStat, error) {
		calls.Add(1)
		return map[string]engine.HeroStat{}, nil
	}}
	c := NewCachedProvider(next)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.ExpireEvery(ctx, 10*time.Millisecond)
		close(done)
	}()

	_, err := c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, _ = c.PlayerHeroStats(context.Background(), "a#1", "Storm League")
		return calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	<-done

	// A zero interval never starts expiring.
	c.ExpireEvery(context.Background(), 0)
}
