package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DRAFT_SEED", "42")
	t.Setenv("GAME_MODE", "Quick Match")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("ALLOWED_ORIGINS", "https://draft.example.com, ,http://localhost:3000")
	t.Setenv("STATS_CACHE_TTL", "90s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "Quick Match", cfg.GameMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"https://draft.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 2, cfg.CreateRate)
	assert.Equal(t, 90*time.Second, cfg.StatsCacheTTL)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PORT", "eighty")
	t.Setenv("DRAFT_SEED", "-3")
	t.Setenv("STATS_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, uint64(1), cfg.Seed)
	assert.Equal(t, 10*time.Minute, cfg.StatsCacheTTL)
}

func TestLoadRulesDefaults(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultRules(), r)
}

func TestShippedRulesMatchDefaults(t *testing.T) {
	r, err := LoadRules("../../configs/hero_config.toml")
	require.NoError(t, err)

	want := engine.DefaultRules()
	want.Forbidden = []string{"Cho", "Gall"}
	assert.Equal(t, want, r)
}

func TestLoadRulesOverrides(t *testing.T) {
	r, err := LoadRules("testdata/rules.toml")
	require.NoError(t, err)

	assert.Equal(t, []string{"Murky"}, r.Forbidden)
	assert.Equal(t, 3, r.Suggestions)
	// Role keys are case-insensitive and Bruiser folds into Offlaner.
	assert.Equal(t, map[engine.Role]int{engine.RoleTank: 2, engine.RoleOfflaner: 1}, r.RoleLimits)
	assert.Equal(t, map[engine.Role]engine.Phase{engine.RoleOfflaner: engine.PhaseMiddle}, r.RolePhase)
	assert.Equal(t, 0.0, r.PoolBoost)

	def := engine.DefaultRules()
	assert.Equal(t, def.PoolFloor, r.PoolFloor)
	assert.Equal(t, def.PickWeights, r.PickWeights)
	assert.Equal(t, def.HeroPhase, r.HeroPhase)
}

func TestParseRulesErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown phase", "[role_restrictions]\nTank = \"overtime\"\n"},
		{"one-way partner", "[partners]\nCho = \"Gall\"\n"},
		{"bad pair slot", "pair_slots = [5]\n"},
		{"no suggestions", "suggestions = 0\n"},
		{"phases out of order", "[phases]\nmiddle_from = 15\nlate_from = 10\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRules([]byte(tc.doc))
			assert.ErrorIs(t, err, engine.ErrInvalidRules)
		})
	}

	_, err := LoadRules("testdata/bad_phase.toml")
	assert.ErrorIs(t, err, engine.ErrInvalidRules)

	_, err = ParseRules([]byte("suggestions = ["))
	assert.Error(t, err)

	_, err = LoadRules("testdata/nope.toml")
	assert.Error(t, err)
}
