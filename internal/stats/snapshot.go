package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

// HeroRecord is a player's line for one hero in one game mode.
type HeroRecord struct {
	MMR         float64 `json:"mmr"`
	WinRate     float64 `json:"win_rate"`
	GamesPlayed int     `json:"games_played"`
}

// MatchupRecord sides are optional; an absent side reads as neutral.
type MatchupRecord struct {
	Ally  *float64 `json:"ally"`
	Enemy *float64 `json:"enemy"`
}

func orNeutral(v *float64) float64 {
	if v == nil {
		return engine.NeutralWinRate
	}
	return *v
}

// RoleList accepts either a single role string or a list of roles.
type RoleList []string

func (r *RoleList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*r = nil
		} else {
			*r = RoleList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("role list: %w", err)
	}
	*r = many
	return nil
}

// Snapshot is an offline dump of everything a draft reads from the stats
// source.
type Snapshot struct {
	// Heroes maps hero name to its provider roles.
	Heroes map[string]RoleList `json:"heroes"`
	// Players maps battle tag -> game mode -> hero -> record.
	Players map[string]map[string]map[string]HeroRecord `json:"players"`
	// Maps maps game mode -> map name -> hero -> win rate.
	Maps map[string]map[string]map[string]float64 `json:"maps"`
	// Matchups maps hero -> other hero -> win rates with and against.
	Matchups map[string]map[string]MatchupRecord `json:"matchups"`
}

func LoadSnapshot(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrProviderUnavailable, path, err)
	}
	return &s, nil
}

// SnapshotProvider serves a Snapshot. Lookups of unknown keys return empty
// results.
type SnapshotProvider struct {
	snap *Snapshot
}

func NewSnapshotProvider(s *Snapshot) *SnapshotProvider {
	if s == nil {
		s = &Snapshot{}
	}
	return &SnapshotProvider{snap: s}
}

func (p *SnapshotProvider) PlayerHeroStats(ctx context.Context, tag, mode string) (map[string]engine.HeroStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]engine.HeroStat{}
	for hero, rec := range p.snap.Players[tag][mode] {
		out[hero] = engine.HeroStat{Rating: rec.MMR, GamesPlayed: rec.GamesPlayed}
	}
	return out, nil
}

func (p *SnapshotProvider) MapWinRates(ctx context.Context, mapName, mode string) (map[string]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for hero, wr := range p.snap.Maps[mode][mapName] {
		out[hero] = wr
	}
	return out, nil
}

func (p *SnapshotProvider) Matchups(ctx context.Context, hero string) (map[string]engine.Matchup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := map[string]engine.Matchup{}
	for other, rec := range p.snap.Matchups[hero] {
		out[other] = engine.Matchup{AsAlly: orNeutral(rec.Ally), AsEnemy: orNeutral(rec.Enemy)}
	}
	return out, nil
}

func (p *SnapshotProvider) HeroRoles(ctx context.Context) (map[string][]engine.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string][]engine.Role, len(p.snap.Heroes))
	for hero, roles := range p.snap.Heroes {
		for _, r := range roles {
			out[hero] = append(out[hero], engine.ParseRole(r))
		}
		if out[hero] == nil {
			out[hero] = []engine.Role{}
		}
	}
	return out, nil
}
