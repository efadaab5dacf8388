package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

// RulesFile is the on-disk shape of the draft rules. Any key left out keeps
// its default; a table that is present replaces the default table whole.
type RulesFile struct {
	ForbiddenHeroes []string `toml:"forbidden_heroes"`
	RequiredRoles   []string `toml:"required_roles"`
	PairSlots       []int    `toml:"pair_slots"`
	Suggestions     *int     `toml:"suggestions"`
	Seed            *uint64  `toml:"seed"`

	Phases           PhasesSection       `toml:"phases"`
	RoleLimits       map[string]int      `toml:"role_limits"`
	RoleRestrictions map[string]string   `toml:"role_restrictions"`
	HeroRestrictions map[string]string   `toml:"hero_restrictions"`
	Partners         map[string]string   `toml:"partners"`
	AdditionalRoles  map[string][]string `toml:"additional_roles"`

	Pick PickSection `toml:"pick"`
	Ban  BanSection  `toml:"ban"`
}

type PhasesSection struct {
	MiddleFrom *int `toml:"middle_from"`
	LateFrom   *int `toml:"late_from"`
}

type PickSection struct {
	Map           *float64 `toml:"map"`
	Synergy       *float64 `toml:"synergy"`
	Counter       *float64 `toml:"counter"`
	PoolFloor     *float64 `toml:"pool_floor"`
	PoolBoost     *float64 `toml:"pool_boost"`
	DefaultRating *float64 `toml:"default_rating"`
}

type BanSection struct {
	Map     *float64 `toml:"map"`
	Synergy *float64 `toml:"synergy"`
	Counter *float64 `toml:"counter"`
	Drop    *float64 `toml:"drop"`
}

// LoadRules reads a TOML rules file. An empty path yields the defaults.
func LoadRules(path string) (engine.Rules, error) {
	if path == "" {
		return engine.DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (engine.Rules, error) {
	var f RulesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return engine.Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	r, err := f.ToEngine()
	if err != nil {
		return engine.Rules{}, err
	}
	if err := r.Validate(); err != nil {
		return engine.Rules{}, err
	}
	return r, nil
}

// ToEngine lays the file over engine.DefaultRules.
func (f RulesFile) ToEngine() (engine.Rules, error) {
	r := engine.DefaultRules()

	if f.ForbiddenHeroes != nil {
		r.Forbidden = f.ForbiddenHeroes
	}
	if f.RequiredRoles != nil {
		r.RequiredRoles = nil
		for _, s := range f.RequiredRoles {
			r.RequiredRoles = append(r.RequiredRoles, engine.ParseRole(s).Canonical())
		}
	}
	if f.PairSlots != nil {
		r.PairSlots = f.PairSlots
	}
	setInt(&r.Suggestions, f.Suggestions)
	if f.Seed != nil {
		r.Seed = *f.Seed
	}
	setInt(&r.MiddleFrom, f.Phases.MiddleFrom)
	setInt(&r.LateFrom, f.Phases.LateFrom)

	if f.RoleLimits != nil {
		r.RoleLimits = map[engine.Role]int{}
		for k, v := range f.RoleLimits {
			r.RoleLimits[engine.ParseRole(k).Canonical()] = v
		}
	}
	if f.RoleRestrictions != nil {
		r.RolePhase = map[engine.Role]engine.Phase{}
		for k, v := range f.RoleRestrictions {
			p, err := parsePhase(v)
			if err != nil {
				return engine.Rules{}, fmt.Errorf("role restriction %s: %w", k, err)
			}
			r.RolePhase[engine.ParseRole(k).Canonical()] = p
		}
	}
	if f.HeroRestrictions != nil {
		r.HeroPhase = map[string]engine.Phase{}
		for k, v := range f.HeroRestrictions {
			p, err := parsePhase(v)
			if err != nil {
				return engine.Rules{}, fmt.Errorf("hero restriction %s: %w", k, err)
			}
			r.HeroPhase[k] = p
		}
	}
	if f.Partners != nil {
		r.Partners = f.Partners
	}
	if f.AdditionalRoles != nil {
		r.RoleOverrides = map[string][]engine.Role{}
		for hero, roles := range f.AdditionalRoles {
			for _, s := range roles {
				r.RoleOverrides[hero] = append(r.RoleOverrides[hero], engine.ParseRole(s))
			}
		}
	}

	setFloat(&r.PickWeights.Map, f.Pick.Map)
	setFloat(&r.PickWeights.Synergy, f.Pick.Synergy)
	setFloat(&r.PickWeights.Counter, f.Pick.Counter)
	setFloat(&r.PoolFloor, f.Pick.PoolFloor)
	setFloat(&r.PoolBoost, f.Pick.PoolBoost)
	setFloat(&r.DefaultRating, f.Pick.DefaultRating)

	setFloat(&r.BanWeights.Map, f.Ban.Map)
	setFloat(&r.BanWeights.Synergy, f.Ban.Synergy)
	setFloat(&r.BanWeights.Counter, f.Ban.Counter)
	setFloat(&r.BanWeights.Drop, f.Ban.Drop)

	return r, nil
}

func parsePhase(s string) (engine.Phase, error) {
	switch p := engine.Phase(strings.ToLower(strings.TrimSpace(s))); p {
	case engine.PhaseEarly, engine.PhaseMiddle, engine.PhaseLate:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown phase %q", engine.ErrInvalidRules, s)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
