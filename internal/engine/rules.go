package engine

import (
	"fmt"
	"math"
)

type Phase string

const (
	PhaseEarly  Phase = "early"
	PhaseMiddle Phase = "middle"
	PhaseLate   Phase = "late"
)

func (p Phase) rank() int {
	switch p {
	case PhaseMiddle:
		return 1
	case PhaseLate:
		return 2
	default:
		return 0
	}
}

// Weights scale the scoring terms. Drop only applies to bans.
type Weights struct {
	Map     float64
	Synergy float64
	Counter float64
	Drop    float64
}

// Rules is the configuration snapshot a draft runs under. Every heuristic
// constant lives here so balance can be tuned without code changes.
type Rules struct {
	Forbidden     []string
	RequiredRoles []Role
	RoleLimits    map[Role]int
	RolePhase     map[Role]Phase
	HeroPhase     map[string]Phase
	Partners      map[string]string
	RoleOverrides map[string][]Role
	PairSlots     []int

	MiddleFrom int
	LateFrom   int

	PickWeights   Weights
	BanWeights    Weights
	DefaultRating float64
	PoolFloor     float64
	PoolBoost     float64
	Suggestions   int
	Seed          uint64
}

// NeutralWinRate is assumed for any map or matchup without data.
const NeutralWinRate = 50.0

func DefaultRules() Rules {
	return Rules{
		RequiredRoles: []Role{RoleTank, RoleHealer, RoleOfflaner},
		RoleLimits:    map[Role]int{RoleTank: 1, RoleHealer: 1},
		RolePhase:     map[Role]Phase{RoleOfflaner: PhaseLate},
		HeroPhase: map[string]Phase{
			"Alexstrasza":      PhaseLate,
			"Deathwing":        PhaseLate,
			"Genji":            PhaseMiddle,
			"Kel'Thuzad":       PhaseMiddle,
			"Kerrigan":         PhaseMiddle,
			"Kharazim":         PhaseMiddle,
			"Mal'Ganis":        PhaseMiddle,
			"Medivh":           PhaseMiddle,
			"Mephisto":         PhaseMiddle,
			"Sgt. Hammer":      PhaseLate,
			"The Butcher":      PhaseLate,
			"The Lost Vikings": PhaseLate,
			"Uther":            PhaseMiddle,
			"Zeratul":          PhaseLate,
		},
		Partners: map[string]string{"Cho": "Gall", "Gall": "Cho"},
		RoleOverrides: map[string][]Role{
			"Artanis":          {RoleMeleeAssassin},
			"Deathwing":        {RoleRangedAssassin},
			"Fenix":            {RoleOfflaner},
			"Illidan":          {RoleOfflaner},
			"Imperius":         {RoleTank, RoleMeleeAssassin},
			"Kharazim":         {RoleMeleeAssassin},
			"Maiev":            {RoleOfflaner},
			"Qhira":            {RoleOfflaner},
			"Samuro":           {RoleOfflaner},
			"The Lost Vikings": {RoleOfflaner},
			"Thrall":           {RoleMeleeAssassin},
			"Uther":            {RoleTank, RoleHealer},
			"Varian":           {RoleTank, RoleMeleeAssassin},
			"Zeratul":          {RoleOfflaner},
		},
		PairSlots:     []int{6, 8, 12, 14},
		MiddleFrom:    8,
		LateFrom:      14,
		PickWeights:   Weights{Map: 50, Synergy: 25, Counter: 25},
		BanWeights:    Weights{Map: 10, Synergy: 1, Counter: 1, Drop: 1},
		DefaultRating: 2000,
		PoolFloor:     2700,
		PoolBoost:     100,
		Suggestions:   5,
		Seed:          1,
	}
}

// Validate checks rules for internal consistency before a draft starts.
func (r Rules) Validate() error {
	if r.MiddleFrom > r.LateFrom {
		return fmt.Errorf("%w: middle phase starts at %d after late phase %d", ErrInvalidRules, r.MiddleFrom, r.LateFrom)
	}
	for role, limit := range r.RoleLimits {
		if limit < 0 {
			return fmt.Errorf("%w: negative limit %d for role %s", ErrInvalidRules, limit, role)
		}
	}
	for hero, partner := range r.Partners {
		if hero == partner {
			return fmt.Errorf("%w: hero %s partnered with itself", ErrInvalidRules, hero)
		}
		if r.Partners[partner] != hero {
			return fmt.Errorf("%w: partner of %s is %s but %s does not point back", ErrInvalidRules, hero, partner, partner)
		}
	}
	for _, n := range r.PairSlots {
		if !pairable(n) {
			return fmt.Errorf("%w: slot %d cannot hold a paired pick", ErrInvalidRules, n)
		}
	}
	for _, w := range []Weights{r.PickWeights, r.BanWeights} {
		for _, v := range []float64{w.Map, w.Synergy, w.Counter, w.Drop} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite weight", ErrInvalidRules)
			}
		}
	}
	if r.Suggestions < 1 {
		return fmt.Errorf("%w: suggestion count must be positive", ErrInvalidRules)
	}
	return nil
}

func (r Rules) isPairSlot(number int) bool {
	for _, n := range r.PairSlots {
		if n == number {
			return true
		}
	}
	return false
}
