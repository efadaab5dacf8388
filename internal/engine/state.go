package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

type Side int

const (
	SideFirst Side = iota
	SideSecond
)

func (s Side) Other() Side { return 1 - s }

func (s Side) String() string {
	if s == SideFirst {
		return "first"
	}
	return "second"
}

type Kind string

const (
	KindBan  Kind = "Ban"
	KindPick Kind = "Pick"
)

type Slot struct {
	Kind   Kind
	Number int
}

// HeroStat is one player's record on one hero within the active game mode.
type HeroStat struct {
	Rating      float64
	GamesPlayed int
}

type Player struct {
	Tag    string
	Heroes map[string]HeroStat
}

// Rating returns the player's rating on hero, or def when the player has no
// recorded games on it.
func (p Player) Rating(hero string, def float64) float64 {
	st, ok := p.Heroes[hero]
	if !ok || st.GamesPlayed <= 0 {
		return def
	}
	return st.Rating
}

// Knows reports whether the provider returned any record for hero.
func (p Player) Knows(hero string) bool {
	_, ok := p.Heroes[hero]
	return ok
}

// PoolSize counts heroes played at or above floor.
func (p Player) PoolSize(floor float64) int {
	n := 0
	for _, st := range p.Heroes {
		if st.GamesPlayed > 0 && st.Rating >= floor {
			n++
		}
	}
	return n
}

// Matchup is a recorded pair of win rates. A present record is taken as
// is, so providers fill a missing side with NeutralWinRate.
type Matchup struct {
	AsAlly  float64
	AsEnemy float64
}

type Team struct {
	Name       string
	Players    []Player
	Available  []string
	Picked     map[string]string
	RoleCounts map[Role]int
}

func newTeam(ts TeamSetup) *Team {
	t := &Team{
		Name:       ts.Name,
		Players:    ts.Players,
		Picked:     map[string]string{},
		RoleCounts: map[Role]int{},
	}
	for _, p := range ts.Players {
		t.Available = append(t.Available, p.Tag)
	}
	return t
}

func (t *Team) Player(tag string) (Player, bool) {
	for _, p := range t.Players {
		if p.Tag == tag {
			return p, true
		}
	}
	return Player{}, false
}

func (t *Team) IsAvailable(tag string) bool {
	return slices.Contains(t.Available, tag)
}

// PickedHeroes returns the team's committed heroes, sorted.
func (t *Team) PickedHeroes() []string {
	out := make([]string, 0, len(t.Picked))
	for _, h := range t.Picked {
		out = append(out, h)
	}
	slices.Sort(out)
	return out
}

// MissingRoles lists required roles the team has not filled yet.
func (t *Team) MissingRoles(required []Role) []Role {
	var out []Role
	for _, r := range required {
		if t.RoleCounts[r.Canonical()] == 0 {
			out = append(out, r.Canonical())
		}
	}
	return out
}

type TeamSetup struct {
	Name    string
	Players []Player
}

// Setup is the provider snapshot a draft is built from.
type Setup struct {
	Map         string
	Mode        string
	First       TeamSetup
	Second      TeamSetup
	HeroRoles   map[string][]Role
	MapWinRates map[string]float64
	Matchups    map[string]map[string]Matchup
}

// State is the single mutable aggregate of one draft. It is owned by the
// engine goroutine for the lifetime of the draft and never shared.
type State struct {
	Map        string
	Mode       string
	Teams      [2]*Team
	Heroes     map[string]Hero
	Forbidden  map[string]bool
	Banned     map[string]bool
	Picked     map[string]bool
	Available  map[string]bool
	Transcript []DecisionRecord
	Rules      Rules

	mapWinRates map[string]float64
	matchups    map[string]map[string]Matchup
	rng         *rand.Rand
}

func NewState(setup Setup, rules Rules) (*State, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := validateSetup(setup); err != nil {
		return nil, err
	}

	s := &State{
		Map:         setup.Map,
		Mode:        setup.Mode,
		Teams:       [2]*Team{newTeam(setup.First), newTeam(setup.Second)},
		Heroes:      map[string]Hero{},
		Forbidden:   map[string]bool{},
		Banned:      map[string]bool{},
		Picked:      map[string]bool{},
		Available:   map[string]bool{},
		Rules:       rules,
		mapWinRates: setup.MapWinRates,
		matchups:    setup.Matchups,
		rng:         rand.New(rand.NewPCG(rules.Seed, rules.Seed^0x9e3779b97f4a7c15)),
	}

	// Overrides only refine heroes the provider or a player record knows.
	for name, roles := range setup.HeroRoles {
		s.Heroes[name] = Hero{Name: name, Roles: MergeRoles(roles, rules.RoleOverrides[name])}
	}
	for _, t := range s.Teams {
		for _, p := range t.Players {
			for name := range p.Heroes {
				if _, ok := s.Heroes[name]; !ok {
					s.Heroes[name] = Hero{Name: name, Roles: MergeRoles(nil, rules.RoleOverrides[name])}
				}
			}
		}
	}

	for _, h := range rules.Forbidden {
		s.Forbidden[h] = true
	}
	for name := range s.Heroes {
		if !s.Forbidden[name] {
			s.Available[name] = true
		}
	}
	return s, nil
}

func validateSetup(setup Setup) error {
	roster := picksPerSide()
	if setup.First.Name == "" || setup.Second.Name == "" {
		return fmt.Errorf("%w: both teams need a name", ErrInvalidSetup)
	}
	if setup.First.Name == setup.Second.Name {
		return fmt.Errorf("%w: team names must differ, got %q twice", ErrInvalidSetup, setup.First.Name)
	}
	seen := map[string]bool{}
	for _, ts := range []TeamSetup{setup.First, setup.Second} {
		if len(ts.Players) != roster {
			return fmt.Errorf("%w: team %s has %d players, want %d", ErrInvalidSetup, ts.Name, len(ts.Players), roster)
		}
		for _, p := range ts.Players {
			if p.Tag == "" || seen[p.Tag] {
				return fmt.Errorf("%w: missing or duplicate player tag %q", ErrInvalidSetup, p.Tag)
			}
			seen[p.Tag] = true
		}
	}
	return nil
}

func (s *State) Team(side Side) *Team { return s.Teams[side] }

// SideOf resolves a team name to the side it drafts on.
func (s *State) SideOf(team string) (Side, bool) {
	for i, t := range s.Teams {
		if t.Name == team {
			return Side(i), true
		}
	}
	return SideFirst, false
}

func (s *State) Hero(name string) Hero {
	if h, ok := s.Heroes[name]; ok {
		return h
	}
	return Hero{Name: name}
}

func (s *State) MapWinRate(hero string) float64 {
	if wr, ok := s.mapWinRates[hero]; ok {
		return wr
	}
	return NeutralWinRate
}

func (s *State) Matchup(hero, other string) Matchup {
	if rec, ok := s.matchups[hero][other]; ok {
		return rec
	}
	return Matchup{AsAlly: NeutralWinRate, AsEnemy: NeutralWinRate}
}

// AvailableHeroes returns the draftable heroes in name order.
func (s *State) AvailableHeroes() []string { return sortedKeys(s.Available) }

func (s *State) commitBan(rec DecisionRecord) error {
	if !s.Available[rec.Hero] {
		return fmt.Errorf("%w: %s is not available", ErrIllegalBan, rec.Hero)
	}
	delete(s.Available, rec.Hero)
	s.Banned[rec.Hero] = true
	s.Transcript = append(s.Transcript, rec)
	return nil
}

func (s *State) commitPick(side Side, rec DecisionRecord) error {
	t := s.Team(side)
	if !s.Available[rec.Hero] {
		return fmt.Errorf("%w: %s is not available", ErrIllegalPick, rec.Hero)
	}
	i := slices.Index(t.Available, rec.Player)
	if i < 0 {
		return fmt.Errorf("%w: %s has no open roster slot on %s", ErrIllegalPick, rec.Player, t.Name)
	}
	delete(s.Available, rec.Hero)
	s.Picked[rec.Hero] = true
	t.Available = slices.Delete(t.Available, i, i+1)
	t.Picked[rec.Player] = rec.Hero
	t.RoleCounts[s.Hero(rec.Hero).ResolvedRole()]++
	s.Transcript = append(s.Transcript, rec)
	return nil
}

// Validate checks the draft-wide invariants.
func (s *State) Validate() error {
	for h := range s.Banned {
		if s.Picked[h] {
			return fmt.Errorf("hero %s is both banned and picked", h)
		}
	}
	for name := range s.Heroes {
		want := !s.Forbidden[name] && !s.Banned[name] && !s.Picked[name]
		if s.Available[name] != want {
			return fmt.Errorf("hero %s availability is %v, want %v", name, s.Available[name], want)
		}
	}
	seen := map[string]bool{}
	for _, t := range s.Teams {
		total := 0
		for _, n := range t.RoleCounts {
			total += n
		}
		if total > len(t.Picked) {
			return fmt.Errorf("team %s counts %d roles for %d picks", t.Name, total, len(t.Picked))
		}
		for p, h := range t.Picked {
			if seen[p] {
				return fmt.Errorf("player %s picked twice", p)
			}
			seen[p] = true
			if !s.Picked[h] {
				return fmt.Errorf("hero %s assigned to %s but not marked picked", h, p)
			}
		}
	}
	return nil
}

// RoleShortfalls lists, per team name, the required roles still unfilled.
func (s *State) RoleShortfalls() map[string][]Role {
	out := map[string][]Role{}
	for _, t := range s.Teams {
		if missing := t.MissingRoles(s.Rules.RequiredRoles); len(missing) > 0 {
			out[t.Name] = missing
		}
	}
	return out
}
