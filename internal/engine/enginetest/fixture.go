// Package enginetest builds draft fixtures for tests outside the engine.
package enginetest

import (
	"fmt"
	"slices"
	"testing"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

var Roles = map[string][]engine.Role{
	"Muradin": {engine.RoleTank}, "Johanna": {engine.RoleTank}, "Diablo": {engine.RoleTank},
	"Malfurion": {engine.RoleHealer}, "Rehgar": {engine.RoleHealer}, "Lucio": {engine.RoleHealer},
	"Sonya": {engine.RoleBruiser}, "Dehaka": {engine.RoleBruiser}, "Blaze": {engine.RoleBruiser},
	"Valla": {engine.RoleRangedAssassin}, "Raynor": {engine.RoleRangedAssassin}, "Jaina": {engine.RoleRangedAssassin},
	"Li-Ming": {engine.RoleRangedAssassin}, "Falstad": {engine.RoleRangedAssassin}, "Hanzo": {engine.RoleRangedAssassin},
	"Nova": {engine.RoleRangedAssassin}, "Tychus": {engine.RoleRangedAssassin}, "Zagara": {engine.RoleRangedAssassin},
	"Alarak": {engine.RoleMeleeAssassin}, "Malthael": {engine.RoleMeleeAssassin}, "Valeera": {engine.RoleMeleeAssassin},
}

// Setup returns two full rosters, "Alpha" (a1..a5) and "Bravo" (b1..b5),
// each player recorded on every other hero.
func Setup() engine.Setup {
	heroes := make([]string, 0, len(Roles))
	for h := range Roles {
		heroes = append(heroes, h)
	}
	slices.Sort(heroes)

	team := func(name, prefix string, offset int) engine.TeamSetup {
		ts := engine.TeamSetup{Name: name}
		for k := 0; k < 5; k++ {
			p := engine.Player{Tag: fmt.Sprintf("%s%d", prefix, k+1), Heroes: map[string]engine.HeroStat{}}
			for j, h := range heroes {
				if (j+k+offset)%2 != 0 {
					continue
				}
				p.Heroes[h] = engine.HeroStat{Rating: float64(2500 + 41*((j*5+k*3+offset)%17)), GamesPlayed: 5 + j}
			}
			ts.Players = append(ts.Players, p)
		}
		return ts
	}

	return engine.Setup{
		Map:         "Cursed Hollow",
		Mode:        "Storm League",
		First:       team("Alpha", "a", 0),
		Second:      team("Bravo", "b", 1),
		HeroRoles:   Roles,
		MapWinRates: map[string]float64{"Valla": 53.5, "Johanna": 48, "Sonya": 51},
	}
}

// State builds a fresh state from Setup and the default rules.
func State(t testing.TB) *engine.State {
	t.Helper()
	s, err := engine.NewState(Setup(), engine.DefaultRules())
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	return s
}
