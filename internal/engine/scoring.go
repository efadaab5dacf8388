package engine

import "fmt"

// ScoreContext describes who would play the hero and against whom.
type ScoreContext struct {
	Player  Player
	Allies  []string // acting team's committed heroes
	Enemies []string // opposing team's committed heroes
	Weights Weights
}

// Breakdown is a score split into its independently rounded terms. The
// *Delta fields hold the unweighted win-rate offsets shown in reasons.
type Breakdown struct {
	Hero   string
	Player string
	Role   Role

	Skill        float64
	MapDelta     float64
	Map          float64
	SynergyDelta float64
	Synergy      float64
	CounterDelta float64
	Counter      float64
	DropDelta    float64
	Drop         float64
	Total        float64
}

func (b *Breakdown) sum() {
	b.Total = round2(b.Skill + b.Map + b.Synergy + b.Counter + b.Drop)
}

// withDrop adds the enforced-drop term used by bans.
func (b Breakdown) withDrop(drop, weight float64) Breakdown {
	b.DropDelta = round2(drop)
	b.Drop = round2(b.DropDelta * weight)
	b.sum()
	return b
}

// Score is the additive desirability of hero for the player in sc.
func (s *State) Score(hero string, sc ScoreContext) Breakdown {
	b := Breakdown{
		Hero:   hero,
		Player: sc.Player.Tag,
		Role:   s.Hero(hero).ResolvedRole(),
		Skill:  round2(sc.Player.Rating(hero, s.Rules.DefaultRating)),
	}

	b.MapDelta = round2(s.MapWinRate(hero) - NeutralWinRate)
	b.Map = round2(b.MapDelta * sc.Weights.Map)

	var synergy, counter float64
	for _, ally := range sc.Allies {
		if ally == hero {
			continue
		}
		synergy += s.Matchup(hero, ally).AsAlly - NeutralWinRate
	}
	for _, enemy := range sc.Enemies {
		counter += s.Matchup(hero, enemy).AsEnemy - NeutralWinRate
	}
	b.SynergyDelta = round2(synergy)
	b.Synergy = round2(b.SynergyDelta * sc.Weights.Synergy)
	b.CounterDelta = round2(counter)
	b.Counter = round2(b.CounterDelta * sc.Weights.Counter)

	b.sum()
	return b
}

func (b Breakdown) pickReason(margin, boost float64) string {
	return fmt.Sprintf("Score: %.2f, Score Drop: %.2f, Pool Boost: %+.2f, MMR %.2f, Map Bonus %+.2f%%, Synergy %+.2f, Counter %+.2f, Role: %s",
		b.Total, margin, boost, b.Skill, b.MapDelta, b.SynergyDelta, b.CounterDelta, b.Role)
}

func (b Breakdown) banReason() string {
	return fmt.Sprintf("Score: %.2f, Banning %s forces %s to choose another option (MMR %.2f, Drop %+.2f, Map Bonus %+.2f%%, Synergy %+.2f, Counter %+.2f)",
		b.Total, b.Hero, b.Player, b.Skill, b.DropDelta, b.MapDelta, b.SynergyDelta, b.CounterDelta)
}

// scoreFor scores hero for a member of side, using the side's picks as allies.
func (s *State) scoreFor(side Side, p Player, hero string, w Weights, extraAllies ...string) Breakdown {
	allies := s.Team(side).PickedHeroes()
	allies = append(allies, extraAllies...)
	return s.Score(hero, ScoreContext{
		Player:  p,
		Allies:  allies,
		Enemies: s.Team(side.Other()).PickedHeroes(),
		Weights: w,
	})
}
