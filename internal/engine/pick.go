package engine

import (
	"cmp"
	"slices"
)

// PickOption is the best (player, hero) candidate for one available player.
type PickOption struct {
	Player    string
	Hero      string
	Breakdown Breakdown
	// Margin is best minus second-best score for this player.
	Margin float64
	// Boost favors players with narrow hero pools.
	Boost    float64
	Fallback bool
}

func (o PickOption) Priority() float64 { return o.Margin + o.Boost }

func (o PickOption) reason() string {
	if o.Fallback {
		return "No strong picks available; " + o.Breakdown.pickReason(o.Margin, o.Boost)
	}
	return o.Breakdown.pickReason(o.Margin, o.Boost)
}

// RankPicks builds one option per available player of side and orders them
// by boosted score margin, so the player who stands to lose the most by
// waiting goes first. When no player has a legal recorded hero, a single
// fallback option assigns a random legal hero to the first open player.
func (s *State) RankPicks(side Side, slot int) ([]PickOption, FilterResult, error) {
	t := s.Team(side)
	fr := s.Filter(s.AvailableHeroes(), side, slot, false)
	if len(t.Available) == 0 || len(fr.Allowed) == 0 {
		return nil, fr, s.noCandidate(slot, KindPick, side)
	}

	w := s.Rules.PickWeights
	maxPool := 0
	pools := map[string]int{}
	for _, tag := range t.Available {
		p, _ := t.Player(tag)
		pools[tag] = p.PoolSize(s.Rules.PoolFloor)
		maxPool = max(maxPool, pools[tag])
	}

	var opts []PickOption
	for _, tag := range t.Available {
		p, _ := t.Player(tag)
		var scored []Breakdown
		for _, hero := range fr.Allowed {
			if p.Knows(hero) {
				scored = append(scored, s.scoreFor(side, p, hero, w))
			}
		}
		if len(scored) == 0 {
			continue
		}
		slices.SortStableFunc(scored, func(a, b Breakdown) int {
			if c := cmp.Compare(b.Total, a.Total); c != 0 {
				return c
			}
			return cmp.Compare(a.Hero, b.Hero)
		})

		second := s.Rules.DefaultRating
		if len(scored) > 1 {
			second = scored[1].Total
		}
		boost := 0.0
		if maxPool > 0 {
			boost = round2(s.Rules.PoolBoost * (1 - float64(pools[tag])/float64(maxPool)))
		}
		opts = append(opts, PickOption{
			Player:    tag,
			Hero:      scored[0].Hero,
			Breakdown: scored[0],
			Margin:    round2(scored[0].Total - second),
			Boost:     boost,
		})
	}

	if len(opts) == 0 {
		tag := t.Available[0]
		p, _ := t.Player(tag)
		hero := chooseRandomLegal(s, fr.Allowed)
		return []PickOption{{
			Player:    tag,
			Hero:      hero,
			Breakdown: s.scoreFor(side, p, hero, w),
			Fallback:  true,
		}}, fr, nil
	}

	slices.SortStableFunc(opts, comparePicks)
	return opts, fr, nil
}

func comparePicks(a, b PickOption) int {
	if c := cmp.Compare(b.Priority(), a.Priority()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Breakdown.Total, a.Breakdown.Total); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Hero, b.Hero); c != 0 {
		return c
	}
	return cmp.Compare(a.Player, b.Player)
}

// bestPlayerFor picks the available player of side who scores highest on
// hero. Used when an operator names a hero without a player.
func (s *State) bestPlayerFor(side Side, hero string) (PickOption, bool) {
	t := s.Team(side)
	var best PickOption
	found := false
	for _, tag := range t.Available {
		p, _ := t.Player(tag)
		b := s.scoreFor(side, p, hero, s.Rules.PickWeights)
		if !found || b.Total > best.Breakdown.Total {
			best, found = PickOption{Player: tag, Hero: hero, Breakdown: b}, true
		}
	}
	return best, found
}
