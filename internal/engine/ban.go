package engine

import (
	"cmp"
	"slices"
)

// BanOption is one ranked ban target: the hero and the enemy player who
// would lose the most by its removal.
type BanOption struct {
	Hero      string
	Target    string
	Breakdown Breakdown
}

func (o BanOption) Total() float64 { return o.Breakdown.Total }

// RankBans scores every hero an available enemy player has a record on and
// returns the options best first. side is the banning team.
func (s *State) RankBans(side Side, slot int) ([]BanOption, error) {
	enemy := s.Team(side.Other())
	w := s.Rules.BanWeights

	pool := map[string]bool{}
	for _, tag := range enemy.Available {
		p, _ := enemy.Player(tag)
		for hero := range p.Heroes {
			if s.banFilter(hero) {
				pool[hero] = true
			}
		}
	}

	var opts []BanOption
	for _, hero := range sortedKeys(pool) {
		var best *Breakdown
		var bestPlayer Player
		for _, tag := range enemy.Available {
			p, _ := enemy.Player(tag)
			if !p.Knows(hero) {
				continue
			}
			// The enemy is the acting team when it would play this hero.
			b := s.scoreFor(side.Other(), p, hero, w)
			if best == nil || b.Total > best.Total || (b.Total == best.Total && p.Tag < bestPlayer.Tag) {
				best, bestPlayer = &b, p
			}
		}
		if best == nil {
			continue
		}
		drop := s.enforcedDrop(bestPlayer, hero)
		opts = append(opts, BanOption{
			Hero:      hero,
			Target:    bestPlayer.Tag,
			Breakdown: best.withDrop(drop, w.Drop),
		})
	}

	if len(opts) == 0 {
		return nil, s.noCandidate(slot, KindBan, side)
	}

	slices.SortStableFunc(opts, func(a, b BanOption) int {
		if c := cmp.Compare(b.Total(), a.Total()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Hero, b.Hero); c != 0 {
			return c
		}
		return cmp.Compare(a.Target, b.Target)
	})
	return opts, nil
}

// enforcedDrop is the rating p loses if hero disappears and p falls back
// to the best of their remaining candidates.
func (s *State) enforcedDrop(p Player, hero string) float64 {
	def := s.Rules.DefaultRating
	next := def
	found := false
	for other := range p.Heroes {
		if other == hero || !s.banFilter(other) {
			continue
		}
		r := p.Rating(other, def)
		if !found || r > next {
			next, found = r, true
		}
	}
	drop := p.Rating(hero, def) - next
	if drop < 0 {
		return 0
	}
	return drop
}
