package engine

import (
	"cmp"
	"slices"
)

// PairOption commits two partnered heroes to two different players at once.
type PairOption struct {
	First  PickOption
	Second PickOption
}

func (o PairOption) Total() float64 {
	return round2(o.First.Breakdown.Total + o.Second.Breakdown.Total)
}

// RankPairs lists every legal assignment of a mutually partnered hero pair
// to two distinct available players of side, best first. Each player must
// have a record on the hero they are given. An empty result means the slot
// falls back to ordinary picks.
func (s *State) RankPairs(side Side, slot int) []PairOption {
	if !s.Rules.isPairSlot(slot) || !pairable(slot) {
		return nil
	}
	t := s.Team(side)
	if len(t.Available) < 2 {
		return nil
	}
	fr := s.Filter(s.AvailableHeroes(), side, slot, true)
	w := s.Rules.PickWeights

	var opts []PairOption
	for _, h := range fr.Allowed {
		q, ok := s.Rules.Partners[h]
		if !ok || h > q || !slices.Contains(fr.Allowed, q) {
			continue
		}
		if !s.pairFitsQuota(t, h, q) {
			continue
		}
		for _, a := range t.Available {
			pa, _ := t.Player(a)
			if !pa.Knows(h) {
				continue
			}
			for _, b := range t.Available {
				pb, _ := t.Player(b)
				if a == b || !pb.Knows(q) {
					continue
				}
				opts = append(opts, PairOption{
					First:  PickOption{Player: a, Hero: h, Breakdown: s.scoreFor(side, pa, h, w, q)},
					Second: PickOption{Player: b, Hero: q, Breakdown: s.scoreFor(side, pb, q, w, h)},
				})
			}
		}
	}

	slices.SortStableFunc(opts, func(x, y PairOption) int {
		if c := cmp.Compare(y.Total(), x.Total()); c != 0 {
			return c
		}
		if c := cmp.Compare(x.First.Hero, y.First.Hero); c != 0 {
			return c
		}
		if c := cmp.Compare(x.First.Player, y.First.Player); c != 0 {
			return c
		}
		return cmp.Compare(x.Second.Player, y.Second.Player)
	})
	return opts
}

// pairFitsQuota checks both heroes can be counted without breaking a limit.
func (s *State) pairFitsQuota(t *Team, h, q string) bool {
	add := map[Role]int{}
	add[s.Hero(h).ResolvedRole()]++
	add[s.Hero(q).ResolvedRole()]++
	for role, n := range add {
		if limit, ok := s.Rules.RoleLimits[role]; ok && t.RoleCounts[role]+n > limit {
			return false
		}
	}
	return true
}
