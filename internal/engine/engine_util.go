package engine

import (
	"math"
	"slices"
)

// DerivePhase maps a slot number to the draft phase used by pick-timing rules.
func DerivePhase(number int, r Rules) Phase {
	switch {
	case number >= r.LateFrom:
		return PhaseLate
	case number >= r.MiddleFrom:
		return PhaseMiddle
	default:
		return PhaseEarly
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// chooseRandomLegal draws a fallback hero from the legal pool. It is a
// package var so tests can pin the draw.
var chooseRandomLegal = func(s *State, legal []string) string {
	return legal[s.rng.IntN(len(legal))]
}
