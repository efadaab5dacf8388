package engine

import "fmt"

// NoPlayer fills the player column of ban records.
const NoPlayer = "—"

// DecisionRecord is one committed slot. Records are appended to the
// transcript and never changed afterwards.
type DecisionRecord struct {
	Slot   int     `json:"slot"`
	Kind   Kind    `json:"kind"`
	Team   string  `json:"team"`
	Player string  `json:"player"`
	Hero   string  `json:"hero"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

func (r DecisionRecord) String() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%.2f\t%s", r.Slot, r.Kind, r.Team, r.Player, r.Hero, r.Score, r.Reason)
}

type Transcript []DecisionRecord

func (t Transcript) Bans() []string {
	var out []string
	for _, r := range t {
		if r.Kind == KindBan {
			out = append(out, r.Hero)
		}
	}
	return out
}

// Picks maps player to hero across both teams.
func (t Transcript) Picks() map[string]string {
	out := map[string]string{}
	for _, r := range t {
		if r.Kind == KindPick {
			out[r.Player] = r.Hero
		}
	}
	return out
}
