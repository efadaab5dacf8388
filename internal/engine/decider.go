package engine

import "context"

// Suggestion is one ranked option offered to whoever decides a slot. Pair
// suggestions carry the partner hero and the player it goes to.
type Suggestion struct {
	Hero          string  `json:"hero"`
	Player        string  `json:"player,omitempty"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
	Partner       string  `json:"partner,omitempty"`
	PartnerPlayer string  `json:"partner_player,omitempty"`
}

// Prompt asks a Decider to settle one slot.
type Prompt struct {
	Slot        int          `json:"slot"`
	Kind        Kind         `json:"kind"`
	Team        string       `json:"team"`
	Phase       Phase        `json:"phase"`
	Suggestions []Suggestion `json:"suggestions"`
	// Legal lists heroes that may be named instead of a suggestion.
	Legal []string `json:"legal"`
	// Players lists the acting team's open roster slots on pick slots.
	Players []string `json:"players,omitempty"`
	// Retry explains why the previous answer was refused.
	Retry string `json:"retry,omitempty"`
}

// Choice is a Decider's answer. A zero Choice takes the top suggestion;
// Index selects suggestion Index (1-based); Hero names a hero directly,
// optionally with the Player who receives it.
type Choice struct {
	Index  int    `json:"index,omitempty"`
	Hero   string `json:"hero,omitempty"`
	Player string `json:"player,omitempty"`
}

// Decider settles slots for one team. Deciders may block; an error aborts
// the draft, while an unusable Choice only re-prompts.
type Decider interface {
	Decide(ctx context.Context, p Prompt) (Choice, error)
}

type DeciderFunc func(ctx context.Context, p Prompt) (Choice, error)

func (f DeciderFunc) Decide(ctx context.Context, p Prompt) (Choice, error) { return f(ctx, p) }

// AutoDecider always takes the engine's top suggestion.
type AutoDecider struct{}

func (AutoDecider) Decide(ctx context.Context, _ Prompt) (Choice, error) {
	return Choice{}, ctx.Err()
}
