package types

import "github.com/DoyleJ11/hots-draft-backend/internal/engine"

// ClientMessage is what a websocket client sends. The only command is
// "Choose", which answers the pending prompt of Team.
type ClientMessage struct {
	Type   string `json:"type"`
	Team   string `json:"team,omitempty"`
	Index  int    `json:"index,omitempty"`
	Hero   string `json:"hero,omitempty"`
	Player string `json:"player,omitempty"`
}

type ServerMessage struct {
	Type       string                   `json:"type"` // "Snapshot" | "Decision" | "Prompt" | "Finished" | "Error"
	Version    int                      `json:"version,omitempty"`
	Status     string                   `json:"status,omitempty"`
	Record     *engine.DecisionRecord   `json:"record,omitempty"`
	Prompt     *engine.Prompt           `json:"prompt,omitempty"`
	Transcript []engine.DecisionRecord  `json:"transcript,omitempty"`
	Shortfalls map[string][]engine.Role `json:"shortfalls,omitempty"`
	Error      string                   `json:"error,omitempty"`
}
