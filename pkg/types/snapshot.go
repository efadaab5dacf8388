package types

import "github.com/DoyleJ11/hots-draft-backend/internal/engine"

// DraftView is the body of GET /drafts/{code}.
type DraftView struct {
	Code       string                   `json:"code"`
	Status     string                   `json:"status"`
	Map        string                   `json:"map"`
	Teams      []string                 `json:"teams"`
	Manual     []string                 `json:"manual,omitempty"`
	Version    int                      `json:"version"`
	Clients    int                      `json:"clients"`
	Pending    *engine.Prompt           `json:"pending,omitempty"`
	Transcript []engine.DecisionRecord  `json:"transcript"`
	Shortfalls map[string][]engine.Role `json:"shortfalls,omitempty"`
	Error      string                   `json:"error,omitempty"`
}

// TranscriptResponse is the body of GET /drafts/{code}/transcript.
type TranscriptResponse struct {
	ID         string                  `json:"id"`
	Code       string                  `json:"code"`
	Status     string                  `json:"status"`
	Seed       uint64                  `json:"seed"`
	Records    []engine.DecisionRecord `json:"records"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  string                  `json:"created_at"`
	FinishedAt string                  `json:"completed_at,omitempty"`
}
