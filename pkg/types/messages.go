package types

// TeamRequest names a team and its five player tags, in roster order.
type TeamRequest struct {
	Name    string   `json:"name" validate:"required,max=64"`
	Players []string `json:"players" validate:"len=5,unique,dive,required,max=64"`
}

// CreateDraftRequest is the body of POST /drafts. FirstPick names the team
// that won first pick; Manual names teams whose slots are answered over the
// websocket instead of automatically.
type CreateDraftRequest struct {
	Map       string        `json:"map" validate:"required"`
	Mode      string        `json:"mode,omitempty"`
	FirstPick string        `json:"first_pick" validate:"required"`
	Teams     []TeamRequest `json:"teams" validate:"len=2,dive"`
	Manual    []string      `json:"manual,omitempty" validate:"max=2,dive,required"`
	Seed      *uint64       `json:"seed,omitempty"`
}

type CreateDraftResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
