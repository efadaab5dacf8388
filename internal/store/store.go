package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
)

var ErrNotFound = errors.New("draft not found")

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Draft is the archived form of one draft run. Records are stored exactly as
// the engine produced them so the draft can be replayed.
type Draft struct {
	ID          uuid.UUID               `json:"id"`
	Code        string                  `json:"code"`
	Map         string                  `json:"map"`
	Mode        string                  `json:"mode"`
	FirstTeam   string                  `json:"first_team"`
	SecondTeam  string                  `json:"second_team"`
	Seed        uint64                  `json:"seed"`
	Status      Status                  `json:"status"`
	Error       string                  `json:"error,omitempty"`
	Records     []engine.DecisionRecord `json:"records"`
	CreatedAt   time.Time               `json:"created_at"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

func NewDraft(code string, s *engine.State) *Draft {
	return &Draft{
		ID:         uuid.New(),
		Code:       code,
		Map:        s.Map,
		Mode:       s.Mode,
		FirstTeam:  s.Team(engine.SideFirst).Name,
		SecondTeam: s.Team(engine.SideSecond).Name,
		Seed:       s.Rules.Seed,
		Status:     StatusRunning,
		CreatedAt:  time.Now().UTC(),
	}
}

// Finish closes the draft with its final transcript. A nil err marks it
// completed.
func (d *Draft) Finish(records []engine.DecisionRecord, err error) {
	now := time.Now().UTC()
	d.CompletedAt = &now
	d.Records = slices.Clone(records)
	d.Status = StatusCompleted
	if err != nil {
		d.Status = StatusAborted
		d.Error = err.Error()
	}
}

// Store archives draft transcripts. Save inserts or replaces by ID.
type Store interface {
	Save(ctx context.Context, d *Draft) error
	Get(ctx context.Context, id uuid.UUID) (*Draft, error)
	GetByCode(ctx context.Context, code string) (*Draft, error)
	List(ctx context.Context, limit int) ([]Draft, error)
}
