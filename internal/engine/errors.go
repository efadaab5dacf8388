package engine

import (
	"errors"
	"fmt"
	"strings"
)

var ErrWrongTurn = errors.New("invalid turn")
var ErrIllegalPick = errors.New("illegal pick")
var ErrIllegalBan = errors.New("illegal ban")
var ErrDraftCompleted = errors.New("draft already completed")
var ErrNoLegalCandidate = errors.New("no legal candidate")
var ErrInvalidChoice = errors.New("invalid choice")
var ErrInvalidRules = errors.New("invalid draft rules")
var ErrInvalidSetup = errors.New("invalid draft setup")

// NoCandidateError is the fatal result of a slot that has nothing legal to
// select. It snapshots enough state to diagnose the data or configuration
// problem without re-running the draft.
type NoCandidateError struct {
	Slot             int
	Kind             Kind
	Team             string
	AvailableHeroes  []string
	AvailablePlayers []string
	Banned           []string
	Picked           []string
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("%s: slot %d %s for %s (players: [%s], available heroes: %d, banned: [%s], picked: [%s])",
		ErrNoLegalCandidate, e.Slot, e.Kind, e.Team,
		strings.Join(e.AvailablePlayers, ", "),
		len(e.AvailableHeroes),
		strings.Join(e.Banned, ", "),
		strings.Join(e.Picked, ", "),
	)
}

func (e *NoCandidateError) Unwrap() error { return ErrNoLegalCandidate }

func (s *State) noCandidate(slot int, kind Kind, side Side) *NoCandidateError {
	t := s.Team(side)
	return &NoCandidateError{
		Slot:             slot,
		Kind:             kind,
		Team:             t.Name,
		AvailableHeroes:  sortedKeys(s.Available),
		AvailablePlayers: append([]string(nil), t.Available...),
		Banned:           sortedKeys(s.Banned),
		Picked:           sortedKeys(s.Picked),
	}
}
