package engine

import "fmt"

// Replay rebuilds the state of a recorded draft by committing records in
// order against a fresh State. Each record must name the slot, kind and team
// the draft order expects next and still be legal at that point; scores and
// reasons are taken as recorded.
func Replay(setup Setup, rules Rules, records []DecisionRecord) (*State, error) {
	s, err := NewState(setup, rules)
	if err != nil {
		return nil, err
	}
	if len(records) > len(DraftOrder) {
		return nil, fmt.Errorf("%w: %d records for %d slots", ErrDraftCompleted, len(records), len(DraftOrder))
	}

	for i, rec := range records {
		want := DraftOrder[i]
		side := SideFor(want.Number)
		if rec.Slot != want.Number || rec.Kind != want.Kind {
			return nil, fmt.Errorf("%w: record %d is %s %d, expected %s %d", ErrWrongTurn, i, rec.Kind, rec.Slot, want.Kind, want.Number)
		}
		if rec.Team != s.Team(side).Name {
			return nil, fmt.Errorf("%w: slot %d belongs to %s, not %s", ErrWrongTurn, rec.Slot, s.Team(side).Name, rec.Team)
		}

		switch rec.Kind {
		case KindBan:
			if s.Forbidden[rec.Hero] {
				return nil, fmt.Errorf("%w: %s is forbidden", ErrIllegalBan, rec.Hero)
			}
			err = s.commitBan(rec)
		case KindPick:
			if s.Forbidden[rec.Hero] {
				return nil, fmt.Errorf("%w: %s is forbidden", ErrIllegalPick, rec.Hero)
			}
			err = s.commitPick(side, rec)
		}
		if err != nil {
			return nil, fmt.Errorf("replay slot %d: %w", rec.Slot, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
