package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Result is a completed draft. Shortfalls lists required roles a team could
// not fill because no legal hero for them remained.
type Result struct {
	Transcript Transcript
	Shortfalls map[string][]Role
}

// Engine walks DraftOrder over one State, one slot at a time.
type Engine struct {
	state    *State
	cursor   int
	deciders [2]Decider
	observer func(DecisionRecord)
	logger   *zap.Logger
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDecider hands the slots of side to d instead of the automatic choice.
func WithDecider(side Side, d Decider) Option {
	return func(e *Engine) { e.deciders[side] = d }
}

// WithObserver is called on the engine goroutine after every commit.
func WithObserver(fn func(DecisionRecord)) Option {
	return func(e *Engine) { e.observer = fn }
}

func New(s *State, opts ...Option) *Engine {
	e := &Engine{
		state:    s,
		deciders: [2]Decider{AutoDecider{}, AutoDecider{}},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) State() *State { return e.state }

func (e *Engine) Done() bool { return e.cursor >= len(DraftOrder) }

// Next returns the slot the engine will act on next.
func (e *Engine) Next() (Slot, bool) {
	if e.Done() {
		return Slot{}, false
	}
	return DraftOrder[e.cursor], true
}

// Run drives the draft to completion. Any error aborts the draft; the state
// must then be discarded.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	for !e.Done() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.Step(ctx); err != nil {
			e.logger.Error("draft aborted", zap.Int("cursor", e.cursor), zap.Error(err))
			return nil, err
		}
	}
	if err := e.state.Validate(); err != nil {
		return nil, fmt.Errorf("draft finished inconsistent: %w", err)
	}

	res := &Result{
		Transcript: slices.Clone(e.state.Transcript),
		Shortfalls: e.state.RoleShortfalls(),
	}
	for team, missing := range res.Shortfalls {
		e.logger.Warn("required roles unfilled", zap.String("team", team), zap.Any("roles", missing))
	}
	return res, nil
}

// Step settles the next slot, or the next two when a pair is committed.
func (e *Engine) Step(ctx context.Context) error {
	slot, ok := e.Next()
	if !ok {
		return ErrDraftCompleted
	}
	side := SideFor(slot.Number)

	var (
		n   int
		err error
	)
	switch slot.Kind {
	case KindBan:
		n, err = e.ban(ctx, slot, side)
	case KindPick:
		n, err = e.pick(ctx, slot, side)
	}
	if err != nil {
		return err
	}
	e.cursor += n
	return nil
}

func (e *Engine) ban(ctx context.Context, slot Slot, side Side) (int, error) {
	s := e.state
	team := s.Team(side).Name
	opts, err := s.RankBans(side, slot.Number)
	if err != nil {
		return 0, err
	}

	p := e.prompt(slot, side)
	for _, o := range opts[:min(len(opts), s.Rules.Suggestions)] {
		p.Suggestions = append(p.Suggestions, Suggestion{
			Hero:   o.Hero,
			Player: o.Target,
			Score:  o.Total(),
			Reason: o.Breakdown.banReason(),
		})
	}

	toRecord := func(o BanOption) DecisionRecord {
		return DecisionRecord{Slot: slot.Number, Kind: KindBan, Team: team, Player: NoPlayer, Hero: o.Hero, Score: o.Total(), Reason: o.Breakdown.banReason()}
	}
	recs, err := e.decide(ctx, side, p, func(c Choice) ([]DecisionRecord, error) {
		switch {
		case c.Hero != "":
			if !s.banFilter(c.Hero) {
				return nil, fmt.Errorf("%w: %s cannot be banned", ErrInvalidChoice, c.Hero)
			}
			for _, o := range opts {
				if o.Hero == c.Hero {
					return []DecisionRecord{toRecord(o)}, nil
				}
			}
			return []DecisionRecord{{Slot: slot.Number, Kind: KindBan, Team: team, Player: NoPlayer, Hero: c.Hero, Reason: "Manual input"}}, nil
		case c.Index > 0:
			if c.Index > len(p.Suggestions) {
				return nil, fmt.Errorf("%w: no suggestion %d", ErrInvalidChoice, c.Index)
			}
			return []DecisionRecord{toRecord(opts[c.Index-1])}, nil
		default:
			return []DecisionRecord{toRecord(opts[0])}, nil
		}
	})
	if err != nil {
		return 0, err
	}

	if err := s.commitBan(recs[0]); err != nil {
		return 0, err
	}
	e.committed(recs[0])
	return 1, nil
}

// pickPlan is one ranked pick candidate: a single option or a pair.
type pickPlan struct {
	single *PickOption
	pair   *PairOption
}

func (e *Engine) pick(ctx context.Context, slot Slot, side Side) (int, error) {
	s := e.state
	t := s.Team(side)

	pairs := s.RankPairs(side, slot.Number)
	opts, fr, err := s.RankPicks(side, slot.Number)
	if err != nil && len(pairs) == 0 {
		return 0, err
	}
	if fr.Relaxed {
		e.logger.Debug("role lock lifted, no hero fills a missing role",
			zap.Int("slot", slot.Number), zap.String("team", t.Name), zap.Any("missing", fr.RoleLock))
	}

	var plans []pickPlan
	for i := range pairs {
		plans = append(plans, pickPlan{pair: &pairs[i]})
	}
	for i := range opts {
		plans = append(plans, pickPlan{single: &opts[i]})
	}
	plans = plans[:min(len(plans), s.Rules.Suggestions)]

	// Named heroes must clear the same filter as ranked ones.
	legal := s.Filter(s.AvailableHeroes(), side, slot.Number, s.Rules.isPairSlot(slot.Number) && pairable(slot.Number))

	p := e.prompt(slot, side)
	p.Legal = legal.Allowed
	for _, pl := range plans {
		if pl.pair != nil {
			p.Suggestions = append(p.Suggestions, Suggestion{
				Hero:          pl.pair.First.Hero,
				Player:        pl.pair.First.Player,
				Score:         pl.pair.Total(),
				Reason:        pl.pair.First.reason(),
				Partner:       pl.pair.Second.Hero,
				PartnerPlayer: pl.pair.Second.Player,
			})
			continue
		}
		p.Suggestions = append(p.Suggestions, Suggestion{
			Hero:   pl.single.Hero,
			Player: pl.single.Player,
			Score:  pl.single.Breakdown.Total,
			Reason: pl.single.reason(),
		})
	}

	next := slot.Number
	if i := slotIndex(slot.Number); i+1 < len(DraftOrder) {
		next = DraftOrder[i+1].Number
	}
	toRecords := func(pl pickPlan, reasonPrefix string) []DecisionRecord {
		if pl.pair != nil {
			return []DecisionRecord{
				{Slot: slot.Number, Kind: KindPick, Team: t.Name, Player: pl.pair.First.Player, Hero: pl.pair.First.Hero, Score: pl.pair.First.Breakdown.Total, Reason: reasonPrefix + "Paired with " + pl.pair.Second.Hero + "; " + pl.pair.First.reason()},
				{Slot: next, Kind: KindPick, Team: t.Name, Player: pl.pair.Second.Player, Hero: pl.pair.Second.Hero, Score: pl.pair.Second.Breakdown.Total, Reason: reasonPrefix + "Paired with " + pl.pair.First.Hero + "; " + pl.pair.Second.reason()},
			}
		}
		return []DecisionRecord{{Slot: slot.Number, Kind: KindPick, Team: t.Name, Player: pl.single.Player, Hero: pl.single.Hero, Score: pl.single.Breakdown.Total, Reason: reasonPrefix + pl.single.reason()}}
	}

	recs, err := e.decide(ctx, side, p, func(c Choice) ([]DecisionRecord, error) {
		switch {
		case c.Hero != "":
			return e.manualPick(side, c, legal, pairs, opts, toRecords)
		case c.Index > 0:
			if c.Index > len(plans) {
				return nil, fmt.Errorf("%w: no suggestion %d", ErrInvalidChoice, c.Index)
			}
			return toRecords(plans[c.Index-1], ""), nil
		default:
			return toRecords(plans[0], ""), nil
		}
	})
	if err != nil {
		return 0, err
	}

	// Check the whole plan before touching state so pairs land atomically.
	seenPlayers := map[string]bool{}
	for _, r := range recs {
		if !s.Available[r.Hero] || !t.IsAvailable(r.Player) || seenPlayers[r.Player] {
			return 0, fmt.Errorf("%w: %s for %s on slot %d", ErrIllegalPick, r.Hero, r.Player, r.Slot)
		}
		seenPlayers[r.Player] = true
	}
	for _, r := range recs {
		if err := s.commitPick(side, r); err != nil {
			return 0, err
		}
		e.committed(r)
	}
	return len(recs), nil
}

func (e *Engine) manualPick(side Side, c Choice, legal FilterResult, pairs []PairOption, opts []PickOption, toRecords func(pickPlan, string) []DecisionRecord) ([]DecisionRecord, error) {
	s := e.state
	t := s.Team(side)
	if !s.banFilter(c.Hero) {
		return nil, fmt.Errorf("%w: %s is not available", ErrInvalidChoice, c.Hero)
	}
	if c.Player != "" && !t.IsAvailable(c.Player) {
		return nil, fmt.Errorf("%w: %s has no open roster slot", ErrInvalidChoice, c.Player)
	}
	if !slices.Contains(legal.Allowed, c.Hero) {
		return nil, fmt.Errorf("%w: %s is blocked by %s", ErrInvalidChoice, c.Hero, legal.Rejected[c.Hero])
	}

	if _, ok := s.Rules.Partners[c.Hero]; ok {
		for i := range pairs {
			pr := pairs[i]
			if pr.First.Hero != c.Hero && pr.Second.Hero != c.Hero {
				continue
			}
			if c.Player != "" && pr.First.Player != c.Player && pr.Second.Player != c.Player {
				continue
			}
			return toRecords(pickPlan{pair: &pr}, "Manual input; "), nil
		}
		return nil, fmt.Errorf("%w: %s can only be picked together with %s", ErrInvalidChoice, c.Hero, s.Rules.Partners[c.Hero])
	}

	if c.Player == "" {
		for i := range opts {
			if opts[i].Hero == c.Hero && !opts[i].Fallback {
				return toRecords(pickPlan{single: &opts[i]}, "Manual input; "), nil
			}
		}
		o, ok := s.bestPlayerFor(side, c.Hero)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no open roster slot", ErrInvalidChoice, t.Name)
		}
		return toRecords(pickPlan{single: &o}, "Manual input; "), nil
	}

	pl, _ := t.Player(c.Player)
	o := PickOption{Player: c.Player, Hero: c.Hero, Breakdown: s.scoreFor(side, pl, c.Hero, s.Rules.PickWeights)}
	return toRecords(pickPlan{single: &o}, "Manual input; "), nil
}

func (e *Engine) prompt(slot Slot, side Side) Prompt {
	p := Prompt{
		Slot:  slot.Number,
		Kind:  slot.Kind,
		Team:  e.state.Team(side).Name,
		Phase: DerivePhase(slot.Number, e.state.Rules),
		Legal: e.state.AvailableHeroes(),
	}
	if slot.Kind == KindPick {
		p.Players = slices.Clone(e.state.Team(side).Available)
	}
	return p
}

// decide asks the side's Decider until it returns a usable choice.
func (e *Engine) decide(ctx context.Context, side Side, p Prompt, resolve func(Choice) ([]DecisionRecord, error)) ([]DecisionRecord, error) {
	d := e.deciders[side]
	for {
		c, err := d.Decide(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("slot %d decision for %s: %w", p.Slot, p.Team, err)
		}
		recs, err := resolve(c)
		if err == nil {
			return recs, nil
		}
		if !errors.Is(err, ErrInvalidChoice) {
			return nil, err
		}
		e.logger.Debug("re-prompting", zap.Int("slot", p.Slot), zap.String("team", p.Team), zap.Error(err))
		p.Retry = err.Error()
	}
}

func (e *Engine) committed(r DecisionRecord) {
	e.logger.Info("decision",
		zap.Int("slot", r.Slot),
		zap.String("kind", string(r.Kind)),
		zap.String("team", r.Team),
		zap.String("player", r.Player),
		zap.String("hero", r.Hero),
		zap.Float64("score", r.Score),
	)
	if e.observer != nil {
		e.observer(r)
	}
}
