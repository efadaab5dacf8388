package lobby

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/metrics"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

var (
	ErrNoPendingDecision = errors.New("no decision is pending")
	ErrNotYourTurn       = errors.New("decision belongs to the other team")
	ErrClosed            = errors.New("draft room closed")
)

type Status string

const (
	StatusRunning  Status = "running"
	StatusWaiting  Status = "awaiting_choice"
	StatusComplete Status = "completed"
	StatusAborted  Status = "aborted"
)

type Msg interface{ isLobbyMsg() }

type Join struct {
	ClientID string
	Outbox   chan Update // where this client wants to receive updates
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// Choose answers the pending prompt of a manual team.
type Choose struct {
	Team   string
	Choice engine.Choice
	Reply  chan error
}

func (Choose) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Sent by the engine goroutine.
type committed struct{ rec engine.DecisionRecord }

type prompted struct {
	prompt engine.Prompt
	answer chan engine.Choice
}

type finished struct {
	res *engine.Result
	err error
}

func (committed) isLobbyMsg() {}
func (prompted) isLobbyMsg()  {}
func (finished) isLobbyMsg()  {}

// Update is what clients receive. Every update carries the full transcript
// so far, so a client that missed one can resync from the next.
type Update struct {
	Version    int
	Type       string // "Snapshot" | "Decision" | "Prompt" | "Finished"
	Status     Status
	Record     *engine.DecisionRecord
	Prompt     *engine.Prompt
	Transcript []engine.DecisionRecord
	Shortfalls map[string][]engine.Role
	Error      string
}

type View struct {
	Code       string
	Version    int
	NumClients int
	Status     Status
	Map        string
	Teams      [2]string
	Manual     []string
	Pending    *engine.Prompt
	Transcript []engine.DecisionRecord
	Shortfalls map[string][]engine.Role
	Error      string
}

type Config struct {
	Code  string
	State *engine.State
	// Manual lists teams whose slots wait for a Choose message.
	Manual []engine.Side
	Logger *zap.Logger
	// Store and Draft are optional; when set the final transcript is archived.
	Store store.Store
	Draft *store.Draft
}

type pending struct {
	prompt engine.Prompt
	answer chan engine.Choice
}

// Lobby is one draft room. Its loop owns the client list and a copy of the
// transcript; the engine runs on its own goroutine and only talks to the
// loop through the inbox.
type Lobby struct {
	inbox   chan Msg
	code    string
	version int
	status  Status
	records []engine.DecisionRecord
	result  *engine.Result
	errMsg  string
	pending *pending
	clients map[string]chan Update

	mapName string
	teams   [2]string
	manual  []string

	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// NewLobby starts the room and its draft.
func NewLobby(parent context.Context, cfg Config) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := cfg.State

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		code:    cfg.Code,
		status:  StatusRunning,
		clients: make(map[string]chan Update),
		mapName: s.Map,
		teams:   [2]string{s.Team(engine.SideFirst).Name, s.Team(engine.SideSecond).Name},
		logger:  logger.With(zap.String("code", cfg.Code)),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, side := range cfg.Manual {
		l.manual = append(l.manual, s.Team(side).Name)
	}

	go l.loop()
	go l.run(cfg)
	return l
}

// run drives the engine to completion on its own goroutine.
func (l *Lobby) run(cfg Config) {
	started := time.Now()
	metrics.DraftStarted()

	opts := []engine.Option{
		engine.WithLogger(l.logger),
		engine.WithObserver(func(r engine.DecisionRecord) { l.send(committed{rec: r}) }),
	}
	for _, side := range cfg.Manual {
		opts = append(opts, engine.WithDecider(side, remoteDecider{l: l}))
	}
	res, err := engine.New(cfg.State, opts...).Run(l.ctx)

	outcome := "completed"
	switch {
	case errors.Is(err, engine.ErrNoLegalCandidate):
		outcome = "no_candidate"
	case errors.Is(err, context.Canceled):
		outcome = "cancelled"
	case err != nil:
		outcome = "failed"
	}
	metrics.DraftFinished(outcome, time.Since(started))

	if cfg.Store != nil && cfg.Draft != nil {
		cfg.Draft.Finish(cfg.State.Transcript, err)
		// The room may already be shutting down; archive regardless.
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(l.ctx), 5*time.Second)
		if serr := cfg.Store.Save(saveCtx, cfg.Draft); serr != nil {
			l.logger.Error("archive draft", zap.Error(serr))
		}
		cancel()
	}

	l.send(finished{res: res, err: err})
}

func (l *Lobby) send(m Msg) bool {
	select {
	case l.inbox <- m:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// remoteDecider parks the engine until a client answers through Choose.
type remoteDecider struct{ l *Lobby }

func (d remoteDecider) Decide(ctx context.Context, p engine.Prompt) (engine.Choice, error) {
	answer := make(chan engine.Choice, 1)
	if !d.l.send(prompted{prompt: p, answer: answer}) {
		return engine.Choice{}, ErrClosed
	}
	select {
	case c := <-answer:
		return c, nil
	case <-ctx.Done():
		return engine.Choice{}, ctx.Err()
	}
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- l.update("Snapshot")

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case Choose:
				msg.Reply <- l.choose(msg)

			case committed:
				l.records = append(l.records, msg.rec)
				metrics.Decision(msg.rec)
				l.version++
				u := l.update("Decision")
				u.Record = &msg.rec
				l.broadcast(u)

			case prompted:
				l.pending = &pending{prompt: msg.prompt, answer: msg.answer}
				l.status = StatusWaiting
				l.version++
				l.broadcast(l.update("Prompt"))

			case finished:
				l.finish(msg)
				l.broadcast(l.update("Finished"))

			case GetState:
				msg.Reply <- l.view()

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) choose(msg Choose) error {
	if l.pending == nil {
		return ErrNoPendingDecision
	}
	if msg.Team != l.pending.prompt.Team {
		return ErrNotYourTurn
	}
	l.pending.answer <- msg.Choice
	l.pending = nil
	l.status = StatusRunning
	return nil
}

func (l *Lobby) finish(msg finished) {
	l.pending = nil
	l.version++
	if msg.err != nil {
		l.status = StatusAborted
		l.errMsg = msg.err.Error()
		l.logger.Warn("draft aborted", zap.Error(msg.err))
		return
	}
	l.status = StatusComplete
	l.result = msg.res
	l.logger.Info("draft completed", zap.Int("records", len(l.records)))
}

func (l *Lobby) update(kind string) Update {
	u := Update{
		Version:    l.version,
		Type:       kind,
		Status:     l.status,
		Transcript: slices.Clone(l.records),
		Error:      l.errMsg,
	}
	if l.pending != nil {
		p := l.pending.prompt
		u.Prompt = &p
	}
	if l.result != nil {
		u.Shortfalls = l.result.Shortfalls
	}
	return u
}

func (l *Lobby) view() View {
	v := View{
		Code:       l.code,
		Version:    l.version,
		NumClients: len(l.clients),
		Status:     l.status,
		Map:        l.mapName,
		Teams:      l.teams,
		Manual:     l.manual,
		Transcript: slices.Clone(l.records),
		Error:      l.errMsg,
	}
	if l.pending != nil {
		p := l.pending.prompt
		v.Pending = &p
	}
	if l.result != nil {
		v.Shortfalls = l.result.Shortfalls
	}
	return v
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more updates
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(u Update) {
	for id, ch := range l.clients {
		select {
		case ch <- u:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the room stops.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
