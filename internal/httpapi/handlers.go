package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/hub"
	"github.com/DoyleJ11/hots-draft-backend/internal/lobby"
	"github.com/DoyleJ11/hots-draft-backend/internal/prompt"
	"github.com/DoyleJ11/hots-draft-backend/internal/stats"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
	"github.com/DoyleJ11/hots-draft-backend/pkg/types"
)

// MaxBodySize limits the size of request bodies to 64KB
const MaxBodySize = 64 << 10

const defaultListLimit = 20

type Config struct {
	Hub      *hub.Hub
	Provider stats.Provider
	// Rules is called once per new draft so reloaded rules apply to the
	// next draft only.
	Rules  func() engine.Rules
	Store  store.Store
	Logger *zap.Logger
	// Mode is used when a request names no game mode.
	Mode string

	AllowedOrigins []string
	CreateRate     rate.Limit
	CreateBurst    int
}

type Handler struct {
	hub       *hub.Hub
	provider  stats.Provider
	rules     func() engine.Rules
	store     store.Store
	logger    *zap.Logger
	mode      string
	validator *validator.Validate
	limiter   *rate.Limiter
	origins   []string
}

func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := cfg.Rules
	if rules == nil {
		rules = engine.DefaultRules
	}
	limit, burst := cfg.CreateRate, cfg.CreateBurst
	if limit == 0 {
		limit = rate.Inf
	}
	return &Handler{
		hub:       cfg.Hub,
		provider:  cfg.Provider,
		rules:     rules,
		store:     cfg.Store,
		logger:    logger,
		mode:      cfg.Mode,
		validator: validator.New(),
		limiter:   rate.NewLimiter(limit, max(burst, 1)),
		origins:   cfg.AllowedOrigins,
	}
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateDraft fetches the draft inputs and starts a room for them.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	var req types.CreateDraftRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	first, second, ok := orderTeams(req)
	if !ok {
		h.errorResponse(w, http.StatusBadRequest, "first_pick must name one of the teams")
		return
	}
	mode := req.Mode
	if mode == "" {
		mode = h.mode
	}

	setup, err := stats.BuildSetup(r.Context(), h.provider, stats.SetupRequest{
		Map:    req.Map,
		Mode:   mode,
		First:  stats.TeamRequest{Name: first.Name, Players: first.Players},
		Second: stats.TeamRequest{Name: second.Name, Players: second.Players},
	})
	if err != nil {
		h.logger.Error("build draft setup", zap.Error(err))
		if errors.Is(err, stats.ErrProviderUnavailable) {
			h.errorResponse(w, http.StatusServiceUnavailable, "Stats source unavailable")
			return
		}
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load draft inputs")
		return
	}

	rules := h.rules()
	if req.Seed != nil {
		rules.Seed = *req.Seed
	}
	state, err := engine.NewState(setup, rules)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var manual []engine.Side
	for _, name := range req.Manual {
		side, ok := state.SideOf(name)
		if !ok {
			h.errorResponse(w, http.StatusBadRequest, "manual team "+strconv.Quote(name)+" is not in the draft")
			return
		}
		manual = append(manual, side)
	}

	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			h.errorResponse(w, http.StatusInternalServerError, "Failed to generate code")
			return
		}
		reply := make(chan *lobby.Lobby, 1)
		h.hub.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
		if <-reply == nil {
			code = c
			break
		}
		h.logger.Debug("collision on code, regenerating", zap.String("code", c))
	}

	draft := store.NewDraft(code, state)
	if h.store != nil {
		if err := h.store.Save(r.Context(), draft); err != nil {
			h.logger.Error("save draft", zap.Error(err))
			h.errorResponse(w, http.StatusInternalServerError, "Failed to save draft")
			return
		}
	}

	reply := make(chan *lobby.Lobby, 1)
	h.hub.Inbox() <- hub.CreateLobby{
		Code: code,
		Config: lobby.Config{
			State:  state,
			Manual: manual,
			Logger: h.logger,
			Store:  h.store,
			Draft:  draft,
		},
		Reply: reply,
	}
	if <-reply == nil {
		h.errorResponse(w, http.StatusInternalServerError, "Failed to create draft")
		return
	}

	h.logger.Info("draft created",
		zap.String("code", code),
		zap.String("map", req.Map),
		zap.String("first", first.Name),
		zap.String("second", second.Name),
	)
	h.jsonResponse(w, http.StatusCreated, types.CreateDraftResponse{ID: draft.ID.String(), Code: code})
}

func orderTeams(req types.CreateDraftRequest) (first, second types.TeamRequest, ok bool) {
	a, b := req.Teams[0], req.Teams[1]
	switch req.FirstPick {
	case a.Name:
		return a, b, true
	case b.Name:
		return b, a, true
	}
	return first, second, false
}

// GetDraft reports a running room, or the archive once the room is gone.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	if lb := h.lobby(code); lb != nil {
		reply := make(chan lobby.View, 1)
		select {
		case lb.Inbox() <- lobby.GetState{Reply: reply}:
		case <-lb.Done():
			h.archived(w, r, code)
			return
		}
		select {
		case v := <-reply:
			h.jsonResponse(w, http.StatusOK, viewFromLobby(v))
		case <-lb.Done():
			h.archived(w, r, code)
		}
		return
	}
	h.archived(w, r, code)
}

func (h *Handler) archived(w http.ResponseWriter, r *http.Request, code string) {
	d, ok := h.lookup(w, r, code)
	if !ok {
		return
	}
	h.jsonResponse(w, http.StatusOK, types.DraftView{
		Code:       d.Code,
		Status:     string(d.Status),
		Map:        d.Map,
		Teams:      []string{d.FirstTeam, d.SecondTeam},
		Transcript: d.Records,
		Error:      d.Error,
	})
}

// GetTranscript returns the archived transcript; ?format=text renders it as
// a table.
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, r, chi.URLParam(r, "code"))
	if !ok {
		return
	}
	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err := prompt.RenderTranscript(w, d.Records); err != nil {
			h.logger.Error("render transcript", zap.Error(err))
		}
		return
	}
	h.jsonResponse(w, http.StatusOK, transcriptFromDraft(*d))
}

func (h *Handler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.jsonResponse(w, http.StatusOK, []types.TranscriptResponse{})
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			h.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	drafts, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("list drafts", zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list drafts")
		return
	}
	out := make([]types.TranscriptResponse, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, transcriptFromDraft(d))
	}
	h.jsonResponse(w, http.StatusOK, out)
}

// StopDraft shuts a running room down; the draft is archived as aborted.
func (h *Handler) StopDraft(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if h.lobby(code) == nil {
		h.errorResponse(w, http.StatusNotFound, "Draft not found")
		return
	}
	h.hub.Inbox() <- hub.RemoveLobby{Code: code}
	w.WriteHeader(http.StatusNoContent)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) lobby(code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.hub.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, code string) (*store.Draft, bool) {
	if h.store == nil {
		h.errorResponse(w, http.StatusNotFound, "Draft not found")
		return nil, false
	}
	d, err := h.store.GetByCode(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Draft not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("load draft", zap.String("code", code), zap.Error(err))
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load draft")
		return nil, false
	}
	return d, true
}

func viewFromLobby(v lobby.View) types.DraftView {
	return types.DraftView{
		Code:       v.Code,
		Status:     string(v.Status),
		Map:        v.Map,
		Teams:      v.Teams[:],
		Manual:     v.Manual,
		Version:    v.Version,
		Clients:    v.NumClients,
		Pending:    v.Pending,
		Transcript: v.Transcript,
		Shortfalls: v.Shortfalls,
		Error:      v.Error,
	}
}

func transcriptFromDraft(d store.Draft) types.TranscriptResponse {
	out := types.TranscriptResponse{
		ID:        d.ID.String(),
		Code:      d.Code,
		Status:    string(d.Status),
		Seed:      d.Seed,
		Records:   d.Records,
		Error:     d.Error,
		CreatedAt: d.CreatedAt.Format(time.RFC3339),
	}
	if d.CompletedAt != nil {
		out.FinishedAt = d.CompletedAt.Format(time.RFC3339)
	}
	return out
}

func (h *Handler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, types.ErrorResponse{Error: message})
}

// rateLimit guards draft creation, which fans out to the stats source.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.limiter.Allow() {
			h.errorResponse(w, http.StatusTooManyRequests, "Too many drafts, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
