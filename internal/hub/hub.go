package hub

import (
	"context"
	"slices"

	"github.com/DoyleJ11/hots-draft-backend/internal/lobby"
	"github.com/DoyleJ11/hots-draft-backend/internal/metrics"
)

type HubMsg interface{ isHubMsg() }

// CreateLobby starts a draft room under Code. An existing room with that
// code is returned untouched and Config is ignored.
type CreateLobby struct {
	Code   string
	Config lobby.Config
	Reply  chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// ListLobbies replies with the codes of all registered rooms, sorted.
type ListLobbies struct {
	Reply chan []string
}

// RemoveLobby stops the room and forgets its code.
type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	ctx     context.Context
	cancel  context.CancelFunc
}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (ListLobbies) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

func NewHub(parent context.Context) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					msg.Reply <- lb
					break
				}
				cfg := msg.Config
				cfg.Code = msg.Code
				lb := lobby.NewLobby(h.ctx, cfg)
				h.lobbies[msg.Code] = lb
				metrics.RoomOpened()
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				slices.Sort(codes)
				msg.Reply <- codes

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					stopLobby(lb)
					delete(h.lobbies, msg.Code)
					metrics.RoomClosed()
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for code, lb := range h.lobbies {
		stopLobby(lb)
		delete(h.lobbies, code)
		metrics.RoomClosed()
	}
	h.cancel()
}

func stopLobby(lb *lobby.Lobby) {
	select {
	case lb.Inbox() <- lobby.Shutdown{}:
	case <-lb.Done():
	}
}
