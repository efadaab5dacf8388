package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/hub"
	"github.com/DoyleJ11/hots-draft-backend/internal/lobby"
	"github.com/DoyleJ11/hots-draft-backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	// Watchers rarely send anything; drop them only after a long silence.
	idleTimeout = 5 * time.Minute
)

var errUnknownType = errors.New("unknown type")

func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := logger.With(zap.String("code", code), zap.String("client", clientID))
		log.Debug("client connected")

		out := make(chan lobby.Update, 32)
		select {
		case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			conn.Close(websocket.StatusGoingAway, "draft room closed")
			return
		}
		defer func() {
			// The room may be gone already.
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for u := range out {
				if err := write(writeCtx, conn, toServerMessage(u)); err != nil {
					log.Debug("write failed", zap.Error(err))
				}
			}
			// Outbox closed: dropped as slow, or the room stopped.
			conn.Close(websocket.StatusGoingAway, "draft room closed")
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: "bad json"})
				continue
			}

			if err := choose(r.Context(), lb, cm); err != nil {
				_ = write(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
			}
		}
	}
}

// choose forwards a client decision to the room and waits for its verdict.
func choose(ctx context.Context, lb *lobby.Lobby, cm types.ClientMessage) error {
	if cm.Type != "Choose" {
		return errUnknownType
	}
	reply := make(chan error, 1)
	msg := lobby.Choose{
		Team:   cm.Team,
		Choice: engine.Choice{Index: cm.Index, Hero: cm.Hero, Player: cm.Player},
		Reply:  reply,
	}
	select {
	case lb.Inbox() <- msg:
	case <-lb.Done():
		return lobby.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-lb.Done():
		return lobby.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toServerMessage(u lobby.Update) types.ServerMessage {
	return types.ServerMessage{
		Type:       u.Type,
		Version:    u.Version,
		Status:     string(u.Status),
		Record:     u.Record,
		Prompt:     u.Prompt,
		Transcript: u.Transcript,
		Shortfalls: u.Shortfalls,
		Error:      u.Error,
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
