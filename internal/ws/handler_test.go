package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/engine/enginetest"
	"github.com/DoyleJ11/hots-draft-backend/internal/hub"
	"github.com/DoyleJ11/hots-draft-backend/internal/lobby"
	"github.com/DoyleJ11/hots-draft-backend/internal/types"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := hub.NewHub(context.Background())
	t.Cleanup(func() { h.Inbox() <- hub.ShutdownHub{} })

	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.CreateLobby{
		Code:   "WS0001",
		Config: lobby.Config{State: enginetest.State(t), Manual: []engine.Side{engine.SideFirst}},
		Reply:  reply,
	}
	require.NotNil(t, <-reply)

	srv := httptest.NewServer(Handler(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func read(t *testing.T, ctx context.Context, c *websocket.Conn) types.ServerMessage {
	t.Helper()
	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, ctx context.Context, c *websocket.Conn, cm types.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(cm)
	require.NoError(t, err)
	require.NoError(t, c.Write(ctx, websocket.MessageText, data))
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	srv := newServer(t)

	cases := []struct {
		query string
		want  int
	}{
		{"", http.StatusBadRequest},
		{"?code=NOPE00", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, err := http.Get(srv.URL + "/ws" + tc.query)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, tc.want, resp.StatusCode, tc.query)
	}
}

func TestHandlerStreamsAndAcceptsChoices(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=WS0001"
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	snap := read(t, ctx, c)
	assert.Equal(t, "Snapshot", snap.Type)

	// Wait until slot 1 is parked on Alpha.
	msg := snap
	for msg.Prompt == nil {
		msg = read(t, ctx, c)
	}
	assert.Equal(t, 1, msg.Prompt.Slot)
	assert.Equal(t, "awaiting_choice", msg.Status)

	send(t, ctx, c, types.ClientMessage{Type: "Hover", Team: "Alpha"})
	e := read(t, ctx, c)
	assert.Equal(t, "Error", e.Type)
	assert.Equal(t, "unknown type", e.Error)

	send(t, ctx, c, types.ClientMessage{Type: "Choose", Team: "Bravo"})
	e = read(t, ctx, c)
	assert.Equal(t, "Error", e.Type)
	assert.Equal(t, lobby.ErrNotYourTurn.Error(), e.Error)

	require.NoError(t, c.Write(ctx, websocket.MessageText, []byte("{")))
	e = read(t, ctx, c)
	assert.Equal(t, "bad json", e.Error)

	send(t, ctx, c, types.ClientMessage{Type: "Choose", Team: "Alpha", Index: 1})
	dec := read(t, ctx, c)
	for dec.Type != "Decision" {
		dec = read(t, ctx, c)
	}
	require.NotNil(t, dec.Record)
	assert.Equal(t, 1, dec.Record.Slot)
	assert.Equal(t, msg.Prompt.Suggestions[0].Hero, dec.Record.Hero)
}
