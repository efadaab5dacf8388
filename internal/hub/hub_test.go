package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/engine/enginetest"
	"github.com/DoyleJ11/hots-draft-backend/internal/lobby"
)

func create(t *testing.T, h *Hub, code string, cfg lobby.Config) *lobby.Lobby {
	t.Helper()
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{Code: code, Config: cfg, Reply: reply}
	return <-reply
}

func get(h *Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- GetLobby{Code: code, Reply: reply}
	return <-reply
}

func manual(t *testing.T) lobby.Config {
	// A manual team keeps the room open until it is stopped.
	return lobby.Config{State: enginetest.State(t), Manual: []engine.Side{engine.SideFirst}}
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := NewHub(context.Background())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	lb1 := create(t, h, "ZED123", manual(t))
	lb2 := get(h, "ZED123")

	if lb1 == nil || lb2 == nil || lb1 != lb2 {
		t.Fatalf("expected same lobby pointer")
	}

	// Creating again under the same code returns the running room.
	lb3 := create(t, h, "ZED123", manual(t))
	assert.Same(t, lb1, lb3)

	assert.Nil(t, get(h, "NOPE00"))
}

func TestHub_RoomKnowsItsCode(t *testing.T) {
	h := NewHub(context.Background())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	lb := create(t, h, "CODE42", manual(t))
	reply := make(chan lobby.View, 1)
	lb.Inbox() <- lobby.GetState{Reply: reply}
	assert.Equal(t, "CODE42", (<-reply).Code)
}

func TestHub_ListAndRemove(t *testing.T) {
	h := NewHub(context.Background())
	defer func() { h.Inbox() <- ShutdownHub{} }()

	create(t, h, "BBBBBB", manual(t))
	lb := create(t, h, "AAAAAA", manual(t))

	list := make(chan []string, 1)
	h.Inbox() <- ListLobbies{Reply: list}
	assert.Equal(t, []string{"AAAAAA", "BBBBBB"}, <-list)

	h.Inbox() <- RemoveLobby{Code: "AAAAAA"}
	select {
	case <-lb.Done():
	case <-time.After(time.Second):
		t.Fatalf("removed room still running")
	}
	assert.Nil(t, get(h, "AAAAAA"))

	h.Inbox() <- ListLobbies{Reply: list}
	assert.Equal(t, []string{"BBBBBB"}, <-list)
}

func TestHub_ShutdownStopsRooms(t *testing.T) {
	h := NewHub(context.Background())
	a := create(t, h, "AAAAAA", manual(t))
	b := create(t, h, "BBBBBB", manual(t))

	h.Inbox() <- ShutdownHub{}
	for _, lb := range []*lobby.Lobby{a, b} {
		select {
		case <-lb.Done():
		case <-time.After(time.Second):
			t.Fatalf("room still running after hub shutdown")
		}
	}
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatalf("hub still running")
	}
	require.NotNil(t, a)
}
