package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zap.NewNop())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func newTestClient(h *Hub, displayName string) *Client {
	// Conn == nil: в тестах pumps не запускаются, события читаются из Send
	c := NewClient(h, nil, uuid.New(), displayName, "student")
	h.Register(c)
	return c
}

func recvEvent(t *testing.T, c *Client) OutEvent {
	t.Helper()
	select {
	case raw := <-c.Send:
		var evt OutEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			t.Fatalf("unmarshal event: %v", err)
		}
		return evt
	case <-time.After(time.Second):
		t.Fatalf("no event within 1s")
		return OutEvent{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected event: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastToRoom_OnlyRoomMembers(t *testing.T) {
	h := newTestHub(t)
	sessionA := uuid.New()
	sessionB := uuid.New()

	alice := newTestClient(h, "Alice")
	bob := newTestClient(h, "Bob")
	carol := newTestClient(h, "Carol")

	h.JoinRoom(alice, sessionA)
	h.JoinRoom(bob, sessionA)
	h.JoinRoom(carol, sessionB)

	// Bob получил user-joined про Алису? Нет: Алиса вошла первой,
	// комната была пуста. Bob вошел вторым — уведомление ушло Алисе.
	evt := recvEvent(t, alice)
	if evt.Event != EventUserJoined {
		t.Fatalf("expected user-joined, got %q", evt.Event)
	}

	h.BroadcastToRoom(sessionA, EventNewMessage, map[string]string{"text": "hi"})

	for _, c := range []*Client{alice, bob} {
		evt := recvEvent(t, c)
		if evt.Event != EventNewMessage {
			t.Fatalf("%s: expected new-message, got %q", c.DisplayName, evt.Event)
		}
	}
	assertNoEvent(t, carol)
}

func TestBroadcastToRoomExcept_SkipsSender(t *testing.T) {
	h := newTestHub(t)
	session := uuid.New()

	alice := newTestClient(h, "Alice")
	bob := newTestClient(h, "Bob")
	h.JoinRoom(alice, session)
	h.JoinRoom(bob, session)
	recvEvent(t, alice) // user-joined про Боба

	h.BroadcastToRoomExcept(session, alice.ID, EventUserTyping, map[string]bool{"isTyping": true})

	evt := recvEvent(t, bob)
	if evt.Event != EventUserTyping {
		t.Fatalf("expected user-typing, got %q", evt.Event)
	}
	assertNoEvent(t, alice)
}

func TestJoinRoom_SingleRoomPerClient(t *testing.T) {
	h := newTestHub(t)
	sessionA := uuid.New()
	sessionB := uuid.New()

	alice := newTestClient(h, "Alice")
	h.JoinRoom(alice, sessionA)
	if !alice.InRoom(sessionA) {
		t.Fatalf("client not in room A")
	}

	h.JoinRoom(alice, sessionB)
	if !alice.InRoom(sessionB) || alice.InRoom(sessionA) {
		t.Fatalf("client must move to room B")
	}
	if h.PresentCount(sessionA) != 0 {
		t.Fatalf("room A should be empty, got %d", h.PresentCount(sessionA))
	}
}

func TestJoinRoom_Rejoin(t *testing.T) {
	h := newTestHub(t)
	session := uuid.New()

	alice := newTestClient(h, "Alice")
	bob := newTestClient(h, "Bob")
	h.JoinRoom(alice, session)
	h.JoinRoom(bob, session)
	recvEvent(t, alice) // user-joined про Боба

	// Повторный вход в ту же комнату — no-op без уведомлений
	h.JoinRoom(bob, session)
	assertNoEvent(t, alice)
	if h.PresentCount(session) != 2 {
		t.Fatalf("expected 2 present, got %d", h.PresentCount(session))
	}
}

func TestUnregister_NotifiesUserLeft(t *testing.T) {
	h := newTestHub(t)
	session := uuid.New()

	alice := newTestClient(h, "Alice")
	bob := newTestClient(h, "Bob")
	h.JoinRoom(alice, session)
	h.JoinRoom(bob, session)
	recvEvent(t, alice) // user-joined про Боба

	h.Unregister(bob)

	evt := recvEvent(t, alice)
	if evt.Event != EventUserLeft {
		t.Fatalf("expected user-left, got %q", evt.Event)
	}

	deadline := time.Now().Add(time.Second)
	for h.PresentCount(session) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 1 present after disconnect, got %d", h.PresentCount(session))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPresentUsers_DeduplicatesByUser(t *testing.T) {
	h := newTestHub(t)
	session := uuid.New()

	userID := uuid.New()
	tab1 := NewClient(h, nil, userID, "Alice", "student")
	tab2 := NewClient(h, nil, userID, "Alice", "student")
	h.Register(tab1)
	h.Register(tab2)
	h.JoinRoom(tab1, session)
	h.JoinRoom(tab2, session)

	if n := h.PresentCount(session); n != 1 {
		t.Fatalf("two tabs of one user must count once, got %d", n)
	}
}

func TestSendEvent_QueueFull(t *testing.T) {
	h := newTestHub(t)
	alice := newTestClient(h, "Alice")

	for i := 0; i < cap(alice.Send); i++ {
		alice.Send <- []byte("x")
	}
	if err := alice.SendEvent(EventError, nil); err != ErrClientQueueFull {
		t.Fatalf("expected ErrClientQueueFull, got %v", err)
	}
}
