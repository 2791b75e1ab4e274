package live

import (
	"encoding/json"
	"testing"
	"time"
)

func registerClient(t *testing.T, h *Hub, campID int) *Client {
	t.Helper()
	client := h.NewClient(nil, campID)
	select {
	case h.Register <- client:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
	return client
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.send:
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("bad message payload: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestBroadcastReachesOnlyCampRoom(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	subscriber := registerClient(t, h, 7)
	other := registerClient(t, h, 8)

	h.BroadcastCampEvent(7, "registration_joined", map[string]int{"participants": 4})

	msg := receive(t, subscriber)
	if msg.Type != "registration_joined" {
		t.Errorf("type: got %q", msg.Type)
	}
	if msg.RoomID != "camp_7" {
		t.Errorf("room: got %q", msg.RoomID)
	}

	select {
	case raw := <-other.send:
		t.Errorf("client of another camp received message: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastSkipsSlowClient(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	client := registerClient(t, h, 7)
	// Забиваем буфер клиента
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("x")
	}

	done := make(chan struct{})
	go func() {
		h.BroadcastCampEvent(7, "registration_joined", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow client")
	}
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	h := NewHub(nil)
	go h.Run()

	client := registerClient(t, h, 7)
	h.Unregister <- client

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("expected closed channel after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}
}
