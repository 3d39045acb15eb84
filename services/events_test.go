package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBroadcastSurvivesClosedSubscriber(t *testing.T) {
	hub := NewEventHub()

	dead := &eventClient{send: make(chan []byte, 1)}
	live := &eventClient{send: make(chan []byte, 1)}
	hub.clients[dead] = true
	hub.clients[live] = true

	// the subscriber unregistered right after Broadcast snapshotted the
	// client list: its send channel is already closed
	close(dead.send)

	assert.NotPanics(t, func() {
		hub.Broadcast(GameEvent{Type: EventGameStarted, GameID: 1, AdminID: 2, At: time.Now()})
	})

	// the remaining subscriber still gets the event
	select {
	case msg := <-live.send:
		assert.Contains(t, string(msg), EventGameStarted)
	default:
		t.Fatal("live subscriber did not receive the event")
	}
}

func TestBroadcastDropsEventForSlowSubscriber(t *testing.T) {
	hub := NewEventHub()

	slow := &eventClient{send: make(chan []byte)} // unbuffered, nobody reading
	hub.clients[slow] = true

	done := make(chan struct{})
	go func() {
		hub.Broadcast(GameEvent{Type: EventGameEnded, GameID: 3, AdminID: 2, At: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a slow subscriber")
	}
}
