// Climbmap - Geotagged Climbing Observation Maps
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/climbmap

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/tomtom215/climbmap/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// setupHub starts a hub that is stopped when the test ends.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a connectionless client for routing tests.
func createTestClient(hub *Hub, sessionID string, buffer int) *Client {
	return &Client{
		id:        clientIDCounter.Add(1),
		sessionID: sessionID,
		hub:       hub,
		send:      make(chan Message, buffer),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("client %d received nothing", c.id)
		return Message{}
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Errorf("client %d unexpectedly received %q", c.id, msg.Type)
	case <-time.After(30 * time.Millisecond):
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()
	if hub.clients == nil || hub.outbound == nil || hub.Register == nil || hub.Unregister == nil {
		t.Fatal("NewHub left a field uninitialized")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d, want 0", hub.GetClientCount())
	}
}

func TestHub_PublishToSessionRoutesBySession(t *testing.T) {
	hub := setupHub(t)

	a1 := createTestClient(hub, "session-a", 8)
	a2 := createTestClient(hub, "session-a", 8)
	b := createTestClient(hub, "session-b", 8)
	for _, c := range []*Client{a1, a2, b} {
		hub.Register <- c
	}
	waitForClients(t, hub, 3)

	if got := hub.SessionClientCount("session-a"); got != 2 {
		t.Errorf("SessionClientCount(session-a) = %d, want 2", got)
	}

	hub.PublishToSession("session-a", MessageTypeSnapshot, map[string]int{"version": 3})

	for _, c := range []*Client{a1, a2} {
		msg := receive(t, c)
		if msg.Type != MessageTypeSnapshot {
			t.Errorf("client %d got type %q", c.id, msg.Type)
		}
	}
	assertSilent(t, b)
}

func TestHub_PublishToSessionIgnoresEmptyID(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub, "session-a", 8)
	hub.Register <- c
	waitForClients(t, hub, 1)

	hub.PublishToSession("", MessageTypeSnapshot, nil)
	assertSilent(t, c)
}

func TestHub_BroadcastJSONReachesEveryone(t *testing.T) {
	hub := setupHub(t)
	a := createTestClient(hub, "session-a", 8)
	b := createTestClient(hub, "session-b", 8)
	hub.Register <- a
	hub.Register <- b
	waitForClients(t, hub, 2)

	hub.BroadcastJSON(MessageTypeObservationCreated, map[string]int64{"id": 7})

	for _, c := range []*Client{a, b} {
		if msg := receive(t, c); msg.Type != MessageTypeObservationCreated {
			t.Errorf("client %d got type %q", c.id, msg.Type)
		}
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub, "session-a", 8)
	hub.Register <- c
	waitForClients(t, hub, 1)

	hub.Unregister <- c
	waitForClients(t, hub, 0)

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}

	// Unregistering an unknown client is a no-op.
	hub.Unregister <- createTestClient(hub, "session-a", 1)
	waitForClients(t, hub, 0)
}

func TestHub_SlowClientDisconnected(t *testing.T) {
	hub := NewHub()
	slow := createTestClient(hub, "session-a", 1)
	fast := createTestClient(hub, "session-a", 8)
	hub.clients[slow] = true
	hub.clients[fast] = true

	msg := Message{Type: MessageTypeSnapshot}
	hub.deliver(delivery{sessionID: "session-a", message: msg})
	hub.deliver(delivery{sessionID: "session-a", message: msg})

	if hub.clients[slow] {
		t.Error("slow client should have been removed")
	}
	if !hub.clients[fast] {
		t.Error("fast client should still be registered")
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client buffered %d messages, want 2", len(fast.send))
	}
}

func TestHub_FullQueueDrops(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.outbound); i++ {
		hub.PublishToSession("session-a", MessageTypeSnapshot, i)
	}
	if ok := hub.enqueue(delivery{sessionID: "session-a"}); ok {
		t.Error("enqueue on a full queue should report a drop")
	}
}

func TestHub_RunWithContextClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	clients := []*Client{
		createTestClient(hub, "session-a", 1),
		createTestClient(hub, "session-b", 1),
	}
	for _, c := range clients {
		hub.Register <- c
	}
	waitForClients(t, hub, 2)

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunWithContext did not return")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("GetClientCount() = %d after shutdown", hub.GetClientCount())
	}
	for _, c := range clients {
		if _, ok := <-c.send; ok {
			t.Errorf("client %d send channel still open", c.id)
		}
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %q", got)
	}

	expired, cancel2 := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel2()
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %q", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	data, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatalf("MarshalMessage() error: %v", err)
	}
	if string(data) != `{"type":"pong","data":null}` {
		t.Errorf("MarshalMessage() = %s", data)
	}
}
