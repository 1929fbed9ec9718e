package controlplane

import (
	"context"
	"errors"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/breakroom/internal/models"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_StreamsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	svc := newTestService()
	svc.Subscribe(hub.PublishResult)
	ts := httptest.NewServer(NewServer(svc, "", WithHub(hub)).Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	first := readEvent(t, conn)
	assert.Equal(t, EventSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Zero(t, first.Snapshot.TotalAway)
	waitForClients(t, hub, 1)

	// Results without a snapshot are not streamed.
	say(svc, "alice", "hello there")
	say(svc, "alice", "break")

	ev := readEvent(t, conn)
	assert.Equal(t, EventResult, ev.Type)
	require.NotNil(t, ev.Result)
	assert.Equal(t, models.OutcomeTransitioned, ev.Result.Outcome)
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 1, ev.Snapshot.Break.Count)
}

func TestHub_Broadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	ts := httptest.NewServer(NewServer(newTestService(), "", WithHub(hub)).Handler())
	defer ts.Close()

	a := dialHub(t, ts.URL)
	b := dialHub(t, ts.URL)
	readEvent(t, a)
	readEvent(t, b)
	waitForClients(t, hub, 2)

	hub.Broadcast(Event{Type: EventStatus, Text: "**30-Minute Status Update:**"})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, EventStatus, ev.Type)
		assert.Equal(t, "**30-Minute Status Update:**", ev.Text)
		assert.False(t, ev.Timestamp.IsZero())
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	ts := httptest.NewServer(NewServer(newTestService(), "", WithHub(hub)).Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	readEvent(t, conn)
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(nil)
	done := make(chan struct{})
	go func() {
		hub.Run(context.Background())
		close(done)
	}()

	ts := httptest.NewServer(NewServer(newTestService(), "", WithHub(hub)).Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	readEvent(t, conn)
	waitForClients(t, hub, 1)

	hub.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Zero(t, hub.ClientCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// Broadcasting after stop must not block.
	hub.Broadcast(Event{Type: EventPing})
}

func TestHub_StopReleasesPendingRegistration(t *testing.T) {
	// Run never receives the client, as when it has already returned.
	hub := NewHub(nil)

	ts := httptest.NewServer(NewServer(newTestService(), "", WithHub(hub)).Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	hub.Stop()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "client registered after the hub stopped")
	var netErr net.Error
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "connection left open after stop")
	}
	assert.Zero(t, hub.ClientCount())
}
