package standingslive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/ws/events/{eventID}", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, eventID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events/" + eventID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, eventID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Subscribers(eventID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHubPushesOnlyToTheEventRoom(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	defer hub.Close()
	srv := newTestServer(t, hub)

	e1 := dial(t, srv, "e1")
	e2 := dial(t, srv, "e2")
	waitForSubscribers(t, hub, "e1", 1)
	waitForSubscribers(t, hub, "e2", 1)

	hub.StandingsUpdated(context.Background(), standingsevents.StandingsRecomputedPayloadV1{EventID: "e1", Competitors: 4})

	require.NoError(t, e1.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := e1.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string                                       `json:"type"`
		EventID string                                       `json:"event_id"`
		Payload standingsevents.StandingsRecomputedPayloadV1 `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageStandingsUpdated, msg.Type)
	assert.Equal(t, "e1", msg.EventID)
	assert.Equal(t, 4, msg.Payload.Competitors)

	require.NoError(t, e2.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = e2.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	srv := newTestServer(t, hub)

	conn := dial(t, srv, "e1")
	waitForSubscribers(t, hub, "e1", 1)

	require.NoError(t, conn.Close())
	waitForSubscribers(t, hub, "e1", 0)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), []string{"https://tab.example"})
	srv := newTestServer(t, hub)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events/e1"
	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
	assert.Equal(t, 0, hub.Subscribers("e1"))
}
