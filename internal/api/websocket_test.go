// websocket_test.go - Tests for the status stream hub
package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/elite-status-check/backend/internal/models"
	"github.com/elite-status-check/backend/internal/testutil"
)

func dialStream(t *testing.T, hub *StreamHub) (*websocket.Conn, func()) {
	t.Helper()

	e := echo.New()
	e.GET("/stream", hub.HandleStatusStream)
	server := httptest.NewServer(e)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return ws, func() {
		ws.Close()
		server.Close()
	}
}

func readStreamMessage(t *testing.T, ws *websocket.Conn) WSMessage {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg WSMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func TestStreamWelcomeAndBroadcast(t *testing.T) {
	source := testutil.NewFakeStatusSource()
	hub := NewStreamHub(source)
	ws, cleanup := dialStream(t, hub)
	defer cleanup()

	msg := readStreamMessage(t, ws)
	assert.Equal(t, MsgTypeConnected, msg.Type)

	// The welcome proves registration, so the broadcast cannot be missed
	hub.BroadcastSnapshot(models.StatusSnapshot{Flags: 1, ObservedAt: time.Now()})

	msg = readStreamMessage(t, ws)
	require.Equal(t, MsgTypeStatus, msg.Type)

	var payload models.FlagsResponse
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.True(t, payload.Flags["docked"])
	assert.False(t, payload.Flags["landed"])
	assert.Len(t, payload.Flags, 52)
}

func TestStreamSendsCurrentStateOnConnect(t *testing.T) {
	source := testutil.NewFakeStatusSource()
	source.SetSnapshot(models.StatusSnapshot{Flags: 69239048, ObservedAt: time.Now()})
	hub := NewStreamHub(source)
	ws, cleanup := dialStream(t, hub)
	defer cleanup()

	msg := readStreamMessage(t, ws)
	assert.Equal(t, MsgTypeConnected, msg.Type)

	msg = readStreamMessage(t, ws)
	require.Equal(t, MsgTypeStatus, msg.Type)

	var payload models.FlagsResponse
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.True(t, payload.Flags["in_srv"])
	assert.True(t, payload.Flags["lights_on"])
}

func TestStreamPingPong(t *testing.T) {
	hub := NewStreamHub(testutil.NewFakeStatusSource())
	ws, cleanup := dialStream(t, hub)
	defer cleanup()

	msg := readStreamMessage(t, ws)
	require.Equal(t, MsgTypeConnected, msg.Type)

	require.NoError(t, ws.WriteJSON(WSMessage{Type: MsgTypePing, Timestamp: time.Now().UnixMilli()}))

	msg = readStreamMessage(t, ws)
	assert.Equal(t, MsgTypePong, msg.Type)
}

func TestStreamSubscriberCleanup(t *testing.T) {
	hub := NewStreamHub(testutil.NewFakeStatusSource())
	ws, cleanup := dialStream(t, hub)
	defer cleanup()

	readStreamMessage(t, ws)
	assert.Equal(t, 1, hub.Subscribers())

	ws.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestStreamHubClose(t *testing.T) {
	hub := NewStreamHub(testutil.NewFakeStatusSource())
	ws, cleanup := dialStream(t, hub)
	defer cleanup()

	readStreamMessage(t, ws)
	hub.Close()

	assert.Equal(t, 0, hub.Subscribers())

	// Disconnected clients see the close as a read error
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)

	// Broadcasting after close is a no-op
	hub.BroadcastSnapshot(models.StatusSnapshot{Flags: 1, ObservedAt: time.Now()})
}
