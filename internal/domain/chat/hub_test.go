package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatebot/internal/pkg/logger"
)

func TestHub_SendToOfflineUser(t *testing.T) {
	hub := NewHub(logger.Discard())
	assert.False(t, hub.IsOnline(1))
	assert.False(t, hub.SendToUser(1, newReadEvent(1, 2)))
}

func TestHub_RoundTrip(t *testing.T) {
	hub := NewHub(logger.Discard())
	received := make(chan ClientMessage, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, 7, func(msg ClientMessage) { received <- msg })
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(7) }, time.Second, 10*time.Millisecond)

	require.True(t, hub.SendToUser(7, newTypingEvent(3, 8, true)))
	var ev ServerEvent
	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, client.ReadJSON(&ev))
	assert.Equal(t, EventTyping, ev.Type)
	assert.Equal(t, int64(3), ev.ChatID)
	assert.True(t, ev.IsTyping)

	require.NoError(t, client.WriteJSON(ClientMessage{Type: "read", ChatID: 3}))
	select {
	case msg := <-received:
		assert.Equal(t, "read", msg.Type)
		assert.Equal(t, int64(3), msg.ChatID)
	case <-time.After(time.Second):
		t.Fatal("client message not dispatched")
	}

	client.Close()
	require.Eventually(t, func() bool { return !hub.IsOnline(7) }, time.Second, 10*time.Millisecond)
}
