package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
)

func startHub(t *testing.T, recipient models.Recipient, origins ...string) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop(), origins)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, recipient)
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPushesToRecipient(t *testing.T) {
	student := models.StudentRecipient(7)
	hub, srv := startHub(t, student)
	conn := dial(t, srv, nil)

	require.Eventually(t, func() bool { return hub.ClientsCount(student) == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.Publish(ctx, &models.Notification{ID: 1, Recipient: models.StudentRecipient(8), Title: "not yours"}))
	require.NoError(t, hub.Publish(ctx, &models.Notification{
		ID:        2,
		Recipient: student,
		Type:      models.NotificationResultPublished,
		Title:     "Result published",
		Message:   "CS301: A",
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.EqualValues(t, 2, msg["id"])
	assert.Equal(t, "Result published", msg["title"])
	assert.Equal(t, "STUDENT", msg["recipient_type"])
}

func TestHubDropsClosedStreams(t *testing.T) {
	teacher := models.TeacherRecipient(3)
	hub, srv := startHub(t, teacher)
	conn := dial(t, srv, nil)

	require.Eventually(t, func() bool { return hub.ClientsCount(teacher) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return hub.ClientsCount(teacher) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	_, srv := startHub(t, models.AdminRecipient(1), "https://portal.sims.edu")

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, http.Header{"Origin": []string{"https://portal.sims.edu"}})
	assert.NotNil(t, conn)
}

func TestHubStoppedRefusesNewStreams(t *testing.T) {
	admin := models.AdminRecipient(1)
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop(), nil)
	go hub.Run(ctx)

	served := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served <- hub.Serve(w, r, admin)
	}))
	defer srv.Close()

	open := dial(t, srv, nil)
	require.NoError(t, <-served)
	require.Eventually(t, func() bool { return hub.ClientsCount(admin) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.ClientsCount(admin))

	// The open stream is closed by the server and its read loop exits
	require.NoError(t, open.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := open.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseGoingAway, websocket.CloseNormalClosure), "got %v", err)
	open.Close()

	late := dial(t, srv, nil)
	select {
	case err := <-served:
		assert.ErrorIs(t, err, ErrHubClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve blocked after the hub stopped")
	}

	require.NoError(t, late.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = late.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	require.NoError(t, hub.Publish(context.Background(), &models.Notification{ID: 1, Recipient: admin}))
}
