package controllers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/sims/internal/app/models"
	"github.com/yigit/sims/internal/app/models/dto"
)

func TestNotificationStream(t *testing.T) {
	h := newHarness(t)
	student := h.demoStudent()
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notifications/stream"

	_, resp, err := gorilla.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := gorilla.DefaultDialer.Dial(base+"?access_token="+h.studentToken(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	recipient := models.StudentRecipient(student.ID)
	require.Eventually(t, func() bool { return h.hub.ClientsCount(recipient) == 1 }, time.Second, 10*time.Millisecond)

	rec := h.do(http.MethodPost, "/api/v1/notifications", h.adminToken(), dto.SendNotificationRequest{
		RecipientType: "STUDENT",
		RecipientID:   student.ID,
		Title:         "Lab moved",
		Message:       "CS302 lab is in room 204 today",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var pushed map[string]any
	require.NoError(t, json.Unmarshal(data, &pushed))
	assert.Equal(t, "Lab moved", pushed["title"])
	assert.EqualValues(t, student.ID, pushed["recipient_id"])
}
