package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phildougherty/quick-assistant/internal/assistant"
	"github.com/phildougherty/quick-assistant/internal/logging"
	"github.com/phildougherty/quick-assistant/internal/timers"
)

type stubController struct {
	muted bool
	said  []string
}

func (c *stubController) Status() map[string]interface{} {
	return map[string]interface{}{"state": "idle", "muted": c.muted}
}
func (c *stubController) Mute()            { c.muted = true }
func (c *stubController) Unmute()          { c.muted = false }
func (c *stubController) Say(text string)  { c.said = append(c.said, text) }

func newTestServer(t *testing.T) (*Server, *stubController, *httptest.Server) {
	t.Helper()

	logger := logging.NewLogger("error")
	logger.SetOutput(io.Discard)

	store, err := timers.NewStore(filepath.Join(t.TempDir(), "timers.csv"))
	require.NoError(t, err)

	controller := &stubController{}
	srv := NewServer("127.0.0.1:0", controller, store, NewHub(logger), logger)

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return srv, controller, ts
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestStatusEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t)

	var status map[string]interface{}
	getJSON(t, ts.URL+"/api/status", &status)
	assert.Equal(t, "idle", status["state"])
	assert.NotEmpty(t, status["timestamp"])
	assert.Equal(t, float64(0), status["event_clients"])
}

func TestTimersEndpoint(t *testing.T) {
	srv, _, ts := newTestServer(t)
	require.NoError(t, srv.store.Add("tea", time.Now().Add(time.Hour)))

	var body struct {
		Timers []struct {
			Name string    `json:"name"`
			At   time.Time `json:"at"`
		} `json:"timers"`
	}
	getJSON(t, ts.URL+"/api/timers", &body)
	require.Len(t, body.Timers, 1)
	assert.Equal(t, "tea", body.Timers[0].Name)
}

func TestMuteUnmuteEndpoints(t *testing.T) {
	_, controller, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/mute", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, controller.muted)

	resp, err = http.Post(ts.URL+"/api/unmute", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, controller.muted)
}

func TestSayEndpoint(t *testing.T) {
	_, controller, ts := newTestServer(t)

	body := bytes.NewBufferString(`{"text":"hello from the api"}`)
	resp, err := http.Post(ts.URL+"/api/say", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, controller.said, 1)
	assert.Equal(t, "hello from the api", controller.said[0])
}

func TestSayEndpointRejectsEmptyBody(t *testing.T) {
	_, controller, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/say", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, controller.said)
}

func TestWebsocketEventFeed(t *testing.T) {
	srv, _, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return srv.hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	srv.hub.Publish(assistant.Event{
		Type: assistant.EventTranscript,
		Text: "hello",
		Time: time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event assistant.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, assistant.EventTranscript, event.Type)
	assert.Equal(t, "hello", event.Text)
}

func TestHubDropsSlowClients(t *testing.T) {
	logger := logging.NewLogger("error")
	logger.SetOutput(io.Discard)
	hub := NewHub(logger)

	// Unbuffered channel with no reader stands in for a stalled client
	hub.clients[nil] = make(chan assistant.Event)
	hub.Publish(assistant.Event{Type: assistant.EventAssistantToken})
	assert.Zero(t, hub.ClientCount())
}
