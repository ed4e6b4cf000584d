package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feastfox/internal/models"
)

func dialHub(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(url, "http")+"/ws/meals", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishesWrites(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	rec := doJSON(t, s.Handler(), "POST", "/api/meals", models.MealCreate{Meal: "Soup"})
	created := decode[models.Meal](t, rec)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.ChangeEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.ChangeEvent{Kind: models.KindMealsChanged, Op: models.OpCreate, ID: created.ID}, ev)

	doJSON(t, s.Handler(), "DELETE", "/api/meals/"+created.ID, nil)
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.OpDelete, ev.Op)
}

func TestHub_FailedWriteNotPublished(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	doJSON(t, s.Handler(), "DELETE", "/api/meals/999", nil)
	s.hub.Publish(models.ChangeEvent{Kind: models.KindMealsChanged, Op: models.OpUpdate, ID: "marker"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev models.ChangeEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "marker", ev.ID, "the failed delete must not produce an event")
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return s.hub.Count() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_CloseRefusesClients(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn := dialHub(t, ts.URL)
	require.Eventually(t, func() bool { return s.hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	s.hub.Close()
	assert.Zero(t, s.hub.Count())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	late, _, err := websocket.DefaultDialer.DialContext(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/meals", nil)
	require.NoError(t, err, "the upgrade succeeds before the hub refuses")
	defer late.Close()
	late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.Error(t, err)
}

func TestHub_OriginCheck(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/meals"

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"no origin", "", true},
		{"allowed origin", "http://localhost:5173", true},
		{"foreign origin", "http://evil.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
			if tt.ok {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestHub_WildcardOrigin(t *testing.T) {
	hub := NewHub([]string{"*"})
	defer hub.Close()
	ts := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer ts.Close()

	header := http.Header{"Origin": []string{"http://anywhere.example"}}
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), header)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_DropsClientOnWriteFailure(t *testing.T) {
	serverConns := make(chan *websocket.Conn, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverConns <- conn
	}))
	defer ts.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()
	conn := <-serverConns

	// A closed socket fails the deadline and the write alike.
	require.NoError(t, conn.UnderlyingConn().Close())
	cl := &wsClient{conn: conn, done: make(chan struct{})}
	require.Error(t, cl.write(websocket.TextMessage, []byte("{}")))

	hub := NewHub(nil)
	require.True(t, hub.register(cl))
	hub.Publish(models.ChangeEvent{Kind: models.KindMealsChanged, Op: models.OpCreate, ID: "1"})
	assert.Zero(t, hub.Count())
}
