/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) dial(t *testing.T, code string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws/table/"+code, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func next(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var out map[string]any
	require.NoError(t, conn.ReadJSON(&out))
	return out
}

// waitSubscribers blocks until n viewers are attached to code, so a
// broadcast sent afterwards reaches all of them.
func (s *testServer) waitSubscribers(t *testing.T, code string, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.tt.hubs.Subscribers(code) == n
	}, 2*time.Second, 5*time.Millisecond)
}

func TestLive_UnknownTable(t *testing.T) {
	s := newTestServer(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.URL, "http")+"/ws/table/ZZZZ", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, s.tt.hubs.Subscribers("ZZZZ"))
}

func TestLive_Scenario(t *testing.T) {
	s := newTestServer(t, nil)
	code := s.mustCreate(t, `{"name":"Game Night","sharing":{"type":"public"}}`)

	a := s.dial(t, code)
	b := s.dial(t, code)
	s.waitSubscribers(t, code, 2)

	load := `{"t":"iconpack_load","pack":1}`
	create := `{"t":"element_create","icon_pack":1,"icon_id":5,"top":10,"left":20}`

	send(t, a, load)
	for _, c := range []*websocket.Conn{a, b} {
		assert.Equal(t, map[string]any{"t": "iconpack_load", "pack": float64(1)}, next(t, c))
	}

	// The repeated load is dropped, so the next frame is the create.
	send(t, a, load)
	send(t, a, create)
	for _, c := range []*websocket.Conn{a, b} {
		assert.Equal(t, map[string]any{
			"t":         "element_create",
			"id":        float64(1),
			"icon_pack": float64(1),
			"icon_id":   float64(5),
			"top":       float64(10),
			"left":      float64(20),
		}, next(t, c))
	}

	send(t, b, create)
	for _, c := range []*websocket.Conn{a, b} {
		assert.Equal(t, float64(2), next(t, c)["id"])
	}

	send(t, a, `{"t":"element_delete","id":1}`)
	for _, c := range []*websocket.Conn{a, b} {
		assert.Equal(t, map[string]any{"t": "element_delete", "id": float64(1)}, next(t, c))
	}

	send(t, a, `{"t":"position","id":1,"top":0,"left":0}`)
	send(t, a, `{"t":"action","act":"shuffle"}`)
	send(t, a, `{"t":"element_create","icon_pack":2,"icon_id":1,"top":0,"left":0}`)
	send(t, a, `not even json`)
	send(t, a, `{"t":"position","id":2,"top":3.5,"left":4}`)
	for _, c := range []*websocket.Conn{a, b} {
		assert.Equal(t, map[string]any{"t": "position", "id": float64(2), "top": 3.5, "left": float64(4)}, next(t, c),
			"dropped updates produce no frames")
	}

	resp, err := http.Get(s.URL + "/api/table/" + code + "/state")
	require.NoError(t, err)
	state := decode[map[string]any](t, resp)
	assert.Equal(t, map[string]any{
		"2": map[string]any{
			"icon_pack":    float64(1),
			"icon_id":      float64(5),
			"top":          3.5,
			"left":         float64(4),
			"public_state": map[string]any{},
		},
	}, state["elements"])
	assert.Equal(t, []any{float64(1)}, state["icon_packs"])
}

func TestLive_TablesAreIsolated(t *testing.T) {
	s := newTestServer(t, nil)
	first := s.mustCreate(t, `{"name":"first"}`)
	second := s.mustCreate(t, `{"name":"second"}`)

	a := s.dial(t, first)
	b := s.dial(t, second)
	s.waitSubscribers(t, first, 1)
	s.waitSubscribers(t, second, 1)

	send(t, a, `{"t":"iconpack_load","pack":1}`)
	assert.Equal(t, "iconpack_load", next(t, a)["t"])

	send(t, b, `{"t":"iconpack_load","pack":2}`)
	assert.Equal(t, float64(2), next(t, b)["pack"], "the other table's broadcast never arrives here")
}

func TestLive_OversizedMessageDisconnects(t *testing.T) {
	s := newTestServer(t, nil, func(c *Config) { c.maxMessageSize = 64 })
	code := s.mustCreate(t, `{"name":"tiny"}`)

	conn := s.dial(t, code)
	s.waitSubscribers(t, code, 1)

	send(t, conn, `{"t":"action","act":"`+strings.Repeat("x", 200)+`"}`)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	s.waitSubscribers(t, code, 0)
	_, err = s.tt.registry.Lookup(code)
	assert.NoError(t, err, "disconnecting viewers leaves the table alone")
}

func TestLive_SweepDisconnectsViewers(t *testing.T) {
	s := newTestServer(t, nil, func(c *Config) { c.tableTimeout = time.Nanosecond })
	code := s.mustCreate(t, `{"name":"short lived"}`)

	conn := s.dial(t, code)
	s.waitSubscribers(t, code, 1)

	time.Sleep(time.Millisecond)
	assert.Equal(t, 1, s.tt.registry.Sweep())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)

	resp, err := http.Get(s.URL + "/api/table/" + code + "/state")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
