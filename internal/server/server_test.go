package server

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/game"
)

func newTestServer(t *testing.T) (*GameServer, *game.Engine, *httptest.Server) {
	return newTestServerWithMeter(t, nil)
}

func newTestServerWithMeter(t *testing.T, meter metric.Meter) (*GameServer, *game.Engine, *httptest.Server) {
	t.Helper()

	cfg := config.DefaultGameConfig()
	cfg.BotCount = 0
	engine := game.NewEngine(game.Options{
		Config: cfg,
		World:  game.DefaultWorld(),
		Rand:   rand.New(rand.NewSource(1)),
		Logger: zerolog.Nop(),
		Meter:  meter,
	})

	gs := NewGameServer(engine, zerolog.Nop())
	go gs.Run()

	srv := httptest.NewServer(http.HandlerFunc(gs.HandleWebSocket))
	t.Cleanup(func() {
		srv.Close()
		gs.Shutdown()
	})
	return gs, engine, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one has the wanted type
func readUntil(t *testing.T, conn *websocket.Conn, want string, decode func([]byte, *map[string]any) error) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var msg map[string]any
		require.NoError(t, decode(data, &msg))
		if msg["type"] == want {
			return msg
		}
	}
}

func jsonDecode(data []byte, v *map[string]any) error {
	return json.Unmarshal(data, v)
}

func msgpackDecode(data []byte, v *map[string]any) error {
	return msgpack.Unmarshal(data, v)
}

func TestHandleWebSocket_JSONSession(t *testing.T) {
	gs, engine, srv := newTestServer(t)
	conn := dial(t, srv, "")

	hello := readUntil(t, conn, "hello", jsonDecode)
	assert.EqualValues(t, config.MaxHealth, hello["hp"])
	assert.Contains(t, hello, "spawn")
	assert.Eventually(t, func() bool { return gs.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"join","nickname":"Nova"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","x":3,"y":2,"z":4,"rotY":1}`)))

	assert.Eventually(t, func() bool {
		players := engine.Snapshot()
		return len(players) == 1 && players[0].Nickname == "Nova" && players[0].X == 3
	}, time.Second, 5*time.Millisecond)

	engine.BroadcastState()
	snapshot := readUntil(t, conn, "state", jsonDecode)
	players, ok := snapshot["players"].([]any)
	require.True(t, ok)
	require.Len(t, players, 1)
	assert.Equal(t, "Nova", players[0].(map[string]any)["nickname"])
}

func TestHandleWebSocket_MsgpackSession(t *testing.T) {
	_, engine, srv := newTestServer(t)
	conn := dial(t, srv, "?protocol=msgpack")

	hello := readUntil(t, conn, "hello", msgpackDecode)
	assert.Contains(t, hello, "id")

	frame, err := msgpack.Marshal(map[string]any{"type": "state", "x": 5.0, "y": 2.0, "z": 6.0, "rotY": 0.5})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, frame))

	assert.Eventually(t, func() bool {
		players := engine.Snapshot()
		return len(players) == 1 && players[0].X == 5 && players[0].Z == 6
	}, time.Second, 5*time.Millisecond)
}

// droppedByReason sums blazefield.dropped_updates per reason attribute
func droppedByReason(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := make(map[string]int64)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || m.Name != "blazefield.dropped_updates" {
				continue
			}
			for _, dp := range sum.DataPoints {
				reason, _ := dp.Attributes.Value(attribute.Key("reason"))
				counts[reason.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestHandleWebSocket_CountsDroppedFrames(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	_, engine, srv := newTestServerWithMeter(t, provider.Meter("server-test"))
	conn := dial(t, srv, "?protocol=msgpack")
	readUntil(t, conn, "hello", msgpackDecode)

	nonFinite, err := msgpack.Marshal(map[string]any{"type": "state", "x": math.NaN(), "y": 1.0, "z": 1.0, "rotY": 0.0})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, nonFinite))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","x":1}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))

	// Frames are handled in order, so once this one lands the drops are counted
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","x":7,"y":2,"z":7,"rotY":0}`)))
	assert.Eventually(t, func() bool {
		players := engine.Snapshot()
		return len(players) == 1 && players[0].X == 7
	}, time.Second, 5*time.Millisecond)

	counts := droppedByReason(t, reader)
	assert.Equal(t, int64(2), counts["missing_field"])
	assert.Equal(t, int64(1), counts["unknown_type"])
	assert.Equal(t, int64(1), counts["malformed"])
}

func TestHandleWebSocket_DisconnectRemovesEntity(t *testing.T) {
	gs, engine, srv := newTestServer(t)
	conn := dial(t, srv, "")
	readUntil(t, conn, "hello", jsonDecode)

	require.Len(t, engine.Snapshot(), 1)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return gs.ClientCount() == 0 && len(engine.Snapshot()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestShutdown_ClosesClients(t *testing.T) {
	gs, engine, srv := newTestServer(t)
	conn := dial(t, srv, "")
	readUntil(t, conn, "hello", jsonDecode)
	assert.Eventually(t, func() bool { return gs.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	gs.Shutdown()

	assert.Zero(t, gs.ClientCount())
	assert.Empty(t, engine.Snapshot())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
