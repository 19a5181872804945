package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunargen/cache"
	"lunargen/core"
	"lunargen/export"
	"lunargen/terrain"
)

func smallDefaults() core.GenerationParams {
	p := core.DefaultParams()
	p.LatSegments, p.LonSegments = 10, 12
	p.CraterDensity = 0.2
	return p
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *httptest.Server, *cache.Memory) {
	t.Helper()
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	memory := cache.NewMemory(8)
	service := NewService(terrain.NewGenerator(), memory, metrics, nil)
	srv := New(service, registry, metrics, smallDefaults(), nil, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts, memory
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestGenerateJSONAndCache(t *testing.T) {
	_, ts, memory := newTestServer(t)

	first := postJSON(t, ts.URL+"/generate", `{"seed": 42}`)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "MISS", first.Header.Get("X-Cache"))

	var data core.MeshData
	require.NoError(t, json.NewDecoder(first.Body).Decode(&data))
	assert.Equal(t, "mesh", data.Type)
	assert.Equal(t, uint64(42), data.Seed)
	assert.Len(t, data.Vertices, core.SphereVertexCount(10, 12))
	assert.Len(t, data.Normals, len(data.Vertices))
	assert.Len(t, data.Indices, 3*core.SphereTriangleCount(10, 12))
	require.NotNil(t, data.Stats)
	assert.Equal(t, terrain.CraterCount(0.2), data.Stats.Craters)
	assert.Equal(t, 1, memory.Len())

	second := postJSON(t, ts.URL+"/generate", `{"seed": 42}`)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "HIT", second.Header.Get("X-Cache"))

	var cached core.MeshData
	require.NoError(t, json.NewDecoder(second.Body).Decode(&cached))
	assert.Equal(t, data.Vertices, cached.Vertices)
	assert.Equal(t, data.Indices, cached.Indices)
	assert.Equal(t, data.Stats.Mountains, cached.Stats.Mountains)
	assert.Equal(t, data.Stats.Craters, cached.Stats.Craters)
}

func TestGenerateUnseededIsNotCached(t *testing.T) {
	_, ts, memory := newTestServer(t)

	resp := postJSON(t, ts.URL+"/generate", `{}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.Equal(t, 0, memory.Len())
}

func TestGenerateRejectsBadParams(t *testing.T) {
	_, ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"too few segments", `{"latSegments": 2}`},
		{"negative size", `{"size": -1}`},
		{"unknown field", `{"radius": 3}`},
		{"not json", `{"seed": `},
		{"wrong type", `{"latSegments": "many"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/generate", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGenerateAcceptsStringNumbers(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/generate", `{"latSegments": "6", "lonSegments": "7", "craterDensity": "0", "seed": "3"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data core.MeshData
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Len(t, data.Vertices, core.SphereVertexCount(6, 7))
	assert.Equal(t, uint64(3), data.Seed)
}

func TestGenerateSegmentCap(t *testing.T) {
	_, ts, _ := newTestServer(t)

	// Valid for uint32 indices, but far past the per-request cap
	resp := postJSON(t, ts.URL+"/generate", `{"latSegments": 60000, "lonSegments": 60000}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "latSegments")
	assert.Contains(t, body["error"], "lonSegments")

	_, capped, _ := newTestServer(t, WithMaxSegments(16))
	bin, err := http.Get(capped.URL + "/generate.bin?latSegments=17")
	require.NoError(t, err)
	defer bin.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bin.StatusCode)

	ok := postJSON(t, capped.URL+"/generate", `{"latSegments": 16, "lonSegments": 16}`)
	assert.Equal(t, http.StatusOK, ok.StatusCode)

	_, uncapped, _ := newTestServer(t, WithMaxSegments(0))
	wide := postJSON(t, uncapped.URL+"/generate", `{"latSegments": 3, "lonSegments": 1500}`)
	assert.Equal(t, http.StatusOK, wide.StatusCode)
}

func TestGenerateBinary(t *testing.T) {
	_, ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/generate.bin?seed=7&latSegments=8&lonSegments=9")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "7", resp.Header.Get("X-Seed"))

	mesh, err := export.ReadBinary(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, core.SphereVertexCount(8, 9), mesh.VertexCount())
	assert.Equal(t, core.SphereTriangleCount(8, 9), mesh.TriangleCount())

	bad, err := http.Get(ts.URL + "/generate.bin?lonSegments=1")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts, _ := newTestServer(t)

	postJSON(t, ts.URL+"/generate", `{"seed": 1}`)
	postJSON(t, ts.URL+"/generate", `{"seed": 1}`)
	postJSON(t, ts.URL+"/generate", `{"latSegments": 1}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	text := buf.String()

	assert.Contains(t, text, `lunargen_generations_total{outcome="generated"} 1`)
	assert.Contains(t, text, `lunargen_generations_total{outcome="cached"} 1`)
	assert.Contains(t, text, `lunargen_generations_total{outcome="invalid"} 1`)
	assert.Contains(t, text, "lunargen_cache_hits_total 1")
	assert.Contains(t, text, "lunargen_cache_misses_total 1")
	assert.Contains(t, text, "lunargen_generation_seconds_count 1")
}

// wsMessage covers both mesh and error pushes
type wsMessage struct {
	Type     string       `json:"type"`
	Seed     uint64       `json:"seed"`
	Vertices [][3]float32 `json:"vertices"`
	Error    string       `json:"error"`
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil returns the first message accepted by match
func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestWebSocketStreamsLatestMesh(t *testing.T) {
	srv, ts, _ := newTestServer(t)
	conn := dial(t, ts)

	initial := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "mesh" })
	assert.Len(t, initial.Vertices, core.SphereVertexCount(10, 12))
	assert.Equal(t, 1, srv.ClientCount())

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "generate",
		"params": map[string]any{"seed": 99, "latSegments": "5", "lonSegments": 6},
	}))
	updated := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "mesh" && m.Seed == 99 })
	assert.Len(t, updated.Vertices, core.SphereVertexCount(5, 6))
}

func TestWebSocketReportsBadParams(t *testing.T) {
	_, ts, _ := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"params": map[string]any{"latSegments": 1},
	}))
	msg := readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, msg.Error, "latSegments")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"params": map[string]any{"lonSegments": 5000},
	}))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, msg.Error, "lonSegments")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.NotEmpty(t, msg.Error)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "explode"}))
	msg = readUntil(t, conn, func(m wsMessage) bool { return m.Type == "error" })
	assert.Contains(t, msg.Error, "explode")
}

func TestWebSocketClientRemovedOnClose(t *testing.T) {
	srv, ts, _ := newTestServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, func(m wsMessage) bool { return m.Type == "mesh" })

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	assert.Eventually(t, func() bool { return srv.ClientCount() == 0 }, 5*time.Second, 10*time.Millisecond)
}
