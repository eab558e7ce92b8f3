package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/casetrace/linkboard/pkg/errors"
	"github.com/casetrace/linkboard/pkg/graph"
	"github.com/casetrace/linkboard/pkg/session"
	"github.com/casetrace/linkboard/pkg/store"
)

func errFor(code string) error {
	return errors.New(errors.Code(code), "probe")
}

// wsFrame is the slice of the frame envelope the live tests assert on.
type wsFrame struct {
	Stats struct {
		Nodes int `json:"nodes"`
	} `json:"stats"`
}

func testDocument() graph.Document {
	return graph.Document{
		Name: "acme-case",
		Nodes: []graph.DocumentNode{
			{ID: "acme", Label: "Acme Holdings", Type: "company"},
			{ID: "freeman", Label: "B. Freeman", Type: "person"},
			{ID: "acct-77", Label: "Acct 77", Type: "account"},
		},
		Edges: []graph.DocumentEdge{
			{Source: "freeman", Target: "acme", Label: "director"},
			{Source: "acme", Target: "acct-77", Label: "controls"},
		},
	}
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(Config{
		Store:    store.NewMemoryStore(),
		Sessions: session.NewMemoryStore(),
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.closeBoards()
		ts.Close()
	})
	return srv, ts
}

func postGraph(t *testing.T, ts *httptest.Server) store.Record {
	t.Helper()
	data, err := graph.MarshalDocument(testDocument())
	if err != nil {
		t.Fatalf("MarshalDocument error: %v", err)
	}
	resp, err := http.Post(ts.URL+"/api/graphs", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST /api/graphs error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /api/graphs status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var rec store.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode saved record: %v", err)
	}
	return rec
}

func decodeErrorCode(t *testing.T, body io.Reader) string {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return env.Error.Code
}

func TestServerGraphCRUD(t *testing.T) {
	_, ts := newTestServer(t)

	rec := postGraph(t, ts)
	if rec.ID == "" {
		t.Fatal("Saved record should have an id")
	}
	if rec.Name != "acme-case" {
		t.Errorf("Name = %q, want acme-case", rec.Name)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	// Get
	resp, err := http.Get(ts.URL + "/api/graphs/" + rec.ID)
	if err != nil {
		t.Fatalf("GET graph error: %v", err)
	}
	var got store.Record
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode graph: %v", err)
	}
	resp.Body.Close()
	if len(got.Graph.Nodes) != 3 || len(got.Graph.Edges) != 2 {
		t.Errorf("Got %d nodes, %d edges; want 3 and 2", len(got.Graph.Nodes), len(got.Graph.Edges))
	}

	// List
	resp, err = http.Get(ts.URL + "/api/graphs")
	if err != nil {
		t.Fatalf("GET list error: %v", err)
	}
	var sums []store.Summary
	if err := json.NewDecoder(resp.Body).Decode(&sums); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	resp.Body.Close()
	if len(sums) != 1 || sums[0].Nodes != 3 {
		t.Errorf("Listing = %+v, want one summary with 3 nodes", sums)
	}

	// Replace via PUT keeps the id
	data, _ := graph.MarshalDocument(testDocument())
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/graphs/"+rec.ID, bytes.NewReader(data))
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT graph error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// Delete
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/graphs/"+rec.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE graph error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	// Gone
	resp, err = http.Get(ts.URL + "/api/graphs/" + rec.ID)
	if err != nil {
		t.Fatalf("GET deleted graph error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET deleted status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	if code := decodeErrorCode(t, resp.Body); code != "GRAPH_NOT_FOUND" {
		t.Errorf("Error code = %q, want GRAPH_NOT_FOUND", code)
	}
}

func TestServerSaveRejectsBadBody(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/graphs", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("POST error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestServerRenderArtifact(t *testing.T) {
	_, ts := newTestServer(t)
	rec := postGraph(t, ts)

	resp, err := http.Get(ts.URL + "/api/graphs/" + rec.ID + "/render?format=svg")
	if err != nil {
		t.Fatalf("GET render error: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Render status = %d, want %d (body %s)", resp.StatusCode, http.StatusOK, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !bytes.Contains(body, []byte("<svg")) {
		t.Error("SVG body missing svg element")
	}
	if !bytes.Contains(body, []byte("Acme Holdings")) {
		t.Error("SVG body missing node label")
	}

	// JSON artifact parses and carries the board stats
	resp, err = http.Get(ts.URL + "/api/graphs/" + rec.ID + "/render?format=json")
	if err != nil {
		t.Fatalf("GET json render error: %v", err)
	}
	var frame struct {
		Stats struct {
			Nodes int `json:"nodes"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&frame); err != nil {
		t.Fatalf("decode json artifact: %v", err)
	}
	resp.Body.Close()
	if frame.Stats.Nodes != 3 {
		t.Errorf("stats.nodes = %d, want 3", frame.Stats.Nodes)
	}

	// Unknown format is a client error
	resp, err = http.Get(ts.URL + "/api/graphs/" + rec.ID + "/render?format=gif")
	if err != nil {
		t.Fatalf("GET bad format error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Bad format status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	// Bad dimension is a client error
	resp, err = http.Get(ts.URL + "/api/graphs/" + rec.ID + "/render?width=zero")
	if err != nil {
		t.Fatalf("GET bad width error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Bad width status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestServerOpenSession(t *testing.T) {
	_, ts := newTestServer(t)
	rec := postGraph(t, ts)

	body, _ := json.Marshal(map[string]string{"graph_id": rec.ID})
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST session error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Session status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var sess session.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.ID == "" || sess.GraphID != rec.ID {
		t.Errorf("Session = %+v, want an id bound to graph %s", sess, rec.ID)
	}
}

func TestServerOpenSessionUnknownGraph(t *testing.T) {
	_, ts := newTestServer(t)

	body, _ := json.Marshal(map[string]string{"graph_id": "missing"})
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST session error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestServerLiveFrames(t *testing.T) {
	_, ts := newTestServer(t)
	rec := postGraph(t, ts)

	body, _ := json.Marshal(map[string]string{"graph_id": rec.ID})
	resp, err := http.Post(ts.URL+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST session error: %v", err)
	}
	var sess session.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	resp.Body.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live/" + sess.ID
	conn, dialResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial %s error: %v", wsURL, err)
	}
	if dialResp != nil {
		dialResp.Body.Close()
	}
	defer conn.Close()

	readFrame := func() wsFrame {
		t.Helper()
		var frame wsFrame
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if err := json.Unmarshal(data, &frame); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		return frame
	}

	if frame := readFrame(); frame.Stats.Nodes != 3 {
		t.Errorf("First frame stats.nodes = %d, want 3", frame.Stats.Nodes)
	}

	// Events are accepted while frames flow
	ev, _ := json.Marshal(clientEvent{Type: "select", ID: "acme"})
	if err := conn.WriteMessage(websocket.TextMessage, ev); err != nil {
		t.Fatalf("write event: %v", err)
	}
	if frame := readFrame(); frame.Stats.Nodes != 3 {
		t.Errorf("Frame after event stats.nodes = %d, want 3", frame.Stats.Nodes)
	}
}

func TestServerLiveUnknownSession(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/live/missing"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("Dial should fail for an unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("Handshake response = %+v, want status %d", resp, http.StatusNotFound)
	}
	if resp != nil {
		resp.Body.Close()
	}
}

func TestServerHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var health map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" {
		t.Errorf("status = %q, want ok", health["status"])
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errFor("GRAPH_NOT_FOUND"), http.StatusNotFound},
		{"invalid input", errFor("INVALID_INPUT"), http.StatusBadRequest},
		{"invalid format", errFor("INVALID_FORMAT"), http.StatusBadRequest},
		{"rate limited", errFor("RATE_LIMITED"), http.StatusTooManyRequests},
		{"store failure", errFor("STORE_ERROR"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestWatchBoardID(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/data/board.json", "board"},
		{"case-042.json", "case-042"},
		{"/tmp/acme holdings.json", "board"}, // spaces are not safe ids
	}

	for _, tt := range tests {
		if got := watchBoardID(tt.path); got != tt.want {
			t.Errorf("watchBoardID(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
