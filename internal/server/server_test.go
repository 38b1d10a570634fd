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

	"github.com/ChicagoDave/villageplanner/pkg/layout"
	"github.com/ChicagoDave/villageplanner/pkg/render"
	"github.com/ChicagoDave/villageplanner/pkg/store"
)

func newTestServer(t *testing.T, withStore bool) (*Server, *httptest.Server) {
	t.Helper()
	session, err := layout.NewSession(layout.NewSource(5), layout.DefaultRequest(10))
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Canvas: render.DefaultOptions(), Seed: 5}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "village.db"))
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { st.Close() })
		opts.Store = st
	}
	s := New(session, opts)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeSnapshot(t *testing.T, data []byte) layout.Snapshot {
	t.Helper()
	var snap layout.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v: %s", err, data)
	}
	return snap
}

func TestSceneStartsEmpty(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, data := do(t, "GET", srv.URL+"/api/scene", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	snap := decodeSnapshot(t, data)
	if len(snap.Scene.Entities) != 0 {
		t.Errorf("got %d entities, want 0", len(snap.Scene.Entities))
	}
}

func TestAddAttractor(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, data := do(t, "POST", srv.URL+"/api/attractors", `{"type":"rock","x":0.5,"y":0.5}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	snap := decodeSnapshot(t, data)
	if len(snap.Scene.Entities) == 0 {
		t.Fatal("expected entities")
	}
	for _, e := range snap.Scene.Entities {
		if e.Type != layout.EntityRock || len(e.Geometry) == 0 {
			t.Errorf("entity = %s with %d vertices, want rock with geometry", e.Type, len(e.Geometry))
		}
	}
}

func TestAddAttractorFromClick(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, data := do(t, "POST", srv.URL+"/api/attractors", `{"type":"tree","px":600,"py":200}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	snap := decodeSnapshot(t, data)
	if len(snap.Attractors) != 1 {
		t.Fatalf("got %d attractors", len(snap.Attractors))
	}
	got := snap.Attractors[0].Position
	if got.X != 0.5 || got.Y != 0.5 {
		t.Errorf("click mapped to %v, want (0.5, 0.5)", got)
	}
}

func TestAddAttractorRejectsBadInput(t *testing.T) {
	_, srv := newTestServer(t, false)
	for _, body := range []string{
		`{"type":"well","x":0.5,"y":0.5}`,
		`{"type":"rock"}`,
		`{"type":`,
	} {
		resp, _ := do(t, "POST", srv.URL+"/api/attractors", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestGenerate(t *testing.T) {
	_, srv := newTestServer(t, false)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"house","x":0.4,"y":0.4}`)

	resp, data := do(t, "POST", srv.URL+"/api/generate", `{"count":3,"river_min":0.2,"river_max":0.2}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	snap := decodeSnapshot(t, data)
	if len(snap.Scene.Entities) != 3 || snap.Scene.River.Width != 0.2 {
		t.Errorf("got %d entities with river %v", len(snap.Scene.Entities), snap.Scene.River.Width)
	}

	resp, _ = do(t, "POST", srv.URL+"/api/generate", `{"river_min":0.5,"river_max":0.2}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("inverted range: status = %d, want 400", resp.StatusCode)
	}

	resp, _ = do(t, "POST", srv.URL+"/api/generate", `{"count":2000000000}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("huge count: status = %d, want 400", resp.StatusCode)
	}
	_, data = do(t, "GET", srv.URL+"/api/scene", "")
	if len(decodeSnapshot(t, data).Scene.Entities) != 3 {
		t.Error("rejected count changed the scene")
	}

	resp, data = do(t, "POST", srv.URL+"/api/generate", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("plain regenerate: status = %d", resp.StatusCode)
	}
	if next := decodeSnapshot(t, data); next.Generation <= snap.Generation {
		t.Errorf("generation did not advance: %d -> %d", snap.Generation, next.Generation)
	}
}

func TestResetAndDebug(t *testing.T) {
	_, srv := newTestServer(t, false)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"house","x":0.4,"y":0.4}`)

	_, data := do(t, "POST", srv.URL+"/api/reset", "")
	snap := decodeSnapshot(t, data)
	if len(snap.Attractors) != 0 || len(snap.Scene.Entities) != 0 {
		t.Error("reset left state behind")
	}

	var out map[string]bool
	_, data = do(t, "POST", srv.URL+"/api/debug", "")
	json.Unmarshal(data, &out)
	if !out["debug"] {
		t.Error("toggle should enable debug")
	}
	_, data = do(t, "POST", srv.URL+"/api/debug", `{"debug":false}`)
	json.Unmarshal(data, &out)
	if out["debug"] {
		t.Error("explicit false should disable debug")
	}
}

func TestSceneSVG(t *testing.T) {
	_, srv := newTestServer(t, false)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"tree","x":-0.4,"y":0.4}`)
	resp, data := do(t, "GET", srv.URL+"/api/scene.svg", "")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !bytes.Contains(data, []byte("<svg")) || !bytes.Contains(data, []byte(render.ColorLeaves)) {
		t.Error("svg missing or has no trees")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	_, src := newTestServer(t, false)
	do(t, "POST", src.URL+"/api/attractors", `{"type":"rock","x":0.5,"y":-0.5}`)
	do(t, "POST", src.URL+"/api/attractors", `{"type":"house","x":-0.5,"y":0.5}`)
	_, original := do(t, "GET", src.URL+"/api/scene", "")
	_, doc := do(t, "GET", src.URL+"/api/document", "")

	_, dst := newTestServer(t, false)
	resp, data := do(t, "POST", dst.URL+"/api/document", string(doc))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	_, restored := do(t, "GET", dst.URL+"/api/scene", "")

	want := decodeSnapshot(t, original)
	got := decodeSnapshot(t, restored)
	for _, typ := range layout.EntityTypes {
		w, g := want.Scene.OfType(typ), got.Scene.OfType(typ)
		if len(w) != len(g) {
			t.Errorf("%s: got %d, want %d", typ, len(g), len(w))
			continue
		}
		for i := range w {
			if w[i].Position != g[i].Position || len(w[i].Geometry) != len(g[i].Geometry) {
				t.Errorf("%s %d differs after restore", typ, i)
			}
		}
	}
	if len(got.Attractors) != 2 {
		t.Errorf("got %d attractors, want 2", len(got.Attractors))
	}

	resp, _ = do(t, "POST", dst.URL+"/api/document", `{"entityData":{"riverWidth":2}}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid document: status = %d, want 400", resp.StatusCode)
	}
}

func TestWeights(t *testing.T) {
	_, srv := newTestServer(t, false)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"house","x":0.5,"y":0}`)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"tree","x":-0.5,"y":0}`)

	resp, data := do(t, "GET", srv.URL+"/api/weights?x=0.25&y=0", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	var out weightsResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if p := out.Probabilities[layout.EntityHouse]; p < 0.74 || p > 0.76 {
		t.Errorf("P(house) = %v, want 0.75", p)
	}

	resp, _ = do(t, "GET", srv.URL+"/api/weights?x=0.5&y=0", "")
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("on attractor: status = %d, want 422", resp.StatusCode)
	}
	resp, _ = do(t, "GET", srv.URL+"/api/weights?x=abc", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad query: status = %d, want 400", resp.StatusCode)
	}
	for _, q := range []string{"x=NaN&y=0", "x=0&y=Inf"} {
		resp, data = do(t, "GET", srv.URL+"/api/weights?"+q, "")
		if resp.StatusCode != http.StatusBadRequest || !bytes.Contains(data, []byte("error")) {
			t.Errorf("%s: status = %d body = %q, want 400 with an error", q, resp.StatusCode, data)
		}
	}
}

func TestSchemaEndpoint(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, data := do(t, "GET", srv.URL+"/api/schema", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(data, []byte("entityData")) {
		t.Errorf("status = %d body = %.80s", resp.StatusCode, data)
	}
}

func TestSavesDisabledWithoutStore(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, _ := do(t, "GET", srv.URL+"/api/saves", "")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestSaves(t *testing.T) {
	_, srv := newTestServer(t, true)
	do(t, "POST", srv.URL+"/api/attractors", `{"type":"tree","x":0.5,"y":0.5}`)

	resp, data := do(t, "POST", srv.URL+"/api/saves", `{"name":"orchard"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d: %s", resp.StatusCode, data)
	}
	var rec store.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}

	_, data = do(t, "GET", srv.URL+"/api/saves", "")
	var records []store.Record
	json.Unmarshal(data, &records)
	if len(records) != 1 || records[0].Name != "orchard" {
		t.Errorf("records = %+v", records)
	}

	resp, _ = do(t, "GET", srv.URL+"/api/saves/"+rec.ID, "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("get status = %d", resp.StatusCode)
	}

	do(t, "POST", srv.URL+"/api/reset", "")
	resp, data = do(t, "POST", srv.URL+"/api/saves/"+rec.ShortID()+"/restore", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("restore status = %d: %s", resp.StatusCode, data)
	}
	_, data = do(t, "GET", srv.URL+"/api/scene", "")
	if snap := decodeSnapshot(t, data); len(snap.Attractors) != 1 || len(snap.Scene.Trees()) == 0 {
		t.Error("restore did not bring back the saved scene")
	}

	resp, _ = do(t, "DELETE", srv.URL+"/api/saves/"+rec.ID, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, "GET", srv.URL+"/api/saves/"+rec.ID, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestWebsocketReceivesUpdates(t *testing.T) {
	s, srv := newTestServer(t, false)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	})

	read := func() message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m message
		if err := json.Unmarshal(payload, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return m
	}

	first := read()
	if first.Type != "scene" || first.Scene == nil {
		t.Fatalf("first message = %+v", first)
	}

	do(t, "POST", srv.URL+"/api/attractors", `{"type":"house","x":0.3,"y":0.3}`)
	next := read()
	if next.Generation <= first.Generation || len(next.Attractors) != 1 {
		t.Errorf("update generation %d -> %d with %d attractors", first.Generation, next.Generation, len(next.Attractors))
	}
	if s.hub.Count() != 1 {
		t.Errorf("hub has %d clients, want 1", s.hub.Count())
	}
}

func TestGenerateFromRiverSlider(t *testing.T) {
	_, srv := newTestServer(t, false)
	resp, data := do(t, "POST", srv.URL+"/api/generate", `{"river_px":[200,200]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, data)
	}
	if snap := decodeSnapshot(t, data); snap.Scene.River.Width != 0.25 {
		t.Errorf("river width = %v, want 0.25", snap.Scene.River.Width)
	}

	resp, _ = do(t, "POST", srv.URL+"/api/generate", `{"river_px":[200]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("one position: status = %d, want 400", resp.StatusCode)
	}
}
