package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ChicagoDave/villageplanner/pkg/config"
	"github.com/ChicagoDave/villageplanner/pkg/geo"
	"github.com/ChicagoDave/villageplanner/pkg/layout"
	"github.com/ChicagoDave/villageplanner/pkg/render"
	"github.com/ChicagoDave/villageplanner/pkg/scene"
	"github.com/ChicagoDave/villageplanner/pkg/store"
)

// maxBodyBytes caps request bodies, saved documents included.
const maxBodyBytes = 4 << 20

type message struct {
	Type string `json:"type"`
	layout.Snapshot
}

func sceneMessage(snap layout.Snapshot) message {
	return message{Type: "scene", Snapshot: snap}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, layout.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, layout.ErrDegenerateAttractor):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrAmbiguous):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf(format, args...)})
}

// decodeBody reads a JSON body into v. An empty body leaves v unchanged.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body: %v", err)
		return false
	}
	return true
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	lo, hi := config.DefaultSliderRange(s.canvas.Width)
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>Village Planner</title></head>
<body style="margin:0;background:#222;color:#eee;font-family:system-ui;display:flex;flex-direction:column;align-items:center">
<h1>Village Planner</h1>
<div>
<select id="type"><option>house</option><option>rock</option><option>tree</option></select>
<button onclick="post('/api/generate')">Regenerate</button>
<label>River <input id="lo" type="range" min="0" max="%[1]d" value="%[3]d"><input id="hi" type="range" min="0" max="%[1]d" value="%[4]d"></label>
<button onclick="post('/api/debug')">Debug</button>
<button onclick="post('/api/reset')">Reset</button>
</div>
<img id="scene" src="/api/scene.svg" width="%[1]d" height="%[2]d" style="cursor:crosshair">
<script>
const img = document.getElementById('scene');
const refresh = () => { img.src = '/api/scene.svg?t=' + Date.now(); };
const post = (url, body) => fetch(url, {method: 'POST', body: body ? JSON.stringify(body) : null}).then(refresh);
img.addEventListener('click', e => {
  const r = img.getBoundingClientRect();
  post('/api/attractors', {type: document.getElementById('type').value, px: e.clientX - r.left, py: e.clientY - r.top});
});
const river = () => post('/api/generate', {river_px: [+document.getElementById('lo').value, +document.getElementById('hi').value]});
document.getElementById('lo').addEventListener('change', river);
document.getElementById('hi').addEventListener('change', river);
const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws');
ws.onmessage = refresh;
</script>
</body></html>`, s.canvas.Width, s.canvas.Height, lo, hi)
}

func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleSceneSVG(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	opts := s.canvas
	opts.Debug = snap.Debug
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.SVG(w, snap.Scene, opts); err != nil {
		writeError(w, err)
	}
}

// generateRequest changes generation parameters. RiverPixels is the river
// slider selection in canvas pixels and overrides RiverMin and RiverMax.
type generateRequest struct {
	Count       *int     `json:"count"`
	RiverMin    *float64 `json:"river_min"`
	RiverMax    *float64 `json:"river_max"`
	RiverPixels []int    `json:"river_px"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if req.RiverPixels != nil {
		if len(req.RiverPixels) != 2 {
			badRequest(w, "river_px needs two pixel positions")
			return
		}
		rng := config.RiverRangeFromPixels(req.RiverPixels[0], req.RiverPixels[1], s.canvas.Width)
		req.RiverMin, req.RiverMax = &rng.Min, &rng.Max
	}

	var err error
	if req.Count == nil && req.RiverMin == nil && req.RiverMax == nil {
		_, err = s.session.Regenerate()
	} else {
		_, err = s.session.Update(func(p *layout.Request) {
			if req.Count != nil {
				p.Count = *req.Count
			}
			if req.RiverMin != nil {
				p.RiverWidthMin = *req.RiverMin
			}
			if req.RiverMax != nil {
				p.RiverWidthMax = *req.RiverMax
			}
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// attractorRequest places an attractor either in normalized coordinates
// (x, y) or at a canvas click (px, py).
type attractorRequest struct {
	Type string   `json:"type"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	PX   *float64 `json:"px"`
	PY   *float64 `json:"py"`
}

func (s *Server) handleAddAttractor(w http.ResponseWriter, r *http.Request) {
	var req attractorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := layout.ParseEntityType(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	var pos geo.Point2D
	switch {
	case req.X != nil && req.Y != nil:
		pos = geo.Pt(*req.X, *req.Y)
	case req.PX != nil && req.PY != nil:
		pos = layout.CanvasToNormalized(*req.PX, *req.PY, float64(s.canvas.Width), float64(s.canvas.Height))
	default:
		badRequest(w, "attractor needs x and y or px and py")
		return
	}

	if _, err := s.session.AddAttractor(layout.Attractor{Type: t, Position: pos}); err != nil {
		writeError(w, err)
		return
	}
	slog.Info("attractor added", "type", t, "x", pos.X, "y", pos.Y)
	s.broadcast()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if _, err := s.session.Reset(); err != nil {
		writeError(w, err)
		return
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Debug *bool `json:"debug"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Debug != nil {
		s.session.SetDebug(*req.Debug)
	} else {
		s.session.ToggleDebug()
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, map[string]bool{"debug": s.session.Snapshot().Debug})
}

func (s *Server) currentDocument() *scene.Document {
	snap := s.session.Snapshot()
	d := scene.FromScene(snap.Scene, snap.Attractors, snap.Debug)
	d.Stamp(s.seed, s.canvas.Aspect(), time.Now())
	return d
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="data.json"`)
	if err := s.currentDocument().Encode(w); err != nil {
		slog.Warn("write document", "error", err)
	}
}

func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d, err := scene.Decode(r.Body)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	s.restore(w, d)
}

func (s *Server) restore(w http.ResponseWriter, d *scene.Document) {
	report := scene.ValidateDocument(d)
	if !report.Valid {
		writeJSON(w, http.StatusBadRequest, report)
		return
	}
	sc, attractors, err := d.Scene()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.Restore(sc, attractors, d.Debug); err != nil {
		writeError(w, err)
		return
	}
	s.broadcast()
	writeJSON(w, http.StatusOK, report)
}

type weightsResponse struct {
	Position      geo.Point2D                   `json:"position"`
	Scores        layout.Scores                 `json:"scores"`
	Probabilities map[layout.EntityType]float64 `json:"probabilities"`
}

func (s *Server) handleWeights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		badRequest(w, "x and y query parameters must be numbers")
		return
	}
	pos := geo.Pt(x, y)

	scores, err := layout.Weights(s.session.Attractors(), pos)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := weightsResponse{
		Position:      pos,
		Scores:        scores,
		Probabilities: make(map[layout.EntityType]float64, len(layout.EntityTypes)),
	}
	for _, t := range layout.EntityTypes {
		resp.Probabilities[t] = scores.Probability(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	data, err := scene.SchemaJSON()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.Write(data)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "scene archive disabled"})
		return false
	}
	return true
}

func (s *Server) handleListSaves(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	records, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	rec, err := s.store.Save(r.Context(), req.Name, s.currentDocument())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetSave(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	d, _, err := s.store.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleRestoreSave(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	d, _, err := s.store.Load(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.restore(w, d)
}

func (s *Server) handleDeleteSave(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	s.hub.Serve(w, r, func() any {
		return sceneMessage(s.session.Snapshot())
	})
}
