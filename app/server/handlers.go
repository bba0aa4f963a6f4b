package server

import (
	"bytes"
	"errors"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/ungerik/go3d/float64/vec2"

	"github.com/lachlanhurst/perlin"
	"github.com/lachlanhurst/perlin/engine/pgen"
	"github.com/lachlanhurst/perlin/engine/raster"
	"github.com/lachlanhurst/perlin/serdes"
)

const (
	TileSize    = 256
	MaxTileZoom = 16
	maxBody     = 1 << 20
)

// GET /noise.png?w=&h=&x=&y=&step=&t=&octaves=&persistence=&zoom=&colormap=
func (s *Server) noiseHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	field, _ := s.snapshot()

	cfg, err := overrideConfig(field.Config(), q)
	if err == nil {
		err = perlin.CheckConfig(cfg)
	}
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	err = field.Configure(cfg)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	window := raster.NewWindow(128, 128)
	window.Width, err = queryInt(q, "w", window.Width)
	if err == nil {
		window.Height, err = queryInt(q, "h", window.Height)
	}
	if err == nil {
		window.Origin[0], err = queryFloat(q, "x", 0)
	}
	if err == nil {
		window.Origin[1], err = queryFloat(q, "y", 0)
	}
	if err == nil {
		window.Step, err = queryFloat(q, "step", 1)
	}
	var t float64
	if err == nil {
		t, err = queryFloat(q, "t", 0)
	}
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	cm, err := raster.ParseColormap(q.Get("colormap"))
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	start := time.Now()
	grid, err := raster.Render(pgen.Slice{Field: field, T: t}, window)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	s.recordRender(time.Since(start))
	writePNG(w, grid.Image(cm))
}

// GET /tiles/{z}/{x}/{y}.png renders a TileSize square. Zoom level z samples
// 2^-z units per pixel, so z = 0 matches /noise.png.
func (s *Server) tileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	z, err := strconv.Atoi(vars["z"])
	if err != nil || z > MaxTileZoom {
		httpError(w, fmt.Errorf("invalid tile zoom %q", vars["z"]), http.StatusBadRequest)
		return
	}
	x, err := strconv.Atoi(vars["x"])
	if err != nil {
		httpError(w, fmt.Errorf("invalid tile x %q", vars["x"]), http.StatusBadRequest)
		return
	}
	y, err := strconv.Atoi(vars["y"])
	if err != nil {
		httpError(w, fmt.Errorf("invalid tile y %q", vars["y"]), http.StatusBadRequest)
		return
	}

	colormap := raster.ColormapName(r.URL.Query().Get("colormap"))
	cm, err := raster.ParseColormap(colormap)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	field, generation := s.snapshot()
	key := tileKey{
		generation: generation,
		config:     field.Config(),
		colormap:   colormap,
		z:          z,
		x:          x,
		y:          y,
	}
	if dat, ok := s.getTile(key); ok {
		writeBytes(w, "image/png", dat)
		return
	}

	step := 1 / float64(int(1)<<z)
	window := raster.NewWindow(TileSize, TileSize)
	window.Step = step
	window.Origin = vec2.T{float64(x) * TileSize * step, float64(y) * TileSize * step}

	start := time.Now()
	grid, err := raster.Render(pgen.Slice{Field: field}, window)
	if errors.Is(err, pgen.ErrRange) {
		httpError(w, err, http.StatusBadRequest)
		return
	} else if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	s.recordRender(time.Since(start))
	dat, err := encodePNG(grid.Image(cm))
	if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	s.putTile(key, dat)
	writeBytes(w, "image/png", dat)
}

// POST /render takes a json encoded serdes.RenderRequest. It does not touch the
// shared field.
func (s *Server) renderHandler(w http.ResponseWriter, r *http.Request) {
	dat, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	msg, err := serdes.UnmarshalJson(dat)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	req, ok := msg.(serdes.RenderRequest)
	if !ok {
		httpError(w, fmt.Errorf("expected a render request, got %T", msg), http.StatusBadRequest)
		return
	}

	start := time.Now()
	img, err := perlin.RenderImage(req)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	s.recordRender(time.Since(start))
	writePNG(w, img)
}

type reseedResponse struct {
	Seed       int64  `json:"seed"`
	Generation uint64 `json:"generation"`
}

// POST /reseed?seed= replaces the permutation table
func (s *Server) reseedHandler(w http.ResponseWriter, r *http.Request) {
	seed, err := queryInt64(r.URL.Query(), "seed", time.Now().UnixNano())
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.field.Reseed(pgen.SeededSource(seed))
	if err == nil {
		s.generation++
	}
	generation := s.generation
	s.mu.Unlock()

	if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	log.Info().Int64("seed", seed).Uint64("generation", generation).Msg("Reseeded field")
	writeJson(w, reseedResponse{seed, generation})
}

func (s *Server) getConfigHandler(w http.ResponseWriter, r *http.Request) {
	field, _ := s.snapshot()
	writeJson(w, field.Config())
}

func (s *Server) putConfigHandler(w http.ResponseWriter, r *http.Request) {
	cfg := pgen.Config{}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&cfg)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	err = perlin.CheckConfig(cfg)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err = s.field.Configure(cfg)
	s.mu.Unlock()
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	writeJson(w, cfg)
}

// GET /stats reports render timings
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	writeJson(w, s.timings())
}

// GET /preset?format=json|binary
func (s *Server) getPresetHandler(w http.ResponseWriter, r *http.Request) {
	method, contentType, err := presetFormat(r.URL.Query())
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	field, _ := s.snapshot()
	dat, err := (&serdes.Serdes{Method: method}).Marshal(serdes.NewPreset(field))
	if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	writeBytes(w, contentType, dat)
}

// PUT /preset?format=json|binary replaces the whole field
func (s *Server) putPresetHandler(w http.ResponseWriter, r *http.Request) {
	method, _, err := presetFormat(r.URL.Query())
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	dat, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	msg, err := (&serdes.Serdes{Method: method}).Unmarshal(dat)
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	preset, ok := msg.(serdes.Preset)
	if !ok {
		httpError(w, fmt.Errorf("expected a preset, got %T", msg), http.StatusBadRequest)
		return
	}
	err = perlin.CheckConfig(preset.Config())
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}
	field, err := preset.Field()
	if err != nil {
		httpError(w, err, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.field = field
	s.generation++
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func presetFormat(q url.Values) (method, contentType string, err error) {
	switch q.Get("format") {
	case "", "json":
		return "json", "application/json", nil
	case "binary":
		return "binary", "application/octet-stream", nil
	}
	return "", "", fmt.Errorf("unknown preset format %q", q.Get("format"))
}

func overrideConfig(cfg pgen.Config, q url.Values) (pgen.Config, error) {
	var err error
	cfg.Octaves, err = queryInt(q, "octaves", cfg.Octaves)
	if err != nil {
		return cfg, err
	}
	cfg.Persistence, err = queryFloat(q, "persistence", cfg.Persistence)
	if err != nil {
		return cfg, err
	}
	cfg.Zoom, err = queryFloat(q, "zoom", cfg.Zoom)
	return cfg, err
}

func queryInt(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func queryInt64(q url.Values, name string, def int64) (int64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func queryFloat(q url.Values, name string, def float64) (float64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return v, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePNG(w http.ResponseWriter, img image.Image) {
	dat, err := encodePNG(img)
	if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	writeBytes(w, "image/png", dat)
}

func writeBytes(w http.ResponseWriter, contentType string, dat []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(dat)))
	w.Write(dat)
}

func writeJson(w http.ResponseWriter, v any) {
	dat, err := json.Marshal(v)
	if err != nil {
		httpError(w, err, http.StatusInternalServerError)
		return
	}
	writeBytes(w, "application/json", dat)
}

func httpError(w http.ResponseWriter, err error, status int) {
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("Request failed")
	}
	http.Error(w, err.Error(), status)
}
