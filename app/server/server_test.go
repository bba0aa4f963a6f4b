package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/lachlanhurst/perlin/engine/pgen"
	"github.com/lachlanhurst/perlin/serdes"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	f, err := pgen.NewField(pgen.SeededSource(99))
	if err != nil {
		t.Fatal(err)
	}
	return New(f, 4)
}

func do(t *testing.T, s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeSize(t *testing.T, rec *httptest.ResponseRecorder) (int, int) {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %q", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNoise(t *testing.T) {
	s := testServer(t)
	w, h := decodeSize(t, do(t, s, http.MethodGet, "/noise.png", nil))
	if w != 128 || h != 128 {
		t.Errorf("expected default 128x128, got %dx%d", w, h)
	}

	w, h = decodeSize(t, do(t, s, http.MethodGet, "/noise.png?w=30&h=20&zoom=10&octaves=3&persistence=0.5&t=1.5&colormap=gray", nil))
	if w != 30 || h != 20 {
		t.Errorf("expected 30x20, got %dx%d", w, h)
	}

	// Query overrides must not leak into the shared field
	if got := s.field.Config(); got != pgen.DefaultConfig() {
		t.Errorf("expected default config, got %+v", got)
	}
}

func TestNoiseBadRequests(t *testing.T) {
	s := testServer(t)
	tests := []string{
		"/noise.png?w=0",
		"/noise.png?w=5000",
		"/noise.png?h=abc",
		"/noise.png?zoom=0",
		"/noise.png?octaves=-1",
		"/noise.png?step=-1",
		"/noise.png?persistence=NaN",
		"/noise.png?colormap=plaid",
		"/noise.png?x=inf",
		"/noise.png?octaves=65",
		"/noise.png?octaves=2000000000",
		"/noise.png?x=1e300",
	}
	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, target, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTiles(t *testing.T) {
	s := testServer(t)
	w, h := decodeSize(t, do(t, s, http.MethodGet, "/tiles/0/-1/2.png", nil))
	if w != TileSize || h != TileSize {
		t.Errorf("expected %dx%d, got %dx%d", TileSize, TileSize, w, h)
	}

	first := do(t, s, http.MethodGet, "/tiles/3/1/1.png", nil).Body.Bytes()
	second := do(t, s, http.MethodGet, "/tiles/3/1/1.png", nil).Body.Bytes()
	if !bytes.Equal(first, second) {
		t.Errorf("repeated tile differs")
	}

	rec := do(t, s, http.MethodGet, "/tiles/17/0/0.png", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for deep zoom, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/tiles/0/99999999999999999/0.png", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a tile beyond the lattice, got %d", rec.Code)
	}
	rec = do(t, s, http.MethodGet, "/tiles/a/0/0.png", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for non numeric zoom, got %d", rec.Code)
	}
}

func TestTileCacheKeyUsesCanonicalColormap(t *testing.T) {
	s := testServer(t)
	plain := do(t, s, http.MethodGet, "/tiles/0/0/0.png", nil).Body.Bytes()

	key := tileKey{config: pgen.DefaultConfig(), colormap: "yellow"}
	cached, ok := s.getTile(key)
	if !ok {
		t.Fatalf("expected the default colormap to be cached as yellow")
	}
	if !bytes.Equal(plain, cached) {
		t.Errorf("cached tile differs from the served tile")
	}

	named := do(t, s, http.MethodGet, "/tiles/0/0/0.png?colormap=yellow", nil).Body.Bytes()
	if !bytes.Equal(plain, named) {
		t.Errorf("yellow tile differs from the default tile")
	}
}

func TestReseedInvalidatesTiles(t *testing.T) {
	s := testServer(t)
	before := do(t, s, http.MethodGet, "/tiles/0/0/0.png", nil).Body.Bytes()

	rec := do(t, s, http.MethodPost, "/reseed?seed=7", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := reseedResponse{}
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(reseedResponse{Seed: 7, Generation: 1}, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	want, err := pgen.NewPermutationTable(pgen.SeededSource(7))
	if err != nil {
		t.Fatal(err)
	}
	if s.field.Table() != want {
		t.Errorf("reseed did not install the seeded table")
	}

	after := do(t, s, http.MethodGet, "/tiles/0/0/0.png", nil).Body.Bytes()
	if bytes.Equal(before, after) {
		t.Errorf("tile was served from a stale cache entry")
	}

	rec = do(t, s, http.MethodPost, "/reseed?seed=x", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestConfig(t *testing.T) {
	s := testServer(t)
	rec := do(t, s, http.MethodPut, "/config", []byte(`{"Octaves":4,"Persistence":0.5,"Zoom":32}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/config", nil)
	got := pgen.Config{}
	err := json.Unmarshal(rec.Body.Bytes(), &got)
	if err != nil {
		t.Fatal(err)
	}
	want := pgen.Config{Octaves: 4, Persistence: 0.5, Zoom: 32}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	for _, body := range []string{`{"Octaves":1,"Persistence":1,"Zoom":0}`, `{"Octaves":-2,"Persistence":1,"Zoom":1}`, `{"Octaves":1000,"Persistence":1,"Zoom":1}`, `nope`} {
		rec = do(t, s, http.MethodPut, "/config", []byte(body))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	if s.field.Config() != want {
		t.Errorf("rejected config changed the field: %+v", s.field.Config())
	}
}

func TestPresetRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "binary"} {
		t.Run(format, func(t *testing.T) {
			src := testServer(t)
			do(t, src, http.MethodPut, "/config", []byte(`{"Octaves":2,"Persistence":0.7,"Zoom":5}`))
			rec := do(t, src, http.MethodGet, "/preset?format="+format, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}

			dst := New(pgen.NewFieldFromTable(pgen.IdentityPermutation()), 4)
			rec = do(t, dst, http.MethodPut, "/preset?format="+format, rec.Body.Bytes())
			if rec.Code != http.StatusNoContent {
				t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body.String())
			}
			if dst.field.Table() != src.field.Table() {
				t.Errorf("preset did not carry the table")
			}
			if dst.field.Config() != src.field.Config() {
				t.Errorf("expected %+v, got %+v", src.field.Config(), dst.field.Config())
			}
			if dst.generation != 1 {
				t.Errorf("expected generation 1, got %d", dst.generation)
			}
		})
	}

	s := testServer(t)
	rec := do(t, s, http.MethodGet, "/preset?format=xml", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	short, _ := serdes.MarshalJson(serdes.Preset{Table: []uint8{1, 2, 3}, Octaves: 1, Persistence: 1, Zoom: 1})
	rec = do(t, s, http.MethodPut, "/preset", short)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for short table, got %d", rec.Code)
	}
	deep, _ := serdes.MarshalJson(serdes.Preset{Table: make([]uint8, pgen.PermutationSize), Octaves: 5000, Persistence: 1, Zoom: 1})
	rec = do(t, s, http.MethodPut, "/preset", deep)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for too many octaves, got %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	s := testServer(t)
	body, err := serdes.MarshalJson(serdes.RenderRequest{
		Source:      pgen.SourceSimplex,
		Seed:        3,
		Octaves:     1,
		Persistence: 1,
		Zoom:        1,
		Width:       12,
		Height:      7,
		Step:        0.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	w, h := decodeSize(t, do(t, s, http.MethodPost, "/render", body))
	if w != 12 || h != 7 {
		t.Errorf("expected 12x7, got %dx%d", w, h)
	}

	preset, _ := serdes.MarshalJson(serdes.NewPreset(s.field))
	deep, _ := serdes.MarshalJson(serdes.RenderRequest{
		Source:      pgen.SourceField,
		Octaves:     2000000000,
		Persistence: 1,
		Zoom:        1,
		Width:       4,
		Height:      4,
	})
	for _, bad := range [][]byte{preset, deep, []byte("{}"), []byte(strings.Repeat("x", 10))} {
		rec := do(t, s, http.MethodPost, "/render", bad)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	}
}

func TestStats(t *testing.T) {
	s := testServer(t)
	rec := do(t, s, http.MethodGet, "/stats", nil)
	stats := renderStats{}
	err := json.Unmarshal(rec.Body.Bytes(), &stats)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(renderStats{}, stats); diff != "" {
		t.Errorf("expected empty stats (-want +got):\n%s", diff)
	}

	do(t, s, http.MethodGet, "/noise.png?w=8&h=8", nil)
	do(t, s, http.MethodGet, "/tiles/1/0/0.png", nil)
	do(t, s, http.MethodGet, "/tiles/1/0/0.png", nil) // cached, not rendered
	do(t, s, http.MethodGet, "/noise.png?w=0", nil)   // rejected, not rendered

	rec = do(t, s, http.MethodGet, "/stats", nil)
	err = json.Unmarshal(rec.Body.Bytes(), &stats)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Renders != 2 || stats.Recent != 2 {
		t.Errorf("expected 2 renders, got %+v", stats)
	}
	if stats.Average <= 0 || stats.Max < stats.Average {
		t.Errorf("unexpected timings %+v", stats)
	}
}

func TestRenderHistoryWraps(t *testing.T) {
	s := testServer(t)
	for i := 0; i < renderHistory+20; i++ {
		s.recordRender(time.Millisecond)
	}
	s.recordRender(0)
	stats := s.timings()
	if stats.Renders != renderHistory+21 {
		t.Errorf("expected %d renders, got %d", renderHistory+21, stats.Renders)
	}
	if stats.Recent != renderHistory {
		t.Errorf("expected %d recent, got %d", renderHistory, stats.Recent)
	}
	if stats.Max != time.Millisecond {
		t.Errorf("expected max 1ms, got %v", stats.Max)
	}
}
