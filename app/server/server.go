package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/unitoftime/flow/ds"
	"github.com/zyedidia/generic/cache"

	"github.com/lachlanhurst/perlin"
	"github.com/lachlanhurst/perlin/engine/pgen"
)

type Config struct {
	Addr       string
	Seed       int64  // 0 picks a time based seed
	PresetFile string // Overrides Seed when set
	CacheSize  int    // Number of encoded tiles kept
	Debug      bool
}

func Main(config Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if config.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Interface("config", config).Msg("Starting Server")

	field, err := perlin.LoadOrSeed(config.PresetFile, config.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create noise field")
	}

	s := New(field, config.CacheSize)
	httpServer := &http.Server{
		Addr:         config.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server exited")
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	sig := <-sigs
	log.Info().Str("signal", sig.String()).Msg("Terminating")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = httpServer.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Shutdown failed")
	}
}

type tileKey struct {
	generation uint64
	config     pgen.Config
	colormap   string
	z, x, y    int
}

// Server shares one field between requests. Handlers that change the field
// take the write lock; renders work on a clone taken under the read lock.
type Server struct {
	mu         sync.RWMutex
	field      *pgen.Field
	generation uint64 // Bumped on every table change so cached tiles go stale

	tileMu sync.Mutex
	tiles  *cache.Cache[tileKey, []byte]

	statsMu     sync.Mutex
	renders     uint64
	renderTimes *ds.RingBuffer[time.Duration] // Zero entries are unused slots

	router *mux.Router
}

func New(field *pgen.Field, cacheSize int) *Server {
	if cacheSize < 1 {
		cacheSize = 256
	}
	s := &Server{
		field: field,
		tiles: cache.New[tileKey, []byte](cacheSize),

		renderTimes: ds.NewRingBuffer[time.Duration](renderHistory),
	}

	router := mux.NewRouter()
	router.HandleFunc("/noise.png", s.noiseHandler).Methods(http.MethodGet)
	router.HandleFunc("/tiles/{z:[0-9]+}/{x:-?[0-9]+}/{y:-?[0-9]+}.png", s.tileHandler).Methods(http.MethodGet)
	router.HandleFunc("/render", s.renderHandler).Methods(http.MethodPost)
	router.HandleFunc("/reseed", s.reseedHandler).Methods(http.MethodPost)
	router.HandleFunc("/config", s.getConfigHandler).Methods(http.MethodGet)
	router.HandleFunc("/config", s.putConfigHandler).Methods(http.MethodPut)
	router.HandleFunc("/preset", s.getPresetHandler).Methods(http.MethodGet)
	router.HandleFunc("/preset", s.putPresetHandler).Methods(http.MethodPut)
	router.HandleFunc("/stats", s.statsHandler).Methods(http.MethodGet)
	router.Use(logRequests)
	s.router = router

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// snapshot returns a private copy of the field and its generation
func (s *Server) snapshot() (*pgen.Field, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.field.Clone(), s.generation
}

func (s *Server) getTile(k tileKey) ([]byte, bool) {
	s.tileMu.Lock()
	defer s.tileMu.Unlock()
	return s.tiles.Get(k)
}

func (s *Server) putTile(k tileKey, dat []byte) {
	s.tileMu.Lock()
	defer s.tileMu.Unlock()
	s.tiles.Put(k, dat)
}

const renderHistory = 100

type renderStats struct {
	Renders uint64        `json:"renders"`
	Recent  int           `json:"recent"`
	Average time.Duration `json:"average"`
	Max     time.Duration `json:"max"`
}

func (s *Server) recordRender(elapsed time.Duration) {
	if elapsed <= 0 {
		elapsed = 1
	}
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.renders++
	s.renderTimes.Add(elapsed)
}

// timings summarizes the last renderHistory renders
func (s *Server) timings() renderStats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	stats := renderStats{Renders: s.renders}
	var total time.Duration
	for _, d := range s.renderTimes.Buffer() {
		if d == 0 {
			continue
		}
		stats.Recent++
		total += d
		if d > stats.Max {
			stats.Max = d
		}
	}
	if stats.Recent > 0 {
		stats.Average = total / time.Duration(stats.Recent)
	}
	return stats
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", time.Since(start)).
			Msg("Served")
	})
}
