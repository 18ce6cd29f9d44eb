// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/leaderboard".
//   - Solo endpoints (optional auth):   mounted under /singleplayer.
//   - Match endpoints (optional auth):  mounted under /multiplayer.
//   - Auth + profile/stat endpoints:    /auth/*, /stats/me, /rounds/mine.
//
// Notes:
//   - Mutating game endpoints are rate limited per client IP.
//   - Every fetch→mutate→save on one round or match runs under that id's lock.
//   - Ledger writes and notifications are best effort; failures are logged.

package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/notify"
	"github.com/robalobadob/hangman/internal/results"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

const serviceName = "hangman-api"

// Options are the collaborators a Server needs.
type Options struct {
	Engine *game.Engine
	Words  *words.Bank
	Store  store.Store
	DB     *sql.DB

	// Hub serves /multiplayer/ws; nil disables the route.
	Hub *notify.Hub
	// Notifier receives match events; defaults to Hub, then to a no-op.
	Notifier notify.Notifier

	RateLimitRPS   int
	RateLimitBurst int
}

// Server bundles router, live-game store, ledger and DB handle.
type Server struct {
	r        *chi.Mux
	engine   *game.Engine
	words    *words.Bank
	store    store.Store
	locks    *store.Locks
	db       *sql.DB
	ledger   *results.Ledger
	hub      *notify.Hub
	notifier notify.Notifier
	limiter  *ipLimiter
}

// New constructs a Server, installs middleware, and registers routes.
func New(o Options) *Server {
	s := &Server{
		r:        chi.NewRouter(),
		engine:   o.Engine,
		words:    o.Words,
		store:    o.Store,
		locks:    store.NewLocks(),
		db:       o.DB,
		ledger:   results.NewLedger(o.DB),
		hub:      o.Hub,
		notifier: o.Notifier,
		limiter:  newIPLimiter(o.RateLimitRPS, o.RateLimitBurst),
	}
	if s.notifier == nil {
		if s.hub != nil {
			s.notifier = s.hub
		} else {
			s.notifier = notify.Nop{}
		}
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(requestLogger)
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": serviceName,
			"endpoints": []string{
				"/health",
				"POST /singleplayer/start", "GET /singleplayer/state/{sessionId}", "POST /singleplayer/guess",
				"POST /multiplayer/create", "POST /multiplayer/join", "POST /multiplayer/guess",
				"GET /multiplayer/state/{matchId}/{playerId}", "GET /multiplayer/result/{matchId}/{playerId}",
				"GET /multiplayer/ws/{matchId}/{playerId}",
				"GET /leaderboard", "/auth/*",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	s.r.Get("/leaderboard", s.handleLeaderboard)
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.words.Stats())
	})

	// Game endpoints — OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		s.mountSingle(r)
		s.mountMulti(r)
	})

	// Auth + profile/stats
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin.
// Uses CLIENT_ORIGIN env var; defaults to http://localhost:5173.
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger emits one debug line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// ----------------------------- leaderboard ---------------------------------

// handleLeaderboard returns top match winners, optionally for one UTC day.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = results.DefaultLimit
	}
	day := r.URL.Query().Get("day")
	rows, err := s.ledger.Leaderboard(r.Context(), day, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": day, "top": rows})
}

// ------------------------------- small util --------------------------------

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody parses a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
