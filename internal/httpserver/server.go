// apps/go-server/internal/httpserver/server.go
//
// HTTP server wiring for the memory game backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: POST /api/games/new, POST /api/games/guess, GET /api/games/{id}.
//   - Mapping engine errors to status codes.
//
// Error mapping:
//   - game.ErrNotFound       → 404
//   - catalog.ErrUnavailable → 502
//   - anything else          → 500

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
)

// Server bundles router and game engine.
type Server struct {
	r      *chi.Mux
	engine *game.Engine
}

// New constructs a Server, installs middleware, and registers routes.
// origin is the single CORS origin allowed to call the API with credentials.
func New(engine *game.Engine, origin string) *Server {
	s := &Server{r: chi.NewRouter(), engine: engine}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(15 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(origin))                    // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service":   "pokesimon-go",
			"endpoints": []string{"/health", "POST /api/games/new", "POST /api/games/guess", "GET /api/games/{id}"},
			"rules":     s.engine.Rules(),
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Route("/api/games", func(r chi.Router) {
		r.Post("/new", s.handleNewGame)
		r.Post("/guess", s.handleGuess)
		r.Get("/{id}", s.handleGetGame)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

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

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Info().
			Str("requestId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameRes payload for POST /api/games/new.
type newGameRes struct {
	GameID      string             `json:"gameId"`
	InitialTeam []catalog.Creature `json:"initialTeam"`
}

// handleNewGame selects a team and creates a session.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Start(r.Context())
	if err != nil {
		s.fail(w, err, "start game", "")
		return
	}
	log.Info().Str("gameId", sess.ID).Msg("game started")
	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, InitialTeam: sess.InitialTeam})
}

// guessReq payload for POST /api/games/guess.
// Either Pick (one round) or Pokemons (full replay) must be set.
type guessReq struct {
	GameID   string `json:"gameId"`
	Pick     *int   `json:"pick"`
	Pokemons []int  `json:"pokemons"`
}

// handleGuess evaluates a single pick or a full replay.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if req.GameID == "" {
		writeError(w, http.StatusBadRequest, "gameId is required")
		return
	}

	var (
		res game.RoundResult
		err error
	)
	switch {
	case req.Pick != nil:
		res, err = s.engine.EvaluateRound(r.Context(), req.GameID, *req.Pick)
	case req.Pokemons != nil:
		res, err = s.engine.EvaluateReplay(r.Context(), req.GameID, req.Pokemons)
	default:
		writeError(w, http.StatusBadRequest, "pick or pokemons is required")
		return
	}
	if err != nil {
		s.fail(w, err, "evaluate round", req.GameID)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// handleGetGame returns the stored session.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.engine.Get(r.Context(), id)
	if err != nil {
		s.fail(w, err, "get game", id)
		return
	}
	_ = json.NewEncoder(w).Encode(sess)
}

// ------------------------------- errors ------------------------------------

// fail maps an engine error onto a status code and logs server-side failures.
func (s *Server) fail(w http.ResponseWriter, err error, op, gameID string) {
	switch {
	case errors.Is(err, game.ErrNotFound):
		writeError(w, http.StatusNotFound, "game not found")
	case errors.Is(err, catalog.ErrUnavailable):
		log.Warn().Err(err).Str("gameId", gameID).Msg(op)
		writeError(w, http.StatusBadGateway, "catalog unavailable: "+err.Error())
	default:
		log.Error().Err(err).Str("gameId", gameID).Msg(op)
		writeError(w, http.StatusInternalServerError, op+": "+err.Error())
	}
}

// writeError writes {"error": msg} with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
