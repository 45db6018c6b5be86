// internal/httpserver/server.go
//
// HTTP server wiring for the search-and-rescue backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/scenario".
//   - Game endpoints (optional auth): POST /game/new, POST /game/search,
//     POST /game/quit, GET /game/{id}.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile endpoints (see auth.go).
//
// Notes:
//   - Live games stay in the session store; the database only keeps history
//     and is written best effort (failures are logged, not returned).
//   - The sailor's true position only appears in responses once a game is over.

package httpserver

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/searchrescue/internal/game"
	"github.com/robalobadob/searchrescue/internal/records"
	"github.com/robalobadob/searchrescue/internal/store"
)

// Server bundles router, session store, history repo, and scenario.
type Server struct {
	r     *chi.Mux
	store store.Store
	repo  *records.Repo
	cfg   game.Config
	auth  authConfig
	daily *dailyServer
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, repo *records.Repo, cfg game.Config) *Server {
	s := &Server{r: chi.NewRouter(), store: st, repo: repo, cfg: cfg, auth: authConfigFromEnv()}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)                     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"service":"searchrescue","endpoints":["/health","POST /game/new","POST /game/search","POST /game/quit","GET /game/{id}","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/scenario", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":    s.cfg.Name,
			"turns":   s.cfg.Turns,
			"regions": s.cfg.Regions,
			"drift":   s.cfg.Drift,
		})
	})

	// Game endpoints: OPTIONAL AUTH (guests can play)
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/search", s.handleSearch)
		r.Post("/game/quit", s.handleQuit)
		r.Get("/game/{id}", s.handleGetGame)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
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

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Seed     *int64 `json:"seed"`     // optional; fixes the whole game for replay
	Replaces string `json:"replaces"` // optional; game being restarted
}
type newGameRes struct {
	GameID string    `json:"gameId"`
	Seed   *int64    `json:"seed,omitempty"` // echoed only when the client chose it
	Game   game.View `json:"game"`
}

// handleNewGame creates a game in the session store and records an owner
// row (player or anonymous cookie) for history. Games on a client-chosen
// seed are unranked: the client can replay them offline.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.Replaces != "" {
		old, ok := s.ownedGame(r, req.Replaces, false)
		if !ok {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		s.discard(r, old)
	}
	seed := newSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	g, err := s.startGame(w, r, seed, false, req.Seed == nil)
	if err != nil {
		log.Error().Err(err).Msg("start game")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	writeJSON(w, newGameRes{GameID: g.ID, Seed: req.Seed, Game: s.view(g)})
}

// discard abandons a restarted game and drops it from the session store.
func (s *Server) discard(r *http.Request, old *game.Game) {
	if old.Quit() {
		s.finish(r, old, game.StatusAbandoned)
	}
	if err := s.store.Delete(r.Context(), old.ID); err != nil {
		log.Warn().Err(err).Str("gameId", old.ID).Msg("drop restarted game")
	}
}

// startGame builds, stores, and records a game. Shared with /daily/new.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, seed int64, daily, ranked bool) (*game.Game, error) {
	g, err := game.New(s.cfg, seed)
	if err != nil {
		return nil, err
	}
	playerID, anonID := s.owner(w, r)
	g.Owner = game.Owner{PlayerID: playerID, AnonID: anonID}
	g.Daily, g.Ranked = daily, ranked
	if err := s.store.Save(r.Context(), g); err != nil {
		return nil, err
	}
	if err := s.repo.StartGame(r.Context(), g); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	log.Info().Str("gameId", g.ID).Bool("daily", daily).Bool("ranked", ranked).Msg("game started")
	return g, nil
}

// ownedGame loads a live game the caller owns. Games of other players,
// and daily games when allowDaily is false, look like missing ones.
func (s *Server) ownedGame(r *http.Request, id string, allowDaily bool) (*game.Game, bool) {
	g, err := s.store.Get(r.Context(), id)
	if err != nil {
		return nil, false
	}
	if g.Daily && !allowDaily {
		return nil, false
	}
	if !g.Owner.Allows(s.caller(r)) {
		return nil, false
	}
	return g, true
}

// view is the client snapshot. Daily seeds stay secret even after the
// game ends, since every player shares them.
func (s *Server) view(g *game.Game) game.View {
	v := g.View()
	if g.Daily {
		v.Seed = nil
	}
	return v
}

// searchReq/Res payloads for POST /game/search.
type searchReq struct {
	GameID string      `json:"gameId"`
	Choice game.Choice `json:"choice"`
}
type searchRes struct {
	Report game.TurnReport `json:"report"`
	Game   game.View       `json:"game"`
}

// handleSearch resolves one turn and records it.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.ownedGame(r, req.GameID, false)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	rep, err := s.playTurn(r, g, req.Choice)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, searchRes{Report: rep, Game: s.view(g)})
}

// playTurn runs Search and persists the outcome best effort.
func (s *Server) playTurn(r *http.Request, g *game.Game, c game.Choice) (game.TurnReport, error) {
	rep, err := g.Search(c)
	if err != nil {
		return rep, err
	}
	if err := s.repo.RecordTurn(r.Context(), g.ID, g.Owner, rep); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Int("turn", rep.Turn).Msg("record turn")
	}
	if rep.Status.Finished() {
		s.finish(r, g, rep.Status)
	}
	return rep, nil
}

// finish stamps the game row and updates the owner's counters. Callers
// reach it once per game: Search and Quit each report the single
// transition out of playing.
func (s *Server) finish(r *http.Request, g *game.Game, status game.Status) {
	if err := s.repo.FinishGame(r.Context(), g.ID, g.Owner, status); err != nil {
		log.Warn().Err(err).Str("gameId", g.ID).Msg("finish game")
	}
	if id := g.Owner.PlayerID; id != "" && g.Ranked {
		if err := s.repo.BumpStats(r.Context(), id, status == game.StatusWon); err != nil {
			log.Warn().Err(err).Str("player", id).Msg("bump stats")
		}
	}
	log.Info().Str("gameId", g.ID).Str("status", string(status)).Msg("game over")
}

type gameIDReq struct {
	GameID string `json:"gameId"`
}
type gameRes struct {
	Game game.View `json:"game"`
}

// handleQuit abandons a game and reveals the sailor.
func (s *Server) handleQuit(w http.ResponseWriter, r *http.Request) {
	var req gameIDReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	g, ok := s.ownedGame(r, req.GameID, false)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if g.Quit() {
		s.finish(r, g, game.StatusAbandoned)
	}
	writeJSON(w, gameRes{Game: s.view(g)})
}

// handleGetGame returns the current snapshot.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.ownedGame(r, chi.URLParam(r, "id"), true)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	writeJSON(w, gameRes{Game: s.view(g)})
}

// writeGameError maps engine errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrFinished):
		writeError(w, http.StatusConflict, "game_finished")
	case errors.Is(err, game.ErrInvalidChoice):
		writeError(w, http.StatusBadRequest, "invalid_choice")
	default:
		log.Error().Err(err).Msg("search")
		writeError(w, http.StatusInternalServerError, "search_failed")
	}
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSONStatus(w, status, map[string]string{"error": code})
}

// newSeed draws a random seed for games that did not ask for one.
func newSeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.BigEndian.Uint64(b[:]) >> 1)
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
