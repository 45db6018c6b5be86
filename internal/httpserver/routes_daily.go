// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start today's game (creates or reuses session)
//   - POST /daily/search      → play one turn of today's game
//   - GET  /daily/leaderboard → fastest rescues for today (or ?date=)
//
// Everyone gets the same seed on a given UTC day; the seed is never sent to
// clients. Each user can finish the daily game once (enforced by
// daily_results + in-memory session).

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/searchrescue/internal/daily"
	"github.com/robalobadob/searchrescue/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	store    *daily.Store
	salt     string
	now      func() time.Time
	sessions map[string]*dailySession // keyed by userID|date
	mu       sync.Mutex               // guards sessions
}

// dailySession ties a user's daily game to its start time.
type dailySession struct {
	GameID string
	UserID string
	Date   string
	Start  time.Time
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		store:    daily.NewStore(s.repo.DB()),
		salt:     getEnv("DAILY_SALT", "local_dev_salt"),
		now:      time.Now,
		sessions: make(map[string]*dailySession),
	}
	s.daily = dd
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/search", dd.handleSearch)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// userID returns the logged-in player's ID or the guest's anonymous ID.
func (d *dailyServer) userID(w http.ResponseWriter, r *http.Request) string {
	if me := currentPlayer(r); me != nil {
		return me.ID
	}
	return d.srv.ensureAnonID(w, r)
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	GameID string     `json:"gameId"`
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	Game   *game.View `json:"game,omitempty"`
}

// handleNew creates or reuses today's session.
// A user with a recorded result for today gets Played=true and no game.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	now := d.now()
	date := daily.DateKey(now)

	if played, err := d.store.AlreadyPlayed(r.Context(), uid, date); err != nil {
		log.Warn().Err(err).Str("user", uid).Msg("daily lookup")
	} else if played {
		writeJSON(w, dailyNewRes{Date: date, Played: true})
		return
	}

	key := uid + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	if sess, ok := d.sessions[key]; ok {
		if g, err := d.srv.store.Get(r.Context(), sess.GameID); err == nil {
			v := d.srv.view(g)
			writeJSON(w, dailyNewRes{GameID: sess.GameID, Date: date, Game: &v})
			return
		}
	}

	g, err := d.srv.startGame(w, r, daily.Seed(now, d.salt), true, true)
	if err != nil {
		log.Error().Err(err).Msg("start daily game")
		writeError(w, http.StatusInternalServerError, "start_failed")
		return
	}
	d.sessions[key] = &dailySession{GameID: g.ID, UserID: uid, Date: date, Start: now}
	v := d.srv.view(g)
	writeJSON(w, dailyNewRes{GameID: g.ID, Date: date, Game: &v})
}

// -----------------------------------------------------------------------------
// /daily/search

type dailySearchRes struct {
	Report game.TurnReport `json:"report"`
	Game   game.View       `json:"game"`
	Date   string          `json:"date"`
}

// handleSearch plays one turn of the caller's daily game and records the
// result once the game ends.
func (d *dailyServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	uid := d.userID(w, r)
	var req searchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	date := daily.DateKey(d.now())

	d.mu.Lock()
	sess, ok := d.sessions[uid+"|"+date]
	d.mu.Unlock()
	if !ok || sess.GameID != req.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	g, ok := d.srv.ownedGame(r, sess.GameID, true)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	rep, err := d.srv.playTurn(r, g, req.Choice)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if rep.Status.Finished() {
		res := daily.Result{
			UserID:    uid,
			Date:      date,
			GameID:    g.ID,
			Found:     rep.Status == game.StatusWon,
			TurnsUsed: g.TurnsUsed(),
			ElapsedMs: int(d.now().Sub(sess.Start).Milliseconds()),
		}
		if err := d.store.InsertResult(r.Context(), res); err != nil {
			log.Warn().Err(err).Str("user", uid).Msg("insert daily result")
		}
	}
	writeJSON(w, dailySearchRes{Report: rep, Game: d.srv.view(g), Date: date})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if rows == nil {
		rows = []daily.LBRow{}
	}
	writeJSON(w, lbRes{Date: date, Top: rows})
}
