// internal/httpserver/auth.go
//
// Accounts, sessions, and profile endpoints.
//   - POST /auth/signup, POST /auth/login, POST /auth/logout, GET /auth/me
//   - GET  /stats/me    → counters from the players table
//   - GET  /games/mine  → recent game history
//
// Tokens are HS256 JWTs carried in an HttpOnly cookie or an
// "Authorization: Bearer" header. Guests get a random anonymous ID cookie
// so their games can be claimed after signing up or logging in.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/robalobadob/searchrescue/internal/records"
)

const anonCookieName = "rescue_anon"

type authConfig struct {
	secret     []byte
	cookieName string
	days       int
	secure     bool
}

func authConfigFromEnv() authConfig {
	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		days = 14
	}
	return authConfig{
		secret:     []byte(getEnv("JWT_SECRET", "dev_secret_change_me")),
		cookieName: getEnv("COOKIE_NAME", "rescue_token"),
		days:       days,
		secure:     getEnv("NODE_ENV", "development") == "production",
	}
}

// authUser is the identity carried in the request context.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

// anonSlot remembers an anonymous ID minted earlier in the same request.
type anonSlot struct{ id string }

type ctxAnonKey struct{}

// currentPlayer returns the logged-in user, or nil for guests.
func currentPlayer(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// ------------------------------ middleware ---------------------------------

// withOptionalAuth attaches the user when a valid token is present and lets
// guests through otherwise.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, err := s.parseToken(bearerOrCookie(r, s.auth.cookieName)); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
			} else {
				r = r.WithContext(context.WithValue(r.Context(), ctxAnonKey{}, &anonSlot{}))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth rejects requests without a valid token for an existing player.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r, s.auth.cookieName)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			u, err := s.parseToken(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			if _, err := s.repo.PlayerByID(r.Context(), u.ID); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u)))
		})
	}
}

// ------------------------------- tokens ------------------------------------

func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(time.Duration(s.auth.days) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := token.SignedString(s.auth.secret)
	return ss, exp, err
}

func (s *Server) parseToken(tok string) (*authUser, error) {
	if tok == "" {
		return nil, errors.New("no token")
	}
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return s.auth.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" || username == "" {
		return nil, errors.New("invalid claims")
	}
	return &authUser{ID: id, Username: username}, nil
}

func bearerOrCookie(r *http.Request, cookieName string) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------------- cookies -----------------------------------

func (s *Server) cookie(name, value string) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.auth.secure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.auth.secure,
		SameSite: sameSite,
	}
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	c := s.cookie(s.auth.cookieName, token)
	c.Expires = exp
	http.SetCookie(w, c)
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	c := s.cookie(s.auth.cookieName, "")
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// ensureAnonID returns the guest's anonymous ID, issuing one if missing.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	slot, _ := r.Context().Value(ctxAnonKey{}).(*anonSlot)
	if slot != nil && slot.id != "" {
		return slot.id
	}
	id := uuid.NewString()
	c := s.cookie(anonCookieName, id)
	c.Expires = time.Now().Add(365 * 24 * time.Hour)
	http.SetCookie(w, c)
	if slot != nil {
		slot.id = id
	}
	return id
}

// caller returns the identities a request can prove without minting a new
// one: the logged-in player and the anonymous cookie, either may be empty.
func (s *Server) caller(r *http.Request) (string, string) {
	var playerID, anonID string
	if me := currentPlayer(r); me != nil {
		playerID = me.ID
	}
	if c, err := r.Cookie(anonCookieName); err == nil {
		anonID = c.Value
	} else if slot, _ := r.Context().Value(ctxAnonKey{}).(*anonSlot); slot != nil {
		anonID = slot.id
	}
	return playerID, anonID
}

// owner returns (playerID, "") for a logged-in user or ("", anonID) for a guest.
func (s *Server) owner(w http.ResponseWriter, r *http.Request) (string, string) {
	if me := currentPlayer(r); me != nil {
		return me.ID, ""
	}
	return "", s.ensureAnonID(w, r)
}

// ------------------------------- routes ------------------------------------

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type userRes struct {
	User *authUser `json:"user"`
}

func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		s.clearAuthCookie(w)
		writeJSON(w, map[string]bool{"ok": true})
	})

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, userRes{User: currentPlayer(r)})
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	username := strings.TrimSpace(req.Username)
	if err := validateSignup(username, req.Password); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "invalid", "message": err.Error()})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	p, err := s.repo.CreatePlayer(r.Context(), username, string(hash))
	if errors.Is(err, records.ErrUsernameTaken) {
		writeError(w, http.StatusConflict, "username_taken")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("create player")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	s.issueSession(w, r, p.ID, p.Username)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	p, err := s.repo.PlayerByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Msg("lookup player")
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	s.issueSession(w, r, p.ID, p.Username)
}

// issueSession sets the auth cookie and moves guest history onto the account.
func (s *Server) issueSession(w http.ResponseWriter, r *http.Request, id, username string) {
	tok, exp, err := s.signJWT(id, username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if err := s.repo.ClaimAnonymous(r.Context(), c.Value, id); err != nil {
			log.Warn().Err(err).Str("player", id).Msg("claim guest games")
		}
	}
	s.setAuthCookie(w, tok, exp)
	log.Info().Str("player", id).Msg("session issued")
	writeJSON(w, map[string]any{"user": authUser{ID: id, Username: username}, "token": tok})
}

type statsRes struct {
	GamesPlayed int     `json:"gamesPlayed"`
	Wins        int     `json:"wins"`
	Streak      int     `json:"streak"`
	WinRate     float64 `json:"winRate"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.PlayerByID(r.Context(), currentPlayer(r).ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	res := statsRes{GamesPlayed: p.GamesPlayed, Wins: p.Wins, Streak: p.Streak}
	if p.GamesPlayed > 0 {
		res.WinRate = float64(p.Wins) / float64(p.GamesPlayed)
	}
	writeJSON(w, res)
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := s.repo.RecentGames(r.Context(), currentPlayer(r).ID, limit)
	if err != nil {
		log.Error().Err(err).Msg("recent games")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, map[string]any{"games": rows})
}

func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3 to 24 characters")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8 to 100 characters")
	}
	return nil
}
