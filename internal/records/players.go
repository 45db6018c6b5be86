package records

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUsernameTaken is returned by CreatePlayer for a duplicate name.
var ErrUsernameTaken = errors.New("username taken")

// Player matches the players table shape.
type Player struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	GamesPlayed  int       `json:"gamesPlayed"`
	Wins         int       `json:"wins"`
	Streak       int       `json:"streak"`
}

// CreatePlayer inserts a player with an already-hashed password.
func (r *Repo) CreatePlayer(ctx context.Context, username, passwordHash string) (*Player, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM players WHERE lower(username)=lower(?)`, username).Scan(&exists)
	if err == nil {
		return nil, ErrUsernameTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	p := &Player{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO players (id, username, password_hash, created_at) VALUES (?,?,?,?)`,
		p.ID, p.Username, p.PasswordHash, p.CreatedAt.Format(time.RFC3339)); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return p, nil
}

// PlayerByUsername looks a player up case-insensitively.
func (r *Repo) PlayerByUsername(ctx context.Context, username string) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, games_played, wins, streak
		 FROM players WHERE lower(username)=lower(?)`, username)
	return scanPlayer(row)
}

// PlayerByID looks a player up by ID.
func (r *Repo) PlayerByID(ctx context.Context, id string) (*Player, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, games_played, wins, streak
		 FROM players WHERE id=?`, id)
	return scanPlayer(row)
}

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	var created string
	if err := row.Scan(&p.ID, &p.Username, &p.PasswordHash, &created, &p.GamesPlayed, &p.Wins, &p.Streak); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	return &p, nil
}

// BumpStats increments games played and updates wins and streak.
// A win extends the streak; anything else resets it.
func (r *Repo) BumpStats(ctx context.Context, playerID string, won bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var gp, wins, streak int
	if err := tx.QueryRowContext(ctx,
		`SELECT games_played, wins, streak FROM players WHERE id=?`, playerID,
	).Scan(&gp, &wins, &streak); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE players SET games_played=?, wins=?, streak=? WHERE id=?`, gp, wins, streak, playerID); err != nil {
		return err
	}
	return tx.Commit()
}
