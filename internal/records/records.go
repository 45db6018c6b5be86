// internal/records/records.go
//
// Game history: one row per game, one row per resolved turn, and the
// per-player counters (games played, wins, streak).
//
// Writes here are history only. A live game is never rebuilt from these
// rows; its generator and hidden target exist only in memory.

package records

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/robalobadob/searchrescue/internal/game"
	"github.com/robalobadob/searchrescue/internal/rescue"
)

// ErrGameNotFound is returned when no game row matches both the ID and
// the owner.
var ErrGameNotFound = errors.New("game not found for owner")

// GameRow matches the games table. Seed is only filled in for finished
// games.
type GameRow struct {
	ID          string `json:"id"`
	PlayerID    string `json:"-"`
	AnonymousID string `json:"-"`
	Scenario    string `json:"scenario"`
	Seed        *int64 `json:"seed,omitempty"`
	Status      string `json:"status"`
	TurnsUsed   int    `json:"turnsUsed"`
	StartedAt   string `json:"startedAt"`
	FinishedAt  string `json:"finishedAt,omitempty"`
}

// Repo wraps the database handle.
type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// DB exposes the handle for packages sharing the same database.
func (r *Repo) DB() *sql.DB { return r.db }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ownerClause scopes an update to rows the owner may touch.
const ownerClause = `(player_id=? OR anonymous_id=?)`

func ownerArgs(o game.Owner) []any {
	return []any{nullable(o.PlayerID), nullable(o.AnonID)}
}

// StartGame inserts the row for a new game under g.Owner.
func (r *Repo) StartGame(ctx context.Context, g *game.Game) error {
	v := g.View()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (id, player_id, anonymous_id, scenario, seed, status, turns_used, started_at)
		 VALUES (?,?,?,?,?,?,0,?)`,
		g.ID, nullable(g.Owner.PlayerID), nullable(g.Owner.AnonID), v.Scenario, g.Seed, string(v.Status), now())
	return err
}

// RecordTurn appends one resolved turn and bumps the game's turn counter.
// Nothing is written unless the game belongs to owner.
func (r *Repo) RecordTurn(ctx context.Context, gameID string, owner game.Owner, rep game.TurnReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE games SET turns_used = turns_used + 1, status=? WHERE id=? AND `+ownerClause,
		append([]any{string(rep.Status), gameID}, ownerArgs(owner)...)...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrGameNotFound
	}

	e, p, q := rep.Effectiveness, rep.Posterior, rep.Prior
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (game_id, turn, choice, area_1, area_2, result_1, result_2,
		                    sep_1, sep_2, sep_3, prior_1, prior_2, prior_3, p_1, p_2, p_3, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		gameID, rep.Turn, int(rep.Choice), rep.Areas[0], rep.Areas[1],
		string(rep.Results[0]), string(rep.Results[1]),
		e[0], e[1], e[2], q[0], q[1], q[2], p[0], p[1], p[2], string(rep.Status)); err != nil {
		return err
	}
	return tx.Commit()
}

// FinishGame stamps the final status on a game belonging to owner.
func (r *Repo) FinishGame(ctx context.Context, gameID string, owner game.Owner, status game.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE games SET status=?, finished_at=? WHERE id=? AND `+ownerClause,
		append([]any{string(status), now(), gameID}, ownerArgs(owner)...)...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrGameNotFound
	}
	return nil
}

// ClaimAnonymous attaches a guest's unowned games to an account after
// sign-in. The anonymous ID stays on the row so games still running under
// the guest cookie keep matching their owner.
func (r *Repo) ClaimAnonymous(ctx context.Context, anonID, playerID string) error {
	if anonID == "" || playerID == "" {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE games SET player_id=? WHERE anonymous_id=? AND player_id IS NULL`, playerID, anonID)
	return err
}

// RecentGames lists a player's latest games, newest first.
func (r *Repo) RecentGames(ctx context.Context, playerID string, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, scenario, seed, status, turns_used, started_at, COALESCE(finished_at,'')
		 FROM games WHERE player_id=? ORDER BY started_at DESC, id DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		g := GameRow{PlayerID: playerID}
		var seed int64
		if err := rows.Scan(&g.ID, &g.Scenario, &seed, &g.Status, &g.TurnsUsed, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		if g.FinishedAt != "" {
			g.Seed = &seed
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Turns returns the stored turn log of a game, oldest first.
func (r *Repo) Turns(ctx context.Context, gameID string) ([]game.TurnReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT turn, choice, area_1, area_2, result_1, result_2, sep_1, sep_2, sep_3,
		        prior_1, prior_2, prior_3, p_1, p_2, p_3, status
		 FROM turns WHERE game_id=? ORDER BY turn`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []game.TurnReport
	for rows.Next() {
		var (
			rep            game.TurnReport
			choice         int
			r1, r2, status string
		)
		e, p, q := &rep.Effectiveness, &rep.Posterior, &rep.Prior
		if err := rows.Scan(&rep.Turn, &choice, &rep.Areas[0], &rep.Areas[1], &r1, &r2,
			&e[0], &e[1], &e[2], &q[0], &q[1], &q[2], &p[0], &p[1], &p[2], &status); err != nil {
			return nil, err
		}
		rep.Choice = game.Choice(choice)
		rep.Results[0], rep.Results[1] = rescue.Outcome(r1), rescue.Outcome(r2)
		rep.Status = game.Status(status)
		out = append(out, rep)
	}
	return out, rows.Err()
}
