package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily game.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	GameID    string `json:"gameId"`
	Found     bool   `json:"found"`
	TurnsUsed int    `json:"turnsUsed"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store reads and writes daily_results.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a finished daily game for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?`,
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result. A second result for the same user and
// date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, game_id, found, turns_used, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, r.GameID, r.Found, r.TurnsUsed, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard line.
type LBRow struct {
	UserID    string `json:"userId"`
	TurnsUsed int    `json:"turnsUsed"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard lists players who found the sailor on date: fewest turns
// first, then fastest, then earliest.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, turns_used, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND found=1
		 ORDER BY turns_used ASC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.TurnsUsed, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
