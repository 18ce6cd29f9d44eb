// internal/results/ledger.go
//
// SQLite ledger of finished games.
// Tables (see assets/sql):
//   - match_results: one row per ended match, written once (INSERT OR IGNORE).
//   - rounds:        one row per solo round, inserted on start, closed on finish.
//
// Queries:
//   - Leaderboard:  match winners by win count, optionally for one UTC day.
//   - RoundsByUser: recent solo rounds for an account.

package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/hangman/internal/game"
)

// DefaultLimit caps leaderboard and history queries when no limit is given.
const DefaultLimit = 20

// Ledger writes and reads finished-game records.
type Ledger struct{ db *sql.DB }

// NewLedger wraps an already migrated database.
func NewLedger(db *sql.DB) *Ledger { return &Ledger{db: db} }

// DayKey returns YYYY-MM-DD in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ---- MATCHES ----

// RecordMatch stores an ended match. Recording the same match again is a no-op.
// It reports whether a new row was written.
func (l *Ledger) RecordMatch(ctx context.Context, m *game.Match, endedAt time.Time) (bool, error) {
	if m.Status != game.MatchEnded || m.Result == nil || len(m.Players) != game.MaxParticipants {
		return false, fmt.Errorf("record match %s: match has not ended", m.ID)
	}
	var winner sql.NullString
	if m.Result.WinnerPlayerID != nil {
		winner = sql.NullString{String: *m.Result.WinnerPlayerID, Valid: true}
	}
	res, err := l.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO match_results
			(match_id, difficulty, player_one, player_two, winner_id, is_draw, reason, ended_day, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Difficulty), m.Players[0].PlayerID, m.Players[1].PlayerID,
		winner, m.Result.IsDraw, string(m.Result.Reason),
		DayKey(endedAt), endedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("record match %s: %w", m.ID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// LBRow is one leaderboard entry.
type LBRow struct {
	PlayerID string `json:"playerId"`
	Wins     int    `json:"wins"`
}

// Leaderboard returns the players with the most match wins.
// An empty day covers all time; otherwise day is a DayKey.
func (l *Ledger) Leaderboard(ctx context.Context, day string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT winner_id, COUNT(1) AS wins
		FROM match_results
		WHERE winner_id IS NOT NULL AND (? = '' OR ended_day = ?)
		GROUP BY winner_id
		ORDER BY wins DESC, MIN(ended_at) ASC
		LIMIT ?`, day, day, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.PlayerID, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ---- SOLO ROUNDS ----

// Owner identifies who played a round: an account or an anonymous cookie.
type Owner struct {
	UserID      string
	AnonymousID string
}

func (o Owner) args() (sql.NullString, sql.NullString) {
	if o.UserID != "" {
		return sql.NullString{String: o.UserID, Valid: true}, sql.NullString{}
	}
	return sql.NullString{}, sql.NullString{String: o.AnonymousID, Valid: o.AnonymousID != ""}
}

// StartRound inserts the history row for a new round.
func (l *Ledger) StartRound(ctx context.Context, o Owner, r *game.SoloRound) error {
	user, anon := o.args()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO rounds (id, user_id, anonymous_id, difficulty, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, user, anon, string(r.Difficulty), string(r.Status), r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("start round %s: %w", r.ID, err)
	}
	return nil
}

// UpdateRound syncs counters after an applied guess. When the round has
// finished, finished_at is stamped once; finished reports whether this
// call was the one that closed it.
func (l *Ledger) UpdateRound(ctx context.Context, r *game.SoloRound, at time.Time) (finished bool, err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`UPDATE rounds SET guesses=?, wrong_guesses=?, status=? WHERE id=?`,
		len(r.GuessedLetters), r.WrongGuesses, string(r.Status), r.ID,
	); err != nil {
		return false, fmt.Errorf("update round %s: %w", r.ID, err)
	}

	if r.Status != game.StatusInProgress {
		res, err := tx.ExecContext(ctx,
			`UPDATE rounds SET finished_at=? WHERE id=? AND finished_at IS NULL`,
			at.UTC().Format(time.RFC3339), r.ID,
		)
		if err != nil {
			return false, fmt.Errorf("finish round %s: %w", r.ID, err)
		}
		n, _ := res.RowsAffected()
		finished = n > 0
	}
	return finished, tx.Commit()
}

// ClaimAnonymous moves an anonymous cookie's rounds onto an account.
func (l *Ledger) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := l.db.ExecContext(ctx,
		`UPDATE rounds SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	return err
}

// RoundRow is one history entry.
type RoundRow struct {
	ID           string `json:"id"`
	Difficulty   string `json:"difficulty"`
	Status       string `json:"status"`
	Guesses      int    `json:"guesses"`
	WrongGuesses int    `json:"wrongGuesses"`
	StartedAt    string `json:"startedAt"`
	FinishedAt   string `json:"finishedAt,omitempty"`
}

// RoundsByUser lists an account's most recent rounds, newest first.
func (l *Ledger) RoundsByUser(ctx context.Context, userID string, limit int) ([]RoundRow, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, difficulty, status, guesses, wrong_guesses, started_at, COALESCE(finished_at, '')
		FROM rounds WHERE user_id=?
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("rounds by user: %w", err)
	}
	defer rows.Close()

	out := []RoundRow{}
	for rows.Next() {
		var r RoundRow
		if err := rows.Scan(&r.ID, &r.Difficulty, &r.Status, &r.Guesses, &r.WrongGuesses, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
