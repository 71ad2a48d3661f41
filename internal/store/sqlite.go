// internal/store/sqlite.go
//
// SQLite-backed Store. The schema lives in ./sql and is applied by the
// migration runner in package main; this file only reads and writes rows.
//
// Board and matched-card layouts are persisted as JSON arrays and validated
// on every load, so a corrupt row surfaces as an error instead of feeding
// garbage into the state machine. Timestamps are fixed-width RFC 3339 strings
// with nanosecond padding: the precision makes last_move usable as a
// compare-and-set token in UpdateGame, and the fixed width keeps TEXT
// comparisons (ORDER BY, last_move < ?) in timestamp order.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ajmarin/concentration/internal/game"
)

// SQLite implements Store on a *sql.DB opened with the mattn/go-sqlite3
// driver.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite wraps an open database handle.
func NewSQLite(db *sql.DB) *SQLite { return &SQLite{db: db} }

// --------------------------------- users -----------------------------------

func (s *SQLite) CreateUser(ctx context.Context, u *User) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE lower(username)=lower(?)`, u.Username).Scan(&exists)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, email, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Username, u.PasswordHash, u.Email, fmtTime(u.CreatedAt))
	if err != nil && strings.Contains(err.Error(), "UNIQUE") {
		return ErrConflict
	}
	return err
}

func (s *SQLite) UserByName(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at
		 FROM users WHERE lower(username)=lower(?)`, username)
	return scanUser(row)
}

func (s *SQLite) UserByID(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, created_at FROM users WHERE id=?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var err error
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("user %s: %w", u.ID, err)
	}
	return &u, nil
}

// --------------------------------- games -----------------------------------

const gameCols = `id, owner_id, card_types, board, matched,
	last_guess_1, last_guess_2, attempts, game_over, created_at, last_move`

func (s *SQLite) InsertGame(ctx context.Context, g *game.Game) error {
	board, matched, err := marshalLayout(g)
	if err != nil {
		return err
	}
	g1, g2 := lastGuessCols(g)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (`+gameCols+`) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		g.ID, g.OwnerID, g.CardTypes, board, matched,
		g1, g2, g.Attempts, g.Over, fmtTime(g.CreatedAt), fmtTime(g.LastMoveAt))
	return err
}

// UpdateGame writes the mutated game, guarded by the last_move value the
// caller loaded. Zero rows affected means another request got there first.
func (s *SQLite) UpdateGame(ctx context.Context, g *game.Game, prevLastMove time.Time) error {
	board, matched, err := marshalLayout(g)
	if err != nil {
		return err
	}
	g1, g2 := lastGuessCols(g)
	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET board=?, matched=?, last_guess_1=?, last_guess_2=?,
		        attempts=?, game_over=?, last_move=?
		 WHERE id=? AND last_move=?`,
		board, matched, g1, g2, g.Attempts, g.Over, fmtTime(g.LastMoveAt),
		g.ID, fmtTime(prevLastMove))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

func (s *SQLite) GameByID(ctx context.Context, id string) (*game.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameCols+` FROM games WHERE id=?`, id)
	g, err := scanGame(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

func (s *SQLite) DeleteGame(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) GamesByOwner(ctx context.Context, ownerID string, onlyUnfinished bool) ([]*game.Game, error) {
	q := `SELECT ` + gameCols + ` FROM games WHERE owner_id=?`
	if onlyUnfinished {
		q += ` AND game_over=0`
	}
	q += ` ORDER BY created_at ASC`
	rows, err := s.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*game.Game
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

type scanFunc func(dest ...any) error

func scanGame(scan scanFunc) (*game.Game, error) {
	var g game.Game
	var board, matched, created, lastMove string
	var g1, g2 sql.NullInt64
	if err := scan(&g.ID, &g.OwnerID, &g.CardTypes, &board, &matched,
		&g1, &g2, &g.Attempts, &g.Over, &created, &lastMove); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(board), &g.Board); err != nil {
		return nil, fmt.Errorf("game %s: decode board: %w", g.ID, err)
	}
	if err := json.Unmarshal([]byte(matched), &g.Matched); err != nil {
		return nil, fmt.Errorf("game %s: decode matched: %w", g.ID, err)
	}
	if err := validateLayout(&g); err != nil {
		return nil, err
	}
	if g1.Valid && g2.Valid {
		g.LastGuess = &[2]int{int(g1.Int64), int(g2.Int64)}
	}
	var err error
	if g.CreatedAt, err = parseTime(created); err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	if g.LastMoveAt, err = parseTime(lastMove); err != nil {
		return nil, fmt.Errorf("game %s: %w", g.ID, err)
	}
	return &g, nil
}

func marshalLayout(g *game.Game) (board, matched string, err error) {
	if err := validateLayout(g); err != nil {
		return "", "", err
	}
	b, err := json.Marshal(g.Board)
	if err != nil {
		return "", "", err
	}
	m, err := json.Marshal(g.Matched)
	if err != nil {
		return "", "", err
	}
	return string(b), string(m), nil
}

// validateLayout rejects layouts that cannot have come from the engine.
func validateLayout(g *game.Game) error {
	if !g.Board.Valid(g.CardTypes) {
		return fmt.Errorf("game %s: corrupt board layout", g.ID)
	}
	if len(g.Matched)%2 != 0 || len(g.Matched) > len(g.Board) {
		return fmt.Errorf("game %s: corrupt matched set", g.ID)
	}
	for _, p := range g.Matched {
		if p < 0 || p >= len(g.Board) {
			return fmt.Errorf("game %s: matched position %d out of range", g.ID, p)
		}
	}
	return nil
}

func lastGuessCols(g *game.Game) (sql.NullInt64, sql.NullInt64) {
	if g.LastGuess == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(g.LastGuess[0]), Valid: true},
		sql.NullInt64{Int64: int64(g.LastGuess[1]), Valid: true}
}

// --------------------------------- moves -----------------------------------

func (s *SQLite) AppendMove(ctx context.Context, m *Move) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO moves (game_id, move, result, created_at) VALUES (?,?,?,?)`,
		m.GameID, m.Move, m.Result, fmtTime(m.CreatedAt))
	return err
}

func (s *SQLite) MovesByGame(ctx context.Context, gameID string) ([]Move, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, move, result, created_at FROM moves
		 WHERE game_id=? ORDER BY created_at ASC, id ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Move{}
	for rows.Next() {
		var m Move
		var created string
		if err := rows.Scan(&m.GameID, &m.Move, &m.Result, &created); err != nil {
			return nil, err
		}
		if m.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --------------------------------- scores ----------------------------------

func (s *SQLite) InsertScore(ctx context.Context, sc *Score) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (user_id, date, guesses, card_types) VALUES (?,?,?,?)`,
		sc.UserID, fmtTime(sc.Date), sc.Guesses, sc.CardTypes)
	return err
}

const scoreQuery = `SELECT s.user_id, u.username, s.date, s.guesses, s.card_types
	FROM scores s JOIN users u ON u.id = s.user_id`

func (s *SQLite) Scores(ctx context.Context) ([]Score, error) {
	return s.queryScores(ctx, scoreQuery+` ORDER BY s.date ASC, s.id ASC`)
}

func (s *SQLite) TopScores(ctx context.Context, cardTypes, limit int) ([]Score, error) {
	return s.queryScores(ctx,
		scoreQuery+` WHERE s.card_types=? ORDER BY s.guesses ASC, s.id ASC LIMIT ?`,
		cardTypes, limit)
}

func (s *SQLite) ScoresByUser(ctx context.Context, userID string) ([]Score, error) {
	return s.queryScores(ctx,
		scoreQuery+` WHERE s.user_id=? ORDER BY s.date ASC, s.id ASC`, userID)
}

func (s *SQLite) queryScores(ctx context.Context, query string, args ...any) ([]Score, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Score{}
	for rows.Next() {
		var sc Score
		var date string
		if err := rows.Scan(&sc.UserID, &sc.Username, &date, &sc.Guesses, &sc.CardTypes); err != nil {
			return nil, err
		}
		if sc.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// ------------------------------- aggregates --------------------------------

func (s *SQLite) CompletedGameStats(ctx context.Context) ([]CompletedStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.username, g.card_types, g.attempts
		 FROM games g JOIN users u ON u.id = g.owner_id
		 WHERE g.game_over=1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CompletedStat
	for rows.Next() {
		var st CompletedStat
		if err := rows.Scan(&st.Username, &st.CardTypes, &st.Attempts); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *SQLite) IdleUsers(ctx context.Context, cutoff time.Time) ([]User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT u.id, u.username, u.password_hash, u.email, u.created_at
		 FROM users u JOIN games g ON g.owner_id = u.id
		 WHERE u.email <> '' AND g.game_over=0 AND g.last_move < ?`,
		fmtTime(cutoff))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var created string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &created); err != nil {
			return nil, err
		}
		if u.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// -------------------------------- time glue --------------------------------

// timeLayout is RFC 3339 with zero-padded nanoseconds. RFC3339Nano trims
// trailing zeros, so "…00.5Z" would sort after "…00.51Z" as TEXT; the padded
// layout is fixed-width and lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp %q: %w", s, err)
	}
	return t, nil
}
