// internal/store/store.go
//
// Persistence interface for the Concentration server. Implementations may
// be backed by SQLite (production) or memory (tests, ephemeral runs).
// All methods take a context and return explicit errors; callers branch on
// the sentinel errors below.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/ajmarin/concentration/internal/game"
)

var (
	// ErrNotFound is returned when a referenced user, game, or score row
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for duplicate usernames and for game updates
	// that lost a concurrent write race.
	ErrConflict = errors.New("conflict")
)

// User is an identity record. Email is optional and only feeds the
// reminder sweep.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Move is one append-only history entry. The Move field holds the guessed
// pair exactly as submitted, including pairs that were rejected.
type Move struct {
	GameID    string    `json:"-"`
	Move      string    `json:"move"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"createdAt"`
}

// Score is written exactly once per game, at the moment it is won.
type Score struct {
	UserID    string    `json:"-"`
	Username  string    `json:"userName"`
	Date      time.Time `json:"date"`
	Guesses   int       `json:"guesses"`
	CardTypes int       `json:"cardTypes"`
}

// CompletedStat is the per-game input to the performance ranking.
type CompletedStat struct {
	Username  string
	CardTypes int
	Attempts  int
}

// Store is the full persistence surface. One aggregate per call; no method
// spans two games.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *User) error // ErrConflict on duplicate name (case-insensitive)
	UserByName(ctx context.Context, username string) (*User, error)
	UserByID(ctx context.Context, id string) (*User, error)

	// Games. UpdateGame is a compare-and-set on the previous last-move
	// timestamp so two concurrent guesses cannot interleave their writes.
	InsertGame(ctx context.Context, g *game.Game) error
	UpdateGame(ctx context.Context, g *game.Game, prevLastMove time.Time) error
	GameByID(ctx context.Context, id string) (*game.Game, error)
	DeleteGame(ctx context.Context, id string) error
	GamesByOwner(ctx context.Context, ownerID string, onlyUnfinished bool) ([]*game.Game, error)

	// History log: append-only, listed in creation order.
	AppendMove(ctx context.Context, m *Move) error
	MovesByGame(ctx context.Context, gameID string) ([]Move, error)

	// Scores
	InsertScore(ctx context.Context, s *Score) error
	Scores(ctx context.Context) ([]Score, error)
	TopScores(ctx context.Context, cardTypes, limit int) ([]Score, error)
	ScoresByUser(ctx context.Context, userID string) ([]Score, error)

	// Aggregates
	CompletedGameStats(ctx context.Context) ([]CompletedStat, error)

	// IdleUsers lists users with an email address and at least one
	// unfinished game whose last move is older than cutoff.
	IdleUsers(ctx context.Context, cutoff time.Time) ([]User, error)
}
