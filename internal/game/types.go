// internal/game/types.go
//
// Core type definitions for the Concentration game engine.
// Defines:
//   - Board: the shuffled card sequence for one game.
//   - Game: state for a single in-progress or finished game.
//   - Outcome: the result of applying one guess pair.

package game

import "time"

// Board is the ordered card sequence for a game. Each value in
// [0, cardTypes) appears exactly four times. Immutable after creation.
type Board []int

// Game holds the state of a single Concentration game.
type Game struct {
	ID         string    // Unique game identifier (UUID).
	OwnerID    string    // ID of the user who started the game.
	CardTypes  int       // Number of distinct card values (difficulty, 2–13).
	Board      Board     // Shuffled cards; len == 4*CardTypes.
	Matched    []int     // Permanently revealed positions, in match order.
	LastGuess  *[2]int   // Positions revealed on the most recent legal turn.
	Attempts   int       // Count of legal pair-guess submissions.
	Over       bool      // True once every card is matched.
	CreatedAt  time.Time
	LastMoveAt time.Time
}

// Size returns the number of cards on the board.
func (g *Game) Size() int { return g.CardTypes * 4 }

// Outcome describes what a single guess did and what the caller must
// persist afterwards.
type Outcome struct {
	Message string // Player-facing result message.
	Valid   bool   // Guess was legal and counted toward Attempts.
	Match   bool   // The two cards matched.
	Won     bool   // This guess completed the board. True exactly once per game.
	Record  bool   // Append a history entry for this submission.
}
