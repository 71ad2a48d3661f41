// internal/game/engine.go
//
// Core state machine for a single Concentration session.
// Responsibilities:
//   - Create new games from a difficulty parameter (board = 4x card types).
//   - Validate and apply guess pairs in a fixed order: finished game,
//     index bounds, already-matched cards, then match resolution.
//   - Track state transitions: in progress → over.
//
// Notes:
//   - Invalid guesses are reported in-band (Outcome.Message) and logged by
//     the caller, but never count toward Attempts.
//   - Outcome.Won fires only on the transition that fills the matched set,
//     so the caller can emit exactly one score per game.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result messages shown to the player.
const (
	MsgAlreadyOver    = "Game already over!"
	MsgSameCard       = "You must pick two different cards."
	MsgAlreadyMatched = "One of the cards you selected has already been matched."
	MsgMatch          = "You got a match!"
	MsgWin            = " You win!"
	MsgTryAgain       = "Try again."
)

// NewGame creates a game with a freshly shuffled board for the given owner.
func NewGame(ownerID string, cardTypes int) (*Game, error) {
	board, err := NewBoard(cardTypes)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Game{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		CardTypes:  cardTypes,
		Board:      board,
		Matched:    []int{},
		Attempts:   0,
		CreatedAt:  now,
		LastMoveAt: now,
	}, nil
}

// ApplyGuess resolves one pair-guess submission, mutating the game state.
//
// Validation order (first failure wins):
//  1. Finished game: short-circuit, nothing recorded.
//  2. Out-of-range index, or both indices equal: rejected, recorded.
//  3. Either card already matched: rejected, recorded.
//
// A legal guess increments Attempts and sets LastGuess. Equal card values
// move both positions into Matched permanently; filling the board flips
// Over and reports Won.
func (g *Game) ApplyGuess(p1, p2 int) Outcome {
	if g.Over {
		return Outcome{Message: MsgAlreadyOver}
	}
	size := g.Size()
	if p1 < 0 || p1 >= size || p2 < 0 || p2 >= size {
		msg := fmt.Sprintf("Invalid card chosen: card number must be from 0 to %d.", size-1)
		return Outcome{Message: msg, Record: true}
	}
	if p1 == p2 {
		// A position trivially equals itself; treating it as a match would
		// let a single card count as a pair.
		return Outcome{Message: MsgSameCard, Record: true}
	}
	if g.isMatched(p1) || g.isMatched(p2) {
		return Outcome{Message: MsgAlreadyMatched, Record: true}
	}

	g.Attempts++
	g.LastGuess = &[2]int{p1, p2}
	g.LastMoveAt = time.Now().UTC()

	if g.Board[p1] != g.Board[p2] {
		return Outcome{Message: MsgTryAgain, Valid: true, Record: true}
	}

	g.Matched = append(g.Matched, p1, p2)
	out := Outcome{Message: MsgMatch, Valid: true, Match: true, Record: true}
	if len(g.Matched) == size {
		out.Message += MsgWin
		out.Won = true
		g.Over = true
	}
	return out
}

func (g *Game) isMatched(pos int) bool {
	for _, m := range g.Matched {
		if m == pos {
			return true
		}
	}
	return false
}
