// internal/game/board.go
//
// Board generation for Concentration. A board is four copies of every card
// value in [0, cardTypes), uniformly shuffled.

package game

import (
	"errors"
	"math/rand"
)

// Difficulty bounds. Thirteen card types keeps every value renderable as a
// single hex digit in the masked view.
const (
	MinCardTypes = 2
	MaxCardTypes = 13
)

// ErrInvalidDifficulty is returned when the requested number of card types
// falls outside [MinCardTypes, MaxCardTypes].
var ErrInvalidDifficulty = errors.New("number of card types must be between 2 and 13")

// NewBoard returns a uniformly shuffled board of 4*cardTypes cards.
func NewBoard(cardTypes int) (Board, error) {
	if cardTypes < MinCardTypes || cardTypes > MaxCardTypes {
		return nil, ErrInvalidDifficulty
	}
	b := make(Board, 0, cardTypes*4)
	for i := 0; i < 4; i++ {
		for v := 0; v < cardTypes; v++ {
			b = append(b, v)
		}
	}
	rand.Shuffle(len(b), func(i, j int) { b[i], b[j] = b[j], b[i] })
	return b, nil
}

// Valid reports whether the board is a legal layout for cardTypes: correct
// length and every value present exactly four times. Used when loading
// persisted games so a corrupt row fails loudly instead of corrupting play.
func (b Board) Valid(cardTypes int) bool {
	if cardTypes < MinCardTypes || cardTypes > MaxCardTypes {
		return false
	}
	if len(b) != cardTypes*4 {
		return false
	}
	counts := make([]int, cardTypes)
	for _, v := range b {
		if v < 0 || v >= cardTypes {
			return false
		}
		counts[v]++
	}
	for _, c := range counts {
		if c != 4 {
			return false
		}
	}
	return true
}
