// internal/game/view.go
//
// Player-facing board rendering. Projects the full board plus match/reveal
// state into the partial view a client is allowed to see.

package game

import "strings"

// Hidden is the placeholder for face-down cards in the masked view.
const Hidden = 'X'

// Render masks the board for the player. Unmatched, unhighlighted positions
// render as the hidden placeholder; matched positions show their card value
// as an uppercase hex digit so every value fits one character; the two most
// recently guessed unmatched positions show their value wrapped in
// asterisks. A position that is both matched and highlighted renders as
// matched — once a pair is permanent the per-turn highlight carries no
// information. Pure transform; never mutates its inputs.
func Render(board Board, matched []int, last *[2]int) string {
	var sb strings.Builder

	isMatched := make(map[int]bool, len(matched))
	for _, m := range matched {
		isMatched[m] = true
	}
	highlighted := func(i int) bool {
		return last != nil && (last[0] == i || last[1] == i)
	}

	for i, v := range board {
		switch {
		case isMatched[i]:
			sb.WriteByte(hexDigit(v))
		case highlighted(i):
			sb.WriteByte('*')
			sb.WriteByte(hexDigit(v))
			sb.WriteByte('*')
		default:
			sb.WriteRune(Hidden)
		}
	}
	return sb.String()
}

// hexDigit encodes a card value 0–15 as a single uppercase hex character.
func hexDigit(v int) byte {
	const digits = "0123456789ABCDEF"
	return digits[v&0xF]
}
