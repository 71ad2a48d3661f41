package game

import (
	"errors"
	"testing"
)

func TestNewBoardShape(t *testing.T) {
	for cardTypes := MinCardTypes; cardTypes <= MaxCardTypes; cardTypes++ {
		b, err := NewBoard(cardTypes)
		if err != nil {
			t.Fatalf("NewBoard(%d): %v", cardTypes, err)
		}
		if len(b) != cardTypes*4 {
			t.Fatalf("NewBoard(%d) length = %d, want %d", cardTypes, len(b), cardTypes*4)
		}
		counts := make(map[int]int)
		for _, v := range b {
			if v < 0 || v >= cardTypes {
				t.Fatalf("NewBoard(%d) contains out-of-range value %d", cardTypes, v)
			}
			counts[v]++
		}
		for v := 0; v < cardTypes; v++ {
			if counts[v] != 4 {
				t.Fatalf("NewBoard(%d) has %d copies of %d, want 4", cardTypes, counts[v], v)
			}
		}
		if !b.Valid(cardTypes) {
			t.Fatalf("NewBoard(%d) not Valid", cardTypes)
		}
	}
}

func TestNewBoardInvalidDifficulty(t *testing.T) {
	for _, cardTypes := range []int{-3, 0, 1, 14, 100} {
		if _, err := NewBoard(cardTypes); !errors.Is(err, ErrInvalidDifficulty) {
			t.Errorf("NewBoard(%d) err = %v, want ErrInvalidDifficulty", cardTypes, err)
		}
	}
}

// Boards should differ between generations. With 52 cards the chance of two
// identical shuffles across 20 runs is negligible, so a single repeat run
// failing here points at a broken shuffle, not bad luck.
func TestNewBoardNotDeterministic(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		b, err := NewBoard(MaxCardTypes)
		if err != nil {
			t.Fatal(err)
		}
		seen[Render(b, allPositions(len(b)), nil)] = true
	}
	if len(seen) < 2 {
		t.Fatalf("20 generated boards were all identical")
	}
}

func TestBoardValidRejectsCorruptLayouts(t *testing.T) {
	tests := []struct {
		name      string
		board     Board
		cardTypes int
	}{
		{"short", Board{0, 1, 0, 1}, 2},
		{"value out of range", Board{0, 1, 0, 2, 0, 1, 0, 1}, 2},
		{"wrong multiplicity", Board{0, 0, 0, 0, 0, 1, 1, 1}, 2},
		{"bad difficulty", Board{0, 0, 0, 0}, 1},
	}
	for _, tt := range tests {
		if tt.board.Valid(tt.cardTypes) {
			t.Errorf("%s: Valid(%d) = true, want false", tt.name, tt.cardTypes)
		}
	}
}

func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
