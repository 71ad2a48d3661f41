package game

import "testing"

func TestRenderHiddenBoard(t *testing.T) {
	b := Board{0, 1, 0, 1, 0, 1, 0, 1}
	got := Render(b, nil, nil)
	if got != "XXXXXXXX" {
		t.Fatalf("Render = %q, want all hidden", got)
	}
}

func TestRenderMatchedAndHighlighted(t *testing.T) {
	b := Board{0, 1, 0, 1, 0, 1, 0, 1}
	got := Render(b, []int{0, 2}, &[2]int{1, 3})
	// Positions 0 and 2 are matched zeros; 1 and 3 are highlighted ones.
	want := "0*1*0*1*XXXX"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

// A matched position renders bare even when it was part of the last guess.
func TestRenderMatchedBeatsHighlight(t *testing.T) {
	b := Board{0, 1, 0, 1, 0, 1, 0, 1}
	got := Render(b, []int{0, 2}, &[2]int{0, 2})
	want := "0X0XXXXX"
	if got != want {
		t.Fatalf("Render = %q, want %q", got, want)
	}
}

func TestRenderHexEncoding(t *testing.T) {
	b := Board{9, 10, 11, 12}
	got := Render(b, []int{0, 1, 2, 3}, nil)
	if got != "9ABC" {
		t.Fatalf("Render = %q, want 9ABC", got)
	}
}

func TestRenderIdempotent(t *testing.T) {
	b := Board{0, 1, 2, 2, 1, 0, 2, 0, 1, 2, 0, 1}
	matched := []int{0, 5}
	last := &[2]int{3, 6}
	first := Render(b, matched, last)
	for i := 0; i < 3; i++ {
		if got := Render(b, matched, last); got != first {
			t.Fatalf("render %d = %q, first = %q", i, got, first)
		}
	}
}
