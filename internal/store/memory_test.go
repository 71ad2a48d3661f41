package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ajmarin/concentration/internal/game"
)

func seedUser(t *testing.T, m *Memory, id, name, email string) *User {
	t.Helper()
	u := &User{ID: id, Username: name, Email: email, CreatedAt: time.Now().UTC()}
	if err := m.CreateUser(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

func seedGame(t *testing.T, m *Memory, id, owner string, over bool, lastMove time.Time) *game.Game {
	t.Helper()
	g := &game.Game{
		ID: id, OwnerID: owner, CardTypes: 2,
		Board:      game.Board{0, 1, 0, 1, 0, 1, 0, 1},
		Matched:    []int{},
		Over:       over,
		CreatedAt:  lastMove,
		LastMoveAt: lastMove,
	}
	if err := m.InsertGame(context.Background(), g); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestCreateUserRejectsDuplicateName(t *testing.T) {
	m := NewMemory()
	seedUser(t, m, "u1", "alice", "")
	err := m.CreateUser(context.Background(), &User{ID: "u2", Username: "ALICE"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateGameCompareAndSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedUser(t, m, "u1", "alice", "")
	t0 := time.Now().UTC()
	g := seedGame(t, m, "g1", "u1", false, t0)

	g.Attempts = 1
	g.LastMoveAt = t0.Add(time.Second)
	if err := m.UpdateGame(ctx, g, t0); err != nil {
		t.Fatalf("first update: %v", err)
	}
	// A second writer still holding the old timestamp loses the race.
	stale := seedGameValue(g)
	stale.Attempts = 99
	if err := m.UpdateGame(ctx, stale, t0); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale update err = %v, want ErrConflict", err)
	}
	got, err := m.GameByID(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", got.Attempts)
	}
}

func seedGameValue(g *game.Game) *game.Game {
	cp := *g
	return &cp
}

func TestMovesKeepAppendOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	base := time.Now().UTC()
	for i, result := range []string{"Try again.", "You got a match!", "Try again."} {
		mv := &Move{GameID: "g1", Move: "(0, 1)", Result: result, CreatedAt: base.Add(time.Duration(i) * time.Second)}
		if err := m.AppendMove(ctx, mv); err != nil {
			t.Fatal(err)
		}
	}
	moves, err := m.MovesByGame(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 3 {
		t.Fatalf("moves = %d, want 3", len(moves))
	}
	for i := 1; i < len(moves); i++ {
		if moves[i].CreatedAt.Before(moves[i-1].CreatedAt) {
			t.Fatalf("moves out of creation order at %d", i)
		}
	}
}

func TestDeleteGameKeepsMoveHistory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedUser(t, m, "u1", "alice", "")
	seedGame(t, m, "g1", "u1", false, time.Now().UTC())
	mv := &Move{GameID: "g1", Move: "(0, 1)", Result: "Try again.", CreatedAt: time.Now().UTC()}
	if err := m.AppendMove(ctx, mv); err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteGame(ctx, "g1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GameByID(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("game err = %v, want ErrNotFound", err)
	}
	moves, err := m.MovesByGame(ctx, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if len(moves) != 1 {
		t.Fatalf("moves after delete = %d, want 1", len(moves))
	}
}

func TestTopScoresOrdersAndTruncates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedUser(t, m, "u1", "alice", "")
	for _, guesses := range []int{9, 4, 12} {
		if err := m.InsertScore(ctx, &Score{UserID: "u1", Date: time.Now().UTC(), Guesses: guesses, CardTypes: 2}); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.InsertScore(ctx, &Score{UserID: "u1", Date: time.Now().UTC(), Guesses: 1, CardTypes: 3}); err != nil {
		t.Fatal(err)
	}

	top, err := m.TopScores(ctx, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 1 || top[0].Guesses != 4 {
		t.Fatalf("top = %+v, want single guesses=4 row", top)
	}
	if top[0].Username != "alice" {
		t.Fatalf("username = %q, want alice", top[0].Username)
	}
}

func TestGamesByOwnerFiltersFinished(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seedUser(t, m, "u1", "alice", "")
	now := time.Now().UTC()
	seedGame(t, m, "g1", "u1", false, now)
	seedGame(t, m, "g2", "u1", true, now.Add(time.Second))
	seedGame(t, m, "g3", "other", false, now)

	unfinished, err := m.GamesByOwner(ctx, "u1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(unfinished) != 1 || unfinished[0].ID != "g1" {
		t.Fatalf("unfinished = %+v", unfinished)
	}
	all, err := m.GamesByOwner(ctx, "u1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}
}

func TestIdleUsersNeedsEmailAndIdleGame(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Now().UTC()
	seedUser(t, m, "u1", "alice", "alice@example.com")
	seedUser(t, m, "u2", "bob", "") // no email
	seedUser(t, m, "u3", "carol", "carol@example.com")

	old := now.Add(-48 * time.Hour)
	seedGame(t, m, "g1", "u1", false, old)  // idle, counts
	seedGame(t, m, "g2", "u2", false, old)  // idle but no email
	seedGame(t, m, "g3", "u3", false, now)  // recent
	seedGame(t, m, "g4", "u3", true, old)   // finished

	users, err := m.IdleUsers(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("idle users = %+v, want just alice", users)
	}
}
