package reminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ajmarin/concentration/internal/game"
	"github.com/ajmarin/concentration/internal/store"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string // recipient addresses
	fail map[string]bool
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[to] {
		return errors.New("relay rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func seed(t *testing.T, mem *store.Memory, username, email string, lastMove time.Time, over bool) {
	t.Helper()
	ctx := context.Background()
	u := &store.User{ID: "id-" + username, Username: username, Email: email, CreatedAt: lastMove}
	if err := mem.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	g := &game.Game{
		ID: "game-" + username, OwnerID: u.ID, CardTypes: 2,
		Board:      game.Board{0, 1, 0, 1, 0, 1, 0, 1},
		Matched:    []int{},
		Over:       over,
		CreatedAt:  lastMove,
		LastMoveAt: lastMove,
	}
	if err := mem.InsertGame(ctx, g); err != nil {
		t.Fatal(err)
	}
}

func TestSweepTargetsIdleUsersWithEmail(t *testing.T) {
	mem := store.NewMemory()
	now := time.Now().UTC()
	old := now.Add(-48 * time.Hour)

	seed(t, mem, "idle", "idle@example.com", old, false)
	seed(t, mem, "fresh", "fresh@example.com", now, false)
	seed(t, mem, "done", "done@example.com", old, true)
	seed(t, mem, "noemail", "", old, false)

	fm := &fakeMailer{}
	sw := New(mem, fm, time.Hour)
	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(fm.sent) != 1 || fm.sent[0] != "idle@example.com" {
		t.Fatalf("sent = %v, want only idle@example.com", fm.sent)
	}
}

func TestSweepContinuesPastSendFailures(t *testing.T) {
	mem := store.NewMemory()
	old := time.Now().UTC().Add(-48 * time.Hour)
	seed(t, mem, "aaa", "aaa@example.com", old, false)
	seed(t, mem, "bbb", "bbb@example.com", old, false)

	fm := &fakeMailer{fail: map[string]bool{"aaa@example.com": true}}
	sw := New(mem, fm, time.Hour)
	if err := sw.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed on a single bad recipient: %v", err)
	}
	if len(fm.sent) != 1 || fm.sent[0] != "bbb@example.com" {
		t.Fatalf("sent = %v, want bbb@example.com despite aaa failing", fm.sent)
	}
}
