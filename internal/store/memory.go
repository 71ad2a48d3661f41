// internal/store/memory.go
//
// In-memory Store implementation. Used by the test suites and for running
// the server without durability. Mirrors the SQLite implementation's
// semantics, including the compare-and-set in UpdateGame, so handler tests
// exercise the same contract the production store provides.
//
// State is lost when the process restarts.

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ajmarin/concentration/internal/game"
)

// Memory is a map-backed Store. Concurrency-safe via RWMutex.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]*User      // keyed by user ID
	games  map[string]*game.Game // keyed by game ID
	moves  map[string][]Move     // keyed by game ID, append order
	scores []Score
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		users: make(map[string]*User),
		games: make(map[string]*game.Game),
		moves: make(map[string][]Move),
	}
}

// --------------------------------- users -----------------------------------

func (m *Memory) CreateUser(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return ErrConflict
		}
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *Memory) UserByName(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UserByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

// --------------------------------- games -----------------------------------

func (m *Memory) InsertGame(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = copyGame(g)
	return nil
}

func (m *Memory) UpdateGame(ctx context.Context, g *game.Game, prevLastMove time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	if !cur.LastMoveAt.Equal(prevLastMove) {
		return ErrConflict
	}
	m.games[g.ID] = copyGame(g)
	return nil
}

func (m *Memory) GameByID(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return copyGame(g), nil
	}
	return nil, ErrNotFound
}

func (m *Memory) DeleteGame(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return ErrNotFound
	}
	// Move history is append-only and survives the game's deletion.
	delete(m.games, id)
	return nil
}

func (m *Memory) GamesByOwner(ctx context.Context, ownerID string, onlyUnfinished bool) ([]*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*game.Game
	for _, g := range m.games {
		if g.OwnerID != ownerID {
			continue
		}
		if onlyUnfinished && g.Over {
			continue
		}
		out = append(out, copyGame(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// copyGame returns a deep copy so callers never share slices with the map.
func copyGame(g *game.Game) *game.Game {
	cp := *g
	cp.Board = append(game.Board{}, g.Board...)
	cp.Matched = append([]int{}, g.Matched...)
	if g.LastGuess != nil {
		lg := *g.LastGuess
		cp.LastGuess = &lg
	}
	return &cp
}

// --------------------------------- moves -----------------------------------

func (m *Memory) AppendMove(ctx context.Context, mv *Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves[mv.GameID] = append(m.moves[mv.GameID], *mv)
	return nil
}

func (m *Memory) MovesByGame(ctx context.Context, gameID string) ([]Move, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Move{}, m.moves[gameID]...), nil
}

// --------------------------------- scores ----------------------------------

func (m *Memory) InsertScore(ctx context.Context, s *Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc := *s
	if u, ok := m.users[s.UserID]; ok {
		sc.Username = u.Username
	}
	m.scores = append(m.scores, sc)
	return nil
}

func (m *Memory) Scores(ctx context.Context) ([]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Score{}, m.scores...), nil
}

func (m *Memory) TopScores(ctx context.Context, cardTypes, limit int) ([]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Score{}
	for _, s := range m.scores {
		if s.CardTypes == cardTypes {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Guesses < out[j].Guesses })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) ScoresByUser(ctx context.Context, userID string) ([]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Score{}
	for _, s := range m.scores {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ------------------------------- aggregates --------------------------------

func (m *Memory) CompletedGameStats(ctx context.Context) ([]CompletedStat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []CompletedStat
	for _, g := range m.games {
		if !g.Over {
			continue
		}
		u, ok := m.users[g.OwnerID]
		if !ok {
			continue
		}
		out = append(out, CompletedStat{Username: u.Username, CardTypes: g.CardTypes, Attempts: g.Attempts})
	}
	return out, nil
}

func (m *Memory) IdleUsers(ctx context.Context, cutoff time.Time) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idle := make(map[string]bool)
	for _, g := range m.games {
		if !g.Over && g.LastMoveAt.Before(cutoff) {
			idle[g.OwnerID] = true
		}
	}
	var out []User
	for id := range idle {
		if u, ok := m.users[id]; ok && u.Email != "" {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
