// internal/rank/rank.go
//
// Performance ranking over completed games. Raw attempt counts are not
// comparable across board sizes, so each game is normalized by the number
// of unordered card pairs the player could have chosen: C(4d,2) / attempts.
// A user's performance index is the average of that value over their
// completed games.

package rank

import "sort"

// CompletedGame is the slice of game state the aggregator needs.
type CompletedGame struct {
	CardTypes int
	Attempts  int
}

// Entry is one row of the performance leaderboard.
type Entry struct {
	Username    string  `json:"userName"`
	Performance float64 `json:"performance"`
}

// PairCount returns C(n,2), the number of unordered pairs among n cards.
func PairCount(n int) int { return n * (n - 1) / 2 }

// Index scores a single completed game. Larger boards solved in fewer
// attempts score higher.
func Index(cardTypes, attempts int) float64 {
	if attempts <= 0 {
		return 0
	}
	return float64(PairCount(cardTypes*4)) / float64(attempts)
}

// Build averages the per-game index for every user with at least one
// completed game and returns the leaderboard ordered best-first
// (descending performance, ties broken by username). Users without
// completed games are omitted.
func Build(byUser map[string][]CompletedGame) []Entry {
	entries := make([]Entry, 0, len(byUser))
	for name, games := range byUser {
		if len(games) == 0 {
			continue
		}
		total := 0.0
		for _, g := range games {
			total += Index(g.CardTypes, g.Attempts)
		}
		entries = append(entries, Entry{Username: name, Performance: total / float64(len(games))})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Performance != entries[j].Performance {
			return entries[i].Performance > entries[j].Performance
		}
		return entries[i].Username < entries[j].Username
	})
	return entries
}
