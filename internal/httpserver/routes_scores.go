// internal/httpserver/routes_scores.go
//
// Read-only score and ranking endpoints:
//   - GET /scores                         → every recorded score
//   - GET /scores/top?cardTypes=&limit=   → best (fewest-guess) scores for a difficulty
//   - GET /users/{username}/scores        → one user's scores
//   - GET /rankings                       → per-user performance leaderboard
//
// Scores cannot be compared across board sizes, so /scores/top requires the
// difficulty. The rankings list is sorted best-first; see internal/rank for
// the normalization.

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ajmarin/concentration/internal/game"
	"github.com/ajmarin/concentration/internal/rank"
)

func (s *Server) mountScoreRoutes() {
	s.r.Get("/scores", s.handleScores)
	s.r.Get("/scores/top", s.handleTopScores)
	s.r.Get("/users/{username}/scores", s.handleUserScores)
	s.r.Get("/rankings", s.handleRankings)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.st.Scores(r.Context())
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": scores})
}

func (s *Server) handleTopScores(w http.ResponseWriter, r *http.Request) {
	cardTypes, err := strconv.Atoi(r.URL.Query().Get("cardTypes"))
	if err != nil || cardTypes < game.MinCardTypes || cardTypes > game.MaxCardTypes {
		errJSON(w, http.StatusBadRequest, "Number of card types must be between 2 and 13")
		return
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		errJSON(w, http.StatusBadRequest, "Number of results must be greater than zero.")
		return
	}
	scores, err := s.st.TopScores(r.Context(), cardTypes, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": scores})
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	u, err := s.st.UserByName(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		errJSON(w, http.StatusNotFound, "A User with that name does not exist!")
		return
	}
	scores, err := s.st.ScoresByUser(r.Context(), u.ID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": scores})
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	stats, err := s.st.CompletedGameStats(r.Context())
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	byUser := make(map[string][]rank.CompletedGame)
	for _, st := range stats {
		byUser[st.Username] = append(byUser[st.Username],
			rank.CompletedGame{CardTypes: st.CardTypes, Attempts: st.Attempts})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": rank.Build(byUser)})
}
