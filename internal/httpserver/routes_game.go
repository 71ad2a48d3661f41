// internal/httpserver/routes_game.go
//
// Game lifecycle endpoints:
//   - POST   /games                  → start a game (auth)
//   - GET    /games/{gameID}         → masked view of current state
//   - PUT    /games/{gameID}/move    → submit a guess pair (auth, owner-only)
//   - DELETE /games/{gameID}         → cancel an unfinished game (auth, owner-only)
//   - GET    /games/{gameID}/history → move history in creation order
//   - GET    /users/{username}/games → a user's games (unfinished by default)
//
// Invalid guesses are not HTTP errors: the game continues, so they come back
// as a 200 with the result message, and still land in the history log.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ajmarin/concentration/internal/game"
	"github.com/ajmarin/concentration/internal/store"
)

// gameView mirrors what the player is allowed to see: the masked board,
// never the raw layout.
type gameView struct {
	GameID   string `json:"gameId"`
	UserName string `json:"userName"`
	Board    string `json:"board"`
	Attempts int    `json:"attempts"`
	GameOver bool   `json:"gameOver"`
	Message  string `json:"message"`
}

func (s *Server) mountGameRoutes() {
	s.r.With(s.requireAuth()).Post("/games", s.handleNewGame)
	s.r.Get("/games/{gameID}", s.handleGetGame)
	s.r.With(s.requireAuth()).Put("/games/{gameID}/move", s.handleMove)
	s.r.With(s.requireAuth()).Delete("/games/{gameID}", s.handleCancelGame)
	s.r.Get("/games/{gameID}/history", s.handleHistory)
	s.r.Get("/users/{username}/games", s.handleUserGames)
}

func (s *Server) view(ctx context.Context, g *game.Game, message string) gameView {
	userName := g.OwnerID
	if u, err := s.st.UserByID(ctx, g.OwnerID); err == nil {
		userName = u.Username
	}
	return gameView{
		GameID:   g.ID,
		UserName: userName,
		Board:    game.Render(g.Board, g.Matched, g.LastGuess),
		Attempts: g.Attempts,
		GameOver: g.Over,
		Message:  message,
	}
}

type newGameReq struct {
	CardTypes int `json:"cardTypes"`
}

// handleNewGame shuffles a fresh board for the authenticated user.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	var req newGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, err := game.NewGame(me.ID, req.CardTypes)
	if err != nil {
		errJSON(w, http.StatusBadRequest, "Number of card types must be between 2 and 13")
		return
	}
	if err := s.st.InsertGame(r.Context(), g); err != nil {
		log.Error().Err(err).Msg("insert game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	msg := fmt.Sprintf("Board size is %d cards (0-%d). Good luck playing Concentration!",
		g.Size(), g.Size()-1)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(s.view(r.Context(), g, msg))
}

// handleGetGame returns the masked current state of a game.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	msg := "Time to make a move!"
	if g.Over {
		msg = "Great job!"
	}
	_ = json.NewEncoder(w).Encode(s.view(r.Context(), g, msg))
}

type moveReq struct {
	Card1 int `json:"card1"`
	Card2 int `json:"card2"`
}

// handleMove resolves one guess pair against the state machine and persists
// whatever the outcome says must be persisted: the mutated game for legal
// turns, the history entry for recorded submissions, and exactly one score
// row when the winning edge fires. Legal turns save the game before the
// history entry so a lost compare-and-set race never leaves a ledger entry
// for a move that was not applied.
func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	var req moveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	if g.OwnerID != me.ID {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}

	prevMove := g.LastMoveAt
	out := g.ApplyGuess(req.Card1, req.Card2)

	if out.Valid {
		if err := s.st.UpdateGame(r.Context(), g, prevMove); err != nil {
			if errors.Is(err, store.ErrConflict) {
				errJSON(w, http.StatusConflict, "Another move for this game is already in flight.")
				return
			}
			log.Error().Err(err).Str("gameId", g.ID).Msg("save game")
			http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
			return
		}
	}

	if out.Record {
		mv := &store.Move{
			GameID:    g.ID,
			Move:      fmt.Sprintf("(%d, %d)", req.Card1, req.Card2),
			Result:    out.Message,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.st.AppendMove(r.Context(), mv); err != nil {
			log.Warn().Err(err).Str("gameId", g.ID).Msg("append move")
		}
	}

	if out.Won {
		sc := &store.Score{
			UserID:    g.OwnerID,
			Date:      time.Now().UTC(),
			Guesses:   g.Attempts,
			CardTypes: g.CardTypes,
		}
		if err := s.st.InsertScore(r.Context(), sc); err != nil {
			log.Error().Err(err).Str("gameId", g.ID).Msg("insert score")
		}
	}

	_ = json.NewEncoder(w).Encode(s.view(r.Context(), g, out.Message))
}

// handleCancelGame deletes an unfinished game.
func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	if g.OwnerID != me.ID {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}
	if g.Over {
		errJSON(w, http.StatusConflict, "Game already over")
		return
	}
	if err := s.st.DeleteGame(r.Context(), g.ID); err != nil {
		log.Error().Err(err).Str("gameId", g.ID).Msg("delete game")
		http.Error(w, `{"error":"delete_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "Game canceled."})
}

// handleHistory lists a game's moves, oldest first, including rejected ones.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	g, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	moves, err := s.st.MovesByGame(r.Context(), g.ID)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": moves})
}

// handleUserGames lists a user's games; ?all=1 includes finished ones.
// An empty list is a valid answer, not a 404.
func (s *Server) handleUserGames(w http.ResponseWriter, r *http.Request) {
	u, err := s.st.UserByName(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		errJSON(w, http.StatusNotFound, "A User with that name does not exist!")
		return
	}
	onlyUnfinished := r.URL.Query().Get("all") == ""
	games, err := s.st.GamesByOwner(r.Context(), u.ID, onlyUnfinished)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	items := make([]gameView, 0, len(games))
	for _, g := range games {
		items = append(items, s.view(r.Context(), g, ""))
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
}

// loadGame fetches the game from the URL parameter or writes a 404.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (*game.Game, bool) {
	g, err := s.st.GameByID(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			errJSON(w, http.StatusNotFound, "Game not found!")
			return nil, false
		}
		log.Error().Err(err).Msg("load game")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return nil, false
	}
	return g, true
}
