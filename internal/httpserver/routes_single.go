// internal/httpserver/routes_single.go
//
// HTTP routes for single-player rounds, mounted under /singleplayer:
//   - POST /singleplayer/start              → start a round
//   - GET  /singleplayer/state/{sessionId}  → current public state
//   - POST /singleplayer/guess              → submit one letter
//
// Rounds live in the store; the ledger keeps a history row per round and
// signed-in players get their stats bumped once the round finishes.

package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func (s *Server) mountSingle(r chi.Router) {
	r.Route("/singleplayer", func(r chi.Router) {
		r.With(s.limiter.middleware).Post("/start", s.handleSingleStart)
		r.Get("/state/{sessionId}", s.handleSingleState)
		r.With(s.limiter.middleware).Post("/guess", s.handleSingleGuess)
	})
}

func roundKey(id string) string { return "round:" + id }

// -----------------------------------------------------------------------------
// /singleplayer/start

type singleStartReq struct {
	Difficulty string `json:"difficulty"`
}

type singleStartRes struct {
	SessionID  string           `json:"sessionId"`
	Difficulty words.Difficulty `json:"difficulty"`
	State      game.RoundView   `json:"state"`
}

func (s *Server) handleSingleStart(w http.ResponseWriter, r *http.Request) {
	var req singleStartReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	d, _ := words.ParseDifficulty(req.Difficulty)

	round := s.engine.StartRound(d)
	if err := s.store.SaveRound(r.Context(), round); err != nil {
		log.Error().Err(err).Str("sessionId", round.ID).Msg("save round")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	if err := s.ledger.StartRound(r.Context(), s.owner(w, r), round); err != nil {
		log.Warn().Err(err).Str("sessionId", round.ID).Msg("ledger start round")
	}

	writeJSON(w, http.StatusOK, singleStartRes{SessionID: round.ID, Difficulty: d, State: game.RoundState(round)})
}

// -----------------------------------------------------------------------------
// /singleplayer/state/{sessionId}

func (s *Server) handleSingleState(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	unlock := s.locks.Lock(roundKey(id))
	defer unlock()

	round, ok := s.loadRound(w, r, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": id, "state": game.RoundState(round)})
}

// -----------------------------------------------------------------------------
// /singleplayer/guess

type singleGuessReq struct {
	SessionID string `json:"sessionId"`
	Letter    string `json:"letter"`
}

type singleGuessRes struct {
	SessionID string `json:"sessionId"`
	game.RoundGuess
}

func (s *Server) handleSingleGuess(w http.ResponseWriter, r *http.Request) {
	var req singleGuessReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" || req.Letter == "" {
		writeError(w, http.StatusBadRequest, "sessionId and letter are required")
		return
	}

	unlock := s.locks.Lock(roundKey(req.SessionID))
	defer unlock()

	round, ok := s.loadRound(w, r, req.SessionID)
	if !ok {
		return
	}
	res := s.engine.SubmitGuess(round, req.Letter)

	if res.Code.Applied() {
		if err := s.store.SaveRound(r.Context(), round); err != nil {
			log.Error().Err(err).Str("sessionId", round.ID).Msg("save round")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		s.recordRoundProgress(r, round)
	}

	writeJSON(w, http.StatusOK, singleGuessRes{SessionID: req.SessionID, RoundGuess: res})
}

// recordRoundProgress syncs the ledger row and, on the finishing guess,
// the signed-in player's stats.
func (s *Server) recordRoundProgress(r *http.Request, round *game.SoloRound) {
	finished, err := s.ledger.UpdateRound(r.Context(), round, s.engine.Now())
	if err != nil {
		log.Warn().Err(err).Str("sessionId", round.ID).Msg("ledger update round")
		return
	}
	if me := currentUser(r); finished && me != nil {
		if err := s.bumpStats(r.Context(), me.ID, round.Status == game.StatusWon); err != nil {
			log.Warn().Err(err).Str("user", me.ID).Msg("bump stats")
		}
	}
}

func (s *Server) loadRound(w http.ResponseWriter, r *http.Request, id string) (*game.SoloRound, bool) {
	round, err := s.store.GetRound(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("sessionId", id).Msg("get round")
		writeError(w, http.StatusInternalServerError, "store_error")
		return nil, false
	}
	return round, true
}
