// internal/httpserver/routes_multi.go
//
// HTTP routes for two-player matches, mounted under /multiplayer:
//   - POST /multiplayer/create                      → open a match
//   - POST /multiplayer/join                        → take the second seat
//   - POST /multiplayer/guess                       → submit one letter
//   - GET  /multiplayer/state/{matchId}/{playerId}  → participant view
//   - GET  /multiplayer/result/{matchId}/{playerId} → status + result
//   - GET  /multiplayer/ws/{matchId}/{playerId}     → guess event stream
//
// When a request is made with a valid token and no playerId, the account's
// username is used as the participant id.
// Any read may end a match through the deadline check; the new state is
// saved and the ended match is written to the ledger once.

package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/notify"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

const (
	defaultRoundSeconds = 90
	minRoundSeconds     = 30
)

func (s *Server) mountMulti(r chi.Router) {
	r.Route("/multiplayer", func(r chi.Router) {
		r.With(s.limiter.middleware).Post("/create", s.handleMultiCreate)
		r.With(s.limiter.middleware).Post("/join", s.handleMultiJoin)
		r.With(s.limiter.middleware).Post("/guess", s.handleMultiGuess)
		r.Get("/state/{matchId}/{playerId}", s.handleMultiState)
		r.Get("/result/{matchId}/{playerId}", s.handleMultiResult)
		if s.hub != nil {
			r.Get("/ws/{matchId}/{playerId}", s.handleMultiWS)
		}
	})
}

func matchKey(id string) string { return "match:" + id }

// playerID trims raw and falls back to the signed-in username.
func playerID(r *http.Request, raw string) string {
	if id := strings.TrimSpace(raw); id != "" {
		return id
	}
	if me := currentUser(r); me != nil {
		return me.Username
	}
	return ""
}

// roundSeconds applies the duration floor and default.
func roundSeconds(v *float64) int {
	if v == nil || math.IsNaN(*v) || *v < minRoundSeconds {
		return defaultRoundSeconds
	}
	if *v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Floor(*v))
}

// -----------------------------------------------------------------------------
// /multiplayer/create

type multiCreateReq struct {
	PlayerID             string   `json:"playerId"`
	Difficulty           string   `json:"difficulty"`
	RoundDurationSeconds *float64 `json:"roundDurationSeconds"`
}

type matchStateRes struct {
	MatchID string         `json:"matchId"`
	State   game.MatchView `json:"state"`
}

func (s *Server) handleMultiCreate(w http.ResponseWriter, r *http.Request) {
	var req multiCreateReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pid := playerID(r, req.PlayerID)
	if pid == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}
	d, _ := words.ParseDifficulty(req.Difficulty)

	m := s.engine.CreateMatch(pid, d, roundSeconds(req.RoundDurationSeconds))
	if err := s.store.SaveMatch(r.Context(), m); err != nil {
		log.Error().Err(err).Str("matchId", m.ID).Msg("save match")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	view, _ := s.engine.MatchState(m, pid)
	log.Info().Str("matchId", m.ID).Str("playerId", pid).Str("difficulty", string(d)).Msg("match created")
	writeJSON(w, http.StatusOK, matchStateRes{MatchID: m.ID, State: view})
}

// -----------------------------------------------------------------------------
// /multiplayer/join

type multiJoinReq struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
}

func (s *Server) handleMultiJoin(w http.ResponseWriter, r *http.Request) {
	var req multiJoinReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	matchID, pid := strings.TrimSpace(req.MatchID), playerID(r, req.PlayerID)
	if matchID == "" || pid == "" {
		writeError(w, http.StatusBadRequest, "matchId and playerId are required")
		return
	}

	unlock := s.locks.Lock(matchKey(matchID))
	defer unlock()

	m, ok := s.loadMatch(w, r, matchID)
	if !ok {
		return
	}
	if err := s.engine.Join(m, pid); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err := s.store.SaveMatch(r.Context(), m); err != nil {
		log.Error().Err(err).Str("matchId", m.ID).Msg("save match")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	joined := m.Status
	view, err := s.engine.MatchState(m, pid)
	if err != nil {
		writeError(w, http.StatusNotFound, "player not found in match")
		return
	}
	s.afterMatchRead(r, m, joined)
	writeJSON(w, http.StatusOK, matchStateRes{MatchID: m.ID, State: view})
}

// -----------------------------------------------------------------------------
// /multiplayer/guess

type multiGuessReq struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	Letter   string `json:"letter"`
}

type multiGuessRes struct {
	MatchID  string `json:"matchId"`
	PlayerID string `json:"playerId"`
	game.MatchGuess
}

func (s *Server) handleMultiGuess(w http.ResponseWriter, r *http.Request) {
	var req multiGuessReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	matchID, pid := strings.TrimSpace(req.MatchID), playerID(r, req.PlayerID)
	letter := strings.TrimSpace(req.Letter)
	if matchID == "" || pid == "" || letter == "" {
		writeError(w, http.StatusBadRequest, "matchId, playerId, and letter are required")
		return
	}

	unlock := s.locks.Lock(matchKey(matchID))
	defer unlock()

	m, ok := s.loadMatch(w, r, matchID)
	if !ok {
		return
	}
	if m.Player(pid) == nil {
		writeError(w, http.StatusNotFound, "player not found in match")
		return
	}
	switch m.Status {
	case game.MatchWaiting:
		writeError(w, http.StatusConflict, "waiting for opponent to join")
		return
	case game.MatchEnded:
		writeError(w, http.StatusConflict, "match already ended")
		return
	}

	res, err := s.engine.SubmitMatchGuess(m, pid, letter)
	if errors.Is(err, game.ErrParticipantNotFound) {
		writeError(w, http.StatusNotFound, "player not found in match")
		return
	}
	if err := s.store.SaveMatch(r.Context(), m); err != nil {
		log.Error().Err(err).Str("matchId", m.ID).Msg("save match")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	s.recordIfEnded(r, m)
	if res.Code.Applied() {
		s.notifier.Publish(notify.Event{
			MatchID:     m.ID,
			PlayerID:    pid,
			Letter:      res.Letter,
			Code:        res.Code,
			MatchStatus: m.Status,
		})
	}

	writeJSON(w, http.StatusOK, multiGuessRes{MatchID: m.ID, PlayerID: pid, MatchGuess: res})
}

// -----------------------------------------------------------------------------
// /multiplayer/state and /multiplayer/result

type matchResultRes struct {
	MatchID string           `json:"matchId"`
	Status  game.MatchStatus `json:"status"`
	Result  *game.Result     `json:"result"`
}

func (s *Server) handleMultiState(w http.ResponseWriter, r *http.Request) {
	matchID, pid := chi.URLParam(r, "matchId"), chi.URLParam(r, "playerId")
	view, ok := s.observeMatch(w, r, matchID, pid)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matchId": matchID, "playerId": pid, "state": view})
}

func (s *Server) handleMultiResult(w http.ResponseWriter, r *http.Request) {
	matchID, pid := chi.URLParam(r, "matchId"), chi.URLParam(r, "playerId")
	view, ok := s.observeMatch(w, r, matchID, pid)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, matchResultRes{MatchID: matchID, Status: view.Status, Result: view.Result})
}

// observeMatch loads a match under its lock and projects it for pid.
func (s *Server) observeMatch(w http.ResponseWriter, r *http.Request, matchID, pid string) (game.MatchView, bool) {
	unlock := s.locks.Lock(matchKey(matchID))
	defer unlock()

	m, ok := s.loadMatch(w, r, matchID)
	if !ok {
		return game.MatchView{}, false
	}
	before := m.Status
	view, err := s.engine.MatchState(m, pid)
	if errors.Is(err, game.ErrParticipantNotFound) {
		writeError(w, http.StatusNotFound, "player not found in match")
		return game.MatchView{}, false
	}
	s.afterMatchRead(r, m, before)
	return view, true
}

// afterMatchRead persists a match whose status changed during a read.
func (s *Server) afterMatchRead(r *http.Request, m *game.Match, before game.MatchStatus) {
	if m.Status == before {
		return
	}
	if err := s.store.SaveMatch(r.Context(), m); err != nil {
		log.Warn().Err(err).Str("matchId", m.ID).Msg("save expired match")
		return
	}
	s.recordIfEnded(r, m)
}

// recordIfEnded writes an ended match to the ledger; repeats are ignored there.
func (s *Server) recordIfEnded(r *http.Request, m *game.Match) {
	if m.Status != game.MatchEnded {
		return
	}
	wrote, err := s.ledger.RecordMatch(r.Context(), m, s.engine.Now())
	if err != nil {
		log.Warn().Err(err).Str("matchId", m.ID).Msg("ledger record match")
		return
	}
	if wrote {
		ev := log.Info().Str("matchId", m.ID).Str("reason", string(m.Result.Reason)).Bool("draw", m.Result.IsDraw)
		if m.Result.WinnerPlayerID != nil {
			ev = ev.Str("winner", *m.Result.WinnerPlayerID)
		}
		ev.Msg("match ended")
	}
}

// -----------------------------------------------------------------------------
// /multiplayer/ws/{matchId}/{playerId}

func (s *Server) handleMultiWS(w http.ResponseWriter, r *http.Request) {
	matchID, pid := chi.URLParam(r, "matchId"), chi.URLParam(r, "playerId")

	unlock := s.locks.Lock(matchKey(matchID))
	m, ok := s.loadMatch(w, r, matchID)
	unlock()
	if !ok {
		return
	}
	if m.Player(pid) == nil {
		writeError(w, http.StatusNotFound, "player not found in match")
		return
	}
	s.hub.ServeWS(w, r, matchID, pid)
}

func (s *Server) loadMatch(w http.ResponseWriter, r *http.Request, id string) (*game.Match, bool) {
	m, err := s.store.GetMatch(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "match not found")
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("matchId", id).Msg("get match")
		writeError(w, http.StatusInternalServerError, "store_error")
		return nil, false
	}
	return m, true
}
