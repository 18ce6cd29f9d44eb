// internal/game/match.go
//
// Match Engine: two participants race on one shared word.
// Lifecycle:
//   waiting_for_opponent --(second join)--> in_progress --(resolution)--> ended
//
// Every operation that reads or mutates a match first applies timer
// resolution, so a match past its deadline is ended before anything else
// observes it. A lone creator's match never expires.

package game

import (
	"time"

	"github.com/robalobadob/hangman/internal/words"
)

// CreateMatch opens a match for creatorID. roundDurationSeconds is used as-is.
func (e *Engine) CreateMatch(creatorID string, d words.Difficulty, roundDurationSeconds int) *Match {
	word, budget := e.words.Select(d)
	return &Match{
		ID:                   e.newID(),
		Word:                 word,
		Difficulty:           d,
		CreatedAt:            e.clock.Now().UTC(),
		RoundDurationSeconds: roundDurationSeconds,
		Status:               MatchWaiting,
		Players:              []*ParticipantState{newParticipant(creatorID, budget)},
	}
}

// Join adds playerID as the opponent. Joining twice is a no-op.
func (e *Engine) Join(m *Match, playerID string) error {
	if m.Player(playerID) != nil {
		return nil
	}
	if len(m.Players) >= MaxParticipants || m.Status == MatchEnded {
		return ErrMatchUnavailable
	}
	m.Players = append(m.Players, newParticipant(playerID, words.Budget(m.Difficulty)))
	if len(m.Players) == MaxParticipants {
		m.Status = MatchInProgress
	}
	return nil
}

// SubmitMatchGuess applies rawLetter for playerID.
// ErrParticipantNotFound is returned, with an invalid outcome, for unknown players.
func (e *Engine) SubmitMatchGuess(m *Match, playerID, rawLetter string) (MatchGuess, error) {
	e.ResolveTimer(m)
	letter := NormalizeLetter(rawLetter)

	p := m.Player(playerID)
	if p == nil {
		return MatchGuess{Code: OutcomeInvalid, Letter: letter}, ErrParticipantNotFound
	}

	code := OutcomeInvalid
	if m.Status == MatchInProgress {
		code = p.Guess(m.Word, letter)
		switch p.Status {
		case StatusWon:
			if code == OutcomeCorrect {
				now := e.clock.Now().UTC()
				p.SolvedAt = &now
				resolveRoundEnd(m)
			}
		case StatusLost:
			if code == OutcomeWrong {
				resolveRoundEnd(m)
			}
		}
	}

	view, err := e.MatchState(m, playerID)
	return MatchGuess{Code: code, Letter: letter, State: view}, err
}

// ResolveTimer ends an in-progress match whose deadline has passed.
// It reports whether the match was ended by this call.
func (e *Engine) ResolveTimer(m *Match) bool {
	if m.Status != MatchInProgress || len(m.Players) < MaxParticipants {
		return false
	}
	if e.clock.Now().Before(m.Deadline()) {
		return false
	}
	res := ResolveWinner(m.Players[0], m.Players[1])
	m.Status = MatchEnded
	m.Result = &res
	return true
}

// MatchState projects m for playerID after applying timer resolution.
func (e *Engine) MatchState(m *Match, playerID string) (MatchView, error) {
	e.ResolveTimer(m)

	self := m.Player(playerID)
	if self == nil {
		return MatchView{}, ErrParticipantNotFound
	}

	view := MatchView{
		MatchID:          m.ID,
		Status:           m.Status,
		Difficulty:       m.Difficulty,
		SecondsRemaining: e.secondsRemaining(m),
		Self: PlayerView{
			PlayerID:        self.PlayerID,
			MaskedWord:      Mask(m.Word, self.GuessedLetters),
			GuessedLetters:  self.Letters(),
			WrongGuesses:    self.WrongGuesses,
			MaxWrongGuesses: self.MaxWrongGuesses,
			AttemptsLeft:    self.AttemptsLeft(),
			Status:          self.Status,
		},
		Result: m.Result,
	}
	if opp := m.Opponent(playerID); opp != nil {
		view.Opponent = &OpponentView{
			PlayerID:     opp.PlayerID,
			WrongGuesses: opp.WrongGuesses,
			AttemptsLeft: opp.AttemptsLeft(),
			Status:       opp.Status,
		}
	}
	return view, nil
}

// Player finds a participant by id.
func (m *Match) Player(playerID string) *ParticipantState {
	for _, p := range m.Players {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// Opponent returns the first participant that is not playerID.
func (m *Match) Opponent(playerID string) *ParticipantState {
	for _, p := range m.Players {
		if p.PlayerID != playerID {
			return p
		}
	}
	return nil
}

// Deadline is the wall-clock instant the round duration runs out.
func (m *Match) Deadline() time.Time {
	return m.CreatedAt.Add(time.Duration(m.RoundDurationSeconds) * time.Second)
}

// secondsRemaining is computed fresh on each projection and never stored.
func (e *Engine) secondsRemaining(m *Match) int {
	elapsed := int(e.clock.Now().Sub(m.CreatedAt) / time.Second)
	return max(m.RoundDurationSeconds-elapsed, 0)
}

func newParticipant(playerID string, budget int) *ParticipantState {
	return &ParticipantState{PlayerID: playerID, Tracker: NewTracker(budget)}
}
