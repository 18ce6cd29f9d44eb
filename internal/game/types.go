// internal/game/types.go
//
// Core type definitions for the hangman engines.
// Defines:
//   - Status / MatchStatus / Outcome / Reason enums.
//   - Tracker: one participant's guess history against a word and budget.
//   - SoloRound: a single-participant game instance.
//   - Match, ParticipantState, Result: a two-participant race.
//   - Views: participant-safe projections returned to callers.

package game

import (
	"errors"
	"time"

	"github.com/robalobadob/hangman/internal/words"
)

// Status is the progress of one guesser (solo round or match participant).
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchWaiting    MatchStatus = "waiting_for_opponent"
	MatchInProgress MatchStatus = "in_progress"
	MatchEnded      MatchStatus = "ended"
)

// Outcome is the result code of a single guess submission.
type Outcome string

const (
	OutcomeInvalid   Outcome = "invalid"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeCorrect   Outcome = "correct"
	OutcomeWrong     Outcome = "wrong"
)

// Applied reports whether the guess changed the guesser's state.
func (o Outcome) Applied() bool { return o == OutcomeCorrect || o == OutcomeWrong }

// Reason explains how a match result was decided.
type Reason string

const (
	ReasonSolvedStatus Reason = "solved_status"
	ReasonEfficiency   Reason = "efficiency"
	ReasonSpeed        Reason = "speed"
	ReasonExactTie     Reason = "exact_tie"
	ReasonBothFailed   Reason = "both_failed"
)

// Domain-contract violations surfaced to callers.
var (
	ErrMatchUnavailable    = errors.New("match unavailable")
	ErrParticipantNotFound = errors.New("player not found")
)

// MaxParticipants is the fixed capacity of a match.
const MaxParticipants = 2

// Tracker holds one guesser's progress. Shared by rounds and matches.
type Tracker struct {
	GuessedLetters  []string `json:"guessedLetters"` // insertion order, no repeats
	WrongGuesses    int      `json:"wrongGuesses"`
	MaxWrongGuesses int      `json:"maxWrongGuesses"`
	Status          Status   `json:"status"`
}

// SoloRound is one guesser against one hidden word.
type SoloRound struct {
	ID         string           `json:"id"`
	Word       string           `json:"word"`
	Difficulty words.Difficulty `json:"difficulty"`
	CreatedAt  time.Time        `json:"createdAt"`
	Tracker
}

// ParticipantState is one side of a match.
type ParticipantState struct {
	PlayerID string     `json:"playerId"`
	SolvedAt *time.Time `json:"solvedAt,omitempty"` // set only on transition to won
	Tracker
}

// Result is the final outcome of a match. Written once, when the match ends.
type Result struct {
	WinnerPlayerID *string `json:"winnerPlayerId"` // nil for a draw
	IsDraw         bool    `json:"isDraw"`
	Reason         Reason  `json:"reason"`
}

// Match is two participants racing on one word under a shared deadline.
type Match struct {
	ID                   string              `json:"id"`
	Word                 string              `json:"word"`
	Difficulty           words.Difficulty    `json:"difficulty"`
	CreatedAt            time.Time           `json:"createdAt"`
	RoundDurationSeconds int                 `json:"roundDurationSeconds"`
	Status               MatchStatus         `json:"status"`
	Players              []*ParticipantState `json:"players"` // first entry is the creator
	Result               *Result             `json:"result,omitempty"`
}

// ---------------------------------------------------------------------------
// Projections

// RoundView is the public state of a solo round.
type RoundView struct {
	ID              string   `json:"id"`
	MaskedWord      string   `json:"maskedWord"`
	GuessedLetters  []string `json:"guessedLetters"`
	WrongGuesses    int      `json:"wrongGuesses"`
	MaxWrongGuesses int      `json:"maxWrongGuesses"`
	AttemptsLeft    int      `json:"attemptsLeft"`
	Status          Status   `json:"status"`
}

// RoundGuess is returned by a solo guess submission.
type RoundGuess struct {
	Code   Outcome   `json:"code"`
	Letter string    `json:"letter"`
	State  RoundView `json:"state"`
}

// PlayerView is the acting participant's own view of a match.
type PlayerView struct {
	PlayerID        string   `json:"playerId"`
	MaskedWord      string   `json:"maskedWord"`
	GuessedLetters  []string `json:"guessedLetters"`
	WrongGuesses    int      `json:"wrongGuesses"`
	MaxWrongGuesses int      `json:"maxWrongGuesses"`
	AttemptsLeft    int      `json:"attemptsLeft"`
	Status          Status   `json:"status"`
}

// OpponentView withholds the opponent's letters and the word.
type OpponentView struct {
	PlayerID     string `json:"playerId"`
	WrongGuesses int    `json:"wrongGuesses"`
	AttemptsLeft int    `json:"attemptsLeft"`
	Status       Status `json:"status"`
}

// MatchView is a match projected for one participant.
type MatchView struct {
	MatchID          string           `json:"matchId"`
	Status           MatchStatus      `json:"status"`
	Difficulty       words.Difficulty `json:"difficulty"`
	SecondsRemaining int              `json:"secondsRemaining"`
	Self             PlayerView       `json:"self"`
	Opponent         *OpponentView    `json:"opponent"`
	Result           *Result          `json:"result,omitempty"`
}

// MatchGuess is returned by a match guess submission.
type MatchGuess struct {
	Code   Outcome   `json:"code"`
	Letter string    `json:"letter"`
	State  MatchView `json:"state"`
}
