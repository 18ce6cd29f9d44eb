// internal/game/engine.go
//
// Engine entry point and the Solo Round Engine.
// Responsibilities:
//   - Hold the injected collaborators: word bank, clock, id generator.
//   - Start solo rounds and apply guesses to them.
//
// Notes:
//   - The engine keeps no state between calls; rounds and matches are owned
//     by the caller's store and passed in by pointer.
//   - Callers must serialize calls per round/match id.

package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/hangman/internal/words"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Engine runs both game variants.
type Engine struct {
	words *words.Bank
	clock Clock
	newID func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithIDs replaces the identifier generator.
func WithIDs(f func() string) Option { return func(e *Engine) { e.newID = f } }

// NewEngine builds an engine drawing words from bank.
func NewEngine(bank *words.Bank, opts ...Option) *Engine {
	e := &Engine{words: bank, clock: SystemClock, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now reads the engine's clock in UTC.
func (e *Engine) Now() time.Time { return e.clock.Now().UTC() }

// StartRound creates a fresh in-progress round for difficulty d.
func (e *Engine) StartRound(d words.Difficulty) *SoloRound {
	word, budget := e.words.Select(d)
	return &SoloRound{
		ID:         e.newID(),
		Word:       word,
		Difficulty: d,
		CreatedAt:  e.clock.Now().UTC(),
		Tracker:    NewTracker(budget),
	}
}

// SubmitGuess applies rawLetter to r. Finished rounds only answer invalid.
func (e *Engine) SubmitGuess(r *SoloRound, rawLetter string) RoundGuess {
	letter := NormalizeLetter(rawLetter)
	code := r.Guess(r.Word, letter)
	return RoundGuess{Code: code, Letter: letter, State: RoundState(r)}
}

// RoundState projects r for its guesser.
func RoundState(r *SoloRound) RoundView {
	return RoundView{
		ID:              r.ID,
		MaskedWord:      Mask(r.Word, r.GuessedLetters),
		GuessedLetters:  r.Letters(),
		WrongGuesses:    r.WrongGuesses,
		MaxWrongGuesses: r.MaxWrongGuesses,
		AttemptsLeft:    r.AttemptsLeft(),
		Status:          r.Status,
	}
}
