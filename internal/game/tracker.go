// internal/game/tracker.go
//
// Guess tracker shared by the solo round and match engines.
//
// Validation ladder for one submission (first match wins):
//   1. letter is not exactly one of a–z, or the tracker is finished → invalid
//   2. letter already guessed                                        → duplicate
//   3. letter recorded; in word → correct (won if word complete),
//      otherwise → wrong (lost once the budget is reached)
//
// Invalid and duplicate submissions never mutate the tracker.

package game

import (
	"strings"

	"github.com/samber/lo"
)

const (
	maskPlaceholder = "_"
	maskSeparator   = " "
)

// NewTracker returns an in-progress tracker with the given budget.
func NewTracker(budget int) Tracker {
	return Tracker{
		GuessedLetters:  []string{},
		MaxWrongGuesses: budget,
		Status:          StatusInProgress,
	}
}

// NormalizeLetter trims and lowercases raw input.
func NormalizeLetter(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// validLetter reports whether s is exactly one lowercase ASCII letter.
func validLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}

// Guess applies an already-normalized letter against word.
func (t *Tracker) Guess(word, letter string) Outcome {
	if !validLetter(letter) || t.Status != StatusInProgress {
		return OutcomeInvalid
	}
	if t.HasGuessed(letter) {
		return OutcomeDuplicate
	}
	t.GuessedLetters = append(t.GuessedLetters, letter)

	if strings.Contains(word, letter) {
		if t.Solved(word) {
			t.Status = StatusWon
		}
		return OutcomeCorrect
	}

	t.WrongGuesses++
	if t.WrongGuesses >= t.MaxWrongGuesses {
		t.Status = StatusLost
	}
	return OutcomeWrong
}

// HasGuessed reports whether letter is already in the history.
func (t *Tracker) HasGuessed(letter string) bool {
	return lo.Contains(t.GuessedLetters, letter)
}

// Solved reports whether every distinct character of word has been guessed.
func (t *Tracker) Solved(word string) bool {
	return lo.Every(t.GuessedLetters, lo.Uniq(strings.Split(word, "")))
}

// AttemptsLeft is the remaining budget, never negative.
func (t *Tracker) AttemptsLeft() int {
	return max(t.MaxWrongGuesses-t.WrongGuesses, 0)
}

// Letters returns a copy of the guess history.
func (t *Tracker) Letters() []string {
	return append([]string{}, t.GuessedLetters...)
}

// Mask reveals guessed positions of word and hides the rest.
func Mask(word string, guessed []string) string {
	cells := lo.Map(strings.Split(word, ""), func(c string, _ int) string {
		if lo.Contains(guessed, strings.ToLower(c)) {
			return c
		}
		return maskPlaceholder
	})
	return strings.Join(cells, maskSeparator)
}
