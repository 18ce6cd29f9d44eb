package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/words"
)

// setupMatch creates a started two-player match over word.
func setupMatch(t *testing.T, word string, d words.Difficulty, duration int) (*Engine, *fakeClock, *Match) {
	t.Helper()
	e, clock := setupEngine(t, word)
	m := e.CreateMatch("p1", d, duration)
	require.NoError(t, e.Join(m, "p2"))
	require.Equal(t, MatchInProgress, m.Status)
	return e, clock, m
}

func matchGuesses(t *testing.T, e *Engine, m *Match, playerID string, letters ...string) {
	t.Helper()
	for _, l := range letters {
		_, err := e.SubmitMatchGuess(m, playerID, l)
		require.NoError(t, err)
	}
}

func TestCreateMatch(t *testing.T) {
	e, _ := setupEngine(t, "cab")
	m := e.CreateMatch("p1", words.Easy, 90)

	assert.Equal(t, "id-1", m.ID)
	assert.Equal(t, MatchWaiting, m.Status)
	require.Len(t, m.Players, 1)
	assert.Equal(t, "p1", m.Players[0].PlayerID)
	assert.Equal(t, 8, m.Players[0].MaxWrongGuesses)
	assert.Nil(t, m.Result)

	view, err := e.MatchState(m, "p1")
	require.NoError(t, err)
	assert.Nil(t, view.Opponent)
	assert.Equal(t, 90, view.SecondsRemaining)
}

func TestJoinStartsMatchWithSharedBudget(t *testing.T) {
	e, _ := setupEngine(t, "cab")
	m := e.CreateMatch("p1", words.Easy, 90)

	require.NoError(t, e.Join(m, "p2"))
	assert.Equal(t, MatchInProgress, m.Status)
	require.Len(t, m.Players, 2)
	assert.Equal(t, m.Players[0].MaxWrongGuesses, m.Players[1].MaxWrongGuesses)
	assert.Equal(t, "p1", m.Players[0].PlayerID)
}

func TestJoinIsIdempotent(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Medium, 90)
	matchGuesses(t, e, m, "p2", "c")

	require.NoError(t, e.Join(m, "p2"))
	require.NoError(t, e.Join(m, "p1"))
	assert.Len(t, m.Players, 2)
	assert.Equal(t, []string{"c"}, m.Player("p2").GuessedLetters)
}

func TestJoinUnavailable(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Easy, 90)
	assert.ErrorIs(t, e.Join(m, "p3"), ErrMatchUnavailable)
	assert.Len(t, m.Players, 2)

	lone := e.CreateMatch("solo", words.Easy, 90)
	lone.Status = MatchEnded
	assert.ErrorIs(t, e.Join(lone, "p2"), ErrMatchUnavailable)
	assert.Len(t, lone.Players, 1)
}

func TestWaitingMatchNeverExpires(t *testing.T) {
	e, clock := setupEngine(t, "cab")
	m := e.CreateMatch("p1", words.Easy, 30)
	clock.Advance(10 * time.Minute)

	assert.False(t, e.ResolveTimer(m))
	view, err := e.MatchState(m, "p1")
	require.NoError(t, err)
	assert.Equal(t, MatchWaiting, view.Status)
	assert.Equal(t, 0, view.SecondsRemaining)

	// A late join still starts the match; the deadline then applies on next access.
	require.NoError(t, e.Join(m, "p2"))
	assert.Equal(t, MatchInProgress, m.Status)
	res, err := e.SubmitMatchGuess(m, "p2", "c")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Code)
	assert.Equal(t, MatchEnded, m.Status)
}

func TestMatchGuessWhileWaitingIsInvalid(t *testing.T) {
	e, _ := setupEngine(t, "cab")
	m := e.CreateMatch("p1", words.Easy, 90)

	res, err := e.SubmitMatchGuess(m, "p1", "c")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Code)
	assert.Empty(t, m.Players[0].GuessedLetters)
}

func TestMatchGuessUnknownPlayer(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Easy, 90)

	res, err := e.SubmitMatchGuess(m, "ghost", " C ")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
	assert.Equal(t, OutcomeInvalid, res.Code)
	assert.Equal(t, "c", res.Letter)

	_, err = e.MatchState(m, "ghost")
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestMatchGuessCodes(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Easy, 90)

	cases := []struct {
		player string
		raw    string
		want   Outcome
	}{
		{"p1", "c", OutcomeCorrect},
		{"p1", "C", OutcomeDuplicate},
		{"p1", "zz", OutcomeInvalid},
		{"p1", "z", OutcomeWrong},
		{"p2", "c", OutcomeCorrect},
		{"p2", "7", OutcomeInvalid},
	}
	for _, tc := range cases {
		res, err := e.SubmitMatchGuess(m, tc.player, tc.raw)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Code, "%s guessed %q", tc.player, tc.raw)
	}
	assert.Equal(t, []string{"c", "z"}, m.Player("p1").GuessedLetters)
	assert.Equal(t, []string{"c"}, m.Player("p2").GuessedLetters)
	assert.Equal(t, 1, m.Player("p1").WrongGuesses)
}

func TestFirstSolverWins(t *testing.T) {
	e, clock, m := setupMatch(t, "cab", words.Easy, 90)
	matchGuesses(t, e, m, "p2", "c", "a")
	clock.Advance(5 * time.Second)
	matchGuesses(t, e, m, "p1", "x", "c", "a")

	res, err := e.SubmitMatchGuess(m, "p1", "b")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, res.Code)
	assert.Equal(t, MatchEnded, res.State.Status)
	require.NotNil(t, res.State.Result)
	require.NotNil(t, res.State.Result.WinnerPlayerID)
	assert.Equal(t, "p1", *res.State.Result.WinnerPlayerID)
	assert.Equal(t, ReasonSolvedStatus, res.State.Result.Reason)
	assert.False(t, res.State.Result.IsDraw)

	p1 := m.Player("p1")
	require.NotNil(t, p1.SolvedAt)
	assert.Equal(t, clock.Now(), *p1.SolvedAt)
	assert.Nil(t, m.Player("p2").SolvedAt)

	// The loser is frozen out once the match ended.
	res, err = e.SubmitMatchGuess(m, "p2", "b")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Code)
	assert.Equal(t, StatusInProgress, m.Player("p2").Status)
	assert.Equal(t, "p1", *m.Result.WinnerPlayerID)
}

func TestOneLostMatchContinues(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Hard, 90)
	matchGuesses(t, e, m, "p1", "d", "e", "f", "g", "h", "i")
	assert.Equal(t, StatusLost, m.Player("p1").Status)
	assert.Equal(t, MatchInProgress, m.Status)
	assert.Nil(t, m.Result)

	res, err := e.SubmitMatchGuess(m, "p1", "c")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Code)

	matchGuesses(t, e, m, "p2", "z", "z", "c", "a", "b")
	assert.Equal(t, MatchEnded, m.Status)
	require.NotNil(t, m.Result.WinnerPlayerID)
	assert.Equal(t, "p2", *m.Result.WinnerPlayerID)
	assert.Equal(t, ReasonSolvedStatus, m.Result.Reason)
}

func TestBothFailed(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Hard, 90)
	matchGuesses(t, e, m, "p1", "d", "e", "f", "g", "h", "i")
	matchGuesses(t, e, m, "p2", "u", "v", "w", "x", "y")
	assert.Equal(t, MatchInProgress, m.Status)

	res, err := e.SubmitMatchGuess(m, "p2", "z")
	require.NoError(t, err)
	assert.Equal(t, OutcomeWrong, res.Code)
	assert.Equal(t, MatchEnded, m.Status)
	assert.Equal(t, &Result{IsDraw: true, Reason: ReasonBothFailed}, m.Result)
}

func TestDeadlineDrawOnEqualWrongGuesses(t *testing.T) {
	e, clock, m := setupMatch(t, "cab", words.Easy, 60)
	matchGuesses(t, e, m, "p1", "c", "x")
	matchGuesses(t, e, m, "p2", "y", "a")

	clock.Advance(59 * time.Second)
	view, err := e.MatchState(m, "p1")
	require.NoError(t, err)
	assert.Equal(t, MatchInProgress, view.Status)
	assert.Equal(t, 1, view.SecondsRemaining)

	clock.Advance(time.Second)
	view, err = e.MatchState(m, "p2")
	require.NoError(t, err)
	assert.Equal(t, MatchEnded, view.Status)
	assert.Equal(t, 0, view.SecondsRemaining)
	require.NotNil(t, view.Result)
	assert.True(t, view.Result.IsDraw)
	assert.Nil(t, view.Result.WinnerPlayerID)
	assert.Equal(t, ReasonExactTie, view.Result.Reason)
	assert.Equal(t, StatusInProgress, m.Player("p1").Status)
}

func TestDeadlineEfficiencyWinner(t *testing.T) {
	e, clock, m := setupMatch(t, "cab", words.Easy, 90)
	matchGuesses(t, e, m, "p1", "x", "y", "c")
	matchGuesses(t, e, m, "p2", "z", "a")

	clock.Advance(2 * time.Minute)
	assert.True(t, e.ResolveTimer(m))
	assert.False(t, e.ResolveTimer(m), "a match ends only once")
	require.NotNil(t, m.Result.WinnerPlayerID)
	assert.Equal(t, "p2", *m.Result.WinnerPlayerID)
	assert.Equal(t, ReasonEfficiency, m.Result.Reason)
}

func TestGuessAfterDeadlineIsInvalid(t *testing.T) {
	e, clock, m := setupMatch(t, "cab", words.Easy, 30)
	clock.Advance(31 * time.Second)

	res, err := e.SubmitMatchGuess(m, "p1", "c")
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Code)
	assert.Equal(t, MatchEnded, res.State.Status)
	assert.Empty(t, m.Player("p1").GuessedLetters)
}

func TestSecondsRemainingIsComputedFresh(t *testing.T) {
	e, clock, m := setupMatch(t, "cab", words.Easy, 90)
	clock.Advance(30*time.Second + 500*time.Millisecond)

	view, err := e.MatchState(m, "p1")
	require.NoError(t, err)
	assert.Equal(t, 60, view.SecondsRemaining)

	clock.Advance(10 * time.Second)
	view, err = e.MatchState(m, "p1")
	require.NoError(t, err)
	assert.Equal(t, 50, view.SecondsRemaining)
}

func TestOpponentViewWithholdsLetters(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Easy, 90)
	matchGuesses(t, e, m, "p1", "c", "q")
	matchGuesses(t, e, m, "p2", "a")

	view, err := e.MatchState(m, "p2")
	require.NoError(t, err)
	assert.Equal(t, "p2", view.Self.PlayerID)
	assert.Equal(t, "_ a _", view.Self.MaskedWord)
	assert.Equal(t, []string{"a"}, view.Self.GuessedLetters)
	require.NotNil(t, view.Opponent)
	assert.Equal(t, OpponentView{PlayerID: "p1", WrongGuesses: 1, AttemptsLeft: 7, Status: StatusInProgress}, *view.Opponent)

	raw, err := json.Marshal(view.Opponent)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "guessedLetters")
	assert.NotContains(t, string(raw), "maskedWord")
	assert.NotContains(t, string(raw), "cab")
}

func TestMatchInvalidNeverMutates(t *testing.T) {
	e, _, m := setupMatch(t, "cab", words.Easy, 90)
	matchGuesses(t, e, m, "p1", "c", "z")

	for _, raw := range []string{"", "ab", "3", "-", "ñ"} {
		res, err := e.SubmitMatchGuess(m, "p1", raw)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalid, res.Code)
	}
	p1 := m.Player("p1")
	assert.Equal(t, []string{"c", "z"}, p1.GuessedLetters)
	assert.Equal(t, 1, p1.WrongGuesses)
	assert.Equal(t, StatusInProgress, p1.Status)
}
