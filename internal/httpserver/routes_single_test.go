package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/game"
)

type singleGuessBody struct {
	SessionID string         `json:"sessionId"`
	Code      game.Outcome   `json:"code"`
	Letter    string         `json:"letter"`
	State     game.RoundView `json:"state"`
}

func TestSingleStartDefaultsDifficulty(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/singleplayer/start", map[string]string{"difficulty": "nightmare"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[singleStartRes](t, rec)
	assert.Equal(t, "id-1", res.SessionID)
	assert.EqualValues(t, "easy", res.Difficulty)
	assert.Equal(t, "_ _ _", res.State.MaskedWord)
	assert.Equal(t, 8, res.State.MaxWrongGuesses)
	assert.Equal(t, game.StatusInProgress, res.State.Status)

	rec = ts.do(t, http.MethodPost, "/singleplayer/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/singleplayer/start", map[string]string{"difficulty": "hard"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, decode[singleStartRes](t, rec).State.MaxWrongGuesses)
}

func TestSingleGuessFlow(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/singleplayer/start", map[string]string{"difficulty": "medium"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[singleStartRes](t, rec).SessionID

	guess := func(letter string) singleGuessBody {
		rec := ts.do(t, http.MethodPost, "/singleplayer/guess", map[string]string{"sessionId": id, "letter": letter})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return decode[singleGuessBody](t, rec)
	}

	res := guess(" C ")
	assert.Equal(t, id, res.SessionID)
	assert.Equal(t, game.OutcomeCorrect, res.Code)
	assert.Equal(t, "c", res.Letter)
	assert.Equal(t, "c _ _", res.State.MaskedWord)

	assert.Equal(t, game.OutcomeDuplicate, guess("c").Code)
	assert.Equal(t, game.OutcomeInvalid, guess("zz").Code)
	assert.Equal(t, game.OutcomeWrong, guess("z").Code)
	assert.Equal(t, game.OutcomeCorrect, guess("a").Code)

	res = guess("b")
	assert.Equal(t, game.StatusWon, res.State.Status)
	assert.Equal(t, 6, res.State.AttemptsLeft)
	assert.Equal(t, game.OutcomeInvalid, guess("q").Code)

	rec = ts.do(t, http.MethodGet, "/singleplayer/state/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode[struct {
		SessionID string         `json:"sessionId"`
		State     game.RoundView `json:"state"`
	}](t, rec)
	assert.Equal(t, id, state.SessionID)
	assert.Equal(t, "c a b", state.State.MaskedWord)
	assert.Equal(t, []string{"c", "z", "a", "b"}, state.State.GuessedLetters)

	var status, finished string
	require.NoError(t, ts.db.QueryRow(`SELECT status, COALESCE(finished_at,'') FROM rounds WHERE id=?`, id).Scan(&status, &finished))
	assert.Equal(t, "won", status)
	assert.NotEmpty(t, finished)
}

func TestSingleGuessValidation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/singleplayer/guess", map[string]string{"letter": "a"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "sessionId and letter are required", errorOf(t, rec))

	rec = ts.do(t, http.MethodPost, "/singleplayer/guess", map[string]string{"sessionId": "id-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/singleplayer/guess", map[string]string{"sessionId": "missing", "letter": "a"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session not found", errorOf(t, rec))

	rec = ts.do(t, http.MethodGet, "/singleplayer/state/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSingleGuestCookie(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/singleplayer/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var anon *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == anonCookieName {
			anon = c
		}
	}
	require.NotNil(t, anon)

	var stored string
	require.NoError(t, ts.db.QueryRow(`SELECT anonymous_id FROM rounds WHERE id='id-1'`).Scan(&stored))
	assert.Equal(t, anon.Value, stored)

	// The same cookie is reused for later rounds.
	rec = ts.do(t, http.MethodPost, "/singleplayer/start", nil, anon)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}
