package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/hangman/internal/game"
)

func authCookie(t *testing.T, rec interface{ Result() *http.Response }) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hangman_token" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no auth cookie set")
	return nil
}

func signup(t *testing.T, ts *testServer, username string, cookies ...*http.Cookie) *http.Cookie {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/auth/signup",
		map[string]string{"username": username, "password": "correct-horse"}, cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return authCookie(t, rec)
}

func TestSignupLoginMe(t *testing.T) {
	ts := newTestServer(t)
	tok := signup(t, ts, "alice")

	rec := ts.do(t, http.MethodGet, "/auth/me", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[authUser](t, rec).Username)

	rec = ts.do(t, http.MethodPost, "/auth/signup", map[string]string{"username": "ALICE", "password": "correct-horse"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", map[string]string{"username": "alice", "password": "wrong-horse"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/auth/login", map[string]string{"username": " alice ", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, rec.Code)
	authCookie(t, rec)

	rec = ts.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "hangman_token" {
			assert.Empty(t, c.Value)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)
	cases := []map[string]string{
		{"username": "al", "password": "correct-horse"},
		{"username": "bad name", "password": "correct-horse"},
		{"username": "alice", "password": "short"},
	}
	for _, body := range cases {
		rec := ts.do(t, http.MethodPost, "/auth/signup", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/stats/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, rec))

	rec = ts.do(t, http.MethodGet, "/rounds/mine", nil, &http.Cookie{Name: "hangman_token", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid token", errorOf(t, rec))
}

func TestSoloRoundsBumpStats(t *testing.T) {
	ts := newTestServer(t)

	// A guest round played before signing up is claimed by the new account.
	rec := ts.do(t, http.MethodPost, "/singleplayer/start", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var anon *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == anonCookieName {
			anon = c
		}
	}
	require.NotNil(t, anon)
	tok := signup(t, ts, "alice", anon)

	play := func(letters ...string) {
		rec := ts.do(t, http.MethodPost, "/singleplayer/start", map[string]string{"difficulty": "hard"}, tok)
		require.Equal(t, http.StatusOK, rec.Code)
		id := decode[singleStartRes](t, rec).SessionID
		for _, l := range letters {
			rec := ts.do(t, http.MethodPost, "/singleplayer/guess", map[string]string{"sessionId": id, "letter": l}, tok)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	}
	play("c", "a", "b", "z")
	play("c", "a", "b")
	play("d", "e", "f", "g", "h", "i")

	rec = ts.do(t, http.MethodGet, "/stats/me", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, stats["gamesPlayed"])
	assert.EqualValues(t, 2, stats["wins"])
	assert.EqualValues(t, 0, stats["streak"])

	rec = ts.do(t, http.MethodGet, "/rounds/mine", nil, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 4)
	statuses := map[string]int{}
	for _, r := range rows {
		statuses[r["status"].(string)]++
	}
	assert.Equal(t, map[string]int{"won": 2, "lost": 1, "in_progress": 1}, statuses)
}

func TestAuthenticatedPlayerIDFallback(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts, "alice")
	bob := signup(t, ts, "bob_b")

	rec := ts.do(t, http.MethodPost, "/multiplayer/create", map[string]any{}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[matchStateRes](t, rec)
	assert.Equal(t, "alice", res.State.Self.PlayerID)

	rec = ts.do(t, http.MethodPost, "/multiplayer/join", map[string]string{"matchId": res.MatchID}, bob)
	require.Equal(t, http.StatusOK, rec.Code)
	joined := decode[matchStateRes](t, rec)
	assert.Equal(t, "bob_b", joined.State.Self.PlayerID)
	assert.Equal(t, game.MatchInProgress, joined.State.Status)

	rec = ts.do(t, http.MethodPost, "/multiplayer/guess", map[string]string{"matchId": res.MatchID, "letter": "c"}, alice)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", decode[multiGuessBody](t, rec).PlayerID)
}
