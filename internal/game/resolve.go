// internal/game/resolve.go
//
// Resolution: decides a match's winner or draw.
//
// Ladder (evaluated strictly in order):
//   1. exactly one participant won          → that one, solved_status
//   2. fewer wrong guesses                  → that one, efficiency
//   3. both won, solve times > 250ms apart  → earlier, speed
//   4. otherwise                            → draw, exact_tie
//
// Both participants lost (round-end only) → draw, both_failed.

package game

import "time"

// SpeedTolerance is the largest solve-time gap still treated as a tie.
const SpeedTolerance = 250 * time.Millisecond

// ResolveWinner runs the ladder over two participants. The result does
// not depend on argument order.
func ResolveWinner(a, b *ParticipantState) Result {
	aWon, bWon := a.Status == StatusWon, b.Status == StatusWon

	if aWon != bWon {
		if aWon {
			return winner(a, ReasonSolvedStatus)
		}
		return winner(b, ReasonSolvedStatus)
	}

	if a.WrongGuesses != b.WrongGuesses {
		if a.WrongGuesses < b.WrongGuesses {
			return winner(a, ReasonEfficiency)
		}
		return winner(b, ReasonEfficiency)
	}

	if aWon && bWon && a.SolvedAt != nil && b.SolvedAt != nil {
		gap := a.SolvedAt.Sub(*b.SolvedAt)
		if gap < -SpeedTolerance {
			return winner(a, ReasonSpeed)
		}
		if gap > SpeedTolerance {
			return winner(b, ReasonSpeed)
		}
	}

	return Result{IsDraw: true, Reason: ReasonExactTie}
}

// resolveRoundEnd runs after a participant transitions to won or lost.
func resolveRoundEnd(m *Match) {
	if m.Status != MatchInProgress || len(m.Players) != MaxParticipants {
		return
	}
	a, b := m.Players[0], m.Players[1]

	switch {
	case a.Status == StatusWon || b.Status == StatusWon:
		res := ResolveWinner(a, b)
		m.Status = MatchEnded
		m.Result = &res
	case a.Status == StatusLost && b.Status == StatusLost:
		m.Status = MatchEnded
		m.Result = &Result{IsDraw: true, Reason: ReasonBothFailed}
	}
}

func winner(p *ParticipantState, reason Reason) Result {
	id := p.PlayerID
	return Result{WinnerPlayerID: &id, Reason: reason}
}
