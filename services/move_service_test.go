package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"space-games-system/games"
	"space-games-system/models"
	"space-games-system/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnPayload(n int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"column":%d}`, n))
}

func optionPayload(n int) json.RawMessage {
	return json.RawMessage(fmt.Sprintf(`{"option":%d}`, n))
}

func startGame(t *testing.T, sessionSvc *SessionService, gameType string) *models.GameSession {
	t.Helper()
	created, err := sessionSvc.CreateSession(gameType, "alice", "space-1")
	require.NoError(t, err)
	joined, err := sessionSvc.JoinSession(created.ID, "bob")
	require.NoError(t, err)
	return joined
}

func TestSubmitMoveVersionTracksAppliedMoves(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	moves := []struct {
		actor string
		col   int
	}{
		{"alice", 0}, {"bob", 1}, {"alice", 2}, {"bob", 3},
	}
	for i, m := range moves {
		updated, err := moveSvc.SubmitMove(session.ID, m.actor, columnPayload(m.col), int64(i))
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), updated.Version, "version equals count of applied moves")
		require.NotNil(t, updated.CurrentTurnUserID)
		assert.Contains(t, updated.ParticipantIDs, *updated.CurrentTurnUserID)
	}
}

func TestSubmitMoveTurnViolation(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	// The creator moves first; bob jumping in is a turn violation.
	_, err := moveSvc.SubmitMove(session.ID, "bob", columnPayload(0), 0)
	assert.ErrorIs(t, err, ErrTurnViolation)
}

func TestSubmitMoveNonParticipantForbidden(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	_, err := moveSvc.SubmitMove(session.ID, "carol", columnPayload(0), 0)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSubmitMoveRequiresActiveSession(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()

	created, err := sessionSvc.CreateSession(games.ConnectFour, "alice", "space-1")
	require.NoError(t, err)

	_, err = moveSvc.SubmitMove(created.ID, "alice", columnPayload(0), 0)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = moveSvc.SubmitMove("missing", "alice", columnPayload(0), 0)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Scenario: client holds expected_version=0 while the session moved on.
func TestSubmitMoveStaleVersion(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	_, err := moveSvc.SubmitMove(session.ID, "alice", columnPayload(0), 0)
	require.NoError(t, err)

	_, err = moveSvc.SubmitMove(session.ID, "bob", columnPayload(1), 0)
	assert.ErrorIs(t, err, store.ErrStaleVersion)

	// Stored state is untouched by the rejected submission.
	stored, err := sessionSvc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestSubmitMoveInvalidMoveLeavesStateUntouched(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	before, err := sessionSvc.GetSession(session.ID)
	require.NoError(t, err)

	_, err = moveSvc.SubmitMove(session.ID, "alice", columnPayload(42), 0)
	assert.ErrorIs(t, err, games.ErrInvalidMove)

	after, err := sessionSvc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.JSONEq(t, string(before.State), string(after.State))
}

// Two near-simultaneous submissions carrying the same expected version:
// exactly one wins, the other gets StaleVersion, and the final state reflects
// only the winning move.
func TestSubmitMoveConcurrentSameVersion(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = moveSvc.SubmitMove(session.ID, "alice", columnPayload(i), 0)
		}(i)
	}
	wg.Wait()

	var wins, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, store.ErrStaleVersion)
			stale++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, stale)

	stored, err := sessionSvc.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

// Scenario A end to end: alice stacks column 3; her fourth disc completes the
// session, records her as winner and feeds the leaderboard.
func TestConnectFourSessionCompletion(t *testing.T) {
	sessionSvc, moveSvc, scoreSvc := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	moves := []struct {
		actor string
		col   int
	}{
		{"alice", 3}, {"bob", 0},
		{"alice", 3}, {"bob", 1},
		{"alice", 3}, {"bob", 2},
		{"alice", 3},
	}
	var final *models.GameSession
	for i, m := range moves {
		var err error
		final, err = moveSvc.SubmitMove(session.ID, m.actor, columnPayload(m.col), int64(i))
		require.NoError(t, err)
	}

	assert.Equal(t, models.SessionCompleted, final.Status)
	assert.Nil(t, final.CurrentTurnUserID)
	assert.Equal(t, int64(7), final.Version)

	var state struct {
		Winner string `json:"winner"`
	}
	require.NoError(t, json.Unmarshal(final.State, &state))
	assert.Equal(t, "alice", state.Winner)

	// No further moves on a terminal session.
	_, err := moveSvc.SubmitMove(session.ID, "bob", columnPayload(0), 7)
	assert.ErrorIs(t, err, ErrConflict)

	rows, err := scoreSvc.Leaderboard("space-1", games.ConnectFour)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, int64(3), rows[0].BestScore)
	assert.Equal(t, "bob", rows[1].UserID)
	assert.Equal(t, int64(0), rows[1].BestScore)

	// Recomputing from the stored terminal state matches the recorded entries.
	rules, _ := games.ForType(games.ConnectFour)
	recomputed, err := rules.Score(final.State, final.ParticipantIDs)
	require.NoError(t, err)
	assert.Equal(t, recomputed["alice"], rows[0].BestScore)
	assert.Equal(t, recomputed["bob"], rows[1].BestScore)
}

// Full trivia session: alice answers every round correctly, bob never does.
// The simultaneous-round model means either player may answer first.
func TestTriviaSessionCompletion(t *testing.T) {
	sessionSvc, moveSvc, scoreSvc := newTestEngine()
	session := startGame(t, sessionSvc, games.TriviaQuiz)

	var state struct {
		Questions []struct {
			Options []string `json:"options"`
			Answer  int      `json:"answer"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(session.State, &state))
	require.NotEmpty(t, state.Questions)

	version := int64(0)
	var final *models.GameSession
	for round, q := range state.Questions {
		wrong := (q.Answer + 1) % len(q.Options)

		// Bob answers first on even rounds to exercise both orderings.
		actors := []struct {
			name   string
			option int
		}{{"alice", q.Answer}, {"bob", wrong}}
		if round%2 == 0 {
			actors[0], actors[1] = actors[1], actors[0]
		}

		for _, a := range actors {
			var err error
			final, err = moveSvc.SubmitMove(session.ID, a.name, optionPayload(a.option), version)
			require.NoError(t, err)
			version++
		}
	}

	assert.Equal(t, models.SessionCompleted, final.Status)
	assert.Equal(t, int64(2*len(state.Questions)), final.Version)

	rows, err := scoreSvc.Leaderboard("space-1", games.TriviaQuiz)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, int64(len(state.Questions)), rows[0].BestScore)
	assert.Equal(t, "bob", rows[1].UserID)
	assert.Equal(t, int64(0), rows[1].BestScore)
}

func TestMoveNotifierFiresAfterCommit(t *testing.T) {
	sessionSvc, moveSvc, _ := newTestEngine()
	session := startGame(t, sessionSvc, games.ConnectFour)

	var notified []int64
	moveSvc.Notifier = func(s *models.GameSession) {
		notified = append(notified, s.Version)
	}

	_, err := moveSvc.SubmitMove(session.ID, "alice", columnPayload(0), 0)
	require.NoError(t, err)
	_, err = moveSvc.SubmitMove(session.ID, "bob", columnPayload(9), 1)
	assert.ErrorIs(t, err, games.ErrInvalidMove)

	assert.Equal(t, []int64{1}, notified, "hook fires only on successful commits")
}
