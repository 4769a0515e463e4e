package store

import (
	"sync"
	"testing"
	"time"

	"space-games-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, s *MemorySessionStore) *models.GameSession {
	t.Helper()
	turn := "alice"
	session := &models.GameSession{
		ID:                "sess-1",
		SpaceID:           "space-1",
		GameType:          "connect_four",
		CreatorID:         "alice",
		ParticipantIDs:    []string{"alice", "bob"},
		Status:            models.SessionActive,
		CurrentTurnUserID: &turn,
		State:             []byte(`{}`),
		Version:           0,
		LastMoveAt:        time.Now(),
	}
	require.NoError(t, s.Create(session))
	return session
}

func TestCommitMoveCompareAndSet(t *testing.T) {
	s := NewMemorySessionStore()
	session := seedSession(t, s)

	session.Version = 1
	session.State = []byte(`{"moves":1}`)
	require.NoError(t, s.CommitMove(session, 0))

	stored, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
	assert.JSONEq(t, `{"moves":1}`, string(stored.State))

	// A second commit against the already-consumed version must lose.
	session.Version = 1
	err = s.CommitMove(session, 0)
	assert.ErrorIs(t, err, ErrStaleVersion)

	stored, err = s.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestCommitMoveUnknownSession(t *testing.T) {
	s := NewMemorySessionStore()
	err := s.CommitMove(&models.GameSession{ID: "missing"}, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Exactly one of N racing commits sharing the same expected version succeeds.
func TestCommitMoveConcurrentRace(t *testing.T) {
	s := NewMemorySessionStore()
	session := seedSession(t, s)

	const racers = 8
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempt := *session
			attempt.Version = 1
			errs[i] = s.CommitMove(&attempt, 0)
		}(i)
	}
	wg.Wait()

	var wins, stale int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, ErrStaleVersion)
			stale++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, racers-1, stale)

	stored, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Version)
}

func TestFindOpenSessionForScopedToParticipant(t *testing.T) {
	s := NewMemorySessionStore()
	require.NoError(t, s.Create(&models.GameSession{
		ID: "sess-a", SpaceID: "space-1", GameType: "connect_four",
		CreatorID: "alice", ParticipantIDs: []string{"alice"},
		Status: models.SessionWaiting, State: []byte(`{}`), LastMoveAt: time.Now(),
	}))
	require.NoError(t, s.Create(&models.GameSession{
		ID: "sess-b", SpaceID: "space-1", GameType: "connect_four",
		CreatorID: "bob", ParticipantIDs: []string{"bob"},
		Status: models.SessionWaiting, State: []byte(`{}`), LastMoveAt: time.Now(),
	}))

	found, err := s.FindOpenSessionFor("space-1", "connect_four", "alice")
	require.NoError(t, err)
	assert.Equal(t, "sess-a", found.ID)

	found, err = s.FindOpenSessionFor("space-1", "connect_four", "bob")
	require.NoError(t, err)
	assert.Equal(t, "sess-b", found.ID)

	_, err = s.FindOpenSessionFor("space-1", "connect_four", "carol")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionGuardedOnObservedStatus(t *testing.T) {
	s := NewMemorySessionStore()
	session := seedSession(t, s)

	session.Status = models.SessionAbandoned
	require.NoError(t, s.Transition(session, models.SessionActive))

	// Losing a transition race: the stored status is no longer "active".
	session.Status = models.SessionExpired
	err := s.Transition(session, models.SessionActive)
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbandoned, stored.Status)
}

func TestGetReturnsIsolatedCopies(t *testing.T) {
	s := NewMemorySessionStore()
	session := seedSession(t, s)

	first, err := s.Get(session.ID)
	require.NoError(t, err)
	first.ParticipantIDs[0] = "mallory"
	first.State[0] = 'X'

	second, err := s.Get(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", second.ParticipantIDs[0])
	assert.JSONEq(t, `{}`, string(second.State))
}

func TestScoreStoreDedupeAndLeaderboard(t *testing.T) {
	s := NewMemoryScoreStore()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []models.ScoreEntry{
		{ID: "1", SessionID: "s1", UserID: "alice", SpaceID: "space-1", GameType: "trivia_quiz", Score: 4, CreatedAt: base},
		{ID: "2", SessionID: "s1", UserID: "bob", SpaceID: "space-1", GameType: "trivia_quiz", Score: 2, CreatedAt: base},
		{ID: "3", SessionID: "s2", UserID: "bob", SpaceID: "space-1", GameType: "trivia_quiz", Score: 4, CreatedAt: base.Add(time.Hour)},
		{ID: "4", SessionID: "s3", UserID: "bob", SpaceID: "space-1", GameType: "trivia_quiz", Score: 4, CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range entries {
		require.NoError(t, s.Insert(&entries[i]))
	}

	// Redelivery of (s1, alice) must not create a second entry.
	dup := models.ScoreEntry{ID: "99", SessionID: "s1", UserID: "alice", SpaceID: "space-1", GameType: "trivia_quiz", Score: 100, CreatedAt: base}
	require.NoError(t, s.Insert(&dup))

	rows, err := s.Leaderboard("space-1", "trivia_quiz")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Both peaked at 4; alice achieved it first.
	assert.Equal(t, "alice", rows[0].UserID)
	assert.Equal(t, int64(4), rows[0].BestScore)
	assert.Equal(t, base, rows[0].AchievedAt)
	assert.Equal(t, "bob", rows[1].UserID)
	assert.Equal(t, int64(4), rows[1].BestScore)
	assert.Equal(t, base.Add(time.Hour), rows[1].AchievedAt)
}
