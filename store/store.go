package store

import (
	"errors"
	"time"

	"space-games-system/models"
)

var (
	// ErrNotFound signals an unknown session ID.
	ErrNotFound = errors.New("session not found")
	// ErrStaleVersion signals a lost optimistic-concurrency race: the
	// conditional write matched zero rows. Callers refetch and retry.
	ErrStaleVersion = errors.New("stale session version")
	// ErrConflict signals a lost status-transition race (e.g. two joins).
	ErrConflict = errors.New("concurrent session update")
)

// SessionStore is the durable record of game sessions. Move commits go through
// CommitMove, a single conditional write keyed on (id, version) — the sole
// concurrency guard; no lock is held across a network round trip.
type SessionStore interface {
	Create(session *models.GameSession) error
	Get(id string) (*models.GameSession, error)

	// FindOpenSessionFor returns a waiting/active session for the
	// space+gameType pair that userID participates in, or ErrNotFound. The
	// containment predicate belongs in the query: several open sessions can
	// coexist per pair (one per member), so inspecting an arbitrary one is
	// not enough.
	FindOpenSessionFor(spaceID, gameType, userID string) (*models.GameSession, error)

	// ListInactiveBefore returns non-terminal sessions whose last move is
	// older than cutoff. Used by the expiry sweep.
	ListInactiveBefore(cutoff time.Time) ([]models.GameSession, error)

	// Transition persists a lifecycle change (join, abandon, expire) guarded
	// on the status the caller observed; zero rows affected ⇒ ErrConflict.
	Transition(session *models.GameSession, fromStatus string) error

	// CommitMove persists the session's post-move fields (state, version,
	// turn, status, lastMoveAt) iff the stored version still equals
	// expectedVersion; otherwise ErrStaleVersion and nothing changes.
	CommitMove(session *models.GameSession, expectedVersion int64) error
}

// ScoreStore persists immutable score entries and answers leaderboard queries.
type ScoreStore interface {
	// Insert writes entry unless one already exists for (session, user);
	// duplicate delivery is a silent no-op.
	Insert(entry *models.ScoreEntry) error

	// Leaderboard returns each user's personal best within the space for the
	// game type, descending by score, ties broken by earliest achievement.
	Leaderboard(spaceID, gameType string) ([]models.LeaderboardRow, error)
}
