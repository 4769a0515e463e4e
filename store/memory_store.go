package store

import (
	"sort"
	"sync"
	"time"

	"space-games-system/models"
)

// MemorySessionStore keeps sessions in a mutex-guarded map with the same CAS
// semantics as the postgres store. The test suite runs against it so the
// engine's concurrency contract is exercised without a database.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.GameSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*models.GameSession)}
}

func (s *MemorySessionStore) Create(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *MemorySessionStore) Get(id string) (*models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSession(session), nil
}

func (s *MemorySessionStore) FindOpenSessionFor(spaceID, gameType, userID string) (*models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, session := range s.sessions {
		if session.SpaceID == spaceID && session.GameType == gameType &&
			(session.Status == models.SessionWaiting || session.Status == models.SessionActive) &&
			session.IsParticipant(userID) {
			return cloneSession(session), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemorySessionStore) ListInactiveBefore(cutoff time.Time) ([]models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.GameSession
	for _, session := range s.sessions {
		if (session.Status == models.SessionWaiting || session.Status == models.SessionActive) &&
			session.LastMoveAt.Before(cutoff) {
			out = append(out, *cloneSession(session))
		}
	}
	return out, nil
}

func (s *MemorySessionStore) Transition(session *models.GameSession, fromStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != fromStatus {
		return ErrConflict
	}
	updated := cloneSession(session)
	updated.CreatedAt = stored.CreatedAt
	updated.Version = stored.Version
	updated.UpdatedAt = time.Now()
	s.sessions[session.ID] = updated
	return nil
}

func (s *MemorySessionStore) CommitMove(session *models.GameSession, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.sessions[session.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrStaleVersion
	}
	updated := cloneSession(session)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	s.sessions[session.ID] = updated
	return nil
}

func cloneSession(in *models.GameSession) *models.GameSession {
	out := *in
	out.ParticipantIDs = append([]string(nil), in.ParticipantIDs...)
	out.State = append([]byte(nil), in.State...)
	if in.CurrentTurnUserID != nil {
		turn := *in.CurrentTurnUserID
		out.CurrentTurnUserID = &turn
	}
	return &out
}

// MemoryScoreStore mirrors GormScoreStore's dedupe and leaderboard semantics.
type MemoryScoreStore struct {
	mu      sync.RWMutex
	entries []models.ScoreEntry
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{}
}

func (s *MemoryScoreStore) Insert(entry *models.ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.SessionID == entry.SessionID && existing.UserID == entry.UserID {
			return nil
		}
	}
	stored := *entry
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.entries = append(s.entries, stored)
	return nil
}

func (s *MemoryScoreStore) Leaderboard(spaceID, gameType string) ([]models.LeaderboardRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best := make(map[string]models.LeaderboardRow)
	for _, e := range s.entries {
		if e.SpaceID != spaceID || e.GameType != gameType {
			continue
		}
		row, ok := best[e.UserID]
		if !ok || e.Score > row.BestScore ||
			(e.Score == row.BestScore && e.CreatedAt.Before(row.AchievedAt)) {
			best[e.UserID] = models.LeaderboardRow{
				UserID:     e.UserID,
				BestScore:  e.Score,
				AchievedAt: e.CreatedAt,
			}
		}
	}
	rows := make([]models.LeaderboardRow, 0, len(best))
	for _, row := range best {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BestScore != rows[j].BestScore {
			return rows[i].BestScore > rows[j].BestScore
		}
		return rows[i].AchievedAt.Before(rows[j].AchievedAt)
	})
	return rows, nil
}
