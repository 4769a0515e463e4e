package store

import (
	"encoding/json"
	"errors"
	"time"

	"space-games-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSessionStore is the postgres-backed SessionStore.
type GormSessionStore struct {
	DB *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{DB: db}
}

func (s *GormSessionStore) Create(session *models.GameSession) error {
	return s.DB.Create(session).Error
}

func (s *GormSessionStore) Get(id string) (*models.GameSession, error) {
	var session models.GameSession
	err := s.DB.Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) FindOpenSessionFor(spaceID, gameType, userID string) (*models.GameSession, error) {
	needle, err := json.Marshal([]string{userID})
	if err != nil {
		return nil, err
	}
	var session models.GameSession
	err = s.DB.
		Where("space_id = ? AND game_type = ? AND status IN ? AND participant_ids @> ?::jsonb",
			spaceID, gameType,
			[]string{models.SessionWaiting, models.SessionActive}, string(needle)).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) ListInactiveBefore(cutoff time.Time) ([]models.GameSession, error) {
	var sessions []models.GameSession
	err := s.DB.
		Where("status IN ? AND last_move_at < ?",
			[]string{models.SessionWaiting, models.SessionActive}, cutoff).
		Find(&sessions).Error
	return sessions, err
}

// Transition writes the lifecycle fields guarded on the status the caller saw.
// Losing the race (another transition landed first) affects zero rows.
func (s *GormSessionStore) Transition(session *models.GameSession, fromStatus string) error {
	res := s.DB.Model(&models.GameSession{}).
		Where("id = ? AND status = ?", session.ID, fromStatus).
		Select("status", "participant_ids", "current_turn_user_id", "state", "last_move_at").
		Updates(session)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// CommitMove is the optimistic compare-and-set: one conditional UPDATE keyed
// on (id, version). Zero rows affected means another move won the race.
func (s *GormSessionStore) CommitMove(session *models.GameSession, expectedVersion int64) error {
	res := s.DB.Model(&models.GameSession{}).
		Where("id = ? AND version = ?", session.ID, expectedVersion).
		Select("version", "state", "status", "current_turn_user_id", "last_move_at").
		Updates(session)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

// GormScoreStore is the postgres-backed ScoreStore.
type GormScoreStore struct {
	DB *gorm.DB
}

func NewGormScoreStore(db *gorm.DB) *GormScoreStore {
	return &GormScoreStore{DB: db}
}

// Insert relies on the (session_id, user_id) unique index: an already-recorded
// completion is silently skipped, making event redelivery a no-op.
func (s *GormScoreStore) Insert(entry *models.ScoreEntry) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(entry).Error
}

func (s *GormScoreStore) Leaderboard(spaceID, gameType string) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := s.DB.Raw(`
		SELECT e.user_id, e.score AS best_score, MIN(e.created_at) AS achieved_at
		FROM score_entries e
		JOIN (
			SELECT user_id, MAX(score) AS best
			FROM score_entries
			WHERE space_id = ? AND game_type = ?
			GROUP BY user_id
		) b ON b.user_id = e.user_id AND b.best = e.score
		WHERE e.space_id = ? AND e.game_type = ?
		GROUP BY e.user_id, e.score
		ORDER BY best_score DESC, achieved_at ASC`,
		spaceID, gameType, spaceID, gameType).Scan(&rows).Error
	return rows, err
}
