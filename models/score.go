package models

import "time"

// Score sources. Session entries are written by the recorder when a game
// session completes; solo entries come through the direct-score interface
// for the single-player minigames, which bypasses turn arbitration.
const (
	ScoreSourceSession = "session"
	ScoreSourceSolo    = "solo"
)

// ScoreEntry is immutable once written. The (session_id, user_id) unique index
// is the dedupe guard: redelivery of the same completion event must not create
// a second entry.
type ScoreEntry struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SessionID string    `gorm:"uniqueIndex:idx_score_session_user;not null" json:"session_id"`
	UserID    string    `gorm:"uniqueIndex:idx_score_session_user;index;not null" json:"user_id"`
	SpaceID   string    `gorm:"index;not null" json:"space_id"`
	GameType  string    `gorm:"index;not null;type:varchar(32)" json:"game_type"`
	Score     int64     `json:"score"`
	Source    string    `gorm:"type:varchar(16);default:'session'" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// LeaderboardRow is a computed view (not stored): personal best per user within
// a space, ordered by score descending, ties broken by earliest achievement.
type LeaderboardRow struct {
	UserID     string    `json:"user_id"`
	BestScore  int64     `json:"best_score"`
	AchievedAt time.Time `json:"achieved_at"`
}
