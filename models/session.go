package models

import (
	"encoding/json"
	"time"
)

// Session status lifecycle: waiting → active → {completed | abandoned | expired}.
// Transitions are strictly forward; terminal sessions are never reopened.
const (
	SessionWaiting   = "waiting"
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
	SessionExpired   = "expired"
)

// TerminalStatus reports whether a session status is write-once final.
func TerminalStatus(status string) bool {
	return status == SessionCompleted || status == SessionAbandoned || status == SessionExpired
}

// GameSession records one two-player game between the members of a space.
// State is opaque here — only the matching rule module in games/ may interpret
// or produce it. Version is the optimistic-concurrency token: it starts at 0
// and increments by exactly 1 per successfully applied move.
type GameSession struct {
	ID             string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SpaceID        string  `gorm:"index;not null" json:"space_id"`
	GameType       string  `gorm:"index;not null;type:varchar(32)" json:"game_type"` // connect_four | trivia_quiz
	CreatorID      string  `gorm:"not null" json:"creator_id"`
	ParticipantIDs []string `gorm:"serializer:json;type:jsonb" json:"participant_ids"` // ordered pair, fixed at join

	Status            string  `gorm:"index;not null;type:varchar(16);default:'waiting'" json:"status"`
	CurrentTurnUserID *string `json:"current_turn_user_id,omitempty"` // meaningful only while active

	State   json.RawMessage `gorm:"type:jsonb" json:"state"`
	Version int64           `gorm:"not null;default:0" json:"version"`

	LastMoveAt time.Time `gorm:"index" json:"last_move_at"`

	Timestamps
}

// IsParticipant reports whether userID is one of the session's players.
func (s *GameSession) IsParticipant(userID string) bool {
	for _, id := range s.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
