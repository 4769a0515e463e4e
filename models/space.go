package models

import "time"

// SpaceMember is a local mirror of the pairing service's space membership.
// Owned solely by this service; populated by the space sync worker. A space
// holds exactly two members once pairing completes — the joiner check and the
// duplicate-session guard both read from this table.
type SpaceMember struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SpaceID   string    `gorm:"uniqueIndex:idx_space_user;index;not null" json:"space_id"`
	UserID    string    `gorm:"uniqueIndex:idx_space_user;not null" json:"user_id"`
	PairedAt  time.Time `json:"paired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
