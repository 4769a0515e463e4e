package services

import (
	"space-games-system/models"

	"gorm.io/gorm"
)

// PairingDirectory answers space-membership questions. Pairing itself (invites,
// accepting, unpairing) belongs to the external pairing service; this service
// only reads the mirrored membership.
type PairingDirectory interface {
	IsMember(spaceID, userID string) (bool, error)
	Members(spaceID string) ([]string, error)
}

// DBPairingDirectory reads the space_members mirror kept fresh by the
// space sync worker.
type DBPairingDirectory struct {
	DB *gorm.DB
}

func NewDBPairingDirectory(db *gorm.DB) *DBPairingDirectory {
	return &DBPairingDirectory{DB: db}
}

func (d *DBPairingDirectory) IsMember(spaceID, userID string) (bool, error) {
	var count int64
	err := d.DB.Model(&models.SpaceMember{}).
		Where("space_id = ? AND user_id = ?", spaceID, userID).
		Count(&count).Error
	return count > 0, err
}

func (d *DBPairingDirectory) Members(spaceID string) ([]string, error) {
	var userIDs []string
	err := d.DB.Model(&models.SpaceMember{}).
		Where("space_id = ?", spaceID).
		Order("paired_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// StaticPairingDirectory backs tests and local dev with a fixed pairing table.
type StaticPairingDirectory map[string][]string

func (d StaticPairingDirectory) IsMember(spaceID, userID string) (bool, error) {
	for _, id := range d[spaceID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d StaticPairingDirectory) Members(spaceID string) ([]string, error) {
	return d[spaceID], nil
}
