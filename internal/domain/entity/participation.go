package entity

import "time"

// Participation is the stored role of a profile in an event.
// There is at most one row per (event, user).
type Participation struct {
	ID        string           `gorm:"primaryKey;type:uuid"`
	EventID   string           `gorm:"not null;type:uuid;uniqueIndex:idx_participation_event_user"`
	UserID    string           `gorm:"not null;type:uuid;uniqueIndex:idx_participation_event_user;index"`
	User      *Profile         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role      Role             `gorm:"type:varchar(1);not null"`
	Scans     []AttendanceScan `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
}

// AttendanceScan confirms that a participant was seen at the event.
type AttendanceScan struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ParticipationID string `gorm:"not null;type:uuid;index"`
	ScannedBy       int64  `gorm:"not null"`
	CreatedAt       time.Time
}
