package entity

import "time"

type Profile struct {
	ID         string     `gorm:"primaryKey;type:uuid"`
	ExternalID int64      `gorm:"not null;uniqueIndex"`
	FirstName  string     `gorm:"not null"`
	LastName   string     `gorm:"not null"`
	Gender     string     `gorm:"size:1"`
	BirthDate  *time.Time `gorm:"type:date"`
	Avatar     *string
	University string
	Bio        *string
	InvitedBy  *string  `gorm:"type:uuid;index"`
	Inviter    *Profile `gorm:"foreignKey:InvitedBy;constraint:OnDelete:SET NULL"`
	IsAdmin    bool     `gorm:"not null;default:false"`
	CreatedAt  time.Time
}
