package entity

import (
	"time"

	"github.com/lib/pq"
)

type Event struct {
	ID                string    `gorm:"primaryKey;type:uuid"`
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
	CreatorID         string          `gorm:"not null;type:uuid;index"`
	Creator           *Profile        `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE"`
	Participations    []Participation `gorm:"constraint:OnDelete:CASCADE"`
	Title             string          `gorm:"not null"`
	Body              string          `gorm:"not null"`
	Photo             *string
	Tags              pq.StringArray `gorm:"type:text[]"`
	Place             *string
	StartDate         time.Time `gorm:"type:date;not null"`
	EndDate           time.Time `gorm:"type:date;not null;index"`
	Price             *int
	Visibility        Visibility    `gorm:"type:varchar(1);not null"`
	Repeatability     Repeatability `gorm:"type:varchar(1);not null"`
	Status            Status        `gorm:"type:varchar(1);not null"`
	TelegramChatLink  *string
	MaxParticipants   *int
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
}

// RegistrationOpen reports whether now falls inside the registration window.
// Both ends are inclusive and an unset end is unbounded.
func (e *Event) RegistrationOpen(now time.Time) bool {
	if e.RegistrationStart != nil && now.Before(*e.RegistrationStart) {
		return false
	}
	if e.RegistrationEnd != nil && now.After(*e.RegistrationEnd) {
		return false
	}
	return true
}

// Full reports whether going attendees have taken every seat.
func (e *Event) Full(going int64) bool {
	return e.MaxParticipants != nil && *e.MaxParticipants > 0 && going >= int64(*e.MaxParticipants)
}

// RegistrationAvailable combines the window and the capacity check.
// It depends on the wall clock and on live attendance, so it is never stored.
func (e *Event) RegistrationAvailable(now time.Time, going int64) bool {
	return e.RegistrationOpen(now) && !e.Full(going)
}

// IsPast reports whether the event ended before the day of today.
func (e *Event) IsPast(today time.Time) bool {
	return e.EndDate.Before(today)
}
