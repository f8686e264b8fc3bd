package dto

import (
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
)

type Event struct {
	ID                      string               `json:"id"`
	Creator                 string               `json:"creator"`
	Title                   string               `json:"title"`
	Body                    string               `json:"body"`
	Photo                   *string              `json:"photo,omitempty"`
	Tags                    []string             `json:"tags"`
	Place                   *string              `json:"place,omitempty"`
	StartDate               Date                 `json:"start_date"`
	EndDate                 Date                 `json:"end_date"`
	Price                   *int                 `json:"price,omitempty"`
	Visibility              entity.Visibility    `json:"visibility"`
	Repeatability           entity.Repeatability `json:"repeatability"`
	Status                  entity.Status        `json:"status"`
	TelegramChatLink        *string              `json:"telegram_chat_link,omitempty"`
	MaxParticipants         *int                 `json:"max_participants,omitempty"`
	RegistrationStart       *time.Time           `json:"registration_start_date,omitempty"`
	RegistrationEnd         *time.Time           `json:"registration_end_date,omitempty"`
	Participants            int64                `json:"participants"`
	IsRegistrationAvailable bool                 `json:"is_registration_available"`
	CreatedAt               time.Time            `json:"created_at"`
	UpdatedAt               time.Time            `json:"updated_at"`
}

// NewEventFromEntity builds the public view of an event. going is the number
// of creator and participant rows; now is used for registration availability.
func NewEventFromEntity(event entity.Event, going int64, now time.Time) Event {
	tags := []string(event.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Event{
		ID:                      event.ID,
		Creator:                 event.CreatorID,
		Title:                   event.Title,
		Body:                    event.Body,
		Photo:                   event.Photo,
		Tags:                    tags,
		Place:                   event.Place,
		StartDate:               NewDate(event.StartDate),
		EndDate:                 NewDate(event.EndDate),
		Price:                   event.Price,
		Visibility:              event.Visibility,
		Repeatability:           event.Repeatability,
		Status:                  event.Status,
		TelegramChatLink:        event.TelegramChatLink,
		MaxParticipants:         event.MaxParticipants,
		RegistrationStart:       event.RegistrationStart,
		RegistrationEnd:         event.RegistrationEnd,
		Participants:            going,
		IsRegistrationAvailable: event.RegistrationAvailable(now, going),
		CreatedAt:               event.CreatedAt,
		UpdatedAt:               event.UpdatedAt,
	}
}

// EventWithParticipation is an event as seen by one viewer.
type EventWithParticipation struct {
	Event                 Event       `json:"event"`
	FriendsGoing          int         `json:"friends_going"`
	FriendsOfFriendsGoing int         `json:"friends_of_friends_going"`
	ParticipationType     entity.Role `json:"participation_type"`
	ParticipateID         *string     `json:"participate_id,omitempty"`
	Attended              bool        `json:"attended"`
	CanJoin               bool        `json:"can_join"`
}

type EventList struct {
	Events  []EventWithParticipation `json:"events"`
	Total   int64                    `json:"total"`
	HasMore bool                     `json:"has_more"`
}

// EventInput carries both creation fields and partial updates. A nil pointer
// is absent; a Nullable field may also clear the value with an explicit null.
// Tags, when present, replaces the whole tag list.
type EventInput struct {
	Title             *string               `json:"title"`
	Body              *string               `json:"body"`
	Photo             Nullable[string]      `json:"photo"`
	Tags              *[]string             `json:"tags"`
	Place             Nullable[string]      `json:"place"`
	StartDate         *Date                 `json:"start_date"`
	EndDate           *Date                 `json:"end_date"`
	Price             Nullable[int]         `json:"price"`
	Visibility        *entity.Visibility    `json:"visibility"`
	Repeatability     *entity.Repeatability `json:"repeatability"`
	Status            *entity.Status        `json:"status"`
	TelegramChatLink  Nullable[string]      `json:"telegram_chat_link"`
	MaxParticipants   Nullable[int]         `json:"max_participants"`
	RegistrationStart Nullable[time.Time]   `json:"registration_start_date"`
	RegistrationEnd   Nullable[time.Time]   `json:"registration_end_date"`
}

// Apply copies every present field onto event.
func (in EventInput) Apply(event *entity.Event) {
	if in.Title != nil {
		event.Title = *in.Title
	}
	if in.Body != nil {
		event.Body = *in.Body
	}
	if in.Photo.Set {
		event.Photo = in.Photo.Value
	}
	if in.Tags != nil {
		event.Tags = append([]string{}, *in.Tags...)
	}
	if in.Place.Set {
		event.Place = in.Place.Value
	}
	if in.StartDate != nil {
		event.StartDate = in.StartDate.Time
	}
	if in.EndDate != nil {
		event.EndDate = in.EndDate.Time
	}
	if in.Price.Set {
		event.Price = in.Price.Value
	}
	if in.Visibility != nil {
		event.Visibility = *in.Visibility
	}
	if in.Repeatability != nil {
		event.Repeatability = *in.Repeatability
	}
	if in.Status != nil {
		event.Status = *in.Status
	}
	if in.TelegramChatLink.Set {
		event.TelegramChatLink = in.TelegramChatLink.Value
	}
	if in.MaxParticipants.Set {
		event.MaxParticipants = in.MaxParticipants.Value
	}
	if in.RegistrationStart.Set {
		event.RegistrationStart = in.RegistrationStart.Value
	}
	if in.RegistrationEnd.Set {
		event.RegistrationEnd = in.RegistrationEnd.Value
	}
}

// EventQuery is a page request over events.
type EventQuery struct {
	Tags          []string
	Visibility    entity.Visibility
	Repeatability entity.Repeatability
	LastSeenID    string
	Limit         int
}

// UserEventQuery is a page request over the events a profile is involved in.
type UserEventQuery struct {
	Filter     entity.EventsFilter
	LastSeenID string
	Limit      int
}
