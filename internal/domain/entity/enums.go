package entity

import "fmt"

// Role is the part a profile plays in an event.
type Role string

const (
	RoleCreator     Role = "C"
	RoleParticipant Role = "P"
	// RoleViewer is never stored: it is what a profile without a participation row is.
	RoleViewer Role = "V"
	RoleAdmin  Role = "A"
)

// IsGoing reports whether the role counts towards attendance and capacity.
func (r Role) IsGoing() bool {
	switch r {
	case RoleCreator, RoleParticipant:
		return true
	case RoleViewer, RoleAdmin:
		return false
	}
	return false
}

func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleParticipant, RoleViewer, RoleAdmin:
		return true
	}
	return false
}

// GoingRoles returns the stored roles that make a profile an attendee.
func GoingRoles() []string {
	return []string{string(RoleCreator), string(RoleParticipant)}
}

type Visibility string

const (
	VisibilityGlobal  Visibility = "G"
	VisibilityPrivate Visibility = "P"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityGlobal, VisibilityPrivate:
		return true
	}
	return false
}

type Repeatability string

const (
	RepeatabilityNone       Repeatability = "N"
	RepeatabilityRepeatable Repeatability = "R"
)

func (r Repeatability) Valid() bool {
	switch r {
	case RepeatabilityNone, RepeatabilityRepeatable:
		return true
	}
	return false
}

type Status string

const (
	StatusActive Status = "A"
	StatusEnded  Status = "E"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusEnded:
		return true
	}
	return false
}

// EventsFilter selects a slice of the events a profile is involved in.
type EventsFilter string

const (
	EventsAll    EventsFilter = "all"
	EventsPast   EventsFilter = "past"
	EventsActual EventsFilter = "actual"
)

// ParseEventsFilter parses the user events filter, defaulting to EventsAll.
func ParseEventsFilter(s string) (EventsFilter, error) {
	switch f := EventsFilter(s); f {
	case "":
		return EventsAll, nil
	case EventsAll, EventsPast, EventsActual:
		return f, nil
	}
	return "", fmt.Errorf("unknown events filter %q", s)
}
