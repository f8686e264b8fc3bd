package validator

import (
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

func EventTitle(title string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(title))
	return n >= 1 && n <= 200
}

func EventBody(body string) bool {
	return strings.TrimSpace(body) != ""
}

// Tags returns the first tag that is not in allowed, if any.
func Tags(tags, allowed []string) (string, bool) {
	for _, tag := range tags {
		if !slices.Contains(allowed, tag) {
			return tag, false
		}
	}
	return "", true
}

func EventDates(start, end time.Time) bool {
	return !start.IsZero() && !end.IsZero() && !end.Before(start)
}

func RegistrationWindow(start, end *time.Time) bool {
	if start == nil || end == nil {
		return true
	}
	return !end.Before(*start)
}

func Price(price *int) bool {
	return price == nil || *price >= 0
}

func MaxParticipants(maxParticipants *int) bool {
	return maxParticipants == nil || *maxParticipants >= 1
}
