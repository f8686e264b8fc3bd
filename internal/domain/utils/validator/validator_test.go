package validator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTags(t *testing.T) {
	allowed := []string{"Лекция", "Музей", "Спорт"}

	bad, ok := Tags([]string{"Спорт", "Лекция"}, allowed)
	assert.True(t, ok)
	assert.Empty(t, bad)

	bad, ok = Tags([]string{"Спорт", "Кино"}, allowed)
	assert.False(t, ok)
	assert.Equal(t, "Кино", bad)

	_, ok = Tags(nil, allowed)
	assert.True(t, ok)
}

func TestEventDates(t *testing.T) {
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, EventDates(day, day))
	assert.True(t, EventDates(day, day.AddDate(0, 0, 1)))
	assert.False(t, EventDates(day, day.AddDate(0, 0, -1)))
	assert.False(t, EventDates(time.Time{}, day))
}

func TestRegistrationWindow(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	before := start.Add(-time.Hour)

	assert.True(t, RegistrationWindow(nil, &end))
	assert.True(t, RegistrationWindow(&start, &end))
	assert.False(t, RegistrationWindow(&start, &before))
}

func TestNumbers(t *testing.T) {
	zero, negative, one := 0, -1, 1

	assert.True(t, Price(nil))
	assert.True(t, Price(&zero))
	assert.False(t, Price(&negative))

	assert.True(t, MaxParticipants(nil))
	assert.True(t, MaxParticipants(&one))
	assert.False(t, MaxParticipants(&zero))
}

func TestProfileFields(t *testing.T) {
	assert.True(t, Name("Анна"))
	assert.False(t, Name("   "))
	assert.True(t, Gender("F"))
	assert.False(t, Gender("FM"))
	assert.False(t, University(""))
}
