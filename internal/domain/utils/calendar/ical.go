package calendar

import (
	"bytes"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/vstrecha/vstrecha/backend/internal/domain/dto"
	"github.com/vstrecha/vstrecha/backend/internal/domain/entity"
)

// ExportEventsToICS renders events as an iCalendar feed. Events carry dates
// only, so each entry spans whole days from the start date through the end date.
func ExportEventsToICS(events []dto.Event, now time.Time) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//Vstrecha//Events//RU")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	for _, event := range events {
		e := cal.AddEvent(fmt.Sprintf("%s@vstrecha", event.ID))

		e.SetDtStampTime(now)
		e.SetCreatedTime(event.CreatedAt)
		e.SetModifiedAt(event.UpdatedAt)

		e.SetStartAt(event.StartDate.Time)
		e.SetEndAt(event.EndDate.Time.AddDate(0, 0, 1))

		e.SetSummary(event.Title)
		e.SetDescription(event.Body)
		if event.Place != nil {
			e.SetLocation(*event.Place)
		}

		switch event.Status {
		case entity.StatusEnded:
			e.SetStatus(ics.ObjectStatusCancelled)
		case entity.StatusActive:
			e.SetStatus(ics.ObjectStatusConfirmed)
		}
		e.SetTimeTransparency(ics.TransparencyOpaque)
		switch event.Visibility {
		case entity.VisibilityPrivate:
			e.SetClass(ics.ClassificationPrivate)
		case entity.VisibilityGlobal:
			e.SetClass(ics.ClassificationPublic)
		}
		e.SetSequence(0)

		dayAlarm := e.AddAlarm()
		dayAlarm.SetAction(ics.ActionDisplay)
		dayAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-P1D")
		dayAlarm.SetDescription(fmt.Sprintf("Напоминание: %s (завтра)", event.Title))
	}

	var buf bytes.Buffer
	if err := cal.SerializeTo(&buf); err != nil {
		return nil, fmt.Errorf("error serializing calendar: %w", err)
	}
	return buf.Bytes(), nil
}
