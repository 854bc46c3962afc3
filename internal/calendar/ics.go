// Package calendar renders a single-event iCalendar (RFC 5545) document so
// guests can add the wedding to their calendar.
package calendar

import (
	"errors"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"
)

const productID = "-//wedding-invitation//EN"

// Event is the wedding as it appears in the guest's calendar
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	// Created is used for DTSTAMP; zero means time.Now.
	Created time.Time
}

// Write renders ev as a VCALENDAR with a one-day reminder.
func Write(w io.Writer, ev Event) error {
	if ev.End.Before(ev.Start) {
		return errors.New("event ends before it starts")
	}
	stamp := ev.Created
	if stamp.IsZero() {
		stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	event := cal.AddEvent(ev.UID)
	event.SetDtStampTime(stamp)
	event.SetStartAt(ev.Start)
	event.SetEndAt(ev.End)
	event.SetSummary(ev.Summary)
	if ev.Location != "" {
		event.SetLocation(ev.Location)
	}
	if ev.Description != "" {
		event.SetDescription(ev.Description)
	}

	alarm := event.AddAlarm()
	alarm.SetAction(ics.ActionDisplay)
	alarm.SetTrigger("-P1D")
	alarm.SetProperty(ics.ComponentPropertyDescription, "婚礼提醒")

	return cal.SerializeTo(w)
}
