// Package calendar exports the birthdays of a contact list as an iCalendar feed.
package calendar

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/tartampluch/vcard-editor/internal/card"
	"github.com/tartampluch/vcard-editor/internal/config"
)

// Generator turns contact birthdays into yearly all-day events.
type Generator struct {
	Clock Clock

	// Reminder is an ISO 8601 duration (e.g. "-P1D"). Empty disables alarms.
	Reminder string

	// FormatSummary lets the caller inject localized event titles.
	FormatSummary func(name string, age int, yearKnown bool) string
}

type stats struct{ processed, withBday, today int }

// Generate builds the calendar for cards. It returns the ICS data, one Entry
// per contact with a valid birthday, and how many of those birthdays fall today.
func (g *Generator) Generate(ctx context.Context, cards []*card.Card) ([]byte, []Entry, int, error) {
	start := time.Now()

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	// Birthdays follow the local calendar date; only DTSTAMP is UTC. It is
	// cut to the day so renders of unchanged contacts are byte-identical.
	now := g.Clock.Now()
	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC().Truncate(config.DTStampResolution))

	var st stats
	var entries []Entry

	for _, c := range cards {
		if err := ctx.Err(); err != nil {
			return nil, nil, 0, err
		}
		st.processed++

		raw := strings.TrimSpace(c.Birthday())
		if raw == "" {
			continue
		}
		birthDate, yearKnown, err := parseDate(raw)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyValue, raw)
			continue
		}
		st.withBday++

		name := c.DisplayName()
		if name == "" {
			name = config.FallbackName
		}

		uidBase := entryUID(c, name, birthDate)
		nextOcc, ageNext := calculateNextOccurrence(now, birthDate, yearKnown)
		entries = append(entries, Entry{
			UID:            uidBase,
			Name:           name,
			DateOfBirth:    birthDate,
			YearKnown:      yearKnown,
			NextOccurrence: nextOcc,
			AgeNext:        ageNext,
		})

		events, isToday := g.createEvents(name, birthDate, yearKnown, now, uidBase)
		if isToday {
			st.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompCalendar,
				config.LogKeyName, name,
				config.LogKeyDOB, birthDate.Format(config.DateFormatFullDash))
		}
		for _, e := range events {
			e.Props.Set(dtStampProp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	// An empty VCALENDAR is not encodable by go-ical; emit the stub instead.
	if len(cal.Children) == 0 {
		logSuccess(st, start)
		return []byte(config.StubVCalendar), entries, 0, nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, nil, 0, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	logSuccess(st, start)
	return buf.Bytes(), entries, st.today, nil
}

func logSuccess(st stats, start time.Time) {
	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, st.processed),
			slog.Int(config.LogKeyFound, st.withBday),
			slog.Int(config.LogKeyToday, st.today),
		),
	)
}

// entryUID is stable across exports: it prefers the card UID and falls back
// to the name and birth date.
func entryUID(c *card.Card, name string, birthDate time.Time) string {
	key := c.UID()
	if key == "" {
		key = name
	}
	input := fmt.Sprintf(config.FormatHashInput, key, birthDate.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// calculateNextOccurrence returns the next birthday on or after today and the
// age reached on it.
func calculateNextOccurrence(now time.Time, birthDate time.Time, yearKnown bool) (time.Time, int) {
	loc := now.Location()
	currentYear := now.Year()

	// time.Date moves Feb 29 to Mar 1 in non-leap years.
	candidate := time.Date(currentYear, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(currentYear+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	ageNext := 0
	if yearKnown {
		ageNext = candidate.Year() - birthDate.Year()
	}
	return candidate, ageNext
}

// createEvents emits one event for the previous, current and next year,
// never before the birth year.
func (g *Generator) createEvents(name string, birthDate time.Time, yearKnown bool, now time.Time, uidBase string) ([]*ical.Event, bool) {
	currentYear := now.Year()
	loc := now.Location()
	todayYear, todayMonth, todayDay := now.Date()

	var events []*ical.Event
	isToday := false

	for _, y := range []int{currentYear - 1, currentYear, currentYear + 1} {
		if yearKnown && y < birthDate.Year() {
			continue
		}

		event := ical.NewEvent()
		event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))

		age := 0
		if yearKnown {
			age = y - birthDate.Year()
		}
		summary := defaultSummary(name, age, yearKnown)
		if g.FormatSummary != nil {
			summary = g.FormatSummary(name, age, yearKnown)
		}
		event.Props.SetText(config.PropSummary, summary)

		eventDate := time.Date(y, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
		if y == todayYear && eventDate.Month() == todayMonth && eventDate.Day() == todayDay {
			isToday = true
		}

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(eventDate)
		event.Props.Set(dtStartProp)

		if g.Reminder != "" {
			addAlarm(event, g.Reminder, summary)
		}
		events = append(events, event)
	}
	return events, isToday
}

func defaultSummary(name string, age int, yearKnown bool) string {
	switch {
	case !yearKnown:
		return fmt.Sprintf(config.FallbackSummary, name)
	case age == 0:
		return fmt.Sprintf(config.FallbackSummaryBirth, name)
	default:
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDesc, description)

	// Set directly so the property carries no VALUE=TEXT parameter.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}

// parseDate accepts the BDAY layouts found in vCard 2.1 to 4.0 files.
// Dates without a year are placed in a leap year so --02-29 survives.
func parseDate(value string) (time.Time, bool, error) {
	for _, f := range []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	} {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
