package calendar_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/vcard-editor/internal/calendar"
	"github.com/tartampluch/vcard-editor/internal/card"
)

// MockClock pins "now" for deterministic windows.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time { return m.CurrentTime }

func person(name, bday string) *card.Card {
	c := card.New()
	c.SetValue(vcard.FieldFormattedName, name)
	if bday != "" {
		c.SetValue(vcard.FieldBirthday, bday)
	}
	return c
}

func generatorAt(y int, m time.Month, d int) *calendar.Generator {
	return &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(y, m, d, 10, 0, 0, 0, time.UTC)}}
}

func TestGenerate_YearWindow(t *testing.T) {
	gen := generatorAt(2025, 1, 1)

	ics, entries, _, err := gen.Generate(context.Background(), []*card.Card{person("Range Test", "1990-12-31")})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	out := string(ics)
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20241231")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20261231")
	assert.Equal(t, 3, strings.Count(out, "BEGIN:VEVENT"))
}

func TestGenerate_SkipsContactsWithoutBirthday(t *testing.T) {
	gen := generatorAt(2025, 6, 1)

	cards := []*card.Card{
		person("No Date", ""),
		person("Garbage", "not-a-date"),
		person("Valid", "--10-25"),
	}
	ics, entries, _, err := gen.Generate(context.Background(), cards)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "Valid", entries[0].Name)
	assert.False(t, entries[0].YearKnown)
	assert.Equal(t, 3, strings.Count(string(ics), "BEGIN:VEVENT"))
}

func TestGenerate_NoBirthdaysReturnsStub(t *testing.T) {
	gen := generatorAt(2025, 6, 1)

	ics, entries, count, err := gen.Generate(context.Background(), []*card.Card{person("Nobody", "")})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Zero(t, count)
	assert.Contains(t, string(ics), "BEGIN:VCALENDAR")
	assert.NotContains(t, string(ics), "BEGIN:VEVENT")
}

func TestGenerate_BabyBornThisYear(t *testing.T) {
	gen := generatorAt(2025, 1, 1)
	gen.FormatSummary = func(name string, age int, yearKnown bool) string {
		if age == 0 {
			return fmt.Sprintf("Birthday: %s (Birth)", name)
		}
		return fmt.Sprintf("Birthday: %s (%d)", name, age)
	}

	ics, _, _, err := gen.Generate(context.Background(), []*card.Card{person("Baby", "2025-05-01")})
	require.NoError(t, err)

	out := string(ics)
	assert.NotContains(t, out, "DTSTART;VALUE=DATE:20240501")
	assert.Contains(t, out, "SUMMARY:Birthday: Baby (Birth)")
	assert.Contains(t, out, "SUMMARY:Birthday: Baby (1)")
	assert.Equal(t, 2, strings.Count(out, "BEGIN:VEVENT"))
}

func TestGenerate_TodayCount(t *testing.T) {
	gen := generatorAt(2025, 6, 1)

	cards := []*card.Card{
		person("Today", "1990-06-01"),
		person("Tomorrow", "1990-06-02"),
	}
	_, entries, count, err := gen.Generate(context.Background(), cards)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	require.Len(t, entries, 2)
	assert.Equal(t, 35, entries[0].AgeNext)
}

func TestGenerate_Reminder(t *testing.T) {
	gen := generatorAt(2025, 6, 1)
	gen.Reminder = "-P1D"

	ics, _, _, err := gen.Generate(context.Background(), []*card.Card{person("Alarm Test", "1990-01-01")})
	require.NoError(t, err)

	out := string(ics)
	assert.Contains(t, out, "BEGIN:VALARM")
	assert.Contains(t, out, "TRIGGER:-P1D")
	assert.Contains(t, out, "ACTION:DISPLAY")
}

func TestGenerate_StableUIDs(t *testing.T) {
	gen := generatorAt(2025, 6, 1)
	c := person("Stable", "1990-01-01")
	c.SetValue(vcard.FieldUID, "urn:uuid:1234")

	_, first, _, err := gen.Generate(context.Background(), []*card.Card{c})
	require.NoError(t, err)

	c.SetFormattedName("Renamed")
	_, second, _, err := gen.Generate(context.Background(), []*card.Card{c})
	require.NoError(t, err)

	assert.Equal(t, first[0].UID, second[0].UID, "Card UID keeps event UIDs stable across renames")
}

func TestGenerate_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ics, _, _, err := generatorAt(2025, 6, 1).Generate(ctx, []*card.Card{person("A", "1990-01-01")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, ics)
}

func TestGenerate_SameDayRendersAreIdentical(t *testing.T) {
	cards := []*card.Card{person("Alice", "1990-05-04")}
	at := func(h int) []byte {
		gen := &calendar.Generator{Clock: MockClock{CurrentTime: time.Date(2025, 3, 1, h, 30, 0, 0, time.UTC)}}
		ics, _, _, err := gen.Generate(context.Background(), cards)
		require.NoError(t, err)
		return ics
	}

	morning, evening := at(8), at(22)
	assert.Equal(t, string(morning), string(evening))
	assert.Contains(t, string(morning), "DTSTAMP:20250301T000000Z")
}
