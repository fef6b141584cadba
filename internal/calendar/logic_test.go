package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateNextOccurrence(t *testing.T) {
	// Reference "now": June 15th, 2025, not a leap year.
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		birthDate    time.Time
		yearKnown    bool
		expectedDate time.Time
		expectedAge  int
	}{
		{
			name:         "Already passed this year",
			birthDate:    time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  36,
		},
		{
			name:         "Later this year",
			birthDate:    time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
		},
		{
			name:         "Today counts as next",
			birthDate:    time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			expectedAge:  35,
		},
		{
			name:         "Year unknown",
			birthDate:    time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
			yearKnown:    false,
			expectedDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  0,
		},
		{
			name:         "Leapling in a non-leap year",
			birthDate:    time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC),
			yearKnown:    true,
			expectedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			expectedAge:  26,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, age := calculateNextOccurrence(now, tt.birthDate, tt.yearKnown)
			assert.Equal(t, tt.expectedDate, next)
			assert.Equal(t, tt.expectedAge, age)
		})
	}
}

func TestCalculateNextOccurrence_LeapYearContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	birthDate := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)

	next, _ := calculateNextOccurrence(now, birthDate, true)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), next)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value     string
		wantMonth time.Month
		wantDay   int
		yearKnown bool
		wantErr   bool
	}{
		{value: "1990-10-25", wantMonth: time.October, wantDay: 25, yearKnown: true},
		{value: "19901025", wantMonth: time.October, wantDay: 25, yearKnown: true},
		{value: "1990-10-25T00:00:00Z", wantMonth: time.October, wantDay: 25, yearKnown: true},
		{value: "--10-25", wantMonth: time.October, wantDay: 25},
		{value: "--0229", wantMonth: time.February, wantDay: 29},
		{value: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, known, err := parseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMonth, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
			assert.Equal(t, tt.yearKnown, known)
		})
	}
}

func TestDefaultSummary(t *testing.T) {
	assert.Equal(t, "Birthday: Ann", defaultSummary("Ann", 0, false))
	assert.Equal(t, "Birthday: Ann (birth)", defaultSummary("Ann", 0, true))
	assert.Equal(t, "Birthday: Ann (30)", defaultSummary("Ann", 30, true))
}
