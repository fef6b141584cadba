package calendar

import "time"

// Entry is one contact with a usable birthday.
type Entry struct {
	// UID is a stable hash used as the base of the event UIDs.
	UID  string
	Name string

	DateOfBirth time.Time
	// YearKnown is false for truncated dates such as --MM-DD.
	YearKnown bool

	// NextOccurrence is the birthday in the current or next year.
	NextOccurrence time.Time
	// AgeNext is the age reached at NextOccurrence, zero when the year is unknown.
	AgeNext int
}
