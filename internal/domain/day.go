package domain

import (
	"time"
	_ "time/tzdata"
)

// PracticeLocation is the timezone practice days are counted in
const PracticeLocation = "Asia/Ho_Chi_Minh"

// PracticeTimezone returns the location practice days are counted in,
// falling back to a fixed UTC+7 zone
func PracticeTimezone() *time.Location {
	loc, err := time.LoadLocation(PracticeLocation)
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// Day represents a day with recorded attempts
type Day struct {
	Date         time.Time
	AttemptCount int
}

// DateString returns date in YYYYMMDD format
func (d Day) DateString() string {
	return d.Date.Format("20060102")
}

// DisplayString returns user-friendly date string
func (d Day) DisplayString() string {
	return d.displayRelativeTo(time.Now().In(PracticeTimezone()))
}

func (d Day) displayRelativeTo(now time.Time) string {
	date := d.Date

	if sameDay(date, now) {
		return "Today"
	}

	if sameDay(date, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}

	return date.Format("2 Jan 2006")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
