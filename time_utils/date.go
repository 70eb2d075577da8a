package timeutils

import (
	"fmt"
	"time"
)

// Date identifies a calendar day, without a time of day. It is comparable and
// can be used as a map key when grouping readings by day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day that `t` falls on, in t's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
