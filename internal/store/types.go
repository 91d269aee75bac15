package store

import (
	"fmt"
	"time"
)

// DateLayout is the textual form of an EpochDay.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// EpochDay is a calendar date stored as the number of days since 1970-01-01.
// It carries no time of day and no zone.
type EpochDay int64

// EpochDayOf returns the day of t's calendar date, read in t's own location.
func EpochDayOf(t time.Time) EpochDay {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return EpochDay(midnight.Unix() / secondsPerDay)
}

// ParseEpochDay parses a YYYY-MM-DD date.
func ParseEpochDay(s string) (EpochDay, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", s, err)
	}
	return EpochDayOf(t), nil
}

// Time returns midnight UTC of the day.
func (d EpochDay) Time() time.Time {
	return time.Unix(int64(d)*secondsPerDay, 0).UTC()
}

func (d EpochDay) String() string {
	return d.Time().Format(DateLayout)
}

// Record is one row of the people table. Values are immutable; Update takes
// a new Record with the same ID.
type Record struct {
	ID    int64    `json:"id" yaml:"id"`
	Name  string   `json:"name" yaml:"name"`
	Birth EpochDay `json:"birth" yaml:"birth"`
}

// WithName returns a copy of r carrying name.
func (r Record) WithName(name string) Record {
	r.Name = name
	return r
}

// WithBirth returns a copy of r carrying birth.
func (r Record) WithBirth(birth EpochDay) Record {
	r.Birth = birth
	return r
}
