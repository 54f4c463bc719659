package models

import (
	"strings"
	"time"
)

// deadlineLayout is the only accepted input format for deadlines.
const deadlineLayout = "02 01 2006"

// Deadline is a calendar date with no time-of-day component. Whether an
// entity has a deadline at all is modelled by a nil *Deadline, which is a
// valid state rather than an error.
type Deadline struct {
	Day   int `json:"day" yaml:"day" toml:"day" validate:"min=1,max=31"`
	Month int `json:"month" yaml:"month" toml:"month" validate:"min=1,max=12"`
	Year  int `json:"year" yaml:"year" toml:"year" validate:"min=1"`
}

// ParseDeadline converts a "dd mm yyyy" string into a Deadline. An empty or
// blank input is the documented "no deadline" state and yields (nil, nil).
// Anything else that does not parse as a real calendar date returns a
// *DeadlineFormatError.
func ParseDeadline(input string) (*Deadline, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	t, err := time.Parse(deadlineLayout, input)
	if err != nil {
		return nil, &DeadlineFormatError{Input: input}
	}
	return &Deadline{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}, nil
}

// Time returns the deadline as midnight UTC of the stored date.
func (d Deadline) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Unix returns the deadline as seconds since epoch, midnight UTC.
func (d Deadline) Unix() int64 {
	return d.Time().Unix()
}

// String renders the deadline back in input form.
func (d Deadline) String() string {
	return d.Time().Format(deadlineLayout)
}
