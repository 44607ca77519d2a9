package dateonly

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Date is a calendar day in ISO-8601 form ("2006-01-02"). The string
// form sorts lexicographically in chronological order, which keeps
// comparisons and SQL ordering trivial across dialects.
type Date string

var ErrInvalidDate = errors.New("invalid_date")

func Parse(value string) (Date, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return "", ErrInvalidDate
	}
	return FromTime(t), nil
}

func FromTime(t time.Time) Date {
	return Date(t.Format(Layout))
}

// Today returns the current calendar day in the given location.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(now.In(loc))
}

func (d Date) String() string { return string(d) }

func (d Date) IsZero() bool { return d == "" }

// Valid reports whether the value parses as a calendar day.
func (d Date) Valid() bool {
	_, err := d.Time()
	return err == nil
}

func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Scan accepts DATE columns from any supported driver: postgres hands
// back time.Time, sqlite and mysql hand back text.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("dateonly: cannot scan %T", value)
	}
}

func (d *Date) scanString(value string) error {
	if len(value) > len(Layout) {
		value = value[:len(Layout)]
	}
	parsed, err := Parse(value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d), nil
}

func (d Date) Before(other Date) bool { return d < other }

func (d Date) After(other Date) bool { return d > other }

func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return FromTime(t.AddDate(0, 0, n))
}

// DaysBetween returns end minus start in whole days. Invalid dates
// yield zero.
func DaysBetween(start, end Date) int {
	s, err := start.Time()
	if err != nil {
		return 0
	}
	e, err := end.Time()
	if err != nil {
		return 0
	}
	return int(e.Sub(s).Hours() / 24)
}

// Range returns every day from start through end inclusive. An
// inverted range yields nil.
func Range(start, end Date) []Date {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return nil
	}
	days := DaysBetween(start, end)
	out := make([]Date, 0, days+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
