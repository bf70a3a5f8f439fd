package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Date wraps time.Time at day granularity so we can control both
// JSON un/marshaling and SQL driver encoding. Plan windows and
// completion dates are dates, not instants; comparing them at
// anything finer produces false mismatches.
type Date time.Time

const dateLayout = "2006-01-02"

// NewDate truncates t to midnight UTC.
func NewDate(t time.Time) Date {
	return Date(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
}

// UnmarshalJSON lets us parse either the plain form ("2025-05-16")
// or a full RFC3339 timestamp, keeping only the calendar day.
func (d *Date) UnmarshalJSON(b []byte) error {
	// strip quotes
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		*d = NewDate(t)
		return nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewDate(t)
		return nil
	}

	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return fmt.Errorf("Date.UnmarshalJSON: cannot parse %q: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// MarshalJSON always emits the plain "2006-01-02" form.
func (d Date) MarshalJSON() ([]byte, error) {
	if time.Time(d).IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + time.Time(d).Format(dateLayout) + `"`), nil
}

// Value implements driver.Valuer for gorm.
func (d Date) Value() (driver.Value, error) {
	if time.Time(d).IsZero() {
		return nil, nil
	}
	return time.Time(d), nil
}

// Scan implements sql.Scanner; accepts time.Time, string and []byte
// so the same model works against postgres and the sqlite test driver.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("Date.Scan: unsupported type %T", value)
	}
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewDate(t)
			return nil
		}
	}
	return fmt.Errorf("Date.Scan: cannot parse %q", s)
}

// Equal compares two dates at calendar-day granularity.
func (d Date) Equal(other Date) bool {
	a, b := time.Time(d), time.Time(other)
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Time(d).Format(dateLayout)
}

// Time returns the underlying time.Time (midnight UTC).
func (d Date) Time() time.Time {
	return time.Time(d)
}
