package core

import (
	"bytes"
	"strings"
	"time"
)

// Date is a point in time stored with millisecond precision in UTC.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to milliseconds so values survive a storage round trip.
func DateOf(t time.Time) Date {
	return Date{Time: t.UTC().Truncate(time.Millisecond)}
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, Invalidf("invalid date %q", s)
}

// EndOfDay moves a calendar date to its last millisecond so inclusive
// "until" filters cover the whole day.
func (d Date) EndOfDay() Date {
	y, m, day := d.UTC().Date()
	return Date{Time: time.Date(y, m, day, 23, 59, 59, int(999*time.Millisecond), time.UTC)}
}

// IsMidnight reports whether d carries no time-of-day component.
func (d Date) IsMidnight() bool {
	u := d.UTC()
	return u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

func DateFromMillis(ms int64) Date {
	return Date{Time: time.UnixMilli(ms).UTC()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		return nil
	}
	parsed, err := ParseDate(string(bytes.Trim(b, `"`)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// String formats d the way exports show it.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.UTC().Format(time.RFC3339)
}

// MonthRange returns the half-open UTC range [first of month, first of next).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// ParseMonth parses a YYYY-MM token.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, Invalidf("month must be in YYYY-MM format, got %q", s)
	}
	return t.Year(), t.Month(), nil
}
