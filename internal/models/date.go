package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

const (
	// DateLayout is the wire and storage format for calendar dates.
	DateLayout = "2006-01-02"
	// DateFormatMessage is reported for a date field that fails to parse.
	DateFormatMessage = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
)

// DateType is the reflect type reported in JSON decode errors for Date fields.
var DateType = reflect.TypeOf(Date{})

// Date is a calendar date without a time component. It is convertible to
// time.Time so validator tags treat it like a time value.
type Date time.Time

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, fmt.Errorf("date has wrong format, use YYYY-MM-DD: %q", raw)
	}
	return Date(t), nil
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// Time returns the underlying time value.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// After compares calendar days only.
func (d Date) After(other Date) bool {
	return d.String() > other.String()
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null. Failures are returned as
// *json.UnmarshalTypeError so the decoder attaches the JSON field name.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(strings.Trim(raw, `"`))
	if err != nil {
		return &json.UnmarshalTypeError{Value: raw, Type: DateType}
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case []byte:
		return d.scanString(string(v))
	case string:
		return d.scanString(v)
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(raw string) error {
	if len(raw) > len(DateLayout) {
		raw = raw[:len(DateLayout)]
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}
