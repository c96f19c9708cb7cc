package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type RecurrenceKind string

const (
	RecurOnce   RecurrenceKind = "once"
	RecurDaily  RecurrenceKind = "daily"
	RecurWeekly RecurrenceKind = "weekly"
	RecurAnnual RecurrenceKind = "annual"
)

type DailyMode string

const (
	DailyEveryNDays   DailyMode = "every_n_days"
	DailyWeekdaysOnly DailyMode = "weekdays_only"
	DailyOncePerDay   DailyMode = "once_per_day"
)

type WeeklyMode string

const (
	WeeklyWindow     WeeklyMode = "window"
	WeeklyOncePerDay WeeklyMode = "once_per_day"
)

// FieldError reports which recurrence field failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("recurrence field %q: %s", e.Field, e.Reason)
}

// RecurrenceSpec describes when a schedule may fire. Exactly one of the
// kind-specific structs is populated, matching Kind.
type RecurrenceSpec struct {
	Kind   RecurrenceKind    `json:"kind"`
	Once   *OnceRecurrence   `json:"once,omitempty"`
	Daily  *DailyRecurrence  `json:"daily,omitempty"`
	Weekly *WeeklyRecurrence `json:"weekly,omitempty"`
	Annual *AnnualRecurrence `json:"annual,omitempty"`
}

type OnceRecurrence struct {
	Date Date `json:"date"`
}

type DailyRecurrence struct {
	Mode       DailyMode  `json:"mode"`
	NDays      int        `json:"n_days,omitempty"`
	WindowFrom *ClockTime `json:"window_from,omitempty"`
	WindowTo   *ClockTime `json:"window_to,omitempty"`
	TimeOfDay  *ClockTime `json:"time_of_day,omitempty"`
}

type WeeklyRecurrence struct {
	Mode       WeeklyMode `json:"mode"`
	Days       WeekdaySet `json:"days"`
	WindowFrom *ClockTime `json:"window_from,omitempty"`
	WindowTo   *ClockTime `json:"window_to,omitempty"`
	TimeOfDay  *ClockTime `json:"time_of_day,omitempty"`
}

type AnnualRecurrence struct {
	MonthDay  MonthDay  `json:"month_day"`
	TimeOfDay ClockTime `json:"time_of_day"`
}

// Validate rejects a spec whose populated fields do not exactly match the
// set required by Kind (and, for daily/weekly, by Mode). Stale values left
// over from a previous kind are an error, not ignored.
func (s *RecurrenceSpec) Validate() error {
	switch s.Kind {
	case RecurOnce:
		if err := onlyPopulated(s, "once"); err != nil {
			return err
		}
		if s.Once == nil {
			return &FieldError{"once", "required for kind=once"}
		}
		if s.Once.Date.IsZero() {
			return &FieldError{"once.date", "required"}
		}
	case RecurDaily:
		if err := onlyPopulated(s, "daily"); err != nil {
			return err
		}
		if s.Daily == nil {
			return &FieldError{"daily", "required for kind=daily"}
		}
		return s.Daily.validate()
	case RecurWeekly:
		if err := onlyPopulated(s, "weekly"); err != nil {
			return err
		}
		if s.Weekly == nil {
			return &FieldError{"weekly", "required for kind=weekly"}
		}
		return s.Weekly.validate()
	case RecurAnnual:
		if err := onlyPopulated(s, "annual"); err != nil {
			return err
		}
		if s.Annual == nil {
			return &FieldError{"annual", "required for kind=annual"}
		}
		return s.Annual.validate()
	default:
		return &FieldError{"kind", fmt.Sprintf("unknown kind %q", s.Kind)}
	}
	return nil
}

func onlyPopulated(s *RecurrenceSpec, want string) error {
	set := map[string]bool{
		"once":   s.Once != nil,
		"daily":  s.Daily != nil,
		"weekly": s.Weekly != nil,
		"annual": s.Annual != nil,
	}
	for name, populated := range set {
		if name != want && populated {
			return &FieldError{name, fmt.Sprintf("must be absent for kind=%s", want)}
		}
	}
	return nil
}

func (d *DailyRecurrence) validate() error {
	switch d.Mode {
	case DailyEveryNDays:
		if d.NDays < 1 {
			return &FieldError{"daily.n_days", "must be >= 1 for mode=every_n_days"}
		}
		if d.TimeOfDay != nil {
			return &FieldError{"daily.time_of_day", "must be absent for mode=every_n_days"}
		}
		return requireWindow("daily", d.WindowFrom, d.WindowTo)
	case DailyWeekdaysOnly:
		if d.NDays != 0 {
			return &FieldError{"daily.n_days", "must be absent for mode=weekdays_only"}
		}
		if d.TimeOfDay != nil {
			return &FieldError{"daily.time_of_day", "must be absent for mode=weekdays_only"}
		}
		return requireWindow("daily", d.WindowFrom, d.WindowTo)
	case DailyOncePerDay:
		if d.NDays != 0 {
			return &FieldError{"daily.n_days", "must be absent for mode=once_per_day"}
		}
		if d.WindowFrom != nil || d.WindowTo != nil {
			return &FieldError{"daily.window_from", "window must be absent for mode=once_per_day"}
		}
		if d.TimeOfDay == nil {
			return &FieldError{"daily.time_of_day", "required for mode=once_per_day"}
		}
		return nil
	default:
		return &FieldError{"daily.mode", fmt.Sprintf("unknown mode %q", d.Mode)}
	}
}

func (w *WeeklyRecurrence) validate() error {
	if w.Days == 0 {
		return &FieldError{"weekly.days", "must name at least one weekday"}
	}
	switch w.Mode {
	case WeeklyWindow:
		if w.TimeOfDay != nil {
			return &FieldError{"weekly.time_of_day", "must be absent for mode=window"}
		}
		return requireWindow("weekly", w.WindowFrom, w.WindowTo)
	case WeeklyOncePerDay:
		if w.WindowFrom != nil || w.WindowTo != nil {
			return &FieldError{"weekly.window_from", "window must be absent for mode=once_per_day"}
		}
		if w.TimeOfDay == nil {
			return &FieldError{"weekly.time_of_day", "required for mode=once_per_day"}
		}
		return nil
	default:
		return &FieldError{"weekly.mode", fmt.Sprintf("unknown mode %q", w.Mode)}
	}
}

func (a *AnnualRecurrence) validate() error {
	if err := a.MonthDay.validate(); err != nil {
		return err
	}
	return nil
}

func requireWindow(prefix string, from, to *ClockTime) error {
	if from == nil {
		return &FieldError{prefix + ".window_from", "required"}
	}
	if to == nil {
		return &FieldError{prefix + ".window_to", "required"}
	}
	return nil
}

// Value / Scan store the spec as a jsonb column.
func (s RecurrenceSpec) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *RecurrenceSpec) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into RecurrenceSpec", src)
	}
}

// MonthDay is a calendar day independent of year, e.g. "12-24".
type MonthDay struct {
	Month time.Month
	Day   int
}

func ParseMonthDay(s string) (MonthDay, error) {
	var m, d int
	if _, err := fmt.Sscanf(s, "%2d-%2d", &m, &d); err != nil {
		return MonthDay{}, &FieldError{"annual.month_day", "must be MM-DD"}
	}
	md := MonthDay{Month: time.Month(m), Day: d}
	if err := md.validate(); err != nil {
		return MonthDay{}, err
	}
	return md, nil
}

var daysInMonth = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

func (md MonthDay) validate() error {
	if md.Month < time.January || md.Month > time.December {
		return &FieldError{"annual.month_day", "month out of range"}
	}
	// Feb-29 is accepted; it recurs only in leap years.
	if md.Day < 1 || md.Day > daysInMonth[md.Month] {
		return &FieldError{"annual.month_day", "day out of range"}
	}
	return nil
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

func (md MonthDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(md.String())
}

func (md *MonthDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseMonthDay(s)
	if err != nil {
		return err
	}
	*md = parsed
	return nil
}

// ClockTime is a time of day in minutes since midnight, rendered as "HH:MM".
type ClockTime int

func ParseClock(s string) (ClockTime, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil {
		return 0, fmt.Errorf("clock time %q: must be HH:MM", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q: out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// ClockOf extracts the time of day from t in t's location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c ClockTime) Value() (driver.Value, error) { return int64(c), nil }

func (c *ClockTime) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*c = ClockTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ClockTime", src)
	}
}

// InWindow reports whether c falls inside [from, to]. A window whose from is
// later than its to wraps past midnight; from == to covers the whole day.
func (c ClockTime) InWindow(from, to ClockTime) bool {
	if from == to {
		return true
	}
	if from < to {
		return c >= from && c <= to
	}
	return c >= from || c <= to
}

// WeekdaySet is a bitmask of time.Weekday values.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << uint(d)
	}
	return s
}

func (s WeekdaySet) Has(d time.Weekday) bool { return s&(1<<uint(d)) != 0 }

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	var names []string
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			names = append(names, strings.ToLower(d.String()))
		}
	}
	return json.Marshal(names)
}

func (s *WeekdaySet) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	var out WeekdaySet
	for _, n := range names {
		d, ok := weekdayNames[strings.ToLower(n)]
		if !ok {
			return &FieldError{"weekly.days", fmt.Sprintf("unknown weekday %q", n)}
		}
		if out.Has(d) {
			return &FieldError{"weekly.days", fmt.Sprintf("duplicate weekday %q", n)}
		}
		out |= 1 << uint(d)
	}
	*s = out
	return nil
}
