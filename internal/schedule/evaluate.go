// Package schedule implements the eligibility rules deciding when a
// schedule's content is due for insertion into the music stream, and the
// lifecycle state machine of a schedule.
package schedule

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxline-media/voxline/internal/model"
)

// Result of evaluating one schedule at one instant.
type Result int

const (
	NotDue Result = iota
	Due
	// Expired means the validity window is over; the caller should drive
	// the record to completed.
	Expired
)

func (r Result) String() string {
	switch r {
	case Due:
		return "due"
	case Expired:
		return "expired"
	default:
		return "not_due"
	}
}

// FireTolerance is how long after a once-per-day or annual target time a
// schedule still counts as due. The evaluation tick is much shorter than
// this, so a target time is never skipped.
const FireTolerance = 5 * time.Minute

// Evaluate is a pure function of (record, now). It never mutates the record;
// persisting state changes implied by Expired or a fired once-schedule is the
// caller's job.
func Evaluate(rec *model.ScheduleRecord, now time.Time) Result {
	if rec.State != model.ScheduleActive {
		return NotDue
	}
	today := dateOf(now)
	if rec.ValidUntil != nil && today.After(rec.ValidUntil.Time) {
		return Expired
	}
	if today.Before(rec.ValidFrom.Time) {
		return NotDue
	}
	// A schedule with nothing playable is never due; expiry above still
	// completes it.
	if len(rec.ActiveContent()) == 0 {
		return NotDue
	}
	clock := model.ClockOf(now)
	if !clock.InWindow(rec.DailyWindowFrom, rec.DailyWindowTo) {
		return NotDue
	}
	if rec.LastPlayedAt != nil &&
		now.Sub(*rec.LastPlayedAt) < time.Duration(rec.FrequencyMinutes)*time.Minute {
		return NotDue
	}
	if matchRecurrence(rec, now, clock) {
		return Due
	}
	return NotDue
}

func matchRecurrence(rec *model.ScheduleRecord, now time.Time, clock model.ClockTime) bool {
	r := &rec.Recurrence
	switch r.Kind {
	case model.RecurOnce:
		return r.Once != nil && sameDate(r.Once.Date.Time, now)
	case model.RecurDaily:
		if r.Daily == nil {
			return false
		}
		return matchDaily(rec, r.Daily, now, clock)
	case model.RecurWeekly:
		if r.Weekly == nil {
			return false
		}
		return matchWeekly(rec, r.Weekly, now, clock)
	case model.RecurAnnual:
		if r.Annual == nil {
			return false
		}
		return matchAnnual(rec, r.Annual, now, clock)
	}
	return false
}

func matchDaily(rec *model.ScheduleRecord, d *model.DailyRecurrence, now time.Time, clock model.ClockTime) bool {
	switch d.Mode {
	case model.DailyEveryNDays:
		if d.NDays < 1 || d.WindowFrom == nil || d.WindowTo == nil {
			return false
		}
		return daysBetween(rec.ValidFrom.Time, now)%d.NDays == 0 &&
			clock.InWindow(*d.WindowFrom, *d.WindowTo)
	case model.DailyWeekdaysOnly:
		if d.WindowFrom == nil || d.WindowTo == nil {
			return false
		}
		wd := now.Weekday()
		return wd != time.Saturday && wd != time.Sunday &&
			clock.InWindow(*d.WindowFrom, *d.WindowTo)
	case model.DailyOncePerDay:
		if d.TimeOfDay == nil {
			return false
		}
		return atTargetTime(now, *d.TimeOfDay) && !playedToday(rec, now)
	}
	return false
}

func matchWeekly(rec *model.ScheduleRecord, w *model.WeeklyRecurrence, now time.Time, clock model.ClockTime) bool {
	if !w.Days.Has(now.Weekday()) {
		return false
	}
	switch w.Mode {
	case model.WeeklyWindow:
		if w.WindowFrom == nil || w.WindowTo == nil {
			return false
		}
		return clock.InWindow(*w.WindowFrom, *w.WindowTo)
	case model.WeeklyOncePerDay:
		if w.TimeOfDay == nil {
			return false
		}
		return atTargetTime(now, *w.TimeOfDay) && !playedToday(rec, now)
	}
	return false
}

func matchAnnual(rec *model.ScheduleRecord, a *model.AnnualRecurrence, now time.Time, clock model.ClockTime) bool {
	if now.Month() != a.MonthDay.Month || now.Day() != a.MonthDay.Day {
		return false
	}
	if !atTargetTime(now, a.TimeOfDay) {
		return false
	}
	// Once per calendar year, tracked through last_played_at.
	return rec.LastPlayedAt == nil || rec.LastPlayedAt.Year() != now.Year()
}

// atTargetTime reports whether now is in [target, target+FireTolerance],
// on the same day as the target.
func atTargetTime(now time.Time, target model.ClockTime) bool {
	t := time.Date(now.Year(), now.Month(), now.Day(), target.Hour(), target.Minute(), 0, 0, now.Location())
	diff := now.Sub(t)
	return diff >= 0 && diff <= FireTolerance
}

func playedToday(rec *model.ScheduleRecord, now time.Time) bool {
	return rec.LastPlayedAt != nil && sameDate(*rec.LastPlayedAt, now)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// dateOf truncates a timestamp to its calendar day, anchored in UTC so date
// arithmetic is immune to DST shifts.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from "from" to "to", ignoring the
// time-of-day components.
func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

// Partition evaluates every record and splits the set into due and expired.
// A record that fails recurrence validation is logged and treated as not due
// so one bad row cannot stall the whole evaluation pass.
func Partition(records []model.ScheduleRecord, now time.Time) (due, expired []model.ScheduleRecord) {
	for i := range records {
		rec := &records[i]
		if err := rec.Recurrence.Validate(); err != nil {
			log.Warn().Err(err).Int("schedule_id", rec.ID).Msg("skipping malformed schedule")
			continue
		}
		switch Evaluate(rec, now) {
		case Due:
			due = append(due, *rec)
		case Expired:
			expired = append(expired, *rec)
		}
	}
	return due, expired
}
