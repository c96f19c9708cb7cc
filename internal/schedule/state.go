package schedule

import (
	"errors"

	"github.com/voxline-media/voxline/internal/model"
)

// ErrCompleted is returned when an operation requires a schedule that has
// not finished. Completed schedules cannot be edited or resumed; a new
// schedule must be created instead.
var ErrCompleted = errors.New("schedule is completed")

// Pause moves an active schedule to paused. Returns false (no-op) from any
// other state.
func Pause(rec *model.ScheduleRecord) bool {
	if rec.State != model.ScheduleActive {
		return false
	}
	rec.State = model.SchedulePaused
	return true
}

// Resume moves a paused schedule back to active. Returns false (no-op) from
// any other state; completed is terminal.
func Resume(rec *model.ScheduleRecord) bool {
	if rec.State != model.SchedulePaused {
		return false
	}
	rec.State = model.ScheduleActive
	return true
}

// AutoComplete marks a schedule finished, either because its validity window
// expired or because a one-shot schedule fired. Legal from active or paused.
func AutoComplete(rec *model.ScheduleRecord) bool {
	if rec.State != model.ScheduleActive && rec.State != model.SchedulePaused {
		return false
	}
	rec.State = model.ScheduleCompleted
	return true
}

// EnsureEditable rejects edits to recurrence or content on a completed
// schedule.
func EnsureEditable(rec *model.ScheduleRecord) error {
	if rec.State == model.ScheduleCompleted {
		return ErrCompleted
	}
	return nil
}
