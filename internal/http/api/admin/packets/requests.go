package packets

import (
	"github.com/voxline-media/voxline/internal/model"
)

type CreateScheduleRequest struct {
	Description      string               `json:"description" binding:"required"`
	Recurrence       model.RecurrenceSpec `json:"recurrence" binding:"required"`
	AudioMode        model.AudioMode      `json:"audio_mode" binding:"required"`
	WaitForTrackEnd  bool                 `json:"wait_for_track_end"`
	FrequencyMinutes int                  `json:"frequency_minutes" binding:"required"`
	DailyWindowFrom  model.ClockTime      `json:"daily_window_from"`
	DailyWindowTo    model.ClockTime      `json:"daily_window_to"`
	ValidFrom        model.Date           `json:"valid_from" binding:"required"`
	ValidUntil       *model.Date          `json:"valid_until"`
	ContentItems     []ContentRefRequest  `json:"content_items"`
}

type UpdateScheduleRequest struct {
	Description      *string               `json:"description"`
	Recurrence       *model.RecurrenceSpec `json:"recurrence"`
	AudioMode        *model.AudioMode      `json:"audio_mode"`
	WaitForTrackEnd  *bool                 `json:"wait_for_track_end"`
	FrequencyMinutes *int                  `json:"frequency_minutes"`
	DailyWindowFrom  *model.ClockTime      `json:"daily_window_from"`
	DailyWindowTo    *model.ClockTime      `json:"daily_window_to"`
	ValidFrom        *model.Date           `json:"valid_from"`
	ValidUntil       *model.Date           `json:"valid_until"`
	// ClearValidUntil makes the schedule open-ended again; absent json
	// fields and explicit nulls bind identically, so clearing needs its
	// own flag.
	ClearValidUntil bool `json:"clear_valid_until"`
}

type ContentRefRequest struct {
	ContentID int  `json:"content_id" binding:"required"`
	Active    bool `json:"active"`
}

type ReplaceContentRequest struct {
	Items []ContentRefRequest `json:"items" binding:"required"`
}

type AssignSessionRequest struct {
	SessionID int `json:"session_id" binding:"required"`
}

type CreateContentRequest struct {
	Name            string `json:"name" binding:"required"`
	Type            string `json:"type" binding:"required"`
	URL             string `json:"url" binding:"required"`
	DurationSeconds int    `json:"duration_seconds"`
}

type CreateSessionRequest struct {
	Name     string  `json:"name" binding:"required"`
	DeviceID *string `json:"device_id"`
}
