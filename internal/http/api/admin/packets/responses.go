package packets

import (
	"time"

	"github.com/voxline-media/voxline/internal/model"
)

type ScheduleResponse struct {
	ID               int                  `json:"id"`
	Description      string               `json:"description"`
	Recurrence       model.RecurrenceSpec `json:"recurrence"`
	State            model.ScheduleState  `json:"state"`
	AudioMode        model.AudioMode      `json:"audio_mode"`
	WaitForTrackEnd  bool                 `json:"wait_for_track_end"`
	FrequencyMinutes int                  `json:"frequency_minutes"`
	DailyWindowFrom  model.ClockTime      `json:"daily_window_from"`
	DailyWindowTo    model.ClockTime      `json:"daily_window_to"`
	ValidFrom        model.Date           `json:"valid_from"`
	ValidUntil       *model.Date          `json:"valid_until,omitempty"`
	LastPlayedAt     *time.Time           `json:"last_played_at,omitempty"`
	ContentItems     []model.ContentRef   `json:"content_items,omitempty"`
	CreatedAt        string               `json:"created_at"`
	UpdatedAt        string               `json:"updated_at"`
}

func NewScheduleResponse(rec model.ScheduleRecord) ScheduleResponse {
	return ScheduleResponse{
		ID:               rec.ID,
		Description:      rec.Description,
		Recurrence:       rec.Recurrence,
		State:            rec.State,
		AudioMode:        rec.AudioMode,
		WaitForTrackEnd:  rec.WaitForTrackEnd,
		FrequencyMinutes: rec.FrequencyMinutes,
		DailyWindowFrom:  rec.DailyWindowFrom,
		DailyWindowTo:    rec.DailyWindowTo,
		ValidFrom:        rec.ValidFrom,
		ValidUntil:       rec.ValidUntil,
		LastPlayedAt:     rec.LastPlayedAt,
		ContentItems:     rec.ContentItems,
		CreatedAt:        rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        rec.UpdatedAt.Format(time.RFC3339),
	}
}
