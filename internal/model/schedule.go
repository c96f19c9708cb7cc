package model

import "time"

type ScheduleState string

const (
	ScheduleActive    ScheduleState = "active"
	SchedulePaused    ScheduleState = "paused"
	ScheduleCompleted ScheduleState = "completed"
)

type AudioMode string

const (
	// AudioDuckAndFade fades the background stream out before the insertion
	// and back in after it; the insertion plays solo.
	AudioDuckAndFade AudioMode = "duck_and_fade"
	// AudioLayeredBackground keeps the background stream running at reduced
	// volume underneath the insertion.
	AudioLayeredBackground AudioMode = "layered_background"
)

func ValidAudioMode(mode AudioMode) bool {
	return mode == AudioDuckAndFade || mode == AudioLayeredBackground
}

// FrequencyChoices are the accepted values for ScheduleRecord.FrequencyMinutes.
var FrequencyChoices = []int{5, 10, 15, 20, 30, 45, 60, 90, 120}

func ValidFrequency(minutes int) bool {
	for _, f := range FrequencyChoices {
		if f == minutes {
			return true
		}
	}
	return false
}

// ScheduleRecord is a recurring or one-shot insertion rule plus its content
// and audio policy.
type ScheduleRecord struct {
	ID               int            `db:"id" json:"id"`
	Description      string         `db:"description" json:"description"`
	Recurrence       RecurrenceSpec `db:"recurrence" json:"recurrence"`
	State            ScheduleState  `db:"state" json:"state"`
	AudioMode        AudioMode      `db:"audio_mode" json:"audio_mode"`
	WaitForTrackEnd  bool           `db:"wait_for_track_end" json:"wait_for_track_end"`
	FrequencyMinutes int            `db:"frequency_minutes" json:"frequency_minutes"`
	DailyWindowFrom  ClockTime      `db:"daily_window_from" json:"daily_window_from"`
	DailyWindowTo    ClockTime      `db:"daily_window_to" json:"daily_window_to"`
	ValidFrom        Date           `db:"valid_from" json:"valid_from"`
	ValidUntil       *Date          `db:"valid_until" json:"valid_until,omitempty"`
	LastPlayedAt     *time.Time     `db:"last_played_at" json:"last_played_at,omitempty"`
	CreatedBy        int            `db:"created_by" json:"created_by"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`

	ContentItems []ContentRef `db:"-" json:"content_items,omitempty"`
}

// ActiveContent returns the playable refs in playback order.
func (s *ScheduleRecord) ActiveContent() []ContentRef {
	out := make([]ContentRef, 0, len(s.ContentItems))
	for _, ref := range s.ContentItems {
		if ref.Active {
			out = append(out, ref)
		}
	}
	return out
}

// ContentRef links a schedule to an item in the content library. The library
// owns the content lifecycle; schedules only reference it.
type ContentRef struct {
	ScheduleID int  `db:"schedule_id" json:"schedule_id"`
	ContentID  int  `db:"content_id" json:"content_id"`
	Position   int  `db:"position" json:"position"`
	Active     bool `db:"active" json:"active"`
}
