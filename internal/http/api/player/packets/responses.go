package packets

import (
	"time"

	"github.com/voxline-media/voxline/internal/model"
)

type DueScheduleResponse struct {
	ID               int                `json:"id"`
	Description      string             `json:"description"`
	AudioMode        model.AudioMode    `json:"audio_mode"`
	WaitForTrackEnd  bool               `json:"wait_for_track_end"`
	FrequencyMinutes int                `json:"frequency_minutes"`
	ContentItems     []model.ContentRef `json:"content_items"`
}

func NewDueScheduleResponse(rec model.ScheduleRecord) DueScheduleResponse {
	return DueScheduleResponse{
		ID:               rec.ID,
		Description:      rec.Description,
		AudioMode:        rec.AudioMode,
		WaitForTrackEnd:  rec.WaitForTrackEnd,
		FrequencyMinutes: rec.FrequencyMinutes,
		ContentItems:     rec.ActiveContent(),
	}
}

type PlayResponse struct {
	Holder    string    `json:"holder"`
	StartedAt time.Time `json:"started_at"`
}
