package packets

import "github.com/voxline-media/voxline/internal/model"

// PlayRequest starts one insertion: either a due schedule (by id) or a
// manual "play now" of a single library item.
type PlayRequest struct {
	ScheduleID *int             `json:"schedule_id"`
	ContentID  *int             `json:"content_id"`
	AudioMode  *model.AudioMode `json:"audio_mode"`
}
