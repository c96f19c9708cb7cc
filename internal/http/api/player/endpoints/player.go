package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	"github.com/voxline-media/voxline/internal/http/api/player/packets"
	"github.com/voxline-media/voxline/internal/model"
	"github.com/voxline-media/voxline/internal/playback"
	"github.com/voxline-media/voxline/internal/redis"
)

// PlayerController is the session-facing surface: the audio player at the
// premises polls for due schedules, reports track boundaries and triggers
// insertions; the admin UI's "play now" button lands here too.
type PlayerController struct {
	store db.Store
	orch  *playback.Orchestrator
}

func NewPlayerController(store db.Store, orch *playback.Orchestrator) *PlayerController {
	return &PlayerController{store: store, orch: orch}
}

func PlayerModule(store db.Store, orch *playback.Orchestrator) api.Module {
	ctl := NewPlayerController(store, orch)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/due", ctl.listDue)
		c.POST("/play", ctl.play)
		c.GET("/lock", ctl.lockStatus)
		c.POST("/track-boundary", ctl.trackBoundary)
	})
}

func (p *PlayerController) listDue(ctx *gin.Context) (any, *api.APIError) {
	redis.TouchSessionPresence(ctx.Request.Context(), p.orch.SessionID())

	due, err := p.orch.ListDue(time.Now())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to evaluate schedules"}
	}

	response := make([]packets.DueScheduleResponse, 0, len(due))
	for _, rec := range due {
		response = append(response, packets.NewDueScheduleResponse(rec))
	}
	return response, nil
}

func (p *PlayerController) play(ctx *gin.Context) (any, *api.APIError) {
	var request packets.PlayRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	switch {
	case request.ScheduleID != nil:
		return p.playSchedule(ctx, *request.ScheduleID)
	case request.ContentID != nil:
		mode := model.AudioDuckAndFade
		if request.AudioMode != nil {
			mode = *request.AudioMode
		}
		return p.playManual(ctx, *request.ContentID, mode)
	default:
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "schedule_id or content_id is required"}
	}
}

func (p *PlayerController) playSchedule(ctx *gin.Context, scheduleID int) (any, *api.APIError) {
	rec, err := p.store.GetSchedule(scheduleID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}

	started := time.Now()
	err = p.orch.PlaySchedule(ctx.Request.Context(), &rec)
	if apiErr := playError(err); apiErr != nil {
		return nil, apiErr
	}
	return packets.PlayResponse{Holder: playback.ScheduleHolder(rec.ID), StartedAt: started}, nil
}

func (p *PlayerController) playManual(ctx *gin.Context, contentID int, mode model.AudioMode) (any, *api.APIError) {
	if _, err := p.store.GetContentByID(contentID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "content not found"}
	}

	started := time.Now()
	token, err := p.orch.PlayManual(ctx.Request.Context(), contentID, mode)
	if apiErr := playError(err); apiErr != nil {
		return nil, apiErr
	}
	return packets.PlayResponse{Holder: token, StartedAt: started}, nil
}

func (p *PlayerController) lockStatus(ctx *gin.Context) (any, *api.APIError) {
	return p.orch.LockStatus(), nil
}

// trackBoundary is called by the audio subsystem whenever the background
// stream finishes a track, releasing insertions deferred by
// wait_for_track_end.
func (p *PlayerController) trackBoundary(ctx *gin.Context) (any, *api.APIError) {
	p.orch.NotifyTrackBoundary()
	return gin.H{"message": "ok"}, nil
}

// playError maps orchestrator outcomes to API responses. Busy is 409 (an
// expected outcome the caller retries later), rate limiting 429; anything
// else is a real playback failure.
func playError(err error) *api.APIError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playback.ErrBusy):
		return &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	case errors.Is(err, playback.ErrRateLimited):
		return &api.APIError{Code: http.StatusTooManyRequests, Message: err.Error()}
	case errors.Is(err, playback.ErrNoContent):
		return &api.APIError{Code: http.StatusUnprocessableEntity, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: "playback failed"}
	}
}
