package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	"github.com/voxline-media/voxline/internal/http/api/admin/packets"
	"github.com/voxline-media/voxline/internal/http/middleware"
	"github.com/voxline-media/voxline/internal/model"
	"github.com/voxline-media/voxline/internal/schedule"
)

type ScheduleController struct {
	store db.Store
}

func NewScheduleController(store db.Store) *ScheduleController {
	return &ScheduleController{store: store}
}

func ScheduleModule(store db.Store) api.Module {
	ctl := NewScheduleController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/schedules", ctl.listSchedules)
		c.POST("/schedules", ctl.createSchedule)
		c.GET("/schedules/:id", ctl.getSchedule)
		c.PUT("/schedules/:id", ctl.updateSchedule)
		c.DELETE("/schedules/:id", ctl.deleteSchedule)

		// lifecycle
		c.POST("/schedules/:id/pause", ctl.pauseSchedule)
		c.POST("/schedules/:id/resume", ctl.resumeSchedule)

		// ordered content refs
		c.PUT("/schedules/:id/content", ctl.replaceContent)

		// schedule <-> player session
		c.POST("/schedules/:id/sessions", ctl.assignSession)
		c.DELETE("/schedules/:id/sessions/:session_id", ctl.unassignSession)
	})
}

func (s *ScheduleController) listSchedules(ctx *gin.Context) (any, *api.APIError) {
	list, err := s.store.ListSchedules()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list schedules"}
	}

	response := make([]packets.ScheduleResponse, 0, len(list))
	for _, rec := range list {
		response = append(response, packets.NewScheduleResponse(rec))
	}
	return response, nil
}

func (s *ScheduleController) createSchedule(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CreateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := request.Recurrence.Validate(); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !model.ValidFrequency(request.FrequencyMinutes) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "frequency_minutes is not an accepted value"}
	}
	if !model.ValidAudioMode(request.AudioMode) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "audio_mode is not an accepted value"}
	}
	if request.ValidUntil != nil && request.ValidUntil.Before(request.ValidFrom.Time) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "valid_until must not precede valid_from"}
	}

	rec, err := s.store.CreateSchedule(model.ScheduleRecord{
		Description:      request.Description,
		Recurrence:       request.Recurrence,
		State:            model.ScheduleActive,
		AudioMode:        request.AudioMode,
		WaitForTrackEnd:  request.WaitForTrackEnd,
		FrequencyMinutes: request.FrequencyMinutes,
		DailyWindowFrom:  request.DailyWindowFrom,
		DailyWindowTo:    request.DailyWindowTo,
		ValidFrom:        request.ValidFrom,
		ValidUntil:       request.ValidUntil,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create schedule"}
	}

	if len(request.ContentItems) > 0 {
		refs := contentRefs(rec.ID, request.ContentItems)
		if err := s.store.ReplaceScheduleContent(rec.ID, refs); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not attach content"}
		}
		rec.ContentItems = refs
	}

	middleware.NotifyScheduleChanged(rec.ID, "created")
	return packets.NewScheduleResponse(rec), nil
}

func (s *ScheduleController) getSchedule(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return packets.NewScheduleResponse(*rec), nil
}

func (s *ScheduleController) updateSchedule(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := schedule.EnsureEditable(rec); err != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	}

	var request packets.UpdateScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.Description != nil {
		rec.Description = *request.Description
	}
	if request.Recurrence != nil {
		rec.Recurrence = *request.Recurrence
	}
	if request.AudioMode != nil {
		rec.AudioMode = *request.AudioMode
	}
	if request.WaitForTrackEnd != nil {
		rec.WaitForTrackEnd = *request.WaitForTrackEnd
	}
	if request.FrequencyMinutes != nil {
		rec.FrequencyMinutes = *request.FrequencyMinutes
	}
	if request.DailyWindowFrom != nil {
		rec.DailyWindowFrom = *request.DailyWindowFrom
	}
	if request.DailyWindowTo != nil {
		rec.DailyWindowTo = *request.DailyWindowTo
	}
	if request.ValidFrom != nil {
		rec.ValidFrom = *request.ValidFrom
	}
	switch {
	case request.ClearValidUntil:
		rec.ValidUntil = nil
	case request.ValidUntil != nil:
		rec.ValidUntil = request.ValidUntil
	}

	if err := rec.Recurrence.Validate(); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if !model.ValidFrequency(rec.FrequencyMinutes) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "frequency_minutes is not an accepted value"}
	}
	if !model.ValidAudioMode(rec.AudioMode) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "audio_mode is not an accepted value"}
	}
	if rec.ValidUntil != nil && rec.ValidUntil.Before(rec.ValidFrom.Time) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "valid_until must not precede valid_from"}
	}

	if err := s.store.UpdateSchedule(*rec); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update schedule"}
	}

	middleware.NotifyScheduleChanged(rec.ID, "updated")
	return packets.NewScheduleResponse(*rec), nil
}

func (s *ScheduleController) deleteSchedule(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.DeleteSchedule(rec.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule"}
	}
	middleware.NotifyScheduleChanged(rec.ID, "deleted")
	return gin.H{"message": "deleted"}, nil
}

func (s *ScheduleController) pauseSchedule(ctx *gin.Context) (any, *api.APIError) {
	return s.transition(ctx, schedule.Pause)
}

func (s *ScheduleController) resumeSchedule(ctx *gin.Context) (any, *api.APIError) {
	return s.transition(ctx, schedule.Resume)
}

// transition applies a state-machine move and persists it only when the
// state actually changed; illegal moves are quiet no-ops per the state
// machine rules.
func (s *ScheduleController) transition(ctx *gin.Context, move func(*model.ScheduleRecord) bool) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if move(rec) {
		if err := s.store.UpdateScheduleState(rec.ID, rec.State); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not persist state"}
		}
		middleware.NotifyScheduleChanged(rec.ID, "state")
	}
	return gin.H{"id": rec.ID, "state": rec.State}, nil
}

func (s *ScheduleController) replaceContent(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := schedule.EnsureEditable(rec); err != nil {
		return nil, &api.APIError{Code: http.StatusConflict, Message: err.Error()}
	}

	var request packets.ReplaceContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	for _, item := range request.Items {
		if _, err := s.store.GetContentByID(item.ContentID); err != nil {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "content not found"}
		}
	}

	refs := contentRefs(rec.ID, request.Items)
	if err := s.store.ReplaceScheduleContent(rec.ID, refs); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not replace content"}
	}

	middleware.NotifyScheduleChanged(rec.ID, "updated")
	return refs, nil
}

func (s *ScheduleController) assignSession(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.AssignSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := s.store.GetSession(request.SessionID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "session not found"}
	}

	if err := s.store.AssignScheduleToSession(rec.ID, request.SessionID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not assign schedule to session"}
	}

	middleware.NotifyScheduleChanged(rec.ID, "updated")
	return gin.H{"message": "assigned"}, nil
}

func (s *ScheduleController) unassignSession(ctx *gin.Context) (any, *api.APIError) {
	rec, apiErr := s.load(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	sessionID, err := strconv.Atoi(ctx.Param("session_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid session id"}
	}

	if err := s.store.UnassignScheduleFromSession(rec.ID, sessionID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not unassign"}
	}

	middleware.NotifyScheduleChanged(rec.ID, "updated")
	return gin.H{"message": "unassigned"}, nil
}

func (s *ScheduleController) load(ctx *gin.Context) (*model.ScheduleRecord, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid schedule id"}
	}
	rec, err := s.store.GetSchedule(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "schedule not found"}
	}
	return &rec, nil
}

func contentRefs(scheduleID int, items []packets.ContentRefRequest) []model.ContentRef {
	refs := make([]model.ContentRef, 0, len(items))
	for i, item := range items {
		refs = append(refs, model.ContentRef{
			ScheduleID: scheduleID,
			ContentID:  item.ContentID,
			Position:   i,
			Active:     item.Active,
		})
	}
	return refs
}
