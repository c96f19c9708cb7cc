package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	"github.com/voxline-media/voxline/internal/http/api/admin/packets"
	"github.com/voxline-media/voxline/internal/redis"
)

type SessionController struct {
	store db.Store
}

func NewSessionController(store db.Store) *SessionController {
	return &SessionController{store: store}
}

func SessionModule(store db.Store) api.Module {
	ctl := NewSessionController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/sessions", ctl.listSessions)
		c.POST("/sessions", ctl.createSession)
		c.GET("/sessions/:id/now-playing", ctl.nowPlaying)
	})
}

func (sc *SessionController) listSessions(ctx *gin.Context) (any, *api.APIError) {
	sessions, err := sc.store.ListSessions()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list sessions"}
	}
	return sessions, nil
}

func (sc *SessionController) createSession(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	session, err := sc.store.CreateSession(request.Name, request.DeviceID, 0)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create session"}
	}
	return session, nil
}

// nowPlaying reads the redis mirror of a session's lock holder, for
// dashboards; the in-process lock on the player stays authoritative.
func (sc *SessionController) nowPlaying(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid session id"}
	}
	if _, err := sc.store.GetSession(id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "session not found"}
	}

	holder := redis.NowPlaying(ctx.Request.Context(), id)
	return gin.H{"session_id": id, "now_playing": holder, "idle": holder == ""}, nil
}
