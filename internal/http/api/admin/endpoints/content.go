package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	"github.com/voxline-media/voxline/internal/http/api/admin/packets"
)

type ContentController struct {
	store db.Store
}

func NewContentController(store db.Store) *ContentController {
	return &ContentController{store: store}
}

func ContentModule(store db.Store) api.Module {
	ctl := NewContentController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/content", ctl.listContent)
		c.POST("/content", ctl.createContent)
		c.GET("/content/:id", ctl.getContent)
	})
}

func (cc *ContentController) listContent(ctx *gin.Context) (any, *api.APIError) {
	all, err := cc.store.ListContent()
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list content"}
	}
	return all, nil
}

func (cc *ContentController) createContent(ctx *gin.Context) (any, *api.APIError) {
	var request packets.CreateContentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	content, err := cc.store.CreateContent(request.Name, request.Type, request.URL, request.DurationSeconds, 0)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create content"}
	}
	return content, nil
}

func (cc *ContentController) getContent(ctx *gin.Context) (any, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid content id"}
	}
	content, err := cc.store.GetContentByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "content not found"}
	}
	return content, nil
}
