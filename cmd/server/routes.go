package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/api"
	adminapi "github.com/voxline-media/voxline/internal/http/api/admin/endpoints"
	playerapi "github.com/voxline-media/voxline/internal/http/api/player/endpoints"
	"github.com/voxline-media/voxline/internal/playback"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, store db.Store, orch *playback.Orchestrator) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		adminapi.ScheduleModule(store),
		adminapi.ContentModule(store),
		adminapi.SessionModule(store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/player",
	},
		playerapi.PlayerModule(store, orch),
	)
}
