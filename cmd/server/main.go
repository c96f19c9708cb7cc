package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voxline-media/voxline/internal/db"
	"github.com/voxline-media/voxline/internal/http/middleware"
	"github.com/voxline-media/voxline/internal/playback"
	"github.com/voxline-media/voxline/internal/redis"
)

func main() {
	env := LoadEnvironment()

	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init failed")
	}
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	store := db.NewStore(db.DB)

	if env.RedisAddress != "" {
		redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)
	}

	if env.MQTTBrokerURL != "" {
		middleware.SetBrokerURL(env.MQTTBrokerURL)
	}
	if _, err := middleware.CreateMQTTClient("voxline-server"); err != nil {
		log.Warn().Err(err).Msg("MQTT unavailable, schedule change push disabled")
	}
	defer middleware.CleanupMQTT()

	// One orchestrator per output; this server hosts a single session.
	player := playback.NewRemotePlayer(env.SessionID, store, middleware.SendInsertCommand)
	lock := playback.NewLock(playback.DefaultLockGrace)
	orch := playback.NewOrchestrator(env.SessionID, store, player, lock)

	runner := playback.NewRunner(orch, env.EvaluationTick)
	if err := runner.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start playback runner")
	}
	defer runner.Stop()

	if env.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	RegisterRoutes(r, store, orch)

	go func() {
		log.Info().Str("address", env.ServerAddress).Msg("listening")
		if err := r.Run(env.ServerAddress); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
}
