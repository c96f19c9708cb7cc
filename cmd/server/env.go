package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Environment struct {
	Environment    string
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	MQTTBrokerURL string

	SessionID      int
	EvaluationTick time.Duration
}

// LoadEnvironment reads and validates env vars.
func LoadEnvironment() Environment {
	// Missing .env is fine in production; variables come from the host.
	_ = godotenv.Load()

	env := Environment{
		Environment:    os.Getenv("APP_ENV"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ServerAddress:  os.Getenv("SERVER_ADDRESS"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
	}

	if env.DatabaseURL == "" || env.ServerAddress == "" {
		log.Fatal().Msg("missing required environment variables")
	}
	if env.MigrationsPath == "" {
		env.MigrationsPath = "./migrations"
	}

	env.SessionID = 1
	if raw := os.Getenv("PLAYER_SESSION_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			log.Fatal().Str("value", raw).Msg("PLAYER_SESSION_ID must be an integer")
		}
		env.SessionID = id
	}

	env.EvaluationTick = 20 * time.Second
	if raw := os.Getenv("EVALUATION_TICK"); raw != "" {
		tick, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal().Str("value", raw).Msg("EVALUATION_TICK must be a duration like 20s")
		}
		env.EvaluationTick = tick
	}

	return env
}
