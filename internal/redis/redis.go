package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

// PresenceTTL is how long a session counts as online after its last
// heartbeat.
const PresenceTTL = 90 * time.Second

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

// TouchSessionPresence marks a player session as online.
func TouchSessionPresence(ctx context.Context, sessionID int) {
	if Rdb == nil {
		return
	}
	key := fmt.Sprintf("session:%d:online", sessionID)
	if err := Rdb.Set(ctx, key, 1, PresenceTTL).Err(); err != nil {
		log.Warn().Err(err).Int("session_id", sessionID).Msg("failed to refresh session presence")
	}
}

// SetNowPlaying mirrors the current lock holder of a session for dashboard
// reads. The in-process lock stays authoritative; this is a read-side cache
// only.
func SetNowPlaying(ctx context.Context, sessionID int, holder string, duration time.Duration) {
	if Rdb == nil {
		return
	}
	key := fmt.Sprintf("session:%d:now_playing", sessionID)
	if err := Rdb.Set(ctx, key, holder, duration+time.Minute).Err(); err != nil {
		log.Warn().Err(err).Int("session_id", sessionID).Msg("failed to mirror now-playing state")
	}
}

func ClearNowPlaying(ctx context.Context, sessionID int) {
	if Rdb == nil {
		return
	}
	key := fmt.Sprintf("session:%d:now_playing", sessionID)
	if err := Rdb.Del(ctx, key).Err(); err != nil {
		log.Warn().Err(err).Int("session_id", sessionID).Msg("failed to clear now-playing state")
	}
}

// NowPlaying returns the mirrored lock holder for a session, or "" when the
// output is idle (or redis is unavailable).
func NowPlaying(ctx context.Context, sessionID int) string {
	if Rdb == nil {
		return ""
	}
	key := fmt.Sprintf("session:%d:now_playing", sessionID)
	holder, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		return ""
	}
	return holder
}
