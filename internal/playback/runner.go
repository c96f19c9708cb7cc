package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Runner drives the evaluation loop on a fixed tick and sweeps expired
// schedules once a day.
type Runner struct {
	orch *Orchestrator
	cron *cron.Cron
	tick time.Duration
}

func NewRunner(orch *Orchestrator, tick time.Duration) *Runner {
	if tick <= 0 {
		tick = 20 * time.Second
	}
	return &Runner{orch: orch, cron: cron.New(), tick: tick}
}

func (r *Runner) Start() error {
	if _, err := r.cron.AddFunc(fmt.Sprintf("@every %s", r.tick), r.evaluate); err != nil {
		return fmt.Errorf("schedule evaluation tick: %w", err)
	}
	// Nightly sweep catches expirations on outputs that were offline at
	// their valid_until boundary.
	if _, err := r.cron.AddFunc("@midnight", r.evaluateOnce); err != nil {
		return fmt.Errorf("schedule expiry sweep: %w", err)
	}
	r.cron.Start()
	log.Info().Dur("tick", r.tick).Msg("playback runner started")
	return nil
}

// Stop halts the tick and waits for an in-flight pass to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Runner) evaluate() {
	r.evaluateOnce()
}

func (r *Runner) evaluateOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	due, err := r.orch.ListDue(now)
	if err != nil {
		log.Error().Err(err).Msg("evaluation pass failed")
		return
	}
	for i := range due {
		err := r.orch.PlaySchedule(ctx, &due[i])
		switch {
		case err == nil:
			log.Info().Int("schedule_id", due[i].ID).Msg("insertion played")
		case errors.Is(err, ErrBusy):
			// Losers of the lock race stay due and are retried on the
			// next tick; the output can only take one insertion anyway.
			return
		case errors.Is(err, ErrNoContent):
			log.Debug().Int("schedule_id", due[i].ID).Msg("due schedule has no active content")
		default:
			log.Error().Err(err).Int("schedule_id", due[i].ID).Msg("insertion failed")
		}
	}
}
