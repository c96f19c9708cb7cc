package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/voxline-media/voxline/internal/model"
	"github.com/voxline-media/voxline/internal/redis"
	"github.com/voxline-media/voxline/internal/schedule"
)

var (
	// ErrBusy means another insertion is in flight. This is a normal
	// outcome, not a failure: the schedule stays due and is retried on a
	// later tick.
	ErrBusy = errors.New("another insertion is in flight")
	// ErrRateLimited rejects manual play-now requests arriving faster than
	// the configured burst.
	ErrRateLimited = errors.New("too many manual play requests")
	// ErrNoContent means a schedule has no active content items to play.
	ErrNoContent = errors.New("schedule has no active content")
)

// ScheduleStore is the slice of the persistence layer the orchestrator
// needs.
type ScheduleStore interface {
	ListActiveSchedulesForSession(sessionID int) ([]model.ScheduleRecord, error)
	UpdateScheduleState(scheduleID int, state model.ScheduleState) error
	UpdateLastPlayed(scheduleID int, playedAt time.Time) error
}

// Orchestrator owns the playback lock of one output and turns due schedules
// (and manual play-now requests) into insertions.
type Orchestrator struct {
	sessionID int
	store     ScheduleStore
	player    Player
	lock      *Lock
	manual    *rate.Limiter
	now       func() time.Time

	mu       sync.Mutex
	boundary chan struct{}
}

func NewOrchestrator(sessionID int, store ScheduleStore, player Player, lock *Lock) *Orchestrator {
	return &Orchestrator{
		sessionID: sessionID,
		store:     store,
		player:    player,
		lock:      lock,
		// Manual play is a human pressing a button; one per 2s with a
		// small burst is plenty.
		manual:   rate.NewLimiter(rate.Every(2*time.Second), 3),
		now:      time.Now,
		boundary: make(chan struct{}),
	}
}

// SessionID identifies the output this orchestrator arbitrates for.
func (o *Orchestrator) SessionID() int { return o.sessionID }

// ScheduleHolder is the lock-holder identity of a scheduled insertion.
func ScheduleHolder(scheduleID int) string {
	return fmt.Sprintf("schedule:%d", scheduleID)
}

// ListDue evaluates every schedule assigned to this session at now and
// returns the due set. Expired records are driven to completed as a side
// effect. Arbitration between simultaneously due schedules is the lock's
// job, not the evaluator's.
func (o *Orchestrator) ListDue(now time.Time) ([]model.ScheduleRecord, error) {
	records, err := o.store.ListActiveSchedulesForSession(o.sessionID)
	if err != nil {
		return nil, fmt.Errorf("list schedules for session %d: %w", o.sessionID, err)
	}
	due, expired := schedule.Partition(records, now)
	for i := range expired {
		o.complete(&expired[i])
	}
	return due, nil
}

// PlaySchedule runs one due schedule's content under the playback lock.
// Returns ErrBusy without blocking if another insertion is in flight.
func (o *Orchestrator) PlaySchedule(ctx context.Context, rec *model.ScheduleRecord) error {
	items := rec.ActiveContent()
	if len(items) == 0 {
		return ErrNoContent
	}

	if rec.WaitForTrackEnd {
		// Defers, but never cancels, the due signal.
		if err := o.waitTrackBoundary(ctx); err != nil {
			return err
		}
	}

	estimated := o.estimateTotal(ctx, items)
	holder := ScheduleHolder(rec.ID)
	if !o.lock.TryAcquire(holder, estimated) {
		return ErrBusy
	}
	defer o.lock.Release(holder)

	err := o.playItems(ctx, holder, items, rec.AudioMode, estimated)

	// The throttle clock starts at the attempt, not at due-detection, so a
	// schedule that lost the lock race is not penalized and one that
	// started then failed does not re-trigger immediately.
	playedAt := o.now()
	rec.LastPlayedAt = &playedAt
	if uerr := o.store.UpdateLastPlayed(rec.ID, playedAt); uerr != nil {
		log.Error().Err(uerr).Int("schedule_id", rec.ID).Msg("failed to record last_played_at")
	}

	if rec.Recurrence.Kind == model.RecurOnce {
		o.complete(rec)
	}
	return err
}

// PlayManual runs a single content item immediately, competing for the same
// lock as scheduled insertions. A held lock yields ErrBusy; manual requests
// never preempt an insertion already in flight.
func (o *Orchestrator) PlayManual(ctx context.Context, contentID int, mode model.AudioMode) (string, error) {
	if !o.manual.Allow() {
		return "", ErrRateLimited
	}

	estimated, err := o.player.EstimateDuration(ctx, contentID)
	if err != nil {
		log.Warn().Err(err).Int("content_id", contentID).Msg("duration estimate failed, using fallback")
		estimated = time.Minute
	}

	token := "manual:" + uuid.NewString()
	if !o.lock.TryAcquire(token, estimated) {
		return "", ErrBusy
	}
	defer o.lock.Release(token)

	redis.SetNowPlaying(ctx, o.sessionID, token, estimated)
	defer redis.ClearNowPlaying(ctx, o.sessionID)

	return token, o.player.Play(ctx, contentID, mode)
}

// Locked reports whether an insertion is in flight on this output.
func (o *Orchestrator) Locked() bool { return o.lock.Held() }

func (o *Orchestrator) LockStatus() LockStatus { return o.lock.Status() }

// NotifyTrackBoundary signals that the background stream reached the end of
// its current track, releasing any insertion deferred by wait_for_track_end.
func (o *Orchestrator) NotifyTrackBoundary() {
	o.mu.Lock()
	close(o.boundary)
	o.boundary = make(chan struct{})
	o.mu.Unlock()
}

func (o *Orchestrator) waitTrackBoundary(ctx context.Context) error {
	o.mu.Lock()
	ch := o.boundary
	o.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) playItems(ctx context.Context, holder string, items []model.ContentRef, mode model.AudioMode, estimated time.Duration) error {
	redis.SetNowPlaying(ctx, o.sessionID, holder, estimated)
	defer redis.ClearNowPlaying(ctx, o.sessionID)

	for _, ref := range items {
		if err := o.player.Play(ctx, ref.ContentID, mode); err != nil {
			return fmt.Errorf("play content %d: %w", ref.ContentID, err)
		}
	}
	return nil
}

func (o *Orchestrator) estimateTotal(ctx context.Context, items []model.ContentRef) time.Duration {
	var total time.Duration
	for _, ref := range items {
		d, err := o.player.EstimateDuration(ctx, ref.ContentID)
		if err != nil {
			log.Warn().Err(err).Int("content_id", ref.ContentID).Msg("duration estimate failed, using fallback")
			d = time.Minute
		}
		total += d
	}
	return total
}

func (o *Orchestrator) complete(rec *model.ScheduleRecord) {
	if !schedule.AutoComplete(rec) {
		return
	}
	if err := o.store.UpdateScheduleState(rec.ID, model.ScheduleCompleted); err != nil {
		log.Error().Err(err).Int("schedule_id", rec.ID).Msg("failed to persist completed state")
	}
}
