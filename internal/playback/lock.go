// Package playback arbitrates which insertion, if any, is allowed to play
// over the background music stream of one output, and drives granted
// insertions through the audio subsystem.
package playback

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultLockGrace is how long past the expected release an insertion may
// run before the lock is reclaimed as stuck.
const DefaultLockGrace = 30 * time.Second

// Lock is the per-output exclusivity gate: at most one insertion is in
// flight at any instant, whether scheduler-triggered or manual. It lives for
// the session and is never persisted or shared across outputs.
type Lock struct {
	mu              sync.Mutex
	holder          string
	acquiredAt      time.Time
	expectedRelease time.Time
	grace           time.Duration
	now             func() time.Time
}

// LockStatus is a point-in-time snapshot for status endpoints.
type LockStatus struct {
	Held            bool      `json:"held"`
	Holder          string    `json:"holder,omitempty"`
	AcquiredAt      time.Time `json:"acquired_at,omitempty"`
	ExpectedRelease time.Time `json:"expected_release,omitempty"`
}

func NewLock(grace time.Duration) *Lock {
	if grace <= 0 {
		grace = DefaultLockGrace
	}
	return &Lock{grace: grace, now: time.Now}
}

// TryAcquire atomically takes the lock for holder if it is free, recording
// when the insertion is expected to finish. It never blocks: a held lock
// means false, and the caller simply stays due and retries on a later tick.
func (l *Lock) TryAcquire(holder string, estimated time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.reclaimStuckLocked()
	if l.holder != "" {
		return false
	}
	now := l.now()
	l.holder = holder
	l.acquiredAt = now
	l.expectedRelease = now.Add(estimated)
	return true
}

// Release clears the lock if holder still owns it. A stale release (holder
// mismatch) is logged and ignored so a late cleanup cannot evict a newer
// legitimate holder.
func (l *Lock) Release(holder string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.holder == "" {
		return
	}
	if l.holder != holder {
		log.Warn().
			Str("holder", l.holder).
			Str("releaser", holder).
			Msg("ignoring stale playback lock release")
		return
	}
	l.clearLocked()
}

// Held reports whether an insertion is currently in flight.
func (l *Lock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reclaimStuckLocked()
	return l.holder != ""
}

func (l *Lock) Status() LockStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reclaimStuckLocked()
	if l.holder == "" {
		return LockStatus{}
	}
	return LockStatus{
		Held:            true,
		Holder:          l.holder,
		AcquiredAt:      l.acquiredAt,
		ExpectedRelease: l.expectedRelease,
	}
}

// reclaimStuckLocked force-releases a lock whose holder overran its expected
// duration plus grace. The insertion is assumed failed; this is surfaced as
// a warning, not a fatal error. Caller must hold l.mu.
func (l *Lock) reclaimStuckLocked() {
	if l.holder == "" {
		return
	}
	if l.now().After(l.expectedRelease.Add(l.grace)) {
		log.Warn().
			Str("holder", l.holder).
			Time("expected_release", l.expectedRelease).
			Msg("reclaiming stuck playback lock")
		l.clearLocked()
	}
}

func (l *Lock) clearLocked() {
	l.holder = ""
	l.acquiredAt = time.Time{}
	l.expectedRelease = time.Time{}
}
