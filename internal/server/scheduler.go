package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"liar-server/internal/store"
)

// PhaseScheduler arms one-shot wall-clock timers that force phase
// transitions (playing -> voting, voting -> finished) independent of
// client messages. At most one timer is pending per room: arming again
// supersedes the previous timer, so a fire for a superseded arm never
// reaches the engine. The engine's own status guards make even a
// slipped-through fire harmless.
type PhaseScheduler struct {
	mu     sync.Mutex
	armed  map[string]*armedTimer // room code -> pending timer
	fire   func(code string, phase store.RoomStatus)
	closed bool
}

type armedTimer struct {
	timer *time.Timer
	phase store.RoomStatus
}

// NewPhaseScheduler creates a scheduler. fire is invoked on its own
// goroutine when a timer expires and is expected to take the room lock.
func NewPhaseScheduler(fire func(code string, phase store.RoomStatus)) *PhaseScheduler {
	return &PhaseScheduler{
		armed: make(map[string]*armedTimer),
		fire:  fire,
	}
}

// Arm schedules a phase expiry for a room, cancelling any timer already
// pending for it.
func (ps *PhaseScheduler) Arm(code string, phase store.RoomStatus, d time.Duration) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return
	}

	if prev, exists := ps.armed[code]; exists {
		prev.timer.Stop()
	}

	a := &armedTimer{phase: phase}
	a.timer = time.AfterFunc(d, func() {
		ps.expire(code, a)
	})
	ps.armed[code] = a

	log.Debug().Str("room", code).Str("phase", string(phase)).Dur("in", d).Msg("phase timer armed")
}

// Cancel drops any pending timer for a room. Safe to call when none is
// pending.
func (ps *PhaseScheduler) Cancel(code string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if pending, exists := ps.armed[code]; exists {
		pending.timer.Stop()
		delete(ps.armed, code)
	}
}

// Stop cancels every pending timer. Used at shutdown.
func (ps *PhaseScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for code, pending := range ps.armed {
		pending.timer.Stop()
		delete(ps.armed, code)
	}
	ps.closed = true
}

func (ps *PhaseScheduler) expire(code string, a *armedTimer) {
	ps.mu.Lock()
	current, exists := ps.armed[code]
	if !exists || current != a {
		// Superseded or cancelled between firing and locking.
		ps.mu.Unlock()
		return
	}
	delete(ps.armed, code)
	ps.mu.Unlock()

	ps.fire(code, a.phase)
}
