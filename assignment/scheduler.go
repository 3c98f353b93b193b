package assignment

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// MinParticipants is the smallest roster a cycle can be built over.
const MinParticipants = 2

// Phase is the lifecycle of one session's assignment.
type Phase int

const (
	// PhaseIdle: no assignment, roster still building.
	PhaseIdle Phase = iota
	// PhaseAssigning: countdown running, assignment not yet published.
	PhaseAssigning
	// PhaseActive: assignment published, eliminations accepted.
	PhaseActive
)

func (phase Phase) String() string {
	switch phase {
	case PhaseIdle:
		return "idle"
	case PhaseAssigning:
		return "assigning"
	case PhaseActive:
		return "active"
	default:
		return "unknown"
	}
}

// Delays configures the two one-shot countdowns between a viable roster and
// the first published assignment.
type Delays struct {
	// Start is the countdown to game start once the roster reaches minimum
	// viable size.
	Start time.Duration
	// Assignment is the additional delay between game start and the first
	// assignment landing.
	Assignment time.Duration
}

// Scheduler owns every authority-side mutation: admissions, departures,
// elimination claims and the timer-driven transition into an active
// assignment. A single mutex serializes all of it, so one roster or
// elimination event is processed to completion before the next; there is no
// multi-writer contention anywhere in the core by construction.
type Scheduler struct {
	mu     sync.Mutex
	phase  Phase
	roster *Roster
	store  *Store
	delays Delays
	seed   func() int64
	logger *zap.SugaredLogger

	// epoch increments on every phase change so a countdown that slipped
	// past cancellation can never apply a transition from a previous
	// arming.
	epoch uint64

	startCountdown  Countdown
	assignCountdown Countdown
}

// NewScheduler wires the scheduler to its collaborators. The seed source is
// injected so tests can pin cycle construction; nil falls back to wall-clock
// nanoseconds.
func NewScheduler(roster *Roster, store *Store, delays Delays, seed func() int64, logger *zap.SugaredLogger) *Scheduler {
	if seed == nil {
		seed = func() int64 {
			return time.Now().UnixNano()
		}
	}

	return &Scheduler{
		phase:  PhaseIdle,
		roster: roster,
		store:  store,
		delays: delays,
		seed:   seed,
		logger: logger,
	}
}

func (scheduler *Scheduler) Phase() Phase {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	return scheduler.phase
}

// HandleJoin admits a participant into the active roster. Reaching minimum
// viable size while idle arms the start countdown. A join during an active
// assignment does not disturb the running cycle; the joiner spectates until
// the next one.
func (scheduler *Scheduler) HandleJoin(id ParticipantID) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if !scheduler.roster.Add(id) {
		return
	}

	scheduler.logger.Infow("participant joined roster",
		"participantId", id,
		"rosterSize", scheduler.roster.Size(),
		"phase", scheduler.phase.String(),
	)

	if scheduler.phase == PhaseIdle && scheduler.roster.Size() >= MinParticipants {
		scheduler.enterAssigningLocked()
	}
}

// HandleLeave removes a participant from the active roster. Leaves from
// unknown ids (including eliminated spectators disconnecting) are ignored.
// During an active assignment the departed participant's hunter inherits
// their target, exactly as if they had been eliminated; a roster dropping
// below minimum clears the assignment entirely.
func (scheduler *Scheduler) HandleLeave(id ParticipantID) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if !scheduler.roster.Remove(id) {
		return
	}

	scheduler.logger.Infow("participant left roster",
		"participantId", id,
		"rosterSize", scheduler.roster.Size(),
		"phase", scheduler.phase.String(),
	)

	switch scheduler.phase {
	case PhaseAssigning:
		if scheduler.roster.Size() < MinParticipants {
			scheduler.enterIdleLocked(false)
		}
	case PhaseActive:
		current := scheduler.store.Current()

		if !inCycle(current.Edges, id) {
			// A mid-game joiner waiting for the next round; the running
			// cycle is untouched.
			return
		}

		if len(current.Edges)-1 < MinParticipants {
			scheduler.enterIdleLocked(true)
			scheduler.rearmIfViableLocked()
			return
		}

		scheduler.store.Publish(splice(current.Edges, id))
	}
}

// ClaimElimination validates an elimination claim against the current
// state. Accepted iff the exact edge (hunter, target) exists right now;
// anything else is stale or fabricated and is rejected with no state change.
// On acceptance the target leaves the active roster and the hunter inherits
// the target's former target, producing exactly one new version.
func (scheduler *Scheduler) ClaimElimination(hunter, target ParticipantID) (Elimination, bool) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.phase != PhaseActive {
		scheduler.logger.Infow("elimination claim outside active phase rejected",
			"hunter", hunter,
			"target", target,
			"phase", scheduler.phase.String(),
		)
		return Elimination{}, false
	}

	current := scheduler.store.Current()

	if !hasEdge(current.Edges, hunter, target) {
		scheduler.logger.Infow("stale elimination claim rejected",
			"hunter", hunter,
			"target", target,
			"version", current.Version,
		)
		return Elimination{}, false
	}

	scheduler.roster.Remove(target)

	elimination := Elimination{
		Hunter: hunter,
		Target: target,
		At:     time.Now(),
	}

	scheduler.logger.Infow("elimination accepted",
		"hunter", hunter,
		"target", target,
		"rosterSize", scheduler.roster.Size(),
	)

	if len(current.Edges)-1 < MinParticipants {
		scheduler.enterIdleLocked(true)
		scheduler.rearmIfViableLocked()
		return elimination, true
	}

	scheduler.store.Publish(splice(current.Edges, target))

	return elimination, true
}

// Shutdown cancels any pending countdowns. Terminal; used on session
// teardown only.
func (scheduler *Scheduler) Shutdown() {
	scheduler.startCountdown.Cancel()
	scheduler.assignCountdown.Cancel()
}

func (scheduler *Scheduler) enterAssigningLocked() {
	scheduler.phase = PhaseAssigning
	scheduler.epoch++
	epoch := scheduler.epoch

	scheduler.logger.Infow("start countdown armed",
		"delay", scheduler.delays.Start,
		"rosterSize", scheduler.roster.Size(),
	)

	scheduler.startCountdown.Arm(scheduler.delays.Start, func() {
		scheduler.onStartCountdownFired(epoch)
	})
}

// enterIdleLocked downgrades to idle. Not an error path: the roster falling
// below minimum is a designed transition. clear republishes an empty edge
// set so every participant observes the assignment going away.
func (scheduler *Scheduler) enterIdleLocked(clear bool) {
	scheduler.phase = PhaseIdle
	scheduler.epoch++
	scheduler.startCountdown.Cancel()
	scheduler.assignCountdown.Cancel()

	scheduler.logger.Infow("assignment lifecycle downgraded to idle",
		"rosterSize", scheduler.roster.Size(),
		"cleared", clear,
	)

	if clear {
		scheduler.store.Publish(nil)
	}
}

// rearmIfViableLocked restarts the countdown after a downgrade when enough
// participants (survivors plus mid-game joiners) are still around for a
// fresh cycle.
func (scheduler *Scheduler) rearmIfViableLocked() {
	if scheduler.roster.Size() >= MinParticipants {
		scheduler.enterAssigningLocked()
	}
}

func (scheduler *Scheduler) onStartCountdownFired(epoch uint64) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	// Re-check under the lock: the roster may have dropped and re-armed a
	// fresh countdown between the fire and this point.
	if scheduler.phase != PhaseAssigning || scheduler.epoch != epoch {
		return
	}

	scheduler.logger.Infow("game start countdown fired",
		"assignmentDelay", scheduler.delays.Assignment,
	)

	scheduler.assignCountdown.Arm(scheduler.delays.Assignment, func() {
		scheduler.onAssignCountdownFired(epoch)
	})
}

func (scheduler *Scheduler) onAssignCountdownFired(epoch uint64) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	if scheduler.phase != PhaseAssigning || scheduler.epoch != epoch {
		return
	}

	roster := scheduler.roster.Snapshot()

	if len(roster) < MinParticipants {
		scheduler.enterIdleLocked(false)
		return
	}

	scheduler.store.Publish(BuildCycle(roster, scheduler.seed()))
	scheduler.phase = PhaseActive
}

// splice removes one participant from the cycle, redirecting their hunter to
// their former target. Works for eliminations and mid-game departures alike.
func splice(edges []Edge, removed ParticipantID) []Edge {
	var inherited ParticipantID

	for _, edge := range edges {
		if edge.Hunter == removed {
			inherited = edge.Target
		}
	}

	spliced := make([]Edge, 0, len(edges))

	for _, edge := range edges {
		switch {
		case edge.Hunter == removed:
		case edge.Target == removed:
			spliced = append(spliced, Edge{Hunter: edge.Hunter, Target: inherited})
		default:
			spliced = append(spliced, edge)
		}
	}

	return spliced
}

func inCycle(edges []Edge, id ParticipantID) bool {
	for _, edge := range edges {
		if edge.Hunter == id {
			return true
		}
	}

	return false
}

func hasEdge(edges []Edge, hunter, target ParticipantID) bool {
	for _, edge := range edges {
		if edge.Hunter == hunter && edge.Target == target {
			return true
		}
	}

	return false
}
