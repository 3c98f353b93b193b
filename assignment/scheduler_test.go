package assignment

import (
	"testing"
	"time"
)

func newTestScheduler(delays Delays, seed int64) (*Scheduler, *Store) {
	logger := testLogger()
	store := NewStore(nil, logger)
	roster := NewRoster(logger)
	scheduler := NewScheduler(roster, store, delays, func() int64 { return seed }, logger)
	return scheduler, store
}

// shortDelays keeps countdowns quick but leaves the start delay wide enough
// that back-to-back joins always land before the timer fires.
func shortDelays() Delays {
	return Delays{Start: 20 * time.Millisecond, Assignment: time.Millisecond}
}

func waitFor(t *testing.T, timeout time.Duration, what string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(time.Millisecond)
	}

	t.Fatalf("timed out waiting for %s", what)
}

func activateScheduler(t *testing.T, scheduler *Scheduler, store *Store, ids ...ParticipantID) {
	t.Helper()

	for _, id := range ids {
		scheduler.HandleJoin(id)
	}

	waitFor(t, time.Second, "assignment to activate", func() bool {
		return scheduler.Phase() == PhaseActive
	})

	if got := len(store.Current().Edges); got != len(ids) {
		t.Fatalf("active state has %d edges, expected %d", got, len(ids))
	}
}

func TestSchedulerReachesActive(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2, 3)

	if store.Current().Version != 1 {
		t.Fatalf("first assignment at version %d, expected 1", store.Current().Version)
	}
}

func TestSchedulerStaysIdleBelowMinimum(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	scheduler.HandleJoin(1)

	time.Sleep(20 * time.Millisecond)

	if scheduler.Phase() != PhaseIdle {
		t.Fatalf("phase %s with one participant, expected idle", scheduler.Phase())
	}

	if store.Current().Version != 0 {
		t.Fatal("assignment published below minimum roster size")
	}
}

func TestSchedulerCancelsCountdownOnDrop(t *testing.T) {
	scheduler, store := newTestScheduler(Delays{Start: 30 * time.Millisecond, Assignment: time.Millisecond}, 42)
	defer scheduler.Shutdown()

	scheduler.HandleJoin(1)
	scheduler.HandleJoin(2)

	if scheduler.Phase() != PhaseAssigning {
		t.Fatalf("phase %s after reaching minimum, expected assigning", scheduler.Phase())
	}

	scheduler.HandleLeave(2)

	if scheduler.Phase() != PhaseIdle {
		t.Fatalf("phase %s after dropping below minimum, expected idle", scheduler.Phase())
	}

	// The cancelled countdown must not fire a stale assignment.
	time.Sleep(60 * time.Millisecond)

	if store.Current().Version != 0 {
		t.Fatalf("stale countdown published version %d", store.Current().Version)
	}

	// Re-arm on the roster becoming viable again.
	scheduler.HandleJoin(3)

	waitFor(t, time.Second, "re-armed assignment", func() bool {
		return scheduler.Phase() == PhaseActive
	})

	if got := len(store.Current().Edges); got != 2 {
		t.Fatalf("re-armed assignment has %d edges, expected 2", got)
	}
}

func TestSchedulerEliminationSplicesCycle(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 7)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2, 3)

	before := store.Current()

	// Pick a real edge and eliminate along it.
	claimed := before.Edges[0]

	var inherited ParticipantID
	for _, edge := range before.Edges {
		if edge.Hunter == claimed.Target {
			inherited = edge.Target
		}
	}

	elimination, accepted := scheduler.ClaimElimination(claimed.Hunter, claimed.Target)

	if !accepted {
		t.Fatalf("claim along edge %+v rejected", claimed)
	}

	if elimination.Hunter != claimed.Hunter || elimination.Target != claimed.Target {
		t.Fatalf("elimination record %+v does not match claim %+v", elimination, claimed)
	}

	after := store.Current()

	if after.Version != before.Version+1 {
		t.Fatalf("version went %d -> %d, expected exactly one increment", before.Version, after.Version)
	}

	if len(after.Edges) != 2 {
		t.Fatalf("spliced cycle has %d edges, expected 2", len(after.Edges))
	}

	if !hasEdge(after.Edges, claimed.Hunter, inherited) {
		t.Fatalf("hunter %d did not inherit target %d: %v", claimed.Hunter, inherited, after.Edges)
	}

	for _, edge := range after.Edges {
		if edge.Hunter == claimed.Target || edge.Target == claimed.Target {
			t.Fatalf("eliminated participant %d still in cycle: %v", claimed.Target, after.Edges)
		}
	}
}

func TestSchedulerRejectsStaleClaim(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 7)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2, 3)

	before := store.Current()

	// Claim a pair that is not an edge: the hunter of the first edge against
	// the one participant that is not their target.
	hunter := before.Edges[0].Hunter
	actual := before.Edges[0].Target

	var wrong ParticipantID
	for _, id := range []ParticipantID{1, 2, 3} {
		if id != hunter && id != actual {
			wrong = id
		}
	}

	if _, accepted := scheduler.ClaimElimination(hunter, wrong); accepted {
		t.Fatalf("claim (%d, %d) accepted without a matching edge", hunter, wrong)
	}

	after := store.Current()

	if after.Version != before.Version {
		t.Fatalf("rejected claim changed version %d -> %d", before.Version, after.Version)
	}
}

func TestSchedulerDropBelowMinimumClearsAssignment(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2)

	versionBefore := store.Current().Version

	scheduler.HandleLeave(2)

	if scheduler.Phase() != PhaseIdle {
		t.Fatalf("phase %s after dropping below minimum, expected idle", scheduler.Phase())
	}

	after := store.Current()

	if after.Version != versionBefore+1 {
		t.Fatalf("clearing publish went %d -> %d, expected one increment", versionBefore, after.Version)
	}

	if len(after.Edges) != 0 {
		t.Fatalf("cleared state still has %d edges", len(after.Edges))
	}
}

func TestSchedulerEliminationDownToOneEndsRound(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2)

	claimed := store.Current().Edges[0]

	if _, accepted := scheduler.ClaimElimination(claimed.Hunter, claimed.Target); !accepted {
		t.Fatalf("claim along edge %+v rejected", claimed)
	}

	if scheduler.Phase() != PhaseIdle {
		t.Fatalf("phase %s after final elimination, expected idle", scheduler.Phase())
	}

	if len(store.Current().Edges) != 0 {
		t.Fatal("edges survived the final elimination")
	}
}

func TestSchedulerMidGameJoinSpectates(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2)

	versionBefore := store.Current().Version

	scheduler.HandleJoin(3)

	if store.Current().Version != versionBefore {
		t.Fatal("mid-game join disturbed the running cycle")
	}

	// The spectator leaving is equally invisible to the cycle.
	scheduler.HandleLeave(3)

	if store.Current().Version != versionBefore {
		t.Fatal("spectator leave disturbed the running cycle")
	}

	if scheduler.Phase() != PhaseActive {
		t.Fatalf("phase %s, expected active", scheduler.Phase())
	}
}

func TestSchedulerRearmsForSpectatorsAfterRoundEnds(t *testing.T) {
	scheduler, store := newTestScheduler(shortDelays(), 42)
	defer scheduler.Shutdown()

	activateScheduler(t, scheduler, store, 1, 2)

	// A third participant joins mid-round and waits.
	scheduler.HandleJoin(3)

	claimed := store.Current().Edges[0]
	if _, accepted := scheduler.ClaimElimination(claimed.Hunter, claimed.Target); !accepted {
		t.Fatalf("claim along edge %+v rejected", claimed)
	}

	// Survivor plus spectator are a viable roster; a fresh round starts.
	waitFor(t, time.Second, "fresh round after elimination", func() bool {
		current := store.Current()
		return scheduler.Phase() == PhaseActive && len(current.Edges) == 2
	})
}

func TestSchedulerDuplicateJoinKeepsPhase(t *testing.T) {
	scheduler, store := newTestScheduler(Delays{Start: 30 * time.Millisecond, Assignment: time.Millisecond}, 42)
	defer scheduler.Shutdown()

	scheduler.HandleJoin(1)
	scheduler.HandleJoin(1)

	if scheduler.Phase() != PhaseIdle {
		t.Fatalf("duplicate join moved phase to %s", scheduler.Phase())
	}

	if store.Current().Version != 0 {
		t.Fatal("duplicate join triggered a publish")
	}
}
