package assignment

import "sync"

// View is what a single participant sees of the current assignment: who they
// hunt and who hunts them. An absent target is a valid, displayable state
// (pre-game, or roster below minimum). Hunters is normally exactly one entry
// in a healthy cycle but may be empty during reassignment transients.
type View struct {
	Target  *ParticipantID
	Hunters []ParticipantID
}

func (view View) HasTarget() bool {
	return view.Target != nil
}

// Project derives a participant's view with a single scan of the edge set.
// Pure function: the view is rebuilt from scratch on every update rather
// than diffed, which trades a little CPU for a lot of simplicity at bounded
// roster sizes.
func Project(state State, self ParticipantID) View {
	var view View

	for _, edge := range state.Edges {
		if edge.Hunter == self {
			target := edge.Target
			view.Target = &target
		}

		if edge.Target == self {
			view.Hunters = append(view.Hunters, edge.Hunter)
		}
	}

	return view
}

// LocalView caches the latest projection for one participant and notifies
// HUD-side observers after each recomputation. Observers are handed the new
// view directly so they never need to reach back into shared state.
type LocalView struct {
	self ParticipantID

	mu        sync.Mutex
	view      View
	observers []func(View)
}

func NewLocalView(self ParticipantID) *LocalView {
	return &LocalView{self: self}
}

// OnAssignmentChanged registers an observer for recomputed views.
func (local *LocalView) OnAssignmentChanged(observer func(View)) {
	local.mu.Lock()
	defer local.mu.Unlock()

	local.observers = append(local.observers, observer)
}

// Apply recomputes the projection from an accepted snapshot and notifies
// observers. Called from inside the replication channel's state-received
// path.
func (local *LocalView) Apply(state State) View {
	view := Project(state, local.self)

	local.mu.Lock()
	local.view = view
	observers := append(([]func(View))(nil), local.observers...)
	local.mu.Unlock()

	for _, observer := range observers {
		observer(view)
	}

	return view
}

// CurrentTarget reports who this participant is hunting, if anyone.
func (local *LocalView) CurrentTarget() (ParticipantID, bool) {
	local.mu.Lock()
	defer local.mu.Unlock()

	if local.view.Target == nil {
		return 0, false
	}

	return *local.view.Target, true
}

// HunterCount reports how many participants are hunting this one.
func (local *LocalView) HunterCount() int {
	local.mu.Lock()
	defer local.mu.Unlock()

	return len(local.view.Hunters)
}

func (local *LocalView) Current() View {
	local.mu.Lock()
	defer local.mu.Unlock()

	return local.view
}
