package assignment

import "go.uber.org/zap"

// Roster is the authoritative set of participants eligible for assignment.
// It preserves join order, which gives graph construction a deterministic
// input sequence. Eliminated participants are removed here but may stay
// connected as spectators; that bookkeeping belongs to the session layer.
//
// Roster is not safe for concurrent use on its own. The authority serializes
// every mutation, so callers hold the scheduler's lock.
type Roster struct {
	order   []ParticipantID
	present map[ParticipantID]struct{}
	logger  *zap.SugaredLogger
}

func NewRoster(logger *zap.SugaredLogger) *Roster {
	return &Roster{
		present: make(map[ParticipantID]struct{}),
		logger:  logger,
	}
}

// Add admits a participant. A duplicate join is ignored and reported false;
// the transport occasionally replays connect notifications and that must not
// corrupt the roster.
func (roster *Roster) Add(id ParticipantID) bool {
	if _, exists := roster.present[id]; exists {
		roster.logger.Warnw("duplicate join ignored", "participantId", id)
		return false
	}

	roster.present[id] = struct{}{}
	roster.order = append(roster.order, id)

	return true
}

// Remove drops a participant. Removing an unknown id is ignored and reported
// false. Eliminated spectators and replayed disconnects both land here.
func (roster *Roster) Remove(id ParticipantID) bool {
	if _, exists := roster.present[id]; !exists {
		roster.logger.Debugw("leave for unknown participant ignored", "participantId", id)
		return false
	}

	delete(roster.present, id)

	for i, present := range roster.order {
		if present == id {
			roster.order = append(roster.order[:i], roster.order[i+1:]...)
			break
		}
	}

	return true
}

func (roster *Roster) Contains(id ParticipantID) bool {
	_, exists := roster.present[id]
	return exists
}

func (roster *Roster) Size() int {
	return len(roster.order)
}

// Snapshot returns the roster in join order. The slice is a copy; callers
// may shuffle it freely.
func (roster *Roster) Snapshot() []ParticipantID {
	snapshot := make([]ParticipantID, len(roster.order))
	copy(snapshot, roster.order)
	return snapshot
}
