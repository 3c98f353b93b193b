package assignment

import (
	"sync"

	"go.uber.org/zap"
)

// Sink receives every snapshot the store publishes. In production this is
// the replication channel; tests plug in a recorder.
type Sink interface {
	Broadcast(state State)
}

// Store is the authority's source of truth for the current assignment.
// Snapshots are immutable; Publish replaces the current one under a strictly
// increasing version. Only the authority writes, everyone else reads
// replicated copies, so a single RWMutex covers the non-blocking Current.
type Store struct {
	mu      sync.RWMutex
	current State
	sink    Sink
	logger  *zap.SugaredLogger
}

func NewStore(sink Sink, logger *zap.SugaredLogger) *Store {
	return &Store{
		sink:   sink,
		logger: logger,
	}
}

// Publish stores a new snapshot and hands it to the sink for replication.
// The edge slice is copied so later mutation by the caller cannot reach a
// published snapshot.
func (store *Store) Publish(edges []Edge) State {
	copied := make([]Edge, len(edges))
	copy(copied, edges)

	store.mu.Lock()
	store.current = State{
		Version: store.current.Version + 1,
		Edges:   copied,
	}
	state := store.current
	store.mu.Unlock()

	store.logger.Infow("assignment state published",
		"version", state.Version,
		"edges", len(state.Edges),
	)

	if store.sink != nil {
		store.sink.Broadcast(state)
	}

	return state
}

// Current returns the latest published snapshot. Version 0 with no edges
// means nothing has been published yet.
func (store *Store) Current() State {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return store.current
}
