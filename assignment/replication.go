package assignment

import (
	"sync"

	"go.uber.org/zap"
)

// Transport is the reliable ordered delivery layer the channel rides on.
// The session hub implements it over websocket connections; tests use an
// in-memory fake.
type Transport interface {
	Send(id ParticipantID, payload []byte)
	Broadcast(payload []byte)
}

// Channel replicates assignment snapshots to every participant and feeds
// accepted updates to local observers. It is deliberately thin: encoding is
// injected so the wire schema stays out of the core, and all robustness
// against duplicated or reordered delivery lives in the version check of
// Receive.
type Channel struct {
	transport Transport
	encode    func(State) ([]byte, error)
	logger    *zap.SugaredLogger

	mu        sync.Mutex
	version   uint64
	observers []func(State)
}

func NewChannel(transport Transport, encode func(State) ([]byte, error), logger *zap.SugaredLogger) *Channel {
	return &Channel{
		transport: transport,
		encode:    encode,
		logger:    logger,
	}
}

// Subscribe registers an observer invoked once per accepted update.
func (channel *Channel) Subscribe(observer func(State)) {
	channel.mu.Lock()
	defer channel.mu.Unlock()

	channel.observers = append(channel.observers, observer)
}

// Broadcast ships the snapshot to every participant and applies it to the
// authority's own local loop, which keeps the authority's projections on the
// same code path as everyone else's.
func (channel *Channel) Broadcast(state State) {
	payload, err := channel.encode(state)

	if err != nil {
		channel.logger.Errorw("could not encode assignment state",
			"version", state.Version,
			"error", err,
		)
		return
	}

	channel.transport.Broadcast(payload)
	channel.Receive(state)
}

// Receive applies a snapshot if its version is strictly greater than the
// last applied one. Stale and duplicate snapshots are silently dropped; late
// joiners replaying old messages make those an expected occurrence, not an
// error.
func (channel *Channel) Receive(state State) bool {
	channel.mu.Lock()

	if state.Version <= channel.version {
		channel.mu.Unlock()
		return false
	}

	channel.version = state.Version
	observers := append(([]func(State))(nil), channel.observers...)

	channel.mu.Unlock()

	for _, observer := range observers {
		observer(state)
	}

	return true
}

// CatchUp sends a snapshot to a single participant. Called right after
// admission so a late joiner sees the latest known state immediately instead
// of waiting for the next mutation.
func (channel *Channel) CatchUp(id ParticipantID, state State) {
	if state.Version == 0 {
		// Nothing published yet; the joiner starts from the zero state.
		return
	}

	payload, err := channel.encode(state)

	if err != nil {
		channel.logger.Errorw("could not encode catch-up state",
			"participantId", id,
			"version", state.Version,
			"error", err,
		)
		return
	}

	channel.transport.Send(id, payload)
}

// Version returns the last applied version.
func (channel *Channel) Version() uint64 {
	channel.mu.Lock()
	defer channel.mu.Unlock()

	return channel.version
}
