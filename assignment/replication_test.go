package assignment

import (
	"encoding/json"
	"testing"
)

type fakeTransport struct {
	sent      map[ParticipantID][][]byte
	broadcast [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: make(map[ParticipantID][][]byte)}
}

func (transport *fakeTransport) Send(id ParticipantID, payload []byte) {
	transport.sent[id] = append(transport.sent[id], payload)
}

func (transport *fakeTransport) Broadcast(payload []byte) {
	transport.broadcast = append(transport.broadcast, payload)
}

func jsonEncode(state State) ([]byte, error) {
	return json.Marshal(state)
}

func TestChannelBroadcastDeliversAndAppliesLocally(t *testing.T) {
	transport := newFakeTransport()
	channel := NewChannel(transport, jsonEncode, testLogger())

	var observed []State
	channel.Subscribe(func(state State) {
		observed = append(observed, state)
	})

	state := State{Version: 1, Edges: []Edge{{Hunter: 1, Target: 2}, {Hunter: 2, Target: 1}}}
	channel.Broadcast(state)

	if len(transport.broadcast) != 1 {
		t.Fatalf("transport saw %d broadcasts, expected 1", len(transport.broadcast))
	}

	var decoded State
	if err := json.Unmarshal(transport.broadcast[0], &decoded); err != nil {
		t.Fatalf("could not decode broadcast payload: %v", err)
	}
	if decoded.Version != 1 || len(decoded.Edges) != 2 {
		t.Fatalf("broadcast payload %+v does not match published state", decoded)
	}

	if len(observed) != 1 || observed[0].Version != 1 {
		t.Fatalf("local observer saw %v, expected one version-1 update", observed)
	}
}

func TestChannelDropsStaleAndDuplicateVersions(t *testing.T) {
	channel := NewChannel(newFakeTransport(), jsonEncode, testLogger())

	var versions []uint64
	channel.Subscribe(func(state State) {
		versions = append(versions, state.Version)
	})

	v1 := State{Version: 1}
	v3 := State{Version: 3}

	if !channel.Receive(v1) {
		t.Fatal("version 1 rejected on a fresh channel")
	}
	if !channel.Receive(v3) {
		t.Fatal("version 3 rejected after version 1")
	}
	if channel.Receive(State{Version: 2}) {
		t.Fatal("out-of-order version 2 accepted after version 3")
	}
	if channel.Receive(v3) {
		t.Fatal("duplicate version 3 accepted")
	}
	if channel.Receive(v1) {
		t.Fatal("stale version 1 accepted")
	}

	if len(versions) != 2 || versions[0] != 1 || versions[1] != 3 {
		t.Fatalf("observer saw versions %v, expected [1 3]", versions)
	}

	if channel.Version() != 3 {
		t.Fatalf("channel at version %d, expected 3", channel.Version())
	}
}

func TestChannelAppliedVersionNeverDecreases(t *testing.T) {
	channel := NewChannel(newFakeTransport(), jsonEncode, testLogger())

	var applied []uint64
	channel.Subscribe(func(state State) {
		applied = append(applied, state.Version)
	})

	for _, version := range []uint64{2, 1, 4, 4, 3, 5, 2} {
		channel.Receive(State{Version: version})
	}

	previous := uint64(0)
	for _, version := range applied {
		if version <= previous {
			t.Fatalf("applied versions %v are not strictly increasing", applied)
		}
		previous = version
	}
}

func TestChannelCatchUpSendsToOneParticipant(t *testing.T) {
	transport := newFakeTransport()
	channel := NewChannel(transport, jsonEncode, testLogger())

	state := State{Version: 4, Edges: []Edge{{Hunter: 1, Target: 2}}}
	channel.CatchUp(7, state)

	payloads := transport.sent[7]
	if len(payloads) != 1 {
		t.Fatalf("participant 7 received %d payloads, expected 1", len(payloads))
	}

	var decoded State
	if err := json.Unmarshal(payloads[0], &decoded); err != nil {
		t.Fatalf("could not decode catch-up payload: %v", err)
	}
	if decoded.Version != 4 {
		t.Fatalf("catch-up delivered version %d, expected 4", decoded.Version)
	}

	if len(transport.broadcast) != 0 {
		t.Fatal("catch-up must not broadcast")
	}
}

func TestChannelCatchUpSkipsZeroVersion(t *testing.T) {
	transport := newFakeTransport()
	channel := NewChannel(transport, jsonEncode, testLogger())

	channel.CatchUp(7, State{Version: 0})

	if len(transport.sent[7]) != 0 {
		t.Fatal("catch-up sent a zero-version snapshot")
	}
}
