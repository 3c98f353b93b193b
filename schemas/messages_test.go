package schemas

import (
	"encoding/json"
	"testing"

	"github.com/huntcycle/huntcycle/assignment"
)

func TestStateMessageEnvelope(t *testing.T) {
	state := assignment.State{
		Version: 3,
		Edges:   []assignment.Edge{{Hunter: 1, Target: 2}, {Hunter: 2, Target: 1}},
	}

	payload, err := StateMessage(state)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	if envelope.Type != MessageState {
		t.Fatalf("envelope type %q, expected %q", envelope.Type, MessageState)
	}

	var content StateContent
	if err := json.Unmarshal(envelope.Content, &content); err != nil {
		t.Fatalf("decode content: %v", err)
	}

	if content.Version != 3 || len(content.Edges) != 2 {
		t.Fatalf("content %+v does not round-trip the state", content)
	}
}

func TestViewMessageOmitsAbsentTarget(t *testing.T) {
	payload, err := ViewMessage(assignment.View{})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	var content ViewContent
	if err := json.Unmarshal(envelope.Content, &content); err != nil {
		t.Fatalf("decode content: %v", err)
	}

	if content.Target != nil {
		t.Fatalf("absent target encoded as %d", *content.Target)
	}

	if content.HunterCount != 0 || len(content.Hunters) != 0 {
		t.Fatalf("empty view produced hunters: %+v", content)
	}
}

func TestViewMessageCarriesHunters(t *testing.T) {
	target := assignment.ParticipantID(7)

	view := assignment.View{
		Target:  &target,
		Hunters: []assignment.ParticipantID{3},
	}

	payload, err := ViewMessage(view)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var envelope Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}

	var content ViewContent
	if err := json.Unmarshal(envelope.Content, &content); err != nil {
		t.Fatalf("decode content: %v", err)
	}

	if content.Target == nil || *content.Target != 7 {
		t.Fatalf("target %v, expected 7", content.Target)
	}

	if content.HunterCount != 1 || len(content.Hunters) != 1 || content.Hunters[0] != 3 {
		t.Fatalf("hunters %+v, expected [3]", content)
	}
}
