package schemas

import (
	"encoding/json"

	"github.com/huntcycle/huntcycle/assignment"
)

// Wire message types. Everything on the websocket travels inside an
// Envelope so clients can switch on Type before decoding Content.
const (
	MessageWelcome       = "welcome"
	MessageState         = "state"
	MessageView          = "view"
	MessageRosterChanged = "rosterChanged"
	MessageElimination   = "elimination"
	MessageClaim         = "claim"
	MessageClaimVerdict  = "claimVerdict"
)

type Envelope struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// WelcomeContent greets a freshly admitted participant with its id.
type WelcomeContent struct {
	SessionId     string `json:"sessionId"`
	ParticipantId uint64 `json:"participantId"`
}

// StateContent is the replicated assignment snapshot. Clients must adopt it
// only when the version is strictly greater than the one they hold.
type StateContent struct {
	Version uint64            `json:"version"`
	Edges   []assignment.Edge `json:"edges"`
}

// ViewContent is the per-participant projection pushed after each accepted
// snapshot. Target is omitted when the participant has no assignment.
type ViewContent struct {
	Target      *uint64  `json:"target,omitempty"`
	Hunters     []uint64 `json:"hunters"`
	HunterCount int      `json:"hunterCount"`
}

// RosterChangedContent announces joins, leaves and eliminations so clients
// can render the player list.
type RosterChangedContent struct {
	Event         string `json:"event"` // "joined", "left" or "eliminated"
	ParticipantId uint64 `json:"participantId"`
	Username      string `json:"username,omitempty"`
}

// EliminationContent announces an accepted elimination to everyone.
type EliminationContent struct {
	Hunter    uint64 `json:"hunter"`
	Target    uint64 `json:"target"`
	Timestamp int64  `json:"timestamp"`
}

// ClaimContent is the client→server elimination claim. The hunter is the
// sending participant; only the target travels on the wire.
type ClaimContent struct {
	Target uint64 `json:"target"`
}

// ClaimVerdictContent is the accept/reject answer, sent to the claimant
// only. Rejections are non-fatal; the claim was stale.
type ClaimVerdictContent struct {
	Accepted bool   `json:"accepted"`
	Target   uint64 `json:"target"`
}

// DispatcherMessage carries a payload through the hub's dispatch loop. An
// empty ReceiverIds means every participant in the session.
type DispatcherMessage struct {
	SessionId   string
	ReceiverIds []assignment.ParticipantID
	Body        []byte
}

func Encode(messageType string, content any) ([]byte, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Envelope{
		Type:    messageType,
		Content: body,
	})
}

func StateMessage(state assignment.State) ([]byte, error) {
	return Encode(MessageState, StateContent{
		Version: state.Version,
		Edges:   state.Edges,
	})
}

func ViewMessage(view assignment.View) ([]byte, error) {
	content := ViewContent{
		Hunters:     make([]uint64, 0, len(view.Hunters)),
		HunterCount: len(view.Hunters),
	}

	if view.Target != nil {
		target := uint64(*view.Target)
		content.Target = &target
	}

	for _, hunter := range view.Hunters {
		content.Hunters = append(content.Hunters, uint64(hunter))
	}

	return Encode(MessageView, content)
}
