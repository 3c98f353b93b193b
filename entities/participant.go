package entities

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/huntcycle/huntcycle/assignment"
	"github.com/huntcycle/huntcycle/pkg/logx"
	"github.com/huntcycle/huntcycle/schemas"
)

type Participant struct {
	Id        assignment.ParticipantID
	SessionId string
	Username  string
	// Eliminated participants stay connected as spectators; they are out of
	// the active roster but keep receiving state.
	IsEliminated bool
	IsConnected  bool
	// To keep track of closed channel
	IsClosed   bool
	Connection *websocket.Conn
	Message    chan []byte
	// View is this participant's projection of the replicated assignment
	// state, recomputed on every accepted update.
	View  *assignment.LocalView
	mutex sync.Mutex
}

func (participant *Participant) Kick() {
	// We are using mutex to make sure IsClosed value is evaluated correctly
	// when reading its value at the same time.
	// https://go101.org/article/channel-closing.html
	participant.mutex.Lock()

	defer participant.mutex.Unlock()

	if !participant.IsClosed {
		close(participant.Message)
		participant.IsClosed = true
	}

	// Connection may be nil when a participant was admitted but never
	// finished the websocket handshake.
	if participant.Connection != nil {
		err := participant.Connection.Close()

		if err != nil {
			logx.Logger.Error(
				err.Error(),
				zap.String("desc", "could not close participant connection"),
				zap.Uint64("participantId", uint64(participant.Id)),
			)
		}
	}

	participant.IsConnected = false
}

// Deliver queues a payload for the write pump. The send never blocks: a
// participant that stopped draining its buffer loses payloads rather than
// stalling the authority's mutation path.
func (participant *Participant) Deliver(payload []byte) {
	participant.mutex.Lock()
	defer participant.mutex.Unlock()

	if participant.IsClosed {
		return
	}

	select {
	case participant.Message <- payload:
	default:
		logx.Logger.Warn(
			"participant message buffer full, payload dropped",
			zap.Uint64("participantId", uint64(participant.Id)),
		)
	}
}

func (participant *Participant) MarkEliminated() {
	participant.mutex.Lock()
	defer participant.mutex.Unlock()

	participant.IsEliminated = true
}

func (participant *Participant) Write() {
	defer participant.Kick()

	for {
		message, ok := <-participant.Message

		if !ok {
			logx.Logger.Info(
				"participant channel is closed!",
				zap.Uint64("participantId", uint64(participant.Id)),
			)
			break
		}

		err := participant.Connection.WriteMessage(websocket.TextMessage, message)

		if err != nil {
			logx.Logger.Error(
				err.Error(),
				zap.String("desc", "could not write participant message"),
				zap.Uint64("participantId", uint64(participant.Id)),
			)
		}
	}
}

// Read pumps incoming messages until the connection drops, then withdraws
// the participant from the session.
func Read(participant *Participant, session *Session) {
	defer func() {
		participant.Kick()
		session.HandleLeave(participant)
	}()

	for {
		_, message, err := participant.Connection.ReadMessage()

		if err != nil {
			logx.Logger.Info(
				"participant connection closed",
				zap.Uint64("participantId", uint64(participant.Id)),
			)
			break
		}

		react(participant, message, session)
	}
}

func react(participant *Participant, message []byte, session *Session) {
	var envelope schemas.Envelope

	if err := json.Unmarshal(message, &envelope); err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("desc", "could not decode incoming envelope"),
			zap.Uint64("participantId", uint64(participant.Id)),
		)
		return
	}

	switch envelope.Type {
	case schemas.MessageClaim:
		var claim schemas.ClaimContent

		if err := json.Unmarshal(envelope.Content, &claim); err != nil {
			logx.Logger.Error(
				err.Error(),
				zap.String("desc", "could not decode claim content"),
				zap.Uint64("participantId", uint64(participant.Id)),
			)
			return
		}

		session.HandleClaim(participant, assignment.ParticipantID(claim.Target))
	default:
		logx.Logger.Info(
			"unknown message type ignored",
			zap.String("type", envelope.Type),
			zap.Uint64("participantId", uint64(participant.Id)),
		)
	}
}
