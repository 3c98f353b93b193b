package entities

import (
	"context"

	"github.com/huntcycle/huntcycle/assignment"
	"github.com/huntcycle/huntcycle/pkg/syncx"
	"github.com/huntcycle/huntcycle/schemas"
)

// Hub routes dispatched payloads into participant buffers and owns the set
// of live sessions. Delivery is fire-and-forget from the sender's point of
// view: the dispatch loop never reaches back into authority state.
type Hub struct {
	GameSlug string
	Sessions syncx.Map[string, *Session]

	Context context.Context

	Dispatch chan *schemas.DispatcherMessage
}

// NewHub creates a hub whose lifetime is bound to ctx. Cancelling the
// context drains into a graceful shutdown that kicks every participant.
func NewHub(ctx context.Context, dispatchBufferSize int, gameSlug string) *Hub {
	bufferSize := dispatchBufferSize

	if bufferSize <= 0 {
		bufferSize = 500
	}

	return &Hub{
		GameSlug: gameSlug,
		Context:  ctx,
		Dispatch: make(chan *schemas.DispatcherMessage, bufferSize),
	}
}

// Run is the dispatch loop. An empty ReceiverIds list fans the payload out
// to every participant of the session.
func (hub *Hub) Run() {
	for {
		select {
		case <-hub.Context.Done():
			hub.Sessions.Range(func(sessionId string, session *Session) bool {
				session.Participants.Range(func(participantId assignment.ParticipantID, participant *Participant) bool {
					participant.Kick()
					return true
				})
				return true
			})
			return
		case message := <-hub.Dispatch:
			session := hub.FindSession(message.SessionId)

			if session == nil {
				continue
			}

			if len(message.ReceiverIds) == 0 {
				session.Participants.Range(func(participantId assignment.ParticipantID, participant *Participant) bool {
					participant.Deliver(message.Body)
					return true
				})
				continue
			}

			for _, receiverId := range message.ReceiverIds {
				if participant, exists := session.Participants.Load(receiverId); exists {
					participant.Deliver(message.Body)
				}
			}
		}
	}
}

func (hub *Hub) FindSession(id string) *Session {
	session, exists := hub.Sessions.Load(id)

	if !exists {
		return nil
	}

	return session
}

// RemoveSession drops a session from the hub to prevent memory leaks.
func (hub *Hub) RemoveSession(sessionId string) {
	if session, exists := hub.Sessions.Load(sessionId); exists {
		session.Participants.Range(func(participantId assignment.ParticipantID, participant *Participant) bool {
			participant.Kick()
			return true
		})
		session.scheduler.Shutdown()
		hub.Sessions.Delete(sessionId)
	}
}
