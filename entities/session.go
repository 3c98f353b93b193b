package entities

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/huntcycle/huntcycle/assignment"
	"github.com/huntcycle/huntcycle/pkg/logx"
	"github.com/huntcycle/huntcycle/pkg/syncx"
	"github.com/huntcycle/huntcycle/schemas"
)

// Session is one game instance. It owns the full authority-side assignment
// core (roster, store, replication channel, scheduler) and keeps the
// connected participants, eliminated spectators included. All mutation runs
// through the scheduler, which serializes it.
type Session struct {
	Id        string
	GameSlug  string
	CreatedAt int64

	// I used map[] in order to easily remove participants and load them in O(1)
	Participants syncx.Map[assignment.ParticipantID, *Participant]

	// OnEmpty is called after the last participant leaves.
	OnEmpty func(sessionId string)

	dispatch chan<- *schemas.DispatcherMessage
	nextId   atomic.Uint64

	roster    *assignment.Roster
	store     *assignment.Store
	channel   *assignment.Channel
	scheduler *assignment.Scheduler
	logger    *zap.SugaredLogger
}

// NewSession wires a session's assignment core. The session itself is the
// channel's transport: broadcasts and catch-ups flow through the hub's
// dispatch loop into participant buffers. The seed source is injected for
// reproducible cycles in tests; nil means wall-clock seeding.
func NewSession(
	id string,
	gameSlug string,
	dispatch chan<- *schemas.DispatcherMessage,
	delays assignment.Delays,
	seed func() int64,
	logger *zap.SugaredLogger,
) *Session {
	session := &Session{
		Id:        id,
		GameSlug:  gameSlug,
		CreatedAt: time.Now().Unix(),
		dispatch:  dispatch,
		logger:    logger,
	}

	session.roster = assignment.NewRoster(logger)
	session.channel = assignment.NewChannel(session, schemas.StateMessage, logger)
	session.store = assignment.NewStore(session.channel, logger)
	session.scheduler = assignment.NewScheduler(session.roster, session.store, delays, seed, logger)

	session.channel.Subscribe(session.onStateAccepted)

	return session
}

// Send implements assignment.Transport for a single receiver.
func (session *Session) Send(id assignment.ParticipantID, payload []byte) {
	session.enqueue(&schemas.DispatcherMessage{
		SessionId:   session.Id,
		ReceiverIds: []assignment.ParticipantID{id},
		Body:        payload,
	})
}

// Broadcast implements assignment.Transport for all participants.
func (session *Session) Broadcast(payload []byte) {
	session.enqueue(&schemas.DispatcherMessage{
		SessionId: session.Id,
		Body:      payload,
	})
}

func (session *Session) enqueue(message *schemas.DispatcherMessage) {
	select {
	case session.dispatch <- message:
	default:
		logx.Logger.Warn(
			"dispatch buffer full, message dropped",
			zap.String("sessionId", session.Id),
		)
	}
}

// Admit assigns the next participant id, registers the participant and runs
// roster admission followed by late-join catch-up, so a joiner immediately
// receives the latest published state instead of waiting for the next
// mutation.
func (session *Session) Admit(username string, connection *websocket.Conn) *Participant {
	id := assignment.ParticipantID(session.nextId.Add(1))

	participant := &Participant{
		Id:          id,
		SessionId:   session.Id,
		Username:    username,
		IsConnected: connection != nil,
		Connection:  connection,
		Message:     make(chan []byte, 50),
		View:        assignment.NewLocalView(id),
	}

	participant.View.OnAssignmentChanged(func(view assignment.View) {
		payload, err := schemas.ViewMessage(view)

		if err != nil {
			logx.Logger.Error(
				err.Error(),
				zap.String("desc", "could not encode view message"),
				zap.Uint64("participantId", uint64(id)),
			)
			return
		}

		session.Send(id, payload)
	})

	session.Participants.Store(id, participant)

	welcome, err := schemas.Encode(schemas.MessageWelcome, schemas.WelcomeContent{
		SessionId:     session.Id,
		ParticipantId: uint64(id),
	})

	if err == nil {
		participant.Deliver(welcome)
	}

	session.scheduler.HandleJoin(id)
	session.channel.CatchUp(id, session.store.Current())

	session.announceRoster("joined", participant)

	return participant
}

// HandleClaim validates an elimination claim from a participant. The verdict
// goes back to the claimant only; accepted eliminations are announced to the
// whole session and the victim stays connected as a spectator.
func (session *Session) HandleClaim(participant *Participant, target assignment.ParticipantID) {
	elimination, accepted := session.scheduler.ClaimElimination(participant.Id, target)

	verdict, err := schemas.Encode(schemas.MessageClaimVerdict, schemas.ClaimVerdictContent{
		Accepted: accepted,
		Target:   uint64(target),
	})

	if err == nil {
		session.Send(participant.Id, verdict)
	}

	if !accepted {
		return
	}

	if victim, exists := session.Participants.Load(target); exists {
		victim.MarkEliminated()
		session.announceRoster("eliminated", victim)
	}

	announcement, err := schemas.Encode(schemas.MessageElimination, schemas.EliminationContent{
		Hunter:    uint64(elimination.Hunter),
		Target:    uint64(elimination.Target),
		Timestamp: elimination.At.Unix(),
	})

	if err == nil {
		session.Broadcast(announcement)
	}
}

// HandleLeave withdraws a participant entirely: socket closed, removed from
// the session and from the active roster. Called from the read pump on
// disconnect; duplicate calls for the same participant are harmless.
func (session *Session) HandleLeave(participant *Participant) {
	participant.Kick()

	if _, exists := session.Participants.Load(participant.Id); !exists {
		return
	}

	session.Participants.Delete(participant.Id)
	session.scheduler.HandleLeave(participant.Id)

	session.announceRoster("left", participant)

	if session.Participants.Len() == 0 {
		session.scheduler.Shutdown()

		if session.OnEmpty != nil {
			session.OnEmpty(session.Id)
		}
	}
}

// Phase reports the assignment lifecycle phase.
func (session *Session) Phase() assignment.Phase {
	return session.scheduler.Phase()
}

// CurrentState reports the latest published assignment snapshot.
func (session *Session) CurrentState() assignment.State {
	return session.store.Current()
}

// onStateAccepted runs once per accepted replicated update and rebuilds
// every participant's projection. View observers push the result to the
// owning client.
func (session *Session) onStateAccepted(state assignment.State) {
	session.Participants.Range(func(id assignment.ParticipantID, participant *Participant) bool {
		participant.View.Apply(state)
		return true
	})
}

func (session *Session) announceRoster(event string, participant *Participant) {
	payload, err := schemas.Encode(schemas.MessageRosterChanged, schemas.RosterChangedContent{
		Event:         event,
		ParticipantId: uint64(participant.Id),
		Username:      participant.Username,
	})

	if err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("desc", "could not encode roster change"),
			zap.String("sessionId", session.Id),
		)
		return
	}

	session.Broadcast(payload)
}
