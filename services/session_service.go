package services

import (
	"errors"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/huntcycle/huntcycle/assignment"
	"github.com/huntcycle/huntcycle/entities"
	"github.com/huntcycle/huntcycle/pkg/logx"
	"github.com/huntcycle/huntcycle/schemas"
)

var (
	SessionNotFound = errors.New("session not found")
	UsernameMissing = errors.New("username is required")
)

type SessionService struct {
	hub              *entities.Hub
	publisherService PublisherService
	delays           assignment.Delays
	seed             func() int64
}

func NewSessionService(
	hub *entities.Hub,
	publisherService PublisherService,
	delays assignment.Delays,
	seed func() int64,
) SessionService {
	return SessionService{
		hub:              hub,
		publisherService: publisherService,
		delays:           delays,
		seed:             seed,
	}
}

// Create registers a fresh session on the hub and announces it to the
// platform over the publisher.
func (sessionService SessionService) Create() (*schemas.CreateSessionResponse, error) {
	session := entities.NewSession(
		bson.NewObjectID().Hex(),
		sessionService.hub.GameSlug,
		sessionService.hub.Dispatch,
		sessionService.delays,
		sessionService.seed,
		logx.Logger,
	)

	session.OnEmpty = sessionService.onSessionEmpty

	sessionService.hub.Sessions.Store(session.Id, session)

	message, err := schemas.SessionCreatedEvent(session.Id, session.GameSlug)

	if err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("sessionId", session.Id),
			zap.String("desc", "could not create SessionCreatedEvent"),
		)
		return nil, err
	}

	if err = sessionService.publisherService.Publish(message); err != nil {
		return nil, err
	}

	return &schemas.CreateSessionResponse{SessionId: session.Id}, nil
}

// Join admits a websocket connection into a session and hands back the read
// loop for the caller to run on its own goroutine.
func (sessionService SessionService) Join(sessionId, username string, connection *websocket.Conn) (func(), error) {
	if username == "" {
		return nil, UsernameMissing
	}

	session := sessionService.hub.FindSession(sessionId)

	if session == nil {
		return nil, SessionNotFound
	}

	participant := session.Admit(username, connection)

	go participant.Write()

	return func() {
		entities.Read(participant, session)
	}, nil
}

func (sessionService SessionService) onSessionEmpty(sessionId string) {
	sessionService.hub.RemoveSession(sessionId)

	message, err := schemas.SessionEndedEvent(sessionId, sessionService.hub.GameSlug)

	if err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("sessionId", sessionId),
			zap.String("desc", "could not create SessionEndedEvent"),
		)
		return
	}

	if err = sessionService.publisherService.Publish(message); err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("sessionId", sessionId),
			zap.String("desc", "could not publish session ended event"),
		)
	}
}
