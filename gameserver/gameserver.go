package gameserver

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/huntcycle/huntcycle/assignment"
	"github.com/huntcycle/huntcycle/entities"
	"github.com/huntcycle/huntcycle/handlers"
	"github.com/huntcycle/huntcycle/pkg/logx"
	"github.com/huntcycle/huntcycle/services"
)

// GameServer encapsulates all game server functionality
type GameServer struct {
	router *chi.Mux
	hub    *entities.Hub
}

// NewGameServer wires every collaborator explicitly and returns the
// assembled server. Components receive their dependencies at construction;
// nothing reaches for ambient state.
func NewGameServer(config Config) *GameServer {
	logx.NewLogger()

	hub := entities.NewHub(config.Context, config.DispatchBufferSize, config.GameSlug)

	publisherService := services.NewPublisherService(
		config.Publisher.Redis.Host,
		config.Publisher.Redis.Port,
		config.Publisher.Redis.Password,
	)

	delays := assignment.Delays{
		Start:      config.Assignment.StartDelay,
		Assignment: config.Assignment.AssignmentDelay,
	}

	sessionService := services.NewSessionService(hub, publisherService, delays, config.Assignment.Seed)

	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.Router.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	handlers.NewSessionHandler(router, sessionService, config.Router.AllowedOrigins)

	gameServer := &GameServer{
		router: router,
		hub:    hub,
	}

	go hub.Run()

	return gameServer
}

// GetRouter returns the configured router
func (gs *GameServer) GetRouter() *chi.Mux {
	return gs.router
}

// GetHub returns the hub instance
func (gs *GameServer) GetHub() *entities.Hub {
	return gs.hub
}

// Shutdown provides explicit shutdown for immediate cleanup. The hub also
// shuts down on its own when the configured context is cancelled.
func (gs *GameServer) Shutdown() {
	gs.hub.Sessions.Range(func(sessionId string, session *entities.Session) bool {
		session.Participants.Range(func(participantId assignment.ParticipantID, participant *entities.Participant) bool {
			participant.Kick()
			return true
		})
		return true
	})
}
