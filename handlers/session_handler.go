package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/huntcycle/huntcycle/pkg/logx"
	"github.com/huntcycle/huntcycle/schemas"
	"github.com/huntcycle/huntcycle/services"
)

type SessionHandler struct {
	sessionService services.SessionService
	upgrader       websocket.Upgrader
}

func NewSessionHandler(
	router *chi.Mux,
	sessionService services.SessionService,
	allowedOrigins []string,
) {
	sessionHandler := SessionHandler{
		sessionService: sessionService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}

	router.Post("/sessions", sessionHandler.create)
	router.Get("/sessions/{id}/join", sessionHandler.join)
}

func (sessionHandler SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	response, err := sessionHandler.sessionService.Create()

	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		encode(schemas.ErrorResponse{Message: "Something goes wrong!"}, w)
		return
	}

	w.WriteHeader(http.StatusCreated)

	encode(response, w)
}

func (sessionHandler SessionHandler) join(w http.ResponseWriter, r *http.Request) {
	sessionId := chi.URLParam(r, "id")

	username := r.URL.Query().Get("username")

	if username == "" {
		logx.Logger.Info("username is not provided")
		w.WriteHeader(http.StatusUnprocessableEntity)
		encode(schemas.ErrorResponse{Message: "Username is required."}, w)
		return
	}

	connection, err := sessionHandler.upgrader.Upgrade(w, r, nil)

	if err != nil {
		logx.Logger.Error(
			err.Error(),
			zap.String("desc", "could not upgrade http request"),
		)
		return
	}

	reader, err := sessionHandler.sessionService.Join(sessionId, username, connection)

	if err != nil {
		if !errors.Is(err, services.SessionNotFound) {
			logx.Logger.Error(
				err.Error(),
				zap.String("sessionId", sessionId),
				zap.String("desc", "could not join session"),
			)
		}

		closeMessage := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error())

		if err = connection.WriteMessage(websocket.CloseMessage, closeMessage); err != nil {
			logx.Logger.Error(
				err.Error(),
				zap.String("desc", "could not write close message"),
			)
		}

		_ = connection.Close()

		return
	}

	reader()
}
