package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/huntcycle/huntcycle/gameserver"
	"github.com/huntcycle/huntcycle/pkg/logx"
)

type config struct {
	Addr               string        `env:"ADDR" envDefault:":8080"`
	GameSlug           string        `env:"GAME_SLUG" envDefault:"huntcycle"`
	DispatchBufferSize int           `env:"DISPATCH_BUFFER_SIZE" envDefault:"500"`
	StartDelay         time.Duration `env:"START_DELAY" envDefault:"10s"`
	AssignmentDelay    time.Duration `env:"ASSIGNMENT_DELAY" envDefault:"3s"`
	RedisHost          string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort          string        `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
}

func main() {
	var cfg config

	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("parse env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := gameserver.NewGameServer(gameserver.Config{
		Context:            ctx,
		DispatchBufferSize: cfg.DispatchBufferSize,
		GameSlug:           cfg.GameSlug,
		Assignment: gameserver.AssignmentConfig{
			StartDelay:      cfg.StartDelay,
			AssignmentDelay: cfg.AssignmentDelay,
		},
		Publisher: gameserver.PublisherConfig{
			Redis: gameserver.RedisConfig{
				Host:     cfg.RedisHost,
				Port:     cfg.RedisPort,
				Password: cfg.RedisPassword,
			},
		},
		Router: gameserver.RouterConfig{
			AllowedOrigins: cfg.AllowedOrigins,
		},
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.GetRouter(),
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logx.Logger.Errorw("http server shutdown", "error", err)
		}

		server.Shutdown()
	}()

	logx.Logger.Infow("huntcycle server listening", "addr", cfg.Addr)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logx.Logger.Fatal(err)
	}
}
