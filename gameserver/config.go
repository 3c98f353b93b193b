package gameserver

import (
	"context"
	"time"
)

// Config contains all configuration options for the game server
type Config struct {
	// Context controls server shutdown: cancelling it drains the hub,
	// kicks every participant and stops all goroutines.
	Context context.Context

	// DispatchBufferSize controls how many payloads can queue for delivery
	// before the hub starts shedding. Higher values absorb traffic spikes
	// at the cost of memory.
	DispatchBufferSize int

	// GameSlug identifies this game to the platform's event consumers.
	GameSlug string

	Assignment AssignmentConfig
	Publisher  PublisherConfig
	Router     RouterConfig
}

// AssignmentConfig tunes the assignment lifecycle.
type AssignmentConfig struct {
	// StartDelay is the countdown to game start once a session's roster
	// reaches minimum viable size.
	StartDelay time.Duration
	// AssignmentDelay is the additional delay between game start and the
	// first hunter→target assignment landing.
	AssignmentDelay time.Duration
	// Seed overrides the cycle seed source. Leave nil for wall-clock
	// seeding; tests pin it for reproducible cycles.
	Seed func() int64
}

// PublisherConfig contains configuration for the publisher service
type PublisherConfig struct {
	Redis RedisConfig
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// RouterConfig contains router configuration
type RouterConfig struct {
	AllowedOrigins []string
}
