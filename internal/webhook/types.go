package webhook

import (
	"context"

	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/dispatch"
	"github.com/mattjoyce/ecsbot/internal/slack"
)

// Authenticator verifies an inbound delivery before anything else runs.
type Authenticator interface {
	Check(ctx context.Context, req slack.InboundRequest) error
}

// CommandDispatcher executes a parsed command.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd command.Command) dispatch.Outcome
}

// Config holds webhook server configuration.
type Config struct {
	Listen string

	// Path is the slash-command endpoint (default: "/slack/commands")
	Path string

	// SlashCommand is the command name shown in help text (e.g. "/ecs-status").
	// When empty the command field of each payload is used.
	SlashCommand string

	// MaxBodySize is the maximum accepted request body in bytes (default: 1MB)
	MaxBodySize int64

	// MetricsEnabled exposes GET /metrics.
	MetricsEnabled bool
}

// HealthResponse is the JSON body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// Default values
const (
	DefaultListen      = "127.0.0.1:3000"
	DefaultPath        = "/slack/commands"
	DefaultMaxBodySize = 1048576 // 1 MB

	invalidSignature = "Invalid signature"
)
