package notify

import (
	"context"
	"log/slog"
)

// LogPublisher writes alerts to the structured log. Meant for development.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher builds a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the alert at WARN so it stands out.
func (p *LogPublisher) Publish(_ context.Context, subject, body string) error {
	p.logger.Warn("operations alert", "subject", subject, "body", body)
	return nil
}
