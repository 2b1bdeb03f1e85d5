package webhook

import (
	"fmt"

	"github.com/mattjoyce/ecsbot/internal/config"
)

// FromGlobalConfig converts the loaded configuration to webhook.Config.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize := int64(DefaultMaxBodySize)
	if cfg.Webhook.MaxBodySize != "" {
		size, err := config.ParseSize(cfg.Webhook.MaxBodySize)
		if err != nil {
			return Config{}, fmt.Errorf("webhook: invalid max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
		}
		maxBodySize = size
	}

	return Config{
		Listen:         cfg.Webhook.Listen,
		Path:           cfg.Webhook.Path,
		SlashCommand:   cfg.Webhook.Command,
		MaxBodySize:    maxBodySize,
		MetricsEnabled: cfg.Metrics.Enabled,
	}, nil
}
