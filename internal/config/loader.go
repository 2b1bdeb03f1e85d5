package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/ecsbot/internal/notify"
)

// DefaultFilename is looked up when a directory is passed to Load.
const DefaultFilename = "config.yaml"

// Environment variables that override file values.
const (
	EnvSigningSecret     = "SLACK_SIGNING_SECRET"
	EnvSNSTopicARN       = "SNS_TOPIC_ARN"
	EnvProtectedClusters = "PROTECTED_CLUSTERS"
	EnvListen            = "ECSBOT_LISTEN"
)

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads, verifies and validates configuration from a file or directory.
func Load(configPath string) (*Config, error) {
	absPath, err := ResolvePath(configPath)
	if err != nil {
		return nil, err
	}

	if err := verifyConfigHash(absPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", absPath, err)
	}
	cfg.SourcePath = absPath
	return cfg, nil
}

// FromEnv builds a configuration from defaults and environment overrides only.
func FromEnv() (*Config, error) {
	cfg := Defaults()
	applyEnvOverrides(cfg)
	applyConfigDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Defaults, then applies env overrides and validation.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(interpolateEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyEnvOverrides(cfg)
	applyConfigDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ResolvePath returns the absolute config file path, looking for
// config.yaml inside a directory.
func ResolvePath(configPath string) (string, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path %q: %w", configPath, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("config file not found: %s\n"+
			"Hint: Check the path or run with --config flag", absPath)
	}

	if info.IsDir() {
		absPath = filepath.Join(absPath, DefaultFilename)
		if _, err := os.Stat(absPath); err != nil {
			return "", fmt.Errorf("directory provided but %s not found: %s", DefaultFilename, absPath)
		}
	}
	return absPath, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv(EnvSigningSecret); ok && v != "" {
		cfg.Slack.SigningSecret = v
	}
	if v, ok := os.LookupEnv(EnvSNSTopicARN); ok && v != "" {
		cfg.Notify.SNSTopicARN = v
	}
	if v, ok := os.LookupEnv(EnvProtectedClusters); ok {
		cfg.ProtectedClusters = notify.ParseClusterList(v)
	}
	if v, ok := os.LookupEnv(EnvListen); ok && v != "" {
		cfg.Webhook.Listen = v
	}
}

func applyConfigDefaults(cfg *Config) {
	cfg.Service.LogLevel = strings.ToLower(strings.TrimSpace(cfg.Service.LogLevel))
	cfg.Service.LogFormat = strings.ToLower(strings.TrimSpace(cfg.Service.LogFormat))

	if cfg.Notify.Channel == "" {
		if cfg.Notify.SNSTopicARN != "" {
			cfg.Notify.Channel = ChannelSNS
		} else {
			cfg.Notify.Channel = ChannelNone
		}
	}
	if cfg.Replay.Backend == "" {
		cfg.Replay.Backend = ReplayMemory
	}
	if cfg.Slack.Tolerance == 0 {
		cfg.Slack.Tolerance = 5 * time.Minute
	}

	clusters := make([]string, 0, len(cfg.ProtectedClusters))
	for _, c := range cfg.ProtectedClusters {
		if c = strings.TrimSpace(c); c != "" {
			clusters = append(clusters, c)
		}
	}
	cfg.ProtectedClusters = clusters
}

// interpolateEnv replaces ${VAR} with environment variable values.
// Unset variables are left in place and caught by validation.
func interpolateEnv(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match
	})
}

// unresolved returns an error when value still holds a ${VAR} placeholder.
func unresolved(field, value string) error {
	if matches := envVarPattern.FindStringSubmatch(value); len(matches) > 1 {
		return fmt.Errorf("%s: environment variable ${%s} is not set", field, matches[1])
	}
	return nil
}

// validate performs basic validation on the configuration.
func validate(cfg *Config) error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[cfg.Service.LogLevel] {
		return fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel)
	}
	if cfg.Service.LogFormat != "json" && cfg.Service.LogFormat != "text" {
		return fmt.Errorf("service.log_format must be json or text (got %q)", cfg.Service.LogFormat)
	}

	// Webhook validation
	if cfg.Webhook.Listen == "" {
		return fmt.Errorf("webhook.listen is required")
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		return fmt.Errorf("webhook.path must start with / (got %q)", cfg.Webhook.Path)
	}
	if _, err := ParseSize(cfg.Webhook.MaxBodySize); err != nil {
		return fmt.Errorf("webhook.max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}

	// Slack validation
	if err := unresolved("slack.signing_secret", cfg.Slack.SigningSecret); err != nil {
		return err
	}
	if cfg.Slack.SigningSecret == "" {
		return fmt.Errorf("slack.signing_secret is required (or set %s)", EnvSigningSecret)
	}
	if cfg.Slack.Tolerance < 0 || cfg.Slack.Tolerance > 5*time.Minute {
		return fmt.Errorf("slack.tolerance must be between 0 and 5m (got %s)", cfg.Slack.Tolerance)
	}

	// Replay validation
	switch cfg.Replay.Backend {
	case ReplayMemory, ReplayNone:
	case ReplayRedis:
		if cfg.Replay.Redis.Addr == "" {
			return fmt.Errorf("replay.redis.addr is required when replay.backend is redis")
		}
	default:
		return fmt.Errorf("replay.backend must be one of: memory, redis, none (got %q)", cfg.Replay.Backend)
	}

	if cfg.AWS.MetricPeriod < 0 {
		return fmt.Errorf("aws.metric_period must not be negative")
	}

	// Notify validation
	switch cfg.Notify.Channel {
	case ChannelNone, ChannelLog:
	case ChannelSNS:
		if err := unresolved("notify.sns_topic_arn", cfg.Notify.SNSTopicARN); err != nil {
			return err
		}
		if cfg.Notify.SNSTopicARN == "" {
			return fmt.Errorf("notify.sns_topic_arn is required when notify.channel is sns")
		}
	case ChannelSMTP:
		smtp := cfg.Notify.SMTP
		if smtp.Host == "" || smtp.From == "" || len(smtp.To) == 0 {
			return fmt.Errorf("notify.smtp requires host, from and at least one recipient")
		}
		if err := unresolved("notify.smtp.password", smtp.Password); err != nil {
			return err
		}
		switch smtp.TLSMode {
		case "", "auto", "ssl", "none":
		default:
			return fmt.Errorf("notify.smtp.tls_mode must be one of: auto, ssl, none (got %q)", smtp.TLSMode)
		}
	default:
		return fmt.Errorf("notify.channel must be one of: none, log, sns, smtp (got %q)", cfg.Notify.Channel)
	}

	return nil
}
