package config

import "time"

// Config represents the complete ecsbot configuration.
type Config struct {
	Service           ServiceConfig `yaml:"service"`
	Webhook           WebhookConfig `yaml:"webhook"`
	Slack             SlackConfig   `yaml:"slack"`
	Replay            ReplayConfig  `yaml:"replay"`
	AWS               AWSConfig     `yaml:"aws"`
	Notify            NotifyConfig  `yaml:"notify"`
	ProtectedClusters []string      `yaml:"protected_clusters"`
	Metrics           MetricsConfig `yaml:"metrics"`

	// SourcePath is the absolute path the config was loaded from.
	SourcePath string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name      string `yaml:"name"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// WebhookConfig defines the slash-command listener.
type WebhookConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
	// Command is the slash command shown in help text, e.g. "/ecs-status".
	Command     string `yaml:"command"`
	MaxBodySize string `yaml:"max_body_size"` // e.g. "1MB", "65536"
}

// SlackConfig defines request signing settings.
type SlackConfig struct {
	SigningSecret string        `yaml:"signing_secret"`
	Tolerance     time.Duration `yaml:"tolerance"`
}

// Replay guard backends.
const (
	ReplayMemory = "memory"
	ReplayRedis  = "redis"
	ReplayNone   = "none"
)

// ReplayConfig selects where seen signatures are remembered.
type ReplayConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig addresses a shared redis for multi-instance deployments.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AWSConfig defines orchestrator and metric client settings.
type AWSConfig struct {
	Region       string        `yaml:"region"`
	Profile      string        `yaml:"profile"`
	MetricPeriod time.Duration `yaml:"metric_period"`
}

// Notification channels.
const (
	ChannelNone = "none"
	ChannelLog  = "log"
	ChannelSNS  = "sns"
	ChannelSMTP = "smtp"
)

// NotifyConfig defines where protected-cluster restart alerts go.
type NotifyConfig struct {
	Channel     string     `yaml:"channel"`
	SNSTopicARN string     `yaml:"sns_topic_arn"`
	SMTP        SMTPConfig `yaml:"smtp"`
}

// SMTPConfig defines the email channel.
type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	From     string        `yaml:"from"`
	To       []string      `yaml:"to"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	TLSMode  string        `yaml:"tls_mode"` // auto, ssl, none
	Timeout  time.Duration `yaml:"timeout"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ChecksumManifest is the on-disk .checksums format.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// ChannelConfigured reports whether restart alerts have somewhere to go.
func (n NotifyConfig) ChannelConfigured() bool {
	return n.Channel != "" && n.Channel != ChannelNone
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:      "ecsbot",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Webhook: WebhookConfig{
			Listen:      "127.0.0.1:3000",
			Path:        "/slack/commands",
			Command:     "/ecs-status",
			MaxBodySize: "1MB",
		},
		Slack: SlackConfig{
			Tolerance: 5 * time.Minute,
		},
		Replay: ReplayConfig{
			Backend: ReplayMemory,
		},
		AWS: AWSConfig{
			MetricPeriod: 5 * time.Minute,
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Port:    587,
				TLSMode: "auto",
				Timeout: 10 * time.Second,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
