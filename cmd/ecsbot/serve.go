package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mattjoyce/ecsbot/internal/config"
	"github.com/mattjoyce/ecsbot/internal/dispatch"
	"github.com/mattjoyce/ecsbot/internal/ecs"
	"github.com/mattjoyce/ecsbot/internal/log"
	"github.com/mattjoyce/ecsbot/internal/metrics"
	"github.com/mattjoyce/ecsbot/internal/notify"
	"github.com/mattjoyce/ecsbot/internal/replay"
	"github.com/mattjoyce/ecsbot/internal/slack"
	"github.com/mattjoyce/ecsbot/internal/webhook"
)

// envConfigPath names the config file when --config is not given.
const envConfigPath = "ECSBOT_CONFIG"

func newServeCmd() *cobra.Command {
	var configPath, envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the slash-command webhook server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadEnvFile(envFile)
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file or directory (env "+envConfigPath+")")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before config (ignored if missing)")
	return cmd
}

// loadEnvFile loads a dotenv file without overriding variables already set.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// loadConfig resolves the config source: flag, $ECSBOT_CONFIG, ./config.yaml,
// or environment variables alone.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		if _, err := os.Stat(config.DefaultFilename); err == nil {
			path = config.DefaultFilename
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.FromEnv()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("ecsbot starting", "version", version, "config", cfg.SourcePath)

	m, err := metrics.New()
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	guard, closeGuard, err := buildReplayGuard(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGuard()

	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	ecsClient := ecs.NewClient(awsCfg, log.WithComponent("ecs"))
	ecsClient.SetMetricPeriod(cfg.AWS.MetricPeriod)

	publisher, err := buildPublisher(cfg, awsCfg)
	if err != nil {
		return err
	}
	protected := notify.NewClusterSet(cfg.ProtectedClusters...)
	policy := notify.NewPolicy(protected, publisher != nil)
	logger.Info("notification policy configured",
		"channel", cfg.Notify.Channel,
		"protected_clusters", protected.List(),
	)

	dispatcher := dispatch.New(ecsClient, ecsClient, publisher, policy,
		dispatch.WithMetrics(m),
		dispatch.WithLogger(log.WithComponent("dispatch")),
	)

	verifier := slack.NewVerifier(slack.VerifierConfig{
		Secret:    cfg.Slack.SigningSecret,
		Tolerance: cfg.Slack.Tolerance,
		Guard:     guard,
		Metrics:   m,
		Logger:    log.WithComponent("verifier"),
	})

	webhookConfig, err := webhook.FromGlobalConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure webhook: %w", err)
	}
	server := webhook.New(webhookConfig, verifier, dispatcher, m, log.WithComponent("webhook"))

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("webhook server failed", "error", err)
		return err
	}
	logger.Info("ecsbot stopped")
	return nil
}

func buildReplayGuard(ctx context.Context, cfg *config.Config) (replay.Guard, func(), error) {
	switch cfg.Replay.Backend {
	case config.ReplayRedis:
		r := replay.NewRedis(cfg.Replay.Redis.Addr, cfg.Replay.Redis.Password, cfg.Replay.Redis.DB)
		if err := r.Ping(ctx); err != nil {
			_ = r.Close()
			return nil, nil, fmt.Errorf("replay guard: %w", err)
		}
		return r, func() { _ = r.Close() }, nil
	case config.ReplayNone:
		log.Warn("replay protection disabled")
		return replay.Nop{}, func() {}, nil
	default:
		return replay.NewMemory(2 * cfg.Slack.Tolerance), func() {}, nil
	}
}

func loadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.Profile))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}

// buildPublisher returns nil when no channel is configured.
func buildPublisher(cfg *config.Config, awsCfg aws.Config) (dispatch.Publisher, error) {
	switch cfg.Notify.Channel {
	case config.ChannelSNS:
		return notify.NewSNSPublisherFromConfig(awsCfg, cfg.Notify.SNSTopicARN), nil
	case config.ChannelSMTP:
		s := cfg.Notify.SMTP
		return notify.NewSMTPPublisher(notify.SMTPConfig{
			Host:     s.Host,
			Port:     s.Port,
			From:     s.From,
			To:       s.To,
			Username: s.Username,
			Password: s.Password,
			TLSMode:  s.TLSMode,
			Timeout:  s.Timeout,
		}), nil
	case config.ChannelLog:
		return notify.NewLogPublisher(log.WithComponent("notify")), nil
	case config.ChannelNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown notify channel %q", cfg.Notify.Channel)
	}
}
