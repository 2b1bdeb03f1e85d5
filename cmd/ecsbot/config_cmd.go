package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/ecsbot/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate or lock configuration",
	}
	cmd.AddCommand(newConfigCheckCmd(), newConfigLockCmd())
	return cmd
}

func newConfigCheckCmd() *cobra.Command {
	var configPath, envFile string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate configuration without starting the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loadEnvFile(envFile)
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := cfg.SourcePath
			if source == "" {
				source = "(environment)"
			}
			fmt.Fprintf(out, "config: %s\n", source)
			fmt.Fprintf(out, "listen: %s\n", cfg.Webhook.Listen)
			fmt.Fprintf(out, "path: %s\n", cfg.Webhook.Path)
			fmt.Fprintf(out, "tolerance: %s\n", cfg.Slack.Tolerance)
			fmt.Fprintf(out, "replay: %s\n", cfg.Replay.Backend)
			fmt.Fprintf(out, "notify: %s\n", cfg.Notify.Channel)
			fmt.Fprintf(out, "protected_clusters: %s\n", strings.Join(cfg.ProtectedClusters, ","))
			fmt.Fprintf(out, "metrics: %t\n", cfg.Metrics.Enabled)
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file or directory (env "+envConfigPath+")")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before config (ignored if missing)")
	return cmd
}

func newConfigLockCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "lock",
		Short: "Write BLAKE3 checksums for the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				configPath = config.DefaultFilename
			}
			report, err := config.Lock(configPath, dryRun)
			if err != nil {
				return fmt.Errorf("config lock failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, f := range report.Files {
				if !f.Exists {
					fmt.Fprintf(out, "skip %s (missing)\n", f.Filename)
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", f.Hash, f.Filename)
			}
			if report.Written {
				fmt.Fprintf(out, "wrote %s\n", report.ChecksumPath)
			} else {
				fmt.Fprintln(out, "dry run, nothing written")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file or directory (default ./config.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute hashes without writing .checksums")
	return cmd
}
