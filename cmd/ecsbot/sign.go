package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattjoyce/ecsbot/internal/config"
	"github.com/mattjoyce/ecsbot/internal/slack"
)

// newSignCmd prints signing headers for a body, for testing with curl.
func newSignCmd() *cobra.Command {
	var (
		secret    string
		timestamp int64
		body      string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print Slack signature headers for a request body",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv(config.EnvSigningSecret)
			}
			if secret == "" {
				return fmt.Errorf("--secret is required (or set %s)", config.EnvSigningSecret)
			}

			at := time.Now()
			if timestamp > 0 {
				at = time.Unix(timestamp, 0)
			}
			headers := slack.SignedHeaders(secret, at, []byte(body))

			keys := make([]string, 0, len(headers))
			for k := range headers {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			out := cmd.OutOrStdout()
			for _, k := range keys {
				fmt.Fprintf(out, "%s: %s\n", k, headers[k])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "Signing secret (env "+config.EnvSigningSecret+")")
	cmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Unix timestamp to sign (default now)")
	cmd.Flags().StringVar(&body, "body", "", "Raw form-encoded request body")
	return cmd
}
