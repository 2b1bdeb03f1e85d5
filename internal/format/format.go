// Package format renders command results as Slack mrkdwn text.
package format

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/dispatch"
	"github.com/mattjoyce/ecsbot/internal/ecs"
)

// DefaultSlashCommand is used in help and usage text when none is configured.
const DefaultSlashCommand = "/ecs-status"

const (
	deploymentTimeLayout = "2006-01-02 15:04:05 UTC"
	eventTimeLayout      = "15:04:05"
	errorPrefix          = ":x: *Error:* "
)

// Formatter renders replies for one slash command name.
type Formatter struct {
	slash string
}

// New returns a Formatter; an empty slash uses DefaultSlashCommand.
func New(slash string) Formatter {
	slash = strings.TrimSpace(slash)
	if slash == "" {
		slash = DefaultSlashCommand
	}
	return Formatter{slash: slash}
}

// Help is the static help block.
func (f Formatter) Help() string {
	var b strings.Builder
	b.WriteString("*ECS Management Commands*\n\n")
	b.WriteString("*View Service Status:*\n")
	fmt.Fprintf(&b, "`%s cluster=<cluster-name> service=<service-name>`\n\n", f.slash)
	b.WriteString("*Restart Service:*\n")
	fmt.Fprintf(&b, "`%s cluster=<cluster-name> service=<service-name> action=restart`\n\n", f.slash)
	b.WriteString("*Examples:*\n")
	fmt.Fprintf(&b, "• `%s cluster=my-demo-app-cluster service=my-demo-app-service`\n", f.slash)
	fmt.Fprintf(&b, "• `%s cluster=production service=api-service action=restart`\n\n", f.slash)
	b.WriteString("*Parameters:*\n")
	b.WriteString("• `cluster` - ECS cluster name (required)\n")
	b.WriteString("• `service` - ECS service name (required)\n")
	b.WriteString("• `action` - Action to perform: status (default) or restart\n\n")
	b.WriteString("*Help:*\n")
	fmt.Fprintf(&b, "`%s help`\n", f.slash)
	return b.String()
}

// Usage explains a missing-parameter error.
func (f Formatter) Usage(err error) string {
	var b strings.Builder
	b.WriteString("Missing required parameters!")
	var usage *command.UsageError
	if errors.As(err, &usage) && len(usage.Missing) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(usage.Missing, ", "))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Usage: `%s cluster=<name> service=<name> action=<status|restart>`\n\n", f.slash)
	fmt.Fprintf(&b, "Example: `%s cluster=my-demo-app-cluster service=my-demo-app-service`\n", f.slash)
	return b.String()
}

// Error renders a failure line, distinct from any success output.
func (f Formatter) Error(message string) string {
	return errorPrefix + message
}

// Outcome renders a dispatched command's result.
func (f Formatter) Outcome(out dispatch.Outcome) string {
	if !out.Success {
		return f.Error(out.Message)
	}
	switch out.Command.Action {
	case command.ActionRestart:
		return f.restart(out)
	default:
		return f.status(out)
	}
}

func (f Formatter) status(out dispatch.Outcome) string {
	cmd := out.Command
	snap := out.Snapshot
	if snap == nil {
		snap = &ecs.Snapshot{}
	}

	var b strings.Builder
	if cmd.UnknownAction() {
		fmt.Fprintf(&b, "_Unknown action `%s`, showing status instead._\n\n", cmd.RawAction)
	}
	b.WriteString("*Service Status Report*\n\n")
	fmt.Fprintf(&b, "*Cluster:* %s\n", cmd.Cluster)
	fmt.Fprintf(&b, "*Service:* %s\n\n", cmd.Service)
	fmt.Fprintf(&b, "*Status:* %s\n", snap.Status)
	fmt.Fprintf(&b, "*Desired Tasks:* %d\n", snap.DesiredCount)
	fmt.Fprintf(&b, "*Running Tasks:* %d\n", snap.RunningCount)
	fmt.Fprintf(&b, "*Pending Tasks:* %d\n", snap.PendingCount)
	fmt.Fprintf(&b, "*Listed Running Tasks:* %d\n\n", snap.ListedTasks)
	fmt.Fprintf(&b, "*CPU Utilization:* %.1f%%\n\n", snap.CPUUtilization)

	b.WriteString("*Deployment:*\n")
	if d, ok := snap.Primary(); ok {
		fmt.Fprintf(&b, "- Primary: %s\n", d.Status)
		fmt.Fprintf(&b, "- Updated: %s\n\n", formatTime(d.UpdatedAt, deploymentTimeLayout))
	} else {
		b.WriteString("- Primary: N/A\n- Updated: N/A\n\n")
	}

	fmt.Fprintf(&b, "*Events (Last %d):*", ecs.MaxEvents)
	events := snap.Events
	if len(events) > ecs.MaxEvents {
		events = events[:ecs.MaxEvents]
	}
	if len(events) == 0 {
		b.WriteString("\n_No recent events_")
	}
	for _, e := range events {
		fmt.Fprintf(&b, "\n• %s - %s", formatTime(e.CreatedAt, eventTimeLayout), e.Message)
	}
	return b.String()
}

func (f Formatter) restart(out dispatch.Outcome) string {
	cmd := out.Command
	deployment := out.DeploymentID
	if deployment == "" {
		deployment = "unknown"
	}

	var b strings.Builder
	b.WriteString("*Service Restart Initiated* :white_check_mark:\n\n")
	fmt.Fprintf(&b, "*Cluster:* %s\n", cmd.Cluster)
	fmt.Fprintf(&b, "*Service:* %s\n", cmd.Service)
	fmt.Fprintf(&b, "*Deployment ID:* %s\n", deployment)
	fmt.Fprintf(&b, "*User:* %s\n\n", cmd.Requester)
	b.WriteString("The service is being restarted. New tasks will be deployed gradually.\n")
	b.WriteString("Check status in a few minutes with:\n")
	fmt.Fprintf(&b, "`%s cluster=%s service=%s`\n", f.slash, cmd.Cluster, cmd.Service)
	return b.String()
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(layout)
}
