package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/ecs"
	"github.com/mattjoyce/ecsbot/internal/log"
	"github.com/mattjoyce/ecsbot/internal/metrics"
	"github.com/mattjoyce/ecsbot/internal/notify"
)

// Dispatcher runs commands. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	orch      Orchestrator
	cpu       MetricsSource
	publisher Publisher
	policy    notify.Policy
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithMetrics records command and collaborator metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New creates a Dispatcher. cpu and publisher may be nil: status then reports
// 0% utilization and no alert is ever sent.
func New(orch Orchestrator, cpu MetricsSource, publisher Publisher, policy notify.Policy, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		orch:      orch,
		cpu:       cpu,
		publisher: publisher,
		policy:    policy,
		logger:    log.WithComponent("dispatch"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs cmd and always returns an Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command) Outcome {
	logger := log.WithTarget(d.logger, cmd.Cluster, cmd.Service).With("action", string(cmd.Action), "requester", cmd.Requester)
	if cmd.UnknownAction() {
		logger.Warn("unrecognized action, running status", "raw_action", cmd.RawAction)
	}

	var out Outcome
	switch cmd.Action {
	case command.ActionRestart:
		out = d.restart(ctx, cmd, logger)
	default:
		out = d.status(ctx, cmd, logger)
	}
	out.Command = cmd

	d.metrics.Command(string(cmd.Action), out.Result())
	if out.Success {
		logger.Info("command completed", "deployment_id", out.DeploymentID, "notified", out.Notified)
	} else {
		logger.Warn("command failed", "kind", out.Kind.String(), "message", out.Message)
	}
	return out
}

func (d *Dispatcher) status(ctx context.Context, cmd command.Command, logger *slog.Logger) Outcome {
	start := time.Now()
	svc, err := d.orch.DescribeService(ctx, cmd.Cluster, cmd.Service)
	d.metrics.ObserveCall("describe_service", start, err)
	if err == nil && svc == nil {
		err = ecs.ErrServiceNotFound
	}
	if err != nil {
		return failure(cmd, "Error getting service status", err)
	}

	start = time.Now()
	tasks, err := d.orch.ListRunningTasks(ctx, cmd.Cluster, cmd.Service)
	d.metrics.ObserveCall("list_tasks", start, err)
	if err != nil {
		return failure(cmd, "Error getting service status", err)
	}

	snap := &ecs.Snapshot{
		Service:        *svc,
		ListedTasks:    tasks,
		CPUUtilization: d.cpuUtilization(ctx, cmd, logger),
	}
	if len(snap.Events) > ecs.MaxEvents {
		snap.Events = snap.Events[:ecs.MaxEvents]
	}

	return Outcome{
		Success:  true,
		Message:  fmt.Sprintf("Service %s is %s", cmd.Service, svc.Status),
		Snapshot: snap,
	}
}

// cpuUtilization samples from the start of the current UTC day to now.
// Failures are logged and read as 0.
func (d *Dispatcher) cpuUtilization(ctx context.Context, cmd command.Command, logger *slog.Logger) float64 {
	if d.cpu == nil {
		return 0
	}
	end := d.now().UTC()
	start := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	called := time.Now()
	v, err := d.cpu.AverageCPUUtilization(ctx, cmd.Cluster, cmd.Service, start, end)
	d.metrics.ObserveCall("cpu_utilization", called, err)
	if err != nil {
		logger.Debug("cpu utilization unavailable", "error", err)
		return 0
	}
	return v
}

func (d *Dispatcher) restart(ctx context.Context, cmd command.Command, logger *slog.Logger) Outcome {
	start := time.Now()
	deploymentID, err := d.orch.ForceRedeploy(ctx, cmd.Cluster, cmd.Service)
	d.metrics.ObserveCall("force_redeploy", start, err)
	if err != nil {
		return failure(cmd, "Error restarting service", err)
	}

	out := Outcome{
		Success:      true,
		Message:      "Service restart initiated",
		DeploymentID: deploymentID,
	}

	if d.publisher == nil || !d.policy.ShouldNotify(cmd.Cluster) {
		return out
	}

	alert := notify.NewAlert(cmd.Cluster, cmd.Service, cmd.Requester, deploymentID, d.now())
	start = time.Now()
	err = d.publisher.Publish(ctx, alert.Subject(), alert.Body())
	d.metrics.ObserveCall("publish", start, err)
	if err != nil {
		d.metrics.Notification("failed")
		logger.Error("restart notification failed", "alert_id", alert.ID, "error", err)
		return out
	}
	d.metrics.Notification("sent")
	logger.Info("restart notification sent", "alert_id", alert.ID)
	out.Notified = true
	return out
}

func failure(cmd command.Command, prefix string, err error) Outcome {
	if ecs.IsNotFound(err) {
		msg := fmt.Sprintf("Service '%s' not found in cluster '%s'", cmd.Service, cmd.Cluster)
		if errors.Is(err, ecs.ErrClusterNotFound) {
			msg = fmt.Sprintf("Cluster '%s' not found", cmd.Cluster)
		}
		return Outcome{Kind: KindNotFound, Message: msg}
	}
	if errors.Is(err, ecs.ErrPermissionDenied) {
		return Outcome{Kind: KindCollaborator, Message: fmt.Sprintf("%s: permission denied (%v)", prefix, err)}
	}
	return Outcome{Kind: KindCollaborator, Message: fmt.Sprintf("%s: %v", prefix, err)}
}
