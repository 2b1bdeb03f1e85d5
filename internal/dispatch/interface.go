package dispatch

import (
	"context"
	"time"

	"github.com/mattjoyce/ecsbot/internal/ecs"
)

//go:generate mockgen -destination=mocks/mock_collaborators.go -package=mocks github.com/mattjoyce/ecsbot/internal/dispatch Orchestrator,MetricsSource,Publisher

// Orchestrator is the container control plane.
type Orchestrator interface {
	DescribeService(ctx context.Context, cluster, service string) (*ecs.Service, error)
	ListRunningTasks(ctx context.Context, cluster, service string) (int, error)
	ForceRedeploy(ctx context.Context, cluster, service string) (string, error)
}

// MetricsSource provides best-effort utilization samples.
type MetricsSource interface {
	AverageCPUUtilization(ctx context.Context, cluster, service string, start, end time.Time) (float64, error)
}

// Publisher delivers operations alerts.
type Publisher interface {
	Publish(ctx context.Context, subject, body string) error
}
