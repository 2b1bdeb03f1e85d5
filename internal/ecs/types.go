// Package ecs holds the service model the bot reports on and the AWS SDK
// adapter that produces it.
package ecs

import (
	"errors"
	"time"
)

// MaxEvents is the number of recent service events kept in a Service.
const MaxEvents = 3

// Collaborator errors. Adapters wrap AWS errors so callers can use errors.Is.
var (
	ErrServiceNotFound  = errors.New("service not found")
	ErrClusterNotFound  = errors.New("cluster not found")
	ErrPermissionDenied = errors.New("permission denied")
)

// IsNotFound reports whether err means the cluster or service does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrServiceNotFound) || errors.Is(err, ErrClusterNotFound)
}

// Deployment is one rollout of a service.
type Deployment struct {
	ID        string
	Status    string
	UpdatedAt time.Time
}

// Event is one entry from a service's event log.
type Event struct {
	CreatedAt time.Time
	Message   string
}

// Service is the descriptor returned by DescribeService.
type Service struct {
	Cluster      string
	Name         string
	Status       string
	DesiredCount int
	RunningCount int
	PendingCount int
	// Deployments are ordered as returned by ECS; the primary one first.
	Deployments []Deployment
	// Events are newest first and capped at MaxEvents.
	Events []Event
}

// Primary returns the PRIMARY deployment, falling back to the first one.
func (s *Service) Primary() (Deployment, bool) {
	if s == nil || len(s.Deployments) == 0 {
		return Deployment{}, false
	}
	for _, d := range s.Deployments {
		if d.Status == "PRIMARY" {
			return d, true
		}
	}
	return s.Deployments[0], true
}

// Snapshot is the read-only status view assembled for one request.
type Snapshot struct {
	Service
	// ListedTasks is the number of tasks ListTasks returned as RUNNING.
	ListedTasks int
	// CPUUtilization is a percentage; 0 when metrics were unavailable.
	CPUUtilization float64
}
