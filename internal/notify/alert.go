package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Alert describes a restart on a protected cluster.
type Alert struct {
	ID           string
	Cluster      string
	Service      string
	Requester    string
	DeploymentID string
	At           time.Time
}

// NewAlert stamps a fresh id on the alert fields.
func NewAlert(cluster, service, requester, deploymentID string, at time.Time) Alert {
	return Alert{
		ID:           uuid.NewString(),
		Cluster:      cluster,
		Service:      service,
		Requester:    requester,
		DeploymentID: deploymentID,
		At:           at.UTC(),
	}
}

// Subject is the one-line summary used as the message subject.
func (a Alert) Subject() string {
	return fmt.Sprintf("ECS Service Restart - %s/%s", a.Cluster, a.Service)
}

// Body is the plain-text message.
func (a Alert) Body() string {
	deployment := a.DeploymentID
	if deployment == "" {
		deployment = "unknown"
	}
	return fmt.Sprintf(`ECS service restart initiated via Slack.

Cluster: %s
Service: %s
User: %s
Time: %s
Deployment ID: %s
Alert ID: %s

This is an automated notification from ecsbot.
`, a.Cluster, a.Service, a.Requester, a.At.Format("2006-01-02 15:04:05 UTC"), deployment, a.ID)
}
