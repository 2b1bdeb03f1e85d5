package dispatch

import (
	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/ecs"
)

// Kind classifies a failed Outcome.
type Kind int

const (
	KindNone Kind = iota
	KindNotFound
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindCollaborator:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the result of one dispatched command.
type Outcome struct {
	Command      command.Command
	Success      bool
	Kind         Kind
	Message      string
	DeploymentID string

	// Snapshot is set for successful status commands.
	Snapshot *ecs.Snapshot

	// Notified reports whether an alert was delivered.
	Notified bool
}

// Result is the metrics label for the outcome.
func (o Outcome) Result() string {
	if o.Success {
		return "success"
	}
	return o.Kind.String()
}
