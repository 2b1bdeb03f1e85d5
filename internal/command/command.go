// Package command parses slash-command text into a validated Command.
//
// The grammar is a whitespace-separated list of key=value tokens:
//
//	cluster=<name> service=<name> [action=status|restart]
//
// Tokens without "=" and unknown keys are ignored so the grammar can grow
// without breaking older clients.
package command

import (
	"errors"
	"strings"
)

// Action is the operation requested against a service.
type Action string

const (
	ActionStatus  Action = "status"
	ActionRestart Action = "restart"
)

// DefaultRequester is used when the webhook carries no user name.
const DefaultRequester = "unknown"

// ErrHelp is returned by Parse when the text asks for help (or is empty).
var ErrHelp = errors.New("help requested")

// Command is a validated request against one service.
type Command struct {
	Cluster   string
	Service   string
	Action    Action
	Requester string

	// RawAction is the action value as typed, empty when absent.
	RawAction string
}

// UnknownAction reports whether an action was given that is neither status
// nor restart. Such commands run as status.
func (c Command) UnknownAction() bool {
	if c.RawAction == "" {
		return false
	}
	_, ok := lookupAction(c.RawAction)
	return !ok
}

// UsageError reports missing or empty required parameters.
type UsageError struct {
	Missing []string
}

func (e *UsageError) Error() string {
	return "missing required parameters: " + strings.Join(e.Missing, ", ")
}

func lookupAction(raw string) (Action, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ActionStatus):
		return ActionStatus, true
	case string(ActionRestart):
		return ActionRestart, true
	}
	return ActionStatus, false
}
