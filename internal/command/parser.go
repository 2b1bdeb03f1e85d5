package command

import (
	"strings"
)

// Parse turns slash-command text into a Command.
//
// It returns ErrHelp for empty text or "help" (any case), and a *UsageError
// when cluster or service is missing. Unrecognized action values resolve to
// ActionStatus; the literal is kept in Command.RawAction.
func Parse(text, requester string) (Command, error) {
	text = strings.TrimSpace(text)
	if text == "" || strings.EqualFold(text, "help") {
		return Command{}, ErrHelp
	}

	params := Params(text)

	cmd := Command{
		Cluster:   strings.TrimSpace(params["cluster"]),
		Service:   strings.TrimSpace(params["service"]),
		Action:    ActionStatus,
		Requester: strings.TrimSpace(requester),
		RawAction: params["action"],
	}
	if cmd.Requester == "" {
		cmd.Requester = DefaultRequester
	}

	var missing []string
	if cmd.Cluster == "" {
		missing = append(missing, "cluster")
	}
	if cmd.Service == "" {
		missing = append(missing, "service")
	}
	if len(missing) > 0 {
		return Command{}, &UsageError{Missing: missing}
	}

	if cmd.RawAction != "" {
		cmd.Action, _ = lookupAction(cmd.RawAction)
	}
	return cmd, nil
}

// Params splits text into key=value pairs. Each token is split on its first
// "="; tokens without one are skipped. Later keys override earlier ones.
func Params(text string) map[string]string {
	params := make(map[string]string)
	for _, token := range strings.Fields(text) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return params
}
