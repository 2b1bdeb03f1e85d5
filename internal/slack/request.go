package slack

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mattjoyce/ecsbot/internal/command"
)

// Header names used by Slack request signing.
const (
	HeaderSignature = "X-Slack-Signature"
	HeaderTimestamp = "X-Slack-Request-Timestamp"
)

// Headers is a raw header mapping whose casing is not trusted.
type Headers map[string]string

// Get looks key up case-insensitively and trims the value.
func (h Headers) Get(key string) string {
	if len(h) == 0 {
		return ""
	}
	if v, ok := h[key]; ok {
		return strings.TrimSpace(v)
	}
	for existing, value := range h {
		if strings.EqualFold(strings.TrimSpace(existing), key) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// HeadersFrom flattens an http.Header, keeping the first value of each key.
func HeadersFrom(h http.Header) Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// InboundRequest is one webhook delivery as received.
type InboundRequest struct {
	Headers    Headers
	Body       []byte
	ReceivedAt time.Time
}

// SlashCommand holds the form fields used from a slash-command payload.
type SlashCommand struct {
	Command  string
	Text     string
	UserName string
	UserID   string
	Channel  string
}

// ParseSlashCommand decodes a form-encoded body. Malformed pairs are skipped
// rather than failing the whole request.
func ParseSlashCommand(body []byte) SlashCommand {
	values, _ := url.ParseQuery(string(body))
	sc := SlashCommand{
		Command:  values.Get("command"),
		Text:     strings.TrimSpace(values.Get("text")),
		UserName: strings.TrimSpace(values.Get("user_name")),
		UserID:   values.Get("user_id"),
		Channel:  values.Get("channel_name"),
	}
	if sc.UserName == "" {
		sc.UserName = command.DefaultRequester
	}
	return sc
}
