package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjoyce/ecsbot/internal/command"
	"github.com/mattjoyce/ecsbot/internal/config"
	"github.com/mattjoyce/ecsbot/internal/dispatch"
	"github.com/mattjoyce/ecsbot/internal/ecs"
	"github.com/mattjoyce/ecsbot/internal/metrics"
	"github.com/mattjoyce/ecsbot/internal/replay"
	"github.com/mattjoyce/ecsbot/internal/slack"
)

const testSecret = "8f742231b10e8888abcd99yyyzzz85a5"

// fakeDispatcher records commands and returns a canned outcome.
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []command.Command
	outcome func(command.Command) dispatch.Outcome
}

func (f *fakeDispatcher) Dispatch(_ context.Context, cmd command.Command) dispatch.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()
	if f.outcome != nil {
		return f.outcome(cmd)
	}
	return dispatch.Outcome{
		Command:  cmd,
		Success:  true,
		Snapshot: &ecs.Snapshot{Service: ecs.Service{Status: "ACTIVE", DesiredCount: 2, RunningCount: 2}},
	}
}

func (f *fakeDispatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type testServer struct {
	server     *Server
	handler    http.Handler
	dispatcher *fakeDispatcher
	metrics    *metrics.Metrics
}

func newTestServer(t *testing.T, cfg Config) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m, err := metrics.New()
	require.NoError(t, err)

	verifier := slack.NewVerifier(slack.VerifierConfig{
		Secret:  testSecret,
		Guard:   replay.NewMemory(10 * time.Minute),
		Metrics: m,
		Logger:  logger,
	})
	d := &fakeDispatcher{}
	s := New(cfg, verifier, d, m, logger)
	return &testServer{server: s, handler: s.Handler(), dispatcher: d, metrics: m}
}

func formBody(text, user string) []byte {
	v := url.Values{}
	v.Set("command", "/ecs-status")
	v.Set("text", text)
	v.Set("user_name", user)
	return []byte(v.Encode())
}

func signedRequest(body []byte, at time.Time) *http.Request {
	req := httptest.NewRequest(http.MethodPost, DefaultPath, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range slack.SignedHeaders(testSecret, at, body) {
		req.Header.Set(k, v)
	}
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeReply(t *testing.T, rec *httptest.ResponseRecorder) slack.Response {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp slack.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, slack.ResponseTypeEphemeral, resp.ResponseType)
	return resp
}

func assertUnauthorized(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var resp slack.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid signature", resp.Error)
}

func TestHandleCommand_StatusReply(t *testing.T) {
	ts := newTestServer(t, Config{})

	rec := serve(ts.handler, signedRequest(formBody("cluster=prod service=api", "alice"), time.Now()))
	resp := decodeReply(t, rec)

	assert.Contains(t, resp.Text, "*Service Status Report*")
	assert.Contains(t, resp.Text, "*Cluster:* prod")
	require.Equal(t, 1, ts.dispatcher.count())
	assert.Equal(t, command.Command{
		Cluster:   "prod",
		Service:   "api",
		Action:    command.ActionStatus,
		Requester: "alice",
	}, ts.dispatcher.calls[0])
}

func TestHandleCommand_InvalidSignature(t *testing.T) {
	ts := newTestServer(t, Config{})

	body := formBody("cluster=prod service=api action=restart", "mallory")
	req := signedRequest(body, time.Now())
	req.Header.Set(slack.HeaderSignature, "v0="+strings.Repeat("0", 64))

	assertUnauthorized(t, serve(ts.handler, req))
	assert.Zero(t, ts.dispatcher.count())
}

func TestHandleCommand_MissingHeaders(t *testing.T) {
	ts := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodPost, DefaultPath, strings.NewReader(string(formBody("help", "alice"))))
	assertUnauthorized(t, serve(ts.handler, req))
	assert.Zero(t, ts.dispatcher.count())
}

func TestHandleCommand_StaleTimestamp(t *testing.T) {
	ts := newTestServer(t, Config{})

	req := signedRequest(formBody("cluster=prod service=api", "alice"), time.Now().Add(-6*time.Minute))
	assertUnauthorized(t, serve(ts.handler, req))
	assert.Zero(t, ts.dispatcher.count())
}

func TestHandleCommand_ReplayRejected(t *testing.T) {
	ts := newTestServer(t, Config{})
	body := formBody("cluster=prod service=api action=restart", "alice")
	at := time.Now()

	decodeReply(t, serve(ts.handler, signedRequest(body, at)))
	assertUnauthorized(t, serve(ts.handler, signedRequest(body, at)))
	assert.Equal(t, 1, ts.dispatcher.count())
}

func TestHandleCommand_OversizedBody(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodySize: 32})

	req := signedRequest(formBody("cluster=prod service=api "+strings.Repeat("x", 64), "alice"), time.Now())
	assertUnauthorized(t, serve(ts.handler, req))
	assert.Zero(t, ts.dispatcher.count())
}

func TestHandleCommand_HelpAndUsage(t *testing.T) {
	ts := newTestServer(t, Config{SlashCommand: "/ops"})

	for _, text := range []string{"", "help", "HELP"} {
		resp := decodeReply(t, serve(ts.handler, signedRequest(formBody(text, "alice"), time.Now())))
		assert.Contains(t, resp.Text, "*ECS Management Commands*", "text %q", text)
		assert.Contains(t, resp.Text, "`/ops help`")
	}

	resp := decodeReply(t, serve(ts.handler, signedRequest(formBody("cluster=prod", "alice"), time.Now())))
	assert.Contains(t, resp.Text, "Missing required parameters!")
	assert.Zero(t, ts.dispatcher.count())
}

func TestHandleCommand_FailureOutcome(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.dispatcher.outcome = func(cmd command.Command) dispatch.Outcome {
		return dispatch.Outcome{
			Command: cmd,
			Kind:    dispatch.KindNotFound,
			Message: "Service 'ghost' not found in cluster 'prod'",
		}
	}

	resp := decodeReply(t, serve(ts.handler, signedRequest(formBody("cluster=prod service=ghost", "alice"), time.Now())))
	assert.Equal(t, ":x: *Error:* Service 'ghost' not found in cluster 'prod'", resp.Text)
}

func TestHandleCommand_CustomPath(t *testing.T) {
	ts := newTestServer(t, Config{Path: "/hooks/ecs"})

	rec := serve(ts.handler, signedRequest(formBody("help", "alice"), time.Now()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := signedRequest(formBody("help", "bob"), time.Now())
	req.URL.Path = "/hooks/ecs"
	decodeReply(t, serve(ts.handler, req))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Config{})
	ts.server.started = time.Now().Add(-90 * time.Second)

	rec := serve(ts.handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, int64(90))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, Config{MetricsEnabled: true})

	serve(ts.handler, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec := serve(ts.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ecsbot_http_requests_total{path="/healthz",status="200"} 1`)

	disabled := newTestServer(t, Config{})
	rec = serve(disabled.handler, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFromGlobalConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Webhook.MaxBodySize = "64KB"
	cfg.Webhook.Path = "/slack/ecs"

	wc, err := FromGlobalConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), wc.MaxBodySize)
	assert.Equal(t, "/slack/ecs", wc.Path)
	assert.Equal(t, "/ecs-status", wc.SlashCommand)
	assert.True(t, wc.MetricsEnabled)

	cfg.Webhook.MaxBodySize = "huge"
	_, err = FromGlobalConfig(cfg)
	assert.Error(t, err)

	_, err = FromGlobalConfig(nil)
	assert.Error(t, err)
}
