package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/mattjoyce/ecsbot/internal/metrics"
	"github.com/mattjoyce/ecsbot/internal/replay"
)

// MaxTolerance bounds the accepted clock difference between Slack and us.
const MaxTolerance = 5 * time.Minute

const signatureVersion = "v0"

// Rejection reasons. Check returns one of these (possibly wrapped).
var (
	ErrNoSecret          = errors.New("signing secret not configured")
	ErrMissingHeaders    = errors.New("missing signature or timestamp header")
	ErrBadTimestamp      = errors.New("malformed request timestamp")
	ErrStale             = errors.New("request timestamp outside tolerance")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrReplayed          = errors.New("request already processed")
	ErrReplayGuard       = errors.New("replay guard unavailable")
)

// VerifierConfig configures a Verifier.
type VerifierConfig struct {
	Secret string
	// Tolerance is clamped to (0, MaxTolerance]; zero means MaxTolerance.
	Tolerance time.Duration
	Guard     replay.Guard
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Verifier authenticates webhook requests. Safe for concurrent use.
type Verifier struct {
	secret    []byte
	tolerance time.Duration
	guard     replay.Guard
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewVerifier builds a Verifier from cfg.
func NewVerifier(cfg VerifierConfig) *Verifier {
	tol := cfg.Tolerance
	if tol <= 0 || tol > MaxTolerance {
		tol = MaxTolerance
	}
	guard := cfg.Guard
	if guard == nil {
		guard = replay.Nop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		secret:    []byte(cfg.Secret),
		tolerance: tol,
		guard:     guard,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// Verify reports whether the request is authentic and fresh.
func (v *Verifier) Verify(headers Headers, rawBody []byte, receivedAt time.Time) bool {
	return v.Check(context.Background(), InboundRequest{Headers: headers, Body: rawBody, ReceivedAt: receivedAt}) == nil
}

// Check verifies req and returns the rejection reason, or nil. It never panics.
func (v *Verifier) Check(ctx context.Context, req InboundRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("signature verification panic: %v", r)
		}
		v.record(err)
	}()

	if len(v.secret) == 0 {
		return ErrNoSecret
	}

	signature := req.Headers.Get(HeaderSignature)
	timestamp := req.Headers.Get(HeaderTimestamp)
	if signature == "" || timestamp == "" {
		return ErrMissingHeaders
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}

	now := req.ReceivedAt
	if now.IsZero() {
		now = time.Now()
	}
	// Whole seconds: time.Duration saturates for far-off timestamps.
	tol := int64(v.tolerance / time.Second)
	if d := now.Unix() - ts; d > tol || d < -tol {
		return ErrStale
	}

	expected := Sign(v.secret, timestamp, req.Body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return ErrSignatureMismatch
	}

	// Entries outlive the window on both sides of now.
	fresh, err := v.guard.Claim(ctx, signature, 2*v.tolerance)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReplayGuard, err)
	}
	if !fresh {
		return ErrReplayed
	}
	return nil
}

func (v *Verifier) record(err error) {
	if err == nil {
		v.metrics.Verification("ok")
		return
	}
	reason := reasonLabel(err)
	v.metrics.Verification(reason)
	v.logger.Warn("webhook signature rejected", "reason", reason, "error", err)
}

func reasonLabel(err error) string {
	switch {
	case errors.Is(err, ErrNoSecret):
		return "no_secret"
	case errors.Is(err, ErrMissingHeaders):
		return "missing_headers"
	case errors.Is(err, ErrBadTimestamp):
		return "bad_timestamp"
	case errors.Is(err, ErrStale):
		return "stale"
	case errors.Is(err, ErrSignatureMismatch):
		return "mismatch"
	case errors.Is(err, ErrReplayed):
		return "replayed"
	case errors.Is(err, ErrReplayGuard):
		return "guard_error"
	default:
		return "error"
	}
}

// Sign computes the "v0=<hex>" signature for a timestamp and raw body.
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signatureVersion + ":" + timestamp + ":"))
	mac.Write(body)
	return signatureVersion + "=" + hex.EncodeToString(mac.Sum(nil))
}

// SignedHeaders returns the two headers Slack would send for body at t.
func SignedHeaders(secret string, t time.Time, body []byte) Headers {
	ts := strconv.FormatInt(t.Unix(), 10)
	return Headers{
		HeaderTimestamp: ts,
		HeaderSignature: Sign([]byte(secret), ts, body),
	}
}
