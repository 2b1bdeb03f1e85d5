// Package webhook serves the Slack slash-command endpoint.
//
// Every POST is authenticated before its body is interpreted. The verified
// form payload is parsed into a command, dispatched against the orchestrator
// and rendered as an ephemeral Slack reply.
//
// # Request Flow
//
//  1. HTTP POST arrives at the configured path
//  2. Body read up to max_body_size
//  3. Signature, timestamp freshness and replay checked (401 on failure)
//  4. Form decoded and command text parsed (help and usage replies short-circuit)
//  5. Command dispatched
//  6. 200 with {"response_type":"ephemeral","text":...}
//
// # Error Responses
//
// Authentication failure is the only non-200 outcome of the command path:
//
//	401 {"error":"Invalid signature"}
//
// Oversized or unreadable bodies are treated as failed authentication.
// Dispatch failures are reported in the reply text.
//
// # Other Endpoints
//
//   - GET /healthz returns {"status":"ok","uptime_seconds":n}
//   - GET /metrics exposes Prometheus metrics when enabled
package webhook
