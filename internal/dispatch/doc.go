// Package dispatch executes parsed commands against the orchestration
// platform.
//
// # Actions
//
// A command resolves to exactly one of two actions:
//
//   - status: describe the service, count its running tasks and sample CPU
//     utilization for the current UTC day. Utilization is best-effort; any
//     metrics failure reports 0.
//   - restart: force a new deployment and return as soon as the control plane
//     acknowledges it. No polling for convergence.
//
// # Failure Handling
//
// Collaborator errors never leave Dispatch. They become an Outcome with
// Success=false and a Kind: KindNotFound when the cluster or service does not
// exist, KindCollaborator for anything else.
//
// # Notifications
//
// After a successful restart the notify.Policy is consulted. When it says
// so, exactly one Publish is attempted. A delivery failure is logged and
// counted but the restart is still reported as successful.
package dispatch
