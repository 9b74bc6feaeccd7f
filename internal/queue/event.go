// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// Account activity actions published on the account.activity queue.
const (
	ActionRegistered = "registered"
	ActionLoggedIn   = "logged_in"
	ActionLoggedOut  = "logged_out"
)

// AccountActivityEvent is published whenever a session-relevant account
// operation completes.  It carries enough information for downstream
// consumers to log or alert without querying the primary database.
type AccountActivityEvent struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Action     string `json:"action"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
