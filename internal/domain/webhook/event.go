// Package webhook defines domain types for inbound GitHub webhook events.
package webhook

import "time"

// EventIssues is the X-GitHub-Event header value for issue events.
const EventIssues = "issues"

// ActionOpened is the only issue action this service reacts to.
const ActionOpened = "opened"

// IssueEvent is a normalized "issues" webhook event.
type IssueEvent struct {
	Action          string    `json:"action"`
	RepositoryOwner string    `json:"repository_owner"`
	RepositoryName  string    `json:"repository_name"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	ReceivedAt      time.Time `json:"received_at"`
}
