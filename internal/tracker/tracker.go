// Package tracker is the remote tracker boundary: issue creation, label
// creation, and project association against GitHub.
package tracker

import "context"

// IssueRequest describes one issue to create.
type IssueRequest struct {
	Repository string // owner/name
	Title      string
	Body       string
	Labels     []string
	Assignees  []string
}

// Client is the set of remote operations the engine drives. Every call
// blocks until the remote responds; the engine is sequential by contract.
type Client interface {
	// Viewer returns the login of the authenticated user. Used as the
	// prerequisite auth check before any work starts.
	Viewer(ctx context.Context) (string, error)

	// CreateIssue creates an issue and returns its HTML URL.
	CreateIssue(ctx context.Context, req IssueRequest) (string, error)

	// CreateLabel creates a label on the repository with the given 6-hex
	// color (no leading '#').
	CreateLabel(ctx context.Context, repository, name, color string) error

	// AddToProject adds the issue at issueURL to the owner's project
	// (Projects v2) identified by number.
	AddToProject(ctx context.Context, owner string, number int, issueURL string) error
}
