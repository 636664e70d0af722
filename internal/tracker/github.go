package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// GitHub implements Client against the GitHub API.
type GitHub struct {
	api    *github.Client
	http   *http.Client
	logger *zap.Logger
}

// NewGitHub creates a GitHub-backed tracker client authenticated with a
// static token.
func NewGitHub(accessToken string, logger *zap.Logger) *GitHub {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &GitHub{
		api:    github.NewClient(tc),
		http:   tc,
		logger: logger,
	}
}

// Viewer returns the authenticated user's login.
func (g *GitHub) Viewer(ctx context.Context) (string, error) {
	user, _, err := g.api.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to look up authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// CreateIssue creates an issue and returns its HTML URL. A failure caused
// by a nonexistent label is reported as a KindMissingLabel error so the
// caller can repair and retry.
func (g *GitHub) CreateIssue(ctx context.Context, req IssueRequest) (string, error) {
	owner, name, err := splitRepo(req.Repository)
	if err != nil {
		return "", err
	}

	issueReq := &github.IssueRequest{
		Title: github.String(req.Title),
		Body:  github.String(req.Body),
	}
	if len(req.Labels) > 0 {
		labels := req.Labels
		issueReq.Labels = &labels
	}
	if len(req.Assignees) > 0 {
		assignees := req.Assignees
		issueReq.Assignees = &assignees
	}

	issue, _, err := g.api.Issues.Create(ctx, owner, name, issueReq)
	if err != nil {
		return "", classifyCreateErr(err)
	}

	g.logger.Info("created issue",
		zap.String("repository", req.Repository),
		zap.String("title", req.Title),
		zap.String("url", issue.GetHTMLURL()),
	)

	return issue.GetHTMLURL(), nil
}

// CreateLabel creates a label on the repository.
func (g *GitHub) CreateLabel(ctx context.Context, repository, labelName, color string) error {
	owner, name, err := splitRepo(repository)
	if err != nil {
		return err
	}

	_, _, err = g.api.Issues.CreateLabel(ctx, owner, name, &github.Label{
		Name:  github.String(labelName),
		Color: github.String(color),
	})
	if err != nil {
		return fmt.Errorf("failed to create label %q on %s: %w", labelName, repository, err)
	}

	g.logger.Info("created label",
		zap.String("repository", repository),
		zap.String("label", labelName),
		zap.String("color", color),
	)

	return nil
}

// classifyCreateErr wraps an issue-creation failure, tagging it as
// KindMissingLabel when the validation response or message points at a
// nonexistent label.
func classifyCreateErr(err error) error {
	var ghErr *github.ErrorResponse
	structural := false
	if errors.As(err, &ghErr) {
		for _, e := range ghErr.Errors {
			if strings.EqualFold(e.Resource, "Label") || strings.EqualFold(e.Field, "labels") {
				structural = true
				break
			}
		}
	}
	if label, ok := MissingLabelName(err); ok || structural {
		if !ok {
			// Validation response named the labels field but the message
			// carried no label name; nothing to repair with.
			return &Error{Kind: KindUnknown, Op: "create issue", Err: err}
		}
		return &Error{Kind: KindMissingLabel, Label: label, Op: "create issue", Err: err}
	}
	return &Error{Kind: KindUnknown, Op: "create issue", Err: err}
}

func splitRepo(repository string) (string, string, error) {
	owner, name, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("invalid repository %q, want owner/name", repository)
	}
	return owner, name, nil
}
