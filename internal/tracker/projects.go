package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Projects v2 has no REST surface, so association goes through two small
// GraphQL calls on the same authenticated HTTP client.

const graphqlEndpoint = "https://api.github.com/graphql"

const projectIDQuery = `
query($owner: String!, $number: Int!) {
  organization(login: $owner) { projectV2(number: $number) { id } }
  user(login: $owner) { projectV2(number: $number) { id } }
}`

const issueIDQuery = `
query($url: URI!) {
  resource(url: $url) { ... on Issue { id } }
}`

const addItemMutation = `
mutation($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: {projectId: $projectId, contentId: $contentId}) {
    item { id }
  }
}`

// AddToProject adds the issue at issueURL to the owner's project with the
// given number. The owner may be an organization or a user.
func (g *GitHub) AddToProject(ctx context.Context, owner string, number int, issueURL string) error {
	var projectResp struct {
		Organization *struct {
			ProjectV2 *struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"organization"`
		User *struct {
			ProjectV2 *struct {
				ID string `json:"id"`
			} `json:"projectV2"`
		} `json:"user"`
	}
	err := g.graphql(ctx, projectIDQuery, map[string]any{"owner": owner, "number": number}, &projectResp)
	if err != nil {
		return fmt.Errorf("failed to resolve project %d for %s: %w", number, owner, err)
	}

	var projectID string
	if projectResp.Organization != nil && projectResp.Organization.ProjectV2 != nil {
		projectID = projectResp.Organization.ProjectV2.ID
	} else if projectResp.User != nil && projectResp.User.ProjectV2 != nil {
		projectID = projectResp.User.ProjectV2.ID
	}
	if projectID == "" {
		return fmt.Errorf("project %d not found for owner %s", number, owner)
	}

	var issueResp struct {
		Resource *struct {
			ID string `json:"id"`
		} `json:"resource"`
	}
	if err := g.graphql(ctx, issueIDQuery, map[string]any{"url": issueURL}, &issueResp); err != nil {
		return fmt.Errorf("failed to resolve issue %s: %w", issueURL, err)
	}
	if issueResp.Resource == nil || issueResp.Resource.ID == "" {
		return fmt.Errorf("issue %s not found", issueURL)
	}

	vars := map[string]any{"projectId": projectID, "contentId": issueResp.Resource.ID}
	if err := g.graphql(ctx, addItemMutation, vars, &struct{}{}); err != nil {
		return fmt.Errorf("failed to add issue to project %d: %w", number, err)
	}

	g.logger.Info("added issue to project",
		zap.String("owner", owner),
		zap.Int("project_number", number),
		zap.String("url", issueURL),
	)

	return nil
}

type graphqlError struct {
	Message string `json:"message"`
}

func (g *GitHub) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql request failed with status %s", resp.Status)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	// A query that resolves one of several alternatives (org vs user owner)
	// can return partial data alongside errors; data wins when present.
	if len(envelope.Errors) > 0 && len(envelope.Data) == 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("failed to decode graphql data: %w", err)
		}
	}
	return nil
}
