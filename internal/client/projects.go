package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

func projectPath(app string, repo ptl.RepoContext) string {
	return fmt.Sprintf(constants.PathProjects, url.PathEscape(app), url.PathEscape(repo.Type), url.PathEscape(repo.Name))
}

// InstanceExists implements ptl.Client.InstanceExists. A 404 is a normal
// negative result; every other failure is returned.
func (c *Client) InstanceExists(ctx context.Context, app string, repo ptl.RepoContext) (bool, error) {
	if err := c.requireIdentity(); err != nil {
		return false, err
	}

	_, err := c.httpClient.Get(ctx, projectPath(app, repo), nil)
	if err != nil {
		if ptl.IsNotFound(err) {
			return false, nil
		}

		return false, fmt.Errorf("looking up %s (%s): %w", app, repo, err)
	}

	return true, nil
}

// Undeploy implements ptl.Client.Undeploy.
func (c *Client) Undeploy(ctx context.Context, app string, repo ptl.RepoContext) (*ptl.UndeployResponse, error) {
	if err := c.requireIdentity(); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Delete(ctx, projectPath(app, repo))
	if err != nil {
		return nil, fmt.Errorf("terminating %s (%s): %w", app, repo, withReason("undeploy", err))
	}

	var undeploy ptl.UndeployResponse

	if len(resp.Body) == 0 {
		return &undeploy, nil
	}

	if err := json.Unmarshal(resp.Body, &undeploy); err != nil {
		return nil, fmt.Errorf("parsing undeploy response: %w", err)
	}

	if undeploy.Status != "" && undeploy.Status != ptl.StatusOkay {
		return &undeploy, &ptl.StatusError{Operation: "undeploy", Status: undeploy.Status, Reason: undeploy.Reason}
	}

	return &undeploy, nil
}
