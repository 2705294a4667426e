package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Static errors for err113 compliance.
var (
	ErrManifestContentRequired = errors.New("manifest content is required")
)

// Deploy implements ptl.Client.Deploy. manifest is the serialized YAML
// document; a Status other than "Okay" is returned as *ptl.StatusError.
func (c *Client) Deploy(ctx context.Context, manifest []byte) (*ptl.DeployResponse, error) {
	if err := c.requireIdentity(); err != nil {
		return nil, err
	}

	if len(manifest) == 0 {
		return nil, ErrManifestContentRequired
	}

	resp, err := c.httpClient.PutRaw(ctx, constants.PathDeploy, manifest, constants.ContentTypeYAML)
	if err != nil {
		return nil, fmt.Errorf("submitting deploy: %w", withReason("deploy", err))
	}

	var deploy ptl.DeployResponse

	if err := json.Unmarshal(resp.Body, &deploy); err != nil {
		return nil, fmt.Errorf("parsing deploy response: %w", err)
	}

	if deploy.Status != ptl.StatusOkay {
		return &deploy, &ptl.StatusError{Operation: "deploy", Status: deploy.Status, Reason: deploy.Reason}
	}

	return &deploy, nil
}
