//go:build integration

package integration

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushtolive/ptl/cmd/ptl/commands"
	"github.com/pushtolive/ptl/pkg/ptl"
)

func runPTL(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	app := commands.NewApp(commands.BuildInfo{Version: "integration"})
	app.Viper = viper.New()
	app.Stdout = &stdout
	app.Stderr = &stderr
	app.Getenv = func(key string) string { return env[key] }

	root := commands.NewRootCommand(app)
	root.SetArgs(append([]string{"--config-dir", filepath.Join(t.TempDir(), "config"), "--no-color"}, args...))

	err := root.ExecuteContext(context.Background())
	if testing.Verbose() {
		t.Log(stderr.String())
	}

	return stdout.String(), err
}

// TestWorkflow_DeployThenDelete pushes a branch and then deletes it.
func TestWorkflow_DeployThenDelete(t *testing.T) {
	api := NewFakeAPI(t, "ak", "sk")
	workspace := WriteWorkspace(t, map[string]string{
		"ptl.yml":           "name: demo\nservices:\n  web:\n    build: ./web\n  redis:\n    image: redis:7\n",
		"web/index.js":      "console.log('hi')",
		"web/.git/HEAD":     "ref: refs/heads/main",
		"web/.github/x.yml": "on: push",
	})

	env := map[string]string{
		"ENDPOINT":          api.URL(),
		"PTL_ACCESS_KEY":    "ak",
		"PTL_SECRET_KEY":    "sk",
		"GITHUB_WORKSPACE":  workspace,
		"GITHUB_EVENT_NAME": "push",
		"GITHUB_REF_TYPE":   "branch",
		"GITHUB_REF_NAME":   "feature-x",
	}

	_, err := runPTL(t, env, "--output", "json")
	require.NoError(t, err)
	assert.True(t, api.Deployed("demo/branch/feature-x"))

	env["GITHUB_EVENT_NAME"] = "delete"

	_, err = runPTL(t, env)
	require.NoError(t, err)
	assert.False(t, api.Deployed("demo/branch/feature-x"))

	// A second delete finds nothing and issues no DELETE.
	before := len(api.Requests())

	_, err = runPTL(t, env)
	require.NoError(t, err)

	after := api.Requests()[before:]
	assert.Equal(t, []string{"POST /v0/whoami", "GET /v0/projects/demo/branch/feature-x"}, after)
}

func TestWorkflow_InvalidCredentials(t *testing.T) {
	api := NewFakeAPI(t, "ak", "sk")
	workspace := WriteWorkspace(t, map[string]string{"ptl.yml": "name: demo\nservices: {}\n"})

	_, err := runPTL(t, map[string]string{
		"ENDPOINT":         api.URL(),
		"PTL_ACCESS_KEY":   "ak",
		"PTL_SECRET_KEY":   "wrong",
		"GITHUB_WORKSPACE": workspace,
	})
	require.Error(t, err)

	reason, ok := ptl.Reason(err)
	require.True(t, ok)
	assert.Equal(t, "invalid keys", reason)
	assert.Equal(t, []string{"POST /v0/whoami"}, api.Requests())
}
