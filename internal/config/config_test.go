package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushtolive/ptl/internal/config"
	"github.com/pushtolive/ptl/pkg/ptl"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func loaderFor(t *testing.T, configDir string, env map[string]string) config.Loader {
	t.Helper()

	v := viper.New()
	v.Set(config.KeyConfigDir, configDir)

	return config.Loader{Viper: v, Getenv: envOf(env)}
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()
	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		settings, err := loaderFor(t, t.TempDir(), nil).Load()
		require.NoError(t, err)
		assert.Equal(t, "http://pushto.live/", settings.Endpoint)
		assert.False(t, settings.Debug)
		assert.Equal(t, "table", settings.Output)
		assert.Empty(t, settings.ConfigFile)
		assert.Equal(t, "push", settings.Trigger.EventName())
		assert.Nil(t, settings.Trigger.Context())
		assert.Equal(t, []string{"/app/ptl.yml", "/context/ptl.yml", "/github/workspace/ptl.yml"}, settings.ManifestPaths)
	})

	t.Run("environment", func(t *testing.T) {
		t.Parallel()

		settings, err := loaderFor(t, t.TempDir(), map[string]string{
			"ENDPOINT":          "http://api.pushto.local/",
			"GITHUB_EVENT_NAME": "delete",
			"GITHUB_REF_TYPE":   "branch",
			"GITHUB_REF_NAME":   "feature-x",
			"GITHUB_WORKSPACE":  "/home/runner/work/demo",
		}).Load()
		require.NoError(t, err)
		assert.Equal(t, "http://api.pushto.local/", settings.Endpoint)
		assert.Equal(t, "delete", settings.Trigger.EventName())
		assert.Equal(t, &ptl.RepoContext{Type: "branch", Name: "feature-x"}, settings.Trigger.Context())
		assert.Equal(t, "/home/runner/work/demo/ptl.yml", settings.ManifestPaths[len(settings.ManifestPaths)-1])
	})

	t.Run("config file overrides environment", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config"), []byte("ENDPOINT=http://file.example/\nCURL_DEBUG=yes\n"), 0o600))

		settings, err := loaderFor(t, dir, map[string]string{"ENDPOINT": "http://env.example/"}).Load()
		require.NoError(t, err)
		assert.Equal(t, "http://file.example/", settings.Endpoint)
		assert.True(t, settings.Debug)
		assert.Equal(t, filepath.Join(dir, "config"), settings.ConfigFile)
	})

	t.Run("manifest override is searched first", func(t *testing.T) {
		t.Parallel()

		loader := loaderFor(t, t.TempDir(), nil)
		loader.Viper.Set(config.KeyManifest, "deploy/ptl.yml")

		settings, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "deploy/ptl.yml", settings.ManifestPaths[0])
	})
}

func TestLoader_LoadWithCredentials(t *testing.T) {
	t.Parallel()
	t.Run("credentials file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials"), []byte("ACCESS_KEY=fa\nSECRET_KEY=fs\n"), 0o600))

		settings, err := loaderFor(t, dir, map[string]string{"PTL_ACCESS_KEY": "ea", "PTL_SECRET_KEY": "es"}).LoadWithCredentials()
		require.NoError(t, err)
		assert.Equal(t, ptl.Credentials{AccessKey: "fa", SecretKey: "fs"}, settings.Credentials)
		assert.Equal(t, filepath.Join(dir, "credentials"), settings.CredentialsSource)
	})

	t.Run("environment credentials", func(t *testing.T) {
		t.Parallel()

		settings, err := loaderFor(t, t.TempDir(), map[string]string{"PTL_ACCESS_KEY": "ea", "PTL_SECRET_KEY": "es"}).LoadWithCredentials()
		require.NoError(t, err)
		assert.Equal(t, ptl.Credentials{AccessKey: "ea", SecretKey: "es"}, settings.Credentials)
	})

	t.Run("no credentials anywhere", func(t *testing.T) {
		t.Parallel()

		_, err := loaderFor(t, t.TempDir(), nil).LoadWithCredentials()
		require.ErrorIs(t, err, ptl.ErrMissingCredentials)
	})
}

func TestTrigger_Context(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		trigger config.Trigger
		want    *ptl.RepoContext
	}{
		{name: "both set", trigger: config.Trigger{RefType: "tag", RefName: "v1.0"}, want: &ptl.RepoContext{Type: "tag", Name: "v1.0"}},
		{name: "type only", trigger: config.Trigger{RefType: "branch"}},
		{name: "name only", trigger: config.Trigger{RefName: "main"}},
		{name: "neither"},
		{name: "contents are not validated", trigger: config.Trigger{RefType: "weird type", RefName: "../x"}, want: &ptl.RepoContext{Type: "weird type", Name: "../x"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.trigger.Context())
		})
	}
}
