package ptl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pushtolive/ptl/pkg/ptl"
)

const demoManifest = `name: demo
region: eu
services:
  web:
    build: ./app
    port: 8080
  redis:
    image: redis:7
  worker:
    build: ./worker
  empty:
`

func TestDecodeManifest(t *testing.T) {
	t.Parallel()

	manifest, err := ptl.DecodeManifest([]byte(demoManifest))
	require.NoError(t, err)

	assert.Equal(t, "demo", manifest.Name)
	assert.Equal(t, "eu", manifest.Extra["region"])
	assert.Nil(t, manifest.Context)

	names := make([]string, 0, len(manifest.Services))
	for _, service := range manifest.Services {
		names = append(names, service.Name)
	}

	assert.Equal(t, []string{"web", "redis", "worker", "empty"}, names, "declaration order is kept")

	web, ok := manifest.Services.Get("web")
	require.True(t, ok)
	require.True(t, web.HasBuild())
	assert.Equal(t, "./app", web.Build.Path)
	assert.Equal(t, 8080, web.Extra["port"])

	redis, ok := manifest.Services.Get("redis")
	require.True(t, ok)
	assert.False(t, redis.HasBuild())

	buildable := manifest.Services.Buildable()
	require.Len(t, buildable, 2)
	assert.Equal(t, "web", buildable[0].Name)
	assert.Equal(t, "worker", buildable[1].Name)
}

func TestDecodeManifest_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{name: "services is a list", doc: "name: demo\nservices:\n  - web\n"},
		{name: "build is a list", doc: "name: demo\nservices:\n  web:\n    build: [a, b]\n"},
		{name: "invalid yaml", doc: "name: [demo\n"},
		{name: "build mapping without context", doc: "name: demo\nservices:\n  web:\n    build:\n      dockerfile: Dockerfile\n"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ptl.DecodeManifest([]byte(tt.doc))
			require.Error(t, err)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestManifest_Transformations(t *testing.T) {
	t.Parallel()

	original, err := ptl.DecodeManifest([]byte(demoManifest))
	require.NoError(t, err)

	withContext := original.WithContext(ptl.RepoContext{Type: "branch", Name: "main"})
	packed, err := withContext.WithZipPack("web", "UEsFBgA=")
	require.NoError(t, err)

	t.Run("original is untouched", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, original.Context)

		web, _ := original.Services.Get("web")
		assert.False(t, web.Build.Packed())

		web, _ = withContext.Services.Get("web")
		assert.False(t, web.Build.Packed())
	})

	t.Run("packed service", func(t *testing.T) {
		t.Parallel()

		web, _ := packed.Services.Get("web")
		assert.Equal(t, &ptl.Build{Path: "./app", ZipPack: "UEsFBgA="}, web.Build)

		worker, _ := packed.Services.Get("worker")
		assert.False(t, worker.Build.Packed())
	})

	t.Run("encoded document", func(t *testing.T) {
		t.Parallel()

		data, err := packed.Encode()
		require.NoError(t, err)

		var doc map[string]interface{}

		require.NoError(t, yaml.Unmarshal(data, &doc))
		assert.Equal(t, "demo", doc["name"])
		assert.Equal(t, "eu", doc["region"])
		assert.Equal(t, map[string]interface{}{"type": "branch", "name": "main"}, doc["context"])

		services, ok := doc["services"].(map[string]interface{})
		require.True(t, ok)
		assert.Len(t, services, 4)

		web, ok := services["web"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"context": "./app", "zippack": "UEsFBgA="}, web["build"])
		assert.Equal(t, 8080, web["port"])

		worker, ok := services["worker"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "./worker", worker["build"], "unpacked build stays a plain path")

		redis, ok := services["redis"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "redis:7", redis["image"])
		assert.NotContains(t, redis, "build")
	})

	t.Run("packed manifest decodes again", func(t *testing.T) {
		t.Parallel()

		data, err := packed.Encode()
		require.NoError(t, err)

		decoded, err := ptl.DecodeManifest(data)
		require.NoError(t, err)

		web, _ := decoded.Services.Get("web")
		assert.Equal(t, "UEsFBgA=", web.Build.ZipPack)
		require.NotNil(t, decoded.Context)
		assert.Equal(t, "branch/main", decoded.Context.String())
	})

	t.Run("unknown service", func(t *testing.T) {
		t.Parallel()

		_, err := original.WithZipPack("nope", "x")
		require.ErrorIs(t, err, ptl.ErrServiceNotFound)

		_, err = original.WithZipPack("redis", "x")
		require.ErrorIs(t, err, ptl.ErrInvalidBuild)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestManifest_EncodeKeepsUserKeys(t *testing.T) {
	t.Parallel()

	original, err := ptl.DecodeManifest([]byte(`name: demo
services:
  web:
    build:
      context: ./app
      dockerfile: Dockerfile.prod
    ports: [80]
  db:
`))
	require.NoError(t, err)

	web, ok := original.Services.Get("web")
	require.True(t, ok)
	require.True(t, web.HasBuild())
	assert.Equal(t, "./app", web.Build.Path)
	assert.Equal(t, "Dockerfile.prod", web.Build.Extra["dockerfile"])

	decodeServices := func(t *testing.T, m *ptl.Manifest) map[string]interface{} {
		t.Helper()

		data, err := m.Encode()
		require.NoError(t, err)

		var doc map[string]interface{}

		require.NoError(t, yaml.Unmarshal(data, &doc))

		services, ok := doc["services"].(map[string]interface{})
		require.True(t, ok)

		return services
	}

	t.Run("unpacked build mapping", func(t *testing.T) {
		t.Parallel()

		services := decodeServices(t, original)

		web, ok := services["web"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"context": "./app", "dockerfile": "Dockerfile.prod"}, web["build"])
		assert.Equal(t, []interface{}{80}, web["ports"])

		require.Contains(t, services, "db")
		assert.Nil(t, services["db"], "a service without a body stays null")
	})

	t.Run("packed build mapping", func(t *testing.T) {
		t.Parallel()

		packed, err := original.WithZipPack("web", "UEsFBgA=")
		require.NoError(t, err)

		services := decodeServices(t, packed)

		web, ok := services["web"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{
			"context":    "./app",
			"zippack":    "UEsFBgA=",
			"dockerfile": "Dockerfile.prod",
		}, web["build"])
		assert.Nil(t, services["db"])
	})

	t.Run("packing does not share build keys", func(t *testing.T) {
		t.Parallel()

		packed, err := original.WithZipPack("web", "UEsFBgA=")
		require.NoError(t, err)

		packedWeb, _ := packed.Services.Get("web")
		packedWeb.Build.Extra["dockerfile"] = "changed"

		web, _ := original.Services.Get("web")
		assert.Equal(t, "Dockerfile.prod", web.Build.Extra["dockerfile"])
		assert.False(t, web.Build.Packed())
	})
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	notFound := &ptl.APIError{StatusCode: 404, Method: "GET", Path: "v0/projects/a/b/c"}
	assert.True(t, ptl.IsNotFound(notFound))
	assert.True(t, ptl.IsClientError(notFound))
	assert.False(t, ptl.IsServerError(notFound))
	assert.Contains(t, notFound.Error(), "Not Found")

	server := &ptl.APIError{StatusCode: 503, Body: "down"}
	assert.True(t, ptl.IsServerError(server))
	assert.False(t, ptl.IsClientError(server))

	status := &ptl.StatusError{Operation: "deploy", Status: "Error", Reason: "quota exceeded"}
	reason, ok := ptl.Reason(status)
	assert.True(t, ok)
	assert.Equal(t, "quota exceeded", reason)
	assert.Equal(t, `deploy failed with status "Error": quota exceeded`, status.Error())

	_, ok = ptl.Reason(&ptl.StatusError{Operation: "deploy", Status: "Error"})
	assert.False(t, ok)
}
