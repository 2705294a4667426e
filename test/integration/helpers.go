//go:build integration

package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pushtolive/ptl/pkg/ptl"
)

// FakeAPI is an in-memory PushToLive API. Deployed projects are keyed by
// "app/type/name".
type FakeAPI struct {
	mu        sync.Mutex
	accessKey string
	secretKey string
	projects  map[string][]string
	requests  []string

	server *httptest.Server
}

// NewFakeAPI starts a fake API accepting the given key pair.
func NewFakeAPI(t *testing.T, accessKey, secretKey string) *FakeAPI {
	t.Helper()

	api := &FakeAPI{
		accessKey: accessKey,
		secretKey: secretKey,
		projects:  map[string][]string{},
	}
	api.server = httptest.NewServer(http.HandlerFunc(api.handle))
	t.Cleanup(api.server.Close)

	return api
}

// URL is the API base endpoint.
func (f *FakeAPI) URL() string {
	return f.server.URL + "/"
}

// Requests returns "METHOD path" for every request seen.
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.requests...)
}

// Deployed reports whether a project instance exists.
func (f *FakeAPI) Deployed(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.projects[key]

	return ok
}

func (f *FakeAPI) handle(writer http.ResponseWriter, request *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, request.Method+" "+request.URL.EscapedPath())

	if request.Header.Get("Access-Key") != f.accessKey || request.Header.Get("Secret-Key") != f.secretKey {
		writer.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(writer).Encode(map[string]string{"Status": "Error", "Reason": "invalid keys"})

		return
	}

	path := strings.TrimPrefix(request.URL.Path, "/")

	switch {
	case request.Method == http.MethodPost && path == "v0/whoami":
		_ = json.NewEncoder(writer).Encode(map[string]string{
			"Status": ptl.StatusOkay, "Username": "octo", "Email": "octo@example.com", "OrgName": "acme",
		})
	case request.Method == http.MethodPut && path == "v0/deploy":
		f.deploy(writer, request)
	case strings.HasPrefix(path, "v0/projects/"):
		f.project(writer, request, strings.TrimPrefix(path, "v0/projects/"))
	default:
		writer.WriteHeader(http.StatusNotFound)
	}
}

func (f *FakeAPI) deploy(writer http.ResponseWriter, request *http.Request) {
	body, _ := io.ReadAll(request.Body)

	app, err := ptl.DecodeManifest(body)
	if err != nil {
		writer.WriteHeader(http.StatusBadRequest)

		return
	}

	names := make([]string, 0, len(app.Services))
	results := make([]ptl.ServiceResult, 0, len(app.Services))

	for _, service := range app.Services {
		if service.HasBuild() && !service.Build.Packed() {
			_ = json.NewEncoder(writer).Encode(map[string]string{"Status": "Error", "Reason": "unpacked build for " + service.Name})

			return
		}

		names = append(names, service.Name)
		results = append(results, ptl.ServiceResult{Name: service.Name})
	}

	key := app.Name + "/default/default"
	if app.Context != nil {
		key = app.Name + "/" + app.Context.String()
	}

	f.projects[key] = names

	_ = json.NewEncoder(writer).Encode(ptl.DeployResponse{Status: ptl.StatusOkay, Services: results})
}

func (f *FakeAPI) project(writer http.ResponseWriter, request *http.Request, key string) {
	services, ok := f.projects[key]
	if !ok {
		writer.WriteHeader(http.StatusNotFound)

		return
	}

	switch request.Method {
	case http.MethodGet:
		writer.WriteHeader(http.StatusOK)
	case http.MethodDelete:
		delete(f.projects, key)

		deleted := &ptl.DeletedServices{}
		for _, name := range services {
			deleted.Service = append(deleted.Service, ptl.ServiceResult{Name: name})
		}

		_ = json.NewEncoder(writer).Encode(ptl.UndeployResponse{Status: ptl.StatusOkay, Deleted: deleted})
	default:
		writer.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// WriteWorkspace creates a workspace from a path → content map.
func WriteWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	return root
}
