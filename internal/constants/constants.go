package constants

import "time"

// API defaults.
const (
	// DefaultEndpoint is the PushToLive API base URL.
	DefaultEndpoint = "http://pushto.live/"

	// DefaultUserAgent is sent when no version is known.
	DefaultUserAgent = "ptl/dev"
)

// API paths, relative to the endpoint.
const (
	PathWhoami   = "v0/whoami"
	PathDeploy   = "v0/deploy"
	PathProjects = "v0/projects/%s/%s/%s"
)

// Authentication headers.
const (
	HeaderAccessKey = "Access-Key"
	HeaderSecretKey = "Secret-Key"
)

// Content types.
const (
	ContentTypeYAML = "application/x-yaml"
	ContentTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests. Deploy
	// uploads can be large, so this is generous.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Configuration locations.
const (
	// ConfigDir holds the optional config and credentials files.
	ConfigDir = "/config"

	// ConfigFileName overrides ENDPOINT and CURL_DEBUG.
	ConfigFileName = "config"

	// CredentialsFileName holds ACCESS_KEY and SECRET_KEY.
	CredentialsFileName = "credentials"

	// DefaultWorkspace is used when GITHUB_WORKSPACE is unset.
	DefaultWorkspace = "/github/workspace"
)

// Environment variables.
const (
	EnvEndpoint   = "ENDPOINT"
	EnvAccessKey  = "PTL_ACCESS_KEY"
	EnvSecretKey  = "PTL_SECRET_KEY"
	EnvEventName  = "GITHUB_EVENT_NAME"
	EnvRefType    = "GITHUB_REF_TYPE"
	EnvRefName    = "GITHUB_REF_NAME"
	EnvWorkspace  = "GITHUB_WORKSPACE"
	CurlDebugOn   = "yes"
	EventPush     = "push"
	EventDelete   = "delete"
	DefaultOutput = "table"
)

// Manifest and archive.
const (
	// ManifestFileName is the application manifest.
	ManifestFileName = "ptl.yml"

	// ZipPackPrefix is the temp file prefix of service archives.
	ZipPackPrefix = "ptlz_*.zip"
)

// ManifestSearchDirs are searched in order before the workspace.
var ManifestSearchDirs = []string{"/app", "/context"}

// ZipPackIgnoreGlobs are never archived. Matched against the slash path
// relative to the build root; '*' also matches '/'.
var ZipPackIgnoreGlobs = []string{
	".git/*",
	".github/*",
	".gitignore",
	".gitmodules",
	ManifestFileName,
}

// File and directory permissions.
const (
	// PackFilePerm is the permission for archives written by the pack command.
	PackFilePerm = 0600
)
