package ptl

import (
	"context"
	"time"
)

// Client is the PushToLive orchestration API.
type Client interface {
	// ValidateCredentials calls whoami and must succeed before any other call.
	ValidateCredentials(ctx context.Context) (*Identity, error)
	Identity() (*Identity, bool)
	InstanceExists(ctx context.Context, app string, repo RepoContext) (bool, error)
	Deploy(ctx context.Context, manifest []byte) (*DeployResponse, error)
	Undeploy(ctx context.Context, app string, repo RepoContext) (*UndeployResponse, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a Client.
type Config struct {
	// Endpoint: base URL of the API, e.g. "http://pushto.live/".
	Endpoint string
	// Credentials: sent as Access-Key / Secret-Key on every request.
	Credentials Credentials

	// HTTPTimeout: per-request timeout. Zero uses the transport default.
	HTTPTimeout time.Duration
	// RetryMax: retries for idempotent requests (GET, DELETE) only. Zero disables.
	RetryMax int
	// RetryWaitMin, RetryWaitMax: backoff bounds applied when RetryMax > 0.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Debug: log every request and response through Logger.
	Debug bool
	// Logger: optional logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
}
