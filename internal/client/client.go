package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/pushtolive/ptl/internal/auth"
	"github.com/pushtolive/ptl/internal/constants"
	internalhttp "github.com/pushtolive/ptl/internal/http"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Client implements ptl.Client.
type Client struct {
	httpClient *internalhttp.Client
	keys       auth.KeyManager
	logger     ptl.Logger

	mu       sync.RWMutex
	identity *ptl.Identity
}

var _ ptl.Client = (*Client)(nil)

// New creates a PushToLive API client.
func New(config *ptl.Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, ptl.ErrEndpointRequired
	}

	if !config.Credentials.Valid() {
		return nil, ptl.ErrMissingCredentials
	}

	keys := auth.NewStaticKeyManager(config.Credentials)

	return NewWithKeyManager(config, keys), nil
}

// NewWithKeyManager creates a client with a custom key manager.
func NewWithKeyManager(config *ptl.Config, keys auth.KeyManager) *Client {
	httpClient := internalhttp.NewClient(config.Endpoint, keys, createHTTPClientOptions(config)...)

	return &Client{
		httpClient: httpClient,
		keys:       keys,
		logger:     config.Logger,
	}
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *ptl.Config) []internalhttp.Option {
	var httpOpts []internalhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, internalhttp.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// ValidateCredentials implements ptl.Client.ValidateCredentials.
func (c *Client) ValidateCredentials(ctx context.Context) (*ptl.Identity, error) {
	resp, err := c.httpClient.Post(ctx, constants.PathWhoami, nil)
	if err != nil {
		return nil, fmt.Errorf("validating credentials: %w", withReason("whoami", err))
	}

	var whoami ptl.WhoamiResponse

	if err := json.Unmarshal(resp.Body, &whoami); err != nil {
		return nil, fmt.Errorf("parsing whoami response: %w", err)
	}

	if whoami.Status != ptl.StatusOkay {
		return nil, &ptl.StatusError{Operation: "whoami", Status: whoami.Status, Reason: whoami.Reason}
	}

	identity := &ptl.Identity{
		Username: whoami.Username,
		Email:    whoami.Email,
		OrgName:  whoami.OrgName,
	}

	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()

	return identity, nil
}

// Identity returns the identity resolved by ValidateCredentials.
func (c *Client) Identity() (*ptl.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.identity, c.identity != nil
}

func (c *Client) requireIdentity() error {
	if _, ok := c.Identity(); !ok {
		return ptl.ErrIdentityNotValidated
	}

	return nil
}

// withReason surfaces a {"Status", "Reason"} body carried by an HTTP error
// response as a *ptl.StatusError alongside the original *ptl.APIError.
func withReason(operation string, err error) error {
	apiErr := &ptl.APIError{}
	if !errors.As(err, &apiErr) || apiErr.Body == "" {
		return err
	}

	var body struct {
		Status string `json:"Status"`
		Reason string `json:"Reason"`
	}

	if json.Unmarshal([]byte(apiErr.Body), &body) != nil || body.Reason == "" {
		return err
	}

	if body.Status == "" {
		body.Status = http.StatusText(apiErr.StatusCode)
	}

	return errors.Join(&ptl.StatusError{Operation: operation, Status: body.Status, Reason: body.Reason}, err)
}
