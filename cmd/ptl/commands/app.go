package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/pushtolive/ptl/internal/archive"
	"github.com/pushtolive/ptl/internal/client"
	"github.com/pushtolive/ptl/internal/config"
	"github.com/pushtolive/ptl/internal/deploy"
	"github.com/pushtolive/ptl/internal/logging"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// BuildInfo is stamped in at link time.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// UserAgent returns the User-Agent sent to the API.
func (b BuildInfo) UserAgent() string {
	return "ptl/" + b.Version
}

// ClientFactory builds an API client from resolved settings.
type ClientFactory func(cfg *ptl.Config) (ptl.Client, error)

// App is the state shared by every command of one invocation.
type App struct {
	Viper     *viper.Viper
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	NewClient ClientFactory
	Build     BuildInfo
}

// NewApp returns an App wired to the process streams and environment.
func NewApp(build BuildInfo) *App {
	return &App{
		Viper:     viper.New(),
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		Getenv:    os.Getenv,
		NewClient: defaultClientFactory,
		Build:     build,
	}
}

func defaultClientFactory(cfg *ptl.Config) (ptl.Client, error) {
	return client.New(cfg)
}

func (a *App) loader() config.Loader {
	return config.Loader{Viper: a.Viper, Getenv: a.Getenv}
}

// newLogger builds the run logger. Logs go to stderr so that structured
// output on stdout stays parseable.
func (a *App) newLogger(settings *config.Settings) *logging.Logger {
	opts := []logging.Option{}

	if settings.Verbose || settings.Debug {
		opts = append(opts, logging.WithLevel(logging.LevelDebug))
	}

	if settings.NoColor {
		opts = append(opts, logging.WithColor(false))
	}

	return logging.New(a.Stderr, opts...)
}

// session is an authenticated run: settings, logger and a validated client.
type session struct {
	settings *config.Settings
	logger   *logging.Logger
	client   ptl.Client
	identity *ptl.Identity
}

func (a *App) connect(ctx context.Context) (*session, error) {
	settings, err := a.loader().LoadWithCredentials()
	if err != nil {
		return nil, err
	}

	logger := a.newLogger(settings)
	logger.Info("Running PushToLive!", nil)
	logger.Debugf("Using endpoint %s", settings.Endpoint)

	if settings.ConfigFile != "" {
		logger.Debugf("Using config file %s", settings.ConfigFile)
	}

	logger.Debugf("Using credentials from %s", settings.CredentialsSource)

	apiClient, err := a.NewClient(settings.ClientConfig(logger, a.Build.UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	identity, err := apiClient.ValidateCredentials(ctx)
	if err != nil {
		return nil, err
	}

	logger.Infof("Hello, '%s' from '%s'!", identity.Username, identity.OrgName)

	return &session{settings: settings, logger: logger, client: apiClient, identity: identity}, nil
}

func (s *session) orchestrator() (*deploy.Orchestrator, error) {
	builder, err := archive.NewBuilder(archive.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	return deploy.New(s.client, builder, s.settings, s.logger), nil
}
