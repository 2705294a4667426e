// Package deploy drives a single ptl run: it resolves the repository
// context, loads the manifest and then deploys or undeploys the app.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/pushtolive/ptl/internal/archive"
	"github.com/pushtolive/ptl/internal/config"
	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/internal/manifest"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Actions recorded on a Report.
const (
	ActionDeploy   = "deploy"
	ActionUndeploy = "undeploy"
	ActionNone     = "none"
)

// Logger is ptl.Logger plus the critical level used for failed deploys.
type Logger interface {
	ptl.Logger
	Critical(msg string, fields map[string]interface{})
}

// Report summarises what a run did.
type Report struct {
	App      string           `json:"app"      yaml:"app"`
	Action   string           `json:"action"   yaml:"action"`
	Event    string           `json:"event"    yaml:"event"`
	Manifest string           `json:"manifest" yaml:"manifest"`
	Context  *ptl.RepoContext `json:"context,omitempty" yaml:"context,omitempty"`
	// Packed lists services whose build context was archived, in manifest order.
	Packed []string `json:"packed,omitempty" yaml:"packed,omitempty"`
	// Services are the names returned by the API.
	Services []string `json:"services" yaml:"services"`
	// Skipped is set for a no-op: an unknown event or a missing instance on undeploy.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// Orchestrator runs deploys and undeploys against a validated client.
type Orchestrator struct {
	client   ptl.Client
	builder  *archive.Builder
	settings *config.Settings
	logger   Logger
}

// New creates an Orchestrator. The client must already have validated its
// credentials.
func New(client ptl.Client, builder *archive.Builder, settings *config.Settings, logger Logger) *Orchestrator {
	return &Orchestrator{
		client:   client,
		builder:  builder,
		settings: settings,
		logger:   logger,
	}
}

// Run dispatches on the trigger event: delete undeploys, push deploys and
// anything else is logged and ignored.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	repo := o.settings.Trigger.Context()

	app, path, err := o.load()
	if err != nil {
		return nil, err
	}

	event := o.settings.Trigger.EventName()

	switch event {
	case constants.EventDelete:
		return o.undeploy(ctx, app, path, repo)
	case constants.EventPush:
		return o.deploy(ctx, app, path, repo)
	default:
		o.logger.Info(fmt.Sprintf("Ignoring unsupported event '%s'.", event), nil)

		return &Report{
			App:      app.Name,
			Action:   ActionNone,
			Event:    event,
			Manifest: path,
			Context:  repo,
			Skipped:  true,
		}, nil
	}
}

// Deploy deploys regardless of the trigger event.
func (o *Orchestrator) Deploy(ctx context.Context) (*Report, error) {
	app, path, err := o.load()
	if err != nil {
		return nil, err
	}

	return o.deploy(ctx, app, path, o.settings.Trigger.Context())
}

// Undeploy undeploys regardless of the trigger event.
func (o *Orchestrator) Undeploy(ctx context.Context) (*Report, error) {
	app, path, err := o.load()
	if err != nil {
		return nil, err
	}

	return o.undeploy(ctx, app, path, o.settings.Trigger.Context())
}

func (o *Orchestrator) load() (*ptl.Manifest, string, error) {
	app, path, err := manifest.Load(o.settings.ManifestPaths)
	if err != nil {
		return nil, "", err
	}

	o.logger.Debug(fmt.Sprintf("Found config: %s", path), nil)

	return app, path, nil
}

func (o *Orchestrator) deploy(ctx context.Context, app *ptl.Manifest, path string, repo *ptl.RepoContext) (*Report, error) {
	o.logger.Info(fmt.Sprintf("Submitting '%s' to deploy", app.Name), nil)

	report := &Report{
		App:      app.Name,
		Action:   ActionDeploy,
		Event:    o.settings.Trigger.EventName(),
		Manifest: path,
		Context:  repo,
	}

	if repo != nil {
		o.logger.Info(fmt.Sprintf(" > Context is %s", repo), nil)
		app = app.WithContext(*repo)
	}

	packed, names, err := o.pack(app)
	if err != nil {
		return nil, err
	}

	report.Packed = names

	body, err := packed.Encode()
	if err != nil {
		return nil, err
	}

	o.logger.Info("Sending request to PushTolive...", nil)

	resp, err := o.client.Deploy(ctx, body)
	if err != nil {
		statusErr := &ptl.StatusError{}
		if errors.As(err, &statusErr) {
			o.logger.Critical("Failed to deploy!", nil)

			if statusErr.Reason != "" {
				o.logger.Critical(statusErr.Reason, nil)
			}
		}

		return nil, err
	}

	o.logger.Info("Services deploying:", nil)

	for _, service := range resp.Services {
		o.logger.Info(fmt.Sprintf(" > %s", service.Name), nil)
		report.Services = append(report.Services, service.Name)
	}

	return report, nil
}

// pack archives every buildable service in manifest order and returns the
// transformed manifest. app is not modified.
func (o *Orchestrator) pack(app *ptl.Manifest) (*ptl.Manifest, []string, error) {
	var names []string

	for _, service := range app.Services.Buildable() {
		root, err := filepath.Abs(o.buildPath(service.Build.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("resolving build path of %s: %w", service.Name, err)
		}

		o.logger.Info(fmt.Sprintf("Found path to zippack: %s", root), nil)

		zipPack, err := o.builder.Build(root)
		if err != nil {
			return nil, nil, fmt.Errorf("packing service %s: %w", service.Name, err)
		}

		o.logger.Debug(fmt.Sprintf("  > Resulting Zippack is %s", humanize.Bytes(uint64(zipPack.Size()))), nil)

		app, err = app.WithZipPack(service.Name, zipPack.Base64())
		if err != nil {
			return nil, nil, err
		}

		names = append(names, service.Name)
	}

	return app, names, nil
}

// buildPath resolves relative build paths against the workspace.
func (o *Orchestrator) buildPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	workspace := o.settings.Trigger.Workspace
	if workspace == "" {
		workspace = constants.DefaultWorkspace
	}

	return filepath.Join(workspace, path)
}

func (o *Orchestrator) undeploy(ctx context.Context, app *ptl.Manifest, path string, repo *ptl.RepoContext) (*Report, error) {
	if repo == nil {
		return nil, ptl.ErrNoRepoContext
	}

	report := &Report{
		App:      app.Name,
		Action:   ActionUndeploy,
		Event:    o.settings.Trigger.EventName(),
		Manifest: path,
		Context:  repo,
	}

	o.logger.Info(fmt.Sprintf("Terminating '%s' (%s %s).", app.Name, repo.Type, repo.Name), nil)

	exists, err := o.client.InstanceExists(ctx, app.Name, *repo)
	if err != nil {
		return nil, err
	}

	if !exists {
		o.logger.Warn(fmt.Sprintf("The service we were supposed to terminate (%s %s %s) does not exist.", app.Name, repo.Type, repo.Name), nil)

		report.Skipped = true

		return report, nil
	}

	resp, err := o.client.Undeploy(ctx, app.Name, *repo)
	if err != nil {
		return nil, err
	}

	if resp.Deleted == nil || len(resp.Deleted.Service) == 0 {
		o.logger.Debug("Nothing to terminate.", nil)

		return report, nil
	}

	o.logger.Info("Services terminating:", nil)

	for _, service := range resp.Deleted.Service {
		o.logger.Info(fmt.Sprintf(" > %s", service.Name), nil)
		report.Services = append(report.Services, service.Name)
	}

	return report, nil
}

// PackService builds the zippack of one service without contacting the API.
func (o *Orchestrator) PackService(name string) (*archive.ZipPack, error) {
	if name == "" {
		return nil, constants.ErrServiceRequired
	}

	app, _, err := o.load()
	if err != nil {
		return nil, err
	}

	service, ok := app.Services.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ptl.ErrServiceNotFound, name)
	}

	if !service.HasBuild() {
		return nil, fmt.Errorf("%w: %s", constants.ErrNoBuildPath, name)
	}

	root, err := filepath.Abs(o.buildPath(service.Build.Path))
	if err != nil {
		return nil, fmt.Errorf("resolving build path of %s: %w", name, err)
	}

	return o.builder.Build(root)
}
