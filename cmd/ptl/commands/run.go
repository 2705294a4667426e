package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pushtolive/ptl/internal/deploy"
)

// NewRunCommand creates the run command.
func NewRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Deploy or undeploy based on the CI event",
		Long: `Reads GITHUB_EVENT_NAME and deploys on "push" (the default) or undeploys
on "delete". Other events are logged and ignored.

Relative build paths resolve against $GITHUB_WORKSPACE (default
/github/workspace), not the current directory.`,
		Args: cobra.NoArgs,
		RunE: runEvent(app),
	}
}

// NewDeployCommand creates the deploy command.
func NewDeployCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Pack and deploy the application",
		Long: `Archives every service with a build path and submits the manifest,
whatever the CI event.

Relative build paths resolve against $GITHUB_WORKSPACE (default
/github/workspace), not the current directory. Set GITHUB_WORKSPACE=$PWD
when running locally.`,
		Args: cobra.NoArgs,
		RunE: runWith(app, func(ctx context.Context, o *deploy.Orchestrator) (*deploy.Report, error) {
			return o.Deploy(ctx)
		}),
	}
}

// NewUndeployCommand creates the undeploy command.
func NewUndeployCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undeploy",
		Short: "Terminate the instance for the current branch or tag",
		Args:  cobra.NoArgs,
		RunE: runWith(app, func(ctx context.Context, o *deploy.Orchestrator) (*deploy.Report, error) {
			return o.Undeploy(ctx)
		}),
	}
}

func runEvent(app *App) func(*cobra.Command, []string) error {
	return runWith(app, func(ctx context.Context, o *deploy.Orchestrator) (*deploy.Report, error) {
		return o.Run(ctx)
	})
}

func runWith(app *App, action func(context.Context, *deploy.Orchestrator) (*deploy.Report, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		s, err := app.connect(ctx)
		if err != nil {
			return err
		}

		orchestrator, err := s.orchestrator()
		if err != nil {
			return err
		}

		report, err := action(ctx, orchestrator)
		if err != nil {
			return err
		}

		return renderReport(app.Stdout, s.settings.Output, report)
	}
}
