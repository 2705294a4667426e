package commands

import (
	"github.com/spf13/cobra"

	"github.com/pushtolive/ptl/internal/config"
	"github.com/pushtolive/ptl/internal/constants"
)

// NewRootCommand creates the ptl command tree. Without a subcommand ptl
// behaves like "ptl run".
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ptl",
		Short: "PushToLive deployment agent",
		Long: `Deploys or tears down a PushToLive application from CI.

On a push event the build context of every service with a build path is
archived and the manifest is submitted for deployment. On a delete event
the instance for the current branch or tag is terminated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runEvent(app),
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyConfigDir, constants.ConfigDir, "directory holding the config and credentials files")
	flags.StringP(config.KeyEndpoint, "e", "", "API endpoint URL (default "+constants.DefaultEndpoint+")")
	flags.StringP(config.KeyManifest, "f", "", "manifest path searched before the default locations")
	flags.Bool(config.KeyDebug, false, "log every API request and response")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose output")
	flags.StringP(config.KeyOutput, "o", constants.DefaultOutput, "output format (table, json, yaml)")
	flags.Bool(config.KeyNoColor, false, "disable colored output")
	flags.Int(config.KeyRetryMax, 0, "retries for idempotent API requests")
	flags.Duration(config.KeyTimeout, constants.DefaultHTTPTimeout, "per-request timeout")

	for _, key := range []string{
		config.KeyConfigDir, config.KeyEndpoint, config.KeyManifest, config.KeyDebug, config.KeyVerbose,
		config.KeyOutput, config.KeyNoColor, config.KeyRetryMax, config.KeyTimeout,
	} {
		_ = app.Viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(NewRunCommand(app))
	rootCmd.AddCommand(NewDeployCommand(app))
	rootCmd.AddCommand(NewUndeployCommand(app))
	rootCmd.AddCommand(NewWhoamiCommand(app))
	rootCmd.AddCommand(NewPackCommand(app))
	rootCmd.AddCommand(NewVersionCommand(app))

	return rootCmd
}
