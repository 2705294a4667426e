package commands

import (
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the ptl agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.Viper.GetString("output")

			if handled, err := renderStructured(app.Stdout, output, app.Build); handled {
				return err
			}

			return renderProperties(app.Stdout, [][2]string{
				{"Version", app.Build.Version},
				{"Commit", app.Build.Commit},
				{"Built", app.Build.Built},
			})
		},
	}
}
