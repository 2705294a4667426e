package commands

import (
	"github.com/spf13/cobra"
)

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Validate credentials and show the account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.connect(cmd.Context())
			if err != nil {
				return err
			}

			if handled, err := renderStructured(app.Stdout, s.settings.Output, s.identity); handled {
				return err
			}

			return renderProperties(app.Stdout, [][2]string{
				{"Username", s.identity.Username},
				{"Email", s.identity.Email},
				{"Organization", s.identity.OrgName},
				{"Endpoint", s.settings.Endpoint},
			})
		},
	}
}
