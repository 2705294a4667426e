package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pushtolive/ptl/internal/archive"
	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/internal/deploy"
)

type packResult struct {
	Service string   `json:"service" yaml:"service"`
	Root    string   `json:"root"    yaml:"root"`
	File    string   `json:"file"    yaml:"file"`
	Size    int      `json:"size"    yaml:"size"`
	Files   []string `json:"files"   yaml:"files"`
}

// NewPackCommand creates the pack command.
func NewPackCommand(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "pack SERVICE",
		Short: "Write a service's zippack to a local file",
		Long:  "Builds the zippack for one service exactly as a deploy would, without contacting the API.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			service := args[0]

			settings, err := app.loader().Load()
			if err != nil {
				return err
			}

			logger := app.newLogger(settings)

			builder, err := archive.NewBuilder(archive.WithLogger(logger))
			if err != nil {
				return err
			}

			zipPack, err := deploy.New(nil, builder, settings, logger).PackService(service)
			if err != nil {
				return err
			}

			if file == "" {
				file = service + ".zip"
			}

			if err := os.WriteFile(file, zipPack.Data, constants.PackFilePerm); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}

			logger.Infof("Wrote %s (%s)", file, humanize.Bytes(uint64(zipPack.Size())))

			result := packResult{Service: service, Root: zipPack.Root, File: file, Size: zipPack.Size(), Files: zipPack.Files}

			if handled, err := renderStructured(app.Stdout, settings.Output, result); handled {
				return err
			}

			return renderProperties(app.Stdout, [][2]string{
				{"Service", result.Service},
				{"Build Path", result.Root},
				{"File", result.File},
				{"Size", humanize.Bytes(uint64(result.Size))},
				{"Entries", strconv.Itoa(len(result.Files))},
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "destination file (default SERVICE.zip)")

	return cmd
}
