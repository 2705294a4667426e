package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/internal/deploy"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// None marks an empty table cell.
const None = "-"

// renderStructured writes value as JSON or YAML. It reports false for the
// table format so the caller can render its own table.
func renderStructured(out io.Writer, format string, value interface{}) (bool, error) {
	switch format {
	case OutputFormatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		return true, encoder.Encode(value)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(out)
		defer func() { _ = encoder.Close() }()

		return true, encoder.Encode(value)
	case OutputFormatTable, "":
		return false, nil
	default:
		return true, fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, format)
	}
}

func renderProperties(out io.Writer, rows [][2]string) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	for _, row := range rows {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func renderReport(out io.Writer, format string, report *deploy.Report) error {
	if handled, err := renderStructured(out, format, report); handled {
		return err
	}

	contextName := None
	if report.Context != nil {
		contextName = report.Context.String()
	}

	return renderProperties(out, [][2]string{
		{"App", report.App},
		{"Action", report.Action},
		{"Event", report.Event},
		{"Manifest", report.Manifest},
		{"Context", contextName},
		{"Packed", joinOrNone(report.Packed)},
		{"Services", joinOrNone(report.Services)},
		{"Skipped", fmt.Sprintf("%t", report.Skipped)},
	})
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return None
	}

	return strings.Join(values, ", ")
}
