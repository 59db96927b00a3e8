package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	return tbl
}

// formatComponentsText formats dependents as a FILE/COMPONENT table.
func formatComponentsText(w io.Writer, comps []CLIComponent) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"File", "Component"})
	for _, c := range comps {
		tbl.AppendRow(table.Row{c.File, c.Component})
	}
	fmt.Fprintln(w, tbl.Render())
}

// formatEdgesText formats edges as a dependee/dependent table.
func formatEdgesText(w io.Writer, edges []CLIEdge) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Dependee File", "Component", "Dependent File", "Component"})
	for _, e := range edges {
		tbl.AppendRow(table.Row{e.Dependee.File, e.Dependee.Component, e.Dependent.File, e.Dependent.Component})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s edges", humanize.Comma(int64(len(edges))))})
	fmt.Fprintln(w, tbl.Render())
}

// formatFileErrorsText formats skipped files as a PATH/ERROR table.
func formatFileErrorsText(w io.Writer, fes []CLIFileError) {
	if len(fes) == 0 {
		fmt.Fprintln(w, "No skipped files")
		return
	}
	tbl := newTable()
	tbl.AppendHeader(table.Row{"Path", "Error"})
	for _, fe := range fes {
		tbl.AppendRow(table.Row{fe.Path, fe.Message})
	}
	fmt.Fprintln(w, tbl.Render())
}

// formatSummaryText formats an analysis summary as readable text.
func formatSummaryText(w io.Writer, s CLIAnalyzeSummary) {
	fmt.Fprintln(w, "Analysis Summary")
	fmt.Fprintln(w, "================")
	fmt.Fprintf(w, "Root: %s\n", s.Root)
	fmt.Fprintf(w, "Database: %s\n", s.Database)
	fmt.Fprintf(w, "Files: %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(w, "Edges: %s\n", humanize.Comma(int64(s.Edges)))
	if len(s.Skipped) > 0 {
		fmt.Fprintln(w)
		formatFileErrorsText(w, s.Skipped)
	}
}

// outputResultText dispatches to the appropriate text formatter based on the
// result type. It writes to os.Stdout.
func outputResultText(result CLIResult) error {
	w := io.Writer(os.Stdout)

	switch v := result.Results.(type) {
	case []CLIComponent:
		formatComponentsText(w, v)
	case []CLIEdge:
		formatEdgesText(w, v)
	case []CLIFileError:
		formatFileErrorsText(w, v)
	case CLIAnalyzeSummary:
		formatSummaryText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}
