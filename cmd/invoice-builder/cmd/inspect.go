package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-builder/internal/pdfcheck"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Validate PDF files and show their pages",
	Long: `Validate exported PDF files and list their page sizes.

Shows:
  - Whether the document passes validation
  - Page count
  - Width and height of every page in inches

Examples:
  invoice-builder inspect invoice-1.pdf
  invoice-builder inspect out/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// InspectResult holds the report for one file
type InspectResult struct {
	File   string           `json:"file"`
	Report *pdfcheck.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".pdf")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found")
	}

	checker := pdfcheck.New()
	results := make([]*InspectResult, 0, len(files))
	for _, file := range files {
		printVerbose("Inspecting %s\n", file)
		result := &InspectResult{File: file}
		report, err := checker.VerifyFile(context.Background(), file)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Report = report
		}
		results = append(results, result)
	}

	return outputInspectResults(os.Stdout, results)
}

func outputInspectResults(w io.Writer, results []*InspectResult) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tVALID\tPAGES\tSIZE\tPAGE SIZES (in)")
		fmt.Fprintln(tw, "----\t-----\t-----\t----\t---------------")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tno\t\t\t%s\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\tyes\t%d\t%d\t%s\n", r.File, r.Report.Pages, r.Report.Size, pageSizes(r.Report.Dims))
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func pageSizes(dims []pdfcheck.PageDim) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, fmt.Sprintf("%.2fx%.2f", d.WidthIn, d.HeightIn))
	}
	return strings.Join(parts, " ")
}
