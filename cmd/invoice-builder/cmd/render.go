package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-builder/internal/export"
	"github.com/rezonia/invoice-builder/internal/model"
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/pdfcheck"
	"github.com/rezonia/invoice-builder/internal/preview"
)

var (
	outDir    string
	itemsText string
	timeout   time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render [draft files...]",
	Short: "Render draft files to PDF",
	Long: `Render one or more invoice drafts to invoice-<number>.pdf.

A draft file is JSON:
  {
    "invoice_number": "A100",
    "cashier_name": "Ana",
    "customer_name": "Bo",
    "date": "2026-10-18",
    "tax_percent": "10",
    "discount_percent": "0",
    "items": [{"name": "Widget", "quantity": 3, "price": "2.00"}]
  }

With --items-text the items are extracted from a free-text note by the
configured LLM and added to every draft.

Examples:
  invoice-builder render draft.json
  invoice-builder render drafts/ --out-dir out/ -f table
  invoice-builder render draft.json --page-width 8.5 --page-height 11`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVarP(&outDir, "out-dir", "o", ".", "Directory for the PDF files")
	renderCmd.Flags().StringVar(&itemsText, "items-text", "", "Text file to extract line items from (requires API key)")
	renderCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Timeout per draft")
	addPageFlags(renderCmd)
}

// RenderResult holds the outcome for one draft file
type RenderResult struct {
	File          string `json:"file"`
	Output        string `json:"output,omitempty"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
	Total         string `json:"total,omitempty"`
	Pages         int    `json:"pages,omitempty"`
	Size          int    `json:"size,omitempty"`
	Error         string `json:"error,omitempty"`
}

func runRender(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".json")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no draft files found")
	}
	printVerbose("Found %d drafts to render\n", len(files))

	format, err := parseImageFormat(imageFormat)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var imported []model.ItemDraft
	if itemsText != "" {
		imported, err = extractItems(itemsText)
		if err != nil {
			return err
		}
		printVerbose("Extracted %d line items from %s\n", len(imported), itemsText)
	}

	var previewOpts []preview.Option
	if previewWidth > 0 {
		previewOpts = append(previewOpts, preview.WithWidth(previewWidth))
	}
	renderer, err := preview.New(previewOpts...)
	if err != nil {
		return err
	}

	var current string
	exporter := export.New(renderer,
		export.WithVerifier(pdfcheck.New()),
		export.WithRenderOptions(
			paginator.WithPageSize(paginator.PageSize{WidthIn: pageWidth, HeightIn: pageHeight}),
			paginator.WithImageFormat(format),
		),
		export.WithStateObserver(func(s export.State) {
			printVerbose("  %s: %s\n", current, s)
		}),
	)

	results := make([]*RenderResult, 0, len(files))
	failed := 0
	for _, file := range files {
		current = file
		result := renderFile(exporter, file, imported)
		if result.Error != "" {
			failed++
		}
		results = append(results, result)
	}

	if err := outputRenderResults(os.Stdout, results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d drafts failed", failed, len(files))
	}
	return nil
}

func renderFile(exporter *export.Exporter, file string, imported []model.ItemDraft) *RenderResult {
	result := &RenderResult{File: file}

	f, err := os.Open(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer f.Close()

	df, err := model.ReadDraftFile(f)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	draft, err := df.Build()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if len(imported) > 0 {
		if _, err := draft.ImportItems(imported); err != nil {
			result.Error = err.Error()
			return result
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap := draft.Snapshot()
	res, err := exporter.Export(ctx, snap, export.DirSink{Dir: outDir})
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Output = filepath.Join(outDir, res.FileName)
	result.InvoiceNumber = snap.Number
	result.Total = snap.Summary.Total.StringFixed(2)
	result.Pages = res.Layout.PageCount()
	result.Size = res.Size
	return result
}

func extractItems(path string) ([]model.ItemDraft, error) {
	extractor := newExtractor()
	if extractor == nil {
		return nil, fmt.Errorf("--items-text requires an API key (--api-key or LLM_API_KEY)")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	items, err := extractor.ExtractItems(ctx, string(data))
	if err != nil {
		return nil, fmt.Errorf("item extraction failed: %w", err)
	}
	return items, nil
}

func outputRenderResults(w io.Writer, results []*RenderResult) error {
	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tNUMBER\tTOTAL\tPAGES\tOUTPUT")
		fmt.Fprintln(tw, "----\t------\t-----\t-----\t------")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", r.File, r.InvoiceNumber, r.Total, r.Pages, r.Output)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
