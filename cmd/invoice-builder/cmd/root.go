package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-builder/internal/llm"
)

var (
	version = "1.0.0"

	// Global flags
	verbose        bool
	outputFormat   string
	apiKey         string
	llmBaseURL     string
	llmModel       string
	llmVisionModel string
)

var rootCmd = &cobra.Command{
	Use:   "invoice-builder",
	Short: "Build invoices and export them as paginated PDFs",
	Long: `Invoice Builder edits invoices and exports them as PDF documents.

The printed preview is rendered as one tall image and cut into
half-letter pages (5.5 x 8.5 in); the last page is as tall as its content.

Examples:
  # Start the editing API
  invoice-builder serve

  # Render draft files to PDF
  invoice-builder render draft.json --out-dir out/

  # Fill the items of a draft from a shopping note
  invoice-builder render draft.json --items-text note.txt --api-key <key>

  # Check exported documents
  invoice-builder inspect out/*.pdf -f table`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for LLM provider (env: LLM_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&llmBaseURL, "llm-base-url", "", "LLM API base URL (env: LLM_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&llmModel, "llm-model", "", "LLM model for item extraction (env: LLM_MODEL)")
	rootCmd.PersistentFlags().StringVar(&llmVisionModel, "llm-vision-model", "", "LLM model for receipt images (env: LLM_VISION_MODEL)")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if llmBaseURL == "" {
		llmBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if llmModel == "" {
		llmModel = os.Getenv("LLM_MODEL")
	}
	if llmVisionModel == "" {
		llmVisionModel = os.Getenv("LLM_VISION_MODEL")
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func newLLMClient() *llm.Client {
	var clientOpts []llm.ClientOption
	if llmBaseURL != "" {
		clientOpts = append(clientOpts, llm.WithBaseURL(llmBaseURL))
	}
	return llm.NewClient(apiKey, clientOpts...)
}

// newExtractor returns nil when no API key is configured
func newExtractor() *llm.Extractor {
	if apiKey == "" {
		return nil
	}

	var extractorOpts []llm.ExtractorOption
	if llmModel != "" {
		extractorOpts = append(extractorOpts, llm.WithModel(llmModel))
	}
	if llmVisionModel != "" {
		extractorOpts = append(extractorOpts, llm.WithVisionModel(llmVisionModel))
	}
	return llm.NewExtractor(newLLMClient(), extractorOpts...)
}
