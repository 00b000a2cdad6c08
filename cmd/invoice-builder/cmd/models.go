package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List available LLM models from API",
	Long: `Fetch and list the models offered by the configured LLM endpoint.

The model is used by line item import (serve, render --items-text).
Requires LLM_API_KEY; LLM_BASE_URL defaults to OpenRouter.

To use a specific model, set the environment variables:
  LLM_MODEL=<model-id>         # For text notes
  LLM_VISION_MODEL=<model-id>  # For receipt images

Or use CLI flags:
  --llm-model <model-id>
  --llm-vision-model <model-id>`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("  LLM_BASE_URL:     %s\n", orNotSet(llmBaseURL))
	fmt.Printf("  LLM_MODEL:        %s\n", orNotSet(llmModel))
	fmt.Printf("  LLM_VISION_MODEL: %s\n", orNotSet(llmVisionModel))
	fmt.Printf("  LLM_API_KEY:      %s\n", maskKey(apiKey))
	fmt.Println()

	if apiKey == "" {
		return fmt.Errorf("LLM_API_KEY is required, set it via environment variable or --api-key flag")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models, err := newLLMClient().ListModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No models returned from API.")
		return nil
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].ID < models[j].ID
	})

	fmt.Printf("Available Models (%d):\n", len(models))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL ID\tOWNER\tCREATED")
	fmt.Fprintln(w, "--------\t-----\t-------")
	for _, m := range models {
		created := ""
		if m.Created > 0 {
			created = time.Unix(m.Created, 0).Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.OwnedBy, created)
	}
	return w.Flush()
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "Not set"
	case len(key) > 8:
		return "Set (" + key[:8] + "...)"
	default:
		return "Set"
	}
}
