package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	pageWidth    float64
	pageHeight   float64
	imageFormat  string
	previewWidth int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing API",
	Long: `Start an HTTP API that holds one invoice draft in memory.

The API provides endpoints for:
  - GET    /api/v1/invoice         - Current draft and totals
  - PUT    /api/v1/invoice         - Set number, names, tax and discount
  - POST   /api/v1/items           - Add a line item
  - PATCH  /api/v1/items/:id       - Edit name, qty or price of an item
  - DELETE /api/v1/items/:id       - Remove an item
  - POST   /api/v1/items/import    - Extract items from text or a receipt image
  - POST   /api/v1/next            - Start the next invoice
  - GET    /api/v1/preview.png     - Printed preview
  - POST   /api/v1/export          - Download the PDF
  - GET    /health                 - Health check

Examples:
  # Start server on default port
  invoice-builder serve

  # Letter pages, JPEG slices
  invoice-builder serve --page-width 8.5 --page-height 11 --image-format jpeg

  # Start in debug mode
  invoice-builder serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
	addPageFlags(serveCmd)
}

// addPageFlags registers the paginator flags shared by serve and render
func addPageFlags(c *cobra.Command) {
	c.Flags().Float64Var(&pageWidth, "page-width", paginator.DefaultPageSize.WidthIn, "Page width in inches")
	c.Flags().Float64Var(&pageHeight, "page-height", paginator.DefaultPageSize.HeightIn, "Page height in inches")
	c.Flags().StringVar(&imageFormat, "image-format", "png", "Page image encoding (png, jpeg)")
	c.Flags().IntVar(&previewWidth, "preview-width", 0, "Preview raster width in pixels (default 800)")
}

func runServe(cmd *cobra.Command, args []string) error {
	format, err := parseImageFormat(imageFormat)
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:        serverAddr,
		APIKey:         apiKey,
		LLMBaseURL:     llmBaseURL,
		LLMModel:       llmModel,
		LLMVisionModel: llmVisionModel,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		Debug:          serverDebug,
		PageSize:       paginator.PageSize{WidthIn: pageWidth, HeightIn: pageHeight},
		ImageFormat:    format,
		PreviewWidth:   previewWidth,
	}

	srv, err := server.NewServer(config)
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	printVerbose("Page size %gx%gin, %s slices\n", pageWidth, pageHeight, format)
	if apiKey != "" {
		fmt.Println("Line item import enabled")
	} else {
		fmt.Println("Line item import disabled (no API key)")
	}

	return srv.Run()
}
