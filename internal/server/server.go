package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-builder/internal/export"
	"github.com/rezonia/invoice-builder/internal/llm"
	"github.com/rezonia/invoice-builder/internal/model"
	"github.com/rezonia/invoice-builder/internal/paginator"
	"github.com/rezonia/invoice-builder/internal/pdfcheck"
	"github.com/rezonia/invoice-builder/internal/preview"
)

// Config holds server configuration
type Config struct {
	Address        string
	APIKey         string
	LLMBaseURL     string
	LLMModel       string
	LLMVisionModel string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Debug          bool

	// Zero values fall back to the paginator and preview defaults
	PageSize     paginator.PageSize
	ImageFormat  paginator.ImageFormat
	PreviewWidth int
}

// Server is a single-user editing API around one invoice draft
type Server struct {
	config    *Config
	router    *gin.Engine
	draft     *model.Draft
	renderer  *preview.Renderer
	exporter  *export.Exporter
	extractor *llm.Extractor
}

// NewServer creates a new API server
func NewServer(config *Config) (*Server, error) {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	var previewOpts []preview.Option
	if config.PreviewWidth > 0 {
		previewOpts = append(previewOpts, preview.WithWidth(config.PreviewWidth))
	}
	renderer, err := preview.New(previewOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview renderer: %w", err)
	}

	var renderOpts []paginator.Option
	if config.PageSize.WidthIn > 0 && config.PageSize.HeightIn > 0 {
		renderOpts = append(renderOpts, paginator.WithPageSize(config.PageSize))
	}
	if config.ImageFormat != "" {
		renderOpts = append(renderOpts, paginator.WithImageFormat(config.ImageFormat))
	}

	// Line item import is only available with an API key
	var extractor *llm.Extractor
	if config.APIKey != "" {
		var clientOpts []llm.ClientOption
		if config.LLMBaseURL != "" {
			clientOpts = append(clientOpts, llm.WithBaseURL(config.LLMBaseURL))
		}
		client := llm.NewClient(config.APIKey, clientOpts...)

		var extractorOpts []llm.ExtractorOption
		if config.LLMModel != "" {
			extractorOpts = append(extractorOpts, llm.WithModel(config.LLMModel))
		}
		if config.LLMVisionModel != "" {
			extractorOpts = append(extractorOpts, llm.WithVisionModel(config.LLMVisionModel))
		}
		extractor = llm.NewExtractor(client, extractorOpts...)
	}

	s := &Server{
		config:   config,
		router:   router,
		draft:    model.NewDraft(),
		renderer: renderer,
		exporter: export.New(renderer,
			export.WithVerifier(pdfcheck.New()),
			export.WithRenderOptions(renderOpts...),
		),
		extractor: extractor,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		// Invoice header and totals
		v1.GET("/invoice", s.handleGetInvoice)
		v1.PUT("/invoice", s.handleUpdateInvoice)
		v1.POST("/next", s.handleNext)

		// Line items
		v1.POST("/items", s.handleAddItem)
		v1.PATCH("/items/:id", s.handleEditItem)
		v1.DELETE("/items/:id", s.handleRemoveItem)
		v1.POST("/items/import", s.handleImportItems)

		// Output
		v1.GET("/preview.png", s.handlePreview)
		v1.POST("/export", s.handleExport)
		v1.GET("/export/status", s.handleExportStatus)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Draft returns the invoice being edited
func (s *Server) Draft() *model.Draft {
	return s.draft
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGetInvoice(c *gin.Context) {
	c.JSON(http.StatusOK, s.invoiceResponse())
}

func (s *Server) handleUpdateInvoice(c *gin.Context) {
	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	// Validate everything before touching the draft
	if req.InvoiceNumber != nil && strings.TrimSpace(*req.InvoiceNumber) == "" {
		writeError(c, model.NewInvalidFieldError("", model.FieldInvoiceNumber, *req.InvoiceNumber, "must not be empty", nil))
		return
	}
	if req.TaxPercent != nil {
		if _, err := model.ParsePercent(model.FieldTaxPercent, *req.TaxPercent); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.DiscountPercent != nil {
		if _, err := model.ParsePercent(model.FieldDiscountPercent, *req.DiscountPercent); err != nil {
			writeError(c, err)
			return
		}
	}

	if req.InvoiceNumber != nil {
		if err := s.draft.SetInvoiceNumber(*req.InvoiceNumber); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.CashierName != nil {
		s.draft.SetCashier(*req.CashierName)
	}
	if req.CustomerName != nil {
		s.draft.SetCustomer(*req.CustomerName)
	}
	if req.TaxPercent != nil {
		if err := s.draft.SetTaxPercent(*req.TaxPercent); err != nil {
			writeError(c, err)
			return
		}
	}
	if req.DiscountPercent != nil {
		if err := s.draft.SetDiscountPercent(*req.DiscountPercent); err != nil {
			writeError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, s.invoiceResponse())
}

func (s *Server) handleNext(c *gin.Context) {
	c.JSON(http.StatusOK, NextResponse{InvoiceNumber: s.draft.AdvanceToNextInvoice()})
}

func (s *Server) handleAddItem(c *gin.Context) {
	c.JSON(http.StatusCreated, s.draft.AddItem())
}

func (s *Server) handleEditItem(c *gin.Context) {
	var req EditItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	update, err := model.ParseItemUpdate(req.Field, req.Value)
	if err != nil {
		writeError(c, err)
		return
	}

	item, err := s.draft.EditItem(c.Param("id"), update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":    item,
		"summary": s.draft.Summary(),
	})
}

func (s *Server) handleRemoveItem(c *gin.Context) {
	s.draft.RemoveItem(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleImportItems(c *gin.Context) {
	if s.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "line item import unavailable",
			Details: "no LLM API key configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	var drafts []model.ItemDraft
	var err error

	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "image/") {
		body, readErr := c.GetRawData()
		if readErr != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
			return
		}
		drafts, err = s.extractor.ExtractItemsFromImage(ctx, body, contentType)
	} else {
		var req ImportRequest
		if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: bindErr.Error()})
			return
		}
		drafts, err = s.extractor.ExtractItems(ctx, req.Text)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	added, err := s.draft.ImportItems(drafts)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ImportResponse{
		Items:   added,
		Summary: s.draft.Summary(),
	})
}

func (s *Server) handlePreview(c *gin.Context) {
	img, err := s.renderer.Render(s.draft.Snapshot())
	if err != nil {
		writeError(c, model.NewCaptureError("render preview", err))
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeError(c, model.NewCaptureError("encode preview", err))
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()

	sink := &export.BufferSink{}
	result, err := s.exporter.Export(ctx, s.draft.Snapshot(), sink)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Header("X-Page-Count", strconv.Itoa(result.Layout.PageCount()))
	c.Data(http.StatusOK, "application/pdf", sink.Bytes())
}

func (s *Server) handleExportStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ExportStatusResponse{
		State: s.exporter.State().String(),
		Busy:  s.exporter.Busy(),
	})
}

func (s *Server) invoiceResponse() InvoiceResponse {
	return InvoiceResponse{
		Snapshot:    s.draft.Snapshot(),
		ExportState: s.exporter.State().String(),
	}
}

// writeError maps domain errors to status codes
func writeError(c *gin.Context, err error) {
	var (
		fieldErr   *model.InvalidFieldError
		captureErr *model.CaptureError
		exportErr  *model.ExportError
	)

	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  err.Error(),
			Field:  fieldErr.Field,
			ItemID: fieldErr.ItemID,
		})
	case errors.Is(err, model.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, export.ErrExportInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.As(err, &captureErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Stage: "capturing"})
	case errors.As(err, &exportErr):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Stage: exportErr.Stage})
	case errors.Is(err, llm.ErrNoItems):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
}
