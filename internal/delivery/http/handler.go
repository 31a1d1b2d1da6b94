package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pickpost/backend/internal/domain"
	"github.com/pickpost/backend/internal/infrastructure/ingest"
	"github.com/pickpost/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	drafts         *usecase.DraftService
	defaultMaxRecs int
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(drafts *usecase.DraftService, defaultMaxRecs int, maxUploadBytes int64, logger *zap.Logger) *Handler {
	if defaultMaxRecs <= 0 {
		defaultMaxRecs = 3
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = 25 * 1024 * 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		drafts:         drafts,
		defaultMaxRecs: defaultMaxRecs,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pickpost-backend",
		"version": "1.0.0",
	})
}

// GenerateDrafts handles the catalogue/customers upload and produces one
// draft per customer. Products arrive either as a CSV (products_csv) or as
// catalogue layout text (products_txt); the CSV wins when both are present.
func (h *Handler) GenerateDrafts(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Upload is too large. Please keep files under %d MB.", h.maxUploadBytes/(1024*1024)),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse upload: " + err.Error()})
		return
	}

	customers, err := h.parseCustomersUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, scrapeLogs, err := h.parseProductsUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := usecase.GenerateOptions{
		MaxRecommendations: h.parseMaxRecs(c.PostForm("max_recs")),
		UseAICopy:          parseBoolField(c.PostForm("use_ai")),
		CTAText:            c.PostForm("cta_text"),
		CTAURL:             c.PostForm("cta_url"),
		Templates: usecase.ComposerConfig{
			SenderName:       c.PostForm("sender_name"),
			SubjectTemplate:  c.PostForm("subject_tpl"),
			GreetingTemplate: c.PostForm("greeting_tpl"),
			IntroTemplate:    c.PostForm("intro_tpl"),
			FooterTemplate:   c.PostForm("footer_tpl"),
		},
	}

	summary, err := h.drafts.GenerateDrafts(c.Request.Context(), products, customers, opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"batchId":       summary.BatchID,
		"productCount":  summary.ProductCount,
		"customerCount": summary.CustomerCount,
		"drafts":        summary.Drafts,
		"scrapeLog":     scrapeLogs,
	})
}

// ListDrafts returns drafts, optionally filtered by batch_id and status.
func (h *Handler) ListDrafts(c *gin.Context) {
	filter := domain.DraftFilter{
		BatchID: c.Query("batch_id"),
		Status:  domain.DraftStatus(c.Query("status")),
	}
	drafts, err := h.drafts.List(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts, "count": len(drafts)})
}

// GetDraft returns one draft by ID.
func (h *Handler) GetDraft(c *gin.Context) {
	draft, err := h.drafts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// UpdateDraft applies subject/body edits to a draft.
func (h *Handler) UpdateDraft(c *gin.Context) {
	var update domain.DraftUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	draft, err := h.drafts.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// ApproveDraft marks a draft ready for dispatch.
func (h *Handler) ApproveDraft(c *gin.Context) {
	draft, err := h.drafts.Approve(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SendDraft dispatches one approved draft.
func (h *Handler) SendDraft(c *gin.Context) {
	draft, err := h.drafts.Send(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

// SendBatch dispatches every approved draft in a batch.
func (h *Handler) SendBatch(c *gin.Context) {
	batchID := c.Query("batch_id")
	if batchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "batch_id query parameter is required"})
		return
	}

	outcomes, err := h.drafts.SendBatch(c.Request.Context(), batchID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes, "count": len(outcomes)})
}

// ExportDrafts streams drafts as a mail-merge CSV download.
func (h *Handler) ExportDrafts(c *gin.Context) {
	filter := domain.DraftFilter{
		BatchID: c.Query("batch_id"),
		Status:  domain.DraftStatus(c.Query("status")),
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="mail_merge.csv"`)

	if err := h.drafts.ExportCSV(c.Request.Context(), c.Writer, filter); err != nil {
		h.logger.Error("csv export failed", zap.Error(err))
		c.Status(http.StatusInternalServerError)
	}
}

// parseCustomersUpload reads the required customers_csv file part.
func (h *Handler) parseCustomersUpload(c *gin.Context) ([]domain.Customer, error) {
	file, err := openFormFile(c, "customers_csv")
	if err != nil {
		return nil, fmt.Errorf("please upload a valid customers CSV (customers_csv)")
	}
	defer file.Close()

	customers, err := ingest.ParseCustomers(file)
	if err != nil {
		return nil, fmt.Errorf("could not read customers CSV: %w", err)
	}
	return customers, nil
}

// parseProductsUpload reads products_csv or products_txt, preferring the CSV.
// The second return value carries scrape log lines for the text path.
func (h *Handler) parseProductsUpload(c *gin.Context) ([]domain.Product, []string, error) {
	if file, err := openFormFile(c, "products_csv"); err == nil {
		defer file.Close()
		products, err := ingest.ParseProducts(file)
		if err != nil {
			return nil, nil, fmt.Errorf("problem reading products file: %w", err)
		}
		return products, nil, nil
	}

	if file, err := openFormFile(c, "products_txt"); err == nil {
		defer file.Close()
		products, logs, err := ingest.ParseCatalogueText(file)
		if err != nil {
			return nil, logs, fmt.Errorf("problem reading products file: %w", err)
		}
		return products, logs, nil
	}

	return nil, nil, fmt.Errorf("please upload either a products CSV (products_csv) or catalogue text (products_txt)")
}

// parseMaxRecs coerces the form value to a positive integer, falling back to
// the configured default when missing, unparseable, or non-positive.
func (h *Handler) parseMaxRecs(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return h.defaultMaxRecs
	}
	return n
}

// respondError maps domain errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrDraftNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDraftNotEditable), errors.Is(err, domain.ErrDraftNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingRequiredField), errors.Is(err, domain.ErrMissingColumn),
		errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSendFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func openFormFile(c *gin.Context, field string) (multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	return fh.Open()
}

func parseBoolField(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
