package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/analysis"
	"github.com/hrops/invoice-insight/internal/invoice"
	"github.com/hrops/invoice-insight/internal/repository"
)

// AnalysisRunner executes one full analysis over a policy PDF and an
// invoice archive.
type AnalysisRunner interface {
	Run(ctx context.Context, policyPDF, archivePath string) (*analysis.Session, error)
}

// QueryAnswerer answers a free-text question about one employee.
type QueryAnswerer interface {
	Answer(ctx context.Context, employeeName, question string) (string, error)
}

// RunStore persists completed runs and lists run history.
type RunStore interface {
	Save(ctx context.Context, session *analysis.Session) error
	List(ctx context.Context, limit int) ([]*repository.AnalysisRun, error)
}

// SummaryExporter renders a summary as an Excel workbook.
type SummaryExporter interface {
	BuildWorkbook(summary map[string]invoice.EmployeeSummary) (*excelize.File, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	runner   AnalysisRunner
	answerer QueryAnswerer
	runs     RunStore
	exporter SummaryExporter
	logger   *zap.Logger

	// mu serializes analysis runs and guards lastRun. The pipeline is
	// single-tenant: one run in flight at a time.
	mu      sync.Mutex
	lastRun *analysis.Session
}

// NewHandlers creates a new Handlers instance
func NewHandlers(runner AnalysisRunner, answerer QueryAnswerer, runs RunStore, exporter SummaryExporter, logger *zap.Logger) *Handlers {
	return &Handlers{
		runner:   runner,
		answerer: answerer,
		runs:     runs,
		exporter: exporter,
		logger:   logger,
	}
}

// QueryRequest is the body of POST /query_employee
type QueryRequest struct {
	EmployeeName string `json:"employee_name" binding:"required"`
	Query        string `json:"query" binding:"required"`
}

// AnalyzeResponse is the body of a successful POST /analyze_invoices
type AnalyzeResponse struct {
	Message            string                             `json:"message"`
	TotalEmployees     int                                `json:"total_employees"`
	EmployeesProcessed []string                           `json:"employees_processed"`
	AnalysisSummary    map[string]invoice.EmployeeSummary `json:"analysis_summary"`
}

// EmployeeEntry is one employee in the GET /employees listing
type EmployeeEntry struct {
	EmployeeName        string `json:"employee_name"`
	InvoiceCount        int    `json:"invoice_count"`
	InvoiceMode         string `json:"invoice_mode"`
	ReimbursementStatus string `json:"reimbursement_status"`
	Description         string `json:"description"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func abortWithError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// AnalyzeInvoices handles POST /analyze_invoices. It accepts a
// multipart upload of an HR policy PDF and an invoice ZIP, runs the
// full pipeline and replaces the previously indexed data.
func (h *Handlers) AnalyzeInvoices(c *gin.Context) {
	policyFile, err := c.FormFile("hr_policy")
	if err != nil {
		if isBodyTooLarge(err) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "upload exceeds the configured size limit")
			return
		}
		abortWithError(c, http.StatusBadRequest, "hr_policy file is required")
		return
	}
	zipFile, err := c.FormFile("invoices_zip")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "invoices_zip file is required")
		return
	}

	if !strings.HasSuffix(strings.ToLower(policyFile.Filename), ".pdf") {
		abortWithError(c, http.StatusBadRequest, "HR policy must be a PDF file")
		return
	}
	if !strings.HasSuffix(strings.ToLower(zipFile.Filename), ".zip") {
		abortWithError(c, http.StatusBadRequest, "Invoices must be in ZIP format")
		return
	}

	uploadDir, err := os.MkdirTemp("", "invoice-upload-*")
	if err != nil {
		h.logger.Error("Failed to create upload directory", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to store uploads")
		return
	}
	defer os.RemoveAll(uploadDir)

	policyPath := filepath.Join(uploadDir, "hr_policy.pdf")
	archivePath := filepath.Join(uploadDir, "invoices.zip")
	if err := c.SaveUploadedFile(policyFile, policyPath); err != nil {
		h.logger.Error("Failed to save policy upload", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to store uploads")
		return
	}
	if err := c.SaveUploadedFile(zipFile, archivePath); err != nil {
		h.logger.Error("Failed to save invoice archive upload", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to store uploads")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	session, err := h.runner.Run(c.Request.Context(), policyPath, archivePath)
	if err != nil {
		h.logger.Error("Analysis run failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, fmt.Sprintf("Error processing invoices: %v", err))
		return
	}
	h.lastRun = session

	if h.runs != nil {
		if err := h.runs.Save(c.Request.Context(), session); err != nil {
			// Run history is best-effort; the analysis itself succeeded.
			h.logger.Warn("Failed to persist run history", zap.String("run_id", session.ID), zap.Error(err))
		}
	}

	names := make([]string, 0, len(session.Summary))
	for name := range session.Summary {
		names = append(names, name)
	}
	sort.Strings(names)

	c.JSON(http.StatusOK, AnalyzeResponse{
		Message:            "Invoice analysis completed successfully",
		TotalEmployees:     len(session.Summary),
		EmployeesProcessed: names,
		AnalysisSummary:    session.Summary,
	})
}

// QueryEmployee handles POST /query_employee
func (h *Handlers) QueryEmployee(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "employee_name and query are required")
		return
	}

	if h.summary() == nil {
		abortWithError(c, http.StatusBadRequest,
			"No data available. Please analyze invoices first using /analyze_invoices endpoint")
		return
	}

	answer, err := h.answerer.Answer(c.Request.Context(), req.EmployeeName, req.Query)
	if err != nil {
		h.logger.Error("Query failed",
			zap.String("employee", req.EmployeeName),
			zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, fmt.Sprintf("Error processing query: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"employee_name": req.EmployeeName,
		"query":         req.Query,
		"answer":        answer,
	})
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Invoice Analysis API is running",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// ListEmployees handles GET /employees
func (h *Handlers) ListEmployees(c *gin.Context) {
	summary := h.summary()
	if summary == nil {
		c.JSON(http.StatusOK, gin.H{
			"message":   "No employees processed yet",
			"employees": []EmployeeEntry{},
		})
		return
	}

	entries := make([]EmployeeEntry, 0, len(summary))
	for name, data := range summary {
		entries = append(entries, EmployeeEntry{
			EmployeeName:        name,
			InvoiceCount:        data.InvoiceCount,
			InvoiceMode:         data.InvoiceMode,
			ReimbursementStatus: data.ReimbursementStatus,
			Description:         data.Description,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].EmployeeName < entries[j].EmployeeName })

	c.JSON(http.StatusOK, gin.H{
		"total_employees": len(entries),
		"employees":       entries,
	})
}

// GetEmployee handles GET /employee/:name with a case-insensitive
// name match.
func (h *Handlers) GetEmployee(c *gin.Context) {
	summary := h.summary()
	if summary == nil {
		abortWithError(c, http.StatusBadRequest,
			"No data available. Please analyze invoices first using /analyze_invoices endpoint")
		return
	}

	requested := c.Param("name")
	for name, data := range summary {
		if strings.EqualFold(name, requested) {
			c.JSON(http.StatusOK, gin.H{
				"employee_name": name,
				"details":       data,
			})
			return
		}
	}

	abortWithError(c, http.StatusNotFound, fmt.Sprintf("Employee '%s' not found", requested))
}

// ListRuns handles GET /api/v1/runs
func (h *Handlers) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to list runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(runs),
		"runs":  runs,
	})
}

// ExportSummary handles GET /api/v1/export, streaming the latest
// run's summary as an Excel workbook.
func (h *Handlers) ExportSummary(c *gin.Context) {
	summary := h.summary()
	if summary == nil {
		abortWithError(c, http.StatusBadRequest,
			"No data available. Please analyze invoices first using /analyze_invoices endpoint")
		return
	}

	workbook, err := h.exporter.BuildWorkbook(summary)
	if err != nil {
		h.logger.Error("Failed to build export workbook", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "failed to build export")
		return
	}
	defer workbook.Close()

	c.Header("Content-Disposition", `attachment; filename="employee_summary.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := workbook.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream export workbook", zap.Error(err))
	}
}

// summary returns the latest run's summary, or nil when no run has
// completed yet.
func (h *Handlers) summary() map[string]invoice.EmployeeSummary {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.lastRun == nil || len(h.lastRun.Summary) == 0 {
		return nil
	}
	return h.lastRun.Summary
}
