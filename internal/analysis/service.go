// Package analysis orchestrates one invoice analysis run: policy
// extraction, archive traversal, per-invoice structuring, aggregation and
// reindexing. The pipeline is single-threaded and synchronous; every PDF
// and model call happens sequentially in call order.
package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/invoice"
)

// DocumentExtractor turns a PDF into text.
type DocumentExtractor interface {
	ExtractText(ctx context.Context, pdfPath, visionPrompt string) (string, error)
}

// ArchiveWalker expands an archive and returns the PDFs inside it.
type ArchiveWalker interface {
	ExtractAndFindPDFs(archivePath, outDir string) ([]string, error)
}

// InvoiceParser structures raw invoice text against the policy.
type InvoiceParser interface {
	Parse(ctx context.Context, rawText, policyText string) (string, error)
}

// Summarizer folds per-employee record text into summaries.
type Summarizer interface {
	Summarize(ctx context.Context, records map[string]string) map[string]invoice.EmployeeSummary
}

// Reindexer rebuilds the vector index from a summary.
type Reindexer interface {
	Reindex(ctx context.Context, summary map[string]invoice.EmployeeSummary) error
}

// Service runs the analysis pipeline.
type Service struct {
	extractor DocumentExtractor
	walker    ArchiveWalker
	parser    InvoiceParser
	agg       Summarizer
	indexer   Reindexer
	workDir   string
	logger    *zap.Logger
}

// NewService creates a new analysis service. workDir is where uploaded
// archives are expanded; each run uses its own subdirectory.
func NewService(extractor DocumentExtractor, walker ArchiveWalker, parser InvoiceParser, agg Summarizer, indexer Reindexer, workDir string, logger *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		walker:    walker,
		parser:    parser,
		agg:       agg,
		indexer:   indexer,
		workDir:   workDir,
		logger:    logger,
	}
}

// Run executes one analysis over a policy PDF and an invoice archive and
// returns the completed session. Unreadable or unparsable invoices are
// dropped and the rest of the batch still completes; only archive
// extraction and indexing failures surface beyond the session.
func (s *Service) Run(ctx context.Context, policyPDF, archivePath string) (*Session, error) {
	session := NewSession()

	s.logger.Info("Starting analysis run",
		zap.String("run_id", session.ID),
		zap.String("policy", policyPDF),
		zap.String("archive", archivePath))

	policyText, err := s.extractor.ExtractText(ctx, policyPDF, invoice.PolicyVisionPrompt)
	if err != nil {
		// Degrade to an empty policy; status judgments will lean on
		// the model's defaults.
		s.logger.Warn("Policy extraction failed", zap.Error(err))
		policyText = ""
	}
	session.PolicyText = policyText

	runDir := filepath.Join(s.workDir, session.ID)
	defer os.RemoveAll(runDir)

	pdfs, err := s.walker.ExtractAndFindPDFs(archivePath, runDir)
	if err != nil {
		s.logger.Error("Archive extraction failed", zap.Error(err))
		session.InvoiceData[ErrorKey] = err.Error()
	} else {
		s.processInvoices(ctx, session, pdfs)
	}

	session.Summary = s.agg.Summarize(ctx, session.InvoiceData)

	if len(session.Summary) > 0 {
		if err := s.indexer.Reindex(ctx, session.Summary); err != nil {
			return session, fmt.Errorf("indexing run %s: %w", session.ID, err)
		}
	}

	session.FinishedAt = time.Now()

	s.logger.Info("Analysis run completed",
		zap.String("run_id", session.ID),
		zap.Int("employees", len(session.Summary)))

	return session, nil
}

// processInvoices extracts, structures and accumulates each PDF. Failures
// drop the invoice and continue.
func (s *Service) processInvoices(ctx context.Context, session *Session, pdfs []string) {
	for _, pdfPath := range pdfs {
		rawText, err := s.extractor.ExtractText(ctx, pdfPath, invoice.InvoiceVisionPrompt)
		if err != nil || strings.TrimSpace(rawText) == "" {
			s.logger.Warn("Dropping unreadable invoice",
				zap.String("path", pdfPath),
				zap.Error(err))
			continue
		}

		record, err := s.parser.Parse(ctx, rawText, session.PolicyText)
		if err != nil {
			s.logger.Warn("Dropping unparsable invoice",
				zap.String("path", pdfPath),
				zap.Error(err))
			continue
		}

		name := invoice.EmployeeName(record)
		if existing, ok := session.InvoiceData[name]; ok {
			session.InvoiceData[name] = existing + invoice.RecordSeparator + record
		} else {
			session.InvoiceData[name] = record
		}

		s.logger.Debug("Processed invoice",
			zap.String("path", pdfPath),
			zap.String("employee", name))
	}
}
