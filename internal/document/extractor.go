package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
)

// visionDPI renders pages at twice the PDF base resolution of 72 DPI,
// enough for the vision model to read scanned invoices.
const visionDPI = 144

// Extractor turns a PDF into text. Direct text extraction is attempted
// first; scanned documents that yield no text fall back to rendering each
// page and asking the vision model.
type Extractor struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

// NewExtractor creates a new document extractor
func NewExtractor(generator ai.TextGenerator, logger *zap.Logger) *Extractor {
	return &Extractor{
		generator: generator,
		logger:    logger,
	}
}

// ExtractText extracts the text content of the PDF at pdfPath.
// visionPrompt is the instruction sent along with each rendered page when
// the direct extraction comes back empty.
func (e *Extractor) ExtractText(ctx context.Context, pdfPath, visionPrompt string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer doc.Close()

	text, err := e.extractDirect(doc)
	if err != nil {
		e.logger.Warn("Direct text extraction failed, falling back to vision",
			zap.String("path", pdfPath),
			zap.Error(err))
	}
	if strings.TrimSpace(text) != "" {
		e.logger.Debug("Extracted PDF text directly",
			zap.String("path", pdfPath),
			zap.Int("length", len(text)))
		return text, nil
	}

	return e.extractWithVision(ctx, doc, pdfPath, visionPrompt)
}

// extractDirect pulls the embedded text layer page by page
func (e *Extractor) extractDirect(doc *fitz.Document) (string, error) {
	var pages []string
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		text, err := doc.Text(pageNum)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageNum, err)
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}

// extractWithVision renders each page as PNG and sends it to the vision
// model, concatenating the per-page responses in page order.
func (e *Extractor) extractWithVision(ctx context.Context, doc *fitz.Document, pdfPath, visionPrompt string) (string, error) {
	e.logger.Info("Extracting PDF via vision model",
		zap.String("path", pdfPath),
		zap.Int("pages", doc.NumPage()))

	var responses []string
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		imgPNG, err := doc.ImagePNG(pageNum, visionDPI)
		if err != nil {
			return "", fmt.Errorf("failed to render page %d of %s: %w", pageNum, pdfPath, err)
		}

		response, err := e.generator.GenerateWithImage(ctx, visionPrompt, imgPNG)
		if err != nil {
			return "", fmt.Errorf("vision extraction failed on page %d of %s: %w", pageNum, pdfPath, err)
		}
		responses = append(responses, response)
	}

	return strings.Join(responses, "\n\n"), nil
}
