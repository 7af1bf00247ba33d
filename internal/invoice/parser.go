package invoice

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
)

// Parser structures raw invoice text into the labeled record format using
// the text-generation capability. The response is returned verbatim; the
// field extractors tolerate missing or malformed labels downstream.
type Parser struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

// NewParser creates a new invoice parser
func NewParser(generator ai.TextGenerator, logger *zap.Logger) *Parser {
	return &Parser{
		generator: generator,
		logger:    logger,
	}
}

// Parse submits the raw invoice text together with the HR policy and
// returns the model's structured record.
func (p *Parser) Parse(ctx context.Context, rawText, policyText string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nExtracted text:\n\n%s", ExtractionPrompt(policyText), rawText)

	record, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("invoice structuring failed: %w", err)
	}

	p.logger.Debug("Structured invoice record",
		zap.Int("raw_length", len(rawText)),
		zap.Int("record_length", len(record)))

	return record, nil
}
