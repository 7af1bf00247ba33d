package invoice

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
)

const (
	// DetailsMarker appears once per invoice in a structured record, so
	// its occurrence count in an employee's concatenated text is the
	// invoice count.
	DetailsMarker = "**INVOICE DETAILS:**"

	// RecordSeparator joins multiple invoice records of one employee.
	RecordSeparator = "\n\n---\n\n"
)

// EmployeeSummary is the aggregated view of one employee's invoices.
// The JSON keys mirror the summary shape consumed by clients.
type EmployeeSummary struct {
	InvoiceCount        int    `json:"invoice_count"`
	InvoiceMode         string `json:"invoice_mode"`
	ReimbursementStatus string `json:"Reimbursement_Status"`
	Description         string `json:"description"`
}

// Aggregator folds per-employee raw record text into summaries.
type Aggregator struct {
	generator ai.TextGenerator
	logger    *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(generator ai.TextGenerator, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		generator: generator,
		logger:    logger,
	}
}

// Summarize derives one EmployeeSummary per employee from the concatenated
// record text. Category, status and description are computed over the whole
// blob, so a multi-invoice employee gets a single representative entry.
func (a *Aggregator) Summarize(ctx context.Context, records map[string]string) map[string]EmployeeSummary {
	summary := make(map[string]EmployeeSummary, len(records))

	for name, text := range records {
		count := strings.Count(text, DetailsMarker)
		category := Category(text)
		status := ReimbursementStatus(text)
		description := a.describe(ctx, text, category)

		// Computed for visibility only; the summary shape does not
		// carry a total.
		total := TotalAmount(text)

		a.logger.Info("Aggregated employee invoices",
			zap.String("employee", name),
			zap.Int("invoice_count", count),
			zap.String("category", category),
			zap.Float64("total_amount", total))

		summary[name] = EmployeeSummary{
			InvoiceCount:        count,
			InvoiceMode:         category,
			ReimbursementStatus: status,
			Description:         description,
		}
	}

	return summary
}

// describe generates the category-specific short description. Generation
// failures degrade to a placeholder so the summary still carries an entry.
func (a *Aggregator) describe(ctx context.Context, text, category string) string {
	response, err := a.generator.Generate(ctx, DescriptionPrompt(category)+text)
	if err != nil {
		a.logger.Warn("Description generation failed",
			zap.String("category", category),
			zap.Error(err))
		return "Unable to generate description"
	}

	description := strings.TrimSpace(response)
	if strings.HasPrefix(description, `"`) && strings.HasSuffix(description, `"`) && len(description) > 1 {
		description = description[1 : len(description)-1]
	}
	return description
}
