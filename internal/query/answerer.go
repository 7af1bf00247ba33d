// Package query answers natural-language questions about an employee's
// reimbursement history using the indexed records as grounding context.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/ai"
	"github.com/hrops/invoice-insight/internal/vectorstore"
)

// recordQuery is the fixed, topic-agnostic similarity query; the metadata
// filter on employee_name does the real narrowing.
const recordQuery = "employee record"

// DefaultTopK caps how many documents are retrieved per question.
const DefaultTopK = 5

// answerPrompt grounds the model in the retrieved employee context.
const answerPrompt = `
You are an HR assistant AI. Use the following employee information to answer the user's question.

Employee Data:
------------------
%s

User Question:
------------------
%s

Give a concise, helpful, and context-grounded answer.
`

// Answerer retrieves an employee's indexed records and generates a
// grounded answer.
type Answerer struct {
	store      vectorstore.Store
	generator  ai.TextGenerator
	collection string
	topK       int
	logger     *zap.Logger
}

// NewAnswerer creates a new query answerer. topK <= 0 selects DefaultTopK.
func NewAnswerer(store vectorstore.Store, generator ai.TextGenerator, collection string, topK int, logger *zap.Logger) *Answerer {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Answerer{
		store:      store,
		generator:  generator,
		collection: collection,
		topK:       topK,
		logger:     logger,
	}
}

// Answer retrieves the employee's documents via exact-match metadata
// filtering and answers the question from the concatenated context. A
// search with zero hits yields the literal not-found message, not an error.
func (a *Answerer) Answer(ctx context.Context, employeeName, question string) (string, error) {
	filters := map[string]interface{}{"employee_name": employeeName}

	results, err := a.store.SearchWithFilters(ctx, a.collection, recordQuery, a.topK, filters)
	if err != nil {
		return "", fmt.Errorf("retrieving employee records: %w", err)
	}

	if len(results) == 0 {
		a.logger.Info("No indexed records for employee", zap.String("employee", employeeName))
		return fmt.Sprintf("No data found for employee: %s", employeeName), nil
	}

	// Descending similarity order as returned by the store.
	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Content
	}
	contextText := strings.Join(texts, "\n\n")

	answer, err := a.generator.Generate(ctx, fmt.Sprintf(answerPrompt, contextText, question))
	if err != nil {
		return "", fmt.Errorf("generating answer: %w", err)
	}

	a.logger.Debug("Answered employee query",
		zap.String("employee", employeeName),
		zap.Int("retrieved", len(results)))

	return answer, nil
}
