// Package index rebuilds the employee record collection from an analysis
// run's summary. Reindexing is destructive by design: every run discards
// all previously indexed employees. Incremental indexing is not supported.
package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/invoice"
	"github.com/hrops/invoice-insight/internal/vectorstore"
)

// DocumentType tags every indexed employee record.
const DocumentType = "employee_record"

// deletePollInterval is how often the indexer re-checks that a deleted
// collection is actually gone before recreating it.
const deletePollInterval = time.Second

// Indexer converts employee summaries into indexed documents.
type Indexer struct {
	store      vectorstore.Store
	collection string
	vectorSize int
	logger     *zap.Logger
}

// NewIndexer creates a new indexer. vectorSize must match the embedder's
// output dimension.
func NewIndexer(store vectorstore.Store, collection string, vectorSize int, logger *zap.Logger) *Indexer {
	return &Indexer{
		store:      store,
		collection: collection,
		vectorSize: vectorSize,
		logger:     logger,
	}
}

// Reindex drops the collection if it exists, waits until the deletion is
// observed, recreates it and upserts one document per employee in a single
// batch. The wait has no iteration bound; cancel the context to abandon a
// backend that never reports the deletion.
func (ix *Indexer) Reindex(ctx context.Context, summary map[string]invoice.EmployeeSummary) error {
	exists, err := ix.store.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}

	if exists {
		if err := ix.store.DeleteCollection(ctx, ix.collection); err != nil {
			return fmt.Errorf("deleting collection: %w", err)
		}
		if err := ix.waitForDeletion(ctx); err != nil {
			return err
		}
	}

	if err := ix.store.CreateCollection(ctx, ix.collection, ix.vectorSize); err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	docs := BuildDocuments(summary)
	if len(docs) == 0 {
		ix.logger.Warn("No employees to index")
		return nil
	}

	if _, err := ix.store.AddDocuments(ctx, ix.collection, docs); err != nil {
		return fmt.Errorf("indexing employee records: %w", err)
	}

	ix.logger.Info("Reindexed employee records",
		zap.String("collection", ix.collection),
		zap.Int("employees", len(docs)))
	return nil
}

func (ix *Indexer) waitForDeletion(ctx context.Context) error {
	for {
		exists, err := ix.store.CollectionExists(ctx, ix.collection)
		if err != nil {
			return fmt.Errorf("polling collection deletion: %w", err)
		}
		if !exists {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for collection deletion: %w", ctx.Err())
		case <-time.After(deletePollInterval):
		}
	}
}

// BuildDocuments converts an employee summary map into indexable documents,
// one per employee, in sorted name order.
func BuildDocuments(summary map[string]invoice.EmployeeSummary) []vectorstore.Document {
	names := make([]string, 0, len(summary))
	for name := range summary {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]vectorstore.Document, 0, len(names))
	for _, name := range names {
		entry := summary[name]
		text := fmt.Sprintf(
			"Employee Name: %s\nInvoice Count: %d\nInvoice Mode: %s\nReimbursement Status: %s\nDescription: %s",
			name, entry.InvoiceCount, entry.InvoiceMode, entry.ReimbursementStatus, entry.Description)

		metadata := map[string]interface{}{
			"employee_name": name,
			"document_type": DocumentType,
			"text":          text,
		}
		if date := invoice.ExtractDate(entry.Description); date != "" {
			metadata["date"] = date
		}

		docs = append(docs, vectorstore.Document{
			Content:  text,
			Metadata: metadata,
		})
	}

	return docs
}
