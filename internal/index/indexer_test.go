package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/invoice"
	"github.com/hrops/invoice-insight/internal/vectorstore"
)

// MockStore mocks the vectorstore.Store interface
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	args := m.Called(ctx, collection)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateCollection(ctx context.Context, collection string, vectorSize int) error {
	args := m.Called(ctx, collection, vectorSize)
	return args.Error(0)
}

func (m *MockStore) DeleteCollection(ctx context.Context, collection string) error {
	args := m.Called(ctx, collection)
	return args.Error(0)
}

func (m *MockStore) AddDocuments(ctx context.Context, collection string, docs []vectorstore.Document) ([]string, error) {
	args := m.Called(ctx, collection, docs)
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) SearchWithFilters(ctx context.Context, collection, query string, k int, filters map[string]interface{}) ([]vectorstore.SearchResult, error) {
	args := m.Called(ctx, collection, query, k, filters)
	if results, ok := args.Get(0).([]vectorstore.SearchResult); ok {
		return results, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

func sampleSummary() map[string]invoice.EmployeeSummary {
	return map[string]invoice.EmployeeSummary{
		"John Doe": {
			InvoiceCount:        2,
			InvoiceMode:         "meal",
			ReimbursementStatus: "Fully Reimbursed",
			Description:         "North Indian cuisine, total cost ₹450, Date is 4/2/2025",
		},
	}
}

func TestIndexer_ReindexFreshCollection(t *testing.T) {
	store := new(MockStore)
	store.On("CollectionExists", mock.Anything, "employee_records").Return(false, nil).Once()
	store.On("CreateCollection", mock.Anything, "employee_records", 1536).Return(nil).Once()
	store.On("AddDocuments", mock.Anything, "employee_records", mock.Anything).Return([]string{"id1"}, nil).Once()

	ix := NewIndexer(store, "employee_records", 1536, zap.NewNop())
	require.NoError(t, ix.Reindex(context.Background(), sampleSummary()))
	store.AssertExpectations(t)
}

func TestIndexer_ReindexDeletesExistingAndWaits(t *testing.T) {
	store := new(MockStore)
	// Exists on the initial check, still exists on the first poll, gone
	// on the second.
	store.On("CollectionExists", mock.Anything, "employee_records").Return(true, nil).Twice()
	store.On("CollectionExists", mock.Anything, "employee_records").Return(false, nil).Once()
	store.On("DeleteCollection", mock.Anything, "employee_records").Return(nil).Once()
	store.On("CreateCollection", mock.Anything, "employee_records", 1536).Return(nil).Once()
	store.On("AddDocuments", mock.Anything, "employee_records", mock.Anything).Return([]string{"id1"}, nil).Once()

	ix := NewIndexer(store, "employee_records", 1536, zap.NewNop())
	require.NoError(t, ix.Reindex(context.Background(), sampleSummary()))
	store.AssertExpectations(t)
}

func TestIndexer_EmptySummarySkipsUpsert(t *testing.T) {
	store := new(MockStore)
	store.On("CollectionExists", mock.Anything, "employee_records").Return(false, nil).Once()
	store.On("CreateCollection", mock.Anything, "employee_records", 1536).Return(nil).Once()

	ix := NewIndexer(store, "employee_records", 1536, zap.NewNop())
	require.NoError(t, ix.Reindex(context.Background(), nil))
	store.AssertNotCalled(t, "AddDocuments", mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexer_StoreFailurePropagates(t *testing.T) {
	store := new(MockStore)
	store.On("CollectionExists", mock.Anything, "employee_records").Return(false, errors.New("unreachable"))

	ix := NewIndexer(store, "employee_records", 1536, zap.NewNop())
	assert.Error(t, ix.Reindex(context.Background(), sampleSummary()))
}

func TestBuildDocuments(t *testing.T) {
	docs := BuildDocuments(sampleSummary())
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Contains(t, doc.Content, "Employee Name: John Doe")
	assert.Contains(t, doc.Content, "Invoice Count: 2")
	assert.Equal(t, "John Doe", doc.Metadata["employee_name"])
	assert.Equal(t, DocumentType, doc.Metadata["document_type"])
	assert.Equal(t, doc.Content, doc.Metadata["text"])
	// Date pulled from the description, zero-padded.
	assert.Equal(t, "04/02/2025", doc.Metadata["date"])
}

func TestBuildDocuments_NoDate(t *testing.T) {
	docs := BuildDocuments(map[string]invoice.EmployeeSummary{
		"Jane Roe": {InvoiceCount: 1, InvoiceMode: "other", ReimbursementStatus: "**Pending Review**", Description: "no date here"},
	})
	require.Len(t, docs, 1)
	_, hasDate := docs[0].Metadata["date"]
	assert.False(t, hasDate)
}
