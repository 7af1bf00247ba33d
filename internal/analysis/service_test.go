package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hrops/invoice-insight/internal/invoice"
)

type MockExtractor struct{ mock.Mock }

func (m *MockExtractor) ExtractText(ctx context.Context, pdfPath, visionPrompt string) (string, error) {
	args := m.Called(ctx, pdfPath, visionPrompt)
	return args.String(0), args.Error(1)
}

type MockWalker struct{ mock.Mock }

func (m *MockWalker) ExtractAndFindPDFs(archivePath, outDir string) ([]string, error) {
	args := m.Called(archivePath, outDir)
	if pdfs, ok := args.Get(0).([]string); ok {
		return pdfs, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockParser struct{ mock.Mock }

func (m *MockParser) Parse(ctx context.Context, rawText, policyText string) (string, error) {
	args := m.Called(ctx, rawText, policyText)
	return args.String(0), args.Error(1)
}

type MockSummarizer struct{ mock.Mock }

func (m *MockSummarizer) Summarize(ctx context.Context, records map[string]string) map[string]invoice.EmployeeSummary {
	args := m.Called(ctx, records)
	return args.Get(0).(map[string]invoice.EmployeeSummary)
}

type MockIndexer struct{ mock.Mock }

func (m *MockIndexer) Reindex(ctx context.Context, summary map[string]invoice.EmployeeSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func recordFor(name string) string {
	return "**EMPLOYEE NAME:** **" + name + "**\n\n**REIMBURSEMENT STATUS:** **Fully Reimbursed**\n\n**INVOICE DETAILS:**\n- Invoice Type: Meal"
}

func TestService_RunHappyPath(t *testing.T) {
	extractor := new(MockExtractor)
	walker := new(MockWalker)
	parser := new(MockParser)
	summarizer := new(MockSummarizer)
	indexer := new(MockIndexer)

	extractor.On("ExtractText", mock.Anything, "policy.pdf", invoice.PolicyVisionPrompt).Return("policy text", nil)
	walker.On("ExtractAndFindPDFs", "invoices.zip", mock.Anything).Return([]string{"a.pdf", "b.pdf"}, nil)
	extractor.On("ExtractText", mock.Anything, "a.pdf", invoice.InvoiceVisionPrompt).Return("raw a", nil)
	extractor.On("ExtractText", mock.Anything, "b.pdf", invoice.InvoiceVisionPrompt).Return("raw b", nil)
	parser.On("Parse", mock.Anything, "raw a", "policy text").Return(recordFor("John Doe"), nil)
	parser.On("Parse", mock.Anything, "raw b", "policy text").Return(recordFor("John Doe"), nil)

	wantSummary := map[string]invoice.EmployeeSummary{
		"John Doe": {InvoiceCount: 2, InvoiceMode: "meal", ReimbursementStatus: "Fully Reimbursed"},
	}
	summarizer.On("Summarize", mock.Anything, mock.Anything).Return(wantSummary)
	indexer.On("Reindex", mock.Anything, wantSummary).Return(nil)

	svc := NewService(extractor, walker, parser, summarizer, indexer, t.TempDir(), zap.NewNop())
	session, err := svc.Run(context.Background(), "policy.pdf", "invoices.zip")
	require.NoError(t, err)

	assert.Equal(t, "policy text", session.PolicyText)
	// Two records for the same employee are concatenated, not merged.
	assert.Equal(t, recordFor("John Doe")+invoice.RecordSeparator+recordFor("John Doe"), session.InvoiceData["John Doe"])
	assert.Equal(t, wantSummary, session.Summary)
	assert.False(t, session.FinishedAt.IsZero())
	indexer.AssertExpectations(t)
}

func TestService_UnreadableInvoiceDropped(t *testing.T) {
	extractor := new(MockExtractor)
	walker := new(MockWalker)
	parser := new(MockParser)
	summarizer := new(MockSummarizer)
	indexer := new(MockIndexer)

	extractor.On("ExtractText", mock.Anything, "policy.pdf", invoice.PolicyVisionPrompt).Return("policy", nil)
	walker.On("ExtractAndFindPDFs", mock.Anything, mock.Anything).Return([]string{"bad.pdf", "blank.pdf", "good.pdf"}, nil)
	extractor.On("ExtractText", mock.Anything, "bad.pdf", invoice.InvoiceVisionPrompt).Return("", errors.New("unreadable"))
	extractor.On("ExtractText", mock.Anything, "blank.pdf", invoice.InvoiceVisionPrompt).Return("   \n\t", nil)
	extractor.On("ExtractText", mock.Anything, "good.pdf", invoice.InvoiceVisionPrompt).Return("raw", nil)
	parser.On("Parse", mock.Anything, "raw", "policy").Return(recordFor("Jane Roe"), nil)

	summarizer.On("Summarize", mock.Anything, mock.Anything).Return(map[string]invoice.EmployeeSummary{"Jane Roe": {InvoiceCount: 1}})
	indexer.On("Reindex", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(extractor, walker, parser, summarizer, indexer, t.TempDir(), zap.NewNop())
	session, err := svc.Run(context.Background(), "policy.pdf", "invoices.zip")
	require.NoError(t, err)

	// Partial results: only the readable invoice is present.
	require.Len(t, session.InvoiceData, 1)
	assert.Contains(t, session.InvoiceData, "Jane Roe")
}

func TestService_ArchiveFailureBecomesErrorEntry(t *testing.T) {
	extractor := new(MockExtractor)
	walker := new(MockWalker)
	summarizer := new(MockSummarizer)
	indexer := new(MockIndexer)

	extractor.On("ExtractText", mock.Anything, "policy.pdf", invoice.PolicyVisionPrompt).Return("policy", nil)
	walker.On("ExtractAndFindPDFs", mock.Anything, mock.Anything).Return(nil, errors.New("corrupt archive"))

	summarizer.On("Summarize", mock.Anything, mock.MatchedBy(func(records map[string]string) bool {
		return records[ErrorKey] == "corrupt archive"
	})).Return(map[string]invoice.EmployeeSummary{ErrorKey: {}})
	indexer.On("Reindex", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(extractor, walker, new(MockParser), summarizer, indexer, t.TempDir(), zap.NewNop())
	session, err := svc.Run(context.Background(), "policy.pdf", "invoices.zip")
	require.NoError(t, err)
	assert.Equal(t, "corrupt archive", session.InvoiceData[ErrorKey])
}

func TestService_PolicyFailureDegradesToEmpty(t *testing.T) {
	extractor := new(MockExtractor)
	walker := new(MockWalker)
	summarizer := new(MockSummarizer)
	indexer := new(MockIndexer)

	extractor.On("ExtractText", mock.Anything, "policy.pdf", invoice.PolicyVisionPrompt).Return("", errors.New("scan failure"))
	walker.On("ExtractAndFindPDFs", mock.Anything, mock.Anything).Return([]string{}, nil)
	summarizer.On("Summarize", mock.Anything, mock.Anything).Return(map[string]invoice.EmployeeSummary{})

	svc := NewService(extractor, walker, new(MockParser), summarizer, indexer, t.TempDir(), zap.NewNop())
	session, err := svc.Run(context.Background(), "policy.pdf", "invoices.zip")
	require.NoError(t, err)
	assert.Empty(t, session.PolicyText)
	// An empty summary is not indexed, leaving any previous index intact.
	indexer.AssertNotCalled(t, "Reindex", mock.Anything, mock.Anything)
}

func TestService_IndexingFailurePropagates(t *testing.T) {
	extractor := new(MockExtractor)
	walker := new(MockWalker)
	summarizer := new(MockSummarizer)
	indexer := new(MockIndexer)

	extractor.On("ExtractText", mock.Anything, "policy.pdf", invoice.PolicyVisionPrompt).Return("policy", nil)
	walker.On("ExtractAndFindPDFs", mock.Anything, mock.Anything).Return([]string{}, nil)
	summarizer.On("Summarize", mock.Anything, mock.Anything).Return(map[string]invoice.EmployeeSummary{"X": {InvoiceCount: 1}})
	indexer.On("Reindex", mock.Anything, mock.Anything).Return(errors.New("vector store down"))

	svc := NewService(extractor, walker, new(MockParser), summarizer, indexer, t.TempDir(), zap.NewNop())
	session, err := svc.Run(context.Background(), "policy.pdf", "invoices.zip")
	assert.Error(t, err)
	// The session still carries the computed summary for inspection.
	assert.NotEmpty(t, session.Summary)
}
