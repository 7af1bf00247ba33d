package invoice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const sampleRecord = `**EMPLOYEE NAME:** **John Doe**

**REIMBURSEMENT STATUS:** **Fully Reimbursed**

**INVOICE DETAILS:**
- Invoice Type: Meal
- Date: 4/2/2025
- Total Amount: ₹450
- Description: North Indian cuisine
- Reason: Team lunch`

func TestAggregator_InvoiceCountMatchesMarkers(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("North Indian cuisine at Punjabi Dhaba, total cost ₹450", nil)

	records := map[string]string{
		"John Doe": sampleRecord + RecordSeparator + sampleRecord,
		"Jane Roe": sampleRecord,
	}

	agg := NewAggregator(gen, zap.NewNop())
	summary := agg.Summarize(context.Background(), records)

	for name, entry := range summary {
		assert.Equal(t, strings.Count(records[name], DetailsMarker), entry.InvoiceCount)
	}
	assert.Equal(t, 2, summary["John Doe"].InvoiceCount)
	assert.Equal(t, 1, summary["Jane Roe"].InvoiceCount)
}

func TestAggregator_SummaryFields(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "SHORT meal description")
	})).Return(`"North Indian cuisine at Punjabi Dhaba, total cost ₹450, Date is 4/2/2025"`, nil)

	agg := NewAggregator(gen, zap.NewNop())
	summary := agg.Summarize(context.Background(), map[string]string{"John Doe": sampleRecord})

	entry := summary["John Doe"]
	assert.Equal(t, "meal", entry.InvoiceMode)
	assert.Equal(t, "Fully Reimbursed", entry.ReimbursementStatus)
	// Surrounding quotes stripped.
	assert.Equal(t, "North Indian cuisine at Punjabi Dhaba, total cost ₹450, Date is 4/2/2025", entry.Description)
}

func TestAggregator_DescriptionFailureDegrades(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))

	agg := NewAggregator(gen, zap.NewNop())
	summary := agg.Summarize(context.Background(), map[string]string{"John Doe": sampleRecord})

	assert.Equal(t, "Unable to generate description", summary["John Doe"].Description)
	// The rest of the entry is still populated.
	assert.Equal(t, 1, summary["John Doe"].InvoiceCount)
}

func TestAggregator_EmptyInput(t *testing.T) {
	agg := NewAggregator(new(MockGenerator), zap.NewNop())
	summary := agg.Summarize(context.Background(), map[string]string{})
	assert.Empty(t, summary)
}
