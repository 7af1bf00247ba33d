package invoice

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParser_EmbedsPolicyAndRawText(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "policy section 5.1 food budget ₹500") &&
			strings.Contains(prompt, "Restaurant bill total 450") &&
			strings.Contains(prompt, "Customer Name") &&
			strings.Contains(prompt, "Passenger Details")
	})).Return(sampleRecord, nil)

	parser := NewParser(gen, zap.NewNop())
	record, err := parser.Parse(context.Background(), "Restaurant bill total 450", "policy section 5.1 food budget ₹500")
	require.NoError(t, err)

	// The model response is returned verbatim, no validation.
	assert.Equal(t, sampleRecord, record)
	gen.AssertExpectations(t)
}

func TestParser_GenerationError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("timeout"))

	parser := NewParser(gen, zap.NewNop())
	record, err := parser.Parse(context.Background(), "raw", "policy")
	assert.Error(t, err)
	assert.Empty(t, record)
}
