package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/hrops/invoice-insight/internal/invoice"
)

// Session is the caller-owned state of one analysis run. A fresh session
// is created per run; nothing is shared across runs except the vector
// index the run leaves behind.
type Session struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time

	// PolicyText is the extracted HR reimbursement policy, read-only
	// after extraction.
	PolicyText string

	// InvoiceData maps employee name to that employee's structured
	// invoice records, concatenated with invoice.RecordSeparator.
	// A boundary failure is stored under the literal "Error" key.
	InvoiceData map[string]string

	// Summary is the aggregated per-employee view, computed once at the
	// end of the run.
	Summary map[string]invoice.EmployeeSummary
}

// NewSession creates an empty session
func NewSession() *Session {
	return &Session{
		ID:          uuid.New().String(),
		StartedAt:   time.Now(),
		InvoiceData: make(map[string]string),
		Summary:     make(map[string]invoice.EmployeeSummary),
	}
}

// ErrorKey is the pseudo-employee under which boundary failures are
// recorded so that partial results still surface.
const ErrorKey = "Error"
