package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmployeeName_LabelFastPath(t *testing.T) {
	record := "**EMPLOYEE NAME:** **John Doe**\n\n**REIMBURSEMENT STATUS:** **Fully Reimbursed**"
	assert.Equal(t, "John Doe", EmployeeName(record))
}

func TestEmployeeName_SentinelNotOverriddenByFallback(t *testing.T) {
	// The primary label was found, so the fallback regexes must not run
	// even though "Name" appears elsewhere in the text.
	record := "**EMPLOYEE NAME:** No information about employee\nRestaurant Name: Punjabi Dhaba"
	assert.Equal(t, NoEmployeeInfo, EmployeeName(record))
}

func TestEmployeeName_FallbackPatterns(t *testing.T) {
	tests := []struct {
		name   string
		record string
		want   string
	}{
		{"customer name", "Invoice #42\nCustomer Name: Priya Sharma\nTotal: 500", "Priya Sharma"},
		{"passenger details", "Passenger: Rahul Verma\nPNR 884213", "Rahul Verma"},
		{"generic name label", "Name: Anita Desai", "Anita Desai"},
		{"nothing usable", "Invoice #42\nTotal: 500", NoEmployeeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmployeeName(tt.record))
		})
	}
}

func TestReimbursementStatus(t *testing.T) {
	record := "**EMPLOYEE NAME:** **Jane**\n**REIMBURSEMENT STATUS:** **Partially Reimbursed**"
	assert.Equal(t, "Partially Reimbursed", ReimbursementStatus(record))

	assert.Equal(t, DefaultStatus, ReimbursementStatus("no labels here"))
}

func TestNormalizeCategory_Totality(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Meal", "meal"},
		{"food", "meal"},
		{"Travel", "travel"},
		{"flight", "travel"},
		{"train ticket", "travel"},
		{"Cab", "cab"},
		{"uber", "cab"},
		{"ola", "cab"},
		{"hotel", "accommodation"},
		{"hostel", "accommodation"},
		{"pg", "accommodation"},
		{"subscription", "other"},
		{"", "other"},
		// Priority: meal wins over travel keywords when both match.
		{"meal/travel", "meal"},
		{"travel cab", "travel"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCategory(tt.raw), "raw=%q", tt.raw)
	}
}

func TestCategory_FromInvoiceType(t *testing.T) {
	record := "**INVOICE DETAILS:**\n- Invoice Type: Cab\n- Total Amount: ₹350"
	assert.Equal(t, "cab", Category(record))

	assert.Equal(t, "other", Category("no invoice type line"))
}

func TestExtractDate(t *testing.T) {
	assert.Equal(t, "03/01/2024", ExtractDate("Date is 3/1/2024, within limit"))
	assert.Equal(t, "23/05/2024", ExtractDate("cost ₹600, Date is 23/5/2024"))
	assert.Equal(t, "", ExtractDate("no dates in sight"))

	// Idempotent and format-stable: re-extracting an already padded date
	// yields the same value.
	padded := ExtractDate("Date is 3/1/2024")
	assert.Equal(t, padded, ExtractDate(padded))
}

func TestTotalAmount(t *testing.T) {
	text := "- Total Amount: ₹1,250.50\nsome text\n- Total Amount: $300"
	assert.InDelta(t, 1550.50, TotalAmount(text), 0.001)

	assert.Zero(t, TotalAmount("Total Amount: not a number"))
}

func TestExtractField_EmptyLabelValueKeepsScanning(t *testing.T) {
	record := "**EMPLOYEE NAME:**\n**EMPLOYEE NAME:** **Asha**"
	assert.Equal(t, "Asha", EmployeeName(record))
}
