package invoice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// NoEmployeeInfo is the sentinel the extraction prompt instructs the
	// model to emit when an invoice carries no customer or passenger name.
	// Invoices falling back to it are grouped under a literal employee
	// entry with this name.
	NoEmployeeInfo = "No information about employee"

	// DefaultStatus is assigned when no status can be found in a record.
	DefaultStatus = "**Pending Review**"
)

// FieldSpec describes how to pull one field out of a structured invoice
// record: a labeled-line fast path, ordered regex fallbacks over the whole
// text, and a default. The priority-ordered pattern lists are data, not
// control flow.
type FieldSpec struct {
	// Label is the literal line marker of the fast path, e.g.
	// "**EMPLOYEE NAME:**". The value is everything after the first
	// colon with markdown emphasis stripped.
	Label string

	// Reject lists label values treated as absent; finding one returns
	// Default without consulting the fallbacks.
	Reject []string

	// Fallbacks are tried in order against the full text when no label
	// line yields a value. The first submatch longer than one character
	// wins.
	Fallbacks []*regexp.Regexp

	// Default is returned when nothing matches.
	Default string
}

// ExtractField applies a FieldSpec to record text. It never fails; a record
// with no usable field yields the field's default.
func ExtractField(text string, spec FieldSpec) string {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, spec.Label) {
			continue
		}
		_, raw, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value := strings.TrimSpace(strings.ReplaceAll(raw, "*", ""))
		if value == "" {
			continue
		}
		for _, rejected := range spec.Reject {
			if value == rejected {
				return spec.Default
			}
		}
		return value
	}

	for _, pattern := range spec.Fallbacks {
		if matches := pattern.FindStringSubmatch(text); len(matches) > 1 {
			value := strings.TrimSpace(matches[1])
			if len(value) > 1 {
				return value
			}
		}
	}

	return spec.Default
}

var employeeNameSpec = FieldSpec{
	Label:  "**EMPLOYEE NAME:**",
	Reject: []string{NoEmployeeInfo},
	Fallbacks: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Customer Name[:\s]+([A-Za-z ]+)`),
		regexp.MustCompile(`(?i)Passenger[:\s]+([A-Za-z ]+)`),
		regexp.MustCompile(`(?i)Name[:\s]+([A-Za-z ]+)`),
	},
	Default: NoEmployeeInfo,
}

var statusSpec = FieldSpec{
	Label: "**REIMBURSEMENT STATUS:**",
	Fallbacks: []*regexp.Regexp{
		regexp.MustCompile(`(?i)Status[:\s]+([A-Za-z *]+)`),
		regexp.MustCompile(`(?i)Reimbursement[:\s]+([A-Za-z *]+)`),
	},
	Default: DefaultStatus,
}

// EmployeeName extracts the employee name from a structured invoice record.
func EmployeeName(text string) string {
	return ExtractField(text, employeeNameSpec)
}

// ReimbursementStatus extracts the reimbursement status from a record.
func ReimbursementStatus(text string) string {
	return ExtractField(text, statusSpec)
}

var invoiceTypePattern = regexp.MustCompile(`(?i)Invoice Type[:\s]+([A-Za-z/]+)`)

// Category extracts and normalizes the invoice category of a record.
func Category(text string) string {
	raw := "other"
	if matches := invoiceTypePattern.FindStringSubmatch(text); len(matches) > 1 {
		raw = matches[1]
	}
	return NormalizeCategory(raw)
}

// NormalizeCategory maps a free-form invoice type onto one of the fixed
// category buckets. First matching rule wins; the order is the priority.
func NormalizeCategory(raw string) string {
	c := strings.ToLower(raw)
	switch {
	case strings.Contains(c, "meal") || strings.Contains(c, "food"):
		return "meal"
	case strings.Contains(c, "travel") || strings.Contains(c, "ticket") ||
		strings.Contains(c, "flight") || strings.Contains(c, "train"):
		return "travel"
	case strings.Contains(c, "cab") || strings.Contains(c, "taxi") ||
		strings.Contains(c, "uber") || strings.Contains(c, "ola"):
		return "cab"
	case strings.Contains(c, "hotel") || strings.Contains(c, "house") ||
		strings.Contains(c, "pg") || strings.Contains(c, "hostel"):
		return "accommodation"
	default:
		return "other"
	}
}

var datePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

// ExtractDate returns the first DD/MM/YYYY-shaped date in the text, with day
// and month zero-padded. Returns "" when no date pattern is present.
func ExtractDate(text string) string {
	matches := datePattern.FindStringSubmatch(text)
	if matches == nil {
		return ""
	}
	day, _ := strconv.Atoi(matches[1])
	month, _ := strconv.Atoi(matches[2])
	return fmt.Sprintf("%02d/%02d/%s", day, month, matches[3])
}

var amountPattern = regexp.MustCompile(`(?i)Total Amount[:\s]+[₹$]\s*([0-9,]+\.?\d*)`)

// TotalAmount sums every "Total Amount" value in the text after removing
// thousands separators.
func TotalAmount(text string) float64 {
	var total float64
	for _, matches := range amountPattern.FindAllStringSubmatch(text, -1) {
		value := strings.ReplaceAll(matches[1], ",", "")
		if amount, err := strconv.ParseFloat(value, 64); err == nil {
			total += amount
		}
	}
	return total
}
