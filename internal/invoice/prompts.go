package invoice

import "fmt"

// PolicyVisionPrompt is sent with each rendered page of a scanned policy PDF.
const PolicyVisionPrompt = "Extract the HR Reimbursement policy from this image. Return the text in markdown format."

// InvoiceVisionPrompt is sent with each rendered page of a scanned invoice.
const InvoiceVisionPrompt = "Extract all text and details from this invoice image:"

// ExtractionPrompt builds the structuring prompt for a single invoice. The
// HR policy is embedded so the model can judge the reimbursement status, and
// the output contract pins the exact labels the field extractors look for.
func ExtractionPrompt(policyText string) string {
	return fmt.Sprintf(`Extract invoice information and identify the EMPLOYEE NAME.

EMPLOYEE NAME RULES:
- For MEAL invoices: Look for "Customer Name"
- For TRAVEL invoices: Look for "Passenger Details"
- For CAB invoices: Look for "Customer Name"
- If no customer/passenger name found: use "No information about employee"

REIMBURSEMENT STATUS ANALYSIS:
Based on the HR reimbursement policy below, analyze the invoice and determine status:

**HR REIMBURSEMENT POLICY:**
%s

**Reimbursement Status Categories:**
- **Fully Reimbursed:** The entire invoice amount is reimbursable according to the HR policy
- **Partially Reimbursed:** Only a portion of the invoice amount is reimbursable according to the HR policy
- **Declined:** The invoice is not reimbursable according to the HR policy

FORMAT:
**EMPLOYEE NAME:** [exact name or "No information about employee"]

**REIMBURSEMENT STATUS:** [**Fully Reimbursed** OR **Partially Reimbursed** OR **Declined**]

**INVOICE DETAILS:**
- Invoice Type: [Meal/Travel/Cab/Accomodation/Other]
- Invoice Number: [if available]
- Date: [date]
- Total Amount: [amount with currency]
- Description: [brief description]
- Reason: What is the reason for this reimbursement?

Return clean markdown format.`, policyText)
}

// descriptionPrompts holds the category-specific templates used to generate
// the short per-employee description. Each asks for at most two lines with
// the cost, a DD/MM/YYYY date, and the policy section justifying the status.
var descriptionPrompts = map[string]string{
	"travel": `Based on the following invoice data, provide a SHORT travel description (max 2 lines):

Include: Mode of travel, total cost, from which location to where, Date (should strictly match DD/MM/YYYY format), reason of given reimbursement
Format: "Flight from Delhi to Mumbai, total cost ₹5,000, Date is 12/02/22, reason of partially reimbursement is that for traveling cost as per HR Policy we can reimburse only ₹2000 as per 5.2 Travel Expenses" or "Train journey from Chennai to Bangalore, total cost ₹800, Date is 12/3/23, since it is within limit as mentioned in HR Reimbursement Policy hence it is fully reimburse as per 5.2 Travel Expenses."

Invoice data:
`,
	"meal": `Based on the following invoice data, provide a SHORT meal description (max 2 lines):

Include: Cuisine/food name, total cost, restaurant name, Date (should strictly match DD/MM/YYYY format), reason of given reimbursement
Format: "North Indian cuisine at Punjabi Dhaba, total cost ₹450, Date is 4/2/25, within HR Policy Budget as per 5.1 Food and Beverages." or "Pizza and beverages at Domino's, total cost ₹600, Date is 23/5/24, it's not with HR Reimbursement policy as given budget by HR is ₹500 but your total cost is ₹600 hence it is partially reimburse as per 5.1 Food and Beverages."

Include: If Cuisine/food include any wine/vodka/cigarette
Format: "Decline!!! as wine doesn't comes under reimbursement Policy as per 5.1 Food and Beverages."

Invoice data:
`,
	"cab": `Based on the following invoice data, provide a SHORT cab description (max 2 lines):

Include: Total cost, pickup and drop location if available, Date (should strictly match DD/MM/YYYY format), reason of given reimbursement
Format: "Cab ride from Airport to Hotel, total cost ₹350, Date of travel is 23/2/21, it's more than HR Reimbursement Policy as per 5.2 Travel Expenses hence partially reimburse" or "Uber ride within city, total cost ₹120, Date of travel is 3/01/2002, its within the limit as per 5.2 Travel Expenses hence fully reimburse."

Invoice data:
`,
	"accommodation": `Based on the following invoice data, provide a SHORT accommodation description (max 2 lines):

Include: Total cost, hotel name if available, Date (should strictly match DD/MM/YYYY format), reason of given reimbursement
Format: "You stayed in hotel for 2 days, total cost ₹350, Date of travel is 23/2/21, it's more than HR Reimbursement Policy as per 5.3 Accommodation hence partially reimburse" or "You stayed in PG, total cost ₹120, Date of travel is 3/01/2002, its within the limit as per 5.3 Accommodation hence fully reimburse."

Invoice data:
`,
	"other": `Based on the following invoice data, provide a SHORT description (max 2 lines):

Include: Service type, total cost, Date (should strictly match DD/MM/YYYY format), brief details
Format: "Service description with cost"

Invoice data:
`,
}

// DescriptionPrompt returns the description template for a normalized
// category, falling back to the generic template.
func DescriptionPrompt(category string) string {
	if prompt, ok := descriptionPrompts[category]; ok {
		return prompt
	}
	return descriptionPrompts["other"]
}
