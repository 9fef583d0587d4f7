package constants

import "strings"

// InvoiceStatus is the canonical payment status shown on a record.
type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusUnknown InvoiceStatus = "unknown"
)

var allStatuses = []InvoiceStatus{
	InvoiceStatusPaid,
	InvoiceStatusPending,
	InvoiceStatusOverdue,
}

// CanonicalizeStatus maps free-form extracted status text to a known status.
func CanonicalizeStatus(input string) (InvoiceStatus, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return InvoiceStatusUnknown, false
	}

	// synonyms seen in extracted documents
	synonyms := map[string]InvoiceStatus{
		"settled":      InvoiceStatusPaid,
		"paid in full": InvoiceStatusPaid,
		"open":         InvoiceStatusPending,
		"unpaid":       InvoiceStatusPending,
		"due":          InvoiceStatusPending,
		"past due":     InvoiceStatusOverdue,
		"late":         InvoiceStatusOverdue,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStatuses {
		if normalized == string(s) {
			return s, true
		}
	}
	return InvoiceStatusUnknown, false
}
