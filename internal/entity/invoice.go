package entity

import (
	"time"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// Invoice is the structured record produced by extraction.
// Dates are kept as the ISO strings the store returns.
type Invoice struct {
	ID              string     `json:"invoiceId" firestore:"invoiceId"`
	VendorName      string     `json:"vendorName" firestore:"vendorName"`
	InvoiceNumber   string     `json:"invoiceNumber" firestore:"invoiceNumber"`
	InvoiceDate     string     `json:"invoiceDate" firestore:"invoiceDate"`
	DueDate         string     `json:"dueDate" firestore:"dueDate"`
	Status          string     `json:"status" firestore:"status"`
	Currency        string     `json:"currency" firestore:"currency"`
	Subtotal        *float64   `json:"subtotal,omitempty" firestore:"subtotal"`
	TaxAmount       *float64   `json:"taxAmount,omitempty" firestore:"taxAmount"`
	TotalAmount     float64    `json:"totalAmount" firestore:"totalAmount"`
	BillingAddress  string     `json:"billingAddress" firestore:"billingAddress"`
	ShippingAddress string     `json:"shippingAddress" firestore:"shippingAddress"`
	Items           []LineItem `json:"items" firestore:"items"`
	CreatedAt       time.Time  `json:"createdAt,omitempty" firestore:"createdAt"`
}

// LineItem is one row of an invoice.
type LineItem struct {
	Description string  `json:"description" firestore:"description"`
	Quantity    float64 `json:"quantity" firestore:"quantity"`
	UnitPrice   float64 `json:"unitPrice" firestore:"unitPrice"`
	Amount      float64 `json:"amount" firestore:"amount"`
}

// Clone returns a deep copy; the copy shares no pointers or slices with inv.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.Subtotal = cloneFloat(inv.Subtotal)
	out.TaxAmount = cloneFloat(inv.TaxAmount)
	if inv.Items != nil {
		out.Items = make([]LineItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	return &out
}

// Validate checks the fields a stored record must carry.
func (inv *Invoice) Validate() error {
	v := common.NewValidator()
	v.Field("invoiceId", inv.ID, common.Required)
	v.Field("currency", inv.Currency, common.CurrencyCode)
	v.Field("invoiceDate", inv.InvoiceDate, common.ISODate)
	v.Field("dueDate", inv.DueDate, common.ISODate)
	return v.Err()
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
