package review

import (
	"strconv"

	"github.com/joseph-ayodele/invoice-intake/constants"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

// Row is one labelled value of the record view.
type Row struct {
	Field string
	Label string
	Value string
}

// ItemRow is a formatted line item.
type ItemRow struct {
	Description string
	Quantity    string
	UnitPrice   string
	Amount      string
}

// View is the display form of a record.
type View struct {
	ID    string
	Tone  constants.InvoiceStatus
	Rows  []Row
	Items []ItemRow
}

// Render formats inv for display. Missing text shows as "N/A" or
// "Not provided"; zero or absent optional amounts show as "N/A".
func Render(inv *entity.Invoice) View {
	cur := inv.Currency
	if cur == "" {
		cur = constants.DefaultCurrency
	}

	v := View{
		ID:   inv.ID,
		Tone: StatusTone(inv.Status),
		Rows: []Row{
			{FieldInvoiceNumber, "Invoice Number", orDefault(inv.InvoiceNumber, "N/A")},
			{FieldVendorName, "Vendor", orDefault(inv.VendorName, "N/A")},
			{FieldInvoiceDate, "Invoice Date", orDefault(FormatDisplayDate(inv.InvoiceDate), "N/A")},
			{FieldDueDate, "Due Date", orDefault(FormatDisplayDate(inv.DueDate), "N/A")},
			{FieldStatus, "Status", orDefault(inv.Status, "N/A")},
			{FieldCurrency, "Currency", cur},
			{FieldSubtotal, "Subtotal", optionalAmount(inv.Subtotal, cur)},
			{FieldTaxAmount, "Tax Amount", optionalAmount(inv.TaxAmount, cur)},
			{FieldTotalAmount, "Total Amount", FormatCurrency(inv.TotalAmount, cur)},
			{FieldBillingAddress, "Billing Address", orDefault(inv.BillingAddress, "Not provided")},
			{FieldShippingAddress, "Shipping Address", orDefault(inv.ShippingAddress, "Not provided")},
		},
	}
	for _, it := range inv.Items {
		v.Items = append(v.Items, ItemRow{
			Description: it.Description,
			Quantity:    strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			UnitPrice:   FormatCurrency(it.UnitPrice, cur),
			Amount:      FormatCurrency(it.Amount, cur),
		})
	}
	return v
}

func optionalAmount(p *float64, cur string) string {
	if p == nil || *p == 0 {
		return "N/A"
	}
	return FormatCurrency(*p, cur)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
