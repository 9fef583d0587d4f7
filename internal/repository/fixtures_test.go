package repository

import (
	"time"

	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

func ptr(f float64) *float64 { return &f }

func sampleInvoice(id string) *entity.Invoice {
	return &entity.Invoice{
		ID:              id,
		VendorName:      "Acme Supplies",
		InvoiceNumber:   "A-1001",
		InvoiceDate:     "2024-03-01",
		DueDate:         "2024-03-31",
		Status:          "pending",
		Currency:        "USD",
		Subtotal:        ptr(100),
		TaxAmount:       ptr(8.25),
		TotalAmount:     108.25,
		BillingAddress:  "1 Main St",
		ShippingAddress: "2 Side St",
		Items: []entity.LineItem{
			{Description: "Widget", Quantity: 2, UnitPrice: 50, Amount: 100},
		},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
