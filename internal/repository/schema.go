package repository

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// InvoicesColumns holds the columns for the "invoices" table.
	InvoicesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 128},
		{Name: "vendor_name", Type: field.TypeString, Default: ""},
		{Name: "invoice_number", Type: field.TypeString, Default: ""},
		{Name: "invoice_date", Type: field.TypeString, Default: ""},
		{Name: "due_date", Type: field.TypeString, Default: ""},
		{Name: "status", Type: field.TypeString, Default: ""},
		{Name: "currency", Type: field.TypeString, Size: 3, Default: ""},
		{Name: "subtotal", Type: field.TypeFloat64, Nullable: true},
		{Name: "tax_amount", Type: field.TypeFloat64, Nullable: true},
		{Name: "total_amount", Type: field.TypeFloat64, Default: 0},
		{Name: "billing_address", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "shipping_address", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "items", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// InvoicesTable holds the schema information for the "invoices" table.
	InvoicesTable = &schema.Table{
		Name:       "invoices",
		Columns:    InvoicesColumns,
		PrimaryKey: []*schema.Column{InvoicesColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "invoice_created_at",
				Unique:  false,
				Columns: []*schema.Column{InvoicesColumns[13]},
			},
		},
	}
	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		InvoicesTable,
	}
)

// readColumns are selected by the SQL repository, in scan order.
var readColumns = []string{
	"id", "vendor_name", "invoice_number", "invoice_date", "due_date", "status", "currency",
	"subtotal", "tax_amount", "total_amount", "billing_address", "shipping_address", "items",
}
