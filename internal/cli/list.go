package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-intake/internal/repository"
	"github.com/joseph-ayodele/invoice-intake/internal/review"
)

// ListItem is one row of the list command.
type ListItem struct {
	ID            string `json:"invoiceId"`
	VendorName    string `json:"vendorName"`
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceDate   string `json:"invoiceDate"`
	Status        string `json:"status"`
	Total         string `json:"total"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recently extracted invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := rootOpts.formatter(cmd)

			store, err := repository.OpenStore(ctx, rootOpts.Config.Store, rootOpts.Logger)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "open record store", err), nil)
			}
			defer store.Close()
			if store.Lister == nil {
				return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("store driver %q cannot list records", rootOpts.Config.Store.Driver)), nil)
			}

			invoices, err := store.Lister.List(ctx, limit)
			if err != nil {
				return out.Fail(WrapExitError(ExitFailure, "list invoices", err), nil)
			}

			items := make([]ListItem, 0, len(invoices))
			for _, inv := range invoices {
				v := review.Render(inv)
				items = append(items, ListItem{
					ID:            inv.ID,
					VendorName:    inv.VendorName,
					InvoiceNumber: inv.InvoiceNumber,
					InvoiceDate:   inv.InvoiceDate,
					Status:        string(v.Tone),
					Total:         review.FormatCurrency(inv.TotalAmount, currencyOf(v)),
				})
			}
			return out.Result(items, nil, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No invoices")
					return
				}
				for _, it := range items {
					fmt.Fprintf(w, "%s  %-24s  %-12s  %-10s  %-8s  %s\n",
						it.ID, it.VendorName, it.InvoiceNumber, it.InvoiceDate, it.Status, it.Total)
				}
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of invoices")

	return cmd
}

func currencyOf(v review.View) string {
	for _, r := range v.Rows {
		if r.Field == review.FieldCurrency {
			return r.Value
		}
	}
	return ""
}
