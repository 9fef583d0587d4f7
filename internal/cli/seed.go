package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-intake/internal/entity"
	"github.com/joseph-ayodele/invoice-intake/internal/repository"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <invoices.json>",
		Short: "Load invoice records into the record store",
		Long: `Write invoice records from a JSON file (one object or an array) into
the configured record store. Records without an invoiceId get a generated
one. Used for local development and demos.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := rootOpts.formatter(cmd)

			invoices, err := readInvoices(args[0])
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "read seed file", err), nil)
			}

			store, err := repository.OpenStore(ctx, rootOpts.Config.Store, rootOpts.Logger)
			if err != nil {
				return out.Fail(WrapExitError(ExitCommandError, "open record store", err), nil)
			}
			defer store.Close()
			if store.Writer == nil {
				return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("store driver %q is read-only", rootOpts.Config.Store.Driver)), nil)
			}

			ids := make([]string, 0, len(invoices))
			for _, inv := range invoices {
				if inv.ID == "" {
					inv.ID = uuid.NewString()
				}
				if inv.CreatedAt.IsZero() {
					inv.CreatedAt = time.Now().UTC()
				}
				if err := store.Writer.Put(ctx, inv); err != nil {
					return out.Fail(WrapExitError(ExitFailure, fmt.Sprintf("seed %s", inv.ID), err), nil)
				}
				ids = append(ids, inv.ID)
			}
			return out.Result(map[string]any{"seeded": ids}, nil, func(w io.Writer) {
				fmt.Fprintf(w, "Seeded %d invoice(s)\n", len(ids))
			})
		},
	}
	return cmd
}

func readInvoices(path string) ([]*entity.Invoice, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var list []*entity.Invoice
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var one entity.Invoice
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []*entity.Invoice{&one}, nil
}
