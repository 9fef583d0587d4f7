package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-intake/internal/repository"
)

// HealthResult is the JSON payload of the health command.
type HealthResult struct {
	Driver   string `json:"driver"`
	Checked  bool   `json:"checked"`
	Invoices *int   `json:"invoices,omitempty"`
}

// NewHealthCommand creates the health command.
func NewHealthCommand(rootOpts *RootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the record store connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := rootOpts.formatter(cmd)
			driver := rootOpts.Config.Store.Driver

			store, err := repository.OpenStore(ctx, rootOpts.Config.Store, rootOpts.Logger)
			if err != nil {
				return out.Fail(WrapExitError(ExitFailure, "store health: FAIL", err), nil)
			}
			defer store.Close()

			checked, err := store.HealthCheck(ctx, timeout)
			if err != nil {
				return out.Fail(WrapExitError(ExitFailure, "store health: FAIL", err), nil)
			}
			res := HealthResult{Driver: driver, Checked: checked}

			if store.Lister != nil {
				invoices, err := store.Lister.List(ctx, 0)
				if err != nil {
					return out.Fail(WrapExitError(ExitFailure, "listing invoices", err), nil)
				}
				n := len(invoices)
				res.Invoices = &n
			}

			return out.Result(res, nil, func(w io.Writer) {
				if checked {
					fmt.Fprintf(w, "store health (%s): OK\n", driver)
				} else {
					fmt.Fprintf(w, "store health (%s): opened, no ping available\n", driver)
				}
				if res.Invoices != nil {
					fmt.Fprintf(w, "invoices: %d\n", *res.Invoices)
				}
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")

	return cmd
}
