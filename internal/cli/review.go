package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/repository"
	"github.com/joseph-ayodele/invoice-intake/internal/review"
)

// ReviewResult is the JSON payload of the review command.
type ReviewResult struct {
	ID      string       `json:"invoiceId"`
	Status  string       `json:"status"`
	Record  *review.View `json:"record,omitempty"`
	Dirty   bool         `json:"dirty,omitempty"`
	Export  string       `json:"export,omitempty"`
	Discard bool         `json:"discarded,omitempty"`
}

// ReviewOptions holds flags for the review command.
type ReviewOptions struct {
	*RootOptions
	Sets   []string
	Commit bool
	Cancel bool
	Export string
}

// NewReviewCommand creates the review command.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "review <invoice-id>",
		Short: "Show an extracted invoice and apply local edits",
		Long: `Load an invoice from the record store and display it. Each --set
field=value edits a local draft; --commit keeps the draft, --cancel (or
no flag) discards it. Edits are never written back to the record store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReview(cmd, opts, args[0], nil)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "edit a field (field=value), repeatable")
	cmd.Flags().BoolVar(&opts.Commit, "commit", false, "keep the edits instead of discarding them")
	cmd.Flags().BoolVar(&opts.Cancel, "cancel", false, "discard the edits (the default without --commit)")
	cmd.MarkFlagsMutuallyExclusive("commit", "cancel")
	cmd.Flags().StringVar(&opts.Export, "export", "", "write the committed record to an .xlsx file")

	return cmd
}

func runReview(cmd *cobra.Command, opts *ReviewOptions, id string, notices []common.Notice) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)

	store, err := repository.OpenStore(ctx, opts.Config.Store, opts.Logger)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "open record store", err), notices)
	}
	defer store.Close()

	sess := review.NewSession(store.Reader, opts.Logger)
	status, err := sess.Load(ctx, id)
	res := ReviewResult{ID: id, Status: status.String()}
	switch status {
	case review.NotFound:
		if err := out.Result(res, notices, func(w io.Writer) {
			fmt.Fprintf(w, "Invoice not found: %s\n", id)
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "invoice not found")
	case review.Failed:
		return out.Fail(WrapExitError(ExitFailure, "load invoice", err), notices)
	}

	if len(opts.Sets) > 0 {
		if err := sess.BeginEdit(); err != nil {
			return out.Fail(WrapExitError(ExitFailure, "begin edit", err), notices)
		}
		for _, kv := range opts.Sets {
			field, value, ok := strings.Cut(kv, "=")
			if !ok {
				sess.Cancel()
				return out.Fail(NewExitError(ExitCommandError, fmt.Sprintf("--set %q: expected field=value", kv)), notices)
			}
			if err := sess.SetField(strings.TrimSpace(field), value); err != nil {
				out.Notice(common.Notice{Level: common.LevelWarning, Message: err.Error()}, &notices)
			}
		}
		res.Dirty = sess.Dirty()
		if opts.Commit {
			n, err := sess.Commit()
			if err != nil {
				return out.Fail(WrapExitError(ExitFailure, "commit", err), notices)
			}
			out.Notice(n, &notices)
		} else {
			sess.Cancel()
			res.Discard = res.Dirty
			out.VerboseLog("edits discarded; pass --commit to keep them")
		}
	}

	if opts.Export != "" {
		if err := exportFile(sess, opts.Export); err != nil {
			return out.Fail(WrapExitError(ExitFailure, "export", err), notices)
		}
		res.Export = opts.Export
	}

	view := review.Render(sess.Baseline())
	res.Record = &view
	return out.Result(res, notices, func(w io.Writer) {
		printView(w, view)
		if res.Export != "" {
			fmt.Fprintf(w, "Exported to %s\n", res.Export)
		}
	})
}

func exportFile(sess *review.Session, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return sess.ExportXLSX(f)
}
