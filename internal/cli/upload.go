package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/extract"
	"github.com/joseph-ayodele/invoice-intake/internal/intake"
	"github.com/joseph-ayodele/invoice-intake/internal/workflow"
)

// UploadResult is the JSON payload of the upload command.
type UploadResult struct {
	File     string `json:"file"`
	State    string `json:"state"`
	RecordID string `json:"recordId,omitempty"`
	Failure  string `json:"failure,omitempty"`
}

// UploadOptions holds flags for the upload command.
type UploadOptions struct {
	*RootOptions
	Review bool
}

// NewUploadCommand creates the upload command.
func NewUploadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UploadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Submit an invoice document for extraction",
		Long: `Validate a local PDF or image, submit it to the extraction service and
print the id of the extracted record. With --review the record is shown once
the workflow navigates to it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Review, "review", false, "show the extracted record after navigation")

	return cmd
}

func runUpload(cmd *cobra.Command, opts *UploadOptions, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := opts.formatter(cmd)
	logger := opts.Logger
	var notices []common.Notice

	doc, err := intake.OpenLocal(path, logger)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "open file", err), nil)
	}

	client, closeClient, err := extract.NewFromConfig(opts.Config.Extraction, logger)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, "extraction client", err), nil)
	}
	defer func() {
		if err := closeClient(); err != nil {
			logger.Warn("failed to close extraction client", "error", err)
		}
	}()

	var navigated string
	up := workflow.NewUpload(client,
		workflow.WithLogger(logger),
		workflow.WithNavigateDelay(opts.Config.Workflow.NavigateDelay),
		workflow.WithNotifier(workflow.NotifierFunc(func(n workflow.Notice) {
			out.Notice(n, &notices)
		})),
		workflow.WithNavigator(workflow.NavigatorFunc(func(id string) {
			navigated = id
		})),
	)
	defer up.Close(context.WithoutCancel(ctx))

	if err := up.Select(doc); err != nil {
		return out.Fail(WrapExitError(ExitFailure, "file not accepted", err), notices)
	}
	out.VerboseLog("submitting %s (%s, %d bytes)", doc.Name, doc.MediaType, doc.Size)
	if !up.Submit(ctx) {
		return out.Fail(NewExitError(ExitFailure, "submission did not start"), notices)
	}

	for navigated == "" && up.State() != workflow.Failed {
		if _, err := up.Next(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return out.Fail(WrapExitError(ExitFailure, "interrupted", err), notices)
			}
			return out.Fail(WrapExitError(ExitFailure, "upload workflow", err), notices)
		}
	}

	res := UploadResult{
		File:     doc.Name,
		State:    up.State().String(),
		RecordID: up.RecordID(),
		Failure:  up.FailureMessage(),
	}
	if up.State() == workflow.Failed {
		return out.Fail(NewExitError(ExitFailure, res.Failure), notices)
	}

	if !opts.Review {
		return out.Result(res, notices, func(w io.Writer) {
			fmt.Fprintf(w, "Record: %s\n", res.RecordID)
		})
	}

	ro := &ReviewOptions{RootOptions: opts.RootOptions}
	return runReview(cmd, ro, navigated, notices)
}
