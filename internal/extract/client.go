package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/intake"
)

// Client submits a document to the extraction service. One call to Submit is
// one outbound request; the client never retries.
type Client struct {
	transport Transport
	timeout   time.Duration
	logger    *slog.Logger
}

// NewClient wraps a transport. A zero timeout leaves the deadline to ctx.
func NewClient(t Transport, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: t, timeout: timeout, logger: logger}
}

// Submit sends doc and classifies the outcome. It never panics on malformed
// responses and never returns a Success with an empty identifier.
func (c *Client) Submit(ctx context.Context, doc intake.Document) Result {
	ctx, reqID := common.EnsureRequestID(ctx)
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	content, err := readDocument(doc)
	if err != nil {
		c.logger.Error("extract.read_error", "req_id", reqID, "file", doc.Name, "error", err)
		return Failure{Kind: KindConnectivity, Message: fmt.Sprintf("could not read %s: %v", doc.Name, err)}
	}

	start := time.Now()
	id, err := c.transport.Extract(ctx, Payload{
		Filename:  doc.Name,
		MediaType: doc.MediaType,
		Content:   content,
		SHA256:    doc.SHA256,
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		f := classify(err)
		c.logger.Warn("extract.failed",
			"req_id", reqID,
			"kind", f.Kind,
			"status", f.Status,
			"error", err,
			"elapsed_ms", elapsed,
		)
		return f
	}

	id = strings.TrimSpace(id)
	if id == "" {
		c.logger.Warn("extract.empty_id", "req_id", reqID, "elapsed_ms", elapsed)
		return Failure{Kind: KindUnexpected, Message: unexpectedMessage("missing invoice id")}
	}

	c.logger.Info("extract.succeeded", "req_id", reqID, "record_id", id, "elapsed_ms", elapsed)
	return Success{RecordID: id}
}

func classify(err error) Failure {
	var te *TransportError
	if !errors.As(err, &te) {
		return Failure{Kind: KindConnectivity, Message: connectivityMessage(err)}
	}

	switch te.Kind {
	case KindService:
		msg := strings.TrimSpace(te.Message)
		if msg == "" {
			msg = fmt.Sprintf("extraction service returned status %d", te.Status)
		}
		return Failure{Kind: KindService, Message: msg, Status: te.Status}
	case KindUnexpected:
		detail := "malformed response"
		if te.Err != nil {
			detail = te.Err.Error()
		}
		return Failure{Kind: KindUnexpected, Message: unexpectedMessage(detail), Status: te.Status}
	default:
		cause := err
		if te.Err != nil {
			cause = te.Err
		}
		return Failure{Kind: KindConnectivity, Message: connectivityMessage(cause)}
	}
}

func connectivityMessage(err error) string {
	return "could not reach extraction service: " + err.Error()
}

func unexpectedMessage(detail string) string {
	return "unexpected response from extraction service: " + detail
}

func readDocument(doc intake.Document) ([]byte, error) {
	if doc.Open == nil {
		return nil, errors.New("document has no content")
	}
	rc, err := doc.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
