package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// ExtractMethod is the full gRPC method name of the unary extraction call.
// Request and response are google.protobuf.Struct.
const ExtractMethod = "/invoice.extraction.v1.ExtractionService/Extract"

// GRPCTransport calls the extraction service over gRPC.
type GRPCTransport struct {
	conn   grpc.ClientConnInterface
	closer func() error
	schema *jsonschema.Schema
	logger *slog.Logger
}

// NewGRPCTransport uses an existing connection; the caller keeps ownership of it.
func NewGRPCTransport(conn grpc.ClientConnInterface, logger *slog.Logger) *GRPCTransport {
	if logger == nil {
		logger = slog.Default()
	}
	return &GRPCTransport{
		conn:   conn,
		closer: func() error { return nil },
		schema: mustResponseSchema(),
		logger: logger,
	}
}

// DialGRPC creates a plaintext client for addr. The connection is lazy, so an
// unreachable service surfaces on the first Extract as Unavailable.
func DialGRPC(addr string, logger *slog.Logger) (*GRPCTransport, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", addr, err)
	}
	t := NewGRPCTransport(conn, logger)
	t.closer = conn.Close
	return t, nil
}

// Close releases the connection if this transport dialed it.
func (t *GRPCTransport) Close() error {
	return t.closer()
}

// Extract sends one unary call and returns the invoice id.
func (t *GRPCTransport) Extract(ctx context.Context, p Payload) (string, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	ctx = metadata.AppendToOutgoingContext(ctx, "x-request-id", reqID)
	start := time.Now()

	req, err := structpb.NewStruct(map[string]any{
		"filename":       p.Filename,
		"media_type":     p.MediaType,
		"sha256":         p.SHA256,
		"content_base64": base64.StdEncoding.EncodeToString(p.Content),
	})
	if err != nil {
		return "", unexpectedError(fmt.Errorf("build request: %w", err))
	}

	t.logger.Info("extract.grpc.request",
		"req_id", reqID,
		"method", ExtractMethod,
		"file", p.Filename,
		"content_length", len(p.Content),
	)

	resp := &structpb.Struct{}
	if err := t.conn.Invoke(ctx, ExtractMethod, req, resp); err != nil {
		elapsed := time.Since(start).Milliseconds()
		st, ok := status.FromError(err)
		if !ok || common.IsConnectivity(st.Code()) || st.Code() == codes.Canceled {
			t.logger.Error("extract.grpc.send_error", "req_id", reqID, "error", err, "elapsed_ms", elapsed)
			return "", connectivityError(err)
		}
		t.logger.Warn("extract.grpc.status", "req_id", reqID, "code", st.Code().String(), "elapsed_ms", elapsed)
		return "", serviceError(int(st.Code()), st.Message())
	}

	t.logger.Info("extract.grpc.response", "req_id", reqID, "elapsed_ms", time.Since(start).Milliseconds())

	raw, err := json.Marshal(resp.AsMap())
	if err != nil {
		return "", unexpectedError(fmt.Errorf("encode response: %w", err))
	}
	id, err := decodeResponse(t.schema, raw)
	if err != nil {
		t.logger.Warn("extract.grpc.bad_response", "req_id", reqID, "error", err)
		return "", unexpectedError(err)
	}
	return id, nil
}
