package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// ExtractPath is the endpoint the HTTP transport posts to, relative to the base URL.
const ExtractPath = "/invoices/extract"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// HTTPTransport posts the document as multipart/form-data.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	schema  *jsonschema.Schema
	logger  *slog.Logger
}

// NewHTTPTransport creates a transport for baseURL. A nil client gets a 60s timeout.
func NewHTTPTransport(baseURL string, client *http.Client, logger *slog.Logger) *HTTPTransport {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		schema:  mustResponseSchema(),
		logger:  logger,
	}
}

// Extract sends one request and returns the invoice id.
func (t *HTTPTransport) Extract(ctx context.Context, p Payload) (string, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()
	url := t.baseURL + ExtractPath

	body, contentType, err := buildMultipart(p)
	if err != nil {
		t.logger.Error("extract.http.encode_error", "req_id", reqID, "error", err)
		return "", unexpectedError(fmt.Errorf("encode multipart: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.logger.Error("extract.http.build_request_error", "req_id", reqID, "error", err)
		return "", connectivityError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	t.logger.Info("extract.http.request",
		"req_id", reqID,
		"url", url,
		"file", p.Filename,
		"content_length", len(body),
	)

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Error("extract.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return "", connectivityError(err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			t.logger.Warn("extract.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		t.logger.Error("extract.http.read_error", "req_id", reqID, "error", err)
		return "", connectivityError(fmt.Errorf("read response: %w", err))
	}

	t.logger.Info("extract.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", serviceError(resp.StatusCode, serviceMessage(raw))
	}

	id, err := decodeResponse(t.schema, raw)
	if err != nil {
		t.logger.Warn("extract.http.bad_response", "req_id", reqID, "error", err)
		e := unexpectedError(err)
		e.Status = resp.StatusCode
		return "", e
	}
	return id, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func buildMultipart(p Payload) ([]byte, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(p.Filename)))
	mediaType := p.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(p.Content); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
