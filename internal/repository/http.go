package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

type httpInvoiceRepository struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPInvoiceRepository reads records from GET {baseURL}/invoices/{id}.
func NewHTTPInvoiceRepository(baseURL string, client *http.Client, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &httpInvoiceRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (r *httpInvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrNotFound
	}
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()
	u := r.baseURL + "/invoices/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("store.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, fmt.Errorf("fetch invoice %s: %w", id, err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			r.logger.Warn("store.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	r.logger.Info("store.http.response",
		"req_id", reqID,
		"invoice_id", id,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode/100 != 2:
		return nil, common.NewAppError("STORE_ERROR", fmt.Sprintf("record store returned status %d", resp.StatusCode), common.ErrInternal)
	}

	var inv entity.Invoice
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&inv); err != nil {
		return nil, fmt.Errorf("decode invoice %s: %w", id, err)
	}
	if inv.ID == "" {
		inv.ID = id
	}
	return &inv, nil
}
