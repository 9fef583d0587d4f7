package extract

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// NewFromConfig builds a Client over the configured transport. The returned
// close function releases transport resources and is never nil.
func NewFromConfig(cfg common.ExtractionConfig, logger *slog.Logger) (*Client, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Transport {
	case "", "http":
		t := NewHTTPTransport(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout}, logger)
		return NewClient(t, cfg.Timeout, logger), func() error { return nil }, nil
	case "grpc":
		t, err := DialGRPC(cfg.GRPCAddr, logger)
		if err != nil {
			return nil, nil, err
		}
		return NewClient(t, cfg.Timeout, logger), t.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown extraction transport %q", common.ErrInvalidInput, cfg.Transport)
	}
}
