package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

// Store is the configured record store. Writer and Lister are nil for
// backends that cannot seed or enumerate.
type Store struct {
	Reader InvoiceRepository
	Writer InvoiceWriter
	Lister InvoiceLister

	db      *DB
	closers []func()
}

// HealthCheck pings SQL backends. It reports false for backends without a
// connection pool to check.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) (bool, error) {
	if s.db == nil {
		return false, nil
	}
	return true, s.db.HealthCheck(ctx, timeout)
}

// Close releases backend resources.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStore builds the backend named by cfg.Driver and, when cfg.CacheTTL > 0,
// puts a read-through cache in front of it.
func OpenStore(ctx context.Context, cfg common.StoreConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{}

	switch cfg.Driver {
	case "sqlite", "postgres":
		db, err := Open(ctx, Config{
			Driver:           cfg.Driver,
			DSN:              cfg.DSN,
			MaxConns:         cfg.MaxConns,
			MinConns:         cfg.MinConns,
			MaxConnLifetime:  cfg.MaxConnLifetime,
			MaxConnIdleTime:  cfg.MaxConnIdleTime,
			DialTimeout:      cfg.DialTimeout,
			StatementTimeout: cfg.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		s.db = db
		s.closers = append(s.closers, db.Close)
		repo := NewSQLInvoiceRepository(db.Driver, logger)
		if err := repo.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.Reader, s.Writer, s.Lister = repo, repo, repo
	case "firestore":
		client, err := NewFirestoreClient(ctx, cfg.FirestoreProject)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() {
			if err := client.Close(); err != nil {
				logger.Error("failed to close firestore client", "error", err)
			}
		})
		repo := NewFirestoreInvoiceRepository(client, cfg.FirestoreCollection, logger)
		s.Reader, s.Writer = repo, repo
	case "http":
		s.Reader = NewHTTPInvoiceRepository(cfg.BaseURL, nil, logger)
	case "memory":
		repo, err := NewMemoryInvoiceRepository()
		if err != nil {
			return nil, err
		}
		s.Reader, s.Writer, s.Lister = repo, repo, repo
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", common.ErrInvalidInput, cfg.Driver)
	}

	if cfg.CacheTTL > 0 {
		s.Reader = NewCachedInvoiceRepository(s.Reader, cfg.CacheTTL, logger)
	}
	logger.Info("record store ready", "driver", cfg.Driver, "cache_ttl", cfg.CacheTTL.String())
	return s, nil
}
