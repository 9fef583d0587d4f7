package repository

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

type cacheEntry struct {
	inv     *entity.Invoice
	expires time.Time
}

// CachedInvoiceRepository is a read-through TTL cache in front of another
// repository. Concurrent misses for one id share a single upstream load.
// Errors, not-found included, are never cached.
type CachedInvoiceRepository struct {
	next   InvoiceRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	byID  map[string]cacheEntry
}

func NewCachedInvoiceRepository(next InvoiceRepository, ttl time.Duration, logger *slog.Logger) *CachedInvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedInvoiceRepository{
		next:   next,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		byID:   make(map[string]cacheEntry),
	}
}

func (c *CachedInvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	if inv, ok := c.lookup(id); ok {
		c.logger.Debug("store.cache.hit", "invoice_id", id)
		return inv, nil
	}

	// The shared load outlives any single caller; each caller waits on its own ctx.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (any, error) {
		inv, err := c.next.GetByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		c.store(id, inv)
		return inv, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		c.logger.Debug("store.cache.miss", "invoice_id", id, "shared", res.Shared)
		return res.Val.(*entity.Invoice).Clone(), nil
	}
}

// Invalidate drops id from the cache.
func (c *CachedInvoiceRepository) Invalidate(id string) {
	c.mu.Lock()
	delete(c.byID, id)
	c.mu.Unlock()
}

func (c *CachedInvoiceRepository) lookup(id string) (*entity.Invoice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.byID[id]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		delete(c.byID, id)
		return nil, false
	}
	return e.inv.Clone(), true
}

func (c *CachedInvoiceRepository) store(id string, inv *entity.Invoice) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.byID[id] = cacheEntry{inv: inv.Clone(), expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
