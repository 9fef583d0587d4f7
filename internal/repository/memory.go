package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

// MemoryInvoiceRepository keeps invoices in a map. Returned values are copies.
type MemoryInvoiceRepository struct {
	mu    sync.RWMutex
	items map[string]*entity.Invoice
	order []string
}

// NewMemoryInvoiceRepository returns a repository holding seed. An invalid
// seed record fails construction.
func NewMemoryInvoiceRepository(seed ...*entity.Invoice) (*MemoryInvoiceRepository, error) {
	r := &MemoryInvoiceRepository{items: make(map[string]*entity.Invoice)}
	for i, inv := range seed {
		if err := r.Put(context.Background(), inv); err != nil {
			return nil, fmt.Errorf("seed invoice %d: %w", i, err)
		}
	}
	return r, nil
}

func (r *MemoryInvoiceRepository) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return inv.Clone(), nil
}

func (r *MemoryInvoiceRepository) Put(_ context.Context, inv *entity.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[inv.ID]; !ok {
		r.order = append(r.order, inv.ID)
	}
	r.items[inv.ID] = inv.Clone()
	return nil
}

// List returns invoices newest first.
func (r *MemoryInvoiceRepository) List(_ context.Context, limit int) ([]*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Invoice, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.items[r.order[i]].Clone())
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
