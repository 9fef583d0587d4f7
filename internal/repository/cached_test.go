package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

type countingRepo struct {
	calls   atomic.Int32
	release chan struct{}
	inv     *entity.Invoice
	err     error
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	r.calls.Add(1)
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	inv := r.inv.Clone()
	inv.ID = id
	return inv, nil
}

func TestCachedRepositoryServesFromCache(t *testing.T) {
	up := &countingRepo{inv: sampleInvoice("x")}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)

	first, err := c.GetByID(context.Background(), "INV-1")
	require.NoError(t, err)
	second, err := c.GetByID(context.Background(), "INV-1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), up.calls.Load())
	assert.Equal(t, first, second)

	second.VendorName = "mutated"
	third, err := c.GetByID(context.Background(), "INV-1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", third.VendorName, "callers get copies")
}

func TestCachedRepositoryExpires(t *testing.T) {
	up := &countingRepo{inv: sampleInvoice("x")}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.GetByID(context.Background(), "INV-1")
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = c.GetByID(context.Background(), "INV-1")
	require.NoError(t, err)

	assert.Equal(t, int32(2), up.calls.Load())
}

func TestCachedRepositoryDoesNotCacheNotFound(t *testing.T) {
	up := &countingRepo{err: common.ErrNotFound}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)

	for i := 0; i < 3; i++ {
		_, err := c.GetByID(context.Background(), "missing-id")
		assert.ErrorIs(t, err, common.ErrNotFound)
	}
	assert.Equal(t, int32(3), up.calls.Load())
}

func TestCachedRepositoryCollapsesConcurrentMisses(t *testing.T) {
	up := &countingRepo{inv: sampleInvoice("x"), release: make(chan struct{})}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.GetByID(context.Background(), "INV-1")
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(up.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), up.calls.Load())
}

func TestCachedRepositoryCancelledCallerDoesNotFailOthers(t *testing.T) {
	up := &countingRepo{inv: sampleInvoice("x"), release: make(chan struct{})}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetByID(ctx, "INV-1")
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return up.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		inv *entity.Invoice
		err error
	}
	second := make(chan result, 1)
	go func() {
		inv, err := c.GetByID(context.Background(), "INV-1")
		second <- result{inv, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(up.release)
	select {
	case r := <-second:
		require.NoError(t, r.err)
		assert.Equal(t, "INV-1", r.inv.ID)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
}

func TestCachedRepositoryInvalidate(t *testing.T) {
	up := &countingRepo{inv: sampleInvoice("x")}
	c := NewCachedInvoiceRepository(up, time.Minute, nil)

	_, _ = c.GetByID(context.Background(), "INV-1")
	c.Invalidate("INV-1")
	_, _ = c.GetByID(context.Background(), "INV-1")
	assert.Equal(t, int32(2), up.calls.Load())
}

func TestCachedRepositoryPassesErrorsThrough(t *testing.T) {
	boom := errors.New("store offline")
	c := NewCachedInvoiceRepository(&countingRepo{err: boom}, time.Minute, nil)
	_, err := c.GetByID(context.Background(), "INV-1")
	assert.ErrorIs(t, err, boom)
}
