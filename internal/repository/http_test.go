package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
)

func newRecordServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/invoices/{id}", func(w http.ResponseWriter, req *http.Request) {
		switch id := chi.URLParam(req, "id"); id {
		case "INV-123":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(sampleInvoice(id))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		case "garbled":
			_, _ = w.Write([]byte("{not json"))
		default:
			http.Error(w, `{"detail":"Invoice not found"}`, http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPRepository(t *testing.T) {
	srv := newRecordServer(t)
	repo := NewHTTPInvoiceRepository(srv.URL+"/", nil, nil)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, "INV-123")
	require.NoError(t, err)
	assert.Equal(t, "Acme Supplies", got.VendorName)
	require.NotNil(t, got.TaxAmount)
	assert.Equal(t, 8.25, *got.TaxAmount)
	assert.Len(t, got.Items, 1)

	_, err = repo.GetByID(ctx, "missing-id")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = repo.GetByID(ctx, "broken")
	require.Error(t, err)
	assert.False(t, common.IsNotFound(err))

	_, err = repo.GetByID(ctx, "garbled")
	require.Error(t, err)
	assert.False(t, common.IsNotFound(err))
}

func TestOpenStoreMemoryWithCache(t *testing.T) {
	cfg := common.DefaultConfig().Store
	cfg.Driver = "memory"

	s, err := OpenStore(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Writer)
	require.NoError(t, s.Writer.Put(context.Background(), sampleInvoice("INV-9")))

	_, ok := s.Reader.(*CachedInvoiceRepository)
	assert.True(t, ok)
	got, err := s.Reader.GetByID(context.Background(), "INV-9")
	require.NoError(t, err)
	assert.Equal(t, "INV-9", got.ID)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), common.StoreConfig{Driver: "cassandra"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}
