package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
)

// NewFirestoreClient creates a Firestore client for projectID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

type firestoreInvoiceRepository struct {
	client     *firestore.Client
	collection string
	logger     *slog.Logger
}

// NewFirestoreInvoiceRepository stores one document per invoice, keyed by invoice id.
func NewFirestoreInvoiceRepository(client *firestore.Client, collection string, logger *slog.Logger) InvoiceStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &firestoreInvoiceRepository{client: client, collection: collection, logger: logger}
}

func (r *firestoreInvoiceRepository) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "/") {
		return nil, common.ErrNotFound
	}

	snap, err := r.client.Collection(r.collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			r.logger.Debug("invoice not found", "invoice_id", id, "collection", r.collection)
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, fmt.Errorf("firestore get %s: %w", id, err)
	}

	var inv entity.Invoice
	if err := snap.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("decode invoice %s: %w", id, err)
	}
	inv.ID = snap.Ref.ID
	return &inv, nil
}

func (r *firestoreInvoiceRepository) Put(ctx context.Context, inv *entity.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}
	if _, err := r.client.Collection(r.collection).Doc(inv.ID).Set(ctx, inv); err != nil {
		r.logger.Error("failed to store invoice", "invoice_id", inv.ID, "error", err)
		return fmt.Errorf("firestore set %s: %w", inv.ID, err)
	}
	r.logger.Info("invoice stored", "invoice_id", inv.ID, "collection", r.collection)
	return nil
}
