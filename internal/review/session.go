package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-intake/internal/common"
	"github.com/joseph-ayodele/invoice-intake/internal/entity"
	"github.com/joseph-ayodele/invoice-intake/internal/repository"
)

// LoadStatus is the outcome of Session.Load.
type LoadStatus int

const (
	Unloaded LoadStatus = iota
	Loaded
	NotFound
	Failed
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	default:
		return "unloaded"
	}
}

// Editable fields, named as in the record's JSON form.
const (
	FieldVendorName      = "vendorName"
	FieldInvoiceNumber   = "invoiceNumber"
	FieldInvoiceDate     = "invoiceDate"
	FieldDueDate         = "dueDate"
	FieldStatus          = "status"
	FieldCurrency        = "currency"
	FieldSubtotal        = "subtotal"
	FieldTaxAmount       = "taxAmount"
	FieldTotalAmount     = "totalAmount"
	FieldBillingAddress  = "billingAddress"
	FieldShippingAddress = "shippingAddress"
)

// MsgSavedLocally accompanies every commit.
const MsgSavedLocally = "changes saved locally only; they were not sent to the record store"

// ErrNotLoaded is returned by edit operations before a record is loaded.
var ErrNotLoaded = errors.New("no record loaded")

// Session holds one record for viewing and local editing.
//
// baseline is the last committed state and is never mutated in place. draft
// is a private deep copy that SetField mutates while editing. Commit swaps the
// draft in as the new baseline; nothing is written to the record store.
type Session struct {
	repo   repository.InvoiceRepository
	logger *slog.Logger

	id       string
	status   LoadStatus
	baseline *entity.Invoice
	draft    *entity.Invoice
	editing  bool
}

func NewSession(repo repository.InvoiceRepository, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{repo: repo, logger: logger}
}

// Load fetches id. NotFound is a terminal, non-error outcome; transient store
// failures return Failed with the error.
func (s *Session) Load(ctx context.Context, id string) (LoadStatus, error) {
	s.id = id
	s.baseline, s.draft, s.editing = nil, nil, false

	inv, err := s.repo.GetByID(ctx, id)
	switch {
	case err == nil:
		s.baseline = inv.Clone()
		s.draft = inv.Clone()
		s.status = Loaded
		s.logger.Info("review.loaded", "invoice_id", id)
	case common.IsNotFound(err):
		s.status = NotFound
		s.logger.Info("review.not_found", "invoice_id", id)
		return s.status, nil
	default:
		s.status = Failed
		s.logger.Error("review.load_failed", "invoice_id", id, "error", err)
		return s.status, err
	}
	return s.status, nil
}

func (s *Session) Status() LoadStatus { return s.status }

func (s *Session) ID() string { return s.id }

func (s *Session) Editing() bool { return s.editing }

// Baseline returns a copy of the committed record, or nil before a load.
func (s *Session) Baseline() *entity.Invoice { return s.baseline.Clone() }

// Draft returns a copy of the working record, or nil before a load.
func (s *Session) Draft() *entity.Invoice { return s.draft.Clone() }

// BeginEdit starts editing from a fresh copy of the baseline.
func (s *Session) BeginEdit() error {
	if s.status != Loaded {
		return ErrNotLoaded
	}
	s.draft = s.baseline.Clone()
	s.editing = true
	return nil
}

// SetField changes one draft field. On any error the draft is left unchanged.
func (s *Session) SetField(field, value string) error {
	if !s.editing {
		return common.ErrNotEditing
	}

	d := s.draft
	switch field {
	case FieldVendorName:
		d.VendorName = value
	case FieldInvoiceNumber:
		d.InvoiceNumber = value
	case FieldInvoiceDate:
		d.InvoiceDate = value
	case FieldDueDate:
		d.DueDate = value
	case FieldStatus:
		d.Status = value
	case FieldCurrency:
		d.Currency = strings.ToUpper(strings.TrimSpace(value))
	case FieldBillingAddress:
		d.BillingAddress = value
	case FieldShippingAddress:
		d.ShippingAddress = value
	case FieldSubtotal, FieldTaxAmount:
		v, err := parseOptionalAmount(value)
		if err != nil {
			return coercionError(field, value, err)
		}
		if field == FieldSubtotal {
			d.Subtotal = v
		} else {
			d.TaxAmount = v
		}
	case FieldTotalAmount:
		v, err := parseOptionalAmount(value)
		if err != nil {
			return coercionError(field, value, err)
		}
		if v == nil {
			return coercionError(field, value, errors.New("a total is required"))
		}
		d.TotalAmount = *v
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownField, field)
	}
	return nil
}

// Commit makes the draft the new baseline and leaves edit mode. The returned
// notice must always be shown: edits never leave this process.
func (s *Session) Commit() (common.Notice, error) {
	if !s.editing {
		return common.Notice{}, common.ErrNotEditing
	}
	s.baseline = s.draft.Clone()
	s.editing = false
	s.logger.Info("review.committed_locally", "invoice_id", s.id)
	return common.Notice{Level: common.LevelSuccess, Message: MsgSavedLocally}, nil
}

// Cancel discards the draft and leaves edit mode. Safe to call repeatedly.
func (s *Session) Cancel() {
	if s.baseline != nil {
		s.draft = s.baseline.Clone()
	}
	s.editing = false
}

// Dirty reports whether the draft differs from the baseline.
func (s *Session) Dirty() bool {
	if s.baseline == nil {
		return false
	}
	return !reflect.DeepEqual(s.baseline, s.draft)
}

// Amounts are plain decimals or decimals with well-formed thousands groups.
// Exponents, underscores, hex and NaN/Inf spellings are not amounts.
var (
	plainAmount   = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)
	groupedAmount = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

func parseOptionalAmount(value string) (*float64, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, nil
	}
	switch {
	case groupedAmount.MatchString(v):
		v = strings.ReplaceAll(v, ",", "")
	case !plainAmount.MatchString(v):
		return nil, errors.New("not a number")
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.New("not a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, errors.New("not a finite number")
	}
	return &f, nil
}

func coercionError(field, value string, cause error) error {
	return fmt.Errorf("%w: %s=%q: %v", common.ErrEditCoercion, field, value, cause)
}
