// Package invoices implements the create, update and delete actions behind the invoice forms.
package invoices

import (
	"context"
	"log/slog"
	"time"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ListPath is the invoices list page; every successful mutation revalidates it.
const ListPath = "/dashboard/invoices"

const (
	MsgCreateInvalid = "Missing Fields. Failed to Create Invoice."
	MsgUpdateInvalid = "Missing Fields. Failed to Update Invoice."
	MsgCreateFailed  = "Database error: failed to create invoice"
	MsgUpdateFailed  = "Database error: failed to update invoice"
	MsgDeleteFailed  = "Database error: failed to delete invoice"
	MsgDeleted       = "Deleted invoice"
)

type Kind int

const (
	// Invalid means the form did not validate; nothing was written.
	Invalid Kind = iota + 1
	// Persisted means the statement succeeded.
	Persisted
	// Failed means the statement errored or matched no row.
	Failed
)

// State is what the form gets back when the action does not navigate away.
type State struct {
	Errors  FieldErrors `json:"errors,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Outcome tells the caller what happened and what to do next: which
// cached pages to drop and, when RedirectTo is set, where to send the user.
type Outcome struct {
	Kind       Kind
	State      State
	Revalidate []string
	RedirectTo string
}

// Store is the slice of the invoice repository the actions write through.
type Store interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	UpdateFields(ctx context.Context, id, customerID uuid.UUID, amount int64, status string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type Service struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store:    store,
		validate: newValidator(),
		now:      time.Now,
	}
}

func logger() *slog.Logger {
	return slog.Default().With("module", "invoices")
}

// Create validates the form and inserts a new invoice dated today (UTC).
func (s *Service) Create(ctx context.Context, form Form) Outcome {
	f, errs := parse(s.validate, form)
	if errs != nil {
		return invalid(errs, MsgCreateInvalid)
	}

	invoice := f.invoice()
	invoice.Date = today(s.now())

	if err := s.store.Create(ctx, &invoice); err != nil {
		logFailure(ctx, "create_invoice", uuid.Nil, err)
		return failed(MsgCreateFailed)
	}

	logger().InfoContext(ctx, "invoice created", "operation", "create_invoice", "outcome", "success", "invoice_id", invoice.ID)
	return Outcome{Kind: Persisted, Revalidate: []string{ListPath}, RedirectTo: ListPath}
}

// Update validates the form and rewrites customer, amount and status of
// the invoice with the given id. The invoice date is left as it was.
func (s *Service) Update(ctx context.Context, id string, form Form) Outcome {
	f, errs := parse(s.validate, form)
	if errs != nil {
		return invalid(errs, MsgUpdateInvalid)
	}

	invoiceID, err := uuid.Parse(id)
	if err != nil {
		logFailure(ctx, "update_invoice", uuid.Nil, err)
		return failed(MsgUpdateFailed)
	}

	invoice := f.invoice()
	n, err := s.store.UpdateFields(ctx, invoiceID, invoice.CustomerID, invoice.Amount, invoice.Status)
	if err == nil && n == 0 {
		err = repository.ErrNotFound
	}
	if err != nil {
		logFailure(ctx, "update_invoice", invoiceID, err)
		return failed(MsgUpdateFailed)
	}

	logger().InfoContext(ctx, "invoice updated", "operation", "update_invoice", "outcome", "success", "invoice_id", invoiceID)
	return Outcome{Kind: Persisted, Revalidate: []string{ListPath}, RedirectTo: ListPath}
}

// Delete removes the invoice. It never redirects: the caller stays on the
// page and shows the returned message.
func (s *Service) Delete(ctx context.Context, id string) Outcome {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		logFailure(ctx, "delete_invoice", uuid.Nil, err)
		return failed(MsgDeleteFailed)
	}

	n, err := s.store.Delete(ctx, invoiceID)
	if err == nil && n == 0 {
		err = repository.ErrNotFound
	}
	if err != nil {
		logFailure(ctx, "delete_invoice", invoiceID, err)
		return failed(MsgDeleteFailed)
	}

	logger().InfoContext(ctx, "invoice deleted", "operation", "delete_invoice", "outcome", "success", "invoice_id", invoiceID)
	return Outcome{Kind: Persisted, State: State{Message: MsgDeleted}, Revalidate: []string{ListPath}}
}

func invalid(errs FieldErrors, msg string) Outcome {
	return Outcome{Kind: Invalid, State: State{Errors: errs, Message: msg}}
}

func failed(msg string) Outcome {
	return Outcome{Kind: Failed, State: State{Message: msg}}
}

func today(now time.Time) datatypes.Date {
	y, m, d := now.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func logFailure(ctx context.Context, operation string, id uuid.UUID, err error) {
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"error", err.Error(),
	}
	if id != uuid.Nil {
		fields = append(fields, "invoice_id", id)
	}
	if code := repository.SQLState(err); code != "" {
		fields = append(fields, "sqlstate", code)
	}
	logger().WarnContext(ctx, "invoice write failed", fields...)
}
