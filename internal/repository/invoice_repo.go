package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// InvoiceRow is an invoice joined with the customer it bills.
type InvoiceRow struct {
	ID       uuid.UUID
	Amount   int64
	Date     time.Time
	Status   string
	Name     string
	Email    string
	ImageURL string
}

// StatusTotal aggregates invoices sharing a status.
type StatusTotal struct {
	Status string
	Count  int64
	Sum    int64
}

// Create inserts a single invoice row.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

// UpdateFields rewrites customer, amount and status of one invoice. The
// date column is never part of the statement.
func (r *InvoiceRepository) UpdateFields(ctx context.Context, id, customerID uuid.UUID, amount int64, status string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"customer_id": customerID,
			"amount":      amount,
			"status":      status,
		})
	return result.RowsAffected, result.Error
}

// Delete removes the invoice with the given id and reports how many rows went away.
func (r *InvoiceRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Invoice{})
	return result.RowsAffected, result.Error
}

// GetByID fetch a single invoice by ID
func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &invoice, nil
}

// SearchInvoices matches query against customer name/email, amount, date and status.
func (r *InvoiceRepository) SearchInvoices(ctx context.Context, query string, limit, offset int) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := r.filtered(ctx, query).
		Select("invoices.id, invoices.amount, invoices.date, invoices.status, customers.name, customers.email, customers.image_url").
		Order("invoices.date DESC").
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, err
}

// CountInvoices counts the rows SearchInvoices would page through.
func (r *InvoiceRepository) CountInvoices(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.filtered(ctx, query).Count(&count).Error
	return count, err
}

// Latest returns the n most recent invoices.
func (r *InvoiceRepository) Latest(ctx context.Context, n int) ([]InvoiceRow, error) {
	var rows []InvoiceRow
	err := r.db.WithContext(ctx).
		Table("invoices").
		Select("invoices.id, invoices.amount, invoices.date, invoices.status, customers.name, customers.email, customers.image_url").
		Joins("JOIN customers ON invoices.customer_id = customers.id").
		Order("invoices.date DESC").
		Limit(n).
		Scan(&rows).Error
	return rows, err
}

// TotalsByStatus returns count and amount sum per status.
func (r *InvoiceRepository) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("status, COUNT(*) as count, COALESCE(SUM(amount),0) as sum").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *InvoiceRepository) filtered(ctx context.Context, query string) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("invoices").
		Joins("JOIN customers ON invoices.customer_id = customers.id")
	if query = strings.TrimSpace(query); query != "" {
		q = q.Where(
			"customers.name ILIKE @q OR customers.email ILIKE @q OR invoices.amount::text ILIKE @q OR invoices.date::text ILIKE @q OR invoices.status ILIKE @q",
			sql.Named("q", "%"+query+"%"),
		)
	}
	return q
}
