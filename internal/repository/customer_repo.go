package repository

import (
	"context"
	"database/sql"
	"strings"

	"invoice-dashboard-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// CustomerTotals is a customer row with its invoice aggregates (cents).
type CustomerTotals struct {
	ID            uuid.UUID
	Name          string
	Email         string
	ImageURL      string
	TotalInvoices int64
	TotalPending  int64
	TotalPaid     int64
}

// List returns every customer ordered by name.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.WithContext(ctx).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}

// SearchWithTotals filters customers by name or email and sums their invoices.
func (r *CustomerRepository) SearchWithTotals(ctx context.Context, query string) ([]CustomerTotals, error) {
	var rows []CustomerTotals

	q := r.db.WithContext(ctx).
		Table("customers").
		Select(`customers.id, customers.name, customers.email, customers.image_url,
			COUNT(invoices.id) AS total_invoices,
			COALESCE(SUM(CASE WHEN invoices.status = 'pending' THEN invoices.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN invoices.status = 'paid' THEN invoices.amount ELSE 0 END), 0) AS total_paid`).
		Joins("LEFT JOIN invoices ON customers.id = invoices.customer_id")

	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("customers.name ILIKE @q OR customers.email ILIKE @q", sql.Named("q", "%"+query+"%"))
	}

	err := q.Group("customers.id, customers.name, customers.email, customers.image_url").
		Order("customers.name ASC").
		Scan(&rows).Error
	return rows, err
}

// Create inserts a single customer row.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}
