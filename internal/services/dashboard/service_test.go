package dashboard

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInvoices struct {
	rows       []repository.InvoiceRow
	totals     []repository.StatusTotal
	invoice    *models.Invoice
	err        error
	lastLimit  int
	lastOffset int
	lastQuery  string
}

func (f *fakeInvoices) SearchInvoices(_ context.Context, query string, limit, offset int) ([]repository.InvoiceRow, error) {
	f.lastQuery, f.lastLimit, f.lastOffset = query, limit, offset
	return f.rows, f.err
}

func (f *fakeInvoices) CountInvoices(context.Context, string) (int64, error) {
	return 13, f.err
}

func (f *fakeInvoices) Latest(_ context.Context, n int) ([]repository.InvoiceRow, error) {
	if n < len(f.rows) {
		return f.rows[:n], f.err
	}
	return f.rows, f.err
}

func (f *fakeInvoices) TotalsByStatus(context.Context) ([]repository.StatusTotal, error) {
	return f.totals, f.err
}

func (f *fakeInvoices) GetByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	if f.invoice == nil || f.invoice.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.invoice, nil
}

type fakeCustomers struct {
	customers []models.Customer
	totals    []repository.CustomerTotals
	err       error
}

func (f *fakeCustomers) List(context.Context) ([]models.Customer, error) { return f.customers, f.err }
func (f *fakeCustomers) Count(context.Context) (int64, error) {
	return int64(len(f.customers)), f.err
}
func (f *fakeCustomers) SearchWithTotals(context.Context, string) ([]repository.CustomerTotals, error) {
	return f.totals, f.err
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatCurrency(123456))
	assert.Equal(t, "$50.00", FormatCurrency(5000))
	assert.Equal(t, "$0.00", FormatCurrency(0))
	assert.Equal(t, "-$0.99", FormatCurrency(-99))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(6))
	assert.Equal(t, 2, TotalPages(7))
	assert.Equal(t, 3, TotalPages(13))
}

func TestOverviewSumsByStatus(t *testing.T) {
	invoices := &fakeInvoices{
		totals: []repository.StatusTotal{
			{Status: "paid", Count: 3, Sum: 150000},
			{Status: "pending", Count: 2, Sum: 2550},
		},
		rows: []repository.InvoiceRow{{ID: uuid.New(), Name: "Lee Robinson", Amount: 2550, Status: "pending", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}},
	}
	customers := &fakeCustomers{customers: []models.Customer{{Name: "Lee Robinson"}, {Name: "Delba de Oliveira"}}}

	ov, err := NewService(invoices, customers).Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, CardData{
		NumberOfInvoices:     5,
		NumberOfCustomers:    2,
		TotalPaidInvoices:    "$1,500.00",
		TotalPendingInvoices: "$25.50",
	}, ov.Cards)
	require.Len(t, ov.LatestInvoices, 1)
	assert.Equal(t, "2024-01-02", ov.LatestInvoices[0].Date)
	assert.Equal(t, "$25.50", ov.LatestInvoices[0].Amount)
}

func TestOverviewPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewService(&fakeInvoices{err: boom}, &fakeCustomers{}).Overview(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestInvoicesPaging(t *testing.T) {
	invoices := &fakeInvoices{}
	svc := NewService(invoices, &fakeCustomers{})

	page, err := svc.Invoices(context.Background(), "lee", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, "lee", invoices.lastQuery)
	assert.Equal(t, ItemsPerPage, invoices.lastLimit)
	assert.Equal(t, 12, invoices.lastOffset)
	assert.NotNil(t, page.Invoices)

	page, err = svc.Invoices(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 0, invoices.lastOffset)
}

func TestInvoicesPageNumberCannotOverflowOffset(t *testing.T) {
	invoices := &fakeInvoices{}
	svc := NewService(invoices, &fakeCustomers{})

	page, err := svc.Invoices(context.Background(), "", math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, MaxPage, page.CurrentPage)
	assert.Positive(t, invoices.lastOffset)
	assert.Equal(t, (MaxPage-1)*ItemsPerPage, invoices.lastOffset)
}

func TestEditForm(t *testing.T) {
	id := uuid.New()
	invoices := &fakeInvoices{invoice: &models.Invoice{ID: id, CustomerID: uuid.New(), Amount: 1234, Status: "paid"}}
	customers := &fakeCustomers{customers: []models.Customer{{ID: uuid.New(), Name: "Amy Burns"}}}
	svc := NewService(invoices, customers)

	form, err := svc.EditForm(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "12.34", form.Invoice.Amount)
	assert.Equal(t, "paid", form.Invoice.Status)
	require.Len(t, form.Customers, 1)
	assert.Equal(t, "Amy Burns", form.Customers[0].Name)

	_, err = svc.EditForm(context.Background(), uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCustomersPage(t *testing.T) {
	customers := &fakeCustomers{totals: []repository.CustomerTotals{
		{ID: uuid.New(), Name: "Evil Rabbit", Email: "evil@rabbit.com", TotalInvoices: 2, TotalPending: 44800, TotalPaid: 0},
	}}

	page, err := NewService(&fakeInvoices{}, customers).Customers(context.Background(), "evil")
	require.NoError(t, err)
	assert.Equal(t, "Customers", page.Title)
	require.Len(t, page.Customers, 1)
	assert.Equal(t, "$448.00", page.Customers[0].TotalPending)
	assert.Equal(t, "$0.00", page.Customers[0].TotalPaid)
}
