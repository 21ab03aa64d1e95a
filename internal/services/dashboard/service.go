// Package dashboard assembles the read-only page documents of the dashboard.
package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	ItemsPerPage = 6
	LatestCount  = 5

	// MaxPage is the highest page whose offset still fits in an int.
	MaxPage = math.MaxInt/ItemsPerPage + 1
)

type InvoiceStore interface {
	SearchInvoices(ctx context.Context, query string, limit, offset int) ([]repository.InvoiceRow, error)
	CountInvoices(ctx context.Context, query string) (int64, error)
	Latest(ctx context.Context, n int) ([]repository.InvoiceRow, error)
	TotalsByStatus(ctx context.Context) ([]repository.StatusTotal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
}

type CustomerStore interface {
	List(ctx context.Context) ([]models.Customer, error)
	Count(ctx context.Context) (int64, error)
	SearchWithTotals(ctx context.Context, query string) ([]repository.CustomerTotals, error)
}

type CardData struct {
	NumberOfInvoices     int64  `json:"numberOfInvoices"`
	NumberOfCustomers    int64  `json:"numberOfCustomers"`
	TotalPaidInvoices    string `json:"totalPaidInvoices"`
	TotalPendingInvoices string `json:"totalPendingInvoices"`
}

type InvoiceItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	AmountCents int64     `json:"amount_cents"`
	Amount      string    `json:"amount"`
	Date        string    `json:"date"`
	Status      string    `json:"status"`
}

type Overview struct {
	Cards          CardData      `json:"cards"`
	LatestInvoices []InvoiceItem `json:"latestInvoices"`
}

type InvoicesPage struct {
	Query       string        `json:"query"`
	CurrentPage int           `json:"currentPage"`
	TotalPages  int           `json:"totalPages"`
	Invoices    []InvoiceItem `json:"invoices"`
}

type CustomerField struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// InvoiceFormValues prefills the edit form; Amount is in dollars.
type InvoiceFormValues struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Amount     string    `json:"amount"`
	Status     string    `json:"status"`
}

type EditForm struct {
	Invoice   InvoiceFormValues `json:"invoice"`
	Customers []CustomerField   `json:"customers"`
}

type CustomerItem struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	ImageURL      string    `json:"image_url"`
	TotalInvoices int64     `json:"total_invoices"`
	TotalPending  string    `json:"total_pending"`
	TotalPaid     string    `json:"total_paid"`
}

type CustomersPage struct {
	Title     string         `json:"title"`
	Query     string         `json:"query"`
	Customers []CustomerItem `json:"customers"`
}

type Service struct {
	invoices  InvoiceStore
	customers CustomerStore
}

func NewService(invoices InvoiceStore, customers CustomerStore) *Service {
	return &Service{invoices: invoices, customers: customers}
}

// Overview loads the cards and the latest invoices concurrently.
func (s *Service) Overview(ctx context.Context) (Overview, error) {
	var (
		totals    []repository.StatusTotal
		customers int64
		latest    []repository.InvoiceRow
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		totals, err = s.invoices.TotalsByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.customers.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		latest, err = s.invoices.Latest(gctx, LatestCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, fmt.Errorf("load overview: %w", err)
	}

	cards := CardData{NumberOfCustomers: customers}
	var paid, pending int64
	for _, t := range totals {
		cards.NumberOfInvoices += t.Count
		switch t.Status {
		case models.InvoiceStatusPaid:
			paid += t.Sum
		case models.InvoiceStatusPending:
			pending += t.Sum
		}
	}
	cards.TotalPaidInvoices = FormatCurrency(paid)
	cards.TotalPendingInvoices = FormatCurrency(pending)

	return Overview{Cards: cards, LatestInvoices: toItems(latest)}, nil
}

// Invoices returns one page of the filtered invoice list. Pages start at 1;
// anything lower is treated as the first page and anything above MaxPage
// as MaxPage.
func (s *Service) Invoices(ctx context.Context, query string, page int) (InvoicesPage, error) {
	page = max(1, min(page, MaxPage))
	count, err := s.invoices.CountInvoices(ctx, query)
	if err != nil {
		return InvoicesPage{}, fmt.Errorf("count invoices: %w", err)
	}
	rows, err := s.invoices.SearchInvoices(ctx, query, ItemsPerPage, (page-1)*ItemsPerPage)
	if err != nil {
		return InvoicesPage{}, fmt.Errorf("search invoices: %w", err)
	}
	return InvoicesPage{
		Query:       query,
		CurrentPage: page,
		TotalPages:  TotalPages(count),
		Invoices:    toItems(rows),
	}, nil
}

// CreateForm lists the customers an invoice can be billed to.
func (s *Service) CreateForm(ctx context.Context) ([]CustomerField, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return toFields(customers), nil
}

// EditForm returns repository.ErrNotFound when the invoice does not exist.
func (s *Service) EditForm(ctx context.Context, id uuid.UUID) (EditForm, error) {
	invoice, err := s.invoices.GetByID(ctx, id)
	if err != nil {
		return EditForm{}, err
	}
	customers, err := s.customers.List(ctx)
	if err != nil {
		return EditForm{}, fmt.Errorf("list customers: %w", err)
	}
	return EditForm{
		Invoice: InvoiceFormValues{
			ID:         invoice.ID,
			CustomerID: invoice.CustomerID,
			Amount:     decimal.New(invoice.Amount, -2).StringFixed(2),
			Status:     invoice.Status,
		},
		Customers: toFields(customers),
	}, nil
}

func (s *Service) Customers(ctx context.Context, query string) (CustomersPage, error) {
	rows, err := s.customers.SearchWithTotals(ctx, query)
	if err != nil {
		return CustomersPage{}, fmt.Errorf("search customers: %w", err)
	}
	items := make([]CustomerItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, CustomerItem{
			ID:            r.ID,
			Name:          r.Name,
			Email:         r.Email,
			ImageURL:      r.ImageURL,
			TotalInvoices: r.TotalInvoices,
			TotalPending:  FormatCurrency(r.TotalPending),
			TotalPaid:     FormatCurrency(r.TotalPaid),
		})
	}
	return CustomersPage{Title: "Customers", Query: query, Customers: items}, nil
}

// TotalPages is the number of list pages needed for count invoices.
func TotalPages(count int64) int {
	return int((count + ItemsPerPage - 1) / ItemsPerPage)
}

func toItems(rows []repository.InvoiceRow) []InvoiceItem {
	items := make([]InvoiceItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, InvoiceItem{
			ID:          r.ID,
			Name:        r.Name,
			Email:       r.Email,
			ImageURL:    r.ImageURL,
			AmountCents: r.Amount,
			Amount:      FormatCurrency(r.Amount),
			Date:        r.Date.Format(time.DateOnly),
			Status:      r.Status,
		})
	}
	return items
}

func toFields(customers []models.Customer) []CustomerField {
	out := make([]CustomerField, 0, len(customers))
	for _, c := range customers {
		out = append(out, CustomerField{ID: c.ID, Name: c.Name})
	}
	return out
}
