package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"invoice-dashboard-backend/internal/auth"
	"invoice-dashboard-backend/internal/cache"
	handler "invoice-dashboard-backend/internal/handlers"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/services/authentication"
	"invoice-dashboard-backend/internal/services/dashboard"
	"invoice-dashboard-backend/internal/services/invoices"
)

// Options carries the shared infrastructure the routes need.
type Options struct {
	Pages    cache.Pages
	Sessions *auth.SessionManager
	Cookie   handler.CookieConfig
	Gate     auth.Gate
}

type Handlers struct {
	Auth      *handler.AuthHandler
	Dashboard *handler.DashboardHandler
	Invoices  *handler.InvoiceHandler
}

// RegisterRoutes wires repositories and services over db and mounts them.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, opts Options) {
	invoiceRepo := repository.NewInvoiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	userRepo := repository.NewUserRepository(db)

	provider := auth.NewCredentialsProvider(userRepo, opts.Sessions)
	dashboardService := dashboard.NewService(invoiceRepo, customerRepo)

	Mount(r, Handlers{
		Auth:      handler.NewAuthHandler(authentication.NewService(provider), opts.Sessions, opts.Cookie, opts.Gate.ProtectedPrefix),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Invoices:  handler.NewInvoiceHandler(invoices.NewService(invoiceRepo), dashboardService, opts.Pages),
	}, opts)
}

// Mount registers every route. Pages sit behind the gate; /api and
// /logout do not.
func Mount(r *gin.Engine, h Handlers, opts Options) {
	r.Use(handler.RequestID(), handler.RequestLogger(), handler.LoadSession(opts.Sessions, opts.Cookie))

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.POST("/logout", h.Auth.Logout)

	pages := r.Group("")
	pages.Use(handler.Gate(opts.Gate))

	pages.GET("/", h.Auth.Home)
	pages.GET(opts.Gate.LoginPath, h.Auth.LoginPage)
	pages.POST(opts.Gate.LoginPath, h.Auth.Login)

	dash := pages.Group(opts.Gate.ProtectedPrefix)
	dash.GET("", h.Dashboard.Overview)
	dash.GET("/customers", h.Dashboard.Customers)

	inv := dash.Group("/invoices")
	{
		inv.GET("", h.Invoices.List)
		inv.GET("/create", h.Invoices.CreateForm)
		inv.POST("/create", h.Invoices.Create)
		inv.GET("/:id/edit", h.Invoices.EditForm)
		inv.POST("/:id/edit", h.Invoices.Update)
		inv.POST("/:id/delete", h.Invoices.Delete)
	}
}
