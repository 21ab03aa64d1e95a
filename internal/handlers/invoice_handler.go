package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"invoice-dashboard-backend/internal/cache"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/services/dashboard"
	"invoice-dashboard-backend/internal/services/invoices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	actions   *invoices.Service
	dashboard *dashboard.Service
	pages     cache.Pages
}

func NewInvoiceHandler(actions *invoices.Service, d *dashboard.Service, pages cache.Pages) *InvoiceHandler {
	return &InvoiceHandler{actions: actions, dashboard: d, pages: pages}
}

// List serves the filtered invoice list, from the page cache when possible.
// The cache generation is read before the database so a mutation landing
// mid-request leaves this fill behind in an old generation.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	query := c.Query("query")
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	key := url.Values{"page": {strconv.Itoa(page)}, "query": {query}}.Encode()

	gen, err := h.pages.Generation(ctx, invoices.ListPath)
	cached := err == nil
	if !cached {
		logCacheError(c, "generation", err)
	}

	if cached {
		body, err := h.pages.Get(ctx, invoices.ListPath, gen, key)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			return
		}
		if !errors.Is(err, cache.ErrMiss) {
			logCacheError(c, "get", err)
		}
	}

	result, err := h.dashboard.Invoices(ctx, query, page)
	if err != nil {
		internalError(c, "list_invoices", err)
		return
	}
	body, err := json.Marshal(result)
	if err != nil {
		internalError(c, "list_invoices", err)
		return
	}
	if cached {
		if err := h.pages.Set(ctx, invoices.ListPath, gen, key, body); err != nil {
			logCacheError(c, "set", err)
		}
	}
	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// CreateForm lists the customers for the create form.
func (h *InvoiceHandler) CreateForm(c *gin.Context) {
	customers, err := h.dashboard.CreateForm(c.Request.Context())
	if err != nil {
		internalError(c, "create_form", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// EditForm prefills the edit form for one invoice.
func (h *InvoiceHandler) EditForm(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	form, err := h.dashboard.EditForm(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invoice not found"})
		return
	}
	if err != nil {
		internalError(c, "edit_form", err)
		return
	}
	c.JSON(http.StatusOK, form)
}

func (h *InvoiceHandler) Create(c *gin.Context) {
	var form invoices.Form
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.apply(c, h.actions.Create(c.Request.Context(), form))
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	var form invoices.Form
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	h.apply(c, h.actions.Update(c.Request.Context(), c.Param("id"), form))
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	h.apply(c, h.actions.Delete(c.Request.Context(), c.Param("id")))
}

// apply turns an action outcome into cache invalidation plus a response.
func (h *InvoiceHandler) apply(c *gin.Context, out invoices.Outcome) {
	if len(out.Revalidate) > 0 {
		if err := h.pages.Invalidate(c.Request.Context(), out.Revalidate...); err != nil {
			logCacheError(c, "invalidate", err)
		}
	}

	switch out.Kind {
	case invoices.Persisted:
		if out.RedirectTo != "" {
			c.Redirect(http.StatusSeeOther, out.RedirectTo)
			return
		}
		c.JSON(http.StatusOK, out.State)
	case invoices.Invalid:
		c.JSON(http.StatusUnprocessableEntity, out.State)
	default:
		c.JSON(http.StatusInternalServerError, out.State)
	}
}

func logCacheError(c *gin.Context, op string, err error) {
	httpLogger().WarnContext(c.Request.Context(), "page cache unavailable",
		"operation", "page_cache_"+op,
		"outcome", "failure",
		"request_id", c.GetString(ctxKeyRequestID),
		"error", err.Error(),
	)
}

func internalError(c *gin.Context, op string, err error) {
	httpLogger().ErrorContext(c.Request.Context(), "http operation failed",
		"operation", op,
		"outcome", "failure",
		"request_id", c.GetString(ctxKeyRequestID),
		"error", err.Error(),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
