package handler

import (
	"net/http"

	"invoice-dashboard-backend/internal/services/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *dashboard.Service
}

func NewDashboardHandler(s *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: s}
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	ov, err := h.service.Overview(c.Request.Context())
	if err != nil {
		internalError(c, "overview", err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

func (h *DashboardHandler) Customers(c *gin.Context) {
	page, err := h.service.Customers(c.Request.Context(), c.Query("query"))
	if err != nil {
		internalError(c, "customers", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
