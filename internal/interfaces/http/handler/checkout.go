package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pos/backend/internal/application/checkout"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

// CheckoutHandler handles sale creation, lookup, and voiding
type CheckoutHandler struct {
	BaseHandler
	checkoutService *checkout.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *checkout.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// RegisterRoutes registers checkout routes
func (h *CheckoutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.POST("/:id/void", h.VoidSale)
	}
}

// CreateSale handles POST /api/v1/sales
func (h *CheckoutHandler) CreateSale(c *gin.Context) {
	var req checkout.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	actor := middleware.GetOperator(c)
	response, err := h.checkoutService.CreateSale(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if response.Replayed {
		h.Success(c, response)
		return
	}
	h.Created(c, response)
}

// GetSale handles GET /api/v1/sales/:id
func (h *CheckoutHandler) GetSale(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	id := uuid.MustParse(uri.ID)

	response, err := h.checkoutService.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}

// VoidSale handles POST /api/v1/sales/:id/void
func (h *CheckoutHandler) VoidSale(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	id := uuid.MustParse(uri.ID)

	var req checkout.VoidSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	actor := middleware.GetOperator(c)
	response, err := h.checkoutService.VoidSale(c.Request.Context(), actor, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, response)
}
