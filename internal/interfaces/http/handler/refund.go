package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pos/backend/internal/application/checkout"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

// RefundHandler handles refund processing against sales
type RefundHandler struct {
	BaseHandler
	refundService *checkout.RefundService
}

// NewRefundHandler creates a new RefundHandler
func NewRefundHandler(refundService *checkout.RefundService) *RefundHandler {
	return &RefundHandler{refundService: refundService}
}

// RegisterRoutes registers refund routes
func (h *RefundHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("/:id/refunds", h.ProcessRefund)
		sales.GET("/:id/refunds", h.ListRefunds)
	}
}

// ProcessRefund handles POST /api/v1/sales/:id/refunds
func (h *RefundHandler) ProcessRefund(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID := uuid.MustParse(uri.ID)

	var req checkout.ProcessRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, middleware.FormatBindingError(err))
		return
	}

	actor := middleware.GetOperator(c)
	response, err := h.refundService.ProcessRefund(c.Request.Context(), actor, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, response)
}

// ListRefunds handles GET /api/v1/sales/:id/refunds
func (h *RefundHandler) ListRefunds(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return
	}
	saleID := uuid.MustParse(uri.ID)

	responses, err := h.refundService.ListRefunds(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, responses)
}
