package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/sale"
)

// ==================== Checkout DTOs ====================

// CreateSaleRequest represents a checkout request
type CreateSaleRequest struct {
	IdempotencyKey   string                `json:"idempotency_key" binding:"required,min=1,max=100"`
	CustomerID       *uuid.UUID            `json:"customer_id"`
	PaymentMethod    string                `json:"payment_method" binding:"required,min=1,max=30"`
	Lines            []CreateSaleLineInput `json:"lines" binding:"required,min=1"`
	OrderDiscount    decimal.Decimal       `json:"order_discount"`
	OrderTaxRate     decimal.Decimal       `json:"order_tax_rate"`
	RedeemPoints     int64                 `json:"redeem_points"`
	ReceiptRecipient string                `json:"receipt_recipient"`
	Notes            string                `json:"notes"`
}

// CreateSaleLineInput represents one cart line in a checkout request
type CreateSaleLineInput struct {
	ProductID    uuid.UUID       `json:"product_id" binding:"required"`
	ProductName  string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"required"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTaxRate  decimal.Decimal `json:"line_tax_rate"`
}

// VoidSaleRequest represents a request to void a paid sale
type VoidSaleRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// SaleItemResponse represents a sale item in responses
type SaleItemResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	ProductName      string          `json:"product_name"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	TotalPrice       decimal.Decimal `json:"total_price"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
}

// SaleResponse represents a sale in responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	Number         string             `json:"number"`
	CustomerID     *uuid.UUID         `json:"customer_id,omitempty"`
	Status         string             `json:"status"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	Discount       decimal.Decimal    `json:"discount"`
	Tax            decimal.Decimal    `json:"tax"`
	Total          decimal.Decimal    `json:"total"`
	RefundedAmount decimal.Decimal    `json:"refunded_amount"`
	PaymentMethod  string             `json:"payment_method"`
	PointsEarned   int64              `json:"points_earned"`
	PointsRedeemed int64              `json:"points_redeemed"`
	Notes          string             `json:"notes,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
	VoidedAt       *time.Time         `json:"voided_at,omitempty"`
	VoidReason     string             `json:"void_reason,omitempty"`
	Items          []SaleItemResponse `json:"items"`
	// Replayed is true when the request matched a previously committed
	// idempotency key and no new sale was created
	Replayed bool `json:"replayed"`
}

// ToSaleResponse converts a sale aggregate to its response representation
func ToSaleResponse(s *sale.Sale, replayed bool) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			DiscountAmount:   item.DiscountAmount,
			TaxAmount:        item.TaxAmount,
			TotalPrice:       item.TotalPrice,
			ReturnedQuantity: item.ReturnedQuantity,
		})
	}
	return SaleResponse{
		ID:             s.ID,
		Number:         s.Number,
		CustomerID:     s.CustomerID,
		Status:         string(s.Status),
		Subtotal:       s.Subtotal,
		Discount:       s.Discount,
		Tax:            s.Tax,
		Total:          s.Total,
		RefundedAmount: s.RefundedAmount,
		PaymentMethod:  s.PaymentMethod,
		PointsEarned:   s.PointsEarned,
		PointsRedeemed: s.PointsRedeemed,
		Notes:          s.Notes,
		OccurredAt:     s.OccurredAt,
		VoidedAt:       s.VoidedAt,
		VoidReason:     s.VoidReason,
		Items:          items,
		Replayed:       replayed,
	}
}

// ==================== Refund DTOs ====================

// ProcessRefundRequest represents a refund request against a sale
type ProcessRefundRequest struct {
	Lines            []RefundLineInput `json:"lines" binding:"required,min=1"`
	ReceiptRecipient string            `json:"receipt_recipient"`
}

// RefundLineInput represents one line of a refund request
type RefundLineInput struct {
	SaleItemID uuid.UUID       `json:"sale_item_id" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	Reason     string          `json:"reason" binding:"max=255"`
}

// RefundItemResponse represents a refunded line in responses
type RefundItemResponse struct {
	SaleItemID uuid.UUID       `json:"sale_item_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason,omitempty"`
}

// RefundResponse represents a committed refund in responses
type RefundResponse struct {
	ID             uuid.UUID            `json:"id"`
	SaleID         uuid.UUID            `json:"sale_id"`
	Number         string               `json:"number"`
	Amount         decimal.Decimal      `json:"amount"`
	PointsReversed int64                `json:"points_reversed"`
	PointsRestored int64                `json:"points_restored"`
	Actor          string               `json:"actor"`
	Items          []RefundItemResponse `json:"items"`
	CreatedAt      time.Time            `json:"created_at"`
	// SaleStatus is the sale's status after this refund was applied
	SaleStatus string `json:"sale_status"`
}

// ToRefundResponse converts a refund record to its response representation
func ToRefundResponse(r *sale.Refund, saleStatus sale.Status) RefundResponse {
	items := make([]RefundItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, RefundItemResponse{
			SaleItemID: item.SaleItemID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			Amount:     item.Amount,
			Reason:     item.Reason,
		})
	}
	return RefundResponse{
		ID:             r.ID,
		SaleID:         r.SaleID,
		Number:         r.Number,
		Amount:         r.Amount,
		PointsReversed: r.PointsReversed,
		PointsRestored: r.PointsRestored,
		Actor:          r.Actor,
		Items:          items,
		CreatedAt:      r.CreatedAt,
		SaleStatus:     string(saleStatus),
	}
}
