package sale

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// Status represents the lifecycle status of a sale
type Status string

const (
	StatusInitiated         Status = "INITIATED"
	StatusPaid              Status = "PAID"
	StatusPartiallyRefunded Status = "PARTIALLY_REFUNDED"
	StatusRefunded          Status = "REFUNDED"
	StatusVoided            Status = "VOIDED"
)

// PaymentMethodCash is the tender that pops the register drawer. The
// payment method field itself is free-form so stores can record their
// own tender names.
const PaymentMethodCash = "cash"

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusInitiated, StatusPaid, StatusPartiallyRefunded, StatusRefunded, StatusVoided:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions only move forward; REFUNDED and VOIDED are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusInitiated:
		return target == StatusPaid
	case StatusPaid:
		return target == StatusPartiallyRefunded || target == StatusRefunded || target == StatusVoided
	case StatusPartiallyRefunded:
		return target == StatusPartiallyRefunded || target == StatusRefunded
	case StatusRefunded, StatusVoided:
		return false // Terminal states
	}
	return false
}

// Item represents a line item owned by a Sale.
// Monetary fields are immutable after creation; only ReturnedQuantity and
// IsReturned change, through Sale.ApplyRefund.
type Item struct {
	ID               uuid.UUID
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_items_sale"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_sale_items_product"`
	ProductName      string          `gorm:"type:varchar(255);not null"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReturnedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsReturned       bool            `gorm:"not null;default:false"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "sale_items"
}

// RemainingQuantity returns the quantity still eligible for refund
func (i *Item) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReturnedQuantity)
}

// RefundableAmount returns the currency amount for refunding the given
// quantity of this line: a proportional share of the line total, which
// already accounts for the line discount and tax.
func (i *Item) RefundableAmount(quantity decimal.Decimal) decimal.Decimal {
	if i.Quantity.IsZero() {
		return decimal.Zero
	}
	return i.TotalPrice.Mul(quantity).Div(i.Quantity)
}

// Sale is the aggregate root for a committed purchase transaction.
// Monetary fields are immutable after creation except Status and the
// refund aggregates (RefundedAmount and per-item ReturnedQuantity).
type Sale struct {
	shared.BaseAggregateRoot
	Number         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	IdempotencyKey string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomerID     *uuid.UUID      `gorm:"type:uuid;index"`
	Status         Status          `gorm:"type:varchar(30);not null;index"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Tax            decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentMethod  string          `gorm:"type:varchar(30);not null"`
	PointsEarned   int64           `gorm:"not null;default:0"`
	PointsRedeemed int64           `gorm:"not null;default:0"`
	Notes          string          `gorm:"type:varchar(500)"`
	OccurredAt     time.Time       `gorm:"type:timestamptz;not null;index"`
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(255)"`
	Items          []Item `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a paid sale from a priced cart. Totals are carried over
// from the calculator with half-up rounding at 2 decimal places applied once.
func NewSale(number, idempotencyKey string, customerID *uuid.UUID, paymentMethod string, cart *PricedCart) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Sale number cannot be empty")
	}
	if idempotencyKey == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Idempotency key cannot be empty")
	}
	if paymentMethod == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Payment method cannot be empty")
	}
	if cart == nil || len(cart.Lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Sale requires at least one cart line")
	}

	total := cart.Total.RoundHalfUp(2)
	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		IdempotencyKey:    idempotencyKey,
		CustomerID:        customerID,
		Status:            StatusPaid,
		Subtotal:          cart.Subtotal.RoundHalfUp(2).Amount(),
		Discount:          cart.Discount.RoundHalfUp(2).Amount(),
		Tax:               cart.Tax.RoundHalfUp(2).Amount(),
		Total:             total.Amount(),
		AmountPaid:        total.Amount(),
		RefundedAmount:    decimal.Zero,
		PaymentMethod:     paymentMethod,
		OccurredAt:        time.Now(),
		Items:             make([]Item, 0, len(cart.Lines)),
	}

	now := time.Now()
	for _, line := range cart.Lines {
		s.Items = append(s.Items, Item{
			ID:               uuid.New(),
			SaleID:           s.ID,
			ProductID:        line.ProductID,
			ProductName:      line.ProductName,
			Quantity:         line.Quantity,
			UnitPrice:        line.UnitPrice,
			DiscountAmount:   line.Discount.RoundHalfUp(2).Amount(),
			TaxAmount:        line.Tax.RoundHalfUp(2).Amount(),
			TotalPrice:       line.Total.RoundHalfUp(2).Amount(),
			ReturnedQuantity: decimal.Zero,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	return s, nil
}

// SetLoyalty records the points earned and redeemed for this sale
func (s *Sale) SetLoyalty(earned, redeemed int64) {
	s.PointsEarned = earned
	s.PointsRedeemed = redeemed
	s.UpdatedAt = time.Now()
}

// SetNotes sets the free-form notes for the sale
func (s *Sale) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
}

// RefundLine is one line of a refund request against this sale
type RefundLine struct {
	SaleItemID uuid.UUID
	Quantity   decimal.Decimal
	Reason     string
}

// RefundedLine is the outcome of applying one refund line
type RefundedLine struct {
	SaleItemID uuid.UUID
	ProductID  uuid.UUID
	Quantity   decimal.Decimal
	Amount     decimal.Decimal
	Reason     string
}

// ApplyRefund validates and applies a batch of refund lines atomically.
// A single invalid line rejects the whole batch and leaves the sale
// untouched. On success, per-item ReturnedQuantity is advanced, the sale
// status is recomputed, and the refunded currency amounts are returned.
func (s *Sale) ApplyRefund(lines []RefundLine) ([]RefundedLine, error) {
	if s.Status == StatusVoided || s.Status == StatusRefunded {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest,
			fmt.Sprintf("Cannot refund a sale in %s status", s.Status))
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Refund requires at least one line")
	}

	// Validate every line before mutating anything
	requested := make(map[uuid.UUID]decimal.Decimal, len(lines))
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Refund quantity must be positive")
		}
		item := s.GetItem(line.SaleItemID)
		if item == nil {
			return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Refund references an unknown sale item")
		}
		total := requested[line.SaleItemID].Add(line.Quantity)
		if total.GreaterThan(item.RemainingQuantity()) {
			return nil, shared.ErrOverRefund
		}
		requested[line.SaleItemID] = total
	}

	now := time.Now()
	refunded := make([]RefundedLine, 0, len(lines))
	for _, line := range lines {
		item := s.GetItem(line.SaleItemID)
		amount := item.RefundableAmount(line.Quantity).Round(2)

		item.ReturnedQuantity = item.ReturnedQuantity.Add(line.Quantity)
		item.IsReturned = item.ReturnedQuantity.GreaterThanOrEqual(item.Quantity)
		item.UpdatedAt = now

		s.RefundedAmount = s.RefundedAmount.Add(amount)
		refunded = append(refunded, RefundedLine{
			SaleItemID: item.ID,
			ProductID:  item.ProductID,
			Quantity:   line.Quantity,
			Amount:     amount,
			Reason:     line.Reason,
		})
	}

	s.recomputeStatus()
	s.UpdatedAt = now

	return refunded, nil
}

// Void voids the sale. Only permitted while paid with no refunds recorded.
func (s *Sale) Void(reason string) error {
	if !s.Status.CanTransitionTo(StatusVoided) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("Cannot void a sale in %s status", s.Status))
	}
	if s.HasRefunds() {
		return shared.NewDomainError(shared.CodeInvalidState, "Cannot void a sale after a refund")
	}
	if reason == "" {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Void reason is required")
	}

	now := time.Now()
	s.Status = StatusVoided
	s.VoidedAt = &now
	s.VoidReason = reason
	s.UpdatedAt = now

	return nil
}

// recomputeStatus derives the sale status from per-item returned quantities
func (s *Sale) recomputeStatus() {
	fullyReturned := true
	anyReturned := false
	for idx := range s.Items {
		if s.Items[idx].ReturnedQuantity.IsPositive() {
			anyReturned = true
		}
		if s.Items[idx].ReturnedQuantity.LessThan(s.Items[idx].Quantity) {
			fullyReturned = false
		}
	}

	switch {
	case fullyReturned:
		s.Status = StatusRefunded
	case anyReturned:
		s.Status = StatusPartiallyRefunded
	}
}

// HasRefunds returns true if any item has been returned
func (s *Sale) HasRefunds() bool {
	for idx := range s.Items {
		if s.Items[idx].ReturnedQuantity.IsPositive() {
			return true
		}
	}
	return false
}

// GetItem returns an item by its ID
func (s *Sale) GetItem(itemID uuid.UUID) *Item {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// GetItemByProduct returns an item by product ID
func (s *Sale) GetItemByProduct(productID uuid.UUID) *Item {
	for idx := range s.Items {
		if s.Items[idx].ProductID == productID {
			return &s.Items[idx]
		}
	}
	return nil
}

// GetTotalMoney returns the sale total as Money
func (s *Sale) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.Total)
}

// GetRefundedAmountMoney returns the refunded amount as Money
func (s *Sale) GetRefundedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyUSD(s.RefundedAmount)
}

// IsTerminal returns true if the sale is in a terminal state
func (s *Sale) IsTerminal() bool {
	return s.Status == StatusRefunded || s.Status == StatusVoided
}
