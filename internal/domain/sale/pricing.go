package sale

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// CartLine is one requested line of a checkout cart
type CartLine struct {
	ProductID    uuid.UUID
	ProductName  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	LineDiscount decimal.Decimal // absolute currency amount, applied before tax
	LineTaxRate  decimal.Decimal // fraction, e.g. 0.12 for 12%
}

// PricedLine is a cart line with its computed amounts
type PricedLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Subtotal    valueobject.Money
	Discount    valueobject.Money
	Tax         valueobject.Money
	Total       valueobject.Money
}

// PricedCart carries the computed sale-level amounts alongside the lines.
// Amounts keep full decimal precision; rounding happens once at persistence.
type PricedCart struct {
	Lines    []PricedLine
	Subtotal valueobject.Money
	Discount valueobject.Money
	Tax      valueobject.Money
	Total    valueobject.Money
}

// PriceCart computes per-line and sale-level amounts from the cart input.
// Pure and deterministic: no I/O, no clock, no mutation of its input.
// orderDiscount is an absolute amount applied on top of line discounts;
// orderTaxRate is applied to the discounted subtotal not already taxed per line.
func PriceCart(lines []CartLine, orderDiscount, orderTaxRate decimal.Decimal) (*PricedCart, error) {
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Cart cannot be empty")
	}
	if orderDiscount.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Order discount cannot be negative")
	}
	if orderTaxRate.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Order tax rate cannot be negative")
	}

	priced := make([]PricedLine, 0, len(lines))
	subtotal := decimal.Zero
	discount := decimal.Zero
	tax := decimal.Zero

	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Product ID cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Unit price cannot be negative")
		}
		if line.LineDiscount.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Line discount cannot be negative")
		}
		if line.LineTaxRate.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Line tax rate cannot be negative")
		}

		lineSubtotal := line.Quantity.Mul(line.UnitPrice)
		if line.LineDiscount.GreaterThan(lineSubtotal) {
			return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Line discount cannot exceed line subtotal")
		}
		lineTax := lineSubtotal.Sub(line.LineDiscount).Mul(line.LineTaxRate)
		lineTotal := lineSubtotal.Sub(line.LineDiscount).Add(lineTax)

		priced = append(priced, PricedLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    valueobject.NewMoneyUSD(lineSubtotal),
			Discount:    valueobject.NewMoneyUSD(line.LineDiscount),
			Tax:         valueobject.NewMoneyUSD(lineTax),
			Total:       valueobject.NewMoneyUSD(lineTotal),
		})

		subtotal = subtotal.Add(lineSubtotal)
		discount = discount.Add(line.LineDiscount)
		tax = tax.Add(lineTax)
	}

	if orderDiscount.GreaterThan(subtotal.Sub(discount)) {
		return nil, shared.NewDomainError(shared.CodeInvalidCartLine, "Order discount cannot exceed the discounted subtotal")
	}
	discount = discount.Add(orderDiscount)

	if orderTaxRate.IsPositive() {
		tax = tax.Add(subtotal.Sub(discount).Mul(orderTaxRate))
	}

	total := subtotal.Sub(discount).Add(tax)

	return &PricedCart{
		Lines:    priced,
		Subtotal: valueobject.NewMoneyUSD(subtotal),
		Discount: valueobject.NewMoneyUSD(discount),
		Tax:      valueobject.NewMoneyUSD(tax),
		Total:    valueobject.NewMoneyUSD(total),
	}, nil
}

// ApplyRedemptionDiscount folds a loyalty redemption value into the cart as
// additional discount. The value must already be capped at the subtotal.
func (c *PricedCart) ApplyRedemptionDiscount(value valueobject.Money) error {
	if value.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Redemption value cannot be negative")
	}
	if value.Amount().GreaterThan(c.Subtotal.Amount()) {
		return shared.NewDomainError(shared.CodeInvalidRequest, "Redemption value cannot exceed the cart subtotal")
	}
	c.Discount = c.Discount.MustAdd(value)
	c.Total = c.Total.MustSubtract(value)
	return nil
}
