package loyalty

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
)

// ReversalRounding controls which way proportional point reversals round
// on partial refunds.
type ReversalRounding string

const (
	ReversalRoundDown ReversalRounding = "down"
	ReversalRoundUp   ReversalRounding = "up"
)

// Program holds the active loyalty program rates.
// Earn and redemption policy are applied deterministically from these
// values; there is no per-call-site variation.
type Program struct {
	// PointsPerCurrencyUnit is the earn rate: points granted per currency
	// unit of the paid sale total, floored.
	PointsPerCurrencyUnit decimal.Decimal
	// RedemptionValuePerPoint is the currency value deducted per redeemed point.
	RedemptionValuePerPoint decimal.Decimal
	// ReversalRounding is the rounding direction for proportional reversals.
	ReversalRounding ReversalRounding
}

// ProgramProvider supplies the active loyalty program configuration.
// The program itself is managed outside the commerce core.
type ProgramProvider interface {
	ActiveProgram(ctx context.Context) (Program, error)
}

// StaticProgramProvider returns a fixed program, used for configuration-file
// driven deployments and in tests.
type StaticProgramProvider struct {
	Program Program
}

// ActiveProgram returns the configured program
func (p StaticProgramProvider) ActiveProgram(ctx context.Context) (Program, error) {
	return p.Program, nil
}

// PointsEarned computes the points granted for a paid sale total:
// floor(total × PointsPerCurrencyUnit). A non-positive total earns nothing.
func (p Program) PointsEarned(total valueobject.Money) int64 {
	if !total.IsPositive() || !p.PointsPerCurrencyUnit.IsPositive() {
		return 0
	}
	return total.Amount().Mul(p.PointsPerCurrencyUnit).Floor().IntPart()
}

// RedemptionValue converts a point count to its currency value
func (p Program) RedemptionValue(points int64) valueobject.Money {
	return valueobject.NewMoneyUSD(decimal.NewFromInt(points).Mul(p.RedemptionValuePerPoint))
}

// CapRedemption reduces the requested points so their currency value does
// not exceed the cart subtotal. Requests above the customer's balance are
// rejected by the ledger, not truncated here.
func (p Program) CapRedemption(requested int64, subtotal valueobject.Money) int64 {
	if requested <= 0 || !p.RedemptionValuePerPoint.IsPositive() {
		return 0
	}
	maxPoints := subtotal.Amount().Div(p.RedemptionValuePerPoint).Floor().IntPart()
	if requested > maxPoints {
		return maxPoints
	}
	return requested
}

// ProportionalReversal computes how many of the given points to reverse for
// a refund covering refundedAmount out of saleTotal. Rounding direction is
// the program's configured rule; the result never exceeds points.
func (p Program) ProportionalReversal(points int64, refundedAmount, saleTotal decimal.Decimal) (int64, error) {
	if points <= 0 || refundedAmount.IsZero() {
		return 0, nil
	}
	if saleTotal.LessThanOrEqual(decimal.Zero) {
		return 0, shared.NewDomainError(shared.CodeInvalidRequest, "Sale total must be positive for proportional reversal")
	}
	if refundedAmount.IsNegative() {
		return 0, shared.NewDomainError(shared.CodeInvalidRequest, "Refunded amount cannot be negative")
	}

	exact := decimal.NewFromInt(points).Mul(refundedAmount).Div(saleTotal)
	var reversed int64
	if p.ReversalRounding == ReversalRoundUp {
		reversed = exact.Ceil().IntPart()
	} else {
		reversed = exact.Floor().IntPart()
	}
	if reversed > points {
		reversed = points
	}
	return reversed, nil
}
