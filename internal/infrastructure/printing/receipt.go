package printing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/sale"
)

// receiptWidth is the character width of a standard 80mm thermal roll.
const receiptWidth = 42

// RenderSaleReceipt formats a sale as fixed-width receipt text.
func RenderSaleReceipt(s *sale.Sale) string {
	var b strings.Builder

	writeCentered(&b, s.Number)
	writeCentered(&b, s.OccurredAt.Format("2006-01-02 15:04:05"))
	writeRule(&b)

	for _, item := range s.Items {
		b.WriteString(item.ProductName)
		b.WriteByte('\n')
		writeAmountLine(&b,
			fmt.Sprintf("  %s x %s", item.Quantity.String(), item.UnitPrice.StringFixed(2)),
			item.TotalPrice.StringFixed(2))
	}

	writeRule(&b)
	writeAmountLine(&b, "Subtotal", s.Subtotal.StringFixed(2))
	if !s.Discount.IsZero() {
		writeAmountLine(&b, "Discount", "-"+s.Discount.StringFixed(2))
	}
	if !s.Tax.IsZero() {
		writeAmountLine(&b, "Tax", s.Tax.StringFixed(2))
	}
	writeAmountLine(&b, "TOTAL", s.Total.StringFixed(2))
	writeAmountLine(&b, "Paid ("+s.PaymentMethod+")", s.AmountPaid.StringFixed(2))

	if s.PointsEarned > 0 || s.PointsRedeemed > 0 {
		writeRule(&b)
		if s.PointsRedeemed > 0 {
			writeAmountLine(&b, "Points redeemed", fmt.Sprintf("%d", s.PointsRedeemed))
		}
		if s.PointsEarned > 0 {
			writeAmountLine(&b, "Points earned", fmt.Sprintf("%d", s.PointsEarned))
		}
	}

	return b.String()
}

// RenderRefundReceipt formats a refund as fixed-width receipt text.
func RenderRefundReceipt(s *sale.Sale, r *sale.Refund) string {
	var b strings.Builder

	writeCentered(&b, r.Number)
	writeCentered(&b, "REFUND FOR "+s.Number)
	writeCentered(&b, r.CreatedAt.Format("2006-01-02 15:04:05"))
	writeRule(&b)

	for _, line := range r.Items {
		name := productName(s, line.SaleItemID)
		b.WriteString(name)
		b.WriteByte('\n')
		writeAmountLine(&b,
			fmt.Sprintf("  %s returned", line.Quantity.String()),
			"-"+line.Amount.StringFixed(2))
	}

	writeRule(&b)
	writeAmountLine(&b, "REFUNDED", "-"+r.Amount.StringFixed(2))
	if r.PointsReversed > 0 {
		writeAmountLine(&b, "Points reversed", fmt.Sprintf("-%d", r.PointsReversed))
	}
	if r.PointsRestored > 0 {
		writeAmountLine(&b, "Points restored", fmt.Sprintf("%d", r.PointsRestored))
	}

	return b.String()
}

func productName(s *sale.Sale, saleItemID uuid.UUID) string {
	for i := range s.Items {
		if s.Items[i].ID == saleItemID {
			return s.Items[i].ProductName
		}
	}
	return "Item"
}

func writeCentered(b *strings.Builder, text string) {
	pad := (receiptWidth - len(text)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(text)
	b.WriteByte('\n')
}

func writeRule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", receiptWidth))
	b.WriteByte('\n')
}

func writeAmountLine(b *strings.Builder, label, amount string) {
	gap := receiptWidth - len(label) - len(amount)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(amount)
	b.WriteByte('\n')
}
