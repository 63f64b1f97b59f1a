// Package printing provides the receipt printer and cash drawer
// capabilities used at the register. Hardware integrations implement
// ReceiptPrinter and CashDrawer; the log-backed implementations here are
// the default for registers without attached peripherals.
package printing

import (
	"context"

	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/sale"
)

// ReceiptPrinter prints a rendered receipt for a completed sale or refund.
// Printing is fire-and-forget: failures are reported to the caller but
// never block or roll back the transaction that produced the document.
type ReceiptPrinter interface {
	PrintSaleReceipt(ctx context.Context, s *sale.Sale) error
	PrintRefundReceipt(ctx context.Context, s *sale.Sale, r *sale.Refund) error
}

// CashDrawer opens the register's cash drawer for cash tenders.
type CashDrawer interface {
	Open(ctx context.Context) error
}

// LogPrinter writes receipts to the application log instead of a physical
// printer. It doubles as the cash drawer for registers without one.
type LogPrinter struct {
	logger *zap.Logger
}

// NewLogPrinter creates a LogPrinter.
func NewLogPrinter(logger *zap.Logger) *LogPrinter {
	return &LogPrinter{logger: logger.Named("printer")}
}

func (p *LogPrinter) PrintSaleReceipt(ctx context.Context, s *sale.Sale) error {
	p.logger.Info("printing sale receipt",
		zap.String("sale_id", s.ID.String()),
		zap.String("number", s.Number),
		zap.String("receipt", RenderSaleReceipt(s)),
	)
	return nil
}

func (p *LogPrinter) PrintRefundReceipt(ctx context.Context, s *sale.Sale, r *sale.Refund) error {
	p.logger.Info("printing refund receipt",
		zap.String("sale_id", s.ID.String()),
		zap.String("refund_id", r.ID.String()),
		zap.String("number", r.Number),
		zap.String("receipt", RenderRefundReceipt(s, r)),
	)
	return nil
}

func (p *LogPrinter) Open(ctx context.Context) error {
	p.logger.Info("opening cash drawer")
	return nil
}

var (
	_ ReceiptPrinter = (*LogPrinter)(nil)
	_ CashDrawer     = (*LogPrinter)(nil)
)
