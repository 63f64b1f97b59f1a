package checkout

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/sale"
	"github.com/pos/backend/internal/domain/shared"
)

// RefundService orchestrates refund processing against committed sales.
// The sale row is locked for the duration of the transaction so concurrent
// refunds against the same sale serialize and over-refunds are impossible.
type RefundService struct {
	sales         sale.Repository
	refunds       sale.RefundRepository
	adjuster      *inventory.Adjuster
	ledger        *loyalty.Ledger
	programs      loyalty.ProgramProvider
	uow           shared.UnitOfWork
	auditor       *audit.Recorder
	notifications notification.Repository
	printer       RefundReceiptPrinter
	logger        *zap.Logger
}

// RefundReceiptPrinter prints the register copy of a refund receipt.
type RefundReceiptPrinter interface {
	PrintRefundReceipt(ctx context.Context, s *sale.Sale, r *sale.Refund) error
}

// NewRefundService creates a new RefundService
func NewRefundService(
	sales sale.Repository,
	refunds sale.RefundRepository,
	adjuster *inventory.Adjuster,
	ledger *loyalty.Ledger,
	programs loyalty.ProgramProvider,
	uow shared.UnitOfWork,
	auditor *audit.Recorder,
	notifications notification.Repository,
	logger *zap.Logger,
) *RefundService {
	return &RefundService{
		sales:         sales,
		refunds:       refunds,
		adjuster:      adjuster,
		ledger:        ledger,
		programs:      programs,
		uow:           uow,
		auditor:       auditor,
		notifications: notifications,
		logger:        logger,
	}
}

// WithPrinter attaches the register printer. Optional.
func (s *RefundService) WithPrinter(printer RefundReceiptPrinter) *RefundService {
	s.printer = printer
	return s
}

// ProcessRefund applies a refund batch to a sale: validates and advances
// the per-item returned quantities, restores stock, reverses loyalty
// points proportionally, and commits the refund record atomically.
func (s *RefundService) ProcessRefund(ctx context.Context, actor string, saleID uuid.UUID, req ProcessRefundRequest) (*RefundResponse, error) {
	program, err := s.programs.ActiveProgram(ctx)
	if err != nil {
		return nil, err
	}

	var (
		refund  *sale.Refund
		current *sale.Sale
	)
	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		current, err = s.sales.FindByIDForUpdate(txCtx, saleID)
		if err != nil {
			return err
		}

		lines := make([]sale.RefundLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			lines = append(lines, sale.RefundLine{
				SaleItemID: line.SaleItemID,
				Quantity:   line.Quantity,
				Reason:     line.Reason,
			})
		}

		refundedLines, err := current.ApplyRefund(lines)
		if err != nil {
			return err
		}

		for _, line := range refundedLines {
			if _, err := s.adjuster.Apply(txCtx, line.ProductID, line.Quantity, inventory.MovementTypeRefund, &current.ID, line.Reason); err != nil {
				return err
			}
		}

		number, err := s.refunds.NextNumber(txCtx)
		if err != nil {
			return err
		}
		refund, err = sale.NewRefund(current.ID, number, actor, refundedLines)
		if err != nil {
			return err
		}

		if current.CustomerID != nil {
			reversed, restored, err := s.applyLoyaltyReversal(txCtx, program, current)
			if err != nil {
				return err
			}
			refund.SetLoyaltyReversal(reversed, restored)
		}

		if err := s.refunds.Create(txCtx, refund); err != nil {
			return err
		}
		return s.sales.Update(txCtx, current)
	})
	if err != nil {
		return nil, err
	}

	s.afterRefundCommitted(ctx, actor, current, refund, req.ReceiptRecipient)

	response := ToRefundResponse(refund, current.Status)
	return &response, nil
}

// ListRefunds returns the refunds committed against a sale
func (s *RefundService) ListRefunds(ctx context.Context, saleID uuid.UUID) ([]RefundResponse, error) {
	current, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	found, err := s.refunds.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	responses := make([]RefundResponse, 0, len(found))
	for idx := range found {
		responses = append(responses, ToRefundResponse(&found[idx], current.Status))
	}
	return responses, nil
}

// applyLoyaltyReversal brings the cumulative point reversals in line with
// the sale's cumulative refunded amount. Working from cumulative targets
// keeps repeated partial refunds from ever reversing more than was earned
// or restoring more than was redeemed, regardless of rounding direction.
func (s *RefundService) applyLoyaltyReversal(ctx context.Context, program loyalty.Program, current *sale.Sale) (int64, int64, error) {
	priorReversed, priorRestored := int64(0), int64(0)
	existing, err := s.refunds.FindBySale(ctx, current.ID)
	if err != nil {
		return 0, 0, err
	}
	for idx := range existing {
		priorReversed += existing[idx].PointsReversed
		priorRestored += existing[idx].PointsRestored
	}

	targetReversed, err := program.ProportionalReversal(current.PointsEarned, current.RefundedAmount, current.Total)
	if err != nil {
		return 0, 0, err
	}
	targetRestored, err := program.ProportionalReversal(current.PointsRedeemed, current.RefundedAmount, current.Total)
	if err != nil {
		return 0, 0, err
	}

	reversed := targetReversed - priorReversed
	restored := targetRestored - priorRestored

	if reversed > 0 {
		// Earned points already spent elsewhere cannot be clawed back
		// below zero; reverse only what the account still holds.
		balance, err := s.ledger.BalanceOf(ctx, *current.CustomerID)
		if err != nil {
			return 0, 0, err
		}
		if reversed > balance {
			s.logger.Warn("loyalty reversal clamped to available balance",
				zap.String("sale_number", current.Number),
				zap.Int64("requested", reversed),
				zap.Int64("balance", balance),
			)
			reversed = balance
		}
		if reversed > 0 {
			if _, err := s.ledger.Apply(ctx, *current.CustomerID, -reversed, loyalty.TransactionTypeReverse, &current.ID); err != nil {
				return 0, 0, err
			}
		}
	}
	if restored > 0 {
		if _, err := s.ledger.Apply(ctx, *current.CustomerID, restored, loyalty.TransactionTypeReverse, &current.ID); err != nil {
			return 0, 0, err
		}
	}

	return reversed, restored, nil
}

func (s *RefundService) afterRefundCommitted(ctx context.Context, actor string, current *sale.Sale, refund *sale.Refund, receiptRecipient string) {
	s.auditor.Record(ctx, actor, audit.ActionRefundProcessed, audit.EntityRefund, refund.ID, map[string]any{
		"sale_number":     current.Number,
		"refund_number":   refund.Number,
		"amount":          refund.Amount.String(),
		"points_reversed": refund.PointsReversed,
		"points_restored": refund.PointsRestored,
		"sale_status":     string(current.Status),
	})

	if s.printer != nil {
		if err := s.printer.PrintRefundReceipt(ctx, current, refund); err != nil {
			s.logger.Warn("refund receipt print failed",
				zap.String("refund_number", refund.Number),
				zap.Error(err),
			)
		}
	}

	if receiptRecipient == "" {
		return
	}
	payload, err := json.Marshal(ToRefundResponse(refund, current.Status))
	if err != nil {
		s.logger.Error("failed to build refund receipt payload",
			zap.String("refund_number", refund.Number),
			zap.Error(err),
		)
		return
	}
	receipt := notification.New(notification.KindReceipt, receiptRecipient, &current.ID, payload)
	if err := s.notifications.Create(ctx, receipt); err != nil {
		s.logger.Error("failed to enqueue refund receipt notification",
			zap.String("refund_number", refund.Number),
			zap.Error(err),
		)
	}
}
