package checkout

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/sale"
	"github.com/pos/backend/internal/domain/shared"
)

// ReceiptPrinter prints the register copy of a receipt. Implementations
// live in infrastructure; a nil printer disables printing.
type ReceiptPrinter interface {
	PrintSaleReceipt(ctx context.Context, s *sale.Sale) error
}

// CashDrawer pops the register drawer for cash tenders.
type CashDrawer interface {
	Open(ctx context.Context) error
}

// CheckoutService orchestrates sale creation and voiding.
// All commercial writes for one checkout happen in a single transaction;
// audit records, receipt notifications and register peripherals run
// after commit and never fail the sale.
type CheckoutService struct {
	sales         sale.Repository
	adjuster      *inventory.Adjuster
	ledger        *loyalty.Ledger
	programs      loyalty.ProgramProvider
	uow           shared.UnitOfWork
	idempotency   shared.IdempotencyStore
	idemConfig    shared.IdempotencyConfig
	auditor       *audit.Recorder
	notifications notification.Repository
	printer       ReceiptPrinter
	drawer        CashDrawer
	logger        *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	sales sale.Repository,
	adjuster *inventory.Adjuster,
	ledger *loyalty.Ledger,
	programs loyalty.ProgramProvider,
	uow shared.UnitOfWork,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	auditor *audit.Recorder,
	notifications notification.Repository,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		sales:         sales,
		adjuster:      adjuster,
		ledger:        ledger,
		programs:      programs,
		uow:           uow,
		idempotency:   idempotency,
		idemConfig:    idemConfig,
		auditor:       auditor,
		notifications: notifications,
		logger:        logger,
	}
}

// WithPeripherals attaches the register printer and cash drawer. Both are
// optional; registers without hardware run without them.
func (s *CheckoutService) WithPeripherals(printer ReceiptPrinter, drawer CashDrawer) *CheckoutService {
	s.printer = printer
	s.drawer = drawer
	return s
}

// CreateSale processes a checkout: prices the cart, decrements stock,
// applies loyalty earn and redemption, and commits the sale atomically.
// A request replaying an already committed idempotency key returns the
// original sale unchanged.
func (s *CheckoutService) CreateSale(ctx context.Context, actor string, req CreateSaleRequest) (*SaleResponse, error) {
	// Fast path: key already marked in the idempotency store
	if s.idemConfig.Enabled {
		processed, err := s.idempotency.IsProcessed(ctx, req.IdempotencyKey)
		if err != nil {
			s.logger.Warn("idempotency store lookup failed, falling back to database",
				zap.String("idempotency_key", req.IdempotencyKey),
				zap.Error(err),
			)
		} else if processed {
			if existing, err := s.sales.FindByIdempotencyKey(ctx, req.IdempotencyKey); err == nil {
				response := ToSaleResponse(existing, true)
				return &response, nil
			}
		}
	}

	// Authoritative replay check against the committed sales
	existing, err := s.sales.FindByIdempotencyKey(ctx, req.IdempotencyKey)
	if err == nil {
		response := ToSaleResponse(existing, true)
		return &response, nil
	}
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrSaleNotFound) {
		return nil, err
	}

	program, err := s.programs.ActiveProgram(ctx)
	if err != nil {
		return nil, err
	}

	cart, err := sale.PriceCart(toCartLines(req.Lines), req.OrderDiscount, req.OrderTaxRate)
	if err != nil {
		return nil, err
	}

	redeemPoints := req.RedeemPoints
	if redeemPoints < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Redeem points cannot be negative")
	}
	if redeemPoints > 0 {
		if req.CustomerID == nil {
			return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Point redemption requires a customer")
		}
		redeemPoints = program.CapRedemption(redeemPoints, cart.Subtotal)
		if err := cart.ApplyRedemptionDiscount(program.RedemptionValue(redeemPoints)); err != nil {
			return nil, err
		}
	}

	number, err := s.sales.NextNumber(ctx)
	if err != nil {
		return nil, err
	}

	newSale, err := sale.NewSale(number, req.IdempotencyKey, req.CustomerID, req.PaymentMethod, cart)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		newSale.SetNotes(req.Notes)
	}

	err = s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		for _, line := range cart.Lines {
			if _, err := s.adjuster.Apply(txCtx, line.ProductID, line.Quantity.Neg(), inventory.MovementTypeSale, &newSale.ID, ""); err != nil {
				return err
			}
		}

		var earned int64
		if newSale.CustomerID != nil {
			if redeemPoints > 0 {
				if _, err := s.ledger.Apply(txCtx, *newSale.CustomerID, -redeemPoints, loyalty.TransactionTypeRedeem, &newSale.ID); err != nil {
					return err
				}
			}
			earned = program.PointsEarned(newSale.GetTotalMoney())
			if earned > 0 {
				if _, err := s.ledger.Apply(txCtx, *newSale.CustomerID, earned, loyalty.TransactionTypeEarn, &newSale.ID); err != nil {
					return err
				}
			}
		}
		newSale.SetLoyalty(earned, redeemPoints)

		return s.sales.Create(txCtx, newSale)
	})
	if err != nil {
		// A concurrent request with the same key may have won the unique
		// index race; the committed sale is the answer either way.
		if committed, ferr := s.sales.FindByIdempotencyKey(ctx, req.IdempotencyKey); ferr == nil {
			response := ToSaleResponse(committed, true)
			return &response, nil
		}
		return nil, err
	}

	s.afterSaleCommitted(ctx, actor, newSale, req.ReceiptRecipient)

	response := ToSaleResponse(newSale, false)
	return &response, nil
}

// GetSale retrieves a sale by ID
func (s *CheckoutService) GetSale(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	found, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(found, false)
	return &response, nil
}

// VoidSale voids a paid sale before any refund was taken against it:
// stock returns in full and all loyalty movements are reversed.
func (s *CheckoutService) VoidSale(ctx context.Context, actor string, saleID uuid.UUID, req VoidSaleRequest) (*SaleResponse, error) {
	var voided *sale.Sale
	err := s.uow.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.sales.FindByIDForUpdate(txCtx, saleID)
		if err != nil {
			return err
		}
		if err := current.Void(req.Reason); err != nil {
			return err
		}

		for idx := range current.Items {
			item := &current.Items[idx]
			if _, err := s.adjuster.Apply(txCtx, item.ProductID, item.Quantity, inventory.MovementTypeAdjustment, &current.ID, "sale voided"); err != nil {
				return err
			}
		}

		if current.CustomerID != nil {
			if current.PointsEarned > 0 {
				if _, err := s.ledger.Apply(txCtx, *current.CustomerID, -current.PointsEarned, loyalty.TransactionTypeReverse, &current.ID); err != nil {
					return err
				}
			}
			if current.PointsRedeemed > 0 {
				if _, err := s.ledger.Apply(txCtx, *current.CustomerID, current.PointsRedeemed, loyalty.TransactionTypeReverse, &current.ID); err != nil {
					return err
				}
			}
		}

		if err := s.sales.Update(txCtx, current); err != nil {
			return err
		}
		voided = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, actor, audit.ActionSaleVoided, audit.EntitySale, voided.ID, map[string]any{
		"number": voided.Number,
		"reason": req.Reason,
		"total":  voided.Total.String(),
	})

	response := ToSaleResponse(voided, false)
	return &response, nil
}

// afterSaleCommitted handles the post-commit side effects of a checkout:
// idempotency marker, audit record, receipt enqueue. Failures here are
// logged and never surfaced, the sale is already committed.
func (s *CheckoutService) afterSaleCommitted(ctx context.Context, actor string, committed *sale.Sale, receiptRecipient string) {
	if s.idemConfig.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, committed.IdempotencyKey, s.idemConfig.TTL); err != nil {
			s.logger.Warn("failed to mark idempotency key as processed",
				zap.String("idempotency_key", committed.IdempotencyKey),
				zap.Error(err),
			)
		}
	}

	s.auditor.Record(ctx, actor, audit.ActionSaleCreated, audit.EntitySale, committed.ID, map[string]any{
		"number":          committed.Number,
		"total":           committed.Total.String(),
		"payment_method":  committed.PaymentMethod,
		"points_earned":   committed.PointsEarned,
		"points_redeemed": committed.PointsRedeemed,
		"item_count":      len(committed.Items),
	})

	if receiptRecipient != "" {
		s.enqueueReceipt(ctx, committed, receiptRecipient)
	}

	if s.printer != nil {
		if err := s.printer.PrintSaleReceipt(ctx, committed); err != nil {
			s.logger.Warn("receipt print failed",
				zap.String("sale_number", committed.Number),
				zap.Error(err),
			)
		}
	}
	if s.drawer != nil && committed.PaymentMethod == sale.PaymentMethodCash {
		if err := s.drawer.Open(ctx); err != nil {
			s.logger.Warn("cash drawer open failed", zap.Error(err))
		}
	}
}

func (s *CheckoutService) enqueueReceipt(ctx context.Context, committed *sale.Sale, recipient string) {
	payload, err := json.Marshal(ToSaleResponse(committed, false))
	if err != nil {
		s.logger.Error("failed to build receipt payload",
			zap.String("sale_number", committed.Number),
			zap.Error(err),
		)
		return
	}
	receipt := notification.New(notification.KindReceipt, recipient, &committed.ID, payload)
	if err := s.notifications.Create(ctx, receipt); err != nil {
		s.logger.Error("failed to enqueue receipt notification",
			zap.String("sale_number", committed.Number),
			zap.Error(err),
		)
	}
}

func toCartLines(inputs []CreateSaleLineInput) []sale.CartLine {
	lines := make([]sale.CartLine, 0, len(inputs))
	for _, input := range inputs {
		lines = append(lines, sale.CartLine{
			ProductID:    input.ProductID,
			ProductName:  input.ProductName,
			Quantity:     input.Quantity,
			UnitPrice:    input.UnitPrice,
			LineDiscount: input.LineDiscount,
			LineTaxRate:  input.LineTaxRate,
		})
	}
	return lines
}
