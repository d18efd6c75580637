package service

import (
	"context"
	"fmt"
	"time"

	"lorryops/internal/dates"
	"lorryops/internal/ledger"
	"lorryops/internal/model"
	"lorryops/internal/money"
	"lorryops/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	idemRepo    repository.IdempotencyRepository
	maxProbes   int
	logger      zerolog.Logger
}

// NewOrderService creates a new order service. maxProbes bounds the
// adjustment-code candidate search.
func NewOrderService(
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	idemRepo repository.IdempotencyRepository,
	maxProbes int,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		idemRepo:    idemRepo,
		maxProbes:   maxProbes,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order with its line items.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		Code:              req.Code,
		Type:              req.Type,
		Status:            model.OrderStatusNew,
		CustomerID:        req.CustomerID,
		Discount:          money.ToDecimal(req.Discount),
		DeliveryFee:       money.ToDecimal(req.DeliveryFee),
		ReturnDeliveryFee: money.ToDecimal(req.ReturnDeliveryFee),
		PenaltyFee:        money.ToDecimal(req.PenaltyFee),
		PaidAmount:        money.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// Delivery dates arrive as free text; no date and unparsable text are
	// treated identically.
	if parsed, ok := dates.ParseRelaxed(req.DeliveryDate); ok {
		order.DeliveryDate = &parsed
	}

	subtotal := decimal.Zero
	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		unitPrice := money.ToDecimal(item.UnitPrice)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).RoundBank(money.Scale)
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   lineTotal,
		}
		subtotal = subtotal.Add(lineTotal)
	}

	order.Subtotal = subtotal.RoundBank(money.Scale)
	order.Total = order.Subtotal.
		Sub(order.Discount).
		Add(order.DeliveryFee).
		Add(order.ReturnDeliveryFee).
		Add(order.PenaltyFee).
		RoundBank(money.Scale)
	order.Balance = order.Total

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = items

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("code", order.Code).
		Int("item_count", len(items)).
		Msg("order created successfully")

	return order, nil
}

// GetByID retrieves an order by its ID with items and payments.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// RecordPayment posts a payment and reconciles the order's derived totals
// inside a single transaction, holding the order's row lock so the payment
// set is a consistent snapshot.
func (s *orderService) RecordPayment(ctx context.Context, orderID uuid.UUID, amount decimal.Decimal, idempotencyKey string) (*model.PaymentActionResult, error) {
	amount = money.ToDecimal(amount)
	if !amount.IsPositive() {
		return nil, model.ErrInvalidAmount
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	fresh, err := s.registerKey(ctx, tx, idempotencyKey, orderID, model.ActionRecordPayment)
	if err != nil {
		return nil, err
	}
	if !fresh {
		// Duplicate submission: surface the state left by the first
		// execution without re-applying the payment.
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		order, loadErr := s.orderRepo.GetByID(ctx, orderID)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load order for duplicate response: %w", loadErr)
		}
		return &model.PaymentActionResult{Order: order, Duplicate: true}, nil
	}

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	payment := &model.Payment{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Amount:    amount,
		Status:    model.PaymentStatusPosted,
		CreatedAt: time.Now(),
	}

	if err = s.paymentRepo.Create(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err = s.reconcile(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", payment.ID.String()).
		Str("amount", amount.StringFixed(2)).
		Str("paid_amount", order.PaidAmount.StringFixed(2)).
		Str("balance", order.Balance.StringFixed(2)).
		Msg("payment recorded")

	return &model.PaymentActionResult{Order: order}, nil
}

// VoidPayment voids a POSTED payment and reconciles the order's totals.
func (s *orderService) VoidPayment(ctx context.Context, orderID, paymentID uuid.UUID, idempotencyKey string) (*model.PaymentActionResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to void payment: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	fresh, err := s.registerKey(ctx, tx, idempotencyKey, orderID, model.ActionVoidPayment)
	if err != nil {
		return nil, err
	}
	if !fresh {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		order, loadErr := s.orderRepo.GetByID(ctx, orderID)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load order for duplicate response: %w", loadErr)
		}
		return &model.PaymentActionResult{Order: order, Duplicate: true}, nil
	}

	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to void payment: %w", err)
	}
	if order == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	voided, err := s.paymentRepo.Void(ctx, tx, orderID, paymentID, time.Now())
	if err != nil {
		return nil, err
	}
	if !voided {
		err = model.ErrPaymentNotVoidable
		return nil, err
	}

	if err = s.reconcile(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to void payment: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("payment_id", paymentID.String()).
		Str("paid_amount", order.PaidAmount.StringFixed(2)).
		Msg("payment voided")

	return &model.PaymentActionResult{Order: order}, nil
}

// Cancel marks the order cancelled and spawns an adjustment order.
func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string) (*model.AdjustmentResult, error) {
	return s.adjust(ctx, orderID, reason, idempotencyKey, model.OrderStatusCancelled, model.ActionCancelOrder)
}

// MarkReturned marks a rental order returned and spawns an adjustment order.
func (s *orderService) MarkReturned(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string) (*model.AdjustmentResult, error) {
	return s.adjust(ctx, orderID, reason, idempotencyKey, model.OrderStatusReturned, model.ActionReturnOrder)
}

// adjust transitions the parent order to a terminal state and creates the
// adjustment child, probing candidate codes until the unique index on
// orders(code) accepts one.
func (s *orderService) adjust(ctx context.Context, orderID uuid.UUID, reason, idempotencyKey string, status model.OrderStatus, action string) (*model.AdjustmentResult, error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust order: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	fresh, err := s.registerKey(ctx, tx, idempotencyKey, orderID, action)
	if err != nil {
		return nil, err
	}
	if !fresh {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		existing, loadErr := s.orderRepo.GetByIdempotencyKey(ctx, idempotencyKey)
		if loadErr != nil {
			return nil, fmt.Errorf("failed to load adjustment for duplicate response: %w", loadErr)
		}
		return &model.AdjustmentResult{Adjustment: existing, Duplicate: true}, nil
	}

	parent, err := s.orderRepo.GetByIDForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust order: %w", err)
	}
	if parent == nil {
		err = model.ErrOrderNotFound
		return nil, err
	}

	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}

	if err = s.orderRepo.UpdateStatus(ctx, tx, parent.ID, status, reasonPtr); err != nil {
		return nil, err
	}

	adjustment, err := s.createAdjustment(ctx, tx, parent, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", parent.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to adjust order: %w", err)
	}

	s.logger.Info().
		Str("order_id", parent.ID.String()).
		Str("adjustment_id", adjustment.ID.String()).
		Str("adjustment_code", adjustment.Code).
		Str("status", string(status)).
		Msg("adjustment order created")

	return &model.AdjustmentResult{Adjustment: adjustment}, nil
}

// createAdjustment builds the reversal child order and probes candidate codes
// derived from the parent's code. The insert itself is the authoritative
// existence check: a candidate rejected by the unique index moves the probe
// to the next suffix.
func (s *orderService) createAdjustment(ctx context.Context, tx pgx.Tx, parent *model.Order, idempotencyKey string) (*model.Order, error) {
	now := time.Now()

	var keyPtr *string
	if idempotencyKey != "" {
		keyPtr = &idempotencyKey
	}

	adjustment := &model.Order{
		ID:                uuid.New(),
		Type:              parent.Type,
		Status:            model.OrderStatusNew,
		CustomerID:        parent.CustomerID,
		Subtotal:          parent.Subtotal.Neg(),
		Discount:          parent.Discount.Neg(),
		DeliveryFee:       parent.DeliveryFee.Neg(),
		ReturnDeliveryFee: parent.ReturnDeliveryFee.Neg(),
		PenaltyFee:        parent.PenaltyFee.Neg(),
		Total:             parent.Total.Neg(),
		PaidAmount:        money.Zero,
		Balance:           parent.Total.Neg(),
		DeliveryDate:      parent.DeliveryDate,
		ParentID:          &parent.ID,
		IdempotencyKey:    keyPtr,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	for n := 0; n < s.maxProbes; n++ {
		adjustment.Code = adjustmentCode(parent.Code, n)

		created, err := s.orderRepo.TryCreateAdjustment(ctx, tx, adjustment)
		if err != nil {
			return nil, err
		}
		if created {
			return adjustment, nil
		}

		s.logger.Debug().
			Str("candidate", adjustment.Code).
			Int("probe", n).
			Msg("adjustment code taken, probing next")
	}

	s.logger.Error().
		Str("parent_code", parent.Code).
		Int("max_probes", s.maxProbes).
		Msg("exhausted adjustment code candidates")

	return nil, model.ErrAdjustmentExhausted
}

// adjustmentCode derives the nth candidate code for a parent code: the first
// cancellation of an order always gets the bare -C suffix, later ones get
// -C-1, -C-2, and so on.
func adjustmentCode(parentCode string, n int) string {
	if n == 0 {
		return parentCode + "-C"
	}
	return fmt.Sprintf("%s-C-%d", parentCode, n)
}

// registerKey runs the idempotency guard inside the action's transaction. An
// empty key executes unconditionally; otherwise the store's key-uniqueness
// constraint decides whether this call is the first execution.
func (s *orderService) registerKey(ctx context.Context, tx pgx.Tx, key string, orderID uuid.UUID, action string) (bool, error) {
	if key == "" {
		return true, nil
	}
	if len(key) > model.MaxIdempotencyKeyLength {
		return false, model.ErrKeyTooLong
	}

	return s.idemRepo.Register(ctx, tx, &model.IdempotentRequest{
		Key:       key,
		OrderID:   orderID,
		Action:    action,
		CreatedAt: time.Now(),
	})
}

// reconcile reloads the payment snapshot, recomputes the derived totals and
// persists them. Must run with the order's row lock held.
func (s *orderService) reconcile(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	payments, err := s.paymentRepo.ListByOrder(ctx, tx, order.ID)
	if err != nil {
		return err
	}
	order.Payments = payments

	ledger.Recompute(order)

	return s.orderRepo.UpdateTotals(ctx, tx, order)
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return fmt.Errorf("order request is nil")
	}

	if req.Code == "" {
		return fmt.Errorf("order code is required")
	}

	if req.Type != model.OrderTypeOutright && req.Type != model.OrderTypeRental {
		return fmt.Errorf("invalid order type: %s", req.Type)
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.Description == "" {
			return fmt.Errorf("item %d: description is required", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
