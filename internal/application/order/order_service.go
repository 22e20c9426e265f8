package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/gasflow/backend/internal/application/stock"
	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/domain/pricing"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// idempotencyTTL is how long a client submission key blocks duplicates.
const idempotencyTTL = 24 * time.Hour

// StockOperations is the slice of the stock manager the order flow needs.
type StockOperations interface {
	ReserveStock(ctx context.Context, ref appstock.StockRef, req appstock.StockRequest, orderRef string) *appstock.StockOperationResult
	DeductStock(ctx context.Context, ref appstock.StockRef, req appstock.StockRequest, orderRef string) *appstock.StockOperationResult
	RestoreStock(ctx context.Context, ref appstock.StockRef, req appstock.StockRequest, orderRef, reason string) *appstock.StockOperationResult
	CheckAvailability(ctx context.Context, ref appstock.StockRef, req appstock.StockRequest) *appstock.AvailabilityResult
}

// ShopDirectory answers whether a shop exists.
type ShopDirectory interface {
	Exists(ctx context.Context, shopID uuid.UUID) (bool, error)
}

// CustomerDirectory answers whether a customer exists.
type CustomerDirectory interface {
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)
}

// IdempotencyStore remembers which submission keys already produced an
// order, so a retried request returns the original instead of a duplicate.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, orderID string, ttl time.Duration) error
}

// OrderService orchestrates the order lifecycle: creation with stock
// reservation, agent transitions with stock deduction, cancellation and
// returns with stock restoration. Stock failures refuse the transition;
// the order and the ledger never end up half-changed.
type OrderService struct {
	orderRepo   order.OrderRepository
	legacyRepo  stock.LegacyGasStockRepository
	stockOps    StockOperations
	prices      pricing.PriceLookup
	shops       ShopDirectory
	customers   CustomerDirectory
	idempotency IdempotencyStore
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo order.OrderRepository,
	legacyRepo stock.LegacyGasStockRepository,
	stockOps StockOperations,
	prices pricing.PriceLookup,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:  orderRepo,
		legacyRepo: legacyRepo,
		stockOps:   stockOps,
		prices:     prices,
		logger:     logger,
	}
}

// SetDirectories sets the shop and customer existence collaborators
func (s *OrderService) SetDirectories(shops ShopDirectory, customers CustomerDirectory) {
	s.shops = shops
	s.customers = customers
}

// SetIdempotencyStore sets the duplicate-submission guard
func (s *OrderService) SetIdempotencyStore(store IdempotencyStore) {
	s.idempotency = store
}

// CreateOrder submits a new order. Paid submissions reserve stock up front;
// when the reservation fails the just-created order is rolled back and the
// failure surfaces to the caller.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*order.Order, error) {
	if s.idempotency != nil && req.IdempotencyKey != "" {
		if existingID, found, err := s.idempotency.Get(ctx, req.IdempotencyKey); err == nil && found {
			if id, parseErr := uuid.Parse(existingID); parseErr == nil {
				return s.orderRepo.FindByID(ctx, id)
			}
		}
	}

	if s.customers != nil {
		exists, err := s.customers.Exists(ctx, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, shared.NewDomainError("NOT_FOUND", "customer not found")
		}
	}

	var params order.NewOrderParams
	var err error
	var legacyDecremented bool

	switch {
	case req.ShopID != nil && req.Details != nil:
		params, err = s.buildShopOrder(ctx, req)
	case req.GasStockID != nil:
		params, legacyDecremented, err = s.buildLegacyOrder(ctx, req)
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "order must reference a shop with details or a legacy gas stock")
	}
	if err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(params)
	if err != nil {
		s.compensateLegacy(ctx, legacyDecremented, req, "order validation failed")
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, newOrder); err != nil {
		s.compensateLegacy(ctx, legacyDecremented, req, "order persistence failed")
		return nil, err
	}

	// Paid submissions hold their cylinders immediately. Legacy stock was
	// already decremented at creation, which is the legacy reservation.
	if newOrder.IsPaid() && newOrder.ShopID != nil {
		result := s.stockOps.ReserveStock(ctx,
			appstock.ShopRef(*newOrder.ShopID),
			stockRequestFor(newOrder),
			newOrder.OrderNumber)
		if !result.Success {
			if delErr := s.orderRepo.Delete(ctx, newOrder.ID); delErr != nil {
				s.logger.Error("failed to roll back order after reservation failure",
					zap.String("order_number", newOrder.OrderNumber),
					zap.Error(delErr))
			}
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "order cancelled: "+result.Message)
		}
	}

	if s.idempotency != nil && req.IdempotencyKey != "" {
		if err := s.idempotency.Set(ctx, req.IdempotencyKey, newOrder.ID.String(), idempotencyTTL); err != nil {
			s.logger.Warn("failed to record idempotency key",
				zap.String("order_number", newOrder.OrderNumber),
				zap.Error(err))
		}
	}

	s.logger.Info("order created",
		zap.String("order_number", newOrder.OrderNumber),
		zap.String("customer_id", newOrder.CustomerID.String()))

	return newOrder, nil
}

func (s *OrderService) buildShopOrder(ctx context.Context, req CreateOrderRequest) (order.NewOrderParams, error) {
	if s.shops != nil {
		exists, err := s.shops.Exists(ctx, *req.ShopID)
		if err != nil {
			return order.NewOrderParams{}, err
		}
		if !exists {
			return order.NewOrderParams{}, shared.NewDomainError("NOT_FOUND", "shop not found")
		}
	}

	details := order.OrderDetails{
		Brand:      req.Details.Brand,
		GasType:    req.Details.GasType,
		Quantity:   req.Details.Quantity,
		UnitPrice:  req.Details.UnitPrice,
		TotalPrice: req.Details.TotalPrice,
	}
	if details.TotalPrice.IsZero() {
		details.TotalPrice = details.UnitPrice.Mul(decimal.NewFromInt(int64(details.Quantity)))
	}

	return order.NewOrderParams{
		CustomerID: req.CustomerID,
		ShopID:     req.ShopID,
		Details:    details,
		Delivery:   deliveryInfoFor(req.Delivery),
		Payment:    paymentInfoFor(req.Payment),
	}, nil
}

// buildLegacyOrder prices the line from the published price table and
// decrements the legacy counter immediately; legacy records have no
// reservation pool. The bool reports whether that decrement happened.
func (s *OrderService) buildLegacyOrder(ctx context.Context, req CreateOrderRequest) (order.NewOrderParams, bool, error) {
	record, err := s.legacyRepo.FindByID(ctx, *req.GasStockID)
	if err != nil {
		return order.NewOrderParams{}, false, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if !record.HasStock(quantity) {
		return order.NewOrderParams{}, false, shared.NewDomainError("INSUFFICIENT_STOCK",
			"insufficient stock available")
	}

	quote, err := s.prices.CurrentPrice(ctx, record.Brand, record.GasType.WeightLabel(), req.Region, quantity)
	if err != nil {
		return order.NewOrderParams{}, false, err
	}
	if quote == nil {
		return order.NewOrderParams{}, false, shared.NewDomainError("NOT_FOUND", "price not available for this gas type")
	}

	if err := record.Claim(quantity); err != nil {
		return order.NewOrderParams{}, false, err
	}
	if err := s.legacyRepo.Save(ctx, record); err != nil {
		return order.NewOrderParams{}, false, err
	}

	totalPrice := quote.FinalPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return order.NewOrderParams{
		CustomerID:    req.CustomerID,
		LegacyStockID: req.GasStockID,
		Details: order.OrderDetails{
			Brand:      record.Brand,
			GasType:    record.GasType.String(),
			Quantity:   quantity,
			UnitPrice:  quote.FinalPrice,
			TotalPrice: totalPrice,
		},
		Delivery: deliveryInfoFor(req.Delivery),
		Payment:  paymentInfoFor(req.Payment),
	}, true, nil
}

func (s *OrderService) compensateLegacy(ctx context.Context, decremented bool, req CreateOrderRequest, reason string) {
	if !decremented || req.GasStockID == nil {
		return
	}
	record, err := s.legacyRepo.FindByID(ctx, *req.GasStockID)
	if err != nil {
		s.logger.Error("failed to load legacy stock for compensation", zap.Error(err))
		return
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if err := record.Restore(quantity); err == nil {
		if err := s.legacyRepo.Save(ctx, record); err != nil {
			s.logger.Error("failed to restore legacy stock", zap.String("reason", reason), zap.Error(err))
		}
	}
}

// ConfirmOrder is the agent-side confirmation. Stock is deducted first and
// a failed deduction refuses the transition, leaving the order Pending.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID uuid.UUID, confirmedBy string) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !o.CanTransitionTo(order.StatusConfirmed) {
		return nil, shared.NewDomainError("INVALID_STATE",
			"order cannot be confirmed, current status: "+o.Status.String())
	}

	result := s.stockOps.DeductStock(ctx, stockRefFor(o), stockRequestFor(o), o.OrderNumber)
	if !result.Success {
		s.logger.Warn("order confirmation refused, stock deduction failed",
			zap.String("order_number", o.OrderNumber),
			zap.String("message", result.Message))
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK", "cannot confirm order: "+result.Message)
	}

	if err := o.TransitionTo(order.StatusConfirmed, confirmedBy, "Order confirmed by sales agent"); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CancelOrder cancels a pending or confirmed order and puts its stock back.
// A failed restore is logged; the cancellation stands.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, customerID uuid.UUID, reason, cancelledBy string) (*order.Order, error) {
	o, err := s.findForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	// Stock only moved if the order is legacy-backed (decremented at
	// creation), was paid (reserved at creation), or reached Confirmed
	// (deducted). An unpaid pending shop order never touched the ledger.
	stockHeld := o.LegacyStockID != nil || o.IsPaid() || o.Status == order.StatusConfirmed

	if err := o.Cancel(reason, cancelledBy); err != nil {
		return nil, err
	}

	if stockHeld {
		restoreReason := "Order cancelled by customer: " + orDefault(reason, "No reason provided")
		result := s.stockOps.RestoreStock(ctx, stockRefFor(o), stockRequestFor(o), o.OrderNumber, restoreReason)
		if !result.Success {
			s.logger.Error("failed to restore stock for cancelled order",
				zap.String("order_number", o.OrderNumber),
				zap.String("message", result.Message))
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// ReturnOrder processes a return: stock goes back and paid orders are
// refunded in full.
func (s *OrderService) ReturnOrder(ctx context.Context, orderID uuid.UUID, reason, updatedBy string) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.MarkReturned(orDefault(reason, "Order returned"), updatedBy); err != nil {
		return nil, err
	}

	result := s.stockOps.RestoreStock(ctx, stockRefFor(o), stockRequestFor(o), o.OrderNumber,
		"Order returned: "+orDefault(reason, "No reason provided"))
	if !result.Success {
		s.logger.Error("failed to restore stock for returned order",
			zap.String("order_number", o.OrderNumber),
			zap.String("message", result.Message))
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus performs the remaining agent transitions (Processing, Out for
// Delivery, Delivered) with an optional note.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req UpdateStatusRequest) (*order.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch req.Status {
	case order.StatusDelivered:
		if err := o.MarkDelivered(req.UpdatedBy); err != nil {
			return nil, err
		}
	case order.StatusConfirmed:
		return nil, shared.NewDomainError("INVALID_INPUT", "use the confirm operation to confirm orders")
	case order.StatusCancelled:
		return nil, shared.NewDomainError("INVALID_INPUT", "use the cancel operation to cancel orders")
	case order.StatusReturned:
		return nil, shared.NewDomainError("INVALID_INPUT", "use the return operation to return orders")
	default:
		if err := o.TransitionTo(req.Status, req.UpdatedBy, req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder loads one order scoped to its customer
func (s *OrderService) GetOrder(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	return s.findForCustomer(ctx, orderID, customerID)
}

// ListOrders pages a customer's orders with an optional status filter
func (s *OrderService) ListOrders(ctx context.Context, customerID uuid.UUID, filter order.ListFilter) (*OrderListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 10
	}

	orders, total, err := s.orderRepo.FindByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &OrderListResponse{
		Orders:      orders,
		CurrentPage: filter.Page,
		TotalPages:  totalPages,
		TotalOrders: total,
		HasNextPage: filter.Page < totalPages,
		HasPrevPage: filter.Page > 1,
	}, nil
}

// TrackOrder is the public tracking view keyed by order number
func (s *OrderService) TrackOrder(ctx context.Context, orderNumber string) (*TrackingResponse, error) {
	o, err := s.orderRepo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}

	history := make([]order.StatusHistoryEntry, len(o.StatusHistory))
	copy(history, o.StatusHistory)
	for i := 1; i < len(history); i++ {
		for j := i; j > 0 && history[j].Timestamp.Before(history[j-1].Timestamp); j-- {
			history[j], history[j-1] = history[j-1], history[j]
		}
	}

	return &TrackingResponse{
		OrderNumber:       o.OrderNumber,
		Status:            o.Status,
		Progress:          o.Progress(),
		StatusHistory:     history,
		EstimatedDelivery: o.EstimatedDeliveryTime,
		ActualDelivery:    o.ActualDeliveryTime,
		Details:           o.Details,
	}, nil
}

// RateOrder records a customer's one-shot rating of a delivered order
func (s *OrderService) RateOrder(ctx context.Context, orderID, customerID uuid.UUID, req RateOrderRequest) (*order.Order, error) {
	o, err := s.findForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}

	if err := o.Rate(req.Rating, req.Review); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetSummary bundles a customer's order counters with their recent orders
func (s *OrderService) GetSummary(ctx context.Context, customerID uuid.UUID) (*SummaryResponse, error) {
	summary, err := s.orderRepo.Summarize(ctx, customerID)
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.FindRecentByCustomer(ctx, customerID, 5)
	if err != nil {
		return nil, err
	}
	return &SummaryResponse{Summary: summary, RecentOrders: recent}, nil
}

func (s *OrderService) findForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
	o, err := s.orderRepo.FindByIDForCustomer(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func stockRefFor(o *order.Order) appstock.StockRef {
	if o.ShopID != nil {
		return appstock.ShopRef(*o.ShopID)
	}
	return appstock.LegacyRef(*o.LegacyStockID)
}

func stockRequestFor(o *order.Order) appstock.StockRequest {
	return appstock.StockRequest{
		Brand:    o.Details.Brand,
		GasType:  o.Details.GasType,
		Quantity: o.Details.Quantity,
	}
}

func deliveryInfoFor(req DeliveryRequest) order.DeliveryInfo {
	return order.DeliveryInfo{
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		PreferredDate: req.PreferredDate,
		Instructions:  req.Instructions,
	}
}

func paymentInfoFor(req PaymentRequest) order.PaymentInfo {
	return order.PaymentInfo{
		Method:        req.Method,
		Status:        req.Status,
		TransactionID: req.TransactionID,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
