package order

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusConfirmed      OrderStatus = "Confirmed"
	StatusProcessing     OrderStatus = "Processing"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
	StatusReturned       OrderStatus = "Returned"
)

// IsValid checks if the status is a known OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusOutForDelivery,
		StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case StatusDelivered, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// validTransitions is the forward state machine. Returned is additionally
// reachable from every non-terminal state.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusProcessing, StatusCancelled},
	StatusProcessing:     {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
}

// deliverySteps is the canonical happy-path sequence used for tracking
// progress percentages.
var deliverySteps = []OrderStatus{
	StatusPending, StatusConfirmed, StatusProcessing, StatusOutForDelivery, StatusDelivered,
}

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentOnline         PaymentMethod = "Online Payment"
	PaymentBankTransfer   PaymentMethod = "Bank Transfer"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentOnline, PaymentBankTransfer:
		return true
	}
	return false
}

// PaymentStatus is the settlement state of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "Pending"
	PaymentStatusPaid     PaymentStatus = "Paid"
	PaymentStatusFailed   PaymentStatus = "Failed"
	PaymentStatusRefunded PaymentStatus = "Refunded"
)

// OrderDetails captures what was ordered and at what price.
type OrderDetails struct {
	Brand      stock.GasBrand  `gorm:"column:gas_brand;size:50;not null" json:"gas_brand"`
	GasType    string          `gorm:"column:gas_type;size:20;not null" json:"gas_type"`
	Quantity   int             `gorm:"column:quantity;not null;default:1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null" json:"total_price"`
}

// DeliveryInfo captures where and how to deliver.
type DeliveryInfo struct {
	Address       string    `gorm:"column:delivery_address;size:500;not null" json:"address"`
	ContactNumber string    `gorm:"column:contact_number;size:30;not null" json:"contact_number"`
	PreferredDate time.Time `gorm:"column:preferred_delivery_date;not null" json:"preferred_date"`
	Instructions  string    `gorm:"column:delivery_instructions;size:500" json:"instructions,omitempty"`
}

// PaymentInfo tracks the payment state of the order.
type PaymentInfo struct {
	Method        PaymentMethod `gorm:"column:payment_method;size:30;not null" json:"method"`
	Status        PaymentStatus `gorm:"column:payment_status;size:20;not null" json:"status"`
	TransactionID string        `gorm:"column:transaction_id;size:100" json:"transaction_id,omitempty"`
	CompletedAt   *time.Time    `gorm:"column:payment_completed_at" json:"completed_at,omitempty"`
}

// CustomerRating is the one-shot post-delivery rating.
type CustomerRating struct {
	Rating  int        `gorm:"column:rating" json:"rating,omitempty"`
	Review  string     `gorm:"column:review;size:1000" json:"review,omitempty"`
	RatedAt *time.Time `gorm:"column:rated_at" json:"rated_at,omitempty"`
}

// StatusHistoryEntry is one append-only record of a status transition.
type StatusHistoryEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"size:30;not null" json:"status"`
	Timestamp time.Time   `gorm:"not null" json:"timestamp"`
	UpdatedBy string      `gorm:"size:255" json:"updated_by,omitempty"`
	Notes     string      `gorm:"size:500" json:"notes,omitempty"`
}

// TableName returns the table name for StatusHistoryEntry
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// Order is the aggregate root for a customer's gas order. Stock side effects
// live in the application layer; the aggregate only guards its own state
// machine and payment bookkeeping.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber   string     `gorm:"size:30;not null;uniqueIndex" json:"order_number"`
	CustomerID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_orders_customer_status,priority:1" json:"customer_id"`
	ShopID        *uuid.UUID `gorm:"type:uuid;index" json:"shop_id,omitempty"`
	LegacyStockID *uuid.UUID `gorm:"type:uuid" json:"legacy_stock_id,omitempty"`

	Details  OrderDetails `gorm:"embedded" json:"details"`
	Delivery DeliveryInfo `gorm:"embedded" json:"delivery"`
	Payment  PaymentInfo  `gorm:"embedded" json:"payment"`

	Status        OrderStatus          `gorm:"size:30;not null;index:idx_orders_customer_status,priority:2" json:"status"`
	StatusHistory []StatusHistoryEntry `gorm:"foreignKey:OrderID" json:"status_history,omitempty"`

	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time      `json:"actual_delivery_time,omitempty"`
	CancellationReason    string          `gorm:"size:500" json:"cancellation_reason,omitempty"`
	RefundAmount          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"refund_amount"`
	Rating                CustomerRating  `gorm:"embedded" json:"rating,omitempty"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

const orderNumberCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateOrderNumber builds a human-readable order reference
func GenerateOrderNumber() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = orderNumberCharset[rand.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD%d%s", time.Now().UnixMilli(), suffix)
}

// NewOrderParams carries the validated inputs for order creation.
type NewOrderParams struct {
	CustomerID    uuid.UUID
	ShopID        *uuid.UUID
	LegacyStockID *uuid.UUID
	Details       OrderDetails
	Delivery      DeliveryInfo
	Payment       PaymentInfo
}

// NewOrder creates a pending order with its initial history entry
func NewOrder(params NewOrderParams) (*Order, error) {
	if params.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "customer ID is required")
	}
	if params.ShopID == nil && params.LegacyStockID == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "order must reference a shop or a legacy stock record")
	}
	if params.Details.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "quantity must be positive")
	}
	if strings.TrimSpace(params.Delivery.Address) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "delivery address is required")
	}
	if strings.TrimSpace(params.Delivery.ContactNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "contact number is required")
	}
	if params.Payment.Method == "" {
		params.Payment.Method = PaymentCashOnDelivery
	}
	if !params.Payment.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid payment method: "+string(params.Payment.Method))
	}
	if params.Payment.Status == "" {
		params.Payment.Status = PaymentStatusPending
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       GenerateOrderNumber(),
		CustomerID:        params.CustomerID,
		ShopID:            params.ShopID,
		LegacyStockID:     params.LegacyStockID,
		Details:           params.Details,
		Delivery:          params.Delivery,
		Payment:           params.Payment,
		Status:            StatusPending,
		RefundAmount:      decimal.Zero,
	}

	estimated := o.CreatedAt.Add(24 * time.Hour)
	o.EstimatedDeliveryTime = &estimated

	o.recordStatus(StatusPending, "system", "Order created")
	o.AddDomainEvent(NewOrderCreatedEvent(o.ID, o.OrderNumber, o.CustomerID))

	return o, nil
}

// CanTransitionTo reports whether the state machine allows moving to target
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	if target == StatusReturned {
		return !o.Status.IsTerminal()
	}
	for _, allowed := range validTransitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to a new status, appending one history entry
func (o *Order) TransitionTo(target OrderStatus, updatedBy, notes string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "invalid order status: "+target.String())
	}
	if !o.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("cannot transition order from %s to %s", o.Status, target))
	}

	from := o.Status
	o.Status = target
	o.UpdatedAt = time.Now()
	if notes == "" {
		notes = "Order status updated to " + target.String()
	}
	o.recordStatus(target, updatedBy, notes)
	o.AddDomainEvent(NewOrderStatusChangedEvent(o.ID, o.OrderNumber, from, target))

	return nil
}

// Cancel moves the order to Cancelled, recording who and why. Only pending
// and confirmed orders can be cancelled.
func (o *Order) Cancel(reason, cancelledBy string) error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("order cannot be cancelled at this stage, current status: %s", o.Status))
	}
	if reason == "" {
		reason = "Cancelled by customer"
	}
	o.CancellationReason = reason
	return o.TransitionTo(StatusCancelled, cancelledBy, reason)
}

// MarkDelivered completes the order. Outstanding cash-on-delivery payments
// are settled at the door.
func (o *Order) MarkDelivered(updatedBy string) error {
	if err := o.TransitionTo(StatusDelivered, updatedBy, "Order delivered"); err != nil {
		return err
	}
	now := time.Now()
	o.ActualDeliveryTime = &now
	if o.Payment.Method == PaymentCashOnDelivery && o.Payment.Status == PaymentStatusPending {
		o.Payment.Status = PaymentStatusPaid
		o.Payment.CompletedAt = &now
	}
	return nil
}

// MarkReturned moves the order to Returned, refunding paid orders in full
func (o *Order) MarkReturned(reason, updatedBy string) error {
	wasPaid := o.Payment.Status == PaymentStatusPaid
	if err := o.TransitionTo(StatusReturned, updatedBy, reason); err != nil {
		return err
	}
	if wasPaid {
		o.Payment.Status = PaymentStatusRefunded
		o.RefundAmount = o.Details.TotalPrice
	}
	return nil
}

// MarkPaid records a successful payment
func (o *Order) MarkPaid(transactionID string) {
	now := time.Now()
	o.Payment.Status = PaymentStatusPaid
	o.Payment.TransactionID = transactionID
	o.Payment.CompletedAt = &now
	o.UpdatedAt = now
}

// IsPaid reports whether the payment has been settled
func (o *Order) IsPaid() bool {
	return o.Payment.Status == PaymentStatusPaid
}

// Rate records the customer's one-shot rating of a delivered order
func (o *Order) Rate(rating int, review string) error {
	if rating < 1 || rating > 5 {
		return shared.NewDomainError("INVALID_INPUT", "rating must be between 1 and 5")
	}
	if o.Status != StatusDelivered {
		return shared.NewDomainError("INVALID_STATE", "only delivered orders can be rated")
	}
	if o.Rating.Rating != 0 {
		return shared.NewDomainError("ALREADY_EXISTS", "order already rated")
	}
	now := time.Now()
	o.Rating = CustomerRating{Rating: rating, Review: review, RatedAt: &now}
	o.UpdatedAt = now
	return nil
}

// Progress is the rounded delivery progress percentage for tracking views
func (o *Order) Progress() int {
	if o.Status == StatusCancelled {
		return 0
	}
	index := -1
	for i, step := range deliverySteps {
		if step == o.Status {
			index = i
			break
		}
	}
	return int(float64(index+1) / float64(len(deliverySteps)) * 100)
}

func (o *Order) recordStatus(status OrderStatus, updatedBy, notes string) {
	o.StatusHistory = append(o.StatusHistory, StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Timestamp: time.Now(),
		UpdatedBy: updatedBy,
		Notes:     notes,
	})
}
