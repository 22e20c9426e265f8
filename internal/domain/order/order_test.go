package order

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()
	shopID := uuid.New()
	o, err := NewOrder(NewOrderParams{
		CustomerID: uuid.New(),
		ShopID:     &shopID,
		Details: OrderDetails{
			Brand:      stock.BrandLaugfs,
			GasType:    "Medium",
			Quantity:   2,
			UnitPrice:  decimal.NewFromInt(1700),
			TotalPrice: decimal.NewFromInt(3400),
		},
		Delivery: DeliveryInfo{
			Address:       "12 Galle Road, Colombo",
			ContactNumber: "0771234567",
			PreferredDate: time.Now().Add(24 * time.Hour),
		},
	})
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates a pending order with initial history", func(t *testing.T) {
		o := newTestOrder(t)

		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentCashOnDelivery, o.Payment.Method)
		assert.Equal(t, PaymentStatusPending, o.Payment.Status)
		require.Len(t, o.StatusHistory, 1)
		assert.Equal(t, StatusPending, o.StatusHistory[0].Status)
		require.NotNil(t, o.EstimatedDeliveryTime)
		assert.WithinDuration(t, o.CreatedAt.Add(24*time.Hour), *o.EstimatedDeliveryTime, time.Second)
	})

	t.Run("order number format", func(t *testing.T) {
		o := newTestOrder(t)

		assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD"))
		assert.GreaterOrEqual(t, len(o.OrderNumber), len("ORD")+13+4)
		suffix := o.OrderNumber[len(o.OrderNumber)-4:]
		assert.Equal(t, strings.ToUpper(suffix), suffix)
	})

	t.Run("requires a shop or legacy stock reference", func(t *testing.T) {
		_, err := NewOrder(NewOrderParams{
			CustomerID: uuid.New(),
			Details:    OrderDetails{Quantity: 1},
			Delivery:   DeliveryInfo{Address: "addr", ContactNumber: "077"},
		})
		require.Error(t, err)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		shopID := uuid.New()
		_, err := NewOrder(NewOrderParams{
			CustomerID: uuid.New(),
			ShopID:     &shopID,
			Details:    OrderDetails{Quantity: 0},
			Delivery:   DeliveryInfo{Address: "addr", ContactNumber: "077"},
		})
		require.Error(t, err)
	})

	t.Run("rejects unknown payment methods", func(t *testing.T) {
		shopID := uuid.New()
		_, err := NewOrder(NewOrderParams{
			CustomerID: uuid.New(),
			ShopID:     &shopID,
			Details:    OrderDetails{Quantity: 1},
			Delivery:   DeliveryInfo{Address: "addr", ContactNumber: "077"},
			Payment:    PaymentInfo{Method: PaymentMethod("Barter")},
		})
		require.Error(t, err)
	})
}

func TestOrderStateMachine(t *testing.T) {
	t.Run("happy path walks every forward transition", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusOutForDelivery, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusDelivered, "agent-1", ""))

		assert.Equal(t, StatusDelivered, o.Status)
		assert.Len(t, o.StatusHistory, 5)
	})

	t.Run("rejects skipping states", func(t *testing.T) {
		o := newTestOrder(t)

		err := o.TransitionTo(StatusDelivered, "agent-1", "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.Equal(t, StatusPending, o.Status)
		assert.Len(t, o.StatusHistory, 1)
	})

	t.Run("terminal states accept no transitions", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.Cancel("changed my mind", "customer"))

		assert.Error(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		assert.Error(t, o.TransitionTo(StatusReturned, "agent-1", ""))
	})

	t.Run("returned is reachable from any non-terminal state", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))

		require.NoError(t, o.TransitionTo(StatusReturned, "agent-1", "damaged cylinder"))
		assert.Equal(t, StatusReturned, o.Status)
	})

	t.Run("transitions raise domain events", func(t *testing.T) {
		o := newTestOrder(t)
		o.ClearDomainEvents()

		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		changed, ok := events[0].(*OrderStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusPending, changed.FromStatus)
		assert.Equal(t, StatusConfirmed, changed.ToStatus)
	})
}

func TestOrderCancel(t *testing.T) {
	t.Run("pending orders can be cancelled", func(t *testing.T) {
		o := newTestOrder(t)

		require.NoError(t, o.Cancel("found a better price", "customer"))
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, "found a better price", o.CancellationReason)
	})

	t.Run("confirmed orders can be cancelled", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))

		require.NoError(t, o.Cancel("", "customer"))
		assert.Equal(t, "Cancelled by customer", o.CancellationReason)
	})

	t.Run("processing orders cannot be cancelled", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))

		err := o.Cancel("too late", "customer")
		require.Error(t, err)
		assert.Equal(t, StatusProcessing, o.Status)
	})
}

func TestOrderDelivery(t *testing.T) {
	deliver := func(t *testing.T, o *Order) {
		t.Helper()
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusOutForDelivery, "agent-1", ""))
		require.NoError(t, o.MarkDelivered("driver-1"))
	}

	t.Run("cash on delivery settles payment at the door", func(t *testing.T) {
		o := newTestOrder(t)
		deliver(t, o)

		assert.Equal(t, StatusDelivered, o.Status)
		assert.Equal(t, PaymentStatusPaid, o.Payment.Status)
		assert.NotNil(t, o.Payment.CompletedAt)
		assert.NotNil(t, o.ActualDeliveryTime)
	})

	t.Run("prepaid orders keep their payment record", func(t *testing.T) {
		o := newTestOrder(t)
		o.Payment.Method = PaymentOnline
		o.MarkPaid("TXN-1")
		completedAt := o.Payment.CompletedAt

		deliver(t, o)

		assert.Equal(t, PaymentStatusPaid, o.Payment.Status)
		assert.Equal(t, "TXN-1", o.Payment.TransactionID)
		assert.Equal(t, completedAt, o.Payment.CompletedAt)
	})
}

func TestOrderReturn(t *testing.T) {
	t.Run("paid orders are refunded in full", func(t *testing.T) {
		o := newTestOrder(t)
		o.MarkPaid("TXN-1")
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))

		require.NoError(t, o.MarkReturned("wrong size delivered", "agent-1"))

		assert.Equal(t, StatusReturned, o.Status)
		assert.Equal(t, PaymentStatusRefunded, o.Payment.Status)
		assert.True(t, o.RefundAmount.Equal(decimal.NewFromInt(3400)))
	})

	t.Run("unpaid orders get no refund", func(t *testing.T) {
		o := newTestOrder(t)
		require.NoError(t, o.MarkReturned("customer refused delivery", "agent-1"))

		assert.Equal(t, PaymentStatusPending, o.Payment.Status)
		assert.True(t, o.RefundAmount.IsZero())
	})
}

func TestOrderRating(t *testing.T) {
	delivered := func(t *testing.T) *Order {
		t.Helper()
		o := newTestOrder(t)
		require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))
		require.NoError(t, o.TransitionTo(StatusOutForDelivery, "agent-1", ""))
		require.NoError(t, o.MarkDelivered("driver-1"))
		return o
	}

	t.Run("delivered orders can be rated once", func(t *testing.T) {
		o := delivered(t)

		require.NoError(t, o.Rate(5, "fast delivery"))
		assert.Equal(t, 5, o.Rating.Rating)
		assert.NotNil(t, o.Rating.RatedAt)

		err := o.Rate(4, "second thoughts")
		require.Error(t, err)
		assert.Equal(t, 5, o.Rating.Rating)
	})

	t.Run("rating bounds", func(t *testing.T) {
		o := delivered(t)
		assert.Error(t, o.Rate(0, ""))
		assert.Error(t, o.Rate(6, ""))
	})

	t.Run("undelivered orders cannot be rated", func(t *testing.T) {
		o := newTestOrder(t)
		assert.Error(t, o.Rate(5, ""))
	})
}

func TestOrderProgress(t *testing.T) {
	o := newTestOrder(t)
	assert.Equal(t, 20, o.Progress())

	require.NoError(t, o.TransitionTo(StatusConfirmed, "agent-1", ""))
	assert.Equal(t, 40, o.Progress())

	require.NoError(t, o.TransitionTo(StatusProcessing, "agent-1", ""))
	assert.Equal(t, 60, o.Progress())

	require.NoError(t, o.TransitionTo(StatusOutForDelivery, "agent-1", ""))
	assert.Equal(t, 80, o.Progress())

	require.NoError(t, o.MarkDelivered("driver-1"))
	assert.Equal(t, 100, o.Progress())

	cancelled := newTestOrder(t)
	require.NoError(t, cancelled.Cancel("", "customer"))
	assert.Equal(t, 0, cancelled.Progress())
}
