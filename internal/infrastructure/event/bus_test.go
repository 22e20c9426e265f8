package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/stock"
)

func TestInMemoryEventBusPublish(t *testing.T) {
	t.Run("delivers events to subscribed handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		var received []shared.DomainEvent
		bus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
			received = append(received, evt)
			return nil
		}, "stock.reserved")

		evt := stock.NewStockReservedEvent(uuid.New(), uuid.New(), stock.BrandLaugfs, stock.GasTypeMedium, 2, "ORD1")
		err := bus.Publish(context.Background(), evt)

		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.Equal(t, "stock.reserved", received[0].EventType())
	})

	t.Run("ignores events without handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		evt := stock.NewArrivalExecutedEvent(uuid.New(), uuid.New(), stock.BrandLitro, stock.GasTypeLarge, 30)
		err := bus.Publish(context.Background(), evt)

		assert.NoError(t, err)
	})

	t.Run("a failing handler does not block the others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		called := 0
		bus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
			return errors.New("handler broke")
		}, "stock.reserved")
		bus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
			called++
			return nil
		}, "stock.reserved")

		evt := stock.NewStockReservedEvent(uuid.New(), uuid.New(), stock.BrandLaugfs, stock.GasTypeSmall, 1, "ORD2")
		err := bus.Publish(context.Background(), evt)

		require.NoError(t, err)
		assert.Equal(t, 1, called)
	})

	t.Run("a panicking handler is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		bus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
			panic("boom")
		}, "stock.reserved")

		evt := stock.NewStockReservedEvent(uuid.New(), uuid.New(), stock.BrandLaugfs, stock.GasTypeSmall, 1, "ORD3")
		assert.NotPanics(t, func() {
			_ = bus.Publish(context.Background(), evt)
		})
	})

	t.Run("one handler can watch several event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())

		var types []string
		bus.Subscribe(func(ctx context.Context, evt shared.DomainEvent) error {
			types = append(types, evt.EventType())
			return nil
		}, "stock.arrival_scheduled", "stock.arrival_executed")

		require.NoError(t, bus.Publish(context.Background(),
			stock.NewArrivalExecutedEvent(uuid.New(), uuid.New(), stock.BrandLaugfs, stock.GasTypeMedium, 20)))

		assert.Equal(t, []string{"stock.arrival_executed"}, types)
	})
}
