package persistence

import (
	"context"
	"errors"

	"github.com/gasflow/backend/internal/domain/order"
	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its ID with status history preloaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByIDForCustomer finds an order by ID owned by a customer
func (r *GormOrderRepository) FindByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Where("id = ? AND customer_id = ?", id, customerID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByOrderNumber finds an order by its human-readable reference
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		First(&o, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByCustomer finds a customer's orders with filtering and pagination,
// returning the page and the total match count
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter order.ListFilter) ([]*order.Order, int64, error) {
	countQuery := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("customer_id = ?", customerID)
	query := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("customer_id = ?", customerID)
	if filter.Status != nil {
		countQuery = countQuery.Where("status = ?", *filter.Status)
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var orders []*order.Order
	if err := query.
		Order(orderClause(filter.SortBy, filter.SortOrder)).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindRecentByCustomer finds a customer's newest orders
func (r *GormOrderRepository) FindRecentByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]*order.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	var orders []*order.Order
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Summarize aggregates a customer's order counters in a single query. Spending
// only counts orders that reached delivery.
func (r *GormOrderRepository) Summarize(ctx context.Context, customerID uuid.UUID) (*order.Summary, error) {
	var row struct {
		TotalOrders     int64
		TotalSpent      decimal.Decimal
		CompletedOrders int64
		PendingOrders   int64
		CancelledOrders int64
	}
	if err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Select(`COUNT(*) as total_orders,
			COALESCE(SUM(CASE WHEN status = ? THEN total_price ELSE 0 END), 0) as total_spent,
			COUNT(CASE WHEN status = ? THEN 1 END) as completed_orders,
			COUNT(CASE WHEN status IN ? THEN 1 END) as pending_orders,
			COUNT(CASE WHEN status = ? THEN 1 END) as cancelled_orders`,
			order.StatusDelivered,
			order.StatusDelivered,
			[]order.OrderStatus{order.StatusPending, order.StatusConfirmed, order.StatusProcessing, order.StatusOutForDelivery},
			order.StatusCancelled).
		Where("customer_id = ?", customerID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &order.Summary{
		TotalOrders:     row.TotalOrders,
		TotalSpent:      row.TotalSpent,
		CompletedOrders: row.CompletedOrders,
		PendingOrders:   row.PendingOrders,
		CancelledOrders: row.CancelledOrders,
	}, nil
}

// Save creates or updates an order together with its status history. History
// entries are append-only, so existing rows are left untouched.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("StatusHistory").Save(o).Error; err != nil {
			return err
		}
		return saveStatusHistory(tx, o)
	})
}

// SaveWithLock saves with optimistic locking. The version check runs against
// the version the order was loaded with.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(o).
			Where("id = ? AND version = ?", o.ID, o.Version).
			Updates(map[string]interface{}{
				"status":                  o.Status,
				"payment_status":          o.Payment.Status,
				"transaction_id":          o.Payment.TransactionID,
				"payment_completed_at":    o.Payment.CompletedAt,
				"estimated_delivery_time": o.EstimatedDeliveryTime,
				"actual_delivery_time":    o.ActualDeliveryTime,
				"cancellation_reason":     o.CancellationReason,
				"refund_amount":           o.RefundAmount,
				"rating":                  o.Rating.Rating,
				"review":                  o.Rating.Review,
				"rated_at":                o.Rating.RatedAt,
				"version":                 o.Version + 1,
				"updated_at":              o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return saveStatusHistory(tx, o)
	})
	if err != nil {
		return err
	}
	o.Version++
	return nil
}

// Delete removes an order and its status history
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&order.StatusHistoryEntry{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// saveStatusHistory inserts new history entries, skipping ones already stored
func saveStatusHistory(tx *gorm.DB, o *order.Order) error {
	if len(o.StatusHistory) == 0 {
		return nil
	}
	return tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&o.StatusHistory).Error
}

func orderClause(sortBy, sortOrder string) string {
	column := ValidateSortField(sortBy, OrderSortFields, "created_at")
	return column + " " + ValidateSortOrder(sortOrder)
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
