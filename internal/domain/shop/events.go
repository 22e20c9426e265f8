package shop

import (
	"github.com/google/uuid"

	"github.com/gasflow/backend/internal/domain/shared"
)

// ShopRegisteredEvent is raised when a new shop joins the network
type ShopRegisteredEvent struct {
	shared.BaseDomainEvent
	ShopCode string `json:"shop_code"`
	ShopName string `json:"shop_name"`
}

// NewShopRegisteredEvent creates a new ShopRegisteredEvent
func NewShopRegisteredEvent(shopID uuid.UUID, shopCode, shopName string) *ShopRegisteredEvent {
	return &ShopRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("shop.registered", "Shop", shopID),
		ShopCode:        shopCode,
		ShopName:        shopName,
	}
}
