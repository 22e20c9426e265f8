package shop

import (
	"time"

	"github.com/gasflow/backend/internal/domain/shop"
)

// RegisterShopRequest is the payload for registering a new shop.
type RegisterShopRequest struct {
	ShopName      string           `json:"shop_name" binding:"required"`
	ShopCode      string           `json:"shop_code" binding:"required"`
	Address       shop.Address     `json:"address" binding:"required"`
	Contact       shop.ContactInfo `json:"contact" binding:"required"`
	Latitude      float64          `json:"latitude"`
	Longitude     float64          `json:"longitude"`
	LicenseNumber string           `json:"license_number" binding:"required"`
	LicenseExpiry time.Time        `json:"license_expiry" binding:"required"`
	Notes         string           `json:"notes,omitempty"`
}

// RegisterCustomerRequest is the payload for registering a new customer.
type RegisterCustomerRequest struct {
	Name         string `json:"name" binding:"required"`
	Address      string `json:"address" binding:"required"`
	MobileNumber string `json:"mobile_number" binding:"required"`
	NationalID   string `json:"national_id"`
	Email        string `json:"email" binding:"required"`
}
