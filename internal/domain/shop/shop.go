package shop

import (
	"strings"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
)

// ShopStatus represents the operational status of a shop
type ShopStatus string

const (
	ShopStatusActive      ShopStatus = "active"
	ShopStatusInactive    ShopStatus = "inactive"
	ShopStatusMaintenance ShopStatus = "maintenance"
	ShopStatusClosed      ShopStatus = "closed"
)

// IsValid checks if the status is a known ShopStatus
func (s ShopStatus) IsValid() bool {
	switch s {
	case ShopStatusActive, ShopStatusInactive, ShopStatusMaintenance, ShopStatusClosed:
		return true
	}
	return false
}

// Address is the postal address of a shop.
type Address struct {
	Street     string `gorm:"column:street;size:255;not null" json:"street"`
	City       string `gorm:"column:city;size:100;not null;index:idx_shops_city_district,priority:1" json:"city"`
	District   string `gorm:"column:district;size:100;not null;index:idx_shops_city_district,priority:2" json:"district"`
	Province   string `gorm:"column:province;size:100;not null" json:"province"`
	PostalCode string `gorm:"column:postal_code;size:20" json:"postal_code,omitempty"`
	Landmark   string `gorm:"column:landmark;size:255" json:"landmark,omitempty"`
}

// ContactInfo holds the shop's phone and email contacts.
type ContactInfo struct {
	PrimaryPhone     string `gorm:"column:primary_phone;size:30;not null" json:"primary_phone"`
	SecondaryPhone   string `gorm:"column:secondary_phone;size:30" json:"secondary_phone,omitempty"`
	Email            string `gorm:"column:email;size:200" json:"email,omitempty"`
	EmergencyContact string `gorm:"column:emergency_contact;size:30" json:"emergency_contact,omitempty"`
}

// Rating is the running customer rating of a shop.
type Rating struct {
	Average float64 `gorm:"column:rating_average;not null;default:0" json:"average"`
	Count   int     `gorm:"column:rating_count;not null;default:0" json:"count"`
}

// Shop is a registered gas retail point. Each shop owns exactly one stock
// ledger, seeded at registration.
type Shop struct {
	shared.BaseAggregateRoot
	ShopName string     `gorm:"size:255;not null" json:"shop_name"`
	ShopCode string     `gorm:"size:30;not null;uniqueIndex" json:"shop_code"`
	Status   ShopStatus `gorm:"size:20;not null;default:'active';index" json:"status"`

	Address   Address     `gorm:"embedded" json:"address"`
	Contact   ContactInfo `gorm:"embedded" json:"contact"`
	Latitude  float64     `gorm:"not null" json:"latitude"`
	Longitude float64     `gorm:"not null" json:"longitude"`

	Rating         Rating  `gorm:"embedded" json:"rating"`
	HasDelivery    bool    `gorm:"not null;default:true" json:"has_delivery"`
	DeliveryRadius float64 `gorm:"not null;default:5" json:"delivery_radius"`

	LicenseNumber  string     `gorm:"size:100;not null;uniqueIndex" json:"license_number"`
	LicenseExpiry  time.Time  `gorm:"not null" json:"license_expiry"`
	LastInspection *time.Time `json:"last_inspection,omitempty"`
	Notes          string     `gorm:"size:1000" json:"notes,omitempty"`
}

// TableName returns the table name for Shop
func (Shop) TableName() string {
	return "shops"
}

// NewShop creates a new active shop with required fields
func NewShop(name, code string, address Address, contact ContactInfo, licenseNumber string, licenseExpiry time.Time) (*Shop, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "shop name is required")
	}
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "shop code is required")
	}
	if strings.TrimSpace(address.Street) == "" || strings.TrimSpace(address.City) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "shop address requires at least a street and city")
	}
	if strings.TrimSpace(contact.PrimaryPhone) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "primary phone is required")
	}
	if strings.TrimSpace(licenseNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "license number is required")
	}
	if licenseExpiry.Before(time.Now()) {
		return nil, shared.NewDomainError("INVALID_INPUT", "license has already expired")
	}

	s := &Shop{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ShopName:          strings.TrimSpace(name),
		ShopCode:          strings.ToUpper(strings.TrimSpace(code)),
		Status:            ShopStatusActive,
		Address:           address,
		Contact:           contact,
		HasDelivery:       true,
		DeliveryRadius:    5,
		LicenseNumber:     licenseNumber,
		LicenseExpiry:     licenseExpiry,
	}

	s.AddDomainEvent(NewShopRegisteredEvent(s.ID, s.ShopCode, s.ShopName))

	return s, nil
}

// ChangeStatus moves the shop to a new operational status
func (s *Shop) ChangeStatus(status ShopStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "invalid shop status: "+string(status))
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	return nil
}

// IsActive reports whether the shop currently accepts orders
func (s *Shop) IsActive() bool {
	return s.Status == ShopStatusActive
}

// RecordRating folds one customer rating into the running average
func (s *Shop) RecordRating(rating int) error {
	if rating < 1 || rating > 5 {
		return shared.NewDomainError("INVALID_INPUT", "rating must be between 1 and 5")
	}
	total := s.Rating.Average * float64(s.Rating.Count)
	s.Rating.Count++
	s.Rating.Average = (total + float64(rating)) / float64(s.Rating.Count)
	s.UpdatedAt = time.Now()
	return nil
}
