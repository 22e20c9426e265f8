package shop

import (
	"strings"
	"time"

	"github.com/gasflow/backend/internal/domain/shared"
)

// Customer is a registered gas customer. Credentials live upstream in the
// identity provider; this record only carries the delivery-facing profile.
type Customer struct {
	shared.BaseAggregateRoot
	Name         string `gorm:"size:255;not null" json:"name"`
	Address      string `gorm:"size:500;not null" json:"address"`
	MobileNumber string `gorm:"size:30;not null" json:"mobile_number"`
	NationalID   string `gorm:"size:30;not null" json:"national_id"`
	Email        string `gorm:"size:200;not null;uniqueIndex" json:"email"`
}

// TableName returns the table name for Customer
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer profile
func NewCustomer(name, address, mobileNumber, nationalID, email string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "customer name is required")
	}
	if strings.TrimSpace(address) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "customer address is required")
	}
	if strings.TrimSpace(mobileNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "mobile number is required")
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_INPUT", "a valid email is required")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Address:           strings.TrimSpace(address),
		MobileNumber:      strings.TrimSpace(mobileNumber),
		NationalID:        strings.TrimSpace(nationalID),
		Email:             strings.ToLower(strings.TrimSpace(email)),
	}, nil
}

// UpdateProfile replaces the customer's mutable contact details
func (c *Customer) UpdateProfile(address, mobileNumber string) error {
	if strings.TrimSpace(address) == "" {
		return shared.NewDomainError("INVALID_INPUT", "customer address is required")
	}
	if strings.TrimSpace(mobileNumber) == "" {
		return shared.NewDomainError("INVALID_INPUT", "mobile number is required")
	}
	c.Address = strings.TrimSpace(address)
	c.MobileNumber = strings.TrimSpace(mobileNumber)
	c.UpdatedAt = time.Now()
	return nil
}
