package shop

import (
	"context"

	"github.com/google/uuid"
)

// ShopFilter narrows shop listings.
type ShopFilter struct {
	Status   *ShopStatus
	City     string
	District string
}

// ShopRepository defines the persistence interface for shops
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindByCode(ctx context.Context, code string) (*Shop, error)
	FindAll(ctx context.Context, filter ShopFilter) ([]*Shop, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, shop *Shop) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerRepository defines the persistence interface for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
