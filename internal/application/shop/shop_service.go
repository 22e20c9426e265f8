package shop

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gasflow/backend/internal/domain/shared"
	"github.com/gasflow/backend/internal/domain/shop"
	"github.com/gasflow/backend/internal/domain/stock"
)

// ShopService handles shop and customer registration. Registering a shop
// also seeds its stock ledger, so every shop can take stock actions from
// the moment it exists.
type ShopService struct {
	shopRepo     shop.ShopRepository
	customerRepo shop.CustomerRepository
	ledgerRepo   stock.StockLedgerRepository
	logger       *zap.Logger
}

// NewShopService creates a new ShopService
func NewShopService(
	shopRepo shop.ShopRepository,
	customerRepo shop.CustomerRepository,
	ledgerRepo stock.StockLedgerRepository,
	logger *zap.Logger,
) *ShopService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShopService{
		shopRepo:     shopRepo,
		customerRepo: customerRepo,
		ledgerRepo:   ledgerRepo,
		logger:       logger,
	}
}

// RegisterShop creates a shop and seeds its default stock ledger
func (s *ShopService) RegisterShop(ctx context.Context, req RegisterShopRequest) (*shop.Shop, error) {
	if existing, err := s.shopRepo.FindByCode(ctx, req.ShopCode); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "shop code already registered: "+existing.ShopCode)
	}

	newShop, err := shop.NewShop(req.ShopName, req.ShopCode, req.Address, req.Contact, req.LicenseNumber, req.LicenseExpiry)
	if err != nil {
		return nil, err
	}
	newShop.Latitude = req.Latitude
	newShop.Longitude = req.Longitude
	newShop.Notes = req.Notes

	if err := s.shopRepo.Save(ctx, newShop); err != nil {
		return nil, err
	}

	ledger, err := stock.NewStockLedger(newShop.ID)
	if err != nil {
		return nil, err
	}
	if err := s.ledgerRepo.Save(ctx, ledger); err != nil {
		// The shop must not exist without its ledger.
		if delErr := s.shopRepo.Delete(ctx, newShop.ID); delErr != nil {
			s.logger.Error("failed to roll back shop after ledger seeding failure",
				zap.String("shop_code", newShop.ShopCode),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("shop registered",
		zap.String("shop_code", newShop.ShopCode),
		zap.String("shop_id", newShop.ID.String()))

	return newShop, nil
}

// GetShop loads one shop by ID
func (s *ShopService) GetShop(ctx context.Context, shopID uuid.UUID) (*shop.Shop, error) {
	return s.shopRepo.FindByID(ctx, shopID)
}

// ListShops lists shops matching the filter
func (s *ShopService) ListShops(ctx context.Context, filter shop.ShopFilter) ([]*shop.Shop, error) {
	return s.shopRepo.FindAll(ctx, filter)
}

// ChangeShopStatus moves a shop to a new operational status
func (s *ShopService) ChangeShopStatus(ctx context.Context, shopID uuid.UUID, status shop.ShopStatus) (*shop.Shop, error) {
	existing, err := s.shopRepo.FindByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if err := existing.ChangeStatus(status); err != nil {
		return nil, err
	}
	if err := s.shopRepo.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// RegisterCustomer creates a customer profile
func (s *ShopService) RegisterCustomer(ctx context.Context, req RegisterCustomerRequest) (*shop.Customer, error) {
	if existing, err := s.customerRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "email already registered")
	}

	customer, err := shop.NewCustomer(req.Name, req.Address, req.MobileNumber, req.NationalID, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}
