package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
	"github.com/tdhoang/stock-ledger/internal/port"
)

type CatalogService struct {
	db     port.CatalogRepository
	logger *zap.Logger
}

func NewCatalogService(db port.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

func (s *CatalogService) CreateOrganization(ctx context.Context, name string) (*domain.Organization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidOperation
	}

	org := domain.Organization{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.db.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization_id", org.ID),
		zap.String("name", org.Name))

	return &org, nil
}

// CreateProduct registers a product and its zero-quantity inventory row.
// Price bounds must satisfy min <= base <= max.
func (s *CatalogService) CreateProduct(ctx context.Context, orgID, categoryID, name string, basePrice, minPrice, maxPrice int64) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" || orgID == "" {
		return nil, domain.ErrInvalidOperation
	}
	if minPrice > basePrice || basePrice > maxPrice || minPrice < 0 {
		return nil, domain.ErrInvalidOperation
	}

	product := domain.Product{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		CategoryID:     categoryID,
		Name:           name,
		BasePrice:      basePrice,
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.db.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("organization_id", orgID),
		zap.String("name", product.Name))

	return &product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, orgID, productID string) (*domain.Product, error) {
	return s.db.GetProduct(ctx, orgID, productID)
}
