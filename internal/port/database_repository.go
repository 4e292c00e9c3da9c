package port

import (
	"context"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
)

type LedgerRepository interface {
	// ApplyTransaction atomically updates the inventory quantity and inserts
	// the ledger row. Both effects commit together or not at all.
	ApplyTransaction(ctx context.Context, tx domain.InventoryTransaction) (*domain.InventoryTransaction, error)

	// GetInventory retrieves the inventory row for a product within an
	// organization, or domain.ErrNotFound.
	GetInventory(ctx context.Context, orgID, productID string) (*domain.Inventory, error)

	// ListTransactions returns one page of ledger entries, newest first.
	ListTransactions(ctx context.Context, orgID, productID string, limit, offset int) ([]domain.InventoryTransaction, error)

	// SumDeltas returns the sum of all committed deltas for a product.
	SumDeltas(ctx context.Context, orgID, productID string) (int, error)

	// ListProductIDs returns every product id within an organization, for
	// maintenance sweeps.
	ListProductIDs(ctx context.Context, orgID string) ([]string, error)
}

type CatalogRepository interface {
	// CreateOrganization persists a new tenant root.
	CreateOrganization(ctx context.Context, org domain.Organization) error

	// CreateProduct persists a product and seeds its zero-quantity inventory
	// row in the same database transaction.
	CreateProduct(ctx context.Context, product domain.Product) error

	// GetProduct resolves a product owned by the organization, or
	// domain.ErrNotFound.
	GetProduct(ctx context.Context, orgID, productID string) (*domain.Product, error)
}
