package port

import "context"

type CacheRepository interface {
	// GetStock returns the cached quantity; ok is false on a miss.
	GetStock(ctx context.Context, orgID, productID string) (quantity int, ok bool, err error)

	// SetStock writes the quantity unconditionally (read-through backfill).
	SetStock(ctx context.Context, orgID, productID string, quantity int) error

	// RefreshStock updates the quantity only when the key is already cached,
	// so an evicted key is never resurrected.
	RefreshStock(ctx context.Context, orgID, productID string, quantity int) error

	// DeleteStock drops the cached quantity.
	DeleteStock(ctx context.Context, orgID, productID string) error
}
