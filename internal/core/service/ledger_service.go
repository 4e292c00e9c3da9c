package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
	"github.com/tdhoang/stock-ledger/internal/port"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// LedgerService owns every quantity mutation. Concurrent applies against the
// same product serialize on a per-product mutex; applies against different
// products proceed independently. The database transaction underneath keeps
// the quantity update and the audit row atomic.
type LedgerService struct {
	db     port.LedgerRepository
	cache  port.CacheRepository
	locks  *keyMutex
	logger *zap.Logger
}

func NewLedgerService(db port.LedgerRepository, cache port.CacheRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		db:     db,
		cache:  cache,
		locks:  newKeyMutex(),
		logger: logger,
	}
}

func productKey(orgID, productID string) string {
	return orgID + ":" + productID
}

// Apply records one quantity-changing transaction and returns the created
// ledger entry, including the resulting balance.
func (s *LedgerService) Apply(ctx context.Context, orgID, productID string, txType domain.TransactionType, delta int, actor string) (*domain.InventoryTransaction, error) {
	if err := domain.ValidateDelta(txType, delta); err != nil {
		return nil, err
	}

	key := productKey(orgID, productID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	applied, err := s.db.ApplyTransaction(ctx, domain.InventoryTransaction{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		ProductID:      productID,
		Type:           txType,
		Delta:          delta,
		Actor:          actor,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	// Cache refresh is best-effort: the store already committed, and the key
	// carries a TTL.
	if err := s.cache.RefreshStock(ctx, orgID, productID, applied.ResultingBalance); err != nil {
		s.logger.Warn("stock cache refresh failed",
			zap.String("organization_id", orgID),
			zap.String("product_id", productID),
			zap.Error(err))
	}

	s.logger.Info("transaction applied",
		zap.String("transaction_id", applied.ID),
		zap.String("organization_id", orgID),
		zap.String("product_id", productID),
		zap.String("type", string(txType)),
		zap.Int("delta", delta),
		zap.Int("balance", applied.ResultingBalance),
		zap.String("actor", actor))

	return applied, nil
}

// CurrentQuantity reads through the cache to the store.
func (s *LedgerService) CurrentQuantity(ctx context.Context, orgID, productID string) (int, error) {
	quantity, ok, err := s.cache.GetStock(ctx, orgID, productID)
	if err != nil {
		s.logger.Warn("stock cache read failed",
			zap.String("product_id", productID),
			zap.Error(err))
	} else if ok {
		return quantity, nil
	}

	inv, err := s.db.GetInventory(ctx, orgID, productID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.SetStock(ctx, orgID, productID, inv.Quantity); err != nil {
		s.logger.Warn("stock cache backfill failed",
			zap.String("product_id", productID),
			zap.Error(err))
	}

	return inv.Quantity, nil
}

// History returns one page of the product's ledger, newest first. A fresh
// call with the same limit and offset restarts the same page.
func (s *LedgerService) History(ctx context.Context, orgID, productID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	return s.db.ListTransactions(ctx, orgID, productID, limit, offset)
}

// ReconcileReport compares the cached quantity projection against the sum of
// all committed deltas.
type ReconcileReport struct {
	OrganizationID string `json:"organization_id"`
	ProductID      string `json:"product_id"`
	Quantity       int    `json:"quantity"`
	DeltaSum       int    `json:"delta_sum"`
	Consistent     bool   `json:"consistent"`
}

// Reconcile verifies the defining invariant of the ledger: replaying every
// delta from zero reproduces the current quantity.
func (s *LedgerService) Reconcile(ctx context.Context, orgID, productID string) (*ReconcileReport, error) {
	key := productKey(orgID, productID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	inv, err := s.db.GetInventory(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}

	sum, err := s.db.SumDeltas(ctx, orgID, productID)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{
		OrganizationID: orgID,
		ProductID:      productID,
		Quantity:       inv.Quantity,
		DeltaSum:       sum,
		Consistent:     inv.Quantity == sum,
	}

	if !report.Consistent {
		s.logger.Error("ledger drift detected",
			zap.String("organization_id", orgID),
			zap.String("product_id", productID),
			zap.Int("quantity", inv.Quantity),
			zap.Int("delta_sum", sum))
	}

	return report, nil
}

// ReconcileAll sweeps every product in the organization.
func (s *LedgerService) ReconcileAll(ctx context.Context, orgID string) ([]ReconcileReport, error) {
	ids, err := s.db.ListProductIDs(ctx, orgID)
	if err != nil {
		return nil, err
	}

	reports := make([]ReconcileReport, 0, len(ids))
	for _, id := range ids {
		report, err := s.Reconcile(ctx, orgID, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}

	return reports, nil
}
