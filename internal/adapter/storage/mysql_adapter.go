package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tdhoang/stock-ledger/internal/core/domain"
)

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// ApplyTransaction performs the ledger's atomic dual-write: lock the
// inventory row, check the resulting balance, update the quantity and append
// the ledger row, all inside one database transaction. A failure at any step
// rolls back the whole unit, so a quantity change without its audit row (or
// the reverse) cannot be observed.
func (m *MySQLAdapter) ApplyTransaction(ctx context.Context, t domain.InventoryTransaction) (*domain.InventoryTransaction, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin tx: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity FROM inventory
		WHERE organization_id = ? AND product_id = ?
		FOR UPDATE`,
		t.OrganizationID, t.ProductID,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lock inventory: %v", domain.ErrStorage, err)
	}

	balance := current + t.Delta
	if balance < 0 {
		return nil, domain.ErrInsufficientStock
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE inventory SET quantity = ?, updated_at = NOW()
		WHERE organization_id = ? AND product_id = ?`,
		balance, t.OrganizationID, t.ProductID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: update inventory: %v", domain.ErrStorage, err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_transactions
			(id, organization_id, product_id, type, delta, resulting_balance, actor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.OrganizationID, t.ProductID, t.Type, t.Delta, balance, t.Actor, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert transaction: %v", domain.ErrStorage, err)
	}
	seq, _ := result.LastInsertId()

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}

	t.Seq = seq
	t.ResultingBalance = balance
	return &t, nil
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, orgID, productID string) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT organization_id, product_id, quantity, updated_at
		FROM inventory WHERE organization_id = ? AND product_id = ?`,
		orgID, productID,
	).Scan(&inv.OrganizationID, &inv.ProductID, &inv.Quantity, &inv.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query inventory: %v", domain.ErrStorage, err)
	}

	return &inv, nil
}

func (m *MySQLAdapter) ListTransactions(ctx context.Context, orgID, productID string, limit, offset int) ([]domain.InventoryTransaction, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT seq, id, organization_id, product_id, type, delta, resulting_balance, actor, created_at
		FROM inventory_transactions
		WHERE organization_id = ? AND product_id = ?
		ORDER BY created_at DESC, seq DESC
		LIMIT ? OFFSET ?`,
		orgID, productID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var list []domain.InventoryTransaction
	for rows.Next() {
		var t domain.InventoryTransaction
		if err := rows.Scan(&t.Seq, &t.ID, &t.OrganizationID, &t.ProductID,
			&t.Type, &t.Delta, &t.ResultingBalance, &t.Actor, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", domain.ErrStorage, err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %v", domain.ErrStorage, err)
	}

	return list, nil
}

func (m *MySQLAdapter) SumDeltas(ctx context.Context, orgID, productID string) (int, error) {
	var sum int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(delta), 0) FROM inventory_transactions
		WHERE organization_id = ? AND product_id = ?`,
		orgID, productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("%w: sum deltas: %v", domain.ErrStorage, err)
	}
	return sum, nil
}

func (m *MySQLAdapter) ListProductIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT product_id FROM inventory WHERE organization_id = ? ORDER BY product_id`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query product ids: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scan product id: %v", domain.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate product ids: %v", domain.ErrStorage, err)
	}

	return ids, nil
}

func (m *MySQLAdapter) CreateOrganization(ctx context.Context, org domain.Organization) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)`,
		org.ID, org.Name, org.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert organization: %v", domain.ErrStorage, err)
	}
	return nil
}

// CreateProduct seeds the zero-quantity inventory row together with the
// product so the ledger always finds a row to lock.
func (m *MySQLAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	var categoryID any
	if p.CategoryID != "" {
		categoryID = p.CategoryID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products
			(id, organization_id, category_id, name, base_price, min_price, max_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrganizationID, categoryID, p.Name, p.BasePrice, p.MinPrice, p.MaxPrice, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert product: %v", domain.ErrStorage, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory (organization_id, product_id, quantity, updated_at)
		VALUES (?, ?, 0, NOW())`,
		p.OrganizationID, p.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: seed inventory: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return nil
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, orgID, productID string) (*domain.Product, error) {
	var p domain.Product
	var categoryID sql.NullString
	err := m.db.QueryRowContext(ctx, `
		SELECT id, organization_id, category_id, name, base_price, min_price, max_price, created_at
		FROM products WHERE organization_id = ? AND id = ?`,
		orgID, productID,
	).Scan(&p.ID, &p.OrganizationID, &categoryID, &p.Name,
		&p.BasePrice, &p.MinPrice, &p.MaxPrice, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query product: %v", domain.ErrStorage, err)
	}

	p.CategoryID = categoryID.String
	return &p, nil
}
