package domain

import "time"

type TransactionType string

const (
	TransactionTypeSale        TransactionType = "SALE"
	TransactionTypePurchase    TransactionType = "PURCHASE"
	TransactionTypeAdjustment  TransactionType = "ADJUSTMENT"
	TransactionTypeReturn      TransactionType = "RETURN"
	TransactionTypeTransferIn  TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTypeInitial     TransactionType = "INITIAL"
)

// InventoryTransaction is one append-only ledger entry. Rows are never
// updated or deleted after commit; the inventory quantity must always equal
// the sum of deltas recorded here.
type InventoryTransaction struct {
	ID               string
	Seq              int64 // insertion order, assigned by storage
	OrganizationID   string
	ProductID        string
	Type             TransactionType
	Delta            int
	ResultingBalance int
	Actor            string
	CreatedAt        time.Time
}

// ValidateDelta checks the sign convention implied by the transaction type.
// SALE and TRANSFER_OUT remove stock, PURCHASE, RETURN, TRANSFER_IN and
// INITIAL add stock, ADJUSTMENT carries an explicit sign. Zero deltas are
// rejected for every type.
func ValidateDelta(txType TransactionType, delta int) error {
	if delta == 0 {
		return ErrInvalidOperation
	}

	switch txType {
	case TransactionTypeSale, TransactionTypeTransferOut:
		if delta > 0 {
			return ErrInvalidOperation
		}
	case TransactionTypePurchase, TransactionTypeReturn,
		TransactionTypeTransferIn, TransactionTypeInitial:
		if delta < 0 {
			return ErrInvalidOperation
		}
	case TransactionTypeAdjustment:
		// either sign
	default:
		return ErrInvalidOperation
	}

	return nil
}
