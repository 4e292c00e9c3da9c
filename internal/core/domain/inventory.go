package domain

import "time"

// Inventory holds the current stock quantity for one (organization, product)
// pair. It is a cached projection of the transaction ledger and is only ever
// written through the ledger's apply path.
type Inventory struct {
	OrganizationID string
	ProductID      string
	Quantity       int
	UpdatedAt      time.Time
}
