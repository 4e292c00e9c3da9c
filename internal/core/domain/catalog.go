package domain

import "time"

// Organization is the tenant root. Every other entity is scoped beneath
// exactly one organization; the name is unique case-insensitively.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Category struct {
	ID             string
	OrganizationID string
	Name           string
}

// Product name is unique within its organization (case-insensitive).
type Product struct {
	ID             string
	OrganizationID string
	CategoryID     string // empty when uncategorized
	Name           string
	BasePrice      int64 // cents
	MinPrice       int64
	MaxPrice       int64
	CreatedAt      time.Time
}
