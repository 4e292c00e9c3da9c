package domain

import "errors"

var (
	// ErrNotFound means the organization/product pair does not resolve to an
	// inventory row. Cross-tenant probes surface this same error.
	ErrNotFound = errors.New("inventory not found")

	// ErrInvalidOperation means a malformed request: unknown transaction
	// type, zero delta, or delta sign not matching the type.
	ErrInvalidOperation = errors.New("invalid inventory operation")

	// ErrInsufficientStock means the delta would drive quantity negative.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrStorage wraps commit failures from the store. The apply is
	// all-or-nothing, so callers may retry without risking a duplicate.
	ErrStorage = errors.New("storage failure")
)
