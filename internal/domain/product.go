package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a stored inventory record
type Product struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description *string         `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   *time.Time      `db:"updated_at"`

	// Version is the optimistic concurrency token. It is bumped by storage on
	// every successful update and never leaves the persistence layer.
	Version int64 `db:"version"`
}
