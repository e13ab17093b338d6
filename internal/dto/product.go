package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the wire representation of an inventory record.
//
// ID, CreatedAt and UpdatedAt are owned by the server; values supplied by a
// client on create or update are ignored. Price and Stock default to zero and
// are bounded by their NUMERIC(18,2) and INTEGER columns.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	Price       decimal.Decimal `json:"price" validate:"gte=0,lt=10000000000000000"`
	Stock       int             `json:"stock" validate:"gte=0,lte=2147483647"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
}
