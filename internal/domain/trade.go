package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an ephemeral value produced by matching; the book does not own
// it once it has been handed back to the caller.
type Trade struct {
	ID           string
	Symbol       string
	Price        decimal.Decimal // the maker's price (price improvement for the taker)
	Quantity     uint64
	TakerOrderID string
	MakerOrderID string
	Timestamp    time.Time
}
