// Package domain holds the types shared by every layer of the matching
// engine: orders, trades, market-data projections, and the small enums
// that describe their lifecycle.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is which side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Status is the lifecycle state of an Order.
type Status int

const (
	New Status = iota
	Accepted
	Rejected
	Filled
	PartiallyFilled
	Cancelled
)

func (s Status) String() string {
	switch s {
	case New:
		return "new"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Filled:
		return "filled"
	case PartiallyFilled:
		return "partially_filled"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Order is a single limit order, either resting in a book or in flight as
// the taker of an add_order call.
type Order struct {
	ID                string          // globally unique, caller-assigned
	Side              Side            // Buy or Sell
	Symbol            string          // the book this order belongs to
	Price             decimal.Decimal // exact decimal, > 0
	Quantity          uint64          // original quantity requested
	RemainingQuantity uint64          // 0 <= remaining <= Quantity
	Timestamp         time.Time       // time of arrival at the engine
	ExchTimestamp     time.Time       // time of arrival into the book
	Status            Status
}

// EnsureRemainingQuantity normalizes RemainingQuantity: a zero,
// over-quantity, or New-status order always resets remaining to the
// requested quantity.
func (o *Order) EnsureRemainingQuantity() {
	if o.RemainingQuantity == 0 || o.RemainingQuantity > o.Quantity {
		o.RemainingQuantity = o.Quantity
	}
	if o.Status == New {
		o.RemainingQuantity = o.Quantity
	}
}
