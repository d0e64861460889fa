package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevelInfo is one aggregated level of a DepthSnapshot.
type PriceLevelInfo struct {
	Price    decimal.Decimal
	Quantity uint64
}

// Equal compares two levels ignoring nothing: both fields are part of the
// user-visible identity of a level.
func (p PriceLevelInfo) Equal(o PriceLevelInfo) bool {
	return p.Price.Equal(o.Price) && p.Quantity == o.Quantity
}

// BboUpdate is the best-bid/best-offer projection for a symbol. A nil
// price/qty pointer means that side is unset (empty book or zero
// aggregate quantity).
type BboUpdate struct {
	Symbol    string
	BidPrice  *decimal.Decimal
	BidQty    *uint64
	AskPrice  *decimal.Decimal
	AskQty    *uint64
	Timestamp time.Time
}

// equalDecimalPtr and equalUint64Ptr compare optional fields by value,
// treating two nils as equal and a nil/non-nil pair as unequal.
func equalDecimalPtr(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func equalUint64Ptr(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StructurallyEqual implements the Market-Data Projector's change-detection
// rule: structural equality over every user-visible field except Timestamp.
func (b BboUpdate) StructurallyEqual(o BboUpdate) bool {
	return b.Symbol == o.Symbol &&
		equalDecimalPtr(b.BidPrice, o.BidPrice) &&
		equalUint64Ptr(b.BidQty, o.BidQty) &&
		equalDecimalPtr(b.AskPrice, o.AskPrice) &&
		equalUint64Ptr(b.AskQty, o.AskQty)
}

// DepthSnapshot is the top-N non-empty levels per side.
type DepthSnapshot struct {
	Symbol    string
	Bids      []PriceLevelInfo // highest price first
	Asks      []PriceLevelInfo // lowest price first
	Timestamp time.Time
}

// StructurallyEqual implements the projector's change-detection rule for
// snapshots: equal bids/asks slices, timestamp excluded.
func (s DepthSnapshot) StructurallyEqual(o DepthSnapshot) bool {
	if s.Symbol != o.Symbol || len(s.Bids) != len(o.Bids) || len(s.Asks) != len(o.Asks) {
		return false
	}
	for i := range s.Bids {
		if !s.Bids[i].Equal(o.Bids[i]) {
			return false
		}
	}
	for i := range s.Asks {
		if !s.Asks[i].Equal(o.Asks[i]) {
			return false
		}
	}
	return true
}

// Empty reports whether the snapshot carries no levels on either side.
// The projector uses this for its first-emission rule: with no prior
// value cached, an empty snapshot produces no emission.
func (s DepthSnapshot) Empty() bool {
	return len(s.Bids) == 0 && len(s.Asks) == 0
}

// Empty reports whether the BBO carries no prices on either side.
func (b BboUpdate) Empty() bool {
	return b.BidPrice == nil && b.AskPrice == nil
}
