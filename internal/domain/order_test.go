package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"matchbook/internal/domain"
)

func TestEnsureRemainingQuantity(t *testing.T) {
	o := domain.Order{Quantity: 10, Status: domain.Accepted}
	o.EnsureRemainingQuantity()
	assert.Equal(t, uint64(10), o.RemainingQuantity)

	o = domain.Order{Quantity: 10, RemainingQuantity: 4, Status: domain.PartiallyFilled}
	o.EnsureRemainingQuantity()
	assert.Equal(t, uint64(4), o.RemainingQuantity)

	// A remaining above the requested quantity is nonsense and resets.
	o = domain.Order{Quantity: 10, RemainingQuantity: 25, Status: domain.PartiallyFilled}
	o.EnsureRemainingQuantity()
	assert.Equal(t, uint64(10), o.RemainingQuantity)

	// A New order always starts with its full quantity remaining.
	o = domain.Order{Quantity: 10, RemainingQuantity: 4, Status: domain.New}
	o.EnsureRemainingQuantity()
	assert.Equal(t, uint64(10), o.RemainingQuantity)
}

func TestBboUpdate_StructuralEqualityIgnoresTimestamp(t *testing.T) {
	p := decimal.RequireFromString("99.5")
	q := uint64(5)
	a := domain.BboUpdate{Symbol: "TEST", BidPrice: &p, BidQty: &q, Timestamp: time.Now()}
	b := domain.BboUpdate{Symbol: "TEST", BidPrice: &p, BidQty: &q, Timestamp: time.Now().Add(time.Hour)}
	assert.True(t, a.StructurallyEqual(b))

	other := decimal.RequireFromString("99.6")
	b.BidPrice = &other
	assert.False(t, a.StructurallyEqual(b))

	b.BidPrice = nil
	assert.False(t, a.StructurallyEqual(b))
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "new", domain.New.String())
	assert.Equal(t, "partially_filled", domain.PartiallyFilled.String())
	assert.Equal(t, "filled", domain.Filled.String())
	assert.Equal(t, "buy", domain.Buy.String())
	assert.Equal(t, "sell", domain.Sell.String())
}
