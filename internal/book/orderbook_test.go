package book_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchbook/internal/book"
	"matchbook/internal/domain"
)

func price(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func limitOrder(id string, side domain.Side, p string, qty uint64) domain.Order {
	return domain.Order{
		ID:       id,
		Side:     side,
		Symbol:   "TEST",
		Price:    price(p),
		Quantity: qty,
		Status:   domain.New,
	}
}

func TestAddOrder_FullFillAtMakerPrice(t *testing.T) {
	b := book.New("TEST")

	status, trades := b.AddOrder(limitOrder("A", domain.Sell, "100.0", 10))
	require.Equal(t, domain.Accepted, status)
	require.Empty(t, trades)

	status, trades = b.AddOrder(limitOrder("B", domain.Buy, "100.0", 10))
	require.Equal(t, domain.Filled, status)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(price("100.0")))
	assert.Equal(t, uint64(10), trades[0].Quantity)
	assert.Equal(t, "B", trades[0].TakerOrderID)
	assert.Equal(t, "A", trades[0].MakerOrderID)

	bidP, bidQ, askP, askQ := b.BestBidOfferWithQty()
	assert.Nil(t, bidP)
	assert.Nil(t, bidQ)
	assert.Nil(t, askP)
	assert.Nil(t, askQ)
}

func TestAddOrder_TakerPartialRests(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Sell, "100.0", 5))

	status, trades := b.AddOrder(limitOrder("B", domain.Buy, "100.0", 10))
	require.Equal(t, domain.PartiallyFilled, status)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(5), trades[0].Quantity)

	asks := b.Asks(10)
	assert.Empty(t, asks)

	bids := b.Bids(10)
	require.Len(t, bids, 1)
	assert.True(t, bids[0].Price.Equal(price("100.0")))
	assert.Equal(t, uint64(5), bids[0].Quantity)
}

func TestAddOrder_MakerPartialRemains(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Sell, "100.0", 15))

	status, trades := b.AddOrder(limitOrder("B", domain.Buy, "100.0", 10))
	require.Equal(t, domain.Filled, status)
	require.Len(t, trades, 1)

	asks := b.Asks(10)
	require.Len(t, asks, 1)
	assert.Equal(t, uint64(5), asks[0].Quantity)

	assert.Empty(t, b.Bids(10))
}

func TestAddOrder_TimePriorityWithinLevel(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Sell, "100.0", 5))
	b.AddOrder(limitOrder("C", domain.Sell, "100.0", 8))

	status, trades := b.AddOrder(limitOrder("B", domain.Buy, "100.5", 10))
	require.Equal(t, domain.Filled, status)
	require.Len(t, trades, 2)

	assert.Equal(t, "A", trades[0].MakerOrderID)
	assert.Equal(t, uint64(5), trades[0].Quantity)
	assert.Equal(t, "C", trades[1].MakerOrderID)
	assert.Equal(t, uint64(5), trades[1].Quantity)

	asks := b.Asks(10)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Price.Equal(price("100.0")))
	assert.Equal(t, uint64(3), asks[0].Quantity)
}

func TestAddOrder_WalksAcrossPriceLevels(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Sell, "100.0", 5))
	b.AddOrder(limitOrder("C", domain.Sell, "100.5", 8))

	status, trades := b.AddOrder(limitOrder("B", domain.Buy, "101.0", 10))
	require.Equal(t, domain.Filled, status)
	require.Len(t, trades, 2)
	assert.True(t, trades[0].Price.Equal(price("100.0")))
	assert.Equal(t, uint64(5), trades[0].Quantity)
	assert.True(t, trades[1].Price.Equal(price("100.5")))
	assert.Equal(t, uint64(5), trades[1].Quantity)

	asks := b.Asks(10)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Price.Equal(price("100.5")))
	assert.Equal(t, uint64(3), asks[0].Quantity)
}

func TestAddOrder_RejectionPaths(t *testing.T) {
	b := book.New("TEST")

	cases := []domain.Order{
		limitOrder("r1", domain.Buy, "0", 10),
		limitOrder("r2", domain.Sell, "100", 0),
		{ID: "r3", Side: domain.Buy, Symbol: "OTHER", Price: price("100"), Quantity: 10},
		limitOrder("r4", domain.Buy, "-50", 10),
	}

	for _, o := range cases {
		status, trades := b.AddOrder(o)
		assert.Equal(t, domain.Rejected, status)
		assert.Empty(t, trades)
	}

	assert.Empty(t, b.Bids(10))
	assert.Empty(t, b.Asks(10))
}

func TestDepthSnapshot_Aggregation(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("1", domain.Buy, "99.8", 5))
	b.AddOrder(limitOrder("2", domain.Buy, "99.8", 7))
	b.AddOrder(limitOrder("3", domain.Buy, "99.7", 10))
	b.AddOrder(limitOrder("4", domain.Buy, "99.6", 8))
	b.AddOrder(limitOrder("5", domain.Buy, "99.5", 20))

	bids := b.Bids(3)
	require.Len(t, bids, 3)
	assert.True(t, bids[0].Price.Equal(price("99.8")))
	assert.Equal(t, uint64(12), bids[0].Quantity)
	assert.True(t, bids[1].Price.Equal(price("99.7")))
	assert.Equal(t, uint64(10), bids[1].Quantity)
	assert.True(t, bids[2].Price.Equal(price("99.6")))
	assert.Equal(t, uint64(8), bids[2].Quantity)
}

func TestAddOrder_NeverCrosses(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("1", domain.Buy, "99.0", 10))
	b.AddOrder(limitOrder("2", domain.Sell, "101.0", 10))
	b.AddOrder(limitOrder("3", domain.Buy, "100.5", 5))

	bidP, _, askP, _ := b.BestBidOfferWithQty()
	require.NotNil(t, bidP)
	require.NotNil(t, askP)
	assert.True(t, bidP.LessThan(*askP))
}

func TestAddOrder_EmptyLevelsRemoved(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Sell, "100.0", 10))
	b.AddOrder(limitOrder("B", domain.Buy, "100.0", 10))

	assert.Empty(t, b.Asks(10))
	assert.Empty(t, b.Bids(10))
}

// Across an arbitrary sequence, every traded unit leaves both the taker
// and the maker, so submitted quantity equals resting quantity plus
// twice the traded quantity.
func TestAddOrder_QuantityConservation(t *testing.T) {
	b := book.New("TEST")

	orders := []domain.Order{
		limitOrder("s1", domain.Sell, "100.0", 10),
		limitOrder("s2", domain.Sell, "100.5", 4),
		limitOrder("b1", domain.Buy, "100.5", 7),
		limitOrder("b2", domain.Buy, "101.0", 9),
		limitOrder("b3", domain.Buy, "99.0", 3),
	}

	var submitted, traded uint64
	for _, o := range orders {
		status, trades := b.AddOrder(o)
		require.NotEqual(t, domain.Rejected, status)
		submitted += o.Quantity
		for _, tr := range trades {
			traded += tr.Quantity
		}
	}

	var resting uint64
	for _, l := range b.Bids(100) {
		resting += l.Quantity
	}
	for _, l := range b.Asks(100) {
		resting += l.Quantity
	}

	assert.LessOrEqual(t, traded, submitted)
	assert.Equal(t, submitted, resting+2*traded)
}

func TestClearBook(t *testing.T) {
	b := book.New("TEST")
	b.AddOrder(limitOrder("A", domain.Buy, "99.0", 10))
	b.AddOrder(limitOrder("B", domain.Sell, "100.0", 8))

	b.ClearBook()

	assert.Empty(t, b.Bids(10))
	assert.Empty(t, b.Asks(10))
	bidP, bidQ, askP, askQ := b.BestBidOfferWithQty()
	assert.Nil(t, bidP)
	assert.Nil(t, bidQ)
	assert.Nil(t, askP)
	assert.Nil(t, askQ)
}
