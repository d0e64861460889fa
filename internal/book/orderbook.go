// Package book implements the per-symbol limit order book: the
// authoritative resting-order state, the price-time-priority matching
// algorithm, and the read-only projections (BBO, depth) over that state.
package book

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"

	"matchbook/internal/domain"
)

// priceLevel is a FIFO queue of resting orders at a single price. Orders
// are consumed from the head; a filled maker is spliced out lazily once
// the level has been walked.
type priceLevel struct {
	price  decimal.Decimal
	orders []*domain.Order
}

func (l *priceLevel) totalRemaining() uint64 {
	var total uint64
	for _, o := range l.orders {
		total += o.RemainingQuantity
	}
	return total
}

type levels = btree.BTreeG[*priceLevel]

// OrderBook is the authoritative resting-order state for one symbol. It
// owns the matching algorithm and keeps the book non-crossed: matching
// drives any crossing to zero before an order rests.
type OrderBook struct {
	Symbol string

	bids *levels // sorted descending by price (best bid first)
	asks *levels // sorted ascending by price (best ask first)
}

// New creates an empty book for the given symbol.
func New(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price.GreaterThan(b.price)
	})
	asks := btree.NewBTreeG(func(a, b *priceLevel) bool {
		return a.price.LessThan(b.price)
	})
	return &OrderBook{Symbol: symbol, bids: bids, asks: asks}
}

// AddOrder admits an incoming limit order. It validates, matches
// against the resting opposite side under price-time priority, and rests
// any unfilled remainder. The caller retains ownership of order; AddOrder
// mutates a local copy and returns the trades produced plus the order's
// final status.
func (b *OrderBook) AddOrder(order domain.Order) (domain.Status, []domain.Trade) {
	order.EnsureRemainingQuantity()

	if order.Symbol != b.Symbol {
		return domain.Rejected, nil
	}
	if !order.Price.IsPositive() {
		return domain.Rejected, nil
	}
	if order.Quantity == 0 {
		return domain.Rejected, nil
	}

	order.ExchTimestamp = time.Now()
	if order.Status == domain.New {
		order.Status = domain.Accepted
	}

	var trades []domain.Trade
	switch order.Side {
	case domain.Buy:
		trades = b.matchBuy(&order)
	case domain.Sell:
		trades = b.matchSell(&order)
	}

	if order.RemainingQuantity == 0 {
		return domain.Filled, trades
	}

	finalStatus := domain.Accepted
	if order.RemainingQuantity < order.Quantity {
		finalStatus = domain.PartiallyFilled
	}
	order.Status = finalStatus
	b.restOrder(&order)
	return finalStatus, trades
}

// matchBuy walks the ask side ascending while it crosses the incoming
// buy's limit price, consuming maker liquidity FIFO within each level.
func (b *OrderBook) matchBuy(taker *domain.Order) []domain.Trade {
	var trades []domain.Trade
	var emptied []decimal.Decimal

	b.asks.Scan(func(level *priceLevel) bool {
		if taker.RemainingQuantity == 0 || level.price.GreaterThan(taker.Price) {
			return false
		}
		trades = append(trades, matchLevel(taker, level, taker.Symbol)...)
		if len(level.orders) == 0 {
			emptied = append(emptied, level.price)
		}
		return taker.RemainingQuantity > 0
	})

	for _, p := range emptied {
		b.asks.Delete(&priceLevel{price: p})
	}
	return trades
}

// matchSell walks the bid side descending while it crosses the incoming
// sell's limit price.
func (b *OrderBook) matchSell(taker *domain.Order) []domain.Trade {
	var trades []domain.Trade
	var emptied []decimal.Decimal

	b.bids.Scan(func(level *priceLevel) bool {
		if taker.RemainingQuantity == 0 || level.price.LessThan(taker.Price) {
			return false
		}
		trades = append(trades, matchLevel(taker, level, taker.Symbol)...)
		if len(level.orders) == 0 {
			emptied = append(emptied, level.price)
		}
		return taker.RemainingQuantity > 0
	})

	for _, p := range emptied {
		b.bids.Delete(&priceLevel{price: p})
	}
	return trades
}

// matchLevel consumes makers from the head of level in FIFO order against
// taker, emitting a Trade per fill at the level's (maker's) price. Filled
// makers are pruned from the level once the walk is done.
func matchLevel(taker *domain.Order, level *priceLevel, symbol string) []domain.Trade {
	var trades []domain.Trade
	consumed := 0
	for _, maker := range level.orders {
		if taker.RemainingQuantity == 0 {
			break
		}
		qty := min(taker.RemainingQuantity, maker.RemainingQuantity)
		if qty > 0 {
			trades = append(trades, domain.Trade{
				ID:           uuid.NewString(),
				Symbol:       symbol,
				Price:        level.price,
				Quantity:     qty,
				TakerOrderID: taker.ID,
				MakerOrderID: maker.ID,
				Timestamp:    time.Now(),
			})
			taker.RemainingQuantity -= qty
			maker.RemainingQuantity -= qty
			if maker.RemainingQuantity == 0 {
				maker.Status = domain.Filled
			} else {
				maker.Status = domain.PartiallyFilled
			}
		}
		if maker.Status == domain.Filled {
			consumed++
		} else {
			break
		}
	}
	if consumed > 0 {
		level.orders = level.orders[consumed:]
	}
	return trades
}

// restOrder appends the unfilled remainder of order to its side's level,
// creating the level if absent.
func (b *OrderBook) restOrder(order *domain.Order) {
	tree := b.bids
	if order.Side == domain.Sell {
		tree = b.asks
	}

	resting := *order
	if level, ok := tree.Get(&priceLevel{price: order.Price}); ok {
		level.orders = append(level.orders, &resting)
		return
	}
	tree.Set(&priceLevel{price: order.Price, orders: []*domain.Order{&resting}})
}

// ClearBook drops all resting orders, returning the book to its initial
// empty state.
func (b *OrderBook) ClearBook() {
	b.bids.Clear()
	b.asks.Clear()
}

// BestBidOfferWithQty reports the aggregated quantity at the top of each
// side. A nil price/qty means that side is absent or its aggregate
// quantity is zero.
func (b *OrderBook) BestBidOfferWithQty() (bidPrice *decimal.Decimal, bidQty *uint64, askPrice *decimal.Decimal, askQty *uint64) {
	if level, ok := b.bids.Min(); ok {
		if qty := level.totalRemaining(); qty > 0 {
			p := level.price
			bidPrice, bidQty = &p, &qty
		}
	}
	if level, ok := b.asks.Min(); ok {
		if qty := level.totalRemaining(); qty > 0 {
			p := level.price
			askPrice, askQty = &p, &qty
		}
	}
	return
}

// Bids returns up to depth non-empty bid levels, highest price first.
func (b *OrderBook) Bids(depth int) []domain.PriceLevelInfo {
	var out []domain.PriceLevelInfo
	b.bids.Scan(func(level *priceLevel) bool {
		if len(out) >= depth {
			return false
		}
		if qty := level.totalRemaining(); qty > 0 {
			out = append(out, domain.PriceLevelInfo{Price: level.price, Quantity: qty})
		}
		return true
	})
	return out
}

// Asks returns up to depth non-empty ask levels, lowest price first.
func (b *OrderBook) Asks(depth int) []domain.PriceLevelInfo {
	var out []domain.PriceLevelInfo
	b.asks.Scan(func(level *priceLevel) bool {
		if len(out) >= depth {
			return false
		}
		if qty := level.totalRemaining(); qty > 0 {
			out = append(out, domain.PriceLevelInfo{Price: level.price, Quantity: qty})
		}
		return true
	})
	return out
}
