// Package wire defines the JSON payload shapes exchanged on the pub/sub
// channels, and the conversions to/from the domain types the engine
// operates on. Prices cross the wire as decimal strings.
package wire

import (
	"time"

	"github.com/shopspring/decimal"

	"matchbook/internal/domain"
	"matchbook/internal/engine"
)

// Order is the wire shape of orders:new. Status and RemainingQuantity
// are optional inbound and default to "new" / quantity respectively.
type Order struct {
	ID                string          `json:"id"`
	Side              string          `json:"side"`
	Symbol            string          `json:"symbol"`
	Price             decimal.Decimal `json:"price"`
	Quantity          uint64          `json:"quantity"`
	Timestamp         time.Time       `json:"timestamp"`
	Status            string          `json:"status,omitempty"`
	RemainingQuantity uint64          `json:"remaining_quantity,omitempty"`
}

// ValidSide reports whether Side is a recognized value. Callers should
// check this before calling ToDomain; an unrecognized side silently
// becomes domain.Buy otherwise.
func (o Order) ValidSide() bool {
	return o.Side == "buy" || o.Side == "sell"
}

// ToDomain converts a wire Order into the domain.Order the engine
// operates on.
func (o Order) ToDomain() domain.Order {
	side := domain.Buy
	if o.Side == "sell" {
		side = domain.Sell
	}
	status := domain.New
	if o.Status != "" {
		status = parseStatus(o.Status)
	}
	remaining := o.RemainingQuantity
	if remaining == 0 {
		remaining = o.Quantity
	}
	return domain.Order{
		ID:                o.ID,
		Side:              side,
		Symbol:            o.Symbol,
		Price:             o.Price,
		Quantity:          o.Quantity,
		RemainingQuantity: remaining,
		Timestamp:         o.Timestamp,
		Status:            status,
	}
}

func parseStatus(s string) domain.Status {
	switch s {
	case "accepted":
		return domain.Accepted
	case "rejected":
		return domain.Rejected
	case "filled":
		return domain.Filled
	case "partially_filled":
		return domain.PartiallyFilled
	case "cancelled":
		return domain.Cancelled
	default:
		return domain.New
	}
}

// Trade is the wire shape published on trades:executed.
type Trade struct {
	TradeID      string          `json:"trade_id"`
	Symbol       string          `json:"symbol"`
	Price        decimal.Decimal `json:"price"`
	Quantity     uint64          `json:"quantity"`
	TakerOrderID string          `json:"taker_order_id"`
	MakerOrderID string          `json:"maker_order_id"`
	Timestamp    time.Time       `json:"timestamp"`
}

// TradeFromDomain renders a domain.Trade onto the wire.
func TradeFromDomain(t domain.Trade) Trade {
	return Trade{
		TradeID:      t.ID,
		Symbol:       t.Symbol,
		Price:        t.Price,
		Quantity:     t.Quantity,
		TakerOrderID: t.TakerOrderID,
		MakerOrderID: t.MakerOrderID,
		Timestamp:    t.Timestamp,
	}
}

// OrderUpdate is the wire shape published on orders:updated.
// RemainingQuantity is only present when Status is "filled".
type OrderUpdate struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	RemainingQuantity *uint64 `json:"remaining_quantity,omitempty"`
}

// OrderUpdateFromDomain renders an engine.OrderUpdate onto the wire.
func OrderUpdateFromDomain(u engine.OrderUpdate) OrderUpdate {
	return OrderUpdate{
		ID:                u.ID,
		Status:            u.Status.String(),
		RemainingQuantity: u.RemainingQuantity,
	}
}

// BboUpdate is the wire shape published on marketdata:bbo:<symbol>.
type BboUpdate struct {
	Symbol    string           `json:"symbol"`
	BidPrice  *decimal.Decimal `json:"bid_price"`
	BidQty    *uint64          `json:"bid_qty"`
	AskPrice  *decimal.Decimal `json:"ask_price"`
	AskQty    *uint64          `json:"ask_qty"`
	Timestamp time.Time        `json:"timestamp"`
}

// BboUpdateFromDomain renders a domain.BboUpdate onto the wire.
func BboUpdateFromDomain(b domain.BboUpdate) BboUpdate {
	return BboUpdate{
		Symbol:    b.Symbol,
		BidPrice:  b.BidPrice,
		BidQty:    b.BidQty,
		AskPrice:  b.AskPrice,
		AskQty:    b.AskQty,
		Timestamp: b.Timestamp,
	}
}

// PriceLevelInfo is one level of a DepthSnapshot on the wire.
type PriceLevelInfo struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint64          `json:"quantity"`
}

// DepthSnapshot is the wire shape published on marketdata:book:<symbol>.
type DepthSnapshot struct {
	Symbol    string           `json:"symbol"`
	Bids      []PriceLevelInfo `json:"bids"`
	Asks      []PriceLevelInfo `json:"asks"`
	Timestamp time.Time        `json:"timestamp"`
}

// DepthSnapshotFromDomain renders a domain.DepthSnapshot onto the wire.
func DepthSnapshotFromDomain(s domain.DepthSnapshot) DepthSnapshot {
	return DepthSnapshot{
		Symbol:    s.Symbol,
		Bids:      levelsFromDomain(s.Bids),
		Asks:      levelsFromDomain(s.Asks),
		Timestamp: s.Timestamp,
	}
}

func levelsFromDomain(in []domain.PriceLevelInfo) []PriceLevelInfo {
	out := make([]PriceLevelInfo, len(in))
	for i, l := range in {
		out[i] = PriceLevelInfo{Price: l.Price, Quantity: l.Quantity}
	}
	return out
}

// ControlCommand is the wire shape of engine:control.
type ControlCommand struct {
	Command string `json:"command"`
}

// MarketEvent is the wire shape of market:events. PercentShift is
// decoded and retained for forward compatibility but ignored by the
// dispatcher: only the clear-book trigger fires.
type MarketEvent struct {
	Symbol       string  `json:"symbol"`
	PercentShift float64 `json:"percent_shift"`
}
