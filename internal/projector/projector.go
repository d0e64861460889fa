// Package projector derives market-data projections (BBO, depth snapshot)
// from an order book and gates emission with structural-equality change
// detection.
package projector

import (
	"sync"
	"time"

	"matchbook/internal/book"
	"matchbook/internal/domain"
)

// DefaultDepth is the depth used by the process entrypoint for
// marketdata:book:<symbol> snapshots.
const DefaultDepth = 5

// ComputeBBO reads the best bid/ask price and aggregated remaining
// quantity off b and returns the current BboUpdate for its symbol.
func ComputeBBO(b *book.OrderBook) domain.BboUpdate {
	bidPrice, bidQty, askPrice, askQty := b.BestBidOfferWithQty()
	return domain.BboUpdate{
		Symbol:    b.Symbol,
		BidPrice:  bidPrice,
		BidQty:    bidQty,
		AskPrice:  askPrice,
		AskQty:    askQty,
		Timestamp: time.Now(),
	}
}

// ComputeSnapshot reads up to depth non-empty levels per side off b.
func ComputeSnapshot(b *book.OrderBook, depth int) domain.DepthSnapshot {
	return domain.DepthSnapshot{
		Symbol:    b.Symbol,
		Bids:      b.Bids(depth),
		Asks:      b.Asks(depth),
		Timestamp: time.Now(),
	}
}

// Projector caches the last-emitted BBO and snapshot per symbol so the
// Dispatcher can gate re-emission on structural change (timestamp
// excluded).
// Projector's maps are touched from whichever symbol-lock-holding
// goroutine last matched an order, which can be a different goroutine per
// symbol; mu guards the maps themselves (Go maps are not safe for
// concurrent access even across disjoint keys).
type Projector struct {
	mu           sync.Mutex
	lastBBO      map[string]domain.BboUpdate
	lastSnapshot map[string]domain.DepthSnapshot
}

// New creates an empty projector with no cached state.
func New() *Projector {
	return &Projector{
		lastBBO:      make(map[string]domain.BboUpdate),
		lastSnapshot: make(map[string]domain.DepthSnapshot),
	}
}

// ObserveBBO records current as the cached BBO for its symbol if it
// differs structurally (or there is no prior value and current is
// non-empty), reporting whether a new emission is warranted.
func (p *Projector) ObserveBBO(current domain.BboUpdate) (changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, ok := p.lastBBO[current.Symbol]
	if ok && prev.StructurallyEqual(current) {
		return false
	}
	if !ok && current.Empty() {
		return false
	}
	p.lastBBO[current.Symbol] = current
	return true
}

// ObserveSnapshot is ObserveBBO's counterpart for depth snapshots.
func (p *Projector) ObserveSnapshot(current domain.DepthSnapshot) (changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, ok := p.lastSnapshot[current.Symbol]
	if ok && prev.StructurallyEqual(current) {
		return false
	}
	if !ok && current.Empty() {
		return false
	}
	p.lastSnapshot[current.Symbol] = current
	return true
}

// Reset drops cached state for symbol, e.g. after a market-event clear.
func (p *Projector) Reset(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.lastBBO, symbol)
	delete(p.lastSnapshot, symbol)
}

// ResetAll drops cached state for every symbol, e.g. after an engine reset.
func (p *Projector) ResetAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastBBO = make(map[string]domain.BboUpdate)
	p.lastSnapshot = make(map[string]domain.DepthSnapshot)
}
