// Package engine owns the symbol registry and routes decoded commands
// (submit order, market event, reset engine) to the right per-symbol
// order book, driving projector re-evaluation and event emission after
// every mutation.
package engine

import (
	"sync"

	"github.com/rs/zerolog/log"

	"matchbook/internal/book"
	"matchbook/internal/domain"
	"matchbook/internal/projector"
)

// symbolState bundles one symbol's book with the lock that serializes
// access to it. The registry's own lock only ever guards creation/lookup
// of entries in the map; it is never held across a book mutation.
type symbolState struct {
	mu   sync.Mutex
	book *book.OrderBook
}

// Events is everything a single command can produce: BBO (if changed),
// snapshot (if changed), trades in production order, then the taker's
// order update.
type Events struct {
	BBO         *domain.BboUpdate
	Snapshot    *domain.DepthSnapshot
	Trades      []domain.Trade
	OrderUpdate *OrderUpdate
}

// Sink consumes the events a single command produced. It is invoked
// while the command's symbol lock is still held, so that emission order
// within a symbol always matches mutation order; sinks must not call
// back into the Dispatcher for the same symbol.
type Sink func(Events)

// OrderUpdate is the taker's final status, published on orders:updated.
// RemainingQuantity is only set when Status is Filled (as zero).
type OrderUpdate struct {
	ID                string
	Status            domain.Status
	RemainingQuantity *uint64
}

// Dispatcher is the per-process registry mapping symbol to OrderBook.
type Dispatcher struct {
	reg  sync.RWMutex
	syms map[string]*symbolState

	proj  *projector.Projector
	depth int
}

// New creates an empty dispatcher. depth is the number of levels per
// side included in emitted depth snapshots.
func New(depth int) *Dispatcher {
	return &Dispatcher{
		syms:  make(map[string]*symbolState),
		proj:  projector.New(),
		depth: depth,
	}
}

// stateFor returns the symbolState for symbol, creating an empty book
// for it on first use.
func (d *Dispatcher) stateFor(symbol string) *symbolState {
	d.reg.RLock()
	s, ok := d.syms[symbol]
	d.reg.RUnlock()
	if ok {
		return s
	}

	d.reg.Lock()
	defer d.reg.Unlock()
	if s, ok := d.syms[symbol]; ok {
		return s
	}
	s = &symbolState{book: book.New(symbol)}
	d.syms[symbol] = s
	return s
}

// SubmitOrder admits order into its symbol's book and hands the
// resulting events to emit. The whole sequence (mutation, projection,
// change detection, emission) runs under the symbol's lock so
// concurrent submits on the same symbol cannot interleave their
// emissions.
func (d *Dispatcher) SubmitOrder(order domain.Order, emit Sink) {
	s := d.stateFor(order.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	status, trades := s.book.AddOrder(order)

	var ev Events
	if bbo := projector.ComputeBBO(s.book); d.proj.ObserveBBO(bbo) {
		ev.BBO = &bbo
	}
	if snapshot := projector.ComputeSnapshot(s.book, d.depth); d.proj.ObserveSnapshot(snapshot) {
		ev.Snapshot = &snapshot
	}
	ev.Trades = trades

	update := &OrderUpdate{ID: order.ID, Status: status}
	if status == domain.Filled {
		zero := uint64(0)
		update.RemainingQuantity = &zero
	}
	ev.OrderUpdate = update

	emit(ev)
}

// ClearSymbol clears the named symbol's book, if it exists, and hands a
// cleared BBO plus an empty snapshot to emit. A clear always publishes,
// bypassing change detection. A symbol the dispatcher has never seen
// produces no events (there is nothing to clear).
func (d *Dispatcher) ClearSymbol(symbol string, emit Sink) bool {
	d.reg.RLock()
	s, ok := d.syms[symbol]
	d.reg.RUnlock()
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.book.ClearBook()
	d.proj.Reset(symbol)
	bbo := projector.ComputeBBO(s.book)
	snapshot := projector.ComputeSnapshot(s.book, d.depth)

	emit(Events{BBO: &bbo, Snapshot: &snapshot})
	return true
}

// ResetEngine drops every book silently: no per-symbol cleared
// BBO/snapshot burst is produced.
func (d *Dispatcher) ResetEngine() {
	d.reg.Lock()
	d.syms = make(map[string]*symbolState)
	d.reg.Unlock()

	d.proj.ResetAll()
	log.Info().Msg("engine reset: all books dropped")
}
