package transport

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchbook/internal/engine"
	"matchbook/internal/wire"
)

const (
	channelOrdersNew     = "orders:new"
	channelEngineControl = "engine:control"
	channelMarketEvents  = "market:events"
	channelTradesOut     = "trades:executed"
	channelOrdersUpdated = "orders:updated"
	bboChannelPrefix     = "marketdata:bbo:"
	bookChannelPrefix    = "marketdata:book:"

	commandResetEngine = "reset_engine"

	defaultWorkers = 10
	taskQueueSize  = 256
)

// Subscriber reads the engine's three inbound channels, decodes each
// payload, and drives the Dispatcher; every resulting event is published
// back through the same Bus.
type Subscriber struct {
	bus        Bus
	dispatcher *engine.Dispatcher
	nWorkers   int
}

// NewSubscriber wires bus to dispatcher with the default worker count.
func NewSubscriber(bus Bus, dispatcher *engine.Dispatcher) *Subscriber {
	return &Subscriber{bus: bus, dispatcher: dispatcher, nWorkers: defaultWorkers}
}

// Run subscribes to the inbound channels and drains them with a bounded
// worker pool of tomb-managed goroutines until t is dying. ctx is the
// context returned alongside t by tomb.WithContext, so Subscribe's
// dedicated connection dies when the tomb does.
func (s *Subscriber) Run(t *tomb.Tomb, ctx context.Context) error {
	messages, err := s.bus.Subscribe(ctx, channelOrdersNew, channelEngineControl, channelMarketEvents)
	if err != nil {
		return err
	}

	tasks := make(chan Message, taskQueueSize)
	t.Go(func() error {
		for {
			select {
			case <-t.Dying():
				return nil
			case msg, ok := <-messages:
				if !ok {
					return nil
				}
				select {
				case tasks <- msg:
				case <-t.Dying():
					return nil
				}
			}
		}
	})

	for i := 0; i < s.nWorkers; i++ {
		t.Go(func() error {
			for {
				select {
				case <-t.Dying():
					return nil
				case msg := <-tasks:
					s.handle(ctx, msg)
				}
			}
		})
	}

	return nil
}

// handle decodes one message and routes it to the dispatcher. Decode
// failures are logged and dropped; they never reach the dispatcher.
func (s *Subscriber) handle(ctx context.Context, msg Message) {
	switch msg.Channel {
	case channelOrdersNew:
		s.handleOrder(ctx, msg.Payload)
	case channelEngineControl:
		s.handleControl(msg.Payload)
	case channelMarketEvents:
		s.handleMarketEvent(ctx, msg.Payload)
	default:
		log.Warn().Str("channel", msg.Channel).Msg("unrecognized channel")
	}
}

func (s *Subscriber) handleOrder(ctx context.Context, payload []byte) {
	var w wire.Order
	if err := json.Unmarshal(payload, &w); err != nil {
		log.Error().Err(err).Str("channel", channelOrdersNew).Msg("decode error, dropping message")
		return
	}
	if !w.ValidSide() {
		log.Error().Str("channel", channelOrdersNew).Str("side", w.Side).Msg("unrecognized side, dropping message")
		return
	}

	s.dispatcher.SubmitOrder(w.ToDomain(), func(events engine.Events) {
		s.publishEvents(ctx, w.Symbol, events)
	})
}

func (s *Subscriber) handleControl(payload []byte) {
	var w wire.ControlCommand
	if err := json.Unmarshal(payload, &w); err != nil {
		log.Error().Err(err).Str("channel", channelEngineControl).Msg("decode error, dropping message")
		return
	}

	switch w.Command {
	case commandResetEngine:
		s.dispatcher.ResetEngine()
	default:
		log.Warn().Str("command", w.Command).Msg("unknown engine control command, ignoring")
	}
}

func (s *Subscriber) handleMarketEvent(ctx context.Context, payload []byte) {
	var w wire.MarketEvent
	if err := json.Unmarshal(payload, &w); err != nil {
		log.Error().Err(err).Str("channel", channelMarketEvents).Msg("decode error, dropping message")
		return
	}

	s.dispatcher.ClearSymbol(w.Symbol, func(events engine.Events) {
		s.publishEvents(ctx, w.Symbol, events)
	})
}

// publishEvents renders and publishes everything a command produced:
// BBO, then snapshot, then trades in production order, then the taker's
// order update. Publish errors are logged and not retried; engine state
// is never rolled back.
func (s *Subscriber) publishEvents(ctx context.Context, symbol string, events engine.Events) {
	if events.BBO != nil {
		s.publish(ctx, bboChannelPrefix+symbol, wire.BboUpdateFromDomain(*events.BBO))
	}
	if events.Snapshot != nil {
		s.publish(ctx, bookChannelPrefix+symbol, wire.DepthSnapshotFromDomain(*events.Snapshot))
	}
	for _, trade := range events.Trades {
		s.publish(ctx, channelTradesOut, wire.TradeFromDomain(trade))
	}
	if events.OrderUpdate != nil {
		s.publish(ctx, channelOrdersUpdated, wire.OrderUpdateFromDomain(*events.OrderUpdate))
	}
}

func (s *Subscriber) publish(ctx context.Context, channel string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("encode error, dropping event")
		return
	}
	if err := s.bus.Publish(ctx, channel, payload); err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("publish error")
	}
}
