package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
	"pairs_go/internal/infra/metrics"
	"pairs_go/pkg/quant"
)

// Dispatcher is the single-threaded event processor. All market-data and
// execution callbacks funnel through its inbox and are processed to
// completion, one at a time, before the next is handled.
type Dispatcher struct {
	inbox  chan event.Event
	local  []event.Event // acks queued mid-callback; drained before the next receive
	engine *Engine
	log    *slog.Logger
}

// NewDispatcher creates a dispatcher over the given engine.
func NewDispatcher(inboxSize int, eng *Engine, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		inbox:  make(chan event.Event, inboxSize),
		engine: eng,
		log:    log,
	}
}

// Inbox returns the event channel. Gateway workers and other goroutines
// send here.
func (d *Dispatcher) Inbox() chan<- event.Event { return d.inbox }

// EnqueueLocal queues an event produced synchronously inside the current
// callback, such as a paper venue acknowledgement. It never blocks; a
// send into the inbox from the loop's own goroutine would deadlock once
// the channel is full. Must only be called from the dispatch goroutine.
func (d *Dispatcher) EnqueueLocal(ev event.Event) {
	d.local = append(d.local, ev)
}

// Run starts the event loop. It MUST run in a single goroutine; the
// engine's state is unlocked by contract.
func (d *Dispatcher) Run(ctx context.Context) {
	d.log.Info("dispatcher started")

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("panic in event loop", slog.Any("panic", r))
			d.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopping")
			return
		case ev := <-d.inbox:
			d.processEvent(ev)
			d.drainLocal()
		}
	}
}

// drainLocal processes locally queued acknowledgements, including any
// that processing them queues in turn.
func (d *Dispatcher) drainLocal() {
	for len(d.local) > 0 {
		ev := d.local[0]
		d.local = d.local[1:]
		d.processEvent(ev)
	}
}

func (d *Dispatcher) processEvent(ev event.Event) {
	metrics.EventsTotal.WithLabelValues(string(ev.GetKind())).Inc()

	switch e := ev.(type) {
	case *event.OrderBookUpdate:
		d.engine.OnOrderBook(e)
		event.ReleaseOrderBookUpdate(e)
	case *event.TradeTicks:
		d.engine.OnTradeTicks(e)
		event.ReleaseTradeTicks(e)
	case *event.OrderFilled:
		d.engine.OnOrderFilled(e)
	case *event.OrderStatus:
		d.engine.OnOrderStatus(e)
	case *event.OrderError:
		d.engine.OnOrderError(e)
	case *event.HedgeFilled:
		d.engine.OnHedgeFilled(e)
	case *event.Disconnect:
		d.engine.OnDisconnect(e)
	default:
		d.log.Warn("unknown event type", slog.String("kind", string(ev.GetKind())))
	}
}

// stateDump is the post-mortem snapshot written on panic.
type stateDump struct {
	Halted    bool                            `json:"halted"`
	Regime    string                          `json:"regime"`
	Positions map[string]quant.Lots           `json:"positions"`
	Working   map[uint64]*domain.WorkingOrder `json:"working"`
	Hedges    map[uint64]*domain.WorkingOrder `json:"hedges"`
}

// DumpState writes the engine's internal state to a file for post-mortem
// inspection.
func (d *Dispatcher) DumpState(filename string) {
	d.log.Info("dumping internal state", slog.String("file", filename))

	dump := stateDump{
		Halted: d.engine.Halted(),
		Regime: d.engine.Regime().String(),
		Positions: map[string]quant.Lots{
			domain.InstrumentETF.String():    d.engine.Ledger().Position(domain.InstrumentETF),
			domain.InstrumentFuture.String(): d.engine.Ledger().Position(domain.InstrumentFuture),
		},
		Working: d.engine.Book().Working(),
		Hedges:  d.engine.Book().Hedges(),
	}

	b, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		d.log.Error("failed to marshal state", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		d.log.Error("failed to write state dump", slog.Any("error", err))
	}
}
