// Package engine holds the decision core: the strategy engine that turns
// market events into order intents, and the dispatcher that feeds it.
package engine

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
	"pairs_go/internal/execution"
	"pairs_go/internal/infra/journal"
	"pairs_go/internal/infra/metrics"
	"pairs_go/internal/ledger"
	"pairs_go/internal/market"
	"pairs_go/internal/orders"
	"pairs_go/internal/signal"
	"pairs_go/pkg/quant"
)

// Params are the build-time trading constants.
type Params struct {
	LotSize          quant.Lots
	PositionLimit    quant.Lots
	TickSize         quant.PriceCents
	HistoryWindow    int
	DivergenceWindow int
	KSigma           float64
}

// Engine owns all mutable trading state for the pair and decides on
// every quote update whether to emit an entry pair. It runs strictly
// single-threaded under the dispatcher; nothing here locks.
type Engine struct {
	lot        quant.Lots
	minBidTick quant.PriceCents
	maxAskTick quant.PriceCents

	states [domain.InstrumentCount]*market.State
	sig    *signal.Divergence
	ledger *ledger.Ledger
	book   *orders.Book

	sink  execution.OrderSink
	store *journal.Journal
	log   *slog.Logger

	halted bool
}

// New creates an engine with fresh state.
func New(p Params, sink execution.OrderSink, store *journal.Journal, log *slog.Logger) *Engine {
	e := &Engine{
		lot:        p.LotSize,
		minBidTick: quant.MinBidNearestTick(p.TickSize),
		maxAskTick: quant.MaxAskNearestTick(p.TickSize),
		sig:        signal.NewDivergence(p.DivergenceWindow, p.KSigma),
		ledger:     ledger.New(p.PositionLimit),
		book:       orders.NewBook(),
		sink:       sink,
		store:      store,
		log:        log,
	}
	for i := range e.states {
		e.states[i] = market.NewState(domain.Instrument(i), p.HistoryWindow)
	}
	return e
}

// State exposes the per-instrument aggregate for dumps and tests.
func (e *Engine) State(inst domain.Instrument) *market.State { return e.states[inst] }

// Ledger exposes the position ledger for dumps and tests.
func (e *Engine) Ledger() *ledger.Ledger { return e.ledger }

// Book exposes the working-order book for dumps and tests.
func (e *Engine) Book() *orders.Book { return e.book }

// Regime returns the current divergence classification.
func (e *Engine) Regime() signal.Regime { return e.sig.Regime() }

// Halted reports whether the session has disconnected.
func (e *Engine) Halted() bool { return e.halted }

// OnOrderBook handles a top-of-book snapshot.
func (e *Engine) OnOrderBook(ev *event.OrderBookUpdate) {
	st := e.states[ev.Instrument]
	if ev.Seq <= st.LastBookSeq {
		e.dropStale(ev.Instrument, "order_book", ev.Seq, st.LastBookSeq)
		return
	}
	st.LastBookSeq = ev.Seq
	e.onQuoteUpdate(ev.Instrument, ev.Quote())
}

// OnTradeTicks handles last-trade context; it carries the same shape and
// feeds the same single decision path as the order book.
func (e *Engine) OnTradeTicks(ev *event.TradeTicks) {
	st := e.states[ev.Instrument]
	if ev.Seq <= st.LastTradeSeq {
		e.dropStale(ev.Instrument, "trade_ticks", ev.Seq, st.LastTradeSeq)
		return
	}
	st.LastTradeSeq = ev.Seq
	e.onQuoteUpdate(ev.Instrument, ev.Quote())
}

func (e *Engine) dropStale(inst domain.Instrument, channel string, got, last quant.SeqNum) {
	metrics.StaleDropsTotal.WithLabelValues(inst.String(), channel).Inc()
	e.log.Warn("stale sequence dropped",
		slog.String("instrument", inst.String()),
		slog.String("channel", channel),
		slog.Uint64("seq", uint64(got)),
		slog.Uint64("last", uint64(last)))
}

// onQuoteUpdate is the single entry point all market events converge on.
func (e *Engine) onQuoteUpdate(inst domain.Instrument, q domain.Quote) {
	e.states[inst].ApplyQuote(q)

	etf, fut := e.states[domain.InstrumentETF], e.states[domain.InstrumentFuture]
	if !etf.Primed() || !fut.Primed() {
		return
	}

	// Recompute only when the histories report equal sample counts; the
	// alignment guard prevents comparing staggered snapshots.
	regime := e.sig.Recompute(etf.History, fut.History)
	metrics.RegimeState.Set(float64(regime))
	e.logPositions(regime)

	if e.halted {
		return
	}

	switch regime {
	case signal.RegimeETFRich:
		// ETF overpriced: sell it at the bid, buy the future at the ask.
		e.tryEnterPair(domain.SideSell, etf.Quote.BestBidPrice, etf.Quote.BestBidVolume,
			domain.SideBuy, fut.Quote.BestAskPrice, fut.Quote.BestAskVolume)
	case signal.RegimeFutureRich:
		e.tryEnterPair(domain.SideBuy, etf.Quote.BestAskPrice, etf.Quote.BestAskVolume,
			domain.SideSell, fut.Quote.BestBidPrice, fut.Quote.BestBidVolume)
	}
}

// tryEnterPair places the ETF entry leg and the future hedge leg with a
// matching volume, or nothing at all. Both orders are recorded before
// any intent is forwarded so acknowledgements always find their id.
func (e *Engine) tryEnterPair(entrySide domain.Side, entryPrice quant.PriceCents, entryDisplayed quant.Lots,
	hedgeSide domain.Side, hedgePrice quant.PriceCents, hedgeDisplayed quant.Lots) {

	if e.book.SideBusy(domain.InstrumentETF, entrySide) {
		return // entry pair outstanding; re-arm on resolution
	}
	if entryPrice == 0 || hedgePrice == 0 {
		return
	}

	vol := quant.MinLots(e.lot, entryDisplayed, hedgeDisplayed,
		e.ledger.Headroom(domain.InstrumentETF, entrySide),
		e.ledger.Headroom(domain.InstrumentFuture, hedgeSide))
	if vol <= 0 {
		metrics.RejectsTotal.WithLabelValues("no_size").Inc()
		return
	}
	if err := e.ledger.CanIncreaseExposure(domain.InstrumentETF, entrySide, vol); err != nil {
		metrics.RejectsTotal.WithLabelValues("limit").Inc()
		e.log.Info("entry refused", slog.String("error", err.Error()))
		return
	}
	if err := e.ledger.CanIncreaseExposure(domain.InstrumentFuture, hedgeSide, vol); err != nil {
		metrics.RejectsTotal.WithLabelValues("limit").Inc()
		e.log.Info("hedge leg refused", slog.String("error", err.Error()))
		return
	}

	entry := e.book.Place(domain.InstrumentETF, entrySide, entryPrice, vol)
	e.journalOrder(entry)
	if err := e.sink.PlaceOrder(entry.ID, entry.Side, entry.Price, entry.Volume, domain.GoodForDay); err != nil {
		// Release the slot; the next eligible tick re-evaluates from scratch.
		_, _ = e.book.OnError(entry.ID)
		metrics.RejectsTotal.WithLabelValues("sink").Inc()
		e.log.Error("entry order send failed", slog.Uint64("order_id", entry.ID), slog.Any("error", err))
		return
	}
	metrics.OrdersTotal.WithLabelValues(entry.Instrument.String(), string(entry.Side)).Inc()
	e.log.Info("entry placed",
		slog.Uint64("order_id", entry.ID),
		slog.String("side", string(entry.Side)),
		slog.Int64("price", int64(entry.Price)),
		slog.Int64("volume", int64(entry.Volume)))

	hedge := e.book.PlaceHedge(domain.InstrumentFuture, hedgeSide, hedgePrice, vol)
	e.journalOrder(hedge)
	if err := e.sink.PlaceHedgeOrder(hedge.ID, hedge.Side, hedge.Price, hedge.Volume); err != nil {
		e.log.Error("hedge order send failed", slog.Uint64("order_id", hedge.ID), slog.Any("error", err))
		return
	}
	metrics.HedgesTotal.WithLabelValues(hedge.Instrument.String(), string(hedge.Side)).Inc()
}

// OnOrderFilled applies a fill to the ledger and immediately hedges the
// paired instrument at a conservative price, so the agent never carries
// naked one-leg exposure. Replayed fills on an exhausted order apply
// zero volume and hedge nothing.
func (e *Engine) OnOrderFilled(ev *event.OrderFilled) {
	applied, o := e.book.ApplyFill(ev.OrderID, ev.Volume)
	if o == nil {
		e.ignoreUnknown(ev.OrderID, "order_filled")
		return
	}
	if applied == 0 {
		return
	}

	e.ledger.ApplyFill(o.Instrument, o.Side, applied, ev.Seq)
	metrics.Position.WithLabelValues(o.Instrument.String()).Set(float64(e.ledger.Position(o.Instrument)))
	e.journalFill(o, int64(ev.Price), int64(applied))
	e.log.Info("order filled",
		slog.Uint64("order_id", ev.OrderID),
		slog.Int64("price", int64(ev.Price)),
		slog.Int64("volume", int64(applied)))

	if e.halted {
		e.log.Warn("fill after disconnect left unhedged", slog.Uint64("order_id", ev.OrderID))
		return
	}

	// Worst acceptable tick: lowest viable bid for sells-to-hedge,
	// highest viable ask for buys-to-hedge.
	hedgeSide := o.Side.Opposite()
	hedgePrice := e.minBidTick
	if hedgeSide == domain.SideBuy {
		hedgePrice = e.maxAskTick
	}

	// The limit binds by refusal here too: the paired leg may already
	// carry an in-flight entry hedge, so cap against headroom net of
	// outstanding hedge volume.
	paired := o.Instrument.Paired()
	hedgeVol := applied
	room := e.ledger.Headroom(paired, hedgeSide) - e.book.HedgeExposure(paired, hedgeSide)
	if room < hedgeVol {
		hedgeVol = room
	}
	if hedgeVol <= 0 {
		metrics.RejectsTotal.WithLabelValues("hedge_limit").Inc()
		e.log.Warn("hedge withheld, no position headroom",
			slog.Uint64("order_id", ev.OrderID),
			slog.Int64("fill", int64(applied)))
		return
	}
	if hedgeVol < applied {
		e.log.Warn("hedge volume capped by position limit",
			slog.Uint64("order_id", ev.OrderID),
			slog.Int64("fill", int64(applied)),
			slog.Int64("hedge", int64(hedgeVol)))
	}
	hedge := e.book.PlaceHedge(paired, hedgeSide, hedgePrice, hedgeVol)
	e.journalOrder(hedge)
	if err := e.sink.PlaceHedgeOrder(hedge.ID, hedge.Side, hedge.Price, hedge.Volume); err != nil {
		e.log.Error("hedge send failed", slog.Uint64("order_id", hedge.ID), slog.Any("error", err))
		return
	}
	metrics.HedgesTotal.WithLabelValues(hedge.Instrument.String(), string(hedge.Side)).Inc()
}

// OnOrderStatus resolves or updates a working order. Unknown ids are
// logged and ignored; they are already resolved or belong to the hedge
// path.
func (e *Engine) OnOrderStatus(ev *event.OrderStatus) {
	// Fees ride the terminal status, which can arrive after a full fill
	// already resolved the order, so journal them before the book lookup.
	if ev.RemainingVolume == 0 && ev.FeesCents != 0 {
		if err := e.store.RecordFees(ev.OrderID, decimal.NewFromInt(ev.FeesCents)); err != nil {
			e.log.Error("journal fees failed", slog.Uint64("order_id", ev.OrderID), slog.Any("error", err))
		}
	}

	o, err := e.book.OnStatus(ev.OrderID, ev.FilledVolume, ev.RemainingVolume)
	if err != nil {
		e.ignoreUnknown(ev.OrderID, "order_status")
		return
	}
	if ev.RemainingVolume == 0 {
		e.log.Info("order resolved",
			slog.Uint64("order_id", ev.OrderID),
			slog.String("status", o.Status),
			slog.Int64("fees_cents", ev.FeesCents))
	}
}

// OnOrderError resolves a rejected order with zero remaining volume,
// releasing its reserved state. Non-fatal; no automatic retry.
func (e *Engine) OnOrderError(ev *event.OrderError) {
	o, err := e.book.OnError(ev.OrderID)
	if err != nil {
		e.ignoreUnknown(ev.OrderID, "order_error")
		return
	}
	rej := &domain.RejectedOrderError{ID: ev.OrderID, Reason: ev.Message}
	metrics.RejectsTotal.WithLabelValues("venue").Inc()
	e.log.Warn("order rejected",
		slog.String("error", rej.Error()),
		slog.String("side", string(o.Side)),
		slog.String("instrument", o.Instrument.String()))
}

// OnHedgeFilled applies a hedge fill to the paired instrument's position.
func (e *Engine) OnHedgeFilled(ev *event.HedgeFilled) {
	applied, o := e.book.ApplyHedgeFill(ev.OrderID, ev.Volume)
	if o == nil {
		e.ignoreUnknown(ev.OrderID, "hedge_filled")
		return
	}
	if applied == 0 {
		return
	}
	e.ledger.ApplyFill(o.Instrument, o.Side, applied, ev.Seq)
	metrics.Position.WithLabelValues(o.Instrument.String()).Set(float64(e.ledger.Position(o.Instrument)))
	e.journalFill(o, int64(ev.Price), int64(applied))
	e.log.Info("hedge filled",
		slog.Uint64("order_id", ev.OrderID),
		slog.Int64("price", int64(ev.Price)),
		slog.Int64("volume", int64(applied)))
}

// OnDisconnect stops new order emission. Ledger and order state survive
// for post-mortem accounting.
func (e *Engine) OnDisconnect(ev *event.Disconnect) {
	e.halted = true
	e.log.Info("execution connection lost; order emission halted")
	if err := e.store.RecordSession("disconnect",
		int64(e.ledger.Position(domain.InstrumentETF)),
		int64(e.ledger.Position(domain.InstrumentFuture))); err != nil {
		e.log.Error("journal session record failed", slog.Any("error", err))
	}
}

func (e *Engine) ignoreUnknown(id uint64, context string) {
	err := &domain.UnknownOrderError{ID: id}
	e.log.Warn("ignored event for untracked order",
		slog.String("context", context),
		slog.String("error", err.Error()))
}

func (e *Engine) logPositions(regime signal.Regime) {
	e.log.Debug("positions",
		slog.Int64("etf", int64(e.ledger.Position(domain.InstrumentETF))),
		slog.Int64("future", int64(e.ledger.Position(domain.InstrumentFuture))),
		slog.Int("working", e.book.Outstanding()),
		slog.String("regime", regime.String()))
}

func (e *Engine) journalOrder(o *domain.WorkingOrder) {
	if err := e.store.RecordOrder(o); err != nil {
		e.log.Error("journal order failed", slog.Uint64("order_id", o.ID), slog.Any("error", err))
	}
}

func (e *Engine) journalFill(o *domain.WorkingOrder, price, vol int64) {
	if err := e.store.RecordFill(o, price, vol, decimal.Zero); err != nil {
		e.log.Error("journal fill failed", slog.Uint64("order_id", o.ID), slog.Any("error", err))
	}
}
