package event

import "sync"

// Pools for the two high-frequency event types. Market-data frames arrive
// several times a second per instrument; execution events are rare enough
// to allocate directly.
//
// Usage:
//
//	ev := AcquireOrderBookUpdate()
//	// ... populate and send ...
//	ReleaseOrderBookUpdate(ev) // after the dispatcher has processed it
var orderBookPool = sync.Pool{
	New: func() interface{} {
		return &OrderBookUpdate{}
	},
}

// AcquireOrderBookUpdate gets an OrderBookUpdate from the pool. The
// returned event has zero values and must be initialized.
func AcquireOrderBookUpdate() *OrderBookUpdate {
	return orderBookPool.Get().(*OrderBookUpdate)
}

// ReleaseOrderBookUpdate zeroes the event and returns it to the pool.
func ReleaseOrderBookUpdate(ev *OrderBookUpdate) {
	if ev == nil {
		return
	}
	*ev = OrderBookUpdate{}
	orderBookPool.Put(ev)
}

var tradeTicksPool = sync.Pool{
	New: func() interface{} {
		return &TradeTicks{}
	},
}

// AcquireTradeTicks gets a TradeTicks from the pool.
func AcquireTradeTicks() *TradeTicks {
	return tradeTicksPool.Get().(*TradeTicks)
}

// ReleaseTradeTicks zeroes the event and returns it to the pool.
func ReleaseTradeTicks(ev *TradeTicks) {
	if ev == nil {
		return
	}
	*ev = TradeTicks{}
	tradeTicksPool.Put(ev)
}

// Warmup pre-allocates a batch of pooled events to smooth out startup GC
// pressure.
func Warmup() {
	const batchSize = 256

	books := make([]*OrderBookUpdate, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		books = append(books, AcquireOrderBookUpdate())
	}
	for _, ev := range books {
		ReleaseOrderBookUpdate(ev)
	}

	ticks := make([]*TradeTicks, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		ticks = append(ticks, AcquireTradeTicks())
	}
	for _, ev := range ticks {
		ReleaseTradeTicks(ev)
	}
}
