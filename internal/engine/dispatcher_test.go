package engine

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
	"pairs_go/internal/execution"
)

func TestDispatcher_DeliversMarketEvents(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(10, e, e.log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	d.Inbox() <- bookEvent(domain.InstrumentETF, 1, 9000, 11000, 50, 50)

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	st := e.State(domain.InstrumentETF)
	if st.LastBookSeq != 1 {
		t.Errorf("Expected seq 1 applied, got %d", st.LastBookSeq)
	}
	if st.Quote.BestBidPrice != 9000 {
		t.Errorf("Quote not applied: %+v", st.Quote)
	}
}

func TestDispatcher_DeliversExecutionEvents(t *testing.T) {
	e, sink := newTestEngine(t)
	d := NewDispatcher(10, e, e.log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	seq := primeFlat(e, 4)
	e.OnOrderBook(bookEvent(domain.InstrumentETF, seq+1, 12000, 14000, 25, 60))
	e.OnOrderBook(bookEvent(domain.InstrumentFuture, seq+1, 9000, 11000, 50, 40))
	entryID := sink.orders[0].ID

	fill := &event.OrderFilled{OrderID: entryID, Price: 12000, Volume: 10}
	fill.Seq = 100
	d.Inbox() <- fill

	time.Sleep(100 * time.Millisecond)

	if got := e.Ledger().Position(domain.InstrumentETF); got != -10 {
		t.Errorf("Expected ETF position -10 via dispatcher, got %d", got)
	}
}

func TestDispatcher_PaperAcksBypassFullInbox(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	var d *Dispatcher
	paper := execution.NewPaper(func(ev event.Event) { d.EnqueueLocal(ev) }, decimal.Zero, log)
	e := New(testParams(), paper, nil, log)
	d = NewDispatcher(1, e, log)

	// Saturate the inbox so an ack routed back through it would block
	// the dispatch goroutine on itself.
	d.Inbox() <- bookEvent(domain.InstrumentETF, 99, 9000, 11000, 50, 50)

	seq := primeFlat(e, 4)

	// The spike round triggers an entry, and the simulated venue
	// acknowledges synchronously while the inbox is still full.
	d.processEvent(bookEvent(domain.InstrumentETF, seq+1, 12000, 14000, 25, 60))
	d.drainLocal()
	d.processEvent(bookEvent(domain.InstrumentFuture, seq+1, 9000, 11000, 50, 40))
	d.drainLocal()

	if got := e.Ledger().Position(domain.InstrumentETF); got != -10 {
		t.Errorf("Expected ETF position -10, got %d", got)
	}
	// Entry hedge leg plus fill hedge, both acknowledged and applied.
	if got := e.Ledger().Position(domain.InstrumentFuture); got != 20 {
		t.Errorf("Expected future position +20, got %d", got)
	}
}

func TestDispatcher_DumpState(t *testing.T) {
	e, _ := newTestEngine(t)
	d := NewDispatcher(10, e, e.log)

	e.Ledger().ApplyFill(domain.InstrumentETF, domain.SideSell, 10, 1)

	path := filepath.Join(t.TempDir(), "dump.json")
	d.DumpState(path)

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Dump not written: %v", err)
	}
	var dump map[string]interface{}
	if err := json.Unmarshal(b, &dump); err != nil {
		t.Fatalf("Dump is not valid JSON: %v", err)
	}
	positions, ok := dump["positions"].(map[string]interface{})
	if !ok {
		t.Fatal("Dump missing positions")
	}
	if positions["ETF"] != float64(-10) {
		t.Errorf("Expected ETF position -10 in dump, got %v", positions["ETF"])
	}
}
