package feed

import (
	"io"
	"log/slog"
	"testing"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
)

func newTestWorker(inboxSize int) (*Worker, chan event.Event) {
	inbox := make(chan event.Event, inboxSize)
	w := NewWorker("ws://test.invalid/feed", inbox,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return w, inbox
}

func TestWorker_ParsesOrderBookFrame(t *testing.T) {
	w, inbox := newTestWorker(4)

	w.handleMessage([]byte(`{
		"type": "order_book",
		"instrument": "ETF",
		"sequence": 17,
		"ask_prices": [11000, 11100],
		"ask_volumes": [40, 80],
		"bid_prices": [9000, 8900],
		"bid_volumes": [25, 60]
	}`))

	select {
	case ev := <-inbox:
		book, ok := ev.(*event.OrderBookUpdate)
		if !ok {
			t.Fatalf("Expected OrderBookUpdate, got %T", ev)
		}
		if book.Seq != 17 || book.Instrument != domain.InstrumentETF {
			t.Errorf("Unexpected header: seq %d inst %s", book.Seq, book.Instrument)
		}
		if book.AskPrices[0] != 11000 || book.BidPrices[0] != 9000 {
			t.Errorf("Top of book misparsed: %+v", book.BookSnapshot)
		}
		if book.AskPrices[1] != 11100 || book.BidVolumes[1] != 60 {
			t.Errorf("Depth levels misparsed: %+v", book.BookSnapshot)
		}
		if book.AskPrices[2] != 0 {
			t.Errorf("Missing levels must stay zero, got %d", book.AskPrices[2])
		}
	default:
		t.Fatal("No event emitted")
	}
}

func TestWorker_ParsesTradeTicksFrame(t *testing.T) {
	w, inbox := newTestWorker(4)

	w.handleMessage([]byte(`{
		"type": "trade_ticks",
		"instrument": "FUTURE",
		"sequence": 3,
		"ask_prices": [10100],
		"ask_volumes": [10],
		"bid_prices": [9900],
		"bid_volumes": [10]
	}`))

	select {
	case ev := <-inbox:
		tick, ok := ev.(*event.TradeTicks)
		if !ok {
			t.Fatalf("Expected TradeTicks, got %T", ev)
		}
		if tick.Instrument != domain.InstrumentFuture || tick.Seq != 3 {
			t.Errorf("Unexpected header: %+v", tick.BaseEvent)
		}
	default:
		t.Fatal("No event emitted")
	}
}

func TestWorker_IgnoresGarbage(t *testing.T) {
	w, inbox := newTestWorker(4)

	w.handleMessage([]byte(`not json`))
	w.handleMessage([]byte(`{"type": "order_book", "instrument": "BOND", "sequence": 1}`))
	w.handleMessage([]byte(`{"type": "heartbeat", "instrument": "ETF", "sequence": 1}`))

	if len(inbox) != 0 {
		t.Errorf("Malformed frames must be dropped, got %d events", len(inbox))
	}
}

func TestWorker_DropsOnFullInbox(t *testing.T) {
	w, inbox := newTestWorker(1)

	frame := []byte(`{"type": "order_book", "instrument": "ETF", "sequence": 1,
		"ask_prices": [11000], "ask_volumes": [1], "bid_prices": [9000], "bid_volumes": [1]}`)
	w.handleMessage(frame)
	w.handleMessage(frame) // inbox full; must not block

	if len(inbox) != 1 {
		t.Errorf("Expected exactly one queued event, got %d", len(inbox))
	}
}

func TestCalculateBackoff(t *testing.T) {
	if calculateBackoff(0) != feedBaseDelay {
		t.Errorf("First retry should use base delay")
	}
	if calculateBackoff(1) != 2*feedBaseDelay {
		t.Errorf("Second retry should double")
	}
	if calculateBackoff(20) != feedMaxDelay {
		t.Errorf("Backoff must cap at max delay")
	}
}
