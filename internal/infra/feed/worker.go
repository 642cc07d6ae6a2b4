// Package feed connects to a market data WebSocket endpoint and turns
// wire frames into engine events.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
	"pairs_go/pkg/quant"
)

const (
	feedMaxRetries  = 10
	feedBaseDelay   = 1 * time.Second
	feedMaxDelay    = 60 * time.Second
	feedReadTimeout = 60 * time.Second
)

// frame is the wire format of a single feed message. Price levels are
// cents, volumes are lots, ordered best-first.
type frame struct {
	Type       string   `json:"type"` // order_book | trade_ticks
	Instrument string   `json:"instrument"`
	Sequence   uint64   `json:"sequence"`
	AskPrices  []uint64 `json:"ask_prices"`
	AskVolumes []uint64 `json:"ask_volumes"`
	BidPrices  []uint64 `json:"bid_prices"`
	BidVolumes []uint64 `json:"bid_volumes"`
}

// Worker maintains the WebSocket connection and feeds parsed events into
// the engine inbox. Reconnects with exponential backoff; when retries are
// exhausted it emits a Disconnect event so the engine can halt entries.
type Worker struct {
	url    string
	inbox  chan<- event.Event
	log    *slog.Logger
	conn   *websocket.Conn
	mu     sync.RWMutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a feed worker publishing into inbox.
func NewWorker(url string, inbox chan<- event.Event, log *slog.Logger) *Worker {
	return &Worker{
		url:   url,
		inbox: inbox,
		log:   log.With(slog.String("component", "feed")),
	}
}

// Connect starts the connection loop. Returns immediately; the loop runs
// until ctx is canceled or Stop is called.
func (w *Worker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go w.connectionLoop(ctx)

	return nil
}

// Stop tears down the connection loop and waits for it to exit.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}

func (w *Worker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("feed panic recovered", slog.Any("panic", r))
		}
	}()

	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			w.log.Info("feed connection loop stopped")
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.log.Warn("feed connection failed",
				slog.Any("error", err),
				slog.Int("retry", retryCount),
			)

			delay := calculateBackoff(retryCount)
			retryCount++
			if retryCount > feedMaxRetries {
				w.log.Error("feed max retries exceeded, signaling disconnect")
				w.emit(&event.Disconnect{Reason: "max retries exceeded"})
				retryCount = 0
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
				continue
			}
		}

		retryCount = 0
		w.readLoop(ctx)
	}
}

func calculateBackoff(retryCount int) time.Duration {
	delay := feedBaseDelay * time.Duration(math.Pow(2, float64(retryCount)))
	if delay > feedMaxDelay {
		delay = feedMaxDelay
	}
	return delay
}

func (w *Worker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, w.url, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	w.log.Info("feed connected", slog.String("url", w.url))
	return nil
}

func (w *Worker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}

func (w *Worker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()

		if conn == nil {
			return
		}

		conn.SetReadDeadline(time.Now().Add(feedReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				w.log.Warn("feed read error", slog.Any("error", err))
			}
			w.closeConnection()
			return
		}

		w.handleMessage(message)
	}
}

func (w *Worker) handleMessage(message []byte) {
	var f frame
	if err := json.Unmarshal(message, &f); err != nil {
		w.log.Debug("feed message parse error", slog.Any("error", err))
		return
	}

	inst, ok := domain.ParseInstrument(f.Instrument)
	if !ok {
		w.log.Debug("feed unknown instrument", slog.String("instrument", f.Instrument))
		return
	}

	switch f.Type {
	case "order_book":
		ev := event.AcquireOrderBookUpdate()
		ev.Seq = quant.SeqNum(f.Sequence)
		ev.Ts = quant.TimeStamp(time.Now().UnixMicro())
		ev.Instrument = inst
		fillBook(&ev.BookSnapshot, &f)
		if !w.emit(ev) {
			event.ReleaseOrderBookUpdate(ev)
		}
	case "trade_ticks":
		ev := event.AcquireTradeTicks()
		ev.Seq = quant.SeqNum(f.Sequence)
		ev.Ts = quant.TimeStamp(time.Now().UnixMicro())
		ev.Instrument = inst
		fillBook(&ev.BookSnapshot, &f)
		if !w.emit(ev) {
			event.ReleaseTradeTicks(ev)
		}
	default:
		w.log.Debug("feed unknown frame type", slog.String("type", f.Type))
	}
}

func fillBook(book *event.BookSnapshot, f *frame) {
	for i := 0; i < event.TopLevels; i++ {
		if i < len(f.AskPrices) {
			book.AskPrices[i] = quant.PriceCents(f.AskPrices[i])
		}
		if i < len(f.AskVolumes) {
			book.AskVolumes[i] = quant.Lots(f.AskVolumes[i])
		}
		if i < len(f.BidPrices) {
			book.BidPrices[i] = quant.PriceCents(f.BidPrices[i])
		}
		if i < len(f.BidVolumes) {
			book.BidVolumes[i] = quant.Lots(f.BidVolumes[i])
		}
	}
}

// emit pushes the event without blocking the read loop. A full inbox
// means the engine is behind; dropping here keeps the feed live and the
// sequence tolerance in the engine absorbs the gap.
func (w *Worker) emit(ev event.Event) bool {
	select {
	case w.inbox <- ev:
		return true
	default:
		w.log.Warn("feed inbox full, dropping event", slog.String("kind", string(ev.GetKind())))
		return false
	}
}
