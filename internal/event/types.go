// Package event defines the inbound events the dispatcher consumes. The
// shapes mirror the execution collaborator's callbacks one to one.
package event

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
)

// Kind discriminates event types for dispatch and journaling.
type Kind string

const (
	KindOrderBook   Kind = "ORDER_BOOK"
	KindTradeTicks  Kind = "TRADE_TICKS"
	KindOrderFilled Kind = "ORDER_FILLED"
	KindOrderStatus Kind = "ORDER_STATUS"
	KindOrderError  Kind = "ORDER_ERROR"
	KindHedgeFilled Kind = "HEDGE_FILLED"
	KindDisconnect  Kind = "DISCONNECT"
)

// TopLevels is the fixed number of price levels carried per book side.
const TopLevels = 5

// Event is anything the dispatcher can process.
type Event interface {
	GetSeq() quant.SeqNum
	GetKind() Kind
}

// BaseEvent carries the fields every event shares.
type BaseEvent struct {
	Seq quant.SeqNum    `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (b BaseEvent) GetSeq() quant.SeqNum { return b.Seq }

// BookSnapshot is the fixed-size per-side price/volume arrays shared by
// order-book and trade-tick events. Index 0 is top of book.
type BookSnapshot struct {
	Instrument domain.Instrument            `json:"instrument"`
	AskPrices  [TopLevels]quant.PriceCents  `json:"ask_prices"`
	AskVolumes [TopLevels]quant.Lots        `json:"ask_volumes"`
	BidPrices  [TopLevels]quant.PriceCents  `json:"bid_prices"`
	BidVolumes [TopLevels]quant.Lots        `json:"bid_volumes"`
}

// Quote derives the best-level quote from the snapshot.
func (s *BookSnapshot) Quote() domain.Quote {
	return domain.Quote{
		BestBidPrice:  s.BidPrices[0],
		BestBidVolume: s.BidVolumes[0],
		BestAskPrice:  s.AskPrices[0],
		BestAskVolume: s.AskVolumes[0],
	}
}

// OrderBookUpdate is a top-of-book snapshot for one instrument.
type OrderBookUpdate struct {
	BaseEvent
	BookSnapshot
}

func (*OrderBookUpdate) GetKind() Kind { return KindOrderBook }

// TradeTicks carries last-trade context in the same shape as the book.
type TradeTicks struct {
	BaseEvent
	BookSnapshot
}

func (*TradeTicks) GetKind() Kind { return KindTradeTicks }

// OrderFilled reports a partial or full fill of one of our orders.
type OrderFilled struct {
	BaseEvent
	OrderID uint64           `json:"order_id"`
	Price   quant.PriceCents `json:"price"`
	Volume  quant.Lots       `json:"volume"`
}

func (*OrderFilled) GetKind() Kind { return KindOrderFilled }

// OrderStatus is an order lifecycle update; RemainingVolume == 0 signals
// resolution.
type OrderStatus struct {
	BaseEvent
	OrderID         uint64     `json:"order_id"`
	FilledVolume    quant.Lots `json:"filled_volume"`
	RemainingVolume quant.Lots `json:"remaining_volume"`
	FeesCents       int64      `json:"fees_cents"`
}

func (*OrderStatus) GetKind() Kind { return KindOrderStatus }

// OrderError reports a rejected or faulted order.
type OrderError struct {
	BaseEvent
	OrderID uint64 `json:"order_id"`
	Message string `json:"message"`
}

func (*OrderError) GetKind() Kind { return KindOrderError }

// HedgeFilled reports a fill on the hedge order path.
type HedgeFilled struct {
	BaseEvent
	OrderID uint64           `json:"order_id"`
	Price   quant.PriceCents `json:"price"`
	Volume  quant.Lots       `json:"volume"`
}

func (*HedgeFilled) GetKind() Kind { return KindHedgeFilled }

// Disconnect signals session teardown; the core stops emitting new orders
// but keeps its state for post-mortem accounting.
type Disconnect struct {
	BaseEvent
	Reason string `json:"reason"`
}

func (*Disconnect) GetKind() Kind { return KindDisconnect }
