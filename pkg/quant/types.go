// Package quant defines the fixed-point scalar types shared across the
// hotpath. All prices are integer cents, all volumes are integer lots;
// floating point never enters order or position arithmetic.
package quant

import (
	"strconv"
	"sync/atomic"
)

// PriceCents is a price in integer cents.
type PriceCents int64

// Lots is an order or position volume in whole lots.
type Lots int64

// SeqNum is a transport sequence number. Streams are independent per
// channel; zero means "nothing seen yet".
type SeqNum uint64

// TimeStamp is Unix microseconds.
type TimeStamp int64

func (p PriceCents) String() string { return strconv.FormatInt(int64(p), 10) }
func (l Lots) String() string       { return strconv.FormatInt(int64(l), 10) }

// Exchange-wide price bounds, in cents.
const (
	MinimumBid PriceCents = 1
	MaximumAsk PriceCents = 1<<31 - 1
)

// MinBidNearestTick is the lowest viable bid price rounded up to the tick
// grid. Used as the conservative price for sells-to-hedge.
func MinBidNearestTick(tick PriceCents) PriceCents {
	return (MinimumBid + tick) / tick * tick
}

// MaxAskNearestTick is the highest viable ask price rounded down to the
// tick grid. Used as the conservative price for buys-to-hedge.
func MaxAskNearestTick(tick PriceCents) PriceCents {
	return MaximumAsk / tick * tick
}

// Mid returns the mid-price of a bid/ask pair. Zero until both sides have
// quoted; callers gate on that before using it as a sample.
func Mid(bid, ask PriceCents) PriceCents {
	return (bid + ask) / 2
}

// MinLots returns the smallest of the given volumes.
func MinLots(vs ...Lots) Lots {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// NextSeq atomically allocates the next sequence number from a shared
// counter. Gateway workers share one counter per stream.
func NextSeq(seq *uint64) SeqNum {
	return SeqNum(atomic.AddUint64(seq, 1))
}
