// Package market holds the per-instrument quote and rolling mid-price
// state the strategy reads on every event.
package market

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
)

// History is a fixed-capacity rolling window of mid-prices for one
// instrument. Insertion order is preserved and eviction is FIFO; size
// never exceeds the configured capacity. Implemented as a ring buffer so
// the hotpath stays zero-alloc after construction.
type History struct {
	prices []quant.PriceCents
	head   int // next write position; oldest element when full
	count  int
}

// NewHistory creates a history with the given capacity.
func NewHistory(capacity int) *History {
	if capacity < 2 {
		panic("market: history capacity must be at least 2")
	}
	return &History{prices: make([]quant.PriceCents, capacity)}
}

// Update appends a mid-price, evicting the oldest sample once full. A
// zero mid still occupies a slot; consumers gate on priming separately.
func (h *History) Update(mid quant.PriceCents) {
	h.prices[h.head] = mid
	h.head = (h.head + 1) % len(h.prices)
	if h.count < len(h.prices) {
		h.count++
	}
}

// Latest returns the most recent sample, or ErrNoData if empty.
func (h *History) Latest() (quant.PriceCents, error) {
	if h.count == 0 {
		return 0, domain.ErrNoData
	}
	idx := h.head - 1
	if idx < 0 {
		idx = len(h.prices) - 1
	}
	return h.prices[idx], nil
}

// Size returns the number of retained samples.
func (h *History) Size() int { return h.count }

// Capacity returns the configured window length.
func (h *History) Capacity() int { return len(h.prices) }

// Samples returns the retained window oldest-first. Allocates; intended
// for tests and state dumps, not the hotpath.
func (h *History) Samples() []quant.PriceCents {
	out := make([]quant.PriceCents, 0, h.count)
	idx := h.head - h.count
	if idx < 0 {
		idx += len(h.prices)
	}
	for i := 0; i < h.count; i++ {
		out = append(out, h.prices[idx])
		idx = (idx + 1) % len(h.prices)
	}
	return out
}
