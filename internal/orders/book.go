// Package orders tracks this agent's own outstanding orders. Entry
// orders live in the working set; hedge orders are tracked separately so
// that order-status traffic for them is ignored rather than misapplied.
package orders

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
)

// Book owns client order id allocation and the outstanding sets. Ids are
// monotonically increasing and never reused within a session, so a
// resolved id can never be confused with a live one.
type Book struct {
	nextID  uint64
	working map[uint64]*domain.WorkingOrder
	hedges  map[uint64]*domain.WorkingOrder
}

// NewBook creates an empty order book starting at id 1.
func NewBook() *Book {
	return &Book{
		nextID:  1,
		working: make(map[uint64]*domain.WorkingOrder),
		hedges:  make(map[uint64]*domain.WorkingOrder),
	}
}

// Place allocates the next client order id and records a PENDING working
// order. The order is recorded before the caller forwards the intent, so
// an acknowledgement can never arrive for an id we do not yet track.
func (b *Book) Place(inst domain.Instrument, side domain.Side, price quant.PriceCents, vol quant.Lots) *domain.WorkingOrder {
	o := &domain.WorkingOrder{
		ID:         b.allocID(),
		Instrument: inst,
		Side:       side,
		Price:      price,
		Volume:     vol,
		Remaining:  vol,
		Status:     domain.OrderStatusPending,
	}
	b.working[o.ID] = o
	return o
}

// PlaceHedge records a hedge order outside the working set.
func (b *Book) PlaceHedge(inst domain.Instrument, side domain.Side, price quant.PriceCents, vol quant.Lots) *domain.WorkingOrder {
	o := &domain.WorkingOrder{
		ID:         b.allocID(),
		Instrument: inst,
		Side:       side,
		Price:      price,
		Volume:     vol,
		Remaining:  vol,
		Status:     domain.OrderStatusPending,
		Hedge:      true,
	}
	b.hedges[o.ID] = o
	return o
}

func (b *Book) allocID() uint64 {
	id := b.nextID
	b.nextID++
	return id
}

// Get returns a tracked working order, if any.
func (b *Book) Get(id uint64) (*domain.WorkingOrder, bool) {
	o, ok := b.working[id]
	return o, ok
}

// SideBusy reports whether an entry order is outstanding for the given
// instrument and side. One working order per side holds the price-level
// slot; resolution frees it.
func (b *Book) SideBusy(inst domain.Instrument, side domain.Side) bool {
	for _, o := range b.working {
		if o.Instrument == inst && o.Side == side {
			return true
		}
	}
	return false
}

// Outstanding returns the number of unresolved entry orders.
func (b *Book) Outstanding() int { return len(b.working) }

// HedgeExposure returns the unfilled hedge volume outstanding for the
// given instrument and side. Position projections must count it, or
// stacked hedges could walk the ledger through the limit.
func (b *Book) HedgeExposure(inst domain.Instrument, side domain.Side) quant.Lots {
	var total quant.Lots
	for _, o := range b.hedges {
		if o.Instrument == inst && o.Side == side {
			total += o.Remaining
		}
	}
	return total
}

// ApplyFill consumes fill volume from a working order, capped at its
// remaining volume so replayed or duplicated fill messages cannot be
// applied twice. Returns the volume actually applied (zero for unknown
// or exhausted ids) and the order. A fully consumed order is resolved
// and removed.
func (b *Book) ApplyFill(id uint64, vol quant.Lots) (quant.Lots, *domain.WorkingOrder) {
	o, ok := b.working[id]
	if !ok {
		return 0, nil
	}
	if vol > o.Remaining {
		vol = o.Remaining
	}
	o.Remaining -= vol
	if o.Remaining == 0 {
		o.Status = domain.OrderStatusFilled
		delete(b.working, id)
	} else {
		o.Status = domain.OrderStatusPartiallyFilled
	}
	return vol, o
}

// ApplyHedgeFill consumes fill volume from a hedge order with the same
// capping guard. Returns the applied volume and the order, or zero and
// nil for untracked ids.
func (b *Book) ApplyHedgeFill(id uint64, vol quant.Lots) (quant.Lots, *domain.WorkingOrder) {
	o, ok := b.hedges[id]
	if !ok {
		return 0, nil
	}
	if vol > o.Remaining {
		vol = o.Remaining
	}
	o.Remaining -= vol
	if o.Remaining == 0 {
		o.Status = domain.OrderStatusFilled
		delete(b.hedges, id)
	} else {
		o.Status = domain.OrderStatusPartiallyFilled
	}
	return vol, o
}

// OnStatus applies a lifecycle update. RemainingVolume == 0 resolves the
// order and frees its slot. Unknown ids return an UnknownOrderError for
// the caller to log and ignore; they are already resolved or belong to
// the hedge path.
func (b *Book) OnStatus(id uint64, filled, remaining quant.Lots) (*domain.WorkingOrder, error) {
	o, ok := b.working[id]
	if !ok {
		return nil, &domain.UnknownOrderError{ID: id}
	}
	if remaining == 0 {
		if filled == o.Volume {
			o.Status = domain.OrderStatusFilled
		} else {
			o.Status = domain.OrderStatusCanceled
		}
		o.Remaining = 0
		delete(b.working, id)
		return o, nil
	}
	o.Remaining = remaining
	if filled > 0 {
		o.Status = domain.OrderStatusPartiallyFilled
	}
	return o, nil
}

// OnError resolves a tracked order with zero remaining volume, the
// equivalent of OnStatus(id, 0, 0). Untracked ids are reported as
// unknown for logging.
func (b *Book) OnError(id uint64) (*domain.WorkingOrder, error) {
	o, ok := b.working[id]
	if !ok {
		return nil, &domain.UnknownOrderError{ID: id}
	}
	o.Status = domain.OrderStatusRejected
	o.Remaining = 0
	delete(b.working, id)
	return o, nil
}

// Working returns the outstanding entry orders, for state dumps.
func (b *Book) Working() map[uint64]*domain.WorkingOrder { return b.working }

// Hedges returns the outstanding hedge orders, for state dumps.
func (b *Book) Hedges() map[uint64]*domain.WorkingOrder { return b.hedges }
