// Package ledger tracks net position per instrument against the
// configured limit.
package ledger

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
	"pairs_go/pkg/safe"
)

// Ledger holds signed net positions. Positions are mutated only by fill
// acknowledgements; the limit is enforced by refusing orders up front,
// never by clamping after the fact.
type Ledger struct {
	limit     quant.Lots
	positions [domain.InstrumentCount]quant.Lots
	lastSeq   [domain.InstrumentCount]quant.SeqNum
}

// New creates a ledger with the given absolute position limit.
func New(limit quant.Lots) *Ledger {
	if limit <= 0 {
		panic("ledger: position limit must be positive")
	}
	return &Ledger{limit: limit}
}

// Position returns the current net position for an instrument.
func (l *Ledger) Position(inst domain.Instrument) quant.Lots {
	return l.positions[inst]
}

// Limit returns the configured absolute position limit.
func (l *Ledger) Limit() quant.Lots { return l.limit }

// Headroom returns the largest volume the given side could fill on the
// instrument without breaching the limit. Never negative.
func (l *Ledger) Headroom(inst domain.Instrument, side domain.Side) quant.Lots {
	var room quant.Lots
	if side == domain.SideBuy {
		room = l.limit - l.positions[inst]
	} else {
		room = l.limit + l.positions[inst]
	}
	if room < 0 {
		return 0
	}
	return room
}

// CanIncreaseExposure reports whether the projected position after a
// hypothetical fill of the given volume stays within [-limit, +limit].
// Callers pass the volume actually intended, already capped to displayed
// liquidity and lot size.
func (l *Ledger) CanIncreaseExposure(inst domain.Instrument, side domain.Side, vol quant.Lots) error {
	projected := quant.Lots(safe.SafeAdd(int64(l.positions[inst]), side.Sign()*int64(vol)))
	if projected > l.limit || projected < -l.limit {
		return &domain.LimitBreachError{Instrument: inst, Side: side, Projected: projected, Limit: l.limit}
	}
	return nil
}

// ApplyFill mutates net position for a fill acknowledgement. The caller
// guarantees at-most-once application per acknowledged volume via the
// working-order remaining-volume guard. The sequence number of the event
// that carried the fill is recorded for audit.
func (l *Ledger) ApplyFill(inst domain.Instrument, side domain.Side, vol quant.Lots, seq quant.SeqNum) {
	l.positions[inst] = quant.Lots(safe.SafeAdd(int64(l.positions[inst]), side.Sign()*int64(vol)))
	l.lastSeq[inst] = seq
}

// LastSeq returns the sequence number of the last fill applied to the
// instrument.
func (l *Ledger) LastSeq(inst domain.Instrument) quant.SeqNum {
	return l.lastSeq[inst]
}
