package domain

// Instrument identifies one leg of the tracked pair.
type Instrument uint8

const (
	InstrumentETF Instrument = iota
	InstrumentFuture

	// InstrumentCount sizes per-instrument arrays.
	InstrumentCount = 2
)

// String returns the wire name of the instrument.
func (i Instrument) String() string {
	switch i {
	case InstrumentETF:
		return "ETF"
	case InstrumentFuture:
		return "FUTURE"
	default:
		return "UNKNOWN"
	}
}

// Paired returns the other leg of the pair.
func (i Instrument) Paired() Instrument {
	if i == InstrumentETF {
		return InstrumentFuture
	}
	return InstrumentETF
}

// ParseInstrument maps a wire name to an Instrument.
func ParseInstrument(s string) (Instrument, bool) {
	switch s {
	case "ETF":
		return InstrumentETF, true
	case "FUTURE":
		return InstrumentFuture, true
	default:
		return 0, false
	}
}

// Side is an order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the opposing side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Sign returns +1 for buys and -1 for sells, the direction a fill moves
// net position.
func (s Side) Sign() int64 {
	if s == SideBuy {
		return 1
	}
	return -1
}
