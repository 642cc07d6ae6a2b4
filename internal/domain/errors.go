package domain

import (
	"errors"
	"fmt"

	"pairs_go/pkg/quant"
)

var (
	// ErrNoData is returned when a signal or history value is requested
	// before the instrument has produced a sample.
	ErrNoData = errors.New("no data")
)

// LimitBreachError reports that a hypothetical order would push net
// position outside the configured limit. It is checked proactively before
// placement and never relied on as a thrown fault.
type LimitBreachError struct {
	Instrument Instrument
	Side       Side
	Projected  quant.Lots
	Limit      quant.Lots
}

func (e *LimitBreachError) Error() string {
	return fmt.Sprintf("position limit breach on %s: %s would project %d against limit %d",
		e.Instrument, e.Side, e.Projected, e.Limit)
}

// UnknownOrderError reports a status or fill referencing an id the agent
// does not track. Logged and ignored; never fatal.
type UnknownOrderError struct {
	ID uint64
}

func (e *UnknownOrderError) Error() string {
	return fmt.Sprintf("unknown order id %d", e.ID)
}

// RejectedOrderError reports a venue-side rejection. Resolving the order
// releases its reserved state; the next market event re-evaluates from
// scratch.
type RejectedOrderError struct {
	ID     uint64
	Reason string
}

func (e *RejectedOrderError) Error() string {
	return fmt.Sprintf("order %d rejected: %s", e.ID, e.Reason)
}
