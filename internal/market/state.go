package market

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
)

// State aggregates everything the engine tracks for one instrument:
// the live quote, the rolling mid-price window, and the last accepted
// sequence number per transport channel. It is owned exclusively by the
// engine and mutated only inside a single callback invocation.
type State struct {
	Instrument domain.Instrument `json:"instrument"`
	Quote      domain.Quote      `json:"quote"`
	History    *History          `json:"-"`

	// Independent sequence spaces; see the dispatcher's staleness check.
	LastBookSeq  quant.SeqNum `json:"last_book_seq"`
	LastTradeSeq quant.SeqNum `json:"last_trade_seq"`
}

// NewState creates the aggregate for one instrument.
func NewState(inst domain.Instrument, window int) *State {
	return &State{Instrument: inst, History: NewHistory(window)}
}

// ApplyQuote overwrites the quote wholesale and appends its mid-price to
// the history. Both mutations happen before control returns, so the next
// callback never observes a half-applied update.
func (s *State) ApplyQuote(q domain.Quote) {
	s.Quote = q
	s.History.Update(q.Mid())
}

// Primed reports whether the instrument has produced a usable mid-price.
func (s *State) Primed() bool {
	return s.Quote.Primed()
}
