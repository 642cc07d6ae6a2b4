package execution

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"pairs_go/internal/domain"
	"pairs_go/internal/event"
	"pairs_go/pkg/quant"
)

// Paper is a venue stand-in that acknowledges every order at its own
// price: entry orders cross at the touch they were priced at, hedge
// orders always fill. Acknowledgements are emitted as events so they
// travel back through the dispatcher exactly like exchange traffic.
type Paper struct {
	emit    func(event.Event)
	seq     uint64
	feeRate decimal.Decimal
	fees    decimal.Decimal
	log     *slog.Logger
}

// NewPaper creates a paper venue. emit delivers acknowledgement events
// to the dispatcher inbox; feeRate is the taker fee applied to notional.
func NewPaper(emit func(event.Event), feeRate decimal.Decimal, log *slog.Logger) *Paper {
	return &Paper{emit: emit, feeRate: feeRate, log: log}
}

// PlaceOrder fills the entry order in full at its limit price, then
// resolves it with a terminal status carrying the accrued fee.
func (p *Paper) PlaceOrder(id uint64, side domain.Side, price quant.PriceCents, vol quant.Lots, tif domain.TimeInForce) error {
	fee := p.accrue(price, vol)
	p.log.Debug("paper fill",
		slog.Uint64("order_id", id),
		slog.String("side", string(side)),
		slog.Int64("price", int64(price)),
		slog.Int64("volume", int64(vol)),
		slog.String("tif", string(tif)))

	p.emit(&event.OrderFilled{
		BaseEvent: p.base(),
		OrderID:   id,
		Price:     price,
		Volume:    vol,
	})
	p.emit(&event.OrderStatus{
		BaseEvent:       p.base(),
		OrderID:         id,
		FilledVolume:    vol,
		RemainingVolume: 0,
		FeesCents:       fee,
	})
	return nil
}

// PlaceHedgeOrder fills the hedge immediately at its price.
func (p *Paper) PlaceHedgeOrder(id uint64, side domain.Side, price quant.PriceCents, vol quant.Lots) error {
	p.accrue(price, vol)
	p.emit(&event.HedgeFilled{
		BaseEvent: p.base(),
		OrderID:   id,
		Price:     price,
		Volume:    vol,
	})
	return nil
}

// FeesPaid returns the cumulated fee notional in cents.
func (p *Paper) FeesPaid() decimal.Decimal { return p.fees }

func (p *Paper) accrue(price quant.PriceCents, vol quant.Lots) int64 {
	notional := decimal.NewFromInt(int64(price)).Mul(decimal.NewFromInt(int64(vol)))
	fee := notional.Mul(p.feeRate)
	p.fees = p.fees.Add(fee)
	return fee.IntPart()
}

func (p *Paper) base() event.BaseEvent {
	return event.BaseEvent{
		Seq: quant.NextSeq(&p.seq),
		Ts:  quant.TimeStamp(time.Now().UnixMicro()),
	}
}
