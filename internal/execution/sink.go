// Package execution defines the outbound order boundary and a paper
// venue for closed-loop runs without an exchange.
package execution

import (
	"pairs_go/internal/domain"
	"pairs_go/pkg/quant"
)

// OrderSink is the capability the engine uses to emit order intents. The
// engine records its own state first and then forwards, so the sink may
// acknowledge synchronously or asynchronously. Entry orders rest on the
// book for the session; hedge orders cross immediately.
type OrderSink interface {
	PlaceOrder(id uint64, side domain.Side, price quant.PriceCents, vol quant.Lots, tif domain.TimeInForce) error
	PlaceHedgeOrder(id uint64, side domain.Side, price quant.PriceCents, vol quant.Lots) error
}
