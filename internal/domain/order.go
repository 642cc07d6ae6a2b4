package domain

import "pairs_go/pkg/quant"

// WorkingOrder is an order this agent owns that has not fully resolved.
// All monetary values are integer cents, volumes integer lots.
type WorkingOrder struct {
	ID         uint64           `json:"id"`
	Instrument Instrument       `json:"instrument"`
	Side       Side             `json:"side"`
	Price      quant.PriceCents `json:"price"`
	Volume     quant.Lots       `json:"volume"`    // original placement volume
	Remaining  quant.Lots       `json:"remaining"` // volume not yet filled or cancelled
	Status     string           `json:"status"`
	Hedge      bool             `json:"hedge"` // hedge leg, tracked outside the working set
}

const (
	OrderStatusPending         = "PENDING"
	OrderStatusPartiallyFilled = "PARTIALLY_FILLED"
	OrderStatusFilled          = "FILLED"
	OrderStatusCanceled        = "CANCELED"
	OrderStatusRejected        = "REJECTED"
)

// IsOpen reports whether the order still reserves a price-level slot.
func (o *WorkingOrder) IsOpen() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusPartiallyFilled
}

// TimeInForce is the order lifespan on the venue.
type TimeInForce string

const (
	GoodForDay  TimeInForce = "GOOD_FOR_DAY"
	FillAndKill TimeInForce = "FILL_AND_KILL"
)
