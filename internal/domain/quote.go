package domain

import "pairs_go/pkg/quant"

// Quote is the best-level snapshot for one instrument. It is overwritten
// wholesale on every market-data event; partial updates never happen.
type Quote struct {
	BestBidPrice  quant.PriceCents `json:"best_bid_price"`
	BestBidVolume quant.Lots       `json:"best_bid_volume"`
	BestAskPrice  quant.PriceCents `json:"best_ask_price"`
	BestAskVolume quant.Lots       `json:"best_ask_volume"`
}

// Mid returns the mid-price in cents. Zero until both sides have quoted,
// which downstream consumers treat as "not primed".
func (q Quote) Mid() quant.PriceCents {
	return quant.Mid(q.BestBidPrice, q.BestAskPrice)
}

// Primed reports whether the quote carries a usable mid-price.
func (q Quote) Primed() bool {
	return q.BestBidPrice != 0 && q.BestAskPrice != 0
}
