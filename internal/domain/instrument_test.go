package domain

import "testing"

func TestInstrumentPairing(t *testing.T) {
	if InstrumentETF.Paired() != InstrumentFuture {
		t.Error("ETF must pair with FUTURE")
	}
	if InstrumentFuture.Paired() != InstrumentETF {
		t.Error("FUTURE must pair with ETF")
	}
}

func TestParseInstrument(t *testing.T) {
	if inst, ok := ParseInstrument("ETF"); !ok || inst != InstrumentETF {
		t.Errorf("Expected ETF, got %v %v", inst, ok)
	}
	if inst, ok := ParseInstrument("FUTURE"); !ok || inst != InstrumentFuture {
		t.Errorf("Expected FUTURE, got %v %v", inst, ok)
	}
	if _, ok := ParseInstrument("BOND"); ok {
		t.Error("Unknown names must not parse")
	}
}

func TestSide(t *testing.T) {
	if SideBuy.Opposite() != SideSell || SideSell.Opposite() != SideBuy {
		t.Error("Opposite sides mismatched")
	}
	if SideBuy.Sign() != 1 || SideSell.Sign() != -1 {
		t.Error("Side signs mismatched")
	}
}

func TestQuotePriming(t *testing.T) {
	var q Quote
	if q.Primed() {
		t.Error("Zero quote must not be primed")
	}
	q.BestBidPrice = 9000
	if q.Primed() {
		t.Error("One-sided quote must not be primed")
	}
	q.BestAskPrice = 11000
	if !q.Primed() {
		t.Error("Two-sided quote must be primed")
	}
	if q.Mid() != 10000 {
		t.Errorf("Expected mid 10000, got %d", q.Mid())
	}
}
