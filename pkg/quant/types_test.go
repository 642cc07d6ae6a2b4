package quant

import "testing"

func TestMid(t *testing.T) {
	if got := Mid(9000, 11000); got != 10000 {
		t.Errorf("Expected mid 10000, got %d", got)
	}
	if got := Mid(0, 11000); got != 5500 {
		t.Errorf("Expected mid 5500 for one-sided quote, got %d", got)
	}
}

func TestMinLots(t *testing.T) {
	if got := MinLots(10, 25, 7, 100); got != 7 {
		t.Errorf("Expected min 7, got %d", got)
	}
	if got := MinLots(10); got != 10 {
		t.Errorf("Expected min 10, got %d", got)
	}
}

func TestHedgeTickBounds(t *testing.T) {
	// tick 100: lowest viable bid rounds up to the grid, highest viable
	// ask rounds down.
	if got := MinBidNearestTick(100); got != 100 {
		t.Errorf("Expected min bid tick 100, got %d", got)
	}
	if got := MaxAskNearestTick(100); got != 2147483600 {
		t.Errorf("Expected max ask tick 2147483600, got %d", got)
	}
}

func TestNextSeq(t *testing.T) {
	var counter uint64
	if got := NextSeq(&counter); got != 1 {
		t.Errorf("Expected first seq 1, got %d", got)
	}
	if got := NextSeq(&counter); got != 2 {
		t.Errorf("Expected second seq 2, got %d", got)
	}
}
