package orders

import (
	"errors"
	"testing"

	"pairs_go/internal/domain"
)

func TestBook_PlaceAllocatesMonotonicIds(t *testing.T) {
	b := NewBook()

	a := b.Place(domain.InstrumentETF, domain.SideSell, 11000, 10)
	h := b.PlaceHedge(domain.InstrumentFuture, domain.SideBuy, 11000, 10)
	c := b.Place(domain.InstrumentETF, domain.SideBuy, 9000, 10)

	if a.ID != 1 || h.ID != 2 || c.ID != 3 {
		t.Errorf("Expected ids 1,2,3, got %d,%d,%d", a.ID, h.ID, c.ID)
	}
	if a.Status != domain.OrderStatusPending {
		t.Errorf("Expected PENDING, got %s", a.Status)
	}
	if b.Outstanding() != 2 {
		t.Errorf("Hedge orders must not count as working, got %d", b.Outstanding())
	}
}

func TestBook_SideBusy(t *testing.T) {
	b := NewBook()
	if b.SideBusy(domain.InstrumentETF, domain.SideSell) {
		t.Error("Fresh book should not be busy")
	}

	o := b.Place(domain.InstrumentETF, domain.SideSell, 11000, 10)
	if !b.SideBusy(domain.InstrumentETF, domain.SideSell) {
		t.Error("Sell side should be busy while order is outstanding")
	}
	if b.SideBusy(domain.InstrumentETF, domain.SideBuy) {
		t.Error("Buy side should stay free")
	}

	if _, err := b.OnStatus(o.ID, 10, 0); err != nil {
		t.Fatalf("OnStatus failed: %v", err)
	}
	if b.SideBusy(domain.InstrumentETF, domain.SideSell) {
		t.Error("Resolution must free the side slot")
	}
}

func TestBook_OnStatusLifecycle(t *testing.T) {
	b := NewBook()
	o := b.Place(domain.InstrumentETF, domain.SideSell, 11000, 10)

	// Partial: stays outstanding with updated remaining.
	upd, err := b.OnStatus(o.ID, 4, 6)
	if err != nil {
		t.Fatalf("OnStatus failed: %v", err)
	}
	if upd.Remaining != 6 || upd.Status != domain.OrderStatusPartiallyFilled {
		t.Errorf("Unexpected partial state: %+v", upd)
	}
	if b.Outstanding() != 1 {
		t.Error("Partially filled order must remain outstanding")
	}

	// Resolution with full volume filled.
	res, err := b.OnStatus(o.ID, 10, 0)
	if err != nil {
		t.Fatalf("OnStatus failed: %v", err)
	}
	if res.Status != domain.OrderStatusFilled {
		t.Errorf("Expected FILLED, got %s", res.Status)
	}
	if b.Outstanding() != 0 {
		t.Error("Resolved order must leave the outstanding set")
	}
}

func TestBook_OnStatusCancelResolution(t *testing.T) {
	b := NewBook()
	o := b.Place(domain.InstrumentETF, domain.SideBuy, 9000, 10)

	res, err := b.OnStatus(o.ID, 4, 0)
	if err != nil {
		t.Fatalf("OnStatus failed: %v", err)
	}
	if res.Status != domain.OrderStatusCanceled {
		t.Errorf("Partial fill then resolution should be CANCELED, got %s", res.Status)
	}
}

func TestBook_UnknownIds(t *testing.T) {
	b := NewBook()

	var unknown *domain.UnknownOrderError
	if _, err := b.OnStatus(99, 0, 0); !errors.As(err, &unknown) {
		t.Errorf("Expected UnknownOrderError, got %v", err)
	}
	if _, err := b.OnError(99); !errors.As(err, &unknown) {
		t.Errorf("Expected UnknownOrderError, got %v", err)
	}
	if applied, o := b.ApplyFill(99, 10); applied != 0 || o != nil {
		t.Errorf("Unknown fill must apply nothing, got %d %+v", applied, o)
	}
}

func TestBook_ApplyFillIdempotence(t *testing.T) {
	b := NewBook()
	o := b.Place(domain.InstrumentETF, domain.SideSell, 11000, 10)

	applied, _ := b.ApplyFill(o.ID, 6)
	if applied != 6 {
		t.Errorf("Expected 6 applied, got %d", applied)
	}

	// Over-reporting caps at remaining.
	applied, _ = b.ApplyFill(o.ID, 10)
	if applied != 4 {
		t.Errorf("Expected cap at 4 remaining, got %d", applied)
	}
	if b.Outstanding() != 0 {
		t.Error("Exhausted order must be removed")
	}

	// Replay after resolution applies nothing.
	applied, res := b.ApplyFill(o.ID, 10)
	if applied != 0 || res != nil {
		t.Errorf("Replayed fill must be a no-op, got %d", applied)
	}
}

func TestBook_HedgeFillsTrackedSeparately(t *testing.T) {
	b := NewBook()
	h := b.PlaceHedge(domain.InstrumentFuture, domain.SideBuy, 11000, 10)

	// Status traffic never resolves hedge orders.
	if _, err := b.OnStatus(h.ID, 10, 0); err == nil {
		t.Error("Hedge id must be unknown to the working set")
	}

	applied, o := b.ApplyHedgeFill(h.ID, 10)
	if applied != 10 || o == nil {
		t.Fatalf("Expected hedge fill of 10, got %d", applied)
	}
	if len(b.Hedges()) != 0 {
		t.Error("Exhausted hedge must be removed")
	}

	if applied, _ := b.ApplyHedgeFill(h.ID, 10); applied != 0 {
		t.Errorf("Replayed hedge fill must be a no-op, got %d", applied)
	}
}

func TestBook_OnErrorReleasesSlot(t *testing.T) {
	b := NewBook()
	o := b.Place(domain.InstrumentETF, domain.SideSell, 11000, 10)

	res, err := b.OnError(o.ID)
	if err != nil {
		t.Fatalf("OnError failed: %v", err)
	}
	if res.Status != domain.OrderStatusRejected || res.Remaining != 0 {
		t.Errorf("Unexpected rejected state: %+v", res)
	}
	if b.SideBusy(domain.InstrumentETF, domain.SideSell) {
		t.Error("Rejection must free the side slot")
	}
}
