// Package signal computes the divergence statistic between the two legs
// and classifies it into a directional regime.
package signal

import (
	"math"

	"pairs_go/internal/market"
	"pairs_go/pkg/safe"
)

// Regime classifies which leg is priced too high relative to the other.
type Regime int

const (
	RegimeNeutral Regime = iota
	RegimeETFRich
	RegimeFutureRich
)

// String returns the regime name for logging.
func (r Regime) String() string {
	switch r {
	case RegimeETFRich:
		return "ETF_RICH"
	case RegimeFutureRich:
		return "FUTURE_RICH"
	default:
		return "NEUTRAL"
	}
}

// Divergence maintains a bounded FIFO window of (ETF mid − future mid)
// samples and the regime derived from the latest sample versus the
// trailing mean and population stddev. The window is bounded, unlike the
// source strategy it descends from, so memory stays flat over a session.
type Divergence struct {
	diffs  []int64
	head   int
	count  int
	kSigma float64
	regime Regime
}

// NewDivergence creates a signal with the given window and threshold
// multiplier k.
func NewDivergence(window int, kSigma float64) *Divergence {
	if window < 2 {
		panic("signal: divergence window must be at least 2")
	}
	return &Divergence{diffs: make([]int64, window), kSigma: kSigma}
}

// Regime returns the current classification.
func (d *Divergence) Regime() Regime { return d.regime }

// Size returns the number of retained divergence samples.
func (d *Divergence) Size() int { return d.count }

// Recompute appends the latest ETF−future divergence and reclassifies.
// It is a silent no-op unless both histories hold at least two samples
// with equal counts (staggered snapshots are never compared), and the
// regime stays neutral until at least two trailing samples exist to
// baseline against. Deterministic for a fixed pair of histories.
func (d *Divergence) Recompute(etf, future *market.History) Regime {
	if etf.Size() < 2 || future.Size() < 2 || etf.Size() != future.Size() {
		return d.regime
	}

	etfMid, err := etf.Latest()
	if err != nil {
		return d.regime
	}
	futMid, err := future.Latest()
	if err != nil {
		return d.regime
	}

	d.push(safe.SafeSub(int64(etfMid), int64(futMid)))

	// A one-sample baseline classifies noise; wait for two.
	if d.count < 3 {
		d.regime = RegimeNeutral
		return d.regime
	}

	latest := d.latest()
	mean, stddev := d.trailingStats()

	// The raw comparison doubles as the zero-stddev path: a constant
	// baseline classifies any departure from the mean without ever
	// dividing by the deviation.
	switch {
	case float64(latest) > mean+d.kSigma*stddev:
		d.regime = RegimeETFRich
	case float64(latest) < mean-d.kSigma*stddev:
		d.regime = RegimeFutureRich
	default:
		d.regime = RegimeNeutral
	}
	return d.regime
}

func (d *Divergence) push(v int64) {
	d.diffs[d.head] = v
	d.head = (d.head + 1) % len(d.diffs)
	if d.count < len(d.diffs) {
		d.count++
	}
}

func (d *Divergence) latest() int64 {
	idx := d.head - 1
	if idx < 0 {
		idx = len(d.diffs) - 1
	}
	return d.diffs[idx]
}

// trailingStats returns the mean and population stddev over the retained
// window excluding the newest sample, which is the value being judged.
func (d *Divergence) trailingStats() (mean, stddev float64) {
	n := d.count - 1
	idx := d.head - d.count
	if idx < 0 {
		idx += len(d.diffs)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(d.diffs[(idx+i)%len(d.diffs)])
	}
	mean = sum / float64(n)

	var sq float64
	for i := 0; i < n; i++ {
		dev := float64(d.diffs[(idx+i)%len(d.diffs)]) - mean
		sq += dev * dev
	}
	stddev = math.Sqrt(sq / float64(n))
	return mean, stddev
}
