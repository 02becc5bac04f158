package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bin is a shorthand constructor for repair tests: odds derived from the
// counts the way fitBins does it.
func bin(good, bad int) Bin {
	b := Bin{Hits: good + bad, GoodHits: good, BadHits: bad}
	if bad > 0 {
		b.OddsValue = float64(good) / float64(bad)
		b.OddsDefined = true
	}
	return b
}

func TestAdjustOdds_LowEndHalving(t *testing.T) {
	bins := []Bin{
		bin(0, 10), // zero good, odds 0
		bin(0, 10), // zero good
		bin(2, 10),
		bin(5, 10),
		bin(8, 10),
	}

	out, err := adjustOdds(bins)
	require.NoError(t, err)

	// min nonzero odds is 0.2 at index 2; below it the running minimum
	// halves each step down.
	assert.InDelta(t, 0.1, out[1].AdjustedOdds, 1e-12)
	assert.InDelta(t, 0.05, out[0].AdjustedOdds, 1e-12)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].AdjustedOdds, out[i-1].AdjustedOdds)
	}
}

func TestAdjustOdds_HighEndDoubling(t *testing.T) {
	bins := []Bin{
		bin(2, 10),
		bin(5, 10),
		bin(8, 10),
		bin(10, 0), // zero bad, odds undefined
		bin(10, 0), // zero bad
	}

	out, err := adjustOdds(bins)
	require.NoError(t, err)

	// max odds is 0.8 at index 2; above it the running maximum doubles.
	assert.InDelta(t, 1.6, out[3].AdjustedOdds, 1e-12)
	assert.InDelta(t, 3.2, out[4].AdjustedOdds, 1e-12)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i].AdjustedOdds, out[i-1].AdjustedOdds)
	}
}

func TestAdjustOdds_InteriorAverage(t *testing.T) {
	bins := []Bin{
		bin(2, 10),
		bin(0, 0), // empty bin between defined neighbors
		bin(6, 10),
		bin(8, 10),
		bin(9, 10),
	}

	out, err := adjustOdds(bins)
	require.NoError(t, err)

	assert.InDelta(t, (0.2+0.6)/2, out[1].AdjustedOdds, 1e-12)
}

func TestAdjustOdds_InteriorCarryForward(t *testing.T) {
	bins := []Bin{
		bin(2, 10),
		bin(0, 0),
		bin(0, 0), // next is also zero: carry the previous value
		bin(6, 10),
		bin(8, 10),
		bin(9, 10),
	}

	out, err := adjustOdds(bins)
	require.NoError(t, err)

	// Index 1 carries 0.2 forward (its next neighbor is still zero at
	// that point); index 2 then averages its repaired neighbors.
	assert.InDelta(t, 0.2, out[1].AdjustedOdds, 1e-12)
	assert.InDelta(t, (0.2+0.6)/2, out[2].AdjustedOdds, 1e-12)
}

func TestAdjustOdds_AllZero(t *testing.T) {
	bins := []Bin{bin(0, 10), bin(0, 10), bin(0, 10)}

	_, err := adjustOdds(bins)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestAdjustOdds_UnrepairableBinReported(t *testing.T) {
	// Index 0 has undefined odds but a positive good count, so neither
	// the low-end walk nor the interior pass touches it. That must be
	// reported, not passed on as a zero.
	bins := []Bin{
		bin(5, 0),
		bin(5, 10),
		bin(8, 10),
	}

	_, err := adjustOdds(bins)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestAdjustOdds_DoesNotMutateInput(t *testing.T) {
	bins := []Bin{bin(0, 10), bin(2, 10), bin(8, 10)}

	_, err := adjustOdds(bins)
	require.NoError(t, err)

	assert.Zero(t, bins[0].AdjustedOdds)
	assert.Zero(t, bins[1].AdjustedOdds)
}
