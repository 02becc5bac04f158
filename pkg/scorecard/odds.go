package scorecard

import "fmt"

// adjustOdds repairs degenerate per-bin odds so every bin carries a
// strictly positive, finite value, keeping the rank order needed for a
// monotonic score curve. Returns a new slice; the input is not mutated.
//
// Three regions are repaired around the minimum-nonzero index L and the
// maximum index M:
//   - below L: once a zero-good bin is seen, each step down halves the
//     running minimum
//   - above M: once a zero-bad bin is seen, each step up doubles the
//     running maximum
//   - between: a zero bin takes the average of its neighbors, or carries
//     the previous value forward when the next is also zero
func adjustOdds(bins []Bin) ([]Bin, error) {
	out := make([]Bin, len(bins))
	copy(out, bins)

	// Undefined odds start at zero and get repaired below.
	for i := range out {
		if out[i].OddsDefined {
			out[i].AdjustedOdds = out[i].OddsValue
		} else {
			out[i].AdjustedOdds = 0
		}
	}

	maxIdx := 0
	minIdx := -1
	for i := range out {
		if out[i].AdjustedOdds > out[maxIdx].AdjustedOdds {
			maxIdx = i
		}
		if out[i].AdjustedOdds > 0 && (minIdx < 0 || out[i].AdjustedOdds < out[minIdx].AdjustedOdds) {
			minIdx = i
		}
	}
	if minIdx < 0 {
		return nil, ErrDegenerateInput
	}

	minOdds := out[minIdx].AdjustedOdds
	zeroGood := false
	for i := minIdx - 1; i >= 0; i-- {
		if out[i].GoodHits == 0 {
			zeroGood = true
		}
		if zeroGood {
			minOdds /= 2
			out[i].AdjustedOdds = minOdds
		}
	}

	maxOdds := out[maxIdx].AdjustedOdds
	zeroBad := false
	for i := maxIdx + 1; i < len(out); i++ {
		if out[i].BadHits == 0 {
			zeroBad = true
		}
		if zeroBad {
			maxOdds *= 2
			out[i].AdjustedOdds = maxOdds
		}
	}

	// The scan stops before maxIdx-1: the bin directly below the
	// maximum is left untouched.
	for i := minIdx + 1; i < maxIdx-1; i++ {
		if out[i].AdjustedOdds != 0 {
			continue
		}
		if out[i+1].AdjustedOdds != 0 {
			out[i].AdjustedOdds = (out[i-1].AdjustedOdds + out[i+1].AdjustedOdds) / 2
		} else {
			out[i].AdjustedOdds = out[i-1].AdjustedOdds
		}
	}

	// The passes above cover every profile produced by monotone-ish
	// data. Anything they miss is reported, never fed to the log.
	for i := range out {
		if out[i].AdjustedOdds <= 0 {
			return nil, fmt.Errorf("%w: bin %d not repairable", ErrDegenerateInput, i)
		}
	}

	return out, nil
}
