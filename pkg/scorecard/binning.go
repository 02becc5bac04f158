package scorecard

import "fmt"

// Bin is one equal-width probability interval with its aggregated
// outcome statistics.
type Bin struct {
	Index    int     `json:"index" yaml:"index" db:"bin_index"`
	ProbL    float64 `json:"prob_l" yaml:"prob_l" db:"prob_l"`
	ProbR    float64 `json:"prob_r" yaml:"prob_r" db:"prob_r"`
	MeanProb float64 `json:"mean_prob" yaml:"mean_prob" db:"mean_prob"`
	Hits     int     `json:"hits" yaml:"hits" db:"hits"`
	GoodHits int     `json:"good_hits" yaml:"good_hits" db:"good_hits"`
	BadHits  int     `json:"bad_hits" yaml:"bad_hits" db:"bad_hits"`

	// OddsValue is good_hits/bad_hits, valid only when OddsDefined.
	// Division by zero is reported through the flag rather than Inf/NaN
	// so the repair step can treat undefined odds explicitly.
	OddsValue   float64 `json:"odds" yaml:"odds" db:"odds"`
	OddsDefined bool    `json:"odds_defined" yaml:"odds_defined" db:"odds_defined"`

	// AdjustedOdds is strictly positive and finite after repair.
	AdjustedOdds float64 `json:"adjusted_odds" yaml:"adjusted_odds" db:"adjusted_odds"`

	Score int `json:"score" yaml:"score" db:"score"`
}

// fitBins assigns each sample to floor(p'/step) where p' is the
// probability flipped to 1-p when cfg.BadFlag is set, and aggregates
// per-bin counts and raw odds. The returned bins are in flipped order;
// orientBins finalizes indices and interval bounds.
func fitBins(cfg Config, probs []float64, labels []int) ([]Bin, error) {
	if len(probs) == 0 || len(labels) == 0 {
		return nil, ErrShape
	}
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("%w: %d probabilities vs %d labels", ErrShape, len(probs), len(labels))
	}

	step := cfg.step()
	bins := make([]Bin, cfg.NBins)
	labelSums := make([]int, cfg.NBins)

	for i, p := range probs {
		if cfg.BadFlag {
			p = 1.0 - p
		}
		idx := int(p / step)
		// p'=1 lands one past the end; clamp to the last bin.
		if idx >= cfg.NBins {
			idx = cfg.NBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Hits++
		labelSums[idx] += labels[i]
	}

	for i := range bins {
		if cfg.BadFlag {
			bins[i].BadHits = labelSums[i]
			bins[i].GoodHits = bins[i].Hits - bins[i].BadHits
		} else {
			bins[i].GoodHits = labelSums[i]
			bins[i].BadHits = bins[i].Hits - bins[i].GoodHits
		}

		if bins[i].BadHits > 0 {
			bins[i].OddsValue = float64(bins[i].GoodHits) / float64(bins[i].BadHits)
			bins[i].OddsDefined = true
		}
	}

	return bins, nil
}

// orientBins orders bins by ascending original probability and assigns
// interval bounds. With BadFlag the counts were aggregated on flipped
// probabilities, so the sequence is reversed; bin 0 always covers the
// lowest original probabilities afterwards.
func orientBins(cfg Config, bins []Bin) []Bin {
	out := make([]Bin, len(bins))
	if cfg.BadFlag {
		for i := range bins {
			out[i] = bins[len(bins)-1-i]
		}
	} else {
		copy(out, bins)
	}

	step := cfg.step()
	for i := range out {
		out[i].Index = i
		out[i].ProbL = float64(i) * step
		out[i].ProbR = float64(i+1) * step
		out[i].MeanProb = (out[i].ProbL + out[i].ProbR) / 2
	}
	return out
}
