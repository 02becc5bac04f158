package scorecard

import (
	"fmt"
	"math"
)

// Segment is one linear piece of the probability→score mapping:
// score = Slope*p + Intercept, valid on [ProbL, ProbR]. Segments are
// contiguous and together cover [0, 1].
type Segment struct {
	Index     int     `json:"index" yaml:"index" db:"seg_index"`
	ProbL     float64 `json:"prob_l" yaml:"prob_l" db:"prob_l"`
	ProbR     float64 `json:"prob_r" yaml:"prob_r" db:"prob_r"`
	Slope     float64 `json:"slope" yaml:"slope" db:"slope"`
	Intercept float64 `json:"intercept" yaml:"intercept" db:"intercept"`
}

// scoreBins assigns each bin its integer score:
//
//	score = round(standard_score + pdo * log2(adjusted_odds / standard_odds))
//
// AdjustedOdds is strictly positive after repair, so the log is always
// finite.
func scoreBins(cfg Config, bins []Bin) []Bin {
	out := make([]Bin, len(bins))
	copy(out, bins)
	for i := range out {
		out[i].Score = int(math.Round(float64(cfg.StandardScore) +
			float64(cfg.PDO)*math.Log2(out[i].AdjustedOdds/cfg.StandardOdds)))
	}
	return out
}

// buildMapping links the (mean_prob, score) anchor of every bin into a
// piecewise-linear mapping and extrapolates beyond the extreme bin
// midpoints: a full pdo past the probability-0 end and half a pdo past
// the probability-1 end, oriented so the score keeps moving toward the
// good side.
func buildMapping(cfg Config, bins []Bin) ([]Segment, error) {
	n := len(bins)

	minScore, maxScore := bins[0].Score, bins[0].Score
	for _, b := range bins {
		if b.Score < minScore {
			minScore = b.Score
		}
		if b.Score > maxScore {
			maxScore = b.Score
		}
	}

	var scoreAtZero, scoreAtOne float64
	if cfg.BadFlag {
		scoreAtZero = float64(maxScore) + float64(cfg.PDO)
		scoreAtOne = float64(minScore) - float64(cfg.PDO)/2
	} else {
		scoreAtZero = float64(minScore) - float64(cfg.PDO)
		scoreAtOne = float64(maxScore) + float64(cfg.PDO)/2
	}

	segments := make([]Segment, n+1)
	for i := 0; i <= n; i++ {
		probL, scoreL := 0.0, scoreAtZero
		if i > 0 {
			probL = bins[i-1].MeanProb
			scoreL = float64(bins[i-1].Score)
		}
		probR, scoreR := 1.0, scoreAtOne
		if i < n {
			probR = bins[i].MeanProb
			scoreR = float64(bins[i].Score)
		}

		den := probR - probL
		if den <= 0 {
			return nil, fmt.Errorf("%w: segment %d spans [%f, %f]", ErrZeroWidthSegment, i, probL, probR)
		}

		segments[i] = Segment{
			Index:     i,
			ProbL:     probL,
			ProbR:     probR,
			Slope:     (scoreR - scoreL) / den,
			Intercept: (probR*scoreL - probL*scoreR) / den,
		}
	}

	return segments, nil
}
