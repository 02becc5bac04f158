// Package scorecard converts binary-classifier probabilities into integer
// credit scores on a points-to-double-odds (PDO) scale.
//
// Fit partitions the probability range into equal-width bins, computes
// per-bin good/bad odds, repairs degenerate odds, and builds a
// piecewise-linear probability-to-score mapping. The fitted Model is
// immutable; Transform only reads the mapping table.
package scorecard

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

const (
	// NBinsDefault is the number of equal-width bins over [0, 1).
	NBinsDefault = 20

	// StandardScoreDefault is the score assigned where the good/bad odds
	// equal StandardOddsDefault.
	StandardScoreDefault = 500

	// StandardOddsDefault is the odds anchored at StandardScoreDefault.
	StandardOddsDefault = 0.01

	// PDODefault is the score increase corresponding to a doubling of odds.
	PDODefault = 20
)

var (
	// ErrShape indicates empty or mismatched fit inputs.
	ErrShape = errors.New("probabilities and labels must be non-empty and of equal length")

	// ErrDegenerateInput indicates that no bin has defined, nonzero odds,
	// so the repair loop has no anchor to work from.
	ErrDegenerateInput = errors.New("no bin has nonzero odds")

	// ErrZeroWidthSegment indicates a degenerate anchor interval in the
	// mapping table.
	ErrZeroWidthSegment = errors.New("zero-width mapping segment")

	// ErrNotFitted indicates a model without a mapping table.
	ErrNotFitted = errors.New("model has no mapping table")
)

// Config holds the scorecard parameters. Fixed at fit time; the fitted
// model carries a copy.
type Config struct {
	NBins         int     `json:"n_bins" yaml:"n_bins" db:"n_bins"`
	StandardScore int     `json:"standard_score" yaml:"standard_score" db:"standard_score"`
	StandardOdds  float64 `json:"standard_odds" yaml:"standard_odds" db:"standard_odds"`
	PDO           int     `json:"pdo" yaml:"pdo" db:"pdo"`

	// BadFlag indicates that label=1 denotes the undesirable outcome
	// (the usual convention in credit models, where 1 marks an overdue
	// account). When set, higher probability yields a lower score.
	BadFlag bool `json:"bad_flag" yaml:"bad_flag" db:"bad_flag"`
}

// DefaultConfig returns the standard scorecard configuration
// (20 bins, 500 points at 1:100 odds, 20 points to double odds, bad=1).
func DefaultConfig() Config {
	return Config{
		NBins:         NBinsDefault,
		StandardScore: StandardScoreDefault,
		StandardOdds:  StandardOddsDefault,
		PDO:           PDODefault,
		BadFlag:       true,
	}
}

// Validate checks the configuration scalars.
func (c Config) Validate() error {
	if c.NBins <= 0 {
		return fmt.Errorf("n_bins must be positive, got %d", c.NBins)
	}
	if c.StandardOdds <= 0 {
		return fmt.Errorf("standard_odds must be positive, got %f", c.StandardOdds)
	}
	if c.PDO <= 0 {
		return fmt.Errorf("pdo must be positive, got %d", c.PDO)
	}
	return nil
}

func (c Config) step() float64 {
	return 1.0 / float64(c.NBins)
}

// Model is the fitted scorecard: configuration, per-bin statistics, and
// the piecewise-linear mapping table. Read-only after Fit.
type Model struct {
	Config   Config    `json:"config" yaml:"config"`
	Bins     []Bin     `json:"bins" yaml:"bins"`
	Segments []Segment `json:"segments" yaml:"segments"`
}

// Fit builds a scorecard model from probabilities in [0, 1) and binary
// labels. Returns ErrShape on empty or mismatched inputs and
// ErrDegenerateInput when no bin yields usable odds.
func Fit(cfg Config, probs []float64, labels []int) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bins, err := fitBins(cfg, probs, labels)
	if err != nil {
		return nil, err
	}

	bins, err = adjustOdds(bins)
	if err != nil {
		return nil, err
	}

	// Re-orientation onto the original probability axis must happen after
	// odds adjustment: the repair walks bins in flipped order.
	bins = orientBins(cfg, bins)
	bins = scoreBins(cfg, bins)

	segments, err := buildMapping(cfg, bins)
	if err != nil {
		return nil, err
	}

	return &Model{Config: cfg, Bins: bins, Segments: segments}, nil
}

// Score maps a single probability to an integer score. Total over [0, 1]:
// out-of-range segment lookups clamp to the boundary segments.
func (m *Model) Score(p float64) int {
	// Segment lookup is center-offset, unlike the bin assignment in Fit:
	// segment i spans the interval between consecutive bin midpoints.
	idx := int((p + m.Config.step()/2) / m.Config.step())
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.Segments) {
		idx = len(m.Segments) - 1
	}
	s := m.Segments[idx]
	return int(math.Round(s.Slope*p + s.Intercept))
}

// Transform maps probabilities to integer scores, preserving order and
// length. Pure with respect to the model.
func (m *Model) Transform(probs []float64) ([]int, error) {
	if m == nil || len(m.Segments) == 0 {
		return nil, ErrNotFitted
	}

	scores := make([]int, len(probs))
	for i, p := range probs {
		scores[i] = m.Score(p)
	}
	return scores, nil
}

// TransformParallel scores probabilities in workers concurrent chunks.
// The mapping table is immutable, so chunks share it without locking.
// Output is identical to Transform.
func (m *Model) TransformParallel(ctx context.Context, probs []float64, workers int) ([]int, error) {
	if m == nil || len(m.Segments) == 0 {
		return nil, ErrNotFitted
	}
	if workers <= 1 || len(probs) <= workers {
		return m.Transform(probs)
	}

	scores := make([]int, len(probs))
	chunk := (len(probs) + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(probs); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(probs) {
			hi = len(probs)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				scores[i] = m.Score(probs[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transform interrupted: %w", err)
	}
	return scores, nil
}

// TotalHits returns the number of samples the model was fitted on.
func (m *Model) TotalHits() int {
	total := 0
	for _, b := range m.Bins {
		total += b.Hits
	}
	return total
}
