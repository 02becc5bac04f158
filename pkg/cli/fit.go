package cli

import (
	"fmt"
	"log/slog"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/croswell/sctl/pkg/data"
	"github.com/croswell/sctl/pkg/scorecard"
)

var (
	modelNameFlag = &urfave.StringFlag{
		Name:     "model",
		Usage:    "Name of the model",
		Required: true,
	}

	fitBatchFlag = &urfave.StringFlag{
		Name:  "batch",
		Usage: "Fit from a stored sample batch",
	}

	fitFileFlag = &urfave.StringFlag{
		Name:  "file",
		Usage: "Fit directly from a CSV file with prob,label rows",
	}

	binsFlag = &urfave.IntFlag{
		Name:  "bins",
		Usage: fmt.Sprintf("Number of equal-width probability bins (default: %d)", scorecard.NBinsDefault),
	}

	standardScoreFlag = &urfave.IntFlag{
		Name:  "score",
		Usage: fmt.Sprintf("Score at the standard odds (default: %d)", scorecard.StandardScoreDefault),
	}

	standardOddsFlag = &urfave.Float64Flag{
		Name:  "odds",
		Usage: fmt.Sprintf("Good/bad odds anchored at the standard score (default: %g)", scorecard.StandardOddsDefault),
	}

	pdoFlag = &urfave.IntFlag{
		Name:  "pdo",
		Usage: fmt.Sprintf("Points to double the odds (default: %d)", scorecard.PDODefault),
	}

	goodFlag = &urfave.BoolFlag{
		Name:  "good",
		Usage: "Treat label=1 as the good outcome (default: label=1 is bad)",
	}

	fitOutFlag = &urfave.StringFlag{
		Name:  "out",
		Usage: "Also export the fitted model to a YAML file",
	}

	fitCmd = &urfave.Command{
		Name:    "fit",
		Aliases: []string{"f"},
		Usage:   "Fit a scorecard model and store it",
		UsageText: `sctl fit --model prod --batch q3               # fit from a stored batch
   sctl fit --model prod --file samples.csv       # fit straight from CSV
   sctl fit --model prod --batch q3 --bins 10 --pdo 40`,
		Action: cmdFit,
		Flags: []urfave.Flag{
			modelNameFlag,
			fitBatchFlag,
			fitFileFlag,
			binsFlag,
			standardScoreFlag,
			standardOddsFlag,
			pdoFlag,
			goodFlag,
			fitOutFlag,
		},
	}
)

// BinSummary is the reporting view of one fitted bin.
type BinSummary struct {
	Index   int     `json:"index" yaml:"index"`
	ProbL   float64 `json:"prob_l" yaml:"prob_l"`
	ProbR   float64 `json:"prob_r" yaml:"prob_r"`
	Hits    int     `json:"hits" yaml:"hits"`
	HitRate float64 `json:"hit_rate" yaml:"hit_rate"`
	BadRate float64 `json:"bad_rate" yaml:"bad_rate"`
	Odds    float64 `json:"adjusted_odds" yaml:"adjusted_odds"`
	Score   int     `json:"score" yaml:"score"`
}

// FitResult is the output of the fit command.
type FitResult struct {
	Model    string           `json:"model" yaml:"model"`
	Config   scorecard.Config `json:"config" yaml:"config"`
	Samples  int              `json:"samples" yaml:"samples"`
	Bins     []BinSummary     `json:"bins" yaml:"bins"`
	Duration string           `json:"duration" yaml:"duration"`
}

func cmdFit(c *urfave.Context) error {
	start := time.Now()
	modelName := c.String(modelNameFlag.Name)
	cfg := getConfig(c)

	probs, labels, err := loadFitSamples(c, cfg)
	if err != nil {
		return err
	}

	scCfg := scorecardConfig(c, cfg.Defaults)
	m, err := scorecard.Fit(scCfg, probs, labels)
	if err != nil {
		return fmt.Errorf("fitting model %s: %w", modelName, err)
	}

	if err := data.SaveModel(cfg.DB, modelName, m); err != nil {
		return err
	}
	slog.Debug("model stored", "model", modelName, "samples", m.TotalHits())

	if out := c.String(fitOutFlag.Name); out != "" {
		if err := data.WriteModelYAML(out, m); err != nil {
			return err
		}
		slog.Debug("model exported", "path", out)
	}

	return encode(FitResult{
		Model:    modelName,
		Config:   m.Config,
		Samples:  m.TotalHits(),
		Bins:     summarizeBins(m),
		Duration: time.Since(start).String(),
	})
}

func loadFitSamples(c *urfave.Context, cfg *appConfig) ([]float64, []int, error) {
	file := c.String(fitFileFlag.Name)
	batch := c.String(fitBatchFlag.Name)

	switch {
	case file != "" && batch != "":
		return nil, nil, fmt.Errorf("--file and --batch are mutually exclusive")
	case file != "":
		return data.ReadSampleCSV(file)
	case batch != "":
		return data.GetSamples(cfg.DB, batch)
	default:
		return data.GetSamples(cfg.DB, batchNameDefault)
	}
}

// scorecardConfig starts from the configured defaults and applies any
// explicitly set flags on top.
func scorecardConfig(c *urfave.Context, defaults scorecard.Config) scorecard.Config {
	cfg := defaults
	if c.IsSet(binsFlag.Name) {
		cfg.NBins = c.Int(binsFlag.Name)
	}
	if c.IsSet(standardScoreFlag.Name) {
		cfg.StandardScore = c.Int(standardScoreFlag.Name)
	}
	if c.IsSet(standardOddsFlag.Name) {
		cfg.StandardOdds = c.Float64(standardOddsFlag.Name)
	}
	if c.IsSet(pdoFlag.Name) {
		cfg.PDO = c.Int(pdoFlag.Name)
	}
	if c.IsSet(goodFlag.Name) {
		cfg.BadFlag = !c.Bool(goodFlag.Name)
	}
	return cfg
}

func summarizeBins(m *scorecard.Model) []BinSummary {
	total := m.TotalHits()
	out := make([]BinSummary, len(m.Bins))
	for i, b := range m.Bins {
		s := BinSummary{
			Index: b.Index,
			ProbL: b.ProbL,
			ProbR: b.ProbR,
			Hits:  b.Hits,
			Odds:  b.AdjustedOdds,
			Score: b.Score,
		}
		if total > 0 {
			s.HitRate = float64(b.Hits) / float64(total)
		}
		if b.Hits > 0 {
			s.BadRate = float64(b.BadHits) / float64(b.Hits)
		}
		out[i] = s
	}
	return out
}
