package cli

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/croswell/sctl/pkg/data"
)

var (
	scoreProbFlag = &urfave.Float64SliceFlag{
		Name:  "prob",
		Usage: "Probability to score (repeatable)",
	}

	scoreFileFlag = &urfave.StringFlag{
		Name:  "file",
		Usage: "CSV file with one probability per row",
	}

	scoreSaveFlag = &urfave.BoolFlag{
		Name:  "save",
		Usage: "Persist the scores under a run name",
	}

	scoreRunFlag = &urfave.StringFlag{
		Name:  "run",
		Usage: "Run name used when saving scores",
		Value: "default",
	}

	scoreWorkersFlag = &urfave.IntFlag{
		Name:  "workers",
		Usage: "Number of concurrent scoring workers (default: number of CPUs)",
	}

	scoreCmd = &urfave.Command{
		Name:    "score",
		Aliases: []string{"s"},
		Usage:   "Score probabilities with a stored model",
		UsageText: `sctl score --model prod --prob 0.12 --prob 0.8
   sctl score --model prod --file probs.csv --save --run nightly`,
		Action: cmdScore,
		Flags: []urfave.Flag{
			modelNameFlag,
			scoreProbFlag,
			scoreFileFlag,
			scoreSaveFlag,
			scoreRunFlag,
			scoreWorkersFlag,
		},
	}
)

// ScoredItem pairs one input probability with its score.
type ScoredItem struct {
	Prob  float64 `json:"prob" yaml:"prob"`
	Score int     `json:"score" yaml:"score"`
}

// ScoreResult is the output of the score command.
type ScoreResult struct {
	Model    string       `json:"model" yaml:"model"`
	Run      string       `json:"run,omitempty" yaml:"run,omitempty"`
	Count    int          `json:"count" yaml:"count"`
	Items    []ScoredItem `json:"items" yaml:"items"`
	Duration string       `json:"duration" yaml:"duration"`
}

func cmdScore(c *urfave.Context) error {
	start := time.Now()
	modelName := c.String(modelNameFlag.Name)
	cfg := getConfig(c)

	probs, err := loadScoreProbs(c)
	if err != nil {
		return err
	}

	m, err := data.GetModel(cfg.DB, modelName)
	if err != nil {
		return err
	}

	workers := c.Int(scoreWorkersFlag.Name)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	scores, err := m.TransformParallel(c.Context, probs, workers)
	if err != nil {
		return fmt.Errorf("scoring with model %s: %w", modelName, err)
	}

	res := ScoreResult{
		Model: modelName,
		Count: len(scores),
		Items: make([]ScoredItem, len(scores)),
	}
	for i, s := range scores {
		res.Items[i] = ScoredItem{Prob: probs[i], Score: s}
	}

	if c.Bool(scoreSaveFlag.Name) {
		run := c.String(scoreRunFlag.Name)
		if _, err := data.SaveScores(cfg.DB, modelName, run, probs, scores); err != nil {
			return err
		}
		res.Run = run
		slog.Debug("scores stored", "model", modelName, "run", run, "count", len(scores))
	}

	res.Duration = time.Since(start).String()
	return encode(res)
}

func loadScoreProbs(c *urfave.Context) ([]float64, error) {
	file := c.String(scoreFileFlag.Name)
	probs := c.Float64Slice(scoreProbFlag.Name)

	switch {
	case file != "" && len(probs) > 0:
		return nil, fmt.Errorf("--file and --prob are mutually exclusive")
	case file != "":
		return data.ReadProbCSV(file)
	case len(probs) > 0:
		return probs, nil
	default:
		return nil, fmt.Errorf("either --file or --prob is required")
	}
}
