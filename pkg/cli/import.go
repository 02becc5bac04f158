package cli

import (
	"log/slog"
	"time"

	urfave "github.com/urfave/cli/v2"

	"github.com/croswell/sctl/pkg/data"
)

const batchNameDefault = "default"

var (
	importFileFlag = &urfave.StringFlag{
		Name:     "file",
		Usage:    "Path to the CSV file with prob,label rows",
		Required: true,
	}

	batchFlag = &urfave.StringFlag{
		Name:  "batch",
		Usage: "Name of the sample batch",
		Value: batchNameDefault,
	}

	importCmd = &urfave.Command{
		Name:    "import",
		Aliases: []string{"i"},
		Usage:   "Import probability/label samples from a CSV file",
		UsageText: `sctl import --file samples.csv                 # into the default batch
   sctl import --file samples.csv --batch q3      # into a named batch`,
		Action: cmdImport,
		Flags: []urfave.Flag{
			importFileFlag,
			batchFlag,
		},
	}
)

// ImportResult is the output of the import command.
type ImportResult struct {
	Batch     string `json:"batch" yaml:"batch"`
	Samples   int    `json:"samples" yaml:"samples"`
	Positives int    `json:"positives" yaml:"positives"`
	Duration  string `json:"duration" yaml:"duration"`
}

func cmdImport(c *urfave.Context) error {
	start := time.Now()
	path := c.String(importFileFlag.Name)
	batch := c.String(batchFlag.Name)

	probs, labels, err := data.ReadSampleCSV(path)
	if err != nil {
		return err
	}

	cfg := getConfig(c)
	n, err := data.SaveSamples(cfg.DB, batch, probs, labels)
	if err != nil {
		return err
	}

	positives := 0
	for _, l := range labels {
		positives += l
	}

	slog.Debug("samples imported", "batch", batch, "count", n)

	return encode(ImportResult{
		Batch:     batch,
		Samples:   n,
		Positives: positives,
		Duration:  time.Since(start).String(),
	})
}
