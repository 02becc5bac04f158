package cli

import (
	urfave "github.com/urfave/cli/v2"

	"github.com/croswell/sctl/pkg/data"
)

var (
	viewCmd = &urfave.Command{
		Name:    "view",
		Aliases: []string{"v"},
		Usage:   "View stored models, batches, scores, and database state",
		Subcommands: []*urfave.Command{
			{
				Name:   "models",
				Usage:  "List stored models",
				Action: cmdViewModels,
			},
			{
				Name:   "model",
				Usage:  "Show one model with its bins and segments",
				Action: cmdViewModel,
				Flags:  []urfave.Flag{modelNameFlag},
			},
			{
				Name:   "batches",
				Usage:  "List imported sample batches",
				Action: cmdViewBatches,
			},
			{
				Name:   "scores",
				Usage:  "Show score statistics for a model",
				Action: cmdViewScores,
				Flags:  []urfave.Flag{modelNameFlag},
			},
			{
				Name:   "state",
				Usage:  "Show database row counts",
				Action: cmdViewState,
			},
		},
	}
)

func cmdViewModels(c *urfave.Context) error {
	cfg := getConfig(c)
	list, err := data.ListModels(cfg.DB)
	if err != nil {
		return err
	}
	return encode(list)
}

func cmdViewModel(c *urfave.Context) error {
	cfg := getConfig(c)
	m, err := data.GetModel(cfg.DB, c.String(modelNameFlag.Name))
	if err != nil {
		return err
	}
	return encode(m)
}

func cmdViewBatches(c *urfave.Context) error {
	cfg := getConfig(c)
	list, err := data.ListBatches(cfg.DB)
	if err != nil {
		return err
	}
	return encode(list)
}

func cmdViewScores(c *urfave.Context) error {
	cfg := getConfig(c)
	stats, err := data.GetScoreStats(cfg.DB, c.String(modelNameFlag.Name))
	if err != nil {
		return err
	}
	return encode(stats)
}

func cmdViewState(c *urfave.Context) error {
	cfg := getConfig(c)
	state, err := data.GetDataState(cfg.DB)
	if err != nil {
		return err
	}
	return encode(state)
}
