package cli

import (
	"log/slog"

	urfave "github.com/urfave/cli/v2"

	"github.com/croswell/sctl/pkg/data"
)

var (
	exportFileFlag = &urfave.StringFlag{
		Name:     "file",
		Usage:    "Path of the YAML model file",
		Required: true,
	}

	exportCmd = &urfave.Command{
		Name:      "export",
		Aliases:   []string{"e"},
		Usage:     "Export a stored model to a YAML file",
		UsageText: "sctl export --model prod --file prod.yaml",
		Action:    cmdExport,
		Flags: []urfave.Flag{
			modelNameFlag,
			exportFileFlag,
		},
	}

	loadCmd = &urfave.Command{
		Name:      "load",
		Aliases:   []string{"l"},
		Usage:     "Load a model from a YAML file and store it",
		UsageText: "sctl load --model prod --file prod.yaml",
		Action:    cmdLoad,
		Flags: []urfave.Flag{
			modelNameFlag,
			exportFileFlag,
		},
	}
)

// ExportResult is the output of the export and load commands.
type ExportResult struct {
	Model string `json:"model" yaml:"model"`
	File  string `json:"file" yaml:"file"`
}

func cmdExport(c *urfave.Context) error {
	cfg := getConfig(c)
	modelName := c.String(modelNameFlag.Name)
	file := c.String(exportFileFlag.Name)

	m, err := data.GetModel(cfg.DB, modelName)
	if err != nil {
		return err
	}
	if err := data.WriteModelYAML(file, m); err != nil {
		return err
	}
	slog.Debug("model exported", "model", modelName, "path", file)

	return encode(ExportResult{Model: modelName, File: file})
}

func cmdLoad(c *urfave.Context) error {
	cfg := getConfig(c)
	modelName := c.String(modelNameFlag.Name)
	file := c.String(exportFileFlag.Name)

	m, err := data.ReadModelYAML(file)
	if err != nil {
		return err
	}
	if err := data.SaveModel(cfg.DB, modelName, m); err != nil {
		return err
	}
	slog.Debug("model loaded", "model", modelName, "path", file)

	return encode(ExportResult{Model: modelName, File: file})
}
