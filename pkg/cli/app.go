// Package cli implements the sctl command surface.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/jmoiron/sqlx"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/croswell/sctl/pkg/config"
	"github.com/croswell/sctl/pkg/data"
	"github.com/croswell/sctl/pkg/logging"
	"github.com/croswell/sctl/pkg/scorecard"
)

const (
	name         = "sctl"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the sqlite database file (default: $HOME/.sctl/data.db)",
	}

	dsnFlag = &urfave.StringFlag{
		Name:  "dsn",
		Usage: "Postgres connection string (overrides --db)",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: fmt.Sprintf("Output format [json, yaml] (default: %s, or the configured value)", formatJSON),
	}
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	Driver   string
	DSN      string
	Debug    bool
	Defaults scorecard.Config
	DB       *sqlx.DB
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 name,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for turning classifier probabilities into scorecard scores",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			dsnFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			importCmd,
			fitCmd,
			scoreCmd,
			exportCmd,
			loadCmd,
			viewCmd,
		},
		Before: func(c *urfave.Context) error {
			if c.Bool(debugFlag.Name) {
				logging.SetDefaultCLILogger("debug")
			}

			home, created, err := config.GetOrCreateHomeDir(name)
			if err != nil {
				return fmt.Errorf("resolving home dir: %w", err)
			}
			if created {
				slog.Debug("created app home", "path", home)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			f := c.String(formatFlag.Name)
			if f == "" {
				f = conf.Format
			}
			outputFormat = formatJSON
			if f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			driver, dsn := resolveStore(c, conf, home)

			db, err := data.Init(driver, dsn)
			if err != nil {
				return fmt.Errorf("initializing %s store: %w", driver, err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				Driver:   driver,
				DSN:      dsn,
				Debug:    c.Bool(debugFlag.Name),
				Defaults: conf.Scorecard,
				DB:       db,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

// resolveStore picks the store driver and DSN: flags win over config,
// postgres wins over sqlite, the sqlite file defaults into the app home.
func resolveStore(c *urfave.Context, conf *config.Config, home string) (string, string) {
	if dsn := c.String(dsnFlag.Name); dsn != "" {
		return data.DriverPostgres, dsn
	}
	if conf.Driver == data.DriverPostgres && conf.DSN != "" {
		return data.DriverPostgres, conf.DSN
	}
	if dbPath := c.String(dbFilePathFlag.Name); dbPath != "" {
		return data.DriverSQLite, dbPath
	}
	if conf.Driver == data.DriverSQLite && conf.DSN != "" {
		return data.DriverSQLite, conf.DSN
	}
	return data.DriverSQLite, path.Join(home, data.DataFileName)
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
