package main

import (
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/instrumentdiff/internal/config"
	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/logging"
	"github.com/JonMunkholm/instrumentdiff/internal/report"
	"github.com/spf13/cobra"
)

// app is the state shared by every subcommand. cfg is filled in by the
// root command's PersistentPreRunE, after flags are parsed.
type app struct {
	cfg *config.Config

	dataRoot  string
	tablePath string
	logLevel  string
	plain     bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "instrumentdiff",
		Short:         "Flatten instrument configurations into a table and compare them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.dataRoot, "data-root", "", "directory with one subdirectory per instrument (env INSTRUMENT_DATA_ROOT)")
	pf.StringVar(&a.tablePath, "table", "", "path of the CSV table (env INSTRUMENT_TABLE)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	pf.BoolVar(&a.plain, "plain", false, "disable colored output")

	root.AddCommand(
		a.buildCmd(),
		a.previewCmd(),
		a.listCmd(),
		a.compareCmd(),
		a.interactiveCmd(),
		a.serveCmd(),
		a.snapshotsCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and configures logging.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data-root") {
		cfg.Build.DataRoot = a.dataRoot
	}
	if flags.Changed("table") {
		cfg.Build.TablePath = a.tablePath
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	a.cfg = cfg
	return nil
}

func (a *app) renderer() *report.Renderer {
	styles := report.DefaultStyles()
	if a.plain {
		styles = report.PlainStyles()
	}
	return report.New(styles, a.cfg.Compare.SameLimit)
}

func (a *app) builder() *core.Builder {
	b := core.NewBuilder(a.cfg.Build.Separator)
	b.PrefixMultiple = a.cfg.Build.PrefixMultiple
	return b
}

func (a *app) sources() ([]core.Source, error) {
	srcs, err := core.DirSources(a.cfg.Build.DataRoot, a.cfg.Build.Extensions)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return srcs, nil
}

// comparator loads the persisted table.
func (a *app) comparator() (*core.Comparator, error) {
	t, err := core.LoadCSV(a.cfg.Build.TablePath)
	if err != nil {
		return nil, err
	}
	slog.Debug("table loaded", "path", a.cfg.Build.TablePath, "instruments", t.Len())
	return core.NewComparator(t), nil
}
