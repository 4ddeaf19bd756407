// Package cmd implements the swarmui CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aallbrig/swarmui/catalog"
	"github.com/aallbrig/swarmui/config"
	"github.com/aallbrig/swarmui/controller"
	"github.com/aallbrig/swarmui/discovery"
	"github.com/aallbrig/swarmui/input"
	"github.com/aallbrig/swarmui/journal"
	"github.com/aallbrig/swarmui/link"
	"github.com/aallbrig/swarmui/models"
)

var (
	cfgFile          string
	cfgDefinitions   []string
	cfgCatalogBranch string
	cfgLinkAddr      string
	cfgHistoryFile   string
	cfgJournalDir    string
	cfgNoJournal     bool
	cfgTick          time.Duration
	cfgMetricsAddr   string
	cfgNoColor       bool
	cfgDebug         bool

	// cfg is loaded before any command runs.
	cfg *config.Config
)

const rootLong = `swarmui is an operator console for a robot swarm.

It assembles a command tree from JSON/YAML definition files and the
built-in robot frame catalog, then lets you walk the tree and issue
commands at a prompt while the device link keeps being serviced.

At the prompt:
  robot move 10 20      # navigate and execute in one line
  help                  # describe the current command
  back / root           # move up one level / to the top
  quit                  # end the session

Examples:
  swarmui arm.json camera.yaml          # session with extra definitions
  swarmui --link 127.0.0.1:7447         # talk to a device (see 'swarmui sim')
  swarmui tree --output=json arm.json   # print the assembled tree`

func addPersistentFlags(c *cobra.Command) {
	f := c.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.swarmui/swarmui.yaml)")
	f.StringSliceVarP(&cfgDefinitions, "definitions", "d", nil, "Definition files to load, in order")
	f.StringVar(&cfgCatalogBranch, "catalog-branch", "", "Branch holding the built-in robot commands")
	f.StringVar(&cfgLinkAddr, "link", "", "Device link address (empty uses an in-memory loopback)")
	f.StringVar(&cfgHistoryFile, "history-file", "", "Prompt history file")
	f.StringVar(&cfgJournalDir, "journal-dir", "", "Directory holding journal.db")
	f.BoolVar(&cfgNoJournal, "no-journal", false, "Do not record executed commands")
	f.DurationVar(&cfgTick, "tick", 0, "Session poll interval")
	f.StringVar(&cfgMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	f.BoolVar(&cfgNoColor, "no-color", false, "Disable color output")
	f.BoolVar(&cfgDebug, "debug", false, "Enable debug logging")
}

// flagKeys maps persistent flags onto config keys.
var flagKeys = map[string]string{
	"definitions":    config.KeyDefinitions,
	"catalog-branch": config.KeyCatalogBranch,
	"link":           config.KeyLinkAddr,
	"history-file":   config.KeyHistoryFile,
	"journal-dir":    config.KeyJournalDir,
	"no-journal":     config.KeyNoJournal,
	"tick":           config.KeyTick,
	"metrics-addr":   config.KeyMetricsAddr,
	"no-color":       config.KeyNoColor,
}

func setup(cmd *cobra.Command, _ []string) error {
	logLevel := zerolog.WarnLevel
	if cfgDebug {
		logLevel = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(logLevel)

	v, err := config.NewViper(cfgFile)
	if err != nil {
		return err
	}
	for name, key := range flagKeys {
		if fl := cmd.Flags().Lookup(name); fl != nil {
			if err := v.BindPFlag(key, fl); err != nil {
				return err
			}
		}
	}
	cfg, err = config.Load(v)
	if err != nil {
		return err
	}
	log.Debug().Str("config", v.ConfigFileUsed()).Strs("definitions", cfg.Definitions).Msg("config loaded")
	return nil
}

// buildTree assembles the command tree from the configured definition files
// followed by extra.
func buildTree(extra []string) (*models.Node, error) {
	files := append(append([]string{}, cfg.Definitions...), extra...)
	root, err := discovery.Build(files, discovery.Options{
		CatalogBranch: cfg.CatalogBranch,
		Catalog:       catalog.Frames,
	})
	if err != nil {
		return nil, fmt.Errorf("build command tree: %w", err)
	}
	return root, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	root, err := buildTree(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ch, err := openLink(ctx)
	if err != nil {
		return err
	}

	var recorders controller.Recorders
	if s, ok := ch.(link.Sender); ok && cfg.LinkAddr != "" {
		recorders = append(recorders, link.Forwarder{S: s})
	}
	if !cfg.NoJournal {
		j, err := journal.Open(cfg.JournalDir)
		if err != nil {
			log.Warn().Err(err).Msg("could not open journal, running without")
		} else {
			defer j.Close()
			recorders = append(recorders, j)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := controller.NewMetrics(reg)
	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer srv.Close()
	}

	term, err := input.NewTerminal(input.TerminalConfig{
		HistoryFile: cfg.HistoryFile,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
	if err != nil {
		_ = ch.Stop()
		return err
	}
	defer term.Close()

	opts := controller.Options{Out: term.Stdout(), Metrics: metrics}
	if len(recorders) > 0 {
		opts.Recorder = recorders
	}
	ctl := controller.New(root, ch, input.NewReader(term), opts)
	if err := ctl.Run(ctx, cfg.Tick); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func openLink(ctx context.Context) (link.Channel, error) {
	if cfg.LinkAddr == "" {
		log.Debug().Msg("no link address, using loopback")
		return link.NewLoopback(), nil
	}
	// ctx bounds the stream for the whole session.
	c, err := link.Dial(ctx, cfg.LinkAddr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.LinkAddr, err)
	}
	log.Info().Str("addr", cfg.LinkAddr).Msg("link connected")
	return c, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("metrics listener failed")
		}
	}()
	return srv
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCmd returns a fresh root command with all subcommands (flags reset
// to defaults).
func NewRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:               "swarmui [definition-file...]",
		Short:             "Operator console for navigating and issuing robot commands",
		Long:              rootLong,
		Args:              cobra.ArbitraryArgs,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		RunE:              runSession,
		Version:           versionString(),
	}
	c.SetVersionTemplate("{{.Version}}\n")
	addPersistentFlags(c)
	c.AddCommand(newVersionCmd(), newTreeCmd(), newBrowseCmd(), newJournalCmd(), newSimCmd())
	return c
}
