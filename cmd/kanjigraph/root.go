package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/japaniel/kanjigraph/pkg/config"
	"github.com/japaniel/kanjigraph/pkg/db"
	"github.com/japaniel/kanjigraph/pkg/fetch"
	"github.com/japaniel/kanjigraph/pkg/logging"
	"github.com/japaniel/kanjigraph/pkg/searchindex"
	"github.com/japaniel/kanjigraph/pkg/store"
	"github.com/japaniel/kanjigraph/pkg/view"
)

const version = "0.1.0"

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	root := &cobra.Command{
		Use:     "kanjigraph",
		Version: version,
		Short:   "Search and browse the radical, kanji and vocabulary graph",
		Long: `kanjigraph searches a prebuilt index of radicals, kanji and vocabulary and shows
the one-hop neighbourhood of any entity as a banded grid you can move around in.

Records come from the published HTTP layout ({base}/data/{id}.json), or from a local
SQLite or Badger copy made with "kanjigraph load".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./.kanjigraph.yaml or $HOME/.kanjigraph.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json, color)")
	pf.String("index", "", "path of the search index blob")
	pf.String("index-url", "", "URL to download the search index from when it is not cached")
	pf.String("store", "", "entity store backend (http, sqlite, badger)")
	pf.String("store-url", "", "base URL of the published records")
	pf.String("sqlite", "", "path of the SQLite entity database")
	pf.String("badger-dir", "", "directory of the Badger entity store")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"index.path":        "index",
		"index.url":         "index-url",
		"store.backend":     "store",
		"store.base_url":    "store-url",
		"store.sqlite_path": "sqlite",
		"store.badger_dir":  "badger-dir",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(
		newSearchCmd(a),
		newViewCmd(a),
		newExploreCmd(a),
		newServeCmd(a),
		newLoadCmd(a),
		newFetchIndexCmd(a),
		newIndexCmd(a),
		newCheckCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	slog.SetDefault(logger)
	return nil
}

// indexHandle returns an unresolved handle on the configured index, downloading the blob
// first when a URL is configured and nothing is cached yet.
func (a *app) indexHandle(cmd *cobra.Command) (*searchindex.Handle, error) {
	if a.cfg.Index.URL != "" {
		f := fetch.New()
		f.Logger = a.logger
		if err := f.EnsureBlob(cmd.Context(), a.cfg.Index.URL, a.cfg.Index.Path); err != nil {
			return nil, fmt.Errorf("fetch search index: %w", err)
		}
	}
	h := searchindex.NewHandle(searchindex.FileSource(a.cfg.Index.Path))
	h.Logger = a.logger
	return h, nil
}

func (a *app) searchService(cmd *cobra.Command) (*searchindex.Service, error) {
	h, err := a.indexHandle(cmd)
	if err != nil {
		return nil, err
	}
	svc := searchindex.NewService(h)
	svc.Limit = a.cfg.Index.Limit
	svc.Logger = a.logger
	return svc, nil
}

// entityStore opens the configured backend. The returned func releases it.
func (a *app) entityStore() (store.Store, func() error, error) {
	noop := func() error { return nil }
	sc := a.cfg.Store
	switch sc.Backend {
	case config.BackendHTTP:
		if sc.BaseURL == "" {
			return nil, nil, fmt.Errorf("store.base_url (--store-url) is required for the %s backend", config.BackendHTTP)
		}
		s := store.NewHTTPStore(sc.BaseURL, &http.Client{Timeout: sc.Timeout}, a.cfg.CircuitBreaker, a.logger)
		if sc.MaxRecordBytes > 0 {
			s.MaxBytes = sc.MaxRecordBytes
		}
		return s, noop, nil
	case config.BackendSQLite:
		conn, err := db.Open(sc.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitDB(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return db.NewSQLiteStore(conn), conn.Close, nil
	case config.BackendBadger:
		s, err := store.OpenBadger(sc.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
}

func (a *app) assembler(s store.Store) *view.Assembler {
	asm := view.NewAssembler(s)
	if a.cfg.View.Workers > 0 {
		asm.Workers = a.cfg.View.Workers
	}
	asm.Logger = a.logger
	return asm
}
