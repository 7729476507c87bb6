package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/config"
	"github.com/japaniel/kanjigraph/pkg/db"
	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/searchindex"
	"github.com/japaniel/kanjigraph/pkg/store"
)

func newIndexCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the search index blob from the local SQLite or Badger store",
		Long: `Index every record of the local store (--store sqlite or badger) and write the search
index blob to --out, or to the configured index path. Japanese text is segmented with kagome so
compounds can be found by their parts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = a.cfg.Index.Path
			}
			start := time.Now()

			analyzer, err := searchindex.NewAnalyzer()
			if err != nil {
				return fmt.Errorf("failed to create analyzer: %w", err)
			}
			b := searchindex.NewBuilder(analyzer)
			add := func(e entity.Entity) error {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				b.Add(searchindex.DocumentFor(e))
				return nil
			}

			switch a.cfg.Store.Backend {
			case config.BackendSQLite:
				conn, err := db.Open(a.cfg.Store.SQLitePath)
				if err != nil {
					return err
				}
				defer conn.Close()
				if err := db.InitDB(conn); err != nil {
					return fmt.Errorf("failed to initialize database: %w", err)
				}
				err = db.EachEntity(conn, add)
				if err != nil {
					return err
				}
			case config.BackendBadger:
				s, err := store.OpenBadger(a.cfg.Store.BadgerDir)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.Each(add); err != nil {
					return err
				}
			default:
				return errors.New("index needs a local store: use --store sqlite or --store badger")
			}

			idx := b.Build()
			if err := writeIndex(idx, out); err != nil {
				return err
			}
			a.logger.Info("search index built", "documents", idx.Len(), "terms", len(idx.Terms),
				"path", out, "elapsed", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d records into %s\n", idx.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "where to write the index (default index.path)")
	return cmd
}

// writeIndex encodes idx next to path and renames it into place.
func writeIndex(idx *searchindex.Index, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := idx.Encode(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("install index: %w", err)
	}
	return nil
}
