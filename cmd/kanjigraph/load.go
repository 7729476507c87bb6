package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/db"
	"github.com/japaniel/kanjigraph/pkg/ingest"
	"github.com/japaniel/kanjigraph/pkg/store"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		mirror      bool
		skipInvalid bool
		workers     int
		batch       int
	)
	cmd := &cobra.Command{
		Use:   "load <dir>",
		Short: "Copy published {id}.json records into the local SQLite store",
		Long: `Load a directory of records laid out as {id}.json (or data/{id}.json) into the SQLite
database at --sqlite. With --mirror the records are also written to the Badger store at
--badger-dir.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(a.cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.InitDB(conn); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			l := ingest.NewLoader(conn)
			l.Logger = a.logger
			l.SkipInvalid = skipInvalid
			if workers > 0 {
				l.Workers = workers
			}
			if batch > 0 {
				l.BatchSize = batch
			}
			l.OnProgress = func(current, total int) {
				a.logger.Debug("loading records", "current", current, "total", total)
			}
			if mirror {
				b, err := store.OpenBadger(a.cfg.Store.BadgerDir)
				if err != nil {
					return err
				}
				defer b.Close()
				l.Mirror = b
			}

			stats, err := l.LoadDir(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load failed after %d records: %w", stats.Loaded, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d records (%s), skipped %d in %v\n",
				stats.Loaded, countLine(stats.ByType), stats.Skipped, stats.Elapsed.Round(time.Millisecond))

			total, err := db.CountEntities(conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database holds %s\n", countLine(total))
			return nil
		},
	}
	cmd.Flags().BoolVar(&mirror, "mirror", false, "also write records to the Badger store")
	cmd.Flags().BoolVar(&skipInvalid, "skip-invalid", false, "skip records that fail to decode instead of aborting")
	cmd.Flags().IntVar(&workers, "workers", 0, "decode workers (default 4)")
	cmd.Flags().IntVar(&batch, "batch", 0, "records per transaction (default 200)")
	return cmd
}
