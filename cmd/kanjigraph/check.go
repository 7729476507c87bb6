package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/db"
	"github.com/japaniel/kanjigraph/pkg/entity"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every relation in the SQLite store is listed from both ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := db.Open(a.cfg.Store.SQLitePath)
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := db.InitDB(conn); err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}

			missing, err := db.CheckRelations(conn)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range missing {
				fmt.Fprintf(w, "missing reverse: %s\n", r)
			}
			if len(missing) > 0 {
				return fmt.Errorf("%d relations lack their reverse", len(missing))
			}
			counts, err := db.CountEntities(conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "relations consistent (%s)\n", countLine(counts))
			return nil
		},
	}
}

func countLine[N int | int64](counts map[entity.Type]N) string {
	return fmt.Sprintf("%d radicals, %d kanji, %d vocabulary",
		counts[entity.Radical], counts[entity.Kanji], counts[entity.Vocabulary])
}
