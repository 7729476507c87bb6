package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/query"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search radicals, kanji and vocabulary",
		Long: `Search the index. Latin words are also tried as kana (jagaimo finds じゃがいも),
every word must match, and the last characters of a word may be a prefix.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.searchService(cmd)
			if err != nil {
				return err
			}
			if limit > 0 {
				svc.Limit = limit
			}
			raw := strings.Join(args, " ")
			results, err := svc.Search(cmd.Context(), raw)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), query.Human(raw), results, -1)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default from config)")
	return cmd
}
