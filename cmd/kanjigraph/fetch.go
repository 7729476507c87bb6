package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/fetch"
)

func newFetchIndexCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "fetch-index",
		Short: "Download the search index blob to the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Index.URL == "" {
				return errors.New("index.url (--index-url) is not set")
			}
			f := fetch.New()
			f.Logger = a.logger
			var err error
			if force {
				err = f.Download(cmd.Context(), a.cfg.Index.URL, a.cfg.Index.Path)
			} else {
				err = f.EnsureBlob(cmd.Context(), a.cfg.Index.URL, a.cfg.Index.Path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "search index at %s\n", a.cfg.Index.Path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "download even if the index is already cached")
	return cmd
}
