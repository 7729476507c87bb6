package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/explorer"
	"github.com/japaniel/kanjigraph/pkg/layout"
	"github.com/japaniel/kanjigraph/pkg/navigation"
)

func parseEntityRef(typ, id string) (entity.Type, int64, error) {
	t, err := entity.ParseType(typ)
	if err != nil {
		return "", 0, err
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return "", 0, fmt.Errorf("invalid id %q", id)
	}
	return t, n, nil
}

func (a *app) session(cmd *cobra.Command, withSearch bool) (*explorer.Session, func() error, error) {
	s, closeStore, err := a.entityStore()
	if err != nil {
		return nil, nil, err
	}
	sess := explorer.New(nil, a.assembler(s), layout.NewTextMeasurer())
	sess.Layout = a.cfg.Layout
	sess.Logger = a.logger
	if withSearch {
		svc, err := a.searchService(cmd)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		// Start loading now so the first search does not pay for it.
		svc.Handle.Start()
		sess.Searcher = svc
	}
	return sess, closeStore, nil
}

func newViewCmd(a *app) *cobra.Command {
	var moves string
	cmd := &cobra.Command{
		Use:   "view <type> <id>",
		Short: "Show the neighbourhood of one entity",
		Long: `Show the view around an entity: its related radicals, kanji and vocabulary laid out
in bands. Type is radical, kanji or vocabulary (or component, character, word).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, id, err := parseEntityRef(args[0], args[1])
			if err != nil {
				return err
			}
			sess, closeStore, err := a.session(cmd, false)
			if err != nil {
				return err
			}
			defer closeStore()

			st, err := sess.Reload(cmd.Context(), t, id)
			if err != nil {
				return err
			}
			if moves != "" {
				for _, m := range strings.Split(moves, ",") {
					d, err := navigation.ParseDirection(strings.TrimSpace(m))
					if err != nil {
						return err
					}
					if st, _, err = sess.Move(d); err != nil {
						return err
					}
				}
			}
			printState(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().StringVar(&moves, "move", "", "comma separated moves to make from the focal entity, e.g. down,right")
	return cmd
}
