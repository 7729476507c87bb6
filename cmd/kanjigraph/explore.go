package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/japaniel/kanjigraph/pkg/explorer"
	"github.com/japaniel/kanjigraph/pkg/navigation"
)

const exploreHelp = `commands:
  / <query>        search
  n, p             select next / previous result
  o                open the selected result
  v <type> <id>    show the view around an entity
  g <id>           focus a member of the current view
  g <type> <id>    focus it if it is in the view, otherwise show its view
  up down left right (or k j h l)
                   move the focus
  .                re-centre the view on the focused entity
  0                reset the focus to the view's entity
  q                quit`

var keyDirections = map[string]navigation.Direction{
	"up": navigation.Up, "k": navigation.Up,
	"down": navigation.Down, "j": navigation.Down,
	"left": navigation.Left, "h": navigation.Left,
	"right": navigation.Right, "l": navigation.Right,
}

func newExploreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Browse the graph interactively",
		Long:  "Read commands from stdin, one per line.\n\n" + exploreHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeStore, err := a.session(cmd, true)
			if err != nil {
				return err
			}
			defer closeStore()
			return explore(cmd, sess, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func explore(cmd *cobra.Command, sess *explorer.Session, in io.Reader, out io.Writer) error {
	ctx := cmd.Context()
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		var st *explorer.State
		var err error
		switch verb {
		case "q", "quit", "exit":
			return nil
		case "?", "help":
			fmt.Fprintln(out, exploreHelp)
			continue
		case "/", "s", "search":
			var res explorer.SearchResult
			res, err = sess.Search(ctx, rest)
			if err == nil {
				printResults(out, res.Query, res.Results, 0)
			}
		case "n", "p":
			delta := 1
			if verb == "p" {
				delta = -1
			}
			r, ok := sess.Select(delta)
			if !ok {
				err = explorer.ErrNoResults
			} else {
				fmt.Fprintf(out, "selected: %d %s %s\n", r.ID, r.Type, r.Description)
			}
		case "o", "open":
			st, err = sess.Open(ctx)
		case "v", "view":
			typ, id, _ := strings.Cut(rest, " ")
			t, n, perr := parseEntityRef(typ, strings.TrimSpace(id))
			if perr != nil {
				err = perr
			} else {
				st, err = sess.Reload(ctx, t, n)
			}
		case "g", "go":
			if typ, id, ok := strings.Cut(rest, " "); ok {
				t, n, perr := parseEntityRef(typ, strings.TrimSpace(id))
				if perr != nil {
					err = perr
				} else {
					st, err = sess.Follow(ctx, t, n)
				}
			} else {
				st, err = goTo(sess, rest)
			}
		case ".":
			cur := sess.State()
			if cur == nil {
				err = explorer.ErrNoView
				break
			}
			e, _ := cur.View.Entity(cur.Model.Focused())
			st, err = sess.Reload(ctx, e.Type, e.ID)
		case "0":
			st, err = sess.Reset()
		default:
			d, ok := keyDirections[verb]
			if !ok {
				err = fmt.Errorf("unknown command %q (? for help)", verb)
				break
			}
			var moved bool
			st, moved, err = sess.Move(d)
			if err == nil && !moved {
				fmt.Fprintf(out, "nothing %s\n", d)
				continue
			}
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if st != nil {
			printState(out, st)
		}
	}
}

// goTo focuses a member of the current view.
func goTo(sess *explorer.Session, arg string) (*explorer.State, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id %q", arg)
	}
	st, err := sess.Focus(id)
	if errors.Is(err, navigation.ErrNotInView) {
		return nil, fmt.Errorf("%d is not in this view; use v <type> %d", id, id)
	}
	return st, err
}
