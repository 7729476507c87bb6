package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/explorer"
	"github.com/japaniel/kanjigraph/pkg/navigation"
)

const bandColumn = 12

func label(e entity.Entity) string {
	if s := e.Characters.Text(); s != "" {
		return s
	}
	return e.PrimaryMeaning
}

func summaryLabel(s entity.Summary) string {
	if t := s.Characters.Text(); t != "" {
		return t
	}
	return "#" + strconv.FormatInt(s.ID, 10)
}

// printResults writes one line per result; marker points at the selected one, -1 for none.
func printResults(w io.Writer, q string, results []entity.Summary, selected int) {
	fmt.Fprintf(w, "query: %s\n", q)
	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for i, r := range results {
		marker := "  "
		if i == selected {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%s %s %s %s\n",
			marker,
			runewidth.FillRight(strconv.FormatInt(r.ID, 10), 6),
			runewidth.FillRight(string(r.Type), 11),
			runewidth.FillRight(summaryLabel(r), 8),
			r.Description)
	}
}

// printState draws the diagram one row per line, with the focused member in brackets and the
// view's focal entity starred, followed by the moves available from the focus.
func printState(w io.Writer, st *explorer.State) {
	focus := st.Model.Focused()
	for _, row := range st.Diagram.Rows {
		cells := make([]string, len(row.IDs))
		for i, id := range row.IDs {
			e, _ := st.View.Entity(id)
			c := label(e)
			if id == st.View.Focal.ID {
				c += "*"
			}
			if id == focus {
				c = "[" + c + "]"
			}
			cells[i] = c
		}
		fmt.Fprintf(w, "%s%s\n", runewidth.FillRight(string(row.Band), bandColumn), strings.Join(cells, "  "))
	}

	e, _ := st.View.Entity(focus)
	fmt.Fprintf(w, "focus: %d %s %s\n", e.ID, e.Type, e.Description())
	n := st.Model.Neighbours()
	var moves []string
	for _, d := range []navigation.Direction{navigation.Up, navigation.Down, navigation.Left, navigation.Right} {
		if id := n.In(d); id != nil {
			moves = append(moves, fmt.Sprintf("%s=%d", d, *id))
		}
	}
	if len(moves) == 0 {
		moves = append(moves, "none")
	}
	fmt.Fprintf(w, "moves: %s\n", strings.Join(moves, " "))
}
