// Package layout places the members of a View on a banded grid.
package layout

import (
	"errors"
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/view"
)

// Defaults for Options.
const (
	DefaultMaxPerRow = 6
	DefaultGroupGap  = 30
	DefaultRowGap    = 20
	DefaultNodeGap   = 20
)

// ErrUnmeasured matches any *UnmeasuredError. Laying out a View before every member has a
// footprint is a caller bug.
var ErrUnmeasured = errors.New("layout: node not measured")

// UnmeasuredError names the first member without a usable footprint.
type UnmeasuredError struct {
	ID int64
}

func (e *UnmeasuredError) Error() string {
	return fmt.Sprintf("layout: entity %d has no measured footprint", e.ID)
}

// Is lets errors.Is(err, ErrUnmeasured) match.
func (e *UnmeasuredError) Is(target error) bool { return target == ErrUnmeasured }

// Point is a top-left node position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Footprint is the measured size of one node.
type Footprint struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Footprints maps entity ids to their measured size.
type Footprints map[int64]Footprint

// Options are the grid constants. Zero values fall back to the defaults.
type Options struct {
	MaxPerRow int     `mapstructure:"max_per_row"`
	GroupGap  float64 `mapstructure:"group_gap"`
	RowGap    float64 `mapstructure:"row_gap"`
	NodeGap   float64 `mapstructure:"node_gap"`
}

// DefaultOptions returns the standard grid constants.
func DefaultOptions() Options {
	return Options{
		MaxPerRow: DefaultMaxPerRow,
		GroupGap:  DefaultGroupGap,
		RowGap:    DefaultRowGap,
		NodeGap:   DefaultNodeGap,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxPerRow <= 0 {
		o.MaxPerRow = d.MaxPerRow
	}
	if o.GroupGap <= 0 {
		o.GroupGap = d.GroupGap
	}
	if o.RowGap <= 0 {
		o.RowGap = d.RowGap
	}
	if o.NodeGap <= 0 {
		o.NodeGap = d.NodeGap
	}
	return o
}

// Row is one horizontal line of nodes.
type Row struct {
	IDs  []int64     `json:"ids"`
	Band entity.Type `json:"band"`
	// Y is the top of the row; Height is its tallest member.
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	// X is the left edge after centring.
	X float64 `json:"x"`
}

// Diagram is a laid-out View.
type Diagram struct {
	Rows      []Row           `json:"rows"`
	Positions map[int64]Point `json:"positions"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
}

// Apply lays v out. Each band is cut into rows of at most MaxPerRow nodes in bucket order;
// bands are stacked in the View's ordering with GroupGap between them; nodes sit NodeGap apart
// and rows RowGap apart; finally every row is centred on the widest one. Empty bands take no
// space. The result depends only on v, fp and opts.
func Apply(v view.View, fp Footprints, opts Options) (Diagram, error) {
	opts = opts.withDefaults()
	d := Diagram{Positions: make(map[int64]Point, v.Len())}

	y := 0.0
	placedGroup := false
	for _, band := range v.Bands() {
		if len(band.Entities) == 0 {
			continue
		}
		if placedGroup {
			y += opts.GroupGap - opts.RowGap
		}
		placedGroup = true

		for start := 0; start < len(band.Entities); start += opts.MaxPerRow {
			end := start + opts.MaxPerRow
			if end > len(band.Entities) {
				end = len(band.Entities)
			}
			row := Row{Band: band.Type, Y: y}
			x := 0.0
			for i, e := range band.Entities[start:end] {
				f, ok := fp[e.ID]
				if !ok || f.Width <= 0 || f.Height <= 0 {
					return Diagram{}, &UnmeasuredError{ID: e.ID}
				}
				if i > 0 {
					x += opts.NodeGap
				}
				d.Positions[e.ID] = Point{X: x, Y: y}
				x += f.Width
				if f.Height > row.Height {
					row.Height = f.Height
				}
				row.IDs = append(row.IDs, e.ID)
			}
			row.Width = x
			if row.Width > d.Width {
				d.Width = row.Width
			}
			d.Rows = append(d.Rows, row)
			y += row.Height + opts.RowGap
		}
	}
	if len(d.Rows) > 0 {
		d.Height = y - opts.RowGap
	}

	for i := range d.Rows {
		r := &d.Rows[i]
		r.X = d.Width/2 - r.Width/2
		for _, id := range r.IDs {
			p := d.Positions[id]
			p.X += r.X
			d.Positions[id] = p
		}
	}
	return d, nil
}
