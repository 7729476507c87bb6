// Package navigation derives directional neighbours on a laid-out View. Everything here is a
// pure function of a Diagram and a focal id; a Model is never mutated in place.
package navigation

import (
	"errors"
	"fmt"
	"math"

	"github.com/japaniel/kanjigraph/pkg/layout"
)

// ErrNotInView is returned when focusing an id that is not part of the diagram. Moving to such
// an id needs a new View.
var ErrNotInView = errors.New("entity not in view")

// Direction is an arrow-key move.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection accepts up, down, left and right.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Cell is a grid coordinate.
type Cell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// PositionIndex maps every member id to its cell.
type PositionIndex map[int64]Cell

// Index builds the PositionIndex of a diagram.
func Index(d layout.Diagram) PositionIndex {
	idx := make(PositionIndex)
	for r, row := range d.Rows {
		for c, id := range row.IDs {
			idx[id] = Cell{Row: r, Column: c}
		}
	}
	return idx
}

// Neighbours are the ids reachable with one move. nil means there is nothing that way.
type Neighbours struct {
	Up    *int64 `json:"up,omitempty"`
	Down  *int64 `json:"down,omitempty"`
	Left  *int64 `json:"left,omitempty"`
	Right *int64 `json:"right,omitempty"`
}

// In returns the neighbour in direction d.
func (n Neighbours) In(d Direction) *int64 {
	switch d {
	case Up:
		return n.Up
	case Down:
		return n.Down
	case Left:
		return n.Left
	case Right:
		return n.Right
	}
	return nil
}

// Compute returns the neighbours of the entity at cell c. Left and right are the adjacent
// entries of the same row, with no wraparound. Up and down are the entries of the adjacent rows
// whose normalised centre is nearest c's; the leftmost wins a tie.
func Compute(rows [][]int64, c Cell) Neighbours {
	var n Neighbours
	row := rows[c.Row]
	if c.Column > 0 {
		n.Left = ptr(row[c.Column-1])
	}
	if c.Column < len(row)-1 {
		n.Right = ptr(row[c.Column+1])
	}
	centre := normalisedCentre(c.Column, len(row))
	if c.Row > 0 {
		n.Up = nearest(rows[c.Row-1], centre)
	}
	if c.Row < len(rows)-1 {
		n.Down = nearest(rows[c.Row+1], centre)
	}
	return n
}

// normalisedCentre places column col of a row of n entries on [0, 1].
func normalisedCentre(col, n int) float64 {
	return (float64(col) + 0.5) / float64(n)
}

func nearest(row []int64, centre float64) *int64 {
	best := -1
	bestDist := math.Inf(1)
	for i := range row {
		dist := math.Abs(normalisedCentre(i, len(row)) - centre)
		// strict comparison keeps the leftmost of equidistant candidates
		if dist < bestDist-1e-9 {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return nil
	}
	return ptr(row[best])
}

func ptr(id int64) *int64 { return &id }
