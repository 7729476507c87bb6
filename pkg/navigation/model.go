package navigation

import (
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/layout"
)

// Model is the navigation state of one diagram: the focused id and its neighbours. Focus and
// Move return new Models.
type Model struct {
	rows       [][]int64
	positions  PositionIndex
	origin     int64
	focus      int64
	neighbours Neighbours
}

// New creates a Model over d focused on origin, normally the View's focal entity.
func New(d layout.Diagram, origin int64) (Model, error) {
	m := Model{
		rows:      make([][]int64, len(d.Rows)),
		positions: Index(d),
		origin:    origin,
	}
	for i, r := range d.Rows {
		m.rows[i] = r.IDs
	}
	return m.Focus(origin)
}

// Focus moves the focus to id, which must be in the diagram.
func (m Model) Focus(id int64) (Model, error) {
	c, ok := m.positions[id]
	if !ok {
		return m, fmt.Errorf("focus %d: %w", id, ErrNotInView)
	}
	m.focus = id
	m.neighbours = Compute(m.rows, c)
	return m, nil
}

// Move focuses the neighbour in direction d. ok is false, and m is returned unchanged, when
// there is none.
func (m Model) Move(d Direction) (next Model, ok bool) {
	id := m.neighbours.In(d)
	if id == nil {
		return m, false
	}
	next, err := m.Focus(*id)
	if err != nil {
		return m, false
	}
	return next, true
}

// Reset focuses the origin again.
func (m Model) Reset() Model {
	next, err := m.Focus(m.origin)
	if err != nil {
		return m
	}
	return next
}

// Focused returns the focused id.
func (m Model) Focused() int64 { return m.focus }

// Origin returns the id the Model was created on.
func (m Model) Origin() int64 { return m.origin }

// Neighbours returns the neighbours of the focused id.
func (m Model) Neighbours() Neighbours { return m.neighbours }

// Cell returns the cell of the focused id.
func (m Model) Cell() Cell { return m.positions[m.focus] }

// Contains reports whether id is in the diagram.
func (m Model) Contains(id int64) bool {
	_, ok := m.positions[id]
	return ok
}
