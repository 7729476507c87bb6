package layout

import (
	"github.com/mattn/go-runewidth"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/view"
)

// Measurer reports the footprint a front-end will give an entity's node.
type Measurer interface {
	Measure(e entity.Entity) Footprint
}

// Measure runs m over every member of v.
func Measure(v view.View, m Measurer) Footprints {
	fp := make(Footprints, v.Len())
	for _, b := range v.Bands() {
		for _, e := range b.Entities {
			fp[e.ID] = m.Measure(e)
		}
	}
	return fp
}

// svgCells is the width given to characters that only exist as an image.
const svgCells = 2

// TextMeasurer sizes nodes for fixed-width text output: two lines, the characters and the
// description, measured in terminal cells so wide CJK glyphs count double.
type TextMeasurer struct {
	CellWidth  float64
	LineHeight float64
	Padding    float64
}

// NewTextMeasurer returns a measurer with one unit per cell and line.
func NewTextMeasurer() TextMeasurer {
	return TextMeasurer{CellWidth: 1, LineHeight: 1, Padding: 1}
}

// Measure implements Measurer.
func (m TextMeasurer) Measure(e entity.Entity) Footprint {
	chars := svgCells
	if text := e.Characters.Text(); text != "" {
		chars = runewidth.StringWidth(text)
	}
	cells := runewidth.StringWidth(e.Description())
	if chars > cells {
		cells = chars
	}
	if cells == 0 {
		cells = 1
	}
	return Footprint{
		Width:  float64(cells)*m.CellWidth + 2*m.Padding,
		Height: 2*m.LineHeight + 2*m.Padding,
	}
}
