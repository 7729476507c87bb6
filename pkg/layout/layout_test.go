package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/view"
)

func ents(t entity.Type, ids ...int64) []entity.Entity {
	out := make([]entity.Entity, len(ids))
	for i, id := range ids {
		out[i] = entity.Entity{ID: id, Type: t}
	}
	return out
}

// kanjiView has 2 radicals, the focal kanji and 8 vocabulary items (rows of 6 and 2).
func kanjiView() view.View {
	return view.View{
		Focal:      entity.Entity{ID: 10, Type: entity.Kanji},
		Ordering:   view.RadicalKanjiVocabulary,
		Radicals:   ents(entity.Radical, 1, 2),
		Kanji:      ents(entity.Kanji, 10),
		Vocabulary: ents(entity.Vocabulary, 100, 101, 102, 103, 104, 105, 106, 107),
	}
}

func uniform(v view.View, w, h float64) Footprints {
	fp := Footprints{}
	for _, id := range v.Members() {
		fp[id] = Footprint{Width: w, Height: h}
	}
	return fp
}

func TestApplyRowsAndBands(t *testing.T) {
	v := kanjiView()
	d, err := Apply(v, uniform(v, 40, 50), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, d.Rows, 4)
	assert.Equal(t, []int64{1, 2}, d.Rows[0].IDs)
	assert.Equal(t, entity.Radical, d.Rows[0].Band)
	assert.Equal(t, []int64{10}, d.Rows[1].IDs)
	assert.Equal(t, []int64{100, 101, 102, 103, 104, 105}, d.Rows[2].IDs)
	assert.Equal(t, []int64{106, 107}, d.Rows[3].IDs)

	// y: group gap between bands, row gap within a band
	assert.Equal(t, 0.0, d.Rows[0].Y)
	assert.Equal(t, 50.0+30, d.Rows[1].Y)
	assert.Equal(t, 80.0+50+30, d.Rows[2].Y)
	assert.Equal(t, 160.0+50+20, d.Rows[3].Y)
	assert.Equal(t, 230.0+50, d.Height)

	// widest row: 6*40 + 5*20
	assert.Equal(t, 340.0, d.Width)
	assert.Equal(t, 340.0, d.Rows[2].Width)
	assert.Equal(t, 100.0, d.Rows[0].Width)

	// centred rows
	assert.Equal(t, Point{X: 120, Y: 0}, d.Positions[1])
	assert.Equal(t, Point{X: 180, Y: 0}, d.Positions[2])
	assert.Equal(t, Point{X: 150, Y: 80}, d.Positions[10])
	assert.Equal(t, Point{X: 0, Y: 160}, d.Positions[100])
	assert.Equal(t, Point{X: 120, Y: 230}, d.Positions[106])
}

func TestApplyVocabularyOrdering(t *testing.T) {
	v := view.View{
		Focal:      entity.Entity{ID: 100, Type: entity.Vocabulary},
		Ordering:   view.VocabularyKanjiRadical,
		Radicals:   ents(entity.Radical, 1),
		Kanji:      ents(entity.Kanji, 10, 11),
		Vocabulary: ents(entity.Vocabulary, 100),
	}
	d, err := Apply(v, uniform(v, 10, 10), Options{})
	require.NoError(t, err)
	require.Len(t, d.Rows, 3)
	assert.Equal(t, entity.Vocabulary, d.Rows[0].Band)
	assert.Equal(t, entity.Kanji, d.Rows[1].Band)
	assert.Equal(t, entity.Radical, d.Rows[2].Band)
	assert.Equal(t, []int64{1}, d.Rows[2].IDs)
}

func TestApplyRowHeightIsTallest(t *testing.T) {
	v := view.View{
		Focal:    entity.Entity{ID: 1, Type: entity.Radical},
		Radicals: ents(entity.Radical, 1),
		Kanji:    ents(entity.Kanji, 10, 11),
	}
	fp := Footprints{1: {Width: 10, Height: 10}, 10: {Width: 10, Height: 70}, 11: {Width: 30, Height: 20}}
	d, err := Apply(v, fp, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 70.0, d.Rows[1].Height)
	assert.Equal(t, 10.0+30+70, d.Height)
	assert.Equal(t, 60.0, d.Width)
	// lone radical centred over the 60 wide kanji row
	assert.Equal(t, 25.0, d.Positions[1].X)
}

func TestApplySkipsEmptyBands(t *testing.T) {
	v := view.View{
		Focal:      entity.Entity{ID: 1, Type: entity.Radical},
		Radicals:   ents(entity.Radical, 1),
		Vocabulary: ents(entity.Vocabulary, 100),
	}
	d, err := Apply(v, uniform(v, 10, 10), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, d.Rows, 2)
	assert.Equal(t, 40.0, d.Rows[1].Y)
}

func TestApplyUnmeasured(t *testing.T) {
	v := kanjiView()
	fp := uniform(v, 40, 50)
	delete(fp, 103)
	_, err := Apply(v, fp, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnmeasured)

	var ue *UnmeasuredError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, int64(103), ue.ID)

	fp[103] = Footprint{Width: 0, Height: 10}
	_, err = Apply(v, fp, DefaultOptions())
	assert.ErrorIs(t, err, ErrUnmeasured)
}

func TestApplyIdempotent(t *testing.T) {
	v := kanjiView()
	fp := Measure(v, NewTextMeasurer())
	first, err := Apply(v, fp, DefaultOptions())
	require.NoError(t, err)
	second, err := Apply(v, fp, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTextMeasurer(t *testing.T) {
	m := TextMeasurer{CellWidth: 10, LineHeight: 20, Padding: 5}

	kanji := entity.Entity{ID: 10, Type: entity.Kanji, PrimaryMeaning: "Potato", PrimaryReading: "いも",
		Characters: entity.Characters{Type: entity.CharactersText, Value: "芋"}}
	// "Potato, いも" is 8 narrow + 2 wide cells = 12
	assert.Equal(t, Footprint{Width: 130, Height: 50}, m.Measure(kanji))

	radical := entity.Entity{ID: 1, Type: entity.Radical,
		Characters: entity.Characters{Type: entity.CharactersSVG, Value: "<svg/>"}}
	assert.Equal(t, Footprint{Width: 30, Height: 50}, m.Measure(radical))

	word := entity.Entity{ID: 101, Type: entity.Vocabulary, PrimaryMeaning: "Ox",
		Characters: entity.Characters{Type: entity.CharactersText, Value: "必須条件"}}
	assert.Equal(t, Footprint{Width: 90, Height: 50}, m.Measure(word))
}
