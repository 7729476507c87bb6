// Package view assembles the one-hop neighbourhood of a focal entity.
package view

import (
	"github.com/japaniel/kanjigraph/pkg/entity"
)

// Ordering is the top-to-bottom order of a View's bands.
type Ordering int

const (
	// RadicalKanjiVocabulary is used when the focus is a radical or a kanji.
	RadicalKanjiVocabulary Ordering = iota
	// VocabularyKanjiRadical is used when the focus is a vocabulary item.
	VocabularyKanjiRadical
)

func (o Ordering) String() string {
	switch o {
	case RadicalKanjiVocabulary:
		return "radical-kanji-vocabulary"
	case VocabularyKanjiRadical:
		return "vocabulary-kanji-radical"
	}
	return "unknown"
}

// Types returns the band types in display order.
func (o Ordering) Types() []entity.Type {
	if o == VocabularyKanjiRadical {
		return []entity.Type{entity.Vocabulary, entity.Kanji, entity.Radical}
	}
	return []entity.Type{entity.Radical, entity.Kanji, entity.Vocabulary}
}

// OrderingFor picks the band ordering for a focal type.
func OrderingFor(t entity.Type) Ordering {
	if t == entity.Vocabulary {
		return VocabularyKanjiRadical
	}
	return RadicalKanjiVocabulary
}

// Band is one type partition of a View.
type Band struct {
	Type     entity.Type
	Entities []entity.Entity
}

// View is a focal entity plus every entity it is directly related to, grouped by type. The
// focal entity is the only member of its own type's bucket. A View is never modified after
// it is assembled.
type View struct {
	Focal      entity.Entity
	Ordering   Ordering
	Radicals   []entity.Entity
	Kanji      []entity.Entity
	Vocabulary []entity.Entity
}

// Bucket returns the entities of one type.
func (v View) Bucket(t entity.Type) []entity.Entity {
	switch t {
	case entity.Radical:
		return v.Radicals
	case entity.Kanji:
		return v.Kanji
	case entity.Vocabulary:
		return v.Vocabulary
	}
	return nil
}

// Bands returns the buckets in display order.
func (v View) Bands() []Band {
	types := v.Ordering.Types()
	out := make([]Band, len(types))
	for i, t := range types {
		out[i] = Band{Type: t, Entities: v.Bucket(t)}
	}
	return out
}

// Members returns every id in the View in band order.
func (v View) Members() []int64 {
	var ids []int64
	for _, b := range v.Bands() {
		for _, e := range b.Entities {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Len returns the number of entities in the View.
func (v View) Len() int {
	return len(v.Radicals) + len(v.Kanji) + len(v.Vocabulary)
}

// Contains reports whether id is a member of the View.
func (v View) Contains(id int64) bool {
	_, ok := v.Entity(id)
	return ok
}

// Entity looks up a member by id.
func (v View) Entity(id int64) (entity.Entity, bool) {
	for _, b := range [][]entity.Entity{v.Radicals, v.Kanji, v.Vocabulary} {
		for _, e := range b {
			if e.ID == id {
				return e, true
			}
		}
	}
	return entity.Entity{}, false
}
