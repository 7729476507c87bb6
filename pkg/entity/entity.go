// Package entity defines the records of the radical, kanji and vocabulary graph and the
// summaries the search index returns for them.
package entity

import (
	"encoding/json"
	"fmt"
)

// Type identifies which band of the graph an entity belongs to.
type Type string

const (
	// Radical is a component: an atomic building block of kanji.
	Radical Type = "radical"
	// Kanji is a character composed of radicals.
	Kanji Type = "kanji"
	// Vocabulary is a word made of one or more kanji.
	Vocabulary Type = "vocabulary"
)

// Types lists every entity type in component → character → word order.
var Types = []Type{Radical, Kanji, Vocabulary}

// ParseType accepts the record names as well as the generic component/character/word names.
func ParseType(s string) (Type, error) {
	switch s {
	case "radical", "component":
		return Radical, nil
	case "kanji", "character":
		return Kanji, nil
	case "vocabulary", "word":
		return Vocabulary, nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	return t == Radical || t == Kanji || t == Vocabulary
}

// CharactersType tells whether the display form is literal text or an SVG payload.
type CharactersType string

const (
	CharactersText CharactersType = "text"
	CharactersSVG  CharactersType = "svg"
)

// Characters is the display form of an entity.
type Characters struct {
	Type  CharactersType `json:"type"`
	Value string         `json:"value"`
}

// Text returns the literal characters, or "" when the display form is an SVG.
func (c Characters) Text() string {
	if c.Type == CharactersSVG {
		return ""
	}
	return c.Value
}

// Relations holds the ids of related entities per type. The sets are symmetric closures
// maintained upstream: if A lists B, B lists A.
type Relations struct {
	Radicals   []int64 `json:"radicals,omitempty"`
	Kanji      []int64 `json:"kanjis,omitempty"`
	Vocabulary []int64 `json:"vocabularies,omitempty"`
}

// For returns the id set for one relation bucket.
func (r Relations) For(t Type) []int64 {
	switch t {
	case Radical:
		return r.Radicals
	case Kanji:
		return r.Kanji
	case Vocabulary:
		return r.Vocabulary
	}
	return nil
}

// Counts returns the size of every bucket.
func (r Relations) Counts() RelationCounts {
	return RelationCounts{
		Radicals:   len(r.Radicals),
		Kanji:      len(r.Kanji),
		Vocabulary: len(r.Vocabulary),
	}
}

// Reading is one kanji reading.
type Reading struct {
	Reading string `json:"reading"`
	Primary bool   `json:"primary"`
	Type    string `json:"type"` // onyomi, kunyomi or nanori
}

// Audio is a pronunciation recording for a vocabulary reading.
type Audio struct {
	Reading string `json:"reading"`
	URL     string `json:"url"`
}

// Entity is the full record of one radical, kanji or vocabulary item.
type Entity struct {
	ID             int64      `json:"id"`
	Type           Type       `json:"type"`
	Level          int        `json:"level"`
	PrimaryMeaning string     `json:"primaryMeaning"`
	OtherMeanings  []string   `json:"otherMeanings,omitempty"`
	Characters     Characters `json:"characters"`
	Slug           string     `json:"wkSlug,omitempty"`
	Related        Relations  `json:"related"`

	// Kanji and vocabulary only.
	PrimaryReading  string    `json:"primaryReading,omitempty"`
	Readings        []Reading `json:"readings,omitempty"`
	OtherReadings   []string  `json:"otherReadings,omitempty"`
	ReadingMnemonic string    `json:"readingMnemonic,omitempty"`
	ReadingAudio    []Audio   `json:"readingAudio,omitempty"`

	MeaningMnemonic string `json:"meaningMnemonic,omitempty"`
}

// Decode parses one JSON record and checks the fields every entity must carry.
func Decode(data []byte) (Entity, error) {
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return Entity{}, fmt.Errorf("decode entity: %w", err)
	}
	if e.ID <= 0 {
		return Entity{}, fmt.Errorf("decode entity: id must be positive, got %d", e.ID)
	}
	if !e.Type.Valid() {
		return Entity{}, fmt.Errorf("decode entity %d: unknown type %q", e.ID, e.Type)
	}
	return e, nil
}

// Summary projects the entity into the shape stored in the search index.
func (e Entity) Summary() Summary {
	return Summary{
		ID:          e.ID,
		Type:        e.Type,
		Level:       e.Level,
		Characters:  e.Characters,
		Description: e.resultDescription(),
		Related:     e.Related.Counts(),
	}
}

// Description is the short line shown in result lists: the primary meaning, followed by the
// primary reading when there is one.
func (e Entity) Description() string {
	if e.PrimaryReading == "" {
		return e.PrimaryMeaning
	}
	return e.PrimaryMeaning + ", " + e.PrimaryReading
}

// resultDescription is the result-list line. Radicals and kanji say how widely they are used;
// vocabulary shows its reading.
func (e Entity) resultDescription() string {
	switch e.Type {
	case Radical:
		return fmt.Sprintf("%s (found in %d kanji)", e.PrimaryMeaning, len(e.Related.Kanji))
	case Kanji:
		return fmt.Sprintf("%s (found in %d vocabulary)", e.PrimaryMeaning, len(e.Related.Vocabulary))
	}
	return e.Description()
}

// RelationCounts is the number of related entities per type.
type RelationCounts struct {
	Radicals   int `json:"radical"`
	Kanji      int `json:"kanji"`
	Vocabulary int `json:"vocabulary"`
}

// Summary is the index-time projection of an entity used for result lists. Immutable at runtime.
type Summary struct {
	ID          int64          `json:"id"`
	Type        Type           `json:"type"`
	Level       int            `json:"level"`
	Characters  Characters     `json:"characters"`
	Description string         `json:"description"`
	Related     RelationCounts `json:"related"`
}
