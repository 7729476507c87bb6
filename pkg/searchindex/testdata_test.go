package searchindex

import (
	"fmt"

	"github.com/japaniel/kanjigraph/pkg/entity"
)

// fixtureEntities is a small slice of the graph around 芋 (potato).
func fixtureEntities() []entity.Entity {
	return []entity.Entity{
		{
			ID: 1, Type: entity.Radical, Level: 1, PrimaryMeaning: "Grass",
			Characters: entity.Characters{Type: entity.CharactersText, Value: "艹"},
			Related:    entity.Relations{Kanji: []int64{10}, Vocabulary: []int64{100}},
		},
		{
			ID: 2, Type: entity.Radical, Level: 2, PrimaryMeaning: "Stick",
			Characters: entity.Characters{Type: entity.CharactersSVG, Value: "<svg/>"},
			Related:    entity.Relations{Kanji: []int64{10}},
		},
		{
			ID: 10, Type: entity.Kanji, Level: 5, PrimaryMeaning: "Potato", PrimaryReading: "いも",
			OtherMeanings: []string{"Yam"},
			Characters:    entity.Characters{Type: entity.CharactersText, Value: "芋"},
			Readings: []entity.Reading{
				{Reading: "いも", Primary: true, Type: "kunyomi"},
				{Reading: "う", Type: "onyomi"},
			},
			Related: entity.Relations{Radicals: []int64{1, 2}, Vocabulary: []int64{100}},
		},
		{
			ID: 100, Type: entity.Vocabulary, Level: 5, PrimaryMeaning: "Potato", PrimaryReading: "じゃがいも",
			OtherMeanings: []string{"Spud"},
			Characters:    entity.Characters{Type: entity.CharactersText, Value: "じゃが芋"},
			Related:       entity.Relations{Radicals: []int64{1}, Kanji: []int64{10}},
		},
		{
			ID: 101, Type: entity.Vocabulary, Level: 7, PrimaryMeaning: "Prerequisite", PrimaryReading: "ひっすじょうけん",
			Characters: entity.Characters{Type: entity.CharactersText, Value: "必須条件"},
		},
		{
			ID: 102, Type: entity.Vocabulary, Level: 3, PrimaryMeaning: "Red", PrimaryReading: "あか",
			OtherMeanings: []string{"Crimson"},
			Characters:    entity.Characters{Type: entity.CharactersText, Value: "赤"},
		},
		{
			ID: 103, Type: entity.Vocabulary, Level: 9, PrimaryMeaning: "Reddish", PrimaryReading: "あかい",
			OtherMeanings: []string{"Red tinged"},
			Characters:    entity.Characters{Type: entity.CharactersText, Value: "赤い"},
		},
		{
			ID: 104, Type: entity.Vocabulary, Level: 4, PrimaryMeaning: "Super", PrimaryReading: "スーパー",
			OtherMeanings: []string{"Supermarket"},
			Characters:    entity.Characters{Type: entity.CharactersText, Value: "スーパー"},
		},
	}
}

func buildIndex(a *Analyzer, entities []entity.Entity) *Index {
	b := NewBuilder(a)
	for _, e := range entities {
		b.Add(DocumentFor(e))
	}
	return b.Build()
}

// manyRedEntities returns n vocabulary items that all mention "red".
func manyRedEntities(n int) []entity.Entity {
	out := make([]entity.Entity, n)
	for i := range out {
		out[i] = entity.Entity{
			ID: int64(1000 + i), Type: entity.Vocabulary, Level: i%60 + 1,
			PrimaryMeaning: fmt.Sprintf("Red thing %d", i),
			Characters:     entity.Characters{Type: entity.CharactersText, Value: "赤"},
		}
	}
	return out
}
