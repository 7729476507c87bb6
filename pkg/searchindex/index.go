// Package searchindex is the full-text index over entity summaries: a two-field inverted
// index with roaring posting lists, prefix matching and BM25 ranking.
package searchindex

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/query"
)

const (
	// DefaultLimit is the number of results returned by Search.
	DefaultLimit = 15

	// PrimaryField holds meanings, readings and the literal characters.
	PrimaryField = "primary"
	// SecondaryField holds alternate meanings and readings.
	SecondaryField = "secondary"

	primaryBoost   = 2.0
	secondaryBoost = 1.0

	prefixWeight = 0.375

	// BM25+ parameters.
	bm25K1    = 1.2
	bm25B     = 0.7
	bm25Delta = 0.5
)

// Document is what gets indexed for one entity.
type Document struct {
	Summary   entity.Summary
	Primary   []string
	Secondary []string
}

// DocumentFor projects a full entity record into an index document.
func DocumentFor(e entity.Entity) Document {
	d := Document{Summary: e.Summary()}
	d.Primary = appendNonEmpty(d.Primary, e.PrimaryMeaning, e.PrimaryReading, e.Characters.Text())
	for _, r := range e.Readings {
		if r.Primary {
			d.Primary = appendNonEmpty(d.Primary, r.Reading)
		} else {
			d.Secondary = appendNonEmpty(d.Secondary, r.Reading)
		}
	}
	d.Secondary = appendNonEmpty(d.Secondary, e.OtherMeanings...)
	d.Secondary = appendNonEmpty(d.Secondary, e.OtherReadings...)
	return d
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

// Field is the inverted index of one document field.
type Field struct {
	Name      string
	Boost     float64
	Postings  map[string]*roaring.Bitmap
	Freqs     map[string]map[uint32]uint32
	Lengths   []uint32
	AvgLength float64
}

func newField(name string, boost float64) *Field {
	return &Field{
		Name:     name,
		Boost:    boost,
		Postings: make(map[string]*roaring.Bitmap),
		Freqs:    make(map[string]map[uint32]uint32),
	}
}

func (f *Field) add(doc uint32, terms []string) {
	f.Lengths = append(f.Lengths, uint32(len(terms)))
	for _, t := range terms {
		bm, ok := f.Postings[t]
		if !ok {
			bm = roaring.New()
			f.Postings[t] = bm
			f.Freqs[t] = make(map[uint32]uint32)
		}
		bm.Add(doc)
		f.Freqs[t][doc]++
	}
}

func (f *Field) finish() {
	var total float64
	for _, l := range f.Lengths {
		total += float64(l)
	}
	if len(f.Lengths) > 0 {
		f.AvgLength = total / float64(len(f.Lengths))
	}
	for _, bm := range f.Postings {
		bm.RunOptimize()
	}
}

// bm25 scores one term occurrence in this field.
func (f *Field) bm25(term string, doc uint32, totalDocs int) float64 {
	df := float64(f.Postings[term].GetCardinality())
	tf := float64(f.Freqs[term][doc])
	n := float64(totalDocs)
	idf := math.Log(1 + (n-df+0.5)/(df+0.5))
	avg := f.AvgLength
	if avg == 0 {
		avg = 1
	}
	norm := 1 - bm25B + bm25B*float64(f.Lengths[doc])/avg
	return idf * (bm25Delta + tf*(bm25K1+1)/(tf+bm25K1*norm))
}

// Index is the loaded, read-only search index. Safe for concurrent searches.
type Index struct {
	Docs   []entity.Summary
	Fields []*Field
	// Terms is the sorted vocabulary of all fields, used for prefix expansion.
	Terms []string
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int { return len(idx.Docs) }

// Builder accumulates documents into an Index.
type Builder struct {
	analyzer *Analyzer
	docs     []entity.Summary
	fields   []*Field
}

// NewBuilder creates a builder. A nil analyzer indexes without morpheme segmentation.
func NewBuilder(a *Analyzer) *Builder {
	return &Builder{
		analyzer: a,
		fields:   []*Field{newField(PrimaryField, primaryBoost), newField(SecondaryField, secondaryBoost)},
	}
}

// Add indexes one document.
func (b *Builder) Add(d Document) {
	id := uint32(len(b.docs))
	b.docs = append(b.docs, d.Summary)
	b.fields[0].add(id, b.termsOf(d.Primary))
	b.fields[1].add(id, b.termsOf(d.Secondary))
}

func (b *Builder) termsOf(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, b.analyzer.Terms(v)...)
	}
	return out
}

// Build finalizes the index. The builder must not be used afterwards.
func (b *Builder) Build() *Index {
	vocab := make(map[string]struct{})
	for _, f := range b.fields {
		f.finish()
		for t := range f.Postings {
			vocab[t] = struct{}{}
		}
	}
	terms := make([]string, 0, len(vocab))
	for t := range vocab {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return &Index{Docs: b.docs, Fields: b.fields, Terms: terms}
}

// matches is the result of evaluating an expression node.
type matches struct {
	docs   *roaring.Bitmap
	scores map[uint32]float64
}

func noMatches() matches {
	return matches{docs: roaring.New(), scores: map[uint32]float64{}}
}

// Search runs expr and returns at most DefaultLimit summaries, best first.
func (idx *Index) Search(expr query.Expression) []entity.Summary {
	return idx.SearchN(expr, DefaultLimit)
}

// SearchN runs expr and returns at most limit summaries. Results are ordered by score, then
// by level and id so equal scores come back in a stable order.
func (idx *Index) SearchN(expr query.Expression, limit int) []entity.Summary {
	if expr.Empty() || len(idx.Docs) == 0 {
		return []entity.Summary{}
	}
	m := idx.eval(expr)
	ids := m.docs.ToArray()
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if m.scores[a] != m.scores[b] {
			return m.scores[a] > m.scores[b]
		}
		if idx.Docs[a].Level != idx.Docs[b].Level {
			return idx.Docs[a].Level < idx.Docs[b].Level
		}
		return idx.Docs[a].ID < idx.Docs[b].ID
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]entity.Summary, len(ids))
	for i, id := range ids {
		out[i] = idx.Docs[id]
	}
	return out
}

func (idx *Index) eval(expr query.Expression) matches {
	if expr.IsLeaf() {
		terms := queryTerms(expr.Term)
		if len(terms) == 0 {
			return noMatches()
		}
		children := make([]matches, len(terms))
		for i, t := range terms {
			children[i] = idx.evalTerm(t)
		}
		return combine(query.And, children)
	}
	if len(expr.Children) == 0 {
		return noMatches()
	}
	children := make([]matches, len(expr.Children))
	for i, c := range expr.Children {
		children[i] = idx.eval(c)
	}
	return combine(expr.Op, children)
}

// evalTerm prefix-matches q against the vocabulary and scores every field occurrence.
func (idx *Index) evalTerm(q string) matches {
	m := noMatches()
	qLen := utf8.RuneCountInString(q)
	for i := sort.SearchStrings(idx.Terms, q); i < len(idx.Terms) && strings.HasPrefix(idx.Terms[i], q); i++ {
		term := idx.Terms[i]
		weight := 1.0
		if term != q {
			weight = prefixWeight * float64(qLen) / float64(utf8.RuneCountInString(term))
		}
		for _, f := range idx.Fields {
			bm, ok := f.Postings[term]
			if !ok {
				continue
			}
			it := bm.Iterator()
			for it.HasNext() {
				doc := it.Next()
				m.scores[doc] += f.Boost * weight * f.bm25(term, doc, len(idx.Docs))
			}
			m.docs.Or(bm)
		}
	}
	return m
}

func combine(op query.Op, children []matches) matches {
	if len(children) == 1 {
		return children[0]
	}
	docs := children[0].docs.Clone()
	for _, c := range children[1:] {
		if op == query.And {
			docs.And(c.docs)
		} else {
			docs.Or(c.docs)
		}
	}
	scores := make(map[uint32]float64, docs.GetCardinality())
	it := docs.Iterator()
	for it.HasNext() {
		doc := it.Next()
		for _, c := range children {
			scores[doc] += c.scores[doc]
		}
	}
	return matches{docs: docs, scores: scores}
}
