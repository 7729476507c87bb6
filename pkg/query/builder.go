package query

import "strings"

// Op is the boolean operator of an Expression node.
type Op int

const (
	And Op = iota
	Or
)

func (o Op) String() string {
	if o == Or {
		return "OR"
	}
	return "AND"
}

// Expression is a tree of AND/OR nodes over literal terms. A node with Term set is a leaf.
// Built once per search and consumed once.
type Expression struct {
	Op       Op
	Term     string
	Children []Expression
}

// Leaf returns a literal leaf.
func Leaf(term string) Expression {
	return Expression{Term: term}
}

// IsLeaf reports whether e is a literal.
func (e Expression) IsLeaf() bool {
	return e.Term != "" && len(e.Children) == 0
}

// Empty reports whether e matches nothing: an operator node without children.
func (e Expression) Empty() bool {
	return !e.IsLeaf() && len(e.Children) == 0
}

// Build tokenizes input and produces AND(leaf...) where every Script token is a literal
// leaf and every romaji word is either a literal or OR(word, kana). OR groups never span
// word boundaries. Empty input yields an empty AND.
func Build(input string) Expression {
	root := Expression{Op: And}
	for _, tok := range Tokenize(input) {
		switch tok.Kind {
		case Script:
			root.Children = append(root.Children, Leaf(tok.Text))
		case Latin:
			for _, word := range strings.Fields(tok.Text) {
				alts := Expand(word)
				if len(alts) == 1 {
					root.Children = append(root.Children, Leaf(alts[0]))
					continue
				}
				group := Expression{Op: Or}
				for _, a := range alts {
					group.Children = append(group.Children, Leaf(a))
				}
				root.Children = append(root.Children, group)
			}
		}
	}
	return root
}

// String renders e for diagnostics, e.g. `red AND (jagaimo OR じゃがいも) AND something`.
func (e Expression) String() string {
	if e.IsLeaf() {
		return e.Term
	}
	parts := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		s := c.String()
		if !c.IsLeaf() && len(c.Children) > 1 {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "+e.Op.String()+" ")
}

// Human is Build followed by String.
func Human(input string) string {
	return Build(input).String()
}

// Terms returns every literal in e, depth first.
func (e Expression) Terms() []string {
	if e.IsLeaf() {
		return []string{e.Term}
	}
	var out []string
	for _, c := range e.Children {
		out = append(out, c.Terms()...)
	}
	return out
}
