package grammar

import "slices"

// FragmentKinds lists the capture kinds a macro pattern may declare.
var FragmentKinds = map[string]bool{
	"block":     true,
	"expr":      true,
	"expr_2021": true,
	"ident":     true,
	"item":      true,
	"lifetime":  true,
	"literal":   true,
	"meta":      true,
	"pat":       true,
	"pat_param": true,
	"path":      true,
	"stmt":      true,
	"tt":        true,
	"ty":        true,
	"vis":       true,
}

var fragmentDescriptions = map[string]string{
	"block":     "a block expression",
	"expr":      "an expression",
	"expr_2021": "an expression, without const and _",
	"ident":     "an identifier or keyword",
	"item":      "an item",
	"lifetime":  "a lifetime",
	"literal":   "a literal",
	"meta":      "the contents of an attribute",
	"pat":       "a pattern",
	"pat_param": "a pattern without top-level alternatives",
	"path":      "a type path",
	"stmt":      "a statement without the trailing semicolon",
	"tt":        "a single token tree",
	"ty":        "a type",
	"vis":       "a possibly empty visibility qualifier",
}

// FragmentDescription explains what a capture kind matches; empty for
// unknown kinds.
func FragmentDescription(kind string) string {
	return fragmentDescriptions[kind]
}

// Fragments returns the distinct capture kinds used in m, sorted.
func Fragments(m Matcher) []string {
	seen := make(map[string]bool)
	var out []string
	m.Walk(func(n Matcher) bool {
		if n.Kind == KindCapture && !seen[n.Fragment] {
			seen[n.Fragment] = true
			out = append(out, n.Fragment)
		}
		return true
	})
	slices.Sort(out)
	return out
}

// Rule is one alternative of a macro: the pattern side of a single clause.
type Rule struct {
	Pattern []Matcher `json:"pattern" yaml:"pattern"`

	// Offset is the byte offset of the clause in the macro source.
	Offset int `json:"offset" yaml:"offset"`
}

// Matcher returns the rule as a sequence matcher.
func (r Rule) Matcher() Matcher {
	return Sequence(r.Pattern...)
}

// Macro is a parsed rule-based macro declaration.
type Macro struct {
	// Name is empty when the source was a bare clause list.
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Tree is the diagram tree of a macro: a single root matcher, an
// alternation over the rules until the lowering passes reshape it.
type Tree struct {
	Name string  `json:"name,omitempty" yaml:"name,omitempty"`
	Root Matcher `json:"root" yaml:"root"`
}

// Equal reports whether both trees have the same name and root.
func (t Tree) Equal(o Tree) bool {
	return t.Name == o.Name && t.Root.Equal(o.Root)
}

// String renders the root matcher.
func (t Tree) String() string {
	return t.Root.String()
}
