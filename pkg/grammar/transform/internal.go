package transform

import (
	"strings"

	"github.com/matzehuels/railmacro/pkg/grammar"
)

// InternalSentinel prefixes the first token of helper rules.
const InternalSentinel = "@"

// RemoveInternal drops root alternatives whose pattern begins with the
// internal sentinel. A root that is not an alternation is treated as a
// single alternative.
func RemoveInternal(t grammar.Tree) grammar.Tree {
	grammar.MustValidate(t.Root)

	if t.Root.Kind != grammar.KindAlternation {
		if IsInternal(t.Root) {
			return grammar.Tree{Name: t.Name, Root: grammar.Alternation()}
		}
		return grammar.Tree{Name: t.Name, Root: t.Root.Clone()}
	}

	kept := make([]grammar.Matcher, 0, len(t.Root.Children))
	for _, b := range t.Root.Children {
		if !IsInternal(b) {
			kept = append(kept, b.Clone())
		}
	}
	return grammar.Tree{Name: t.Name, Root: grammar.Alternation(kept...)}
}

// IsInternal reports whether the alternative m starts with the sentinel.
func IsInternal(m grammar.Matcher) bool {
	for m.Kind == grammar.KindSequence {
		if len(m.Children) == 0 {
			return false
		}
		m = m.Children[0]
	}
	return m.Kind == grammar.KindLiteral && strings.HasPrefix(m.Text, InternalSentinel)
}
