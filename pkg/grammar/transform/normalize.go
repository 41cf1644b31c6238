package transform

import (
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
)

// Normalize rewrites the tree into canonical form:
//
//   - nested sequences and alternations are flattened into their parent
//   - adjacent literals merge into one, joined by a space
//   - duplicate alternation branches are dropped, keeping the first
//   - an alternation with an empty branch becomes an optional of the rest
//   - single-item sequences and single-branch alternations are unwrapped
//   - optionals of optionals, and of repetitions, collapse
//
// Rewriting repeats until the tree stops changing. The number of rounds is
// bounded by the tree depth; running out of rounds means a rewrite rule
// undoes another and panics with an INTERNAL_CONSISTENCY error.
func Normalize(t grammar.Tree) grammar.Tree {
	grammar.MustValidate(t.Root)

	root := t.Root
	rounds := root.Depth() + 1
	for range rounds {
		next := normalize(root)
		if next.Equal(root) {
			return grammar.Tree{Name: t.Name, Root: next}
		}
		root = next
	}
	panic(rmerrors.Internal("normalization did not settle after %d rounds", rounds))
}

func normalize(m grammar.Matcher) grammar.Matcher {
	switch m.Kind {
	case grammar.KindLiteral, grammar.KindCapture:
		return m
	case grammar.KindSequence:
		return normalizeSequence(m.Children)
	case grammar.KindAlternation:
		return normalizeAlternation(m.Children)
	case grammar.KindRepetition:
		body := normalize(*m.Body)
		if body.IsEmpty() && m.Separator == "" {
			return grammar.Empty()
		}
		return grammar.Repetition(body, m.Separator, m.Min)
	case grammar.KindOptional:
		return optional(normalize(*m.Body))
	default:
		panic(grammar.Validate(m))
	}
}

func normalizeSequence(children []grammar.Matcher) grammar.Matcher {
	items := make([]grammar.Matcher, 0, len(children))
	for _, ch := range children {
		n := normalize(ch)
		if n.Kind == grammar.KindSequence {
			items = append(items, n.Children...)
			continue
		}
		items = append(items, n)
	}
	items = mergeLiterals(items)
	if len(items) == 1 {
		return items[0]
	}
	return grammar.Sequence(items...)
}

func normalizeAlternation(children []grammar.Matcher) grammar.Matcher {
	var branches []grammar.Matcher
	add := func(b grammar.Matcher) {
		for _, seen := range branches {
			if seen.Equal(b) {
				return
			}
		}
		branches = append(branches, b)
	}

	hasEmpty := false
	for _, ch := range children {
		n := normalize(ch)
		switch {
		case n.IsEmpty():
			hasEmpty = true
		case n.Kind == grammar.KindAlternation:
			for _, b := range n.Children {
				add(b)
			}
		default:
			add(n)
		}
	}

	var res grammar.Matcher
	switch len(branches) {
	case 0:
		if hasEmpty {
			return grammar.Empty()
		}
		// No branches at all: nothing matches. Kept as is.
		return grammar.Alternation()
	case 1:
		res = branches[0]
	default:
		res = grammar.Alternation(branches...)
	}
	if hasEmpty {
		return optional(res)
	}
	return res
}

// optional wraps body, folding the wrappers that add nothing.
func optional(body grammar.Matcher) grammar.Matcher {
	switch {
	case body.IsEmpty():
		return body
	case body.Kind == grammar.KindAlternation && len(body.Children) == 0:
		return grammar.Empty()
	case body.Kind == grammar.KindOptional:
		return body
	case body.Kind == grammar.KindRepetition && body.Min == 0:
		return body
	case body.Kind == grammar.KindRepetition:
		return grammar.Repetition(*body.Body, body.Separator, 0)
	}
	return grammar.Optional(body)
}

func mergeLiterals(items []grammar.Matcher) []grammar.Matcher {
	out := items[:0:0]
	for _, m := range items {
		if n := len(out); n > 0 && m.Kind == grammar.KindLiteral && out[n-1].Kind == grammar.KindLiteral {
			out[n-1] = grammar.Literal(out[n-1].Text + " " + m.Text)
			continue
		}
		out = append(out, m)
	}
	return out
}
