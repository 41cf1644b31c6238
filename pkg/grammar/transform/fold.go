package transform

import (
	"slices"

	"github.com/matzehuels/railmacro/pkg/grammar"
)

type side uint8

const (
	head side = iota
	tail
)

// candidate is a run of length n shared by the branches in members, taken
// from their heads or tails.
type candidate struct {
	side    side
	n       int
	members []int
}

// FoldCommon factors shared head and tail runs out of every alternation in
// the tree. Branch order is preserved: a merged branch sits where its first
// member was.
func FoldCommon(t grammar.Tree) grammar.Tree {
	grammar.MustValidate(t.Root)
	return grammar.Tree{Name: t.Name, Root: fold(t.Root)}
}

func fold(m grammar.Matcher) grammar.Matcher {
	switch m.Kind {
	case grammar.KindLiteral, grammar.KindCapture:
		return m
	case grammar.KindSequence:
		items := make([]grammar.Matcher, len(m.Children))
		for i, ch := range m.Children {
			items[i] = fold(ch)
		}
		return grammar.Sequence(items...)
	case grammar.KindAlternation:
		runs := make([][]grammar.Matcher, len(m.Children))
		for i, ch := range m.Children {
			runs[i] = fold(ch).Items()
		}
		return foldRuns(runs)
	case grammar.KindRepetition:
		return grammar.Repetition(fold(*m.Body), m.Separator, m.Min)
	case grammar.KindOptional:
		return grammar.Optional(fold(*m.Body))
	default:
		panic(grammar.Validate(m))
	}
}

// foldRuns merges the alternatives runs until no two share a head or tail.
// A single surviving run comes back as a sequence.
func foldRuns(runs [][]grammar.Matcher) grammar.Matcher {
	runs = dedupeRuns(runs)
	for {
		c, ok := bestCandidate(runs)
		if !ok {
			break
		}
		runs = merge(runs, c)
	}
	if len(runs) == 1 {
		return grammar.Sequence(runs[0]...)
	}
	branches := make([]grammar.Matcher, len(runs))
	for i, r := range runs {
		branches[i] = grammar.Sequence(r...)
	}
	return grammar.Alternation(branches...)
}

func bestCandidate(runs [][]grammar.Matcher) (candidate, bool) {
	var best candidate
	for i := range runs {
		for _, s := range []side{head, tail} {
			n := 0
			for j := range runs {
				if j != i {
					n = max(n, common(s, runs[i], runs[j]))
				}
			}
			if n > best.n {
				best = candidate{side: s, n: n, members: []int{i}}
			}
		}
	}
	if best.n == 0 {
		return best, false
	}
	anchor := best.members[0]
	for j := range runs {
		if j != anchor && common(best.side, runs[anchor], runs[j]) >= best.n {
			best.members = append(best.members, j)
		}
	}
	return best, true
}

// merge replaces the members of c by one run holding the shared part and
// an alternation over what remains of each member.
func merge(runs [][]grammar.Matcher, c candidate) [][]grammar.Matcher {
	anchor := runs[c.members[0]]
	isMember := make(map[int]bool, len(c.members))
	first := c.members[0]
	rests := make([][]grammar.Matcher, 0, len(c.members))
	for _, idx := range slices.Sorted(slices.Values(c.members)) {
		isMember[idx] = true
		first = min(first, idx)
		r := runs[idx]
		if c.side == head {
			rests = append(rests, r[c.n:])
		} else {
			rests = append(rests, r[:len(r)-c.n])
		}
	}

	inner := foldRuns(rests).Items()
	var merged []grammar.Matcher
	if c.side == head {
		merged = append(cloneRun(anchor[:c.n]), inner...)
	} else {
		merged = append(inner, cloneRun(anchor[len(anchor)-c.n:])...)
	}

	out := make([][]grammar.Matcher, 0, len(runs)-len(c.members)+1)
	for i, r := range runs {
		switch {
		case i == first:
			out = append(out, merged)
		case !isMember[i]:
			out = append(out, r)
		}
	}
	return out
}

func common(s side, a, b []grammar.Matcher) int {
	n := 0
	for n < len(a) && n < len(b) {
		x, y := a[n], b[n]
		if s == tail {
			x, y = a[len(a)-1-n], b[len(b)-1-n]
		}
		if !x.Equal(y) {
			break
		}
		n++
	}
	return n
}

func dedupeRuns(runs [][]grammar.Matcher) [][]grammar.Matcher {
	out := make([][]grammar.Matcher, 0, len(runs))
next:
	for _, r := range runs {
		for _, seen := range out {
			if grammar.EqualAll(r, seen) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

func cloneRun(r []grammar.Matcher) []grammar.Matcher {
	out := make([]grammar.Matcher, len(r))
	for i, m := range r {
		out[i] = m.Clone()
	}
	return out
}
