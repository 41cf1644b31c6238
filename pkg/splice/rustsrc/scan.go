package rustsrc

import (
	"strings"

	"github.com/matzehuels/railmacro/pkg/grammar/parser"
	"github.com/matzehuels/railmacro/pkg/splice"
)

// AnnotationName is the attribute that requests a diagram.
const AnnotationName = "generate_railroad"

// AnnotationCrate is the crate path the annotation may be qualified with.
const AnnotationCrate = "macro_railroad_annotation"

// Item is a macro declaration found in a source file.
type Item struct {
	Name string

	// Start is the offset of the first attribute, or of the macro_rules
	// keyword when there are none. AttrsEnd is the offset of the keyword.
	Start    int
	AttrsEnd int

	// Source is the declaration from the keyword through its closing
	// delimiter and optional semicolon, spanning [AttrsEnd, End).
	Source string
	End    int

	// Attrs lists the attributes above the declaration in source order,
	// without the annotation.
	Attrs []splice.Attr

	Annotated bool

	// LabelArg is the source text between the annotation's parentheses.
	LabelArg string

	// AnnotationIndex is the position in Attrs where the annotation was;
	// AnnotationEnd is the offset just past it.
	AnnotationIndex int
	AnnotationEnd   int
}

// Line returns the 1-based line of the declaration keyword in src.
func (it Item) Line(src string) int {
	return strings.Count(src[:it.AttrsEnd], "\n") + 1
}

// Declaration returns the splice input for it.
func (it Item) Declaration() splice.Declaration {
	end := it.AnnotationEnd
	if !it.Annotated {
		end = -1
	}
	return splice.Declaration{
		Name:            it.Name,
		Attrs:           it.Attrs,
		AnnotationIndex: it.AnnotationIndex,
		InvocationEnd:   end,
	}
}

// Scan returns the macro declarations in src in source order. Macros
// declared inside another macro's body are not reported.
func Scan(src string) ([]Item, error) {
	toks, err := parser.Tokenize(src)
	if err != nil {
		return nil, err
	}

	var items []Item
	for i := 0; i < len(toks); i++ {
		it, end, ok := declAt(src, toks, i)
		if !ok {
			continue
		}
		items = append(items, it)
		i = end
	}
	return items, nil
}

// declAt matches `macro_rules! name { ... }` at toks[i] and returns the
// item and the index of its last token.
func declAt(src string, toks []parser.Token, i int) (Item, int, bool) {
	if !toks[i].IsIdent("macro_rules") || i+3 >= len(toks) {
		return Item{}, 0, false
	}
	bang, name, body := toks[i+1], toks[i+2], toks[i+3]
	if !bang.Is("!") || name.Kind != parser.TokenIdent || body.Kind != parser.TokenOpen {
		return Item{}, 0, false
	}
	last := body.Match
	if body.Text != "{" && last+1 < len(toks) && toks[last+1].Is(";") {
		last++
	}

	it := Item{
		Name:     name.Text,
		Start:    toks[i].Start,
		AttrsEnd: toks[i].Start,
		End:      toks[last].End,
	}
	it.Source = src[it.AttrsEnd:it.End]

	attrs := attrsBefore(toks, i)
	if len(attrs) > 0 {
		it.Start = attrs[0].start
	}
	for _, a := range attrs {
		if ann, arg := annotation(src, toks, a); ann && !it.Annotated {
			it.Annotated = true
			it.LabelArg = arg
			it.AnnotationIndex = len(it.Attrs)
			it.AnnotationEnd = a.end
			continue
		}
		it.Attrs = append(it.Attrs, a.attr(src, toks))
	}
	return it, last, true
}

// rawAttr is an attribute as a token range.
type rawAttr struct {
	first, last int // token indices
	start, end  int // byte offsets
}

// attrsBefore walks back from toks[i] over outer attributes and doc
// comments.
func attrsBefore(toks []parser.Token, i int) []rawAttr {
	var out []rawAttr
	j := i - 1
walk:
	for j >= 0 {
		t := toks[j]
		switch {
		case t.Kind == parser.TokenDocComment && !t.Inner:
			out = append(out, rawAttr{first: j, last: j, start: t.Start, end: t.End})
			j--
		case t.Is("]") && t.Match >= 1 && toks[t.Match-1].Is("#"):
			open := t.Match
			out = append(out, rawAttr{first: open - 1, last: j, start: toks[open-1].Start, end: t.End})
			j = open - 2
		default:
			break walk
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

// annotation reports whether a is the diagram annotation and returns the
// text of its argument list.
func annotation(src string, toks []parser.Token, a rawAttr) (bool, string) {
	if toks[a.first].Kind == parser.TokenDocComment {
		return false, ""
	}
	k := a.first + 2 // past `#[`
	if toks[k].IsIdent(AnnotationCrate) && k+2 < a.last && toks[k+1].Is("::") {
		k += 2
	}
	if !toks[k].IsIdent(AnnotationName) {
		return false, ""
	}
	switch next := toks[k+1]; {
	case k+1 == a.last:
		return true, ""
	case next.Is("(") && next.Match == a.last-1:
		return true, src[next.End:toks[next.Match].Start]
	}
	return false, ""
}

func (a rawAttr) attr(src string, toks []parser.Token) splice.Attr {
	span := &splice.Span{Start: a.start, End: a.end}
	first := toks[a.first]
	if first.Kind == parser.TokenDocComment {
		return splice.Attr{Style: splice.Outer, Doc: true, Text: first.Text, Span: span}
	}
	// #[doc = "..."]
	if a.last-a.first == 5 && toks[a.first+2].IsIdent("doc") && toks[a.first+3].Is("=") {
		if text, err := parser.UnquoteString(toks[a.first+4].Text); err == nil {
			return splice.Attr{Style: splice.Outer, Doc: true, Text: text, Span: span}
		}
	}
	return splice.Attr{Style: splice.Outer, Text: src[a.start:a.end], Span: span}
}
