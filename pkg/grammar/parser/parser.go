package parser

import (
	"slices"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
)

// Parse parses a macro declaration or a bare clause list.
// An empty clause list yields a Macro with no rules.
func Parse(src string) (*grammar.Macro, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: withoutDocComments(toks)}
	return p.macro()
}

type parser struct {
	src  string
	toks []Token
	pos  int
}

// withoutDocComments drops doc comment tokens and repairs delimiter links.
func withoutDocComments(toks []Token) []Token {
	if !slices.ContainsFunc(toks, func(t Token) bool { return t.Kind == TokenDocComment }) {
		return toks
	}
	remap := make([]int, len(toks))
	out := make([]Token, 0, len(toks))
	for i, t := range toks {
		remap[i] = len(out)
		if t.Kind != TokenDocComment {
			out = append(out, t)
		}
	}
	for i := range out {
		if out[i].Match >= 0 {
			out[i].Match = remap[out[i].Match]
		}
	}
	return out
}

func (p *parser) at(i int) (Token, bool) {
	if i < len(p.toks) {
		return p.toks[i], true
	}
	return Token{}, false
}

func (p *parser) errAt(i int, expected string) error {
	if t, ok := p.at(i); ok {
		return rmerrors.Syntax(p.src, t.Start, expected, t.describe())
	}
	return rmerrors.Syntax(p.src, len(p.src), expected, "end of input")
}

func (p *parser) macro() (*grammar.Macro, error) {
	p.skipAttributes()
	p.skipVisibility()

	t, ok := p.at(p.pos)
	if !ok || !t.IsIdent("macro_rules") {
		rules, err := p.rules(p.pos, len(p.toks))
		if err != nil {
			return nil, err
		}
		return &grammar.Macro{Rules: rules}, nil
	}

	if bang, _ := p.at(p.pos + 1); !bang.Is("!") {
		return nil, p.errAt(p.pos+1, "`!`")
	}
	name, ok := p.at(p.pos + 2)
	if !ok || name.Kind != TokenIdent {
		return nil, p.errAt(p.pos+2, "macro name")
	}
	open, ok := p.at(p.pos + 3)
	if !ok || open.Kind != TokenOpen {
		return nil, p.errAt(p.pos+3, "`{`, `(` or `[`")
	}

	rules, err := p.rules(p.pos+4, open.Match)
	if err != nil {
		return nil, err
	}

	end := open.Match + 1
	if t, ok := p.at(end); ok && t.Is(";") {
		end++
	}
	if end < len(p.toks) {
		return nil, p.errAt(end, "end of macro declaration")
	}
	return &grammar.Macro{Name: name.Text, Rules: rules}, nil
}

// skipAttributes steps over #[...] and #![...] attributes.
func (p *parser) skipAttributes() {
	for {
		hash, ok := p.at(p.pos)
		if !ok || !hash.Is("#") {
			return
		}
		i := p.pos + 1
		if t, _ := p.at(i); t.Is("!") {
			i++
		}
		open, ok := p.at(i)
		if !ok || !open.Is("[") {
			return
		}
		p.pos = open.Match + 1
	}
}

// skipVisibility steps over `pub` and `pub(...)`.
func (p *parser) skipVisibility() {
	if t, ok := p.at(p.pos); !ok || !t.IsIdent("pub") {
		return
	}
	p.pos++
	if t, ok := p.at(p.pos); ok && t.Is("(") {
		p.pos = t.Match + 1
	}
}

// rules parses `(pattern) => {expansion}` clauses separated by `;` within
// toks[start:end].
func (p *parser) rules(start, end int) ([]grammar.Rule, error) {
	var rules []grammar.Rule
	i := start
	for i < end {
		open := p.toks[i]
		if open.Kind != TokenOpen {
			return nil, p.errAt(i, "macro matcher in `(`, `[` or `{`")
		}
		pattern, err := p.pattern(i+1, open.Match)
		if err != nil {
			return nil, err
		}
		i = open.Match + 1

		if i >= end || !p.toks[i].Is("=>") {
			return nil, p.errAtBounded(i, end, "`=>`")
		}
		i++

		if i >= end || p.toks[i].Kind != TokenOpen {
			return nil, p.errAtBounded(i, end, "macro transcriber in `(`, `[` or `{`")
		}
		i = p.toks[i].Match + 1

		rules = append(rules, grammar.Rule{Pattern: pattern, Offset: open.Start})

		if i >= end {
			break
		}
		if !p.toks[i].Is(";") {
			return nil, p.errAt(i, "`;`")
		}
		i++
	}
	return rules, nil
}

// errAtBounded reports at i, or at the closing delimiter when i ran off the
// end of the enclosing group.
func (p *parser) errAtBounded(i, end int, expected string) error {
	if i >= end {
		return p.errAt(end, expected)
	}
	return p.errAt(i, expected)
}

// pattern lowers toks[start:end] into matchers.
func (p *parser) pattern(start, end int) ([]grammar.Matcher, error) {
	var out []grammar.Matcher
	i := start
	for i < end {
		t := p.toks[i]
		switch {
		case t.Is("$"):
			ms, next, err := p.dollar(i, end)
			if err != nil {
				return nil, err
			}
			out = append(out, ms)
			i = next

		case t.Kind == TokenOpen:
			inner, err := p.pattern(i+1, t.Match)
			if err != nil {
				return nil, err
			}
			out = append(out, grammar.Literal(t.Text))
			out = append(out, inner...)
			out = append(out, grammar.Literal(p.toks[t.Match].Text))
			i = t.Match + 1

		default:
			out = append(out, grammar.Literal(t.Text))
			i++
		}
	}
	return out, nil
}

// dollar parses the construct introduced by the `$` at toks[i].
func (p *parser) dollar(i, end int) (grammar.Matcher, int, error) {
	if i+1 >= end {
		return grammar.Matcher{}, 0, p.errAtBounded(i+1, end, "identifier or `(` after `$`")
	}
	next := p.toks[i+1]
	switch {
	case next.IsIdent("crate"):
		return grammar.Literal("$crate"), i + 2, nil

	case next.Kind == TokenIdent:
		return p.capture(i, end)

	case next.Is("("):
		return p.repetition(i+1, end)

	default:
		return grammar.Matcher{}, 0, p.errAt(i+1, "identifier or `(` after `$`")
	}
}

func (p *parser) capture(i, end int) (grammar.Matcher, int, error) {
	name := p.toks[i+1].Text
	if i+2 >= end || !p.toks[i+2].Is(":") {
		return grammar.Matcher{}, 0, p.errAtBounded(i+2, end, "`:` and fragment specifier after `$"+name+"`")
	}
	if i+3 >= end || p.toks[i+3].Kind != TokenIdent {
		return grammar.Matcher{}, 0, p.errAtBounded(i+3, end, "fragment specifier")
	}
	frag := p.toks[i+3].Text
	if !grammar.FragmentKinds[frag] {
		return grammar.Matcher{}, 0, p.errAt(i+3, "fragment specifier (block, expr, ident, item, lifetime, literal, meta, pat, pat_param, path, stmt, tt, ty, vis)")
	}
	return grammar.Capture(name, frag), i + 4, nil
}

// repetition parses `( body ) sep? op` with the open paren at toks[open].
func (p *parser) repetition(open, end int) (grammar.Matcher, int, error) {
	closeIdx := p.toks[open].Match
	if closeIdx == open+1 {
		return grammar.Matcher{}, 0, p.errAt(closeIdx, "at least one token in repetition")
	}
	body, err := p.pattern(open+1, closeIdx)
	if err != nil {
		return grammar.Matcher{}, 0, err
	}

	j := closeIdx + 1
	if j >= end {
		return grammar.Matcher{}, 0, p.errAtBounded(j, end, "repetition operator `*`, `+` or `?`")
	}

	sep := ""
	op := p.toks[j]
	switch {
	case op.Is("*") || op.Is("+"):
	case op.Is("?"):
		if j+1 < end && (p.toks[j+1].Is("*") || p.toks[j+1].Is("+")) {
			sep = "?"
			j++
			op = p.toks[j]
		}
	case op.Kind == TokenOpen || op.Kind == TokenClose || op.Is("$"):
		return grammar.Matcher{}, 0, p.errAt(j, "repetition separator or operator")
	default:
		sep = op.Text
		j++
		if j >= end {
			return grammar.Matcher{}, 0, p.errAtBounded(j, end, "repetition operator `*` or `+`")
		}
		op = p.toks[j]
		if op.Is("?") {
			return grammar.Matcher{}, 0, p.errAt(j, "`*` or `+` (the `?` operator takes no separator)")
		}
		if !op.Is("*") && !op.Is("+") {
			return grammar.Matcher{}, 0, p.errAt(j, "repetition operator `*` or `+`")
		}
	}

	seq := grammar.Sequence(body...)
	switch op.Text {
	case "*":
		return grammar.Repetition(seq, sep, 0), j + 1, nil
	case "+":
		return grammar.Repetition(seq, sep, 1), j + 1, nil
	default:
		return grammar.Optional(seq), j + 1, nil
	}
}
