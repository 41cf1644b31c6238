package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
)

// Tokenize splits Rust source into token-tree tokens. Whitespace and plain
// comments are dropped; doc comments are kept as TokenDocComment so callers
// that care about documentation can see them. Delimiters must balance.
func Tokenize(src string) ([]Token, error) {
	lx := &lexer{src: src}
	if err := lx.run(); err != nil {
		return nil, err
	}
	return lx.toks, nil
}

type lexer struct {
	src   string
	pos   int
	toks  []Token
	stack []int
}

func (lx *lexer) run() error {
	for {
		if err := lx.skipTrivia(); err != nil {
			return err
		}
		if lx.pos >= len(lx.src) {
			break
		}
		if err := lx.next(); err != nil {
			return err
		}
	}
	if n := len(lx.stack); n > 0 {
		open := lx.toks[lx.stack[n-1]]
		return rmerrors.Syntax(lx.src, open.Start, "`"+string(closing[open.Text[0]])+"`", "end of input")
	}
	return nil
}

func (lx *lexer) emit(kind TokenKind, start int) {
	lx.toks = append(lx.toks, Token{Kind: kind, Text: lx.src[start:lx.pos], Start: start, End: lx.pos, Match: -1})
}

func (lx *lexer) peekAt(i int) byte {
	if lx.pos+i < len(lx.src) {
		return lx.src[lx.pos+i]
	}
	return 0
}

// skipTrivia consumes whitespace and comments, emitting doc comments.
func (lx *lexer) skipTrivia() error {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		switch {
		case unicode.IsSpace(r):
			lx.pos += size
		case strings.HasPrefix(lx.src[lx.pos:], "//"):
			lx.lineComment()
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			if err := lx.blockComment(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) lineComment() {
	start := lx.pos
	end := strings.IndexByte(lx.src[start:], '\n')
	if end < 0 {
		end = len(lx.src)
	} else {
		end += start
	}
	lx.pos = end
	text := lx.src[start:end]
	switch {
	case strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "////"):
		lx.toks = append(lx.toks, Token{Kind: TokenDocComment, Text: text[3:], Start: start, End: end, Match: -1})
	case strings.HasPrefix(text, "//!"):
		lx.toks = append(lx.toks, Token{Kind: TokenDocComment, Text: text[3:], Start: start, End: end, Match: -1, Inner: true})
	}
}

func (lx *lexer) blockComment() error {
	start := lx.pos
	depth := 0
	for lx.pos < len(lx.src) {
		switch {
		case strings.HasPrefix(lx.src[lx.pos:], "/*"):
			depth++
			lx.pos += 2
		case strings.HasPrefix(lx.src[lx.pos:], "*/"):
			depth--
			lx.pos += 2
			if depth == 0 {
				text := lx.src[start:lx.pos]
				if len(text) <= 4 {
					return nil
				}
				body := text[3 : len(text)-2]
				switch {
				case strings.HasPrefix(text, "/**") && !strings.HasPrefix(text, "/***"):
					lx.toks = append(lx.toks, Token{Kind: TokenDocComment, Text: body, Start: start, End: lx.pos, Match: -1})
				case strings.HasPrefix(text, "/*!"):
					lx.toks = append(lx.toks, Token{Kind: TokenDocComment, Text: body, Start: start, End: lx.pos, Match: -1, Inner: true})
				}
				return nil
			}
		default:
			lx.pos++
		}
	}
	return rmerrors.Syntax(lx.src, start, "`*/`", "end of input")
}

func (lx *lexer) next() error {
	start := lx.pos
	c := lx.src[lx.pos]

	switch {
	case c == '(' || c == '[' || c == '{':
		lx.pos++
		lx.emit(TokenOpen, start)
		lx.stack = append(lx.stack, len(lx.toks)-1)
		return nil

	case c == ')' || c == ']' || c == '}':
		lx.pos++
		if len(lx.stack) == 0 {
			return rmerrors.Syntax(lx.src, start, "no closing delimiter", "`"+string(c)+"`")
		}
		openIdx := lx.stack[len(lx.stack)-1]
		open := lx.toks[openIdx]
		if want := closing[open.Text[0]]; want != c {
			return rmerrors.Syntax(lx.src, start, "`"+string(want)+"`", "`"+string(c)+"`")
		}
		lx.stack = lx.stack[:len(lx.stack)-1]
		lx.emit(TokenClose, start)
		closeIdx := len(lx.toks) - 1
		lx.toks[openIdx].Match = closeIdx
		lx.toks[closeIdx].Match = openIdx
		return nil

	case c == '"':
		return lx.quoted(start, '"')

	case c == '\'':
		return lx.charOrLifetime(start)

	case c >= '0' && c <= '9':
		lx.number()
		lx.emit(TokenLiteral, start)
		return nil

	case isIdentStart(lx.src[lx.pos:]):
		return lx.identOrPrefixed(start)
	}

	for _, p := range multiPunct {
		if strings.HasPrefix(lx.src[lx.pos:], p) {
			lx.pos += len(p)
			lx.emit(TokenPunct, start)
			return nil
		}
	}
	if strings.IndexByte(singlePunct, c) >= 0 {
		lx.pos++
		lx.emit(TokenPunct, start)
		return nil
	}

	r, _ := utf8.DecodeRuneInString(lx.src[lx.pos:])
	return rmerrors.Syntax(lx.src, start, "a token", "unexpected character "+quoteRune(r))
}

func (lx *lexer) identOrPrefixed(start int) error {
	lx.ident()
	word := lx.src[start:lx.pos]
	switch {
	case word == "r" && lx.peekAt(0) == '#' && isIdentStart(lx.src[lx.pos+1:]):
		// raw identifier r#name
		lx.pos++
		lx.ident()
		lx.emit(TokenIdent, start)
		return nil
	case (word == "r" || word == "br" || word == "cr") && (lx.peekAt(0) == '"' || lx.peekAt(0) == '#'):
		return lx.rawString(start)
	case (word == "b" || word == "c") && lx.peekAt(0) == '"':
		return lx.quoted(start, '"')
	case word == "b" && lx.peekAt(0) == '\'':
		return lx.quoted(start, '\'')
	}
	lx.emit(TokenIdent, start)
	return nil
}

func (lx *lexer) ident() {
	for lx.pos < len(lx.src) {
		r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		lx.pos += size
	}
}

// quoted lexes a string or byte-char literal whose opening quote is at the
// current position. A literal suffix (e.g. "x"suffix) is kept.
func (lx *lexer) quoted(start int, quote byte) error {
	lx.pos++
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '\\':
			lx.pos += 2
		case quote:
			lx.pos++
			lx.ident()
			lx.emit(TokenLiteral, start)
			return nil
		default:
			lx.pos++
		}
	}
	return rmerrors.Syntax(lx.src, start, "closing "+quoteRune(rune(quote)), "end of input")
}

func (lx *lexer) rawString(start int) error {
	hashes := 0
	for lx.peekAt(0) == '#' {
		hashes++
		lx.pos++
	}
	if lx.peekAt(0) != '"' {
		return rmerrors.Syntax(lx.src, lx.pos, "`\"` in raw string", describeAt(lx.src, lx.pos))
	}
	lx.pos++
	terminator := "\"" + strings.Repeat("#", hashes)
	end := strings.Index(lx.src[lx.pos:], terminator)
	if end < 0 {
		return rmerrors.Syntax(lx.src, start, "raw string terminator "+terminator, "end of input")
	}
	lx.pos += end + len(terminator)
	lx.ident()
	lx.emit(TokenLiteral, start)
	return nil
}

// charOrLifetime distinguishes 'c' and '\n' from 'a and 'static.
func (lx *lexer) charOrLifetime(start int) error {
	if lx.peekAt(1) == '\\' {
		return lx.quoted(start, '\'')
	}
	_, size := utf8.DecodeRuneInString(lx.src[lx.pos+1:])
	if lx.pos+1+size < len(lx.src) && lx.src[lx.pos+1+size] == '\'' {
		lx.pos += 2 + size
		lx.emit(TokenLiteral, start)
		return nil
	}
	if !isIdentStart(lx.src[lx.pos+1:]) {
		return rmerrors.Syntax(lx.src, start, "character literal or lifetime", describeAt(lx.src, lx.pos+1))
	}
	lx.pos++
	lx.ident()
	lx.emit(TokenLifetime, start)
	return nil
}

// number consumes a numeric literal with optional suffix. A dot is only
// part of the number when a digit follows, so ranges like 0..9 still lex.
func (lx *lexer) number() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			lx.pos++
		case c == '.' && lx.peekAt(1) >= '0' && lx.peekAt(1) <= '9':
			lx.pos++
		default:
			return
		}
	}
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r)
}

func quoteRune(r rune) string {
	return "`" + string(r) + "`"
}

func describeAt(src string, pos int) string {
	if pos >= len(src) {
		return "end of input"
	}
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return quoteRune(r)
}
