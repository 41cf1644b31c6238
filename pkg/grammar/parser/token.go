package parser

import "fmt"

// TokenKind classifies a lexed token.
type TokenKind uint8

const (
	TokenIdent TokenKind = iota
	TokenLifetime
	TokenLiteral
	TokenPunct
	TokenOpen
	TokenClose
	TokenDocComment
)

func (k TokenKind) String() string {
	switch k {
	case TokenIdent:
		return "identifier"
	case TokenLifetime:
		return "lifetime"
	case TokenLiteral:
		return "literal"
	case TokenPunct:
		return "punctuation"
	case TokenOpen:
		return "open delimiter"
	case TokenClose:
		return "close delimiter"
	case TokenDocComment:
		return "doc comment"
	default:
		return fmt.Sprintf("token(%d)", k)
	}
}

// Token is one lexed token with its byte span in the source.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive

	// Match is the index of the partner delimiter for TokenOpen and
	// TokenClose, -1 otherwise.
	Match int

	// Inner marks `//!` and `/*! */` doc comments. For doc comments Text is
	// the comment body without its markers.
	Inner bool
}

// Is reports whether t is punctuation or a delimiter with the given text.
func (t Token) Is(text string) bool {
	return (t.Kind == TokenPunct || t.Kind == TokenOpen || t.Kind == TokenClose) && t.Text == text
}

// IsIdent reports whether t is the identifier name.
func (t Token) IsIdent(name string) bool {
	return t.Kind == TokenIdent && t.Text == name
}

func (t Token) describe() string {
	return "`" + t.Text + "`"
}

// closing maps open delimiters to their closing partner.
var closing = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// multiPunct lists joint punctuation, longest first.
var multiPunct = []string{
	"<<=", ">>=", "...", "..=",
	"::", "->", "=>", "==", "!=", "<=", ">=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "^=", "&=", "|=", "<<", ">>", "..",
}

const singlePunct = "+-*/%^!&|=<>@.,;:#$?~"
