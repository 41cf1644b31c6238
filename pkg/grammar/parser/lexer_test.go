package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
)

func TestTokenize(t *testing.T) {
	src := `($x:expr, 'a, 'c', "s\"q", r#"raw"#, b'x', 1.5e3, 0..9, r#type) => /* c /* nested */ */ { a::b <<= c }`
	toks, err := Tokenize(src)
	require.NoError(t, err)

	type exp struct {
		kind TokenKind
		text string
	}
	expected := []exp{
		{TokenOpen, "("},
		{TokenPunct, "$"}, {TokenIdent, "x"}, {TokenPunct, ":"}, {TokenIdent, "expr"}, {TokenPunct, ","},
		{TokenLifetime, "'a"}, {TokenPunct, ","},
		{TokenLiteral, "'c'"}, {TokenPunct, ","},
		{TokenLiteral, `"s\"q"`}, {TokenPunct, ","},
		{TokenLiteral, `r#"raw"#`}, {TokenPunct, ","},
		{TokenLiteral, "b'x'"}, {TokenPunct, ","},
		{TokenLiteral, "1.5e3"}, {TokenPunct, ","},
		{TokenLiteral, "0"}, {TokenPunct, ".."}, {TokenLiteral, "9"}, {TokenPunct, ","},
		{TokenIdent, "r#type"},
		{TokenClose, ")"},
		{TokenPunct, "=>"},
		{TokenOpen, "{"}, {TokenIdent, "a"}, {TokenPunct, "::"}, {TokenIdent, "b"}, {TokenPunct, "<<="}, {TokenIdent, "c"}, {TokenClose, "}"},
	}

	require.Len(t, toks, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.kind, toks[i].Kind, "case %d: wrong token kind for %q", i, toks[i].Text)
		assert.Equal(t, e.text, toks[i].Text, "case %d: wrong token text", i)
		assert.Equal(t, e.text, src[toks[i].Start:toks[i].End], "case %d: span does not cover text", i)
	}

	assert.Equal(t, 23, toks[0].Match, "open paren should link to its close")
	assert.Equal(t, 0, toks[23].Match, "close paren should link to its open")
	assert.Equal(t, -1, toks[1].Match)
}

func TestTokenizeDocComments(t *testing.T) {
	src := "//! crate docs\n/// Outer line\n//// not a doc\n/** block */\n/*** not */\n// plain\nmacro_rules!"
	toks, err := Tokenize(src)
	require.NoError(t, err)
	require.Len(t, toks, 5)

	assert.Equal(t, TokenDocComment, toks[0].Kind)
	assert.True(t, toks[0].Inner)
	assert.Equal(t, " crate docs", toks[0].Text)

	assert.Equal(t, TokenDocComment, toks[1].Kind)
	assert.False(t, toks[1].Inner)
	assert.Equal(t, " Outer line", toks[1].Text)

	assert.Equal(t, TokenDocComment, toks[2].Kind)
	assert.Equal(t, " block ", toks[2].Text)

	assert.True(t, toks[3].IsIdent("macro_rules"))
	assert.True(t, toks[4].Is("!"))
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		offset int
	}{
		{"unclosed paren", "(a b", 0},
		{"stray close", "a )", 2},
		{"mismatched", "(a]", 2},
		{"unterminated string", `x "abc`, 2},
		{"unterminated comment", "a /* b", 2},
		{"unexpected char", "a ` b", 2},
		{"unterminated raw string", `r#"abc"`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.src)
			require.Error(t, err)
			assert.True(t, rmerrors.Is(err, rmerrors.ErrCodeGrammarSyntax))

			var se *rmerrors.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.offset, se.Offset)
		})
	}
}
