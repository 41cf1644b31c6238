package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
)

func patterns(m *grammar.Macro) []string {
	out := make([]string, len(m.Rules))
	for i, r := range m.Rules {
		out[i] = r.Matcher().String()
	}
	return out
}

func TestParseDeclaration(t *testing.T) {
	src := `
/// Builds a vector.
#[macro_export]
macro_rules! vec_of {
    () => { Vec::new() };
    ($($x:expr),+ $(,)?) => { vec![$($x),+] };
    (@inner $t:ty; $n:literal) => {{ let _: $t = $n; }}
}`
	m, err := Parse(src)
	require.NoError(t, err)

	assert.Equal(t, "vec_of", m.Name)
	assert.Equal(t, []string{
		"()",
		"($($x:expr),+ $(,)?)",
		"(@ inner $t:ty ; $n:literal)",
	}, patterns(m))
}

func TestParseBareClauses(t *testing.T) {
	m, err := Parse(`(a) => {...}; (b) => {...}`)
	require.NoError(t, err)

	assert.Empty(t, m.Name)
	assert.Equal(t, []string{"(a)", "(b)"}, patterns(m))
	assert.Equal(t, 0, m.Rules[0].Offset)
	assert.Equal(t, 14, m.Rules[1].Offset)
}

func TestParseBodyDelimiters(t *testing.T) {
	for _, src := range []string{
		"macro_rules! m { (a) => {} }",
		"macro_rules! m ( (a) => {} );",
		"macro_rules! m [ [a] => () ];",
		"pub(crate) macro_rules! m { {a} => [] }",
	} {
		m, err := Parse(src)
		require.NoError(t, err, src)
		assert.Equal(t, "m", m.Name, src)
		assert.Equal(t, []string{"(a)"}, patterns(m), src)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "   // nothing\n", "macro_rules! m {}"} {
		m, err := Parse(src)
		require.NoError(t, err, src)
		assert.Empty(t, m.Rules, src)
	}
}

func TestParsePatternForms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"literals", "(fn main) => {}", "(fn main)"},
		{"capture", "($name:ident) => {}", "($name:ident)"},
		{"spaced capture", "($ name : ty) => {}", "($name:ty)"},
		{"crate", "($crate::x) => {}", `("$crate" :: x)`},
		{"zero or more", "($($e:expr),*) => {}", "($($e:expr),*)"},
		{"one or more no sep", "($($t:tt)+) => {}", "($($t:tt)+)"},
		{"optional", "($(mut)? $n:ident) => {}", "($(mut)? $n:ident)"},
		{"question separator", "($($a:ident)?*) => {}", "($($a:ident)?*)"},
		{"joint separator", "($($a:ident)=>+) => {}", "($($a:ident)=>+)"},
		{"nested group", "(f($a:expr)) => {}", `(f "(" $a:expr ")")`},
		{"nested repetition", "($($k:ident => [$($v:expr),*]);*) => {}", `($($k:ident => "[" $($v:expr),* "]");*)`},
		{"lifetime", "('a $t:ty) => {}", "('a $t:ty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Parse(tt.src)
			require.NoError(t, err)
			require.Len(t, m.Rules, 1)
			assert.Equal(t, tt.want, m.Rules[0].Matcher().String())
		})
	}
}

func TestParseRepetitionStructure(t *testing.T) {
	m, err := Parse("($($x:expr),+) => {}")
	require.NoError(t, err)

	rep := m.Rules[0].Pattern[0]
	require.Equal(t, grammar.KindRepetition, rep.Kind)
	assert.Equal(t, ",", rep.Separator)
	assert.Equal(t, 1, rep.Min)
	assert.True(t, rep.Body.Equal(grammar.Sequence(grammar.Capture("x", "expr"))))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		offset   int
		expected string
	}{
		{"missing arrow", "(a) {}", 4, "`=>`"},
		{"missing transcriber", "(a) =>", 6, "macro transcriber in `(`, `[` or `{`"},
		{"missing semicolon", "(a) => {} (b) => {}", 10, "`;`"},
		{"matcher not group", "a => {}", 0, "macro matcher in `(`, `[` or `{`"},
		{"missing fragment", "($x) => {}", 3, "`:` and fragment specifier after `$x`"},
		{"unknown fragment", "($x:banana) => {}", 4, "fragment specifier (block, expr, ident, item, lifetime, literal, meta, pat, pat_param, path, stmt, tt, ty, vis)"},
		{"bad dollar", "($+) => {}", 2, "identifier or `(` after `$`"},
		{"missing operator", "($(a)) => {}", 5, "repetition operator `*`, `+` or `?`"},
		{"separator on question", "($(a),?) => {}", 6, "`*` or `+` (the `?` operator takes no separator)"},
		{"empty repetition", "($()*) => {}", 3, "at least one token in repetition"},
		{"missing macro name", "macro_rules! { }", 13, "macro name"},
		{"trailing tokens", "macro_rules! m { } extra", 19, "end of macro declaration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.src)
			require.Error(t, err)
			assert.True(t, rmerrors.Is(err, rmerrors.ErrCodeGrammarSyntax), "error code = %v", rmerrors.GetCode(err))

			var se *rmerrors.SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.offset, se.Offset)
			assert.Equal(t, tt.expected, se.Expected)
		})
	}
}

func TestParseIsPure(t *testing.T) {
	src := "($a:ident $(, $b:expr)*) => {}; (@x) => {}"
	first, err := Parse(src)
	require.NoError(t, err)
	second, err := Parse(src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
