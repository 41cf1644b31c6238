package transform

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/grammar/parser"
)

func mustParse(t *testing.T, src string) *grammar.Macro {
	t.Helper()
	m, err := parser.Parse(src)
	require.NoError(t, err)
	return m
}

// corpus covers folding, internal rules, repetitions and optionals.
var corpus = []string{
	`macro_rules! m { (a) => {}; (b) => {}; }`,
	`macro_rules! m { (a $x:expr) => {}; (a $y:expr) => {}; }`,
	`macro_rules! m { (@inner $x:expr) => {}; ($x:expr) => {}; }`,
	`macro_rules! m { (x a b) => {}; (y a b) => {}; (x c) => {}; }`,
	`macro_rules! m { (a) => {}; (a b) => {}; (a b) => {}; }`,
	`macro_rules! m { ($($x:expr),+ $(,)?) => {}; () => {}; }`,
	`macro_rules! m { (let $p:pat = $e:expr) => {}; (let $p:pat) => {}; (const $i:ident = $e:expr) => {}; }`,
	`macro_rules! m { ($a:ident => $($b:tt)*) => {}; ($a:ident => ) => {}; (@step $n:literal) => {}; }`,
	`macro_rules! m { ([$($x:expr);*]) => {}; ([]) => {}; ($x:expr) => {}; }`,
	`macro_rules! m { ($($(a)?)*) => {}; () => {}; }`,
}

func TestLower(t *testing.T) {
	m := mustParse(t, `macro_rules! m { (a) => {}; (@x b) => {}; () => {} }`)
	tree := Lower(m)

	assert.Equal(t, "m", tree.Name)
	assert.Equal(t, `{(a) | (@ x b) | ()}`, tree.String())
}

func TestPipelineShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"two literals", `macro_rules! m { (a) => {}; (b) => {}; }`, `{a | b}`},
		{"shared head", `macro_rules! m { (a $x:expr) => {}; (a $y:expr) => {}; }`, `(a {$x:expr | $y:expr})`},
		{"internal removed", `macro_rules! m { (@inner $x:expr) => {}; ($x:expr) => {}; }`, `$x:expr`},
		{"empty branch", `macro_rules! m { (a) => {}; (a b) => {}; }`, `(a $(b)?)`},
		{"duplicates", `macro_rules! m { (a) => {}; (a) => {}; }`, `a`},
		{"literals merge", `macro_rules! m { (a b c) => {}; }`, `"a b c"`},
		{"longest run", `macro_rules! m { (a b c) => {}; (a d) => {}; (x b c) => {}; }`, `{({a | x} "b c") | "a d"}`},
		{"tail beats shorter head", `macro_rules! m { (x a b) => {}; (y a b) => {}; (x c) => {}; }`, `{({x | y} "a b") | "x c"}`},
		{"head before tail", `macro_rules! m { (a b) => {}; (a c) => {}; (d c) => {}; }`, `{(a {b | c}) | "d c"}`},
		{"all internal", `macro_rules! m { (@a) => {}; }`, `{}`},
		{"empty macro", `macro_rules! m { () => {}; }`, `()`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pipeline(mustParse(t, tt.src), Options{})
			if got.String() != tt.want {
				t.Errorf("Pipeline(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestPipelineOptions(t *testing.T) {
	src := `macro_rules! m { (@inner $x:expr) => {}; (a $x:expr) => {}; (a $y:expr) => {}; }`
	m := mustParse(t, src)

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", Options{}, `(a {$x:expr | $y:expr})`},
		{"keep internal", Options{KeepInternal: true}, `{({"@ inner" | a} $x:expr) | (a $y:expr)}`},
		{"no fold", Options{NoFold: true}, `{(a $x:expr) | (a $y:expr)}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pipeline(m, tt.opts)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestRunStages(t *testing.T) {
	m := mustParse(t, `macro_rules! m { (@i) => {}; (a b $x:expr) => {}; (a b) => {}; }`)

	tests := []struct {
		stage Stage
		want  string
	}{
		{StageLowered, `{(@ i) | (a b $x:expr) | (a b)}`},
		{StageInternal, `{(a b $x:expr) | (a b)}`},
		{StageFolded, `(a b {($x:expr) | ()})`},
		{StageNormalized, `("a b" $($x:expr)?)`},
	}
	for _, tt := range tests {
		t.Run(string(tt.stage), func(t *testing.T) {
			assert.True(t, ValidStages[tt.stage])
			assert.Equal(t, tt.want, Run(m, Options{}, tt.stage).String())
		})
	}
}

func TestIsInternal(t *testing.T) {
	tests := []struct {
		m    grammar.Matcher
		want bool
	}{
		{grammar.Sequence(grammar.Literal("@"), grammar.Literal("x")), true},
		{grammar.Sequence(grammar.Literal("@step")), true},
		{grammar.Literal("@"), true},
		{grammar.Sequence(grammar.Literal("a"), grammar.Literal("@")), false},
		{grammar.Sequence(grammar.Capture("x", "tt")), false},
		{grammar.Empty(), false},
	}
	for _, tt := range tests {
		if got := IsInternal(tt.m); got != tt.want {
			t.Errorf("IsInternal(%s) = %v, want %v", tt.m, got, tt.want)
		}
	}
}

func TestRemoveInternalNonAlternation(t *testing.T) {
	tree := grammar.Tree{Name: "m", Root: grammar.Sequence(grammar.Literal("@"), grammar.Literal("x"))}
	assert.Equal(t, `{}`, RemoveInternal(tree).String())

	tree.Root = grammar.Literal("x")
	assert.Equal(t, `x`, RemoveInternal(tree).String())
}

func TestFoldCommonNested(t *testing.T) {
	// Alternations below a repetition fold too.
	body := grammar.Alternation(
		grammar.Sequence(grammar.Literal("k"), grammar.Capture("a", "expr")),
		grammar.Sequence(grammar.Literal("k"), grammar.Capture("b", "ty")),
	)
	tree := grammar.Tree{Root: grammar.Repetition(body, ",", 0)}

	got := FoldCommon(tree)
	assert.Equal(t, `$(k {($a:expr) | ($b:ty)}),*`, got.String())
}

func TestNormalizeRules(t *testing.T) {
	x := grammar.Capture("x", "expr")
	tests := []struct {
		name string
		in   grammar.Matcher
		want string
	}{
		{"optional of optional", grammar.Optional(grammar.Optional(x)), `$($x:expr)?`},
		{"optional of one or more", grammar.Optional(grammar.Repetition(x, ",", 1)), `$($x:expr),*`},
		{"optional of zero or more", grammar.Optional(grammar.Repetition(x, "", 0)), `$($x:expr)*`},
		{"optional of empty", grammar.Optional(grammar.Empty()), `()`},
		{"empty repetition", grammar.Repetition(grammar.Empty(), "", 0), `()`},
		{"empty repetition with separator", grammar.Repetition(grammar.Empty(), ",", 1), `$(),+`},
		{"nested sequences", grammar.Sequence(grammar.Sequence(x, grammar.Sequence(x)), grammar.Empty()), `($x:expr $x:expr)`},
		{"nested alternations", grammar.Alternation(grammar.Alternation(grammar.Literal("a"), x), grammar.Literal("b"), x), `{a | $x:expr | b}`},
		{"empty first", grammar.Alternation(grammar.Empty(), grammar.Literal("a"), grammar.Literal("b")), `$({a | b})?`},
		{"only empties", grammar.Alternation(grammar.Empty(), grammar.Empty()), `()`},
		{"empty with repetition", grammar.Alternation(grammar.Repetition(x, ";", 1), grammar.Empty()), `$($x:expr);*`},
		{"single wrappers", grammar.Sequence(grammar.Alternation(grammar.Sequence(grammar.Literal("a")))), `a`},
		{"literals across groups", grammar.Sequence(grammar.Literal("a"), grammar.Sequence(grammar.Literal("b"), x), grammar.Literal("c")), `("a b" $x:expr c)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(grammar.Tree{Root: tt.in})
			if got.String() != tt.want {
				t.Errorf("Normalize(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, src := range corpus {
		m := mustParse(t, src)
		for _, opts := range []Options{{}, {KeepInternal: true}, {NoFold: true}} {
			once := Pipeline(m, opts)
			twice := Normalize(once)
			if diff := cmp.Diff(once.String(), twice.String()); diff != "" {
				t.Errorf("Normalize not idempotent for %q (-once +twice):\n%s", src, diff)
			}
		}
	}
}

func TestPassesPreserveLanguage(t *testing.T) {
	for _, src := range corpus {
		m := mustParse(t, src)
		want := language(Lower(m).Root)
		for _, opts := range []Options{{KeepInternal: true}, {KeepInternal: true, NoFold: true}} {
			got := language(Pipeline(m, opts).Root)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("language of %q changed with %+v (-lowered +final):\n%s", src, opts, diff)
			}
		}
	}
}

func TestRemoveInternalLanguage(t *testing.T) {
	m := mustParse(t, `macro_rules! m { (@inner $x:expr) => {}; (a $x:expr) => {}; (@other) => {}; }`)
	got := language(Pipeline(m, Options{}).Root)
	assert.Equal(t, []string{"a <x:expr>"}, got)
}

func TestPassesDoNotModifyInput(t *testing.T) {
	for _, src := range corpus {
		lowered := Lower(mustParse(t, src))
		snapshot := grammar.Tree{Name: lowered.Name, Root: lowered.Root.Clone()}

		folded := FoldCommon(RemoveInternal(lowered))
		folded2 := grammar.Tree{Name: folded.Name, Root: folded.Root.Clone()}
		Normalize(folded)

		assert.True(t, lowered.Equal(snapshot), "lowered tree changed for %q", src)
		assert.True(t, folded.Equal(folded2), "folded tree changed for %q", src)
	}
}

func TestDeterministic(t *testing.T) {
	for _, src := range corpus {
		a := Pipeline(mustParse(t, src), Options{})
		b := Pipeline(mustParse(t, src), Options{})
		assert.True(t, a.Equal(b), "pipeline output differs for %q", src)
	}
}

func TestInvalidTreePanics(t *testing.T) {
	bad := grammar.Tree{Root: grammar.Sequence(grammar.Matcher{Kind: grammar.KindOptional})}

	passes := map[string]func(grammar.Tree) grammar.Tree{
		"RemoveInternal": RemoveInternal,
		"FoldCommon":     FoldCommon,
		"Normalize":      Normalize,
	}
	for name, pass := range passes {
		t.Run(name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r)
				err, ok := r.(error)
				require.True(t, ok)
				var rmErr *rmerrors.Error
				require.True(t, errors.As(err, &rmErr))
				assert.Equal(t, rmerrors.ErrCodeInternalConsistency, rmErr.Code)
			}()
			pass(bad)
		})
	}
}

// maxReps bounds repetitions when enumerating a language.
const maxReps = 2

// language enumerates the token strings m accepts with repetitions capped
// at maxReps, sorted and without duplicates. Literal text is split on
// whitespace so merged literals compare equal to their parts.
func language(m grammar.Matcher) []string {
	set := map[string]bool{}
	for _, s := range enumerate(m) {
		set[s] = true
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func enumerate(m grammar.Matcher) []string {
	switch m.Kind {
	case grammar.KindLiteral:
		return []string{strings.Join(strings.Fields(m.Text), " ")}
	case grammar.KindCapture:
		return []string{"<" + m.Name + ":" + m.Fragment + ">"}
	case grammar.KindSequence:
		out := []string{""}
		for _, ch := range m.Children {
			out = concat(out, enumerate(ch))
		}
		return out
	case grammar.KindAlternation:
		var out []string
		for _, ch := range m.Children {
			out = append(out, enumerate(ch)...)
		}
		return out
	case grammar.KindOptional:
		return append([]string{""}, enumerate(*m.Body)...)
	case grammar.KindRepetition:
		body := enumerate(*m.Body)
		var out []string
		if m.Min == 0 {
			out = append(out, "")
		}
		acc := body
		out = append(out, acc...)
		for n := 2; n <= maxReps; n++ {
			if m.Separator != "" {
				acc = concat(acc, []string{m.Separator})
			}
			acc = concat(acc, body)
			out = append(out, acc...)
		}
		return out
	}
	panic("unknown kind")
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			switch {
			case x == "":
				out = append(out, y)
			case y == "":
				out = append(out, x)
			default:
				out = append(out, x+" "+y)
			}
		}
	}
	return out
}
