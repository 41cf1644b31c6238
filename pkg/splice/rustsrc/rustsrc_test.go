package rustsrc

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/railmacro/pkg/grammar/parser"
	"github.com/matzehuels/railmacro/pkg/payload"
	"github.com/matzehuels/railmacro/pkg/splice"
)

const source = `//! Crate docs.

/// Adds things.
#[macro_railroad_annotation::generate_railroad]
/// More about adding.
#[macro_export]
macro_rules! add {
    ($a:expr) => { $a };
    ($a:expr, $($rest:expr),+) => { $a + add!($($rest),+) };
}

/// Not annotated.
macro_rules! plain {
    () => {};
}

mod inner {
    #[generate_railroad("inner_diagram")]
    macro_rules! nested { (x) => { macro_rules! deeper { () => {} } } }
}
`

func TestScan(t *testing.T) {
	items, err := Scan(source)
	require.NoError(t, err)
	require.Len(t, items, 3)

	add := items[0]
	assert.Equal(t, "add", add.Name)
	assert.True(t, add.Annotated)
	assert.Empty(t, add.LabelArg)
	assert.Equal(t, 1, add.AnnotationIndex)
	assert.Equal(t, 7, add.Line(source))
	assert.True(t, strings.HasPrefix(source[add.Start:], "/// Adds things."))
	assert.True(t, strings.HasPrefix(add.Source, "macro_rules! add {"))
	assert.True(t, strings.HasSuffix(add.Source, "}"))
	require.Len(t, add.Attrs, 3)
	assert.Equal(t, splice.Attr{Style: splice.Outer, Doc: true, Text: " Adds things.", Span: add.Attrs[0].Span}, add.Attrs[0])
	assert.Equal(t, " More about adding.", add.Attrs[1].Text)
	assert.Equal(t, "#[macro_export]", add.Attrs[2].Text)
	assert.False(t, add.Attrs[2].Doc)
	assert.Equal(t, "#[macro_railroad_annotation::generate_railroad]", source[add.Attrs[0].Span.End+1:add.AnnotationEnd])

	plain := items[1]
	assert.Equal(t, "plain", plain.Name)
	assert.False(t, plain.Annotated)
	assert.Equal(t, -1, plain.Declaration().InvocationEnd)

	nested := items[2]
	assert.Equal(t, "nested", nested.Name)
	assert.True(t, nested.Annotated)
	assert.Equal(t, `"inner_diagram"`, nested.LabelArg)
	assert.Empty(t, nested.Attrs)
}

func TestScanDocAttribute(t *testing.T) {
	src := "#[doc = \"Escaped \\\"doc\\\"\"]\n#[cfg(test)]\n#[generate_railroad]\nmacro_rules! m [ (a) => {} ];\n"
	items, err := Scan(src)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	require.Len(t, it.Attrs, 2)
	assert.Equal(t, `Escaped "doc"`, it.Attrs[0].Text)
	assert.True(t, it.Attrs[0].Doc)
	assert.Equal(t, "#[cfg(test)]", it.Attrs[1].Text)
	assert.Equal(t, 2, it.AnnotationIndex)
	assert.True(t, strings.HasSuffix(it.Source, "];"))
}

func TestScanIgnoresOtherAttributes(t *testing.T) {
	for _, src := range []string{
		"#[other::generate_railroad]\nmacro_rules! m { () => {} }",
		"#[generate_railroad = \"x\"]\nmacro_rules! m { () => {} }",
		"#[not_generate_railroad]\nmacro_rules! m { () => {} }",
	} {
		items, err := Scan(src)
		require.NoError(t, err)
		require.Len(t, items, 1, src)
		assert.False(t, items[0].Annotated, src)
		assert.Len(t, items[0].Attrs, 1, src)
	}
}

func TestScanError(t *testing.T) {
	_, err := Scan("macro_rules! m { \"open }")
	assert.Error(t, err)
}

func splicer(labels splice.LabelGenerator) RewriteFunc {
	return func(it Item) (splice.Declaration, error) {
		label, err := splice.ParseLabelArg(it.LabelArg)
		if err != nil {
			return splice.Declaration{}, err
		}
		decl, _ := splice.Splice(it.Declaration(), payload.Payload("PHN2Zy8+"), splice.Options{Label: label, Labels: labels})
		return decl, nil
	}
}

func TestRewrite(t *testing.T) {
	out, err := Rewrite(source, splicer(&splice.FixedLabels{}))
	require.NoError(t, err)

	placeholder := "#[doc = " + parser.QuoteString(splice.Placeholder("add", "label1")) + "]"
	definition := `#[doc = "\n \n  [label1]: data:image/svg+xml;base64,PHN2Zy8+"]`
	wantAdd := "/// Adds things.\n" +
		placeholder + "\n" +
		"/// More about adding.\n" +
		definition + "\n" +
		"#[macro_export]\n" +
		"macro_rules! add {"
	assert.Contains(t, out, wantAdd)

	wantNested := "mod inner {\n" +
		`    #[doc = "\n \n  [inner_diagram]: data:image/svg+xml;base64,PHN2Zy8+"]` + "\n" +
		"    macro_rules! nested {"
	assert.Contains(t, out, wantNested)

	plain := "/// Not annotated.\nmacro_rules! plain {\n    () => {};\n}\n"
	assert.Contains(t, out, plain)
	assert.True(t, strings.HasPrefix(out, "//! Crate docs.\n\n"))
	assert.NotContains(t, out, "generate_railroad")

	// The rewritten file scans cleanly and is no longer annotated.
	items, err := Scan(out)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for _, it := range items {
		assert.False(t, it.Annotated, it.Name)
	}
	assert.Equal(t, splice.Placeholder("add", "label1"), items[0].Attrs[1].Text)
}

func TestRewriteUntouched(t *testing.T) {
	src := "/// Docs.\nmacro_rules! m { () => {} }\nfn main() {}\n"
	out, err := Rewrite(src, func(Item) (splice.Declaration, error) {
		t.Fatal("no annotated items")
		return splice.Declaration{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, src, out)
}

func TestRewriteError(t *testing.T) {
	boom := errors.New("boom")
	out, err := Rewrite(source, func(Item) (splice.Declaration, error) { return splice.Declaration{}, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, source, out)
}

func TestRewriteIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	ok := splicer(&splice.FixedLabels{})
	out, err := Rewrite(source, func(it Item) (splice.Declaration, error) {
		if it.Name == "add" {
			return splice.Declaration{}, boom
		}
		return ok(it)
	})
	assert.ErrorIs(t, err, boom)

	addStart := strings.Index(source, "/// Adds things.")
	addEnd := strings.Index(source, "macro_rules! add")
	assert.Contains(t, out, source[addStart:addEnd], "failed item keeps its attributes")
	assert.Contains(t, out, "[inner_diagram]: data:image/svg+xml;base64,PHN2Zy8+")
	assert.NotContains(t, out, `generate_railroad("inner_diagram")`)

	t.Run("every failure is reported", func(t *testing.T) {
		first, second := errors.New("first"), errors.New("second")
		_, err := Rewrite(source, func(it Item) (splice.Declaration, error) {
			if it.Name == "add" {
				return splice.Declaration{}, first
			}
			return splice.Declaration{}, second
		})
		assert.ErrorIs(t, err, first)
		assert.ErrorIs(t, err, second)
	})
}

func TestFormatAttr(t *testing.T) {
	tests := []struct {
		attr splice.Attr
		want string
	}{
		{splice.DocAttr("x \"y\""), `#[doc = "x \"y\""]`},
		{splice.Attr{Style: splice.Inner, Doc: true, Text: "crate"}, `#![doc = "crate"]`},
		{splice.Attr{Style: splice.Outer, Text: "#[inline]"}, "#[inline]"},
		{splice.Attr{Text: "ignored", Span: &splice.Span{Start: 0, End: 3}}, "abc"},
	}
	for _, tt := range tests {
		if got := FormatAttr("abcdef", tt.attr); got != tt.want {
			t.Errorf("FormatAttr(%+v) = %q, want %q", tt.attr, got, tt.want)
		}
	}
}
