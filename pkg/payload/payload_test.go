package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/render/railroad"
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want Payload
	}{
		{"", ""},
		{"<svg/>", "PHN2Zy8+"},
		{"ab", "YWI="},
		{"a", "YQ=="},
	}
	for _, tt := range tests {
		if got := Encode(tt.in); got != tt.want {
			t.Errorf("Encode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDataURI(t *testing.T) {
	assert.Equal(t, "data:image/svg+xml;base64,PHN2Zy8+", Encode("<svg/>").DataURI())
}

func TestRoundTrip(t *testing.T) {
	tree := grammar.Tree{Name: "m", Root: grammar.Alternation(
		grammar.Literal("a"),
		grammar.Sequence(grammar.Literal("ü"), grammar.Capture("x", "expr")),
	)}
	d := railroad.Render(tree)

	p := FromDiagram(d)
	svg, err := Decode(p)
	require.NoError(t, err)
	assert.Equal(t, d.String(), svg)
	assert.Equal(t, Encode(svg), p)

	// A two-branch choice decodes to a document naming both literals.
	two := railroad.Render(grammar.Tree{Root: grammar.Alternation(grammar.Literal("a"), grammar.Literal("b"))})
	svg, err = Decode(FromDiagram(two))
	require.NoError(t, err)
	assert.Contains(t, svg, ">a</text>")
	assert.Contains(t, svg, ">b</text>")
	assert.Equal(t, 2, two.Count(styles.ClassTerminal))
}

func TestDeterministic(t *testing.T) {
	tree := grammar.Tree{Root: grammar.Repetition(grammar.Capture("x", "tt"), ",", 0)}
	assert.Equal(t, FromDiagram(railroad.Render(tree)), FromDiagram(railroad.Render(tree)))
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode("not base64!")
	require.Error(t, err)
	assert.Equal(t, rmerrors.ErrCodeInvalidFormat, rmerrors.GetCode(err))
}
