package splice

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/payload"
)

const testPayload = payload.Payload("PHN2Zy8+")

func docTexts(attrs []Attr) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Text
	}
	return out
}

func TestSpliceGeneratedLabel(t *testing.T) {
	decl := Declaration{
		Name:            "add",
		Attrs:           []Attr{DocAttr(" Adds numbers."), DocAttr(" More docs.")},
		AnnotationIndex: 1,
		InvocationEnd:   -1,
	}

	got, label := Splice(decl, testPayload, Options{Labels: &FixedLabels{}})

	assert.Equal(t, "label1", label)
	assert.Equal(t, []string{
		" Adds numbers.",
		Placeholder("add", "label1"),
		" More docs.",
		"\n \n  [label1]: data:image/svg+xml;base64,PHN2Zy8+",
	}, docTexts(got.Attrs))
	assert.Len(t, decl.Attrs, 2, "input must not change")
}

func TestSpliceExplicitLabel(t *testing.T) {
	decl := Declaration{
		Name:          "add",
		Attrs:         []Attr{DocAttr(" Adds numbers."), DocAttr(" More docs.")},
		InvocationEnd: -1,
	}

	labels := &FixedLabels{}
	got, label := Splice(decl, testPayload, Options{Label: "foo", Labels: labels})

	assert.Equal(t, "foo", label)
	assert.Equal(t, "label1", labels.NewLabel(), "generator must not be used with an explicit label")
	assert.Equal(t, []string{
		" Adds numbers.",
		" More docs.",
		"\n \n  [foo]: data:image/svg+xml;base64,PHN2Zy8+",
	}, docTexts(got.Attrs))
	for _, a := range got.Attrs {
		assert.NotContains(t, a.Text, "Here would be")
	}
}

func TestSplicePositions(t *testing.T) {
	doc := func(text string, start, end int) Attr {
		return Attr{Style: Outer, Doc: true, Text: text, Span: &Span{start, end}}
	}
	export := Attr{Style: Outer, Text: "#[macro_export]", Span: &Span{41, 56}}

	tests := []struct {
		name string
		decl Declaration
		want []string
	}{
		{
			name: "span inside docs",
			decl: Declaration{
				Attrs:           []Attr{doc("d0", 0, 10), doc("d1", 30, 40), export},
				AnnotationIndex: 0,
				InvocationEnd:   25,
			},
			want: []string{"d0", "PH", "d1", "DEF", "#[macro_export]"},
		},
		{
			name: "span after all attributes",
			decl: Declaration{
				Attrs:         []Attr{doc("d0", 0, 10), doc("d1", 30, 40), export},
				InvocationEnd: 100,
			},
			want: []string{"d0", "d1", "DEF", "PH", "#[macro_export]"},
		},
		{
			name: "span before all attributes",
			decl: Declaration{
				Attrs:         []Attr{doc("d0", 10, 20), doc("d1", 30, 40)},
				InvocationEnd: 5,
			},
			want: []string{"PH", "d0", "d1", "DEF"},
		},
		{
			name: "missing span falls back to index",
			decl: Declaration{
				Attrs:           []Attr{doc("d0", 0, 10), DocAttr("d1")},
				AnnotationIndex: 2,
				InvocationEnd:   5,
			},
			want: []string{"d0", "d1", "PH", "DEF"},
		},
		{
			name: "unknown invocation end falls back to index",
			decl: Declaration{
				Attrs:           []Attr{doc("d0", 0, 10), doc("d1", 30, 40)},
				AnnotationIndex: 0,
				InvocationEnd:   -1,
			},
			want: []string{"PH", "d0", "d1", "DEF"},
		},
		{
			name: "no doc attributes",
			decl: Declaration{
				Attrs:         []Attr{{Style: Outer, Text: "#[macro_export]"}},
				InvocationEnd: -1,
			},
			want: []string{"PH", "#[macro_export]", "DEF"},
		},
		{
			name: "inner docs do not count",
			decl: Declaration{
				Attrs:           []Attr{{Style: Inner, Doc: true, Text: "inner"}},
				AnnotationIndex: 1,
				InvocationEnd:   -1,
			},
			want: []string{"inner", "PH", "DEF"},
		},
		{
			name: "no attributes",
			decl: Declaration{InvocationEnd: -1},
			want: []string{"PH", "DEF"},
		},
		{
			name: "index out of range is clamped",
			decl: Declaration{Attrs: []Attr{DocAttr("d0")}, AnnotationIndex: 9, InvocationEnd: -1},
			want: []string{"d0", "PH", "DEF"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, label := Splice(tt.decl, testPayload, Options{Labels: &FixedLabels{Prefix: "L"}})
			require.Equal(t, "L1", label)

			texts := docTexts(got.Attrs)
			for i, s := range texts {
				switch s {
				case Definition(label, testPayload):
					texts[i] = "DEF"
				case Placeholder("", label):
					texts[i] = "PH"
				}
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestPlaceholder(t *testing.T) {
	named := Placeholder("add", "abc")
	bar := strings.Repeat("=", 49)
	assert.Equal(t, " !["+bar+"\n_Here would be a railroad diagram of the macro [`add`]_\n"+bar+"][abc]\n\n", named)

	unnamed := Placeholder("", "abc")
	bar = strings.Repeat("=", 51)
	assert.Equal(t, " !["+bar+"\n_Here would be a railroad diagram of the macro below_\n"+bar+"][abc]\n\n", unnamed)
}

func TestRandomLabels(t *testing.T) {
	var gen RandomLabels
	seen := map[string]bool{}
	used := map[rune]bool{}
	for range 500 {
		l := gen.NewLabel()
		require.Len(t, l, LabelLength)
		for _, r := range l {
			assert.True(t, strings.ContainsRune(labelAlphabet, r), "label %q", l)
			used[r] = true
		}
		require.NoError(t, rmerrors.ValidateLabel(l))
		seen[l] = true
	}
	assert.Len(t, seen, 500)

	// 8000 draws leave no letter of a 62-character alphabet unused.
	assert.Len(t, used, len(labelAlphabet))
	for _, r := range "AZaz09" {
		assert.True(t, used[r], "%q never drawn", r)
	}
}

func TestFixedLabelsConcurrent(t *testing.T) {
	gen := &FixedLabels{}
	var wg sync.WaitGroup
	var mu sync.Mutex
	got := map[string]bool{}
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := gen.NewLabel()
			mu.Lock()
			got[l] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, got, 20)
	assert.True(t, got["label20"])
}

func TestParseLabelArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"   ", "", false},
		{`"foo"`, "foo", false},
		{` "my label" `, "my label", false},
		{`r"raw"`, "raw", false},
		{`foo`, "", true},
		{`"a", "b"`, "", true},
		{`""`, "", true},
		{`"a]b"`, "", true},
		{`42`, "", true},
		{`"unterminated`, "", true},
	}
	for _, tt := range tests {
		got, err := ParseLabelArg(tt.arg)
		if tt.wantErr {
			if assert.Error(t, err, tt.arg) {
				assert.Equal(t, rmerrors.ErrCodeInvalidLabel, rmerrors.GetCode(err), tt.arg)
			}
			continue
		}
		require.NoError(t, err, tt.arg)
		assert.Equal(t, tt.want, got, tt.arg)
	}
}
