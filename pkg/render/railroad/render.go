package railroad

import (
	"github.com/matzehuels/railmacro/pkg/diagram"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

// Option configures Render.
type Option func(*renderer)

type renderer struct {
	theme    styles.Theme
	title    string
	hasTitle bool
	legend   bool
}

// WithTheme sets the theme. Zero fields fall back to the default theme.
func WithTheme(t styles.Theme) Option {
	return func(r *renderer) { r.theme = t.Merge(styles.DefaultTheme()) }
}

// WithTitle sets the caption drawn above the diagram. The tree name is
// used when no title is given; an empty title disables the caption.
func WithTitle(title string) Option {
	return func(r *renderer) { r.title, r.hasTitle = title, true }
}

// WithLegend controls the legend below the track that explains each
// capture kind the diagram uses. It is on by default.
func WithLegend(on bool) Option {
	return func(r *renderer) { r.legend = on }
}

// Render lays out t and returns the resulting diagram.
func Render(t grammar.Tree, opts ...Option) *diagram.Diagram {
	grammar.MustValidate(t.Root)

	r := renderer{theme: styles.DefaultTheme(), legend: true}
	for _, opt := range opts {
		opt(&r)
	}
	if !r.hasTitle {
		r.title = t.Name
	}

	b := &builder{theme: r.theme}
	root := b.build(t.Root)

	top := diagram.TitleHeight(r.title) + padding
	y := top + root.up()
	x := padding

	b.marker(x, y)
	x += markerWidth
	b.hline(x, y, x+lead)
	x += lead
	root.draw(b, x, y)
	x += root.width()
	b.hline(x, y, x+lead)
	x += lead
	b.marker(x, y)
	x += markerWidth

	width := x + padding
	height := y + root.down() + padding
	if r.legend {
		lw, lh := b.legend(grammar.Fragments(t.Root), padding, height)
		width = max(width, padding+lw+padding)
		height += lh
	}

	return &diagram.Diagram{
		Width:  width,
		Height: height,
		Title:  r.title,
		Nodes:  b.nodes,
		Paths:  b.paths,
		Theme:  r.theme,
	}
}

// LegendLabel is the text of the legend entry for a capture kind.
func LegendLabel(kind string) string {
	if desc := grammar.FragmentDescription(kind); desc != "" {
		return kind + ": " + desc
	}
	return kind
}

// CaptureLabel is the text shown in a capture stadium.
func CaptureLabel(m grammar.Matcher) string {
	return m.Name + ":" + m.Fragment
}
