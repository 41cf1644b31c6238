package railroad

import (
	"fmt"
	"strings"

	"github.com/matzehuels/railmacro/pkg/diagram"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

const (
	arcRadius   = 10.0
	vertSpace   = 8.0
	boxHeight   = 22.0
	boxPadding  = 10.0
	itemGap     = 10.0
	padding     = 10.0
	lead        = 10.0
	markerWidth = 6.0
)

// emptyLabel marks an alternation without branches, which accepts nothing.
const emptyLabel = "∅"

// element is a laid-out construct. up and down are measured from the
// track line; draw places the entry point at (x, y).
type element interface {
	width() float64
	up() float64
	down() float64
	draw(b *builder, x, y float64)
}

// builder collects the nodes and paths of a diagram.
type builder struct {
	theme styles.Theme
	nodes []diagram.Node
	paths []diagram.Path
}

func (b *builder) build(m grammar.Matcher) element {
	switch m.Kind {
	case grammar.KindLiteral:
		return b.box(m.Text, diagram.ShapeBox, styles.ClassTerminal)
	case grammar.KindCapture:
		return b.box(CaptureLabel(m), diagram.ShapeStadium, styles.ClassNonTerminal)
	case grammar.KindSequence:
		s := &sequence{}
		for _, ch := range m.Children {
			s.items = append(s.items, b.build(ch))
		}
		return s
	case grammar.KindAlternation:
		if len(m.Children) == 0 {
			return b.box(emptyLabel, diagram.ShapeBox, styles.ClassEmpty)
		}
		c := &choice{}
		for _, ch := range m.Children {
			c.branches = append(c.branches, b.build(ch))
		}
		if len(c.branches) == 1 {
			return c.branches[0]
		}
		return c
	case grammar.KindRepetition:
		l := &loop{body: b.build(*m.Body)}
		if m.Separator != "" {
			l.sep = b.box(m.Separator, diagram.ShapeBox, styles.ClassSeparator)
		}
		if m.Min == 0 {
			return &optional{body: l}
		}
		return l
	case grammar.KindOptional:
		return &optional{body: b.build(*m.Body)}
	default:
		panic(grammar.Validate(m))
	}
}

func (b *builder) box(label string, shape diagram.Shape, class string) *box {
	w := b.theme.TextWidth(label) + 2*boxPadding
	if shape == diagram.ShapeStadium {
		w += boxHeight / 2
	}
	return &box{label: label, shape: shape, class: class, w: max(w, boxHeight)}
}

func (b *builder) path(class string, segs ...string) {
	b.paths = append(b.paths, diagram.Path{D: strings.Join(segs, " "), Class: class})
}

func (b *builder) hline(x1, y, x2 float64) {
	if x2 > x1 {
		b.path(styles.ClassTrack, moveTo(x1, y), horizTo(x2))
	}
}

func (b *builder) marker(x, y float64) {
	b.path(styles.ClassMarker,
		moveTo(x, y-arcRadius), vert(2*arcRadius),
		moveTo(x+markerWidth, y-arcRadius), vert(2*arcRadius),
		moveTo(x, y), horizTo(x+markerWidth))
}

// legend stacks one entry per capture kind from (x, y) downwards and
// returns the extent it used.
func (b *builder) legend(kinds []string, x, y float64) (w, h float64) {
	for _, k := range kinds {
		e := b.box(LegendLabel(k), diagram.ShapeBox, styles.ClassLegend)
		e.draw(b, x, y+h+boxHeight/2)
		w = max(w, e.w)
		h += boxHeight + vertSpace
	}
	if h > 0 {
		h += padding - vertSpace
	}
	return w, h
}

var num = styles.Num

func moveTo(x, y float64) string { return "M" + num(x) + " " + num(y) }
func horizTo(x float64) string   { return "H" + num(x) }
func vert(dy float64) string     { return "v" + num(dy) }

// arc draws a quarter circle ending (dx, dy) away. sweep is 1 for a
// clockwise turn.
func arc(dx, dy float64, sweep int) string {
	return fmt.Sprintf("a%s %s 0 0 %d %s %s", num(arcRadius), num(arcRadius), sweep, num(dx), num(dy))
}

// box is a literal, capture or separator shape.
type box struct {
	label string
	shape diagram.Shape
	class string
	w     float64
}

func (e *box) width() float64 { return e.w }
func (e *box) up() float64    { return boxHeight / 2 }
func (e *box) down() float64  { return boxHeight / 2 }

func (e *box) draw(b *builder, x, y float64) {
	b.nodes = append(b.nodes, diagram.Node{
		Shape: e.shape,
		X:     x,
		Y:     y - boxHeight/2,
		W:     e.w,
		H:     boxHeight,
		Label: e.label,
		Class: e.class,
	})
}

// sequence places items left to right with a short track between them.
// An empty sequence has no extent.
type sequence struct {
	items []element
}

func (e *sequence) width() float64 {
	w := 0.0
	for i, it := range e.items {
		if i > 0 {
			w += itemGap
		}
		w += it.width()
	}
	return w
}

func (e *sequence) up() float64 {
	h := 0.0
	for _, it := range e.items {
		h = max(h, it.up())
	}
	return h
}

func (e *sequence) down() float64 {
	h := 0.0
	for _, it := range e.items {
		h = max(h, it.down())
	}
	return h
}

func (e *sequence) draw(b *builder, x, y float64) {
	for i, it := range e.items {
		if i > 0 {
			b.hline(x, y, x+itemGap)
			x += itemGap
		}
		it.draw(b, x, y)
		x += it.width()
	}
}

// choice keeps the first branch on the track and stacks the others below
// it in order.
type choice struct {
	branches []element
}

func (e *choice) inner() float64 {
	w := 0.0
	for _, br := range e.branches {
		w = max(w, br.width())
	}
	return w
}

func (e *choice) width() float64 { return e.inner() + 4*arcRadius }
func (e *choice) up() float64    { return e.branches[0].up() }

// offsets returns the distance of each branch track below the main track.
func (e *choice) offsets() []float64 {
	offs := make([]float64, len(e.branches))
	for i := 1; i < len(e.branches); i++ {
		gap := e.branches[i-1].down() + vertSpace + e.branches[i].up()
		offs[i] = offs[i-1] + max(gap, 2*arcRadius)
	}
	return offs
}

func (e *choice) down() float64 {
	offs := e.offsets()
	last := len(e.branches) - 1
	return offs[last] + e.branches[last].down()
}

func (e *choice) draw(b *builder, x, y float64) {
	w := e.width()
	inX := x + 2*arcRadius
	outX := x + w - 2*arcRadius

	offs := e.offsets()
	for i, br := range e.branches {
		off := offs[i]
		if i == 0 {
			b.hline(x, y, inX)
		} else {
			b.path(styles.ClassTrack, moveTo(x, y),
				arc(arcRadius, arcRadius, 1), vert(off-2*arcRadius), arc(arcRadius, arcRadius, 0))
		}
		br.draw(b, inX, y+off)
		b.hline(inX+br.width(), y+off, outX)
		if i == 0 {
			b.hline(outX, y, x+w)
		} else {
			b.path(styles.ClassTrack, moveTo(outX, y+off),
				arc(arcRadius, -arcRadius, 0), vert(-(off - 2*arcRadius)), arc(arcRadius, -arcRadius, 1))
		}
	}
}

// optional draws its body on the track with a bypass arc above it.
type optional struct {
	body element
}

func (e *optional) width() float64 { return e.body.width() + 4*arcRadius }
func (e *optional) rise() float64  { return max(e.body.up()+vertSpace, 2*arcRadius) }
func (e *optional) up() float64    { return e.rise() }
func (e *optional) down() float64  { return e.body.down() }

func (e *optional) draw(b *builder, x, y float64) {
	w := e.width()
	rise := e.rise()
	b.path(styles.ClassTrack, moveTo(x, y),
		arc(arcRadius, -arcRadius, 0), vert(-(rise - 2*arcRadius)), arc(arcRadius, -arcRadius, 1),
		horizTo(x+w-2*arcRadius),
		arc(arcRadius, arcRadius, 1), vert(rise-2*arcRadius), arc(arcRadius, arcRadius, 0))
	b.hline(x, y, x+2*arcRadius)
	e.body.draw(b, x+2*arcRadius, y)
	b.hline(x+2*arcRadius+e.body.width(), y, x+w)
}

// loop draws its body on the track and a return arc below it. The
// separator, when present, sits on the return arc.
type loop struct {
	body element
	sep  *box
}

func (e *loop) sepWidth() float64 {
	if e.sep == nil {
		return 0
	}
	return e.sep.width()
}

func (e *loop) sepUp() float64 {
	if e.sep == nil {
		return 0
	}
	return e.sep.up()
}

func (e *loop) sepDown() float64 {
	if e.sep == nil {
		return 0
	}
	return e.sep.down()
}

func (e *loop) width() float64 { return max(e.body.width(), e.sepWidth()) + 4*arcRadius }
func (e *loop) drop() float64  { return max(e.body.down()+vertSpace+e.sepUp(), 2*arcRadius) }
func (e *loop) up() float64    { return e.body.up() }
func (e *loop) down() float64  { return e.drop() + e.sepDown() }

func (e *loop) draw(b *builder, x, y float64) {
	w := e.width()
	drop := e.drop()
	inX := x + 2*arcRadius
	outX := x + w - 2*arcRadius

	b.hline(x, y, inX)
	e.body.draw(b, inX, y)
	b.hline(inX+e.body.width(), y, x+w)

	b.path(styles.ClassTrack, moveTo(outX, y),
		arc(arcRadius, arcRadius, 1), vert(drop-2*arcRadius), arc(-arcRadius, arcRadius, 1),
		horizTo(inX),
		arc(-arcRadius, -arcRadius, 1), vert(-(drop - 2*arcRadius)), arc(arcRadius, -arcRadius, 1))
	if e.sep != nil {
		e.sep.draw(b, inX+(outX-inX-e.sep.width())/2, y+drop)
	}
}
