package treeview

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/render/railroad"
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds the kind name to every node label and numbers edges.
	Detailed bool
	// Theme supplies the fill colours. Zero fields use the default theme.
	Theme styles.Theme
}

// ToDOT converts a diagram tree to Graphviz DOT. Nodes are named n0, n1, ...
// in pre-order.
func ToDOT(t grammar.Tree, opts Options) string {
	theme := opts.Theme.Merge(styles.DefaultTheme())

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [fontname=%q, fontsize=12];\n", theme.FontFamily)
	buf.WriteString("  ordering=out;\n")
	if t.Name != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", t.Name+"!")
	}
	buf.WriteString("\n")

	w := &dotWriter{buf: &buf, opts: opts, theme: theme}
	w.node(t.Root)

	buf.WriteString("}\n")
	return buf.String()
}

type dotWriter struct {
	buf   *bytes.Buffer
	opts  Options
	theme styles.Theme
	next  int
}

func (w *dotWriter) node(m grammar.Matcher) string {
	id := "n" + strconv.Itoa(w.next)
	w.next++

	label := nodeLabel(m)
	if w.opts.Detailed {
		label = m.Kind.String() + "\n" + label
	}
	fmt.Fprintf(w.buf, "  %s [%s];\n", id, strings.Join(w.attrs(m, label), ", "))

	var children []grammar.Matcher
	switch m.Kind {
	case grammar.KindSequence, grammar.KindAlternation:
		children = m.Children
	case grammar.KindRepetition, grammar.KindOptional:
		children = []grammar.Matcher{*m.Body}
	}
	for i, c := range children {
		child := w.node(c)
		if w.opts.Detailed && len(children) > 1 {
			fmt.Fprintf(w.buf, "  %s -> %s [label=\"%d\"];\n", id, child, i)
		} else {
			fmt.Fprintf(w.buf, "  %s -> %s;\n", id, child)
		}
	}
	return id
}

func (w *dotWriter) attrs(m grammar.Matcher, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch m.Kind {
	case grammar.KindLiteral:
		attrs = append(attrs, "shape=box", "style=filled", fmt.Sprintf("fillcolor=%q", w.theme.TerminalFill))
	case grammar.KindCapture:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", fmt.Sprintf("fillcolor=%q", w.theme.CaptureFill))
	default:
		attrs = append(attrs, "shape=ellipse", "fontsize=10")
	}
	return attrs
}

func nodeLabel(m grammar.Matcher) string {
	switch m.Kind {
	case grammar.KindLiteral:
		return m.Text
	case grammar.KindCapture:
		return railroad.CaptureLabel(m)
	case grammar.KindSequence:
		if len(m.Children) == 0 {
			return "ε"
		}
		return "seq"
	case grammar.KindAlternation:
		if len(m.Children) == 0 {
			return "∅"
		}
		return "|"
	case grammar.KindRepetition:
		op := "*"
		if m.Min > 0 {
			op = "+"
		}
		return m.Separator + op
	case grammar.KindOptional:
		return "?"
	}
	return m.Kind.String()
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one
// whose viewBox starts at the origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`,
		styles.Num(w), styles.Num(h), w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
