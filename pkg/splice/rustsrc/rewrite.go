package rustsrc

import (
	"errors"
	"strings"

	"github.com/matzehuels/railmacro/pkg/grammar/parser"
	"github.com/matzehuels/railmacro/pkg/splice"
)

// RewriteFunc returns the new declaration for an annotated item.
type RewriteFunc func(Item) (splice.Declaration, error)

// Rewrite scans src and replaces the attribute block of every annotated
// item with the attributes fn returns. An item whose fn call fails keeps
// its original text; the other items are still rewritten. The returned
// error joins every failure.
func Rewrite(src string, fn RewriteFunc) (string, error) {
	items, err := Scan(src)
	if err != nil {
		return "", err
	}

	var (
		b    strings.Builder
		errs []error
	)
	prev := 0
	for _, it := range items {
		if !it.Annotated {
			continue
		}
		decl, err := fn(it)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.WriteString(src[prev:it.Start])
		b.WriteString(FormatAttrs(src, decl.Attrs, indentAt(src, it.Start)))
		prev = it.AttrsEnd
	}
	b.WriteString(src[prev:])
	return b.String(), errors.Join(errs...)
}

// FormatAttrs writes attrs one per line, each followed by a newline and
// indent. Attributes with a span are copied from src.
func FormatAttrs(src string, attrs []splice.Attr, indent string) string {
	var b strings.Builder
	for _, a := range attrs {
		b.WriteString(FormatAttr(src, a))
		b.WriteString("\n")
		b.WriteString(indent)
	}
	return b.String()
}

// FormatAttr returns the source form of a.
func FormatAttr(src string, a splice.Attr) string {
	if a.Span != nil {
		return src[a.Span.Start:a.Span.End]
	}
	bang := ""
	if a.Style == splice.Inner {
		bang = "!"
	}
	if a.Doc {
		return "#" + bang + "[doc = " + parser.QuoteString(a.Text) + "]"
	}
	return a.Text
}

// indentAt returns the whitespace between the start of the line holding
// offset and offset, or "" when other text precedes it.
func indentAt(src string, offset int) string {
	lineStart := strings.LastIndexByte(src[:offset], '\n') + 1
	indent := src[lineStart:offset]
	if strings.TrimLeft(indent, " \t") != "" {
		return ""
	}
	return indent
}
