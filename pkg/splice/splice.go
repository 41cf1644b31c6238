package splice

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/railmacro/pkg/payload"
)

// AttrStyle distinguishes `#[...]` from `#![...]`.
type AttrStyle uint8

const (
	Outer AttrStyle = iota
	Inner
)

// Span is a byte range in the source. End is exclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Attr is one attribute of a declaration. Doc attributes carry their
// string value in Text; other attributes carry their source text.
type Attr struct {
	Style AttrStyle `json:"style"`
	Doc   bool      `json:"doc"`
	Text  string    `json:"text"`
	Span  *Span     `json:"span,omitempty"`
}

// DocAttr returns an outer doc attribute without a source span.
func DocAttr(text string) Attr {
	return Attr{Style: Outer, Doc: true, Text: text}
}

// Declaration is the attribute list of an annotated macro.
type Declaration struct {
	// Name is the macro name; empty when unknown.
	Name  string `json:"name,omitempty"`
	Attrs []Attr `json:"attrs"`

	// AnnotationIndex is the position in Attrs at which the annotation
	// was written.
	AnnotationIndex int `json:"annotation_index"`

	// InvocationEnd is the byte offset just past the annotation, or -1
	// when unknown.
	InvocationEnd int `json:"invocation_end"`
}

// Options configures Splice.
type Options struct {
	// Label names the diagram. When empty a label is generated and a
	// placeholder image reference is inserted.
	Label string
	// Labels generates fallback labels. Defaults to RandomLabels.
	Labels LabelGenerator
}

// Splice returns decl with the diagram label definition and, when no
// label was given, a placeholder image reference added. It also returns
// the label used. decl is not modified.
func Splice(decl Declaration, p payload.Payload, opts Options) (Declaration, string) {
	label := opts.Label
	explicit := label != ""
	if !explicit {
		gen := opts.Labels
		if gen == nil {
			gen = RandomLabels{}
		}
		label = gen.NewLabel()
	}

	at := PlaceholderIndex(decl)
	attrs := slices.Clone(decl.Attrs)
	attrs = slices.Insert(attrs, DefinitionIndex(attrs), DocAttr(Definition(label, p)))
	if !explicit {
		attrs = slices.Insert(attrs, min(at, len(attrs)), DocAttr(Placeholder(decl.Name, label)))
	}

	out := decl
	out.Attrs = attrs
	return out, label
}

// Definition returns the doc text defining label as the payload's data URI.
func Definition(label string, p payload.Payload) string {
	return fmt.Sprintf("\n \n  [%s]: %s", label, p.DataURI())
}

// Placeholder returns the doc text of the image reference shown until the
// diagram loads. Its alt text names the macro.
func Placeholder(name, label string) string {
	alt := "below"
	bar := strings.Repeat("=", 46+len(alt))
	if name != "" {
		alt = "[`" + name + "`]"
		bar = strings.Repeat("=", 46+len(alt)-4)
	}
	return fmt.Sprintf(" ![%s\n_Here would be a railroad diagram of the macro %s_\n%s][%s]\n\n", bar, alt, bar, label)
}

// DefinitionIndex returns the index just after the last outer doc
// attribute, or len(attrs) when there is none.
func DefinitionIndex(attrs []Attr) int {
	for i := len(attrs) - 1; i >= 0; i-- {
		if attrs[i].Style == Outer && attrs[i].Doc {
			return i + 1
		}
	}
	return len(attrs)
}

// PlaceholderIndex returns where the placeholder goes in decl.Attrs.
func PlaceholderIndex(decl Declaration) int {
	if !spansKnown(decl) {
		return min(max(decl.AnnotationIndex, 0), len(decl.Attrs))
	}
	for i, a := range decl.Attrs {
		if a.Span.Start >= decl.InvocationEnd {
			return i
		}
	}
	return len(decl.Attrs)
}

func spansKnown(decl Declaration) bool {
	if decl.InvocationEnd < 0 {
		return false
	}
	for _, a := range decl.Attrs {
		if a.Span == nil {
			return false
		}
	}
	return true
}
