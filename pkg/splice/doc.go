// Package splice inserts an encoded diagram into the documentation
// attributes of a macro declaration.
//
// # Output
//
// [Splice] always adds one label definition doc line:
//
//	[label]: data:image/svg+xml;base64,...
//
// placed right after the last outer doc attribute, or at the end of the
// attribute list when there is none. When the caller supplies no label a
// random one is drawn from a [LabelGenerator] and a placeholder image
// reference using that label is inserted where the annotation was written,
// so the diagram shows up at that point in the rendered docs.
//
// # Insertion Position
//
// Two policies locate the annotation among the doc attributes:
//
//   - Span based: when the end offset of the annotation and the spans of
//     all attributes are known, the placeholder goes before the first
//     attribute starting at or after the annotation.
//   - Index based: otherwise the annotation index recorded in the
//     [Declaration] is used as is.
//
// The placeholder index is chosen against the attribute list as it was
// before the label definition was added.
package splice
