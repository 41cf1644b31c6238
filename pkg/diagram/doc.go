// Package diagram holds the vector document produced by the railroad
// renderer.
//
// A [Diagram] is a flat list of labelled [Node] shapes and connecting
// [Path] strokes inside a canvas sized to its content. It knows nothing
// about grammars; [Diagram.WriteSVG] serialises it to a standalone SVG
// document carrying the theme stylesheet.
//
// Serialisation is deterministic: elements are written in slice order and
// coordinates are formatted with [styles.Num], so equal diagrams produce
// byte-identical SVG.
package diagram
