// Package styles defines the visual theme shared by every rendered diagram.
//
// # Overview
//
// Diagrams carry no inline presentation attributes. Shapes and paths are
// tagged with a CSS class and a single stylesheet, produced by
// [Theme.CSS], is embedded in each SVG document:
//
//   - [ClassTerminal]: literal token boxes
//   - [ClassNonTerminal]: capture stadiums
//   - [ClassSeparator]: separator boxes on repetition loops
//   - [ClassTrack]: connecting lines and arcs
//
// [DefaultTheme] returns the stock look. A theme can be adjusted from the
// config file; there is no per-diagram customisation.
//
// # Text
//
// Labels are measured in terminal display cells via go-runewidth so that
// wide characters get wide boxes. [Theme.TextWidth] converts cells into
// user units for the configured font.
package styles
