// Package railroad lays out a diagram tree as a railroad diagram.
//
// # Overview
//
// [Render] maps each matcher kind onto a fixed visual construct:
//
//	literal      box with the token text
//	capture      stadium labelled name:kind
//	sequence     items left to right on one track
//	alternation  branches stacked top to bottom in declaration order
//	repetition   loop-back arc below the body, separator on the loop
//	optional     bypass arc above the body
//
// The tree is read and never modified. Layout is a pure function of the
// tree and the theme: there are no maps, no randomness, and coordinates
// are formatted with a fixed precision, so rendering the same tree twice
// yields byte-identical SVG.
//
// # Geometry
//
// Every construct has a width and extends up and down from the track line
// it sits on. Entry is at the left end of the track and exit at the right
// end, so constructs compose by placing them side by side. Branch and loop
// arcs all use the same radius.
package railroad
