// Package treeview renders diagram trees as node-link graphs for debugging
// the lowering passes.
//
// Each matcher becomes one Graphviz node: literals as boxes, captures as
// rounded boxes, and the structural kinds (sequence, alternation,
// repetition, optional) as small ellipses labelled with their operator.
// Children are drawn left to right in order.
//
//	dot := treeview.ToDOT(tree, treeview.Options{})
//	svg, err := treeview.RenderSVG(ctx, dot)
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; the DOT text can also be fed to an external `dot`.
package treeview
