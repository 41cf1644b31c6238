// Package transform lowers a parsed macro into a diagram tree and reshapes
// that tree for display.
//
// # Overview
//
// Macro patterns arrive as a flat list of alternatives. Drawn naively, every
// alternative becomes its own track and shared tokens are repeated on each
// one. This package provides the passes that turn the rule list into a
// compact, canonical tree:
//
//   - [Lower] builds the root alternation, one branch per rule
//   - [RemoveInternal] hides helper rules such as `(@step ...)`
//   - [FoldCommon] factors out runs shared by sibling branches
//   - [Normalize] collapses redundant structure to a fixed point
//
// [Pipeline] applies them in that order. Each pass takes a tree and returns
// a new one; inputs are never modified, so passes can be tested in
// isolation against fixed input/output pairs.
//
// # Internal Rules
//
// Rule-based macros conventionally route recursive helpers through patterns
// that start with `@name`. Those alternatives are implementation detail and
// [RemoveInternal] drops every root branch whose first token starts with
// [InternalSentinel].
//
// # Folding
//
// [FoldCommon] looks for the longest run of matchers that two or more
// branches of an alternation share at their head or tail:
//
//	Before: {(a $x:expr) | (a $y:expr)}
//	After:  (a {($x:expr) | ($y:expr)})
//
// The longest run wins. Ties go to the run anchored at the earliest branch,
// then to heads over tails. The merged branch takes the position of its
// first member, so declaration order is kept.
//
// # Normalization
//
// [Normalize] flattens nested sequences and alternations, merges adjacent
// literals, drops duplicate branches, removes single-item wrappers and
// rewrites empty branches as optionals. It iterates until nothing changes,
// bounded by the depth of the tree, and is idempotent.
//
// None of the passes change the language accepted by the tree, apart from
// the alternatives removed by [RemoveInternal].
package transform
