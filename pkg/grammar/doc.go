// Package grammar defines the matcher tree that describes the accepted input
// of a rule-based macro.
//
// # Matchers
//
// A [Matcher] is a closed sum type tagged by [Kind]:
//
//   - [KindLiteral]: a fixed token such as `fn` or `=>`
//   - [KindCapture]: a `$name:kind` placeholder for a syntax fragment
//   - [KindSequence]: ordered composition (zero children is the empty match)
//   - [KindAlternation]: a choice between branches
//   - [KindRepetition]: `$( ... ) sep op` with a minimum of zero or one
//   - [KindOptional]: zero or one occurrence
//
// Only the fields relevant to a kind are set. Every function in this module
// switches exhaustively over the kinds and treats an unknown kind as an
// internal-consistency defect.
//
// Matchers are values: transformations build new trees and never write
// through a shared Body pointer or Children slice.
//
// # Rules, Macros and Trees
//
// The parser produces a [Macro] holding one [Rule] per clause. Lowering turns
// that into a [Tree] whose root is an alternation over the rules, which the
// lowering passes then rewrite.
package grammar
