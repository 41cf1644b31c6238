// Package parser turns the text of a `macro_rules!` declaration into a
// [grammar.Macro].
//
// Two input shapes are accepted:
//
//	#[macro_export]
//	macro_rules! vec_of {
//	    () => { Vec::new() };
//	    ($($x:expr),+ $(,)?) => { vec![$($x),+] };
//	}
//
// and a bare clause list, as found inside the braces above.
//
// Only the pattern side of each clause is kept. Within a pattern the parser
// recognises bare tokens, `$name:kind` captures, `$( ... ) sep op`
// repetitions (op is `*`, `+` or `?`), `$crate`, and delimited groups, whose
// delimiters become literal tokens around their contents.
//
// Failures are GRAMMAR_SYNTAX errors from [errors.Syntax] carrying the byte
// offset of the offending token and a description of what was expected.
package parser
