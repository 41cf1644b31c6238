// Package rustsrc finds annotated macro declarations in Rust source files
// and rewrites their documentation.
//
// [Scan] reports every `macro_rules!` item together with the outer
// attributes and doc comments written directly above it. An item is
// annotated when one of those attributes is
//
//	#[generate_railroad]
//	#[generate_railroad("label")]
//	#[macro_railroad_annotation::generate_railroad]
//
// [Rewrite] replaces the attribute block of each annotated item with the
// attributes returned by a callback. Attributes that keep their source span
// are copied verbatim; new ones are written as `#[doc = "..."]`. Everything
// outside annotated attribute blocks is left byte for byte.
package rustsrc
