// Package pkg provides the libraries behind railmacro, which draws railroad
// diagrams of macro_rules! declarations and embeds them in the macro's docs.
//
// # Overview
//
// A declaration flows through four stages:
//
//	macro_rules! source
//	         ↓
//	    [grammar/parser] (tokens → rules of matchers)
//	         ↓
//	    [grammar/transform] (one alternation → drop @-rules → fold → normalize)
//	         ↓
//	    [render/railroad] (matcher tree → [diagram] → SVG)
//	         ↓
//	    [payload] (base64 data URI) → [splice] (doc attributes)
//
// # Quick Start
//
//	m, _ := parser.Parse(`macro_rules! vec { () => {}; ($($x:expr),*) => {}; }`)
//	t := transform.Pipeline(m, transform.Options{})
//	d := railroad.Render(t)
//	p := payload.FromDiagram(d)
//	decl, label := splice.Splice(splice.Declaration{Name: m.Name, InvocationEnd: -1}, p, splice.Options{})
//
// [pipeline] wraps these steps with validation, caching and hooks and is
// what the CLI uses.
//
// # Main Packages
//
// [grammar] - Matcher trees: literals, captures, sequences, alternations,
// repetitions and optionals. [grammar/parser] tokenizes macro source and
// [grammar/transform] holds the lowering passes.
//
// [render/railroad] - Lays a matcher tree out as a railroad track.
// [render/styles] holds the theme and text metrics, [diagram] the primitive
// SVG model. [render/treeview] draws the tree itself through Graphviz for
// debugging the lowering passes.
//
// [payload] and [splice] - Encode the SVG and merge the reference-style
// image into doc attributes. [splice/rustsrc] finds annotated items in Rust
// files and rewrites them.
//
// [cache] - File and Redis backed caches keyed by source hash and options.
//
// [config] - railmacro.toml project settings.
//
// [observability] - Pipeline and cache hooks.
//
// [grammar]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/grammar
// [grammar/parser]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/grammar/parser
// [grammar/transform]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/grammar/transform
// [render/railroad]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/render/railroad
// [render/styles]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/render/styles
// [render/treeview]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/render/treeview
// [diagram]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/diagram
// [payload]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/payload
// [splice]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/splice
// [splice/rustsrc]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/splice/rustsrc
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/railmacro/pkg/observability
package pkg
