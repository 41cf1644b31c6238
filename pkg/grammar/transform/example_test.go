package transform_test

import (
	"fmt"

	"github.com/matzehuels/railmacro/pkg/grammar/parser"
	"github.com/matzehuels/railmacro/pkg/grammar/transform"
)

func ExamplePipeline() {
	m, _ := parser.Parse(`macro_rules! show {
		(@fmt $x:expr) => {};
		(debug $x:expr) => {};
		(debug $x:expr, $y:expr) => {};
	}`)

	fmt.Println(transform.Lower(m))
	fmt.Println(transform.Pipeline(m, transform.Options{}))
	// Output:
	// {(@ fmt $x:expr) | (debug $x:expr) | (debug $x:expr , $y:expr)}
	// (debug $x:expr $(, $y:expr)?)
}
