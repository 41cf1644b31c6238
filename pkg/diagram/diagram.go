package diagram

import (
	"github.com/matzehuels/railmacro/pkg/render/styles"
)

// Shape selects how a node is drawn.
type Shape string

const (
	// ShapeBox is a square-cornered rectangle.
	ShapeBox Shape = "box"
	// ShapeStadium is a rectangle with fully rounded ends.
	ShapeStadium Shape = "stadium"
)

// Node is a labelled shape. X and Y are the top-left corner.
type Node struct {
	Shape Shape   `json:"shape"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Label string  `json:"label"`
	Class string  `json:"class"`
}

// Path is a stroked SVG path.
type Path struct {
	D     string `json:"d"`
	Class string `json:"class"`
}

// Diagram is a complete vector document.
type Diagram struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Title  string       `json:"title,omitempty"`
	Nodes  []Node       `json:"nodes"`
	Paths  []Path       `json:"paths"`
	Theme  styles.Theme `json:"theme"`
}

// Labels returns the labels of all nodes with the given class, in drawing
// order. An empty class matches every node.
func (d *Diagram) Labels(class string) []string {
	var out []string
	for _, n := range d.Nodes {
		if class == "" || n.Class == class {
			out = append(out, n.Label)
		}
	}
	return out
}

// Count returns the number of nodes with the given class.
func (d *Diagram) Count(class string) int {
	return len(d.Labels(class))
}
