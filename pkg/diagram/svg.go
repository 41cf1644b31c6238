package diagram

import (
	"bytes"
	"fmt"
	"io"

	"github.com/matzehuels/railmacro/pkg/render/styles"
)

// titleHeight is the band above the content reserved for a title.
const titleHeight = 24.0

// WriteSVG writes d as a standalone SVG document.
func (d *Diagram) WriteSVG(w io.Writer) error {
	_, err := w.Write(d.Bytes())
	return err
}

// Bytes returns the SVG document.
func (d *Diagram) Bytes() []byte {
	n := styles.Num
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		styles.ClassDiagram, n(d.Width), n(d.Height), n(d.Width), n(d.Height))
	fmt.Fprintf(&buf, "<style>\n%s</style>\n", d.Theme.CSS())

	if d.Title != "" {
		fmt.Fprintf(&buf, `<text class="%s" x="%s" y="%s">%s</text>`+"\n",
			styles.ClassTitle, n(titleHeight/2), n(titleHeight/2), styles.EscapeXML(d.Title))
	}

	for _, p := range d.Paths {
		fmt.Fprintf(&buf, `<path class="%s" d="%s"/>`+"\n", p.Class, p.D)
	}
	for _, nd := range d.Nodes {
		writeNode(&buf, nd)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func writeNode(buf *bytes.Buffer, nd Node) {
	n := styles.Num
	radius := 0.0
	if nd.Shape == ShapeStadium {
		radius = nd.H / 2
	}
	fmt.Fprintf(buf, `<g class="%s">`, nd.Class)
	fmt.Fprintf(buf, `<rect class="%s" x="%s" y="%s" width="%s" height="%s" rx="%s" ry="%s"/>`,
		nd.Class, n(nd.X), n(nd.Y), n(nd.W), n(nd.H), n(radius), n(radius))
	fmt.Fprintf(buf, `<text x="%s" y="%s">%s</text>`,
		n(nd.X+nd.W/2), n(nd.Y+nd.H/2), styles.EscapeXML(nd.Label))
	buf.WriteString("</g>\n")
}

// String returns the SVG document as text.
func (d *Diagram) String() string {
	return string(d.Bytes())
}

// TitleHeight is the vertical space reserved above the diagram when a
// title is set.
func TitleHeight(title string) float64 {
	if title == "" {
		return 0
	}
	return titleHeight
}
