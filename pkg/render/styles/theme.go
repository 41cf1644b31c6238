package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"

	"github.com/mattn/go-runewidth"
)

// CSS classes used by diagram shapes and paths.
const (
	ClassDiagram     = "railroad"
	ClassTerminal    = "terminal"
	ClassNonTerminal = "nonterminal"
	ClassSeparator   = "separator"
	ClassTrack       = "track"
	ClassMarker      = "marker"
	ClassTitle       = "title"
	ClassLegend      = "legend"
	ClassEmpty       = "empty"
)

// Theme holds the presentation settings applied to every diagram.
type Theme struct {
	Stroke        string  `toml:"stroke" json:"stroke"`
	StrokeWidth   float64 `toml:"stroke_width" json:"stroke_width"`
	TerminalFill  string  `toml:"terminal_fill" json:"terminal_fill"`
	CaptureFill   string  `toml:"capture_fill" json:"capture_fill"`
	SeparatorFill string  `toml:"separator_fill" json:"separator_fill"`
	Background    string  `toml:"background" json:"background"`
	TextColor     string  `toml:"text_color" json:"text_color"`
	FontFamily    string  `toml:"font_family" json:"font_family"`
	FontSize      float64 `toml:"font_size" json:"font_size"`

	// CharWidth is the advance of one display cell as a fraction of
	// FontSize. 0.6 suits most monospace faces.
	CharWidth float64 `toml:"char_width" json:"char_width"`
}

// DefaultTheme returns the stock theme.
func DefaultTheme() Theme {
	return Theme{
		Stroke:        "#000000",
		StrokeWidth:   2,
		TerminalFill:  "#d9f2d9",
		CaptureFill:   "#e6ecff",
		SeparatorFill: "#f5f5f5",
		Background:    "#f7f4ef",
		TextColor:     "#000000",
		FontFamily:    "monospace",
		FontSize:      14,
		CharWidth:     0.6,
	}
}

// Merge returns t with every zero field taken from base.
func (t Theme) Merge(base Theme) Theme {
	pick := func(v, d string) string {
		if v == "" {
			return d
		}
		return v
	}
	pickf := func(v, d float64) float64 {
		if v <= 0 {
			return d
		}
		return v
	}
	return Theme{
		Stroke:        pick(t.Stroke, base.Stroke),
		StrokeWidth:   pickf(t.StrokeWidth, base.StrokeWidth),
		TerminalFill:  pick(t.TerminalFill, base.TerminalFill),
		CaptureFill:   pick(t.CaptureFill, base.CaptureFill),
		SeparatorFill: pick(t.SeparatorFill, base.SeparatorFill),
		Background:    pick(t.Background, base.Background),
		TextColor:     pick(t.TextColor, base.TextColor),
		FontFamily:    pick(t.FontFamily, base.FontFamily),
		FontSize:      pickf(t.FontSize, base.FontSize),
		CharWidth:     pickf(t.CharWidth, base.CharWidth),
	}
}

// TextWidth returns the rendered width of s in user units.
func (t Theme) TextWidth(s string) float64 {
	return float64(runewidth.StringWidth(s)) * t.FontSize * t.CharWidth
}

// CSS renders the stylesheet for t.
func (t Theme) CSS() string {
	var buf bytes.Buffer
	sw := Num(t.StrokeWidth)
	fmt.Fprintf(&buf, "svg.%s { background-color: %s; }\n", ClassDiagram, t.Background)
	fmt.Fprintf(&buf, "svg.%s path { stroke-width: %spx; stroke: %s; fill: none; }\n", ClassDiagram, sw, t.Stroke)
	fmt.Fprintf(&buf, "svg.%s text { font: %spx %s; fill: %s; text-anchor: middle; dominant-baseline: central; }\n",
		ClassDiagram, Num(t.FontSize), t.FontFamily, t.TextColor)
	fmt.Fprintf(&buf, "svg.%s rect { stroke-width: %spx; stroke: %s; }\n", ClassDiagram, sw, t.Stroke)
	fmt.Fprintf(&buf, "svg.%s rect.%s { fill: %s; }\n", ClassDiagram, ClassTerminal, t.TerminalFill)
	fmt.Fprintf(&buf, "svg.%s rect.%s { fill: %s; }\n", ClassDiagram, ClassNonTerminal, t.CaptureFill)
	fmt.Fprintf(&buf, "svg.%s rect.%s { fill: %s; stroke-dasharray: 4 2; }\n", ClassDiagram, ClassSeparator, t.SeparatorFill)
	fmt.Fprintf(&buf, "svg.%s rect.%s { fill: %s; stroke-width: 1px; }\n", ClassDiagram, ClassLegend, t.Background)
	fmt.Fprintf(&buf, "svg.%s rect.%s { fill: %s; stroke-dasharray: 2 2; }\n", ClassDiagram, ClassEmpty, t.Background)
	fmt.Fprintf(&buf, "svg.%s text.%s { font-weight: bold; text-anchor: start; }\n", ClassDiagram, ClassTitle)
	fmt.Fprintf(&buf, "svg.%s .%s text { font-style: italic; }\n", ClassDiagram, ClassNonTerminal)
	return buf.String()
}

// EscapeXML escapes s for use in SVG text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Num formats a coordinate with at most two decimals and no trailing zeros.
func Num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
