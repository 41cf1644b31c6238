package styles

import (
	"strings"
	"testing"
)

func TestNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{-0.001, "0"},
		{10, "10"},
		{10.5, "10.5"},
		{1.0 / 3, "0.33"},
		{-4.256, "-4.26"},
	}
	for _, tt := range tests {
		if got := Num(tt.in); got != tt.want {
			t.Errorf("Num(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextWidth(t *testing.T) {
	th := DefaultTheme()
	cell := th.FontSize * th.CharWidth

	tests := []struct {
		in    string
		cells int
	}{
		{"", 0},
		{"a", 1},
		{"expr", 4},
		{"日本", 4},
	}
	for _, tt := range tests {
		want := float64(tt.cells) * cell
		if got := th.TextWidth(tt.in); got != want {
			t.Errorf("TextWidth(%q) = %v, want %v", tt.in, got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	base := DefaultTheme()
	got := Theme{Stroke: "red", FontSize: 20}.Merge(base)

	if got.Stroke != "red" {
		t.Errorf("Stroke = %q, want red", got.Stroke)
	}
	if got.FontSize != 20 {
		t.Errorf("FontSize = %v, want 20", got.FontSize)
	}
	if got.TerminalFill != base.TerminalFill {
		t.Errorf("TerminalFill = %q, want %q", got.TerminalFill, base.TerminalFill)
	}
	if got.CharWidth != base.CharWidth {
		t.Errorf("CharWidth = %v, want %v", got.CharWidth, base.CharWidth)
	}
}

func TestCSS(t *testing.T) {
	css := DefaultTheme().CSS()
	for _, want := range []string{
		"svg.railroad path { stroke-width: 2px; stroke: #000000; fill: none; }",
		"rect.terminal { fill: #d9f2d9; }",
		"rect.nonterminal { fill: #e6ecff; }",
		"font: 14px monospace;",
	} {
		if !strings.Contains(css, want) {
			t.Errorf("CSS() missing %q", want)
		}
	}
}

func TestEscapeXML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<&>", "&lt;&amp;&gt;"},
		{`"x"`, "&#34;x&#34;"},
	}
	for _, tt := range tests {
		if got := EscapeXML(tt.in); got != tt.want {
			t.Errorf("EscapeXML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
