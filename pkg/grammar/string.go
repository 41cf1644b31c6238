package grammar

import (
	"strconv"
	"strings"
)

// String renders m in a compact macro-like notation:
//
//	a $x:expr            literal and capture
//	(a b)                sequence, () when empty
//	{a | b}              alternation
//	$(a),* $(a)+ $(a)?   repetition and optional
func (m Matcher) String() string {
	var b strings.Builder
	m.write(&b)
	return b.String()
}

func (m Matcher) write(b *strings.Builder) {
	switch m.Kind {
	case KindLiteral:
		b.WriteString(quoteLiteral(m.Text))
	case KindCapture:
		b.WriteString("$" + m.Name + ":" + m.Fragment)
	case KindSequence:
		b.WriteByte('(')
		writeJoined(b, m.Children, " ")
		b.WriteByte(')')
	case KindAlternation:
		b.WriteByte('{')
		writeJoined(b, m.Children, " | ")
		b.WriteByte('}')
	case KindRepetition:
		b.WriteString("$(")
		writeJoined(b, m.Body.Items(), " ")
		b.WriteByte(')')
		b.WriteString(m.Separator)
		if m.Min == 0 {
			b.WriteByte('*')
		} else {
			b.WriteByte('+')
		}
	case KindOptional:
		b.WriteString("$(")
		writeJoined(b, m.Body.Items(), " ")
		b.WriteString(")?")
	default:
		panic(invalidKind(m.Kind))
	}
}

func writeJoined(b *strings.Builder, ms []Matcher, sep string) {
	for i, m := range ms {
		if i > 0 {
			b.WriteString(sep)
		}
		m.write(b)
	}
}

// quoteLiteral quotes literals that would read as notation.
func quoteLiteral(s string) string {
	if strings.ContainsAny(s, " ()[]{}|$\"") {
		return strconv.Quote(s)
	}
	return s
}
