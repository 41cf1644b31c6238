package grammar

import (
	"fmt"
	"slices"
)

// Kind tags the variant held by a Matcher.
type Kind uint8

const (
	KindLiteral Kind = iota
	KindCapture
	KindSequence
	KindAlternation
	KindRepetition
	KindOptional
)

var kindNames = [...]string{
	KindLiteral:     "literal",
	KindCapture:     "capture",
	KindSequence:    "sequence",
	KindAlternation: "alternation",
	KindRepetition:  "repetition",
	KindOptional:    "optional",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool { return int(k) < len(kindNames) }

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown matcher kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown matcher kind %q", b)
}

// Matcher is one node of a macro grammar.
type Matcher struct {
	Kind Kind `json:"kind" yaml:"kind"`

	// Text is the token text of a literal.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Name and Fragment describe a capture: $Name:Fragment.
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Fragment string `json:"fragment,omitempty" yaml:"fragment,omitempty"`

	// Children holds sequence items or alternation branches.
	Children []Matcher `json:"children,omitempty" yaml:"children,omitempty"`

	// Body is the repeated or optional matcher.
	Body *Matcher `json:"body,omitempty" yaml:"body,omitempty"`

	// Separator is the token between repetitions; empty when absent.
	Separator string `json:"separator,omitempty" yaml:"separator,omitempty"`

	// Min is 0 for `*` and 1 for `+`.
	Min int `json:"min,omitempty" yaml:"min,omitempty"`
}

// Literal returns a literal token matcher.
func Literal(text string) Matcher {
	return Matcher{Kind: KindLiteral, Text: text}
}

// Capture returns a `$name:fragment` matcher.
func Capture(name, fragment string) Matcher {
	return Matcher{Kind: KindCapture, Name: name, Fragment: fragment}
}

// Sequence returns the ordered composition of items.
func Sequence(items ...Matcher) Matcher {
	return Matcher{Kind: KindSequence, Children: slices.Clone(items)}
}

// Empty returns the sequence with no items, matching nothing.
func Empty() Matcher {
	return Matcher{Kind: KindSequence}
}

// Alternation returns a choice between branches.
func Alternation(branches ...Matcher) Matcher {
	return Matcher{Kind: KindAlternation, Children: slices.Clone(branches)}
}

// Repetition returns body repeated at least min times, separated by sep.
func Repetition(body Matcher, sep string, min int) Matcher {
	return Matcher{Kind: KindRepetition, Body: &body, Separator: sep, Min: min}
}

// Optional returns a matcher accepting body or nothing.
func Optional(body Matcher) Matcher {
	return Matcher{Kind: KindOptional, Body: &body}
}

// IsEmpty reports whether m is the empty sequence.
func (m Matcher) IsEmpty() bool {
	return m.Kind == KindSequence && len(m.Children) == 0
}

// Items returns the sequence items of m, or m itself when it is not a
// sequence. The result must not be modified.
func (m Matcher) Items() []Matcher {
	if m.Kind == KindSequence {
		return m.Children
	}
	return []Matcher{m}
}

// Clone returns a deep copy of m.
func (m Matcher) Clone() Matcher {
	c := m
	if m.Children != nil {
		c.Children = make([]Matcher, len(m.Children))
		for i, ch := range m.Children {
			c.Children[i] = ch.Clone()
		}
	}
	if m.Body != nil {
		b := m.Body.Clone()
		c.Body = &b
	}
	return c
}

// Equal reports structural equality. A nil and an empty Children slice are
// equal.
func (m Matcher) Equal(o Matcher) bool {
	if m.Kind != o.Kind {
		return false
	}
	switch m.Kind {
	case KindLiteral:
		return m.Text == o.Text
	case KindCapture:
		return m.Name == o.Name && m.Fragment == o.Fragment
	case KindSequence, KindAlternation:
		return slices.EqualFunc(m.Children, o.Children, Matcher.Equal)
	case KindRepetition:
		return m.Separator == o.Separator && m.Min == o.Min && bodyEqual(m.Body, o.Body)
	case KindOptional:
		return bodyEqual(m.Body, o.Body)
	default:
		panic(invalidKind(m.Kind))
	}
}

func bodyEqual(a, b *Matcher) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// EqualAll reports element-wise structural equality of two matcher runs.
func EqualAll(a, b []Matcher) bool {
	return slices.EqualFunc(a, b, Matcher.Equal)
}

// Walk calls fn for m and every descendant in pre-order. Returning false
// from fn skips the node's children.
func (m Matcher) Walk(fn func(Matcher) bool) {
	if !fn(m) {
		return
	}
	for _, ch := range m.Children {
		ch.Walk(fn)
	}
	if m.Body != nil {
		m.Body.Walk(fn)
	}
}

// NodeCount returns the number of nodes in m.
func (m Matcher) NodeCount() int {
	n := 0
	m.Walk(func(Matcher) bool {
		n++
		return true
	})
	return n
}

// Depth returns the height of m; a leaf has depth 1.
func (m Matcher) Depth() int {
	d := 0
	for _, ch := range m.Children {
		d = max(d, ch.Depth())
	}
	if m.Body != nil {
		d = max(d, m.Body.Depth())
	}
	return d + 1
}
