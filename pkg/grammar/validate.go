package grammar

import (
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
)

// MaxDepth bounds matcher nesting. A Body pointer that leads back to an
// ancestor makes a tree infinitely deep, so exceeding the bound is how a
// cycle shows up.
const MaxDepth = 512

// Validate checks the structural invariants of m and returns an
// INTERNAL_CONSISTENCY error describing the first violation.
func Validate(m Matcher) error {
	return validate(m, 1)
}

func validate(m Matcher, depth int) error {
	if depth > MaxDepth {
		return rmerrors.Internal("matcher nesting exceeds %d levels (cyclic tree?)", MaxDepth)
	}
	switch m.Kind {
	case KindLiteral:
		if m.Text == "" {
			return rmerrors.Internal("literal with empty text")
		}
	case KindCapture:
		if m.Name == "" || m.Fragment == "" {
			return rmerrors.Internal("capture %q missing name or fragment", "$"+m.Name+":"+m.Fragment)
		}
	case KindSequence, KindAlternation:
		if m.Body != nil {
			return rmerrors.Internal("%s carries a body", m.Kind)
		}
		for _, ch := range m.Children {
			if err := validate(ch, depth+1); err != nil {
				return err
			}
		}
	case KindRepetition, KindOptional:
		if m.Body == nil {
			return rmerrors.Internal("%s without body", m.Kind)
		}
		if len(m.Children) > 0 {
			return rmerrors.Internal("%s carries children", m.Kind)
		}
		if m.Kind == KindRepetition && m.Min != 0 && m.Min != 1 {
			return rmerrors.Internal("repetition minimum %d", m.Min)
		}
		return validate(*m.Body, depth+1)
	default:
		return invalidKind(m.Kind)
	}
	return nil
}

// MustValidate panics with the error from Validate.
func MustValidate(m Matcher) {
	if err := Validate(m); err != nil {
		panic(err)
	}
}

func invalidKind(k Kind) error {
	return rmerrors.Internal("unknown matcher kind %d", uint8(k))
}
