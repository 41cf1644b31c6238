package splice

import (
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/google/uuid"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar/parser"
)

// LabelLength is the length of generated labels.
const LabelLength = 16

// LabelGenerator produces fallback labels. Implementations must be safe for
// concurrent use.
type LabelGenerator interface {
	NewLabel() string
}

// labelAlphabet holds the characters of generated labels.
const labelAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandomLabels draws labels from random UUIDs. Collisions with labels
// already present in the docs are not checked.
type RandomLabels struct{}

// NewLabel returns LabelLength characters drawn from [A-Za-z0-9].
func (RandomLabels) NewLabel() string {
	id := uuid.New()
	// Clear the version and variant bits; 122 random bits remain, well
	// above the 96 that sixteen base-62 digits need.
	id[6] &= 0x0f
	id[8] &= 0x3f
	n := new(big.Int).SetBytes(id[:])
	base := big.NewInt(int64(len(labelAlphabet)))
	digit := new(big.Int)
	label := make([]byte, LabelLength)
	for i := range label {
		n.DivMod(n, base, digit)
		label[i] = labelAlphabet[digit.Int64()]
	}
	return string(label)
}

// FixedLabels yields Prefix followed by a counter: label1, label2, ...
type FixedLabels struct {
	Prefix string

	mu sync.Mutex
	n  int
}

// NewLabel returns the next label in the sequence.
func (f *FixedLabels) NewLabel() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	prefix := f.Prefix
	if prefix == "" {
		prefix = "label"
	}
	return fmt.Sprintf("%s%d", prefix, f.n)
}

// ParseLabelArg reads the annotation argument: nothing, or a single string
// literal naming the label. It returns the empty string when no label was
// given.
func ParseLabelArg(arg string) (string, error) {
	toks, err := parser.Tokenize(arg)
	if err != nil {
		return "", rmerrors.Wrap(rmerrors.ErrCodeInvalidLabel, err, "invalid annotation argument")
	}
	switch {
	case len(toks) == 0:
		return "", nil
	case len(toks) > 1 || toks[0].Kind != parser.TokenLiteral:
		return "", rmerrors.New(rmerrors.ErrCodeInvalidLabel, "annotation takes a single string literal, got %q", strings.TrimSpace(arg))
	}
	label, err := parser.UnquoteString(toks[0].Text)
	if err != nil {
		return "", rmerrors.Wrap(rmerrors.ErrCodeInvalidLabel, err, "annotation argument is not a string literal")
	}
	if err := rmerrors.ValidateLabel(label); err != nil {
		return "", err
	}
	return label, nil
}
