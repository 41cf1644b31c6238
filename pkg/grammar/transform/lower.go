package transform

import (
	"github.com/matzehuels/railmacro/pkg/grammar"
)

// Stage names a point in the lowering pipeline.
type Stage string

const (
	StageLowered    Stage = "lowered"
	StageInternal   Stage = "internal"
	StageFolded     Stage = "folded"
	StageNormalized Stage = "normalized"
)

// ValidStages is the set of stages Run accepts.
var ValidStages = map[Stage]bool{
	StageLowered:    true,
	StageInternal:   true,
	StageFolded:     true,
	StageNormalized: true,
}

// Options selects which passes run.
type Options struct {
	// KeepInternal leaves `@`-prefixed helper rules in the tree.
	KeepInternal bool
	// NoFold skips common head/tail folding.
	NoFold bool
}

// Lower builds the diagram tree of m: a root alternation with one sequence
// branch per rule, in declaration order.
func Lower(m *grammar.Macro) grammar.Tree {
	branches := make([]grammar.Matcher, len(m.Rules))
	for i, r := range m.Rules {
		branches[i] = r.Matcher().Clone()
	}
	return grammar.Tree{Name: m.Name, Root: grammar.Alternation(branches...)}
}

// Pipeline lowers m and applies every pass.
func Pipeline(m *grammar.Macro, opts Options) grammar.Tree {
	return Run(m, opts, StageNormalized)
}

// Run lowers m and applies the passes up to and including stop.
func Run(m *grammar.Macro, opts Options, stop Stage) grammar.Tree {
	t := Lower(m)
	if stop == StageLowered {
		return t
	}
	if !opts.KeepInternal {
		t = RemoveInternal(t)
	}
	if stop == StageInternal {
		return t
	}
	if !opts.NoFold {
		t = FoldCommon(t)
	}
	if stop == StageFolded {
		return t
	}
	return Normalize(t)
}
