package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/railmacro/pkg/diagram"
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/grammar/parser"
	"github.com/matzehuels/railmacro/pkg/grammar/transform"
	"github.com/matzehuels/railmacro/pkg/observability"
	"github.com/matzehuels/railmacro/pkg/payload"
	"github.com/matzehuels/railmacro/pkg/render/railroad"
)

// Build runs parse, lower, render and encode on src without caching.
// Each stage error is wrapped with the stage name; the coded error stays
// reachable through errors.As.
func Build(ctx context.Context, src string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	result := &Result{}

	// Stage 1: Parse
	start := time.Now()
	hooks.OnParseStart(ctx, "")
	m, err := Parse(src)
	result.Stats.ParseTime = time.Since(start)
	if err != nil {
		err = opts.Origin.Locate(err)
		hooks.OnParseComplete(ctx, "", 0, result.Stats.ParseTime, err)
		return nil, fmt.Errorf("parse: %w", err)
	}
	hooks.OnParseComplete(ctx, m.Name, len(m.Rules), result.Stats.ParseTime, nil)
	result.Macro = m
	result.Name = m.Name
	result.Stats.Rules = len(m.Rules)

	opts.Logger.Debug("parsed macro",
		"name", m.Name,
		"rules", len(m.Rules),
		"duration", result.Stats.ParseTime)

	// Stage 2: Lower
	start = time.Now()
	hooks.OnLowerStart(ctx, m.Name, len(m.Rules))
	t, err := Lower(m, opts.TransformOptions(), transform.StageNormalized)
	result.Stats.LowerTime = time.Since(start)
	if err != nil {
		hooks.OnLowerComplete(ctx, m.Name, 0, result.Stats.LowerTime, err)
		return nil, fmt.Errorf("lower: %w", err)
	}
	result.Tree = t
	result.Stats.Nodes = t.Root.NodeCount()
	hooks.OnLowerComplete(ctx, m.Name, result.Stats.Nodes, result.Stats.LowerTime, nil)

	opts.Logger.Debug("lowered tree",
		"nodes", result.Stats.Nodes,
		"depth", t.Root.Depth(),
		"duration", result.Stats.LowerTime)

	// Stage 3: Render
	start = time.Now()
	hooks.OnRenderStart(ctx, m.Name)
	d, err := Render(t, opts)
	result.Stats.RenderTime = time.Since(start)
	if err != nil {
		hooks.OnRenderComplete(ctx, m.Name, 0, 0, result.Stats.RenderTime, err)
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Diagram = d
	result.SVG = d.String()
	result.Stats.Width, result.Stats.Height = d.Width, d.Height
	hooks.OnRenderComplete(ctx, m.Name, d.Width, d.Height, result.Stats.RenderTime, nil)

	// Stage 4: Encode
	start = time.Now()
	result.Payload = payload.Encode(result.SVG)
	result.Stats.EncodeTime = time.Since(start)
	result.Stats.Size = len(result.Payload.DataURI())
	hooks.OnEncodeComplete(ctx, m.Name, result.Stats.Size)

	opts.Logger.Debug("rendered diagram",
		"width", d.Width,
		"height", d.Height,
		"bytes", result.Stats.Size,
		"duration", result.Stats.RenderTime+result.Stats.EncodeTime)

	return result, nil
}

// Parse reads a macro declaration or bare clause list.
func Parse(src string) (*grammar.Macro, error) {
	return parser.Parse(src)
}

// Lower runs the lowering passes on m up to stop. Consistency violations
// inside the passes come back as INTERNAL_CONSISTENCY errors.
func Lower(m *grammar.Macro, opts transform.Options, stop transform.Stage) (t grammar.Tree, err error) {
	if !transform.ValidStages[stop] {
		return grammar.Tree{}, rmerrors.New(rmerrors.ErrCodeInvalidInput, "unknown stage %q", stop)
	}
	defer recoverInternal(&err)
	return transform.Run(m, opts, stop), nil
}

// Render lays out t as a railroad diagram.
func Render(t grammar.Tree, opts Options) (d *diagram.Diagram, err error) {
	defer recoverInternal(&err)
	return railroad.Render(t, opts.RenderOptions()...), nil
}

// recoverInternal turns a panic carrying a coded error into a returned
// error. Any other panic is re-raised.
func recoverInternal(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if e, ok := r.(error); ok {
		var coded *rmerrors.Error
		if errors.As(e, &coded) {
			*err = coded
			return
		}
	}
	panic(r)
}
