package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/grammar/transform"
	"github.com/matzehuels/railmacro/pkg/pipeline"
	"github.com/matzehuels/railmacro/pkg/render/treeview"
)

// stageParsed dumps the rules before lowering.
const stageParsed = "parsed"

// Tree dump formats.
const (
	treeText = "text"
	treeJSON = "json"
	treeYAML = "yaml"
	treeDOT  = "dot"
	treeSVG  = "svg"
)

var validTreeFormats = map[string]bool{treeText: true, treeJSON: true, treeYAML: true, treeDOT: true, treeSVG: true}

// treeOpts holds the command-line flags for the tree command.
type treeOpts struct {
	stage        string
	format       string
	macro        string
	detailed     bool
	keepInternal bool
	noFold       bool
	noCache      bool
}

// treeCommand creates the tree command for inspecting the lowering passes.
func (c *CLI) treeCommand() *cobra.Command {
	opts := treeOpts{stage: string(transform.StageNormalized), format: treeText}

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the diagram tree after a lowering stage",
		Long: `Print the diagram tree of a declaration as it stands after a stage:

  parsed      the rules as written
  lowered     one alternation over the rules
  internal    after dropping @-prefixed helper rules
  folded      after folding common prefixes and suffixes
  normalized  the tree that gets drawn`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateTreeOpts(opts); err != nil {
				return err
			}
			return c.runTree(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.stage, "stage", "s", opts.stage, "parsed, lowered, internal, folded or normalized")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, yaml, dot, svg")
	cmd.Flags().StringVarP(&opts.macro, "macro", "m", "", "macro to show when a file declares several")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label graph nodes with their kind (dot, svg)")
	cmd.Flags().BoolVar(&opts.keepInternal, "keep-internal", false, "keep rules starting with @")
	cmd.Flags().BoolVar(&opts.noFold, "no-fold", false, "do not fold common prefixes and suffixes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the tree cache")

	return cmd
}

func validateTreeOpts(opts treeOpts) error {
	if opts.stage != stageParsed && !transform.ValidStages[transform.Stage(opts.stage)] {
		return rmerrors.New(rmerrors.ErrCodeInvalidInput,
			"invalid stage: %q (must be one of: parsed, lowered, internal, folded, normalized)", opts.stage)
	}
	if !validTreeFormats[opts.format] {
		return rmerrors.New(rmerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: text, json, yaml, dot, svg)", opts.format)
	}
	if opts.stage == stageParsed && (opts.format == treeDOT || opts.format == treeSVG) {
		return rmerrors.New(rmerrors.ErrCodeInvalidInput, "the parsed stage can only be printed as text, json or yaml")
	}
	return nil
}

func (c *CLI) runTree(ctx context.Context, cmd *cobra.Command, path string, opts treeOpts) error {
	srcs, err := readSources(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	src, err := selectMacro(srcs, opts.macro)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if opts.stage == stageParsed {
		m, err := pipeline.Parse(src.Text)
		if err != nil {
			return fmt.Errorf("%s: %w", src.label(), src.Origin.Locate(err))
		}
		return writeMacro(out, m, opts.format)
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()
	popts := c.pipelineOptions(pipeline.Options{
		KeepInternal: opts.keepInternal,
		NoFold:       opts.noFold,
		Origin:       src.Origin,
	})

	t, hit, err := runner.Tree(ctx, src.Text, popts, transform.Stage(opts.stage))
	if err != nil {
		return fmt.Errorf("%s: %w", src.label(), err)
	}
	c.Logger.Debug("tree", "macro", t.Name, "stage", opts.stage, "nodes", t.Root.NodeCount(), "cached", hit)
	return writeTree(ctx, out, t, opts, popts)
}

func writeMacro(w io.Writer, m *grammar.Macro, format string) error {
	switch format {
	case treeJSON:
		return writeJSON(w, m)
	case treeYAML:
		return writeYAML(w, m)
	}
	var b strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&b, "macro_rules! %s\n", m.Name)
	}
	for i, r := range m.Rules {
		fmt.Fprintf(&b, "  %d: %s\n", i, r.Matcher())
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeTree(ctx context.Context, w io.Writer, t grammar.Tree, opts treeOpts, popts pipeline.Options) error {
	switch opts.format {
	case treeJSON:
		return writeJSON(w, t)
	case treeYAML:
		return writeYAML(w, t)
	case treeDOT, treeSVG:
		dot := treeview.ToDOT(t, treeview.Options{Detailed: opts.detailed, Theme: popts.Theme})
		if opts.format == treeDOT {
			_, err := io.WriteString(w, dot)
			return err
		}
		svg, err := treeview.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	}
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
