package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/pipeline"
	"github.com/matzehuels/railmacro/pkg/splice"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output       string // output file (one diagram) or directory
	format       string // svg, datauri, payload or markdown
	label        string // reference label for markdown output
	title        string // caption above the diagram
	noTitle      bool   // drop the caption
	keepInternal bool   // keep @-prefixed helper rules
	noFold       bool   // skip common prefix/suffix folding
	noLegend     bool   // drop the capture kind legend
	noCache      bool   // bypass the diagram cache
	jobs         int    // concurrent builds
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file...]",
		Short: "Render macro_rules! declarations as railroad diagrams",
		Long: `Render the railroad diagram of each declaration.

Rust files (.rs) are scanned for every macro_rules! item. Any other file is
read as a single declaration or a bare clause list; "-" reads stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pipeline.ValidateFormat(opts.format); err != nil {
				return err
			}
			if opts.label != "" {
				if err := rmerrors.ValidateLabel(opts.label); err != nil {
					return err
				}
			}
			return c.runRender(cmd.Context(), cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single diagram) or directory")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatSVG, "output format: svg, datauri, payload, markdown")
	cmd.Flags().StringVar(&opts.label, "label", "", "reference label for markdown output (default: random)")
	cmd.Flags().StringVar(&opts.title, "title", "", "caption above the diagram (default: macro name)")
	cmd.Flags().BoolVar(&opts.noTitle, "no-title", false, "omit the caption")
	cmd.Flags().BoolVar(&opts.keepInternal, "keep-internal", false, "keep rules starting with @")
	cmd.Flags().BoolVar(&opts.noFold, "no-fold", false, "do not fold common prefixes and suffixes")
	cmd.Flags().BoolVar(&opts.noLegend, "no-legend", false, "omit the legend of capture kinds")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the diagram cache")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "concurrent builds (default: GOMAXPROCS)")
	cmd.MarkFlagsMutuallyExclusive("title", "no-title")

	return cmd
}

// rendered pairs a source with its pipeline result.
type rendered struct {
	src macroSource
	res *pipeline.Result
}

func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, files []string, opts renderOpts) error {
	prog := newProgress(c.Logger)

	var srcs []macroSource
	for _, f := range files {
		s, err := readSources(f, cmd.InOrStdin())
		if err != nil {
			return err
		}
		srcs = append(srcs, s...)
	}
	if len(srcs) == 0 {
		printInfo("No macro_rules! declarations found")
		return nil
	}
	if opts.format == pipeline.FormatMarkdown && opts.label != "" && len(srcs) > 1 {
		return rmerrors.New(rmerrors.ErrCodeInvalidInput,
			"--label names a single diagram but %d macros were found; drop --label to generate one per macro", len(srcs))
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	popts := c.pipelineOptions(pipeline.Options{
		KeepInternal: opts.keepInternal,
		NoFold:       opts.noFold,
		NoLegend:     opts.noLegend,
		Title:        opts.title,
		NoTitle:      opts.noTitle,
		Label:        opts.label,
	})

	results, buildErr := buildAll(ctx, runner, srcs, popts, opts.jobs)
	if buildErr != nil {
		printError("%d of %d diagram(s) failed", len(srcs)-len(results), len(srcs))
	}

	if len(results) > 0 {
		if err := writeRendered(cmd.OutOrStdout(), results, len(srcs), opts, popts); err != nil {
			return errors.Join(buildErr, err)
		}
	}
	for _, r := range results {
		printStats(r.src.label(), r.res.Stats.Rules, r.res.Stats.Size, r.res.CacheInfo.PayloadHit)
	}
	if buildErr != nil {
		return buildErr
	}
	prog.done(fmt.Sprintf("Rendered %d diagram(s)", len(results)))
	return nil
}

// buildAll runs the pipeline for every source with at most jobs builds in
// flight. A failing source does not stop the others: the successful results
// come back in source order along with the joined failures.
func buildAll(ctx context.Context, runner *pipeline.Runner, srcs []macroSource, opts pipeline.Options, jobs int) ([]rendered, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]rendered, len(srcs))
	errs := make([]error, len(srcs))

	var g errgroup.Group
	g.SetLimit(min(jobs, len(srcs)))
	for i, src := range srcs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			o := opts
			o.Origin = src.Origin
			res, err := runner.Execute(ctx, src.Text, o)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.label(), err)
				return nil
			}
			results[i] = rendered{src: src, res: res}
			return nil
		})
	}
	_ = g.Wait()

	built := make([]rendered, 0, len(srcs))
	for i, r := range results {
		if errs[i] == nil {
			built = append(built, r)
		}
	}
	return built, errors.Join(errs...)
}

// writeRendered writes the diagrams built out of total sources. The layout
// (stdout, single file or directory) follows total so a partial failure
// does not change where the surviving diagrams go.
func writeRendered(stdout io.Writer, results []rendered, total int, opts renderOpts, popts pipeline.Options) error {
	if opts.output == "" {
		if opts.format == pipeline.FormatSVG && total > 1 {
			return rmerrors.New(rmerrors.ErrCodeInvalidInput,
				"%d diagrams rendered; use --output DIR to write one SVG file each", total)
		}
		for _, r := range results {
			if _, err := io.WriteString(stdout, formatResult(opts.format, r.res, popts)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := rmerrors.ValidatePath(opts.output); err != nil {
		return err
	}
	info, statErr := os.Stat(opts.output)
	if total == 1 && (statErr != nil || !info.IsDir()) {
		return writeFile(opts.output, formatResult(opts.format, results[0].res, popts))
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return err
	}
	used := make(map[string]int)
	for _, r := range results {
		name := outputName(r, opts.format, used)
		if err := writeFile(filepath.Join(opts.output, name), formatResult(opts.format, r.res, popts)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// outputName derives a unique file name for r inside the output directory.
func outputName(r rendered, format string, used map[string]int) string {
	base := r.res.Name
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(r.src.File), filepath.Ext(r.src.File))
	}
	if base == "" || base == stdinPath || base == "." {
		base = "diagram"
	}
	used[base]++
	if n := used[base]; n > 1 {
		base = fmt.Sprintf("%s-%d", base, n)
	}
	return base + formatExt(format)
}

func formatExt(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return ".svg"
	case pipeline.FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

// formatResult renders res in the given output format.
func formatResult(format string, res *pipeline.Result, opts pipeline.Options) string {
	switch format {
	case pipeline.FormatDataURI:
		return res.Payload.DataURI() + "\n"
	case pipeline.FormatPayload:
		return res.Payload.String() + "\n"
	case pipeline.FormatMarkdown:
		return markdown(res, opts)
	default:
		return res.SVG
	}
}

// markdown returns the documentation rustdoc would show for a declaration
// without other docs: the placeholder image reference (unless a label was
// given) followed by the label definition.
func markdown(res *pipeline.Result, opts pipeline.Options) string {
	decl, _ := splice.Splice(splice.Declaration{Name: res.Name, InvocationEnd: -1}, res.Payload, splice.Options{
		Label:  opts.Label,
		Labels: opts.Labels,
	})
	texts := make([]string, len(decl.Attrs))
	for i, a := range decl.Attrs {
		texts[i] = a.Text
	}
	return strings.Join(texts, "\n") + "\n"
}
