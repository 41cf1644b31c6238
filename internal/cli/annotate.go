package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/pipeline"
)

// annotateOpts holds the command-line flags for the annotate command.
type annotateOpts struct {
	write        bool // rewrite files in place
	keepInternal bool
	noFold       bool
	noLegend     bool
	noCache      bool
	jobs         int
}

// annotateCommand creates the annotate command.
func (c *CLI) annotateCommand() *cobra.Command {
	var opts annotateOpts

	cmd := &cobra.Command{
		Use:   "annotate <file|glob>...",
		Short: "Splice diagrams into #[generate_railroad] macros",
		Long: `Find macro_rules! items annotated with #[generate_railroad] or
#[generate_railroad("label")] and replace the annotation with documentation
embedding the macro's railroad diagram.

Arguments may be doublestar globs such as 'src/**/*.rs'. Without --write the
rewritten sources are printed to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := expandGlobs(args)
			if err != nil {
				return err
			}
			return c.runAnnotate(cmd.Context(), cmd.OutOrStdout(), files, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&opts.keepInternal, "keep-internal", false, "keep rules starting with @")
	cmd.Flags().BoolVar(&opts.noFold, "no-fold", false, "do not fold common prefixes and suffixes")
	cmd.Flags().BoolVar(&opts.noLegend, "no-legend", false, "omit the legend of capture kinds")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the diagram cache")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "concurrent files (default: GOMAXPROCS)")

	return cmd
}

// expandGlobs resolves patterns to a sorted, de-duplicated list of .rs files.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, p := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(p)) {
			return nil, rmerrors.New(rmerrors.ErrCodeInvalidInput, "invalid glob: %q", p)
		}
		matches, err := doublestar.FilepathGlob(p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			return nil, rmerrors.New(rmerrors.ErrCodeFileNotFound, "no files match %q", p)
		}
		for _, m := range matches {
			if filepath.Ext(m) != ".rs" || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

// annotated is the outcome for one file.
type annotated struct {
	path  string
	out   string
	count int
}

func (c *CLI) runAnnotate(ctx context.Context, stdout io.Writer, files []string, opts annotateOpts) error {
	prog := newProgress(c.Logger)
	if len(files) == 0 {
		printInfo("No Rust files to annotate")
		return nil
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()
	popts := c.pipelineOptions(pipeline.Options{
		KeepInternal: opts.keepInternal,
		NoFold:       opts.noFold,
		NoLegend:     opts.noLegend,
	})

	jobs := opts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]annotated, len(files))
	errs := make([]error, len(files))

	// Failures are recorded per file; the macros that did build are still
	// written.
	var g errgroup.Group
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			src, err := readInput(path, nil)
			if err != nil {
				errs[i] = err
				return nil
			}
			out, n, err := runner.AnnotateSource(ctx, src, popts)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
			}
			results[i] = annotated{path: path, out: out, count: n}
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, r := range results {
		total += r.count
		if r.count == 0 {
			c.Logger.Debug("no annotated macros", "file", r.path)
			continue
		}
		if opts.write {
			if err := writeInPlace(r.path, r.out); err != nil {
				return errors.Join(append(errs, err)...)
			}
			printFile(r.path)
			continue
		}
		if len(files) > 1 {
			fmt.Fprintf(stdout, "// %s\n", r.path)
		}
		if _, err := io.WriteString(stdout, r.out); err != nil {
			return errors.Join(append(errs, err)...)
		}
	}

	if err := errors.Join(errs...); err != nil {
		printError("Annotation failed for %d file(s)", countErrors(errs))
		return err
	}
	if total == 0 {
		printWarning("No #[generate_railroad] annotations found in %d file(s)", len(files))
		return nil
	}
	printSuccess("Annotated %d macro(s) in %d file(s)", total, len(files))
	prog.done("Annotation complete")
	return nil
}

func countErrors(errs []error) int {
	n := 0
	for _, err := range errs {
		if err != nil {
			n++
		}
	}
	return n
}

// writeInPlace replaces path's contents, keeping its permissions.
func writeInPlace(path, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, []byte(content), mode)
}
