// Package pipeline runs the diagram pipeline for one macro declaration.
//
// The pipeline consists of four stages:
//
//  1. Parse: read the macro_rules! source into rules
//  2. Lower: build the diagram tree, drop internal rules, fold shared
//     prefixes and suffixes, normalize
//  3. Render: lay the tree out as a railroad diagram and serialize it to SVG
//  4. Encode: turn the SVG into a base64 data URI payload
//
// [Build] runs the stages without side effects. [Runner] adds caching and
// the splice step that attaches the payload to a declaration's docs.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, src, pipeline.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Payload.DataURI())
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railmacro/pkg/cache"
	"github.com/matzehuels/railmacro/pkg/diagram"
	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/grammar"
	"github.com/matzehuels/railmacro/pkg/grammar/transform"
	"github.com/matzehuels/railmacro/pkg/payload"
	"github.com/matzehuels/railmacro/pkg/render/railroad"
	"github.com/matzehuels/railmacro/pkg/render/styles"
	"github.com/matzehuels/railmacro/pkg/splice"
)

// SchemaVersion is part of every cache key. Bump it when the rendered
// output changes for the same input.
const SchemaVersion = 2

// Output formats of the render command.
const (
	FormatSVG      = "svg"
	FormatDataURI  = "datauri"
	FormatPayload  = "payload"
	FormatMarkdown = "markdown"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:      true,
	FormatDataURI:  true,
	FormatPayload:  true,
	FormatMarkdown: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return rmerrors.New(rmerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, datauri, payload, markdown)", format)
	}
	return nil
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Lowering options
	KeepInternal bool `json:"keep_internal,omitempty"`
	NoFold       bool `json:"no_fold,omitempty"`

	// Render options. Zero theme fields use the default theme.
	Theme styles.Theme `json:"theme,omitempty"`
	// Title is drawn above the diagram. Empty uses the macro name unless
	// NoTitle is set.
	Title   string `json:"title,omitempty"`
	NoTitle bool   `json:"no_title,omitempty"`

	// NoLegend drops the capture kind legend below the track.
	NoLegend bool `json:"no_legend,omitempty"`

	// Splice options
	Label  string                `json:"label,omitempty"`
	Labels splice.LabelGenerator `json:"-"`

	// Origin places the source inside the file it was cut from.
	Origin Origin `json:"-"`

	Logger *log.Logger `json:"-"`
}

// Origin locates a declaration inside an enclosing file. When File is set,
// syntax errors report file positions instead of declaration positions.
type Origin struct {
	File   string
	Offset int
}

// Locate rebases a parse error of the declaration onto the enclosing file.
func (o Origin) Locate(err error) error {
	if o.File == "" {
		return err
	}
	return rmerrors.Rebase(err, o.File, o.Offset)
}

// SetDefaults fills in the logger, label source and theme.
func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Labels == nil {
		o.Labels = splice.RandomLabels{}
	}
	o.Theme = o.Theme.Merge(styles.DefaultTheme())
}

// Validate applies defaults and checks user supplied values.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Label != "" {
		if err := rmerrors.ValidateLabel(o.Label); err != nil {
			return err
		}
	}
	return nil
}

// TransformOptions returns the lowering pass selection.
func (o *Options) TransformOptions() transform.Options {
	return transform.Options{KeepInternal: o.KeepInternal, NoFold: o.NoFold}
}

// RenderOptions returns the renderer options.
func (o *Options) RenderOptions() []railroad.Option {
	opts := []railroad.Option{railroad.WithTheme(o.Theme), railroad.WithLegend(!o.NoLegend)}
	switch {
	case o.NoTitle:
		opts = append(opts, railroad.WithTitle(""))
	case o.Title != "":
		opts = append(opts, railroad.WithTitle(o.Title))
	}
	return opts
}

// PayloadKeyOpts returns cache key options for the encoded diagram.
func (o *Options) PayloadKeyOpts() cache.PayloadKeyOpts {
	title := o.Title
	if o.NoTitle {
		title = "\x00"
	}
	return cache.PayloadKeyOpts{
		KeepInternal: o.KeepInternal,
		NoFold:       o.NoFold,
		Title:        title,
		NoLegend:     o.NoLegend,
		ThemeHash:    themeHash(o.Theme),
		Schema:       SchemaVersion,
	}
}

// TreeKeyOpts returns cache key options for the tree at stage.
func (o *Options) TreeKeyOpts(stage transform.Stage) cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		KeepInternal: o.KeepInternal,
		NoFold:       o.NoFold,
		Stage:        string(stage),
		Schema:       SchemaVersion,
	}
}

func themeHash(t styles.Theme) string {
	data, _ := json.Marshal(t.Merge(styles.DefaultTheme()))
	return cache.Hash(data)
}

// Result contains the outputs of a pipeline run. On a cache hit Macro,
// Tree and Diagram are nil or zero; Name, SVG and Payload are always set.
type Result struct {
	Name    string
	Macro   *grammar.Macro
	Tree    grammar.Tree
	Diagram *diagram.Diagram
	SVG     string
	Payload payload.Payload

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which lookups hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rules      int
	Nodes      int
	Width      float64
	Height     float64
	Size       int
	ParseTime  time.Duration
	LowerTime  time.Duration
	RenderTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	PayloadHit bool // Whether the payload came from cache
}

func (s Stats) String() string {
	return fmt.Sprintf("%d rules, %d nodes, %d bytes", s.Rules, s.Nodes, s.Size)
}
