package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rmerrors "github.com/matzehuels/railmacro/pkg/errors"
	"github.com/matzehuels/railmacro/pkg/pipeline"
	"github.com/matzehuels/railmacro/pkg/splice/rustsrc"
)

// stdinPath selects standard input as the source.
const stdinPath = "-"

// macroSource is one declaration to draw.
type macroSource struct {
	File   string
	Line   int
	Name   string
	Text   string
	Origin pipeline.Origin // set for declarations cut from a Rust file
}

// label identifies the source in messages.
func (s macroSource) label() string {
	name := s.Name
	if name == "" {
		name = "<clauses>"
	}
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d %s", s.File, s.Line, name)
	}
	return fmt.Sprintf("%s %s", s.File, name)
}

// readSources loads the declarations of path. Rust files yield every
// macro_rules! item; any other file is one declaration or clause list.
func readSources(path string, stdin io.Reader) ([]macroSource, error) {
	text, err := readInput(path, stdin)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) != ".rs" {
		return []macroSource{{File: path, Text: text}}, nil
	}

	items, err := rustsrc.Scan(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	srcs := make([]macroSource, len(items))
	for i, it := range items {
		srcs[i] = macroSource{
			File:   path,
			Line:   it.Line(text),
			Name:   it.Name,
			Text:   it.Source,
			Origin: pipeline.Origin{File: text, Offset: it.AttrsEnd},
		}
	}
	return srcs, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == stdinPath {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	if err := rmerrors.ValidatePath(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", rmerrors.Wrap(rmerrors.ErrCodeFileNotFound, err, "%s", path)
		}
		return "", err
	}
	return string(data), nil
}

// selectMacro picks the declaration named name, or the only one.
func selectMacro(srcs []macroSource, name string) (macroSource, error) {
	if name != "" {
		for _, s := range srcs {
			if s.Name == name {
				return s, nil
			}
		}
		return macroSource{}, rmerrors.New(rmerrors.ErrCodeInvalidInput, "no macro named %q", name)
	}
	switch len(srcs) {
	case 0:
		return macroSource{}, rmerrors.New(rmerrors.ErrCodeInvalidInput, "no macro_rules! declaration found")
	case 1:
		return srcs[0], nil
	}
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name
	}
	return macroSource{}, rmerrors.New(rmerrors.ErrCodeInvalidInput,
		"several macros found (%s); pick one with --macro", strings.Join(names, ", "))
}
