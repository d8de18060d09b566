// Package filefilter decides which source files take part in an import,
// based on the analysis index written by the analyzer: per-file encodings
// and the list of generated files.
package filefilter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/ianaindex"
	"gopkg.in/yaml.v3"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// Index is the on-disk analysis index.
//
//	encodings:
//	  src/Program.cs: utf-8
//	  src/Legacy.cs: null
//	generated:
//	  - obj/Debug/AssemblyInfo.cs
type Index struct {
	Encodings map[string]*string `yaml:"encodings"`
	Generated []string           `yaml:"generated"`
}

// LoadIndex reads the analysis index at path. Relative file paths in the
// index are resolved against baseDir.
func LoadIndex(path, baseDir string, logger *slog.Logger) (*EncodingIndex, *GeneratedFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ierrors.NotFound("analysis index", path)
		}
		return nil, nil, ierrors.Wrap(err, fmt.Sprintf("failed to read analysis index %s", path))
	}

	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, nil, &ierrors.ImportError{
			Kind:    ierrors.KindConfig,
			Message: fmt.Sprintf("invalid analysis index %s: %v", path, err),
			Cause:   err,
		}
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, nil, ierrors.Wrap(err, fmt.Sprintf("cannot resolve base directory %s", baseDir))
	}
	resolve := func(p string) string {
		p = filepath.FromSlash(strings.ReplaceAll(p, `\`, "/"))
		if !filepath.IsAbs(p) {
			p = filepath.Join(absBase, p)
		}
		return filepath.Clean(p)
	}

	encodings := NewEncodingIndex(logger)
	for file, cs := range idx.Encodings {
		name := ""
		if cs != nil {
			name = *cs
		}
		encodings.Set(resolve(file), name)
	}

	generated := NewGeneratedFilter(logger)
	for _, file := range idx.Generated {
		generated.Add(resolve(file))
	}

	return encodings, generated, nil
}

// EncodingIndex holds the charset the analyzer detected for each file.
type EncodingIndex struct {
	charsets map[string]string // abs path -> charset, "" when unknown
	logger   *slog.Logger
}

// NewEncodingIndex creates an empty index. A nil logger uses slog.Default().
func NewEncodingIndex(logger *slog.Logger) *EncodingIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &EncodingIndex{charsets: make(map[string]string), logger: logger}
}

// Set records the charset of path. An empty charset marks the encoding as
// unknown.
func (e *EncodingIndex) Set(path, charsetName string) {
	e.charsets[path] = charsetName
}

// Len returns the number of indexed files.
func (e *EncodingIndex) Len() int {
	return len(e.charsets)
}

// Match reports whether the analyzer read path with the same charset as
// hostCharset. Files the analyzer never saw always match.
func (e *EncodingIndex) Match(path, hostCharset string) bool {
	analyzerCharset, ok := e.charsets[path]
	if !ok {
		return true
	}
	if analyzerCharset == "" {
		e.logger.Warn(fmt.Sprintf("File '%s' does not have encoding information. Skip it.", path))
		return false
	}

	host := Canonical(hostCharset)
	analyzer := Canonical(analyzerCharset)
	if host == analyzer {
		return true
	}
	// The analyzer reports BOM-less UTF-16 where the host picks the byte order.
	if host == "UTF-16LE" && analyzer == "UTF-16" {
		return true
	}

	e.logger.Warn(fmt.Sprintf("Encoding detected by the analyzer and encoding used by the host do not match for file %s. "+
		"Host encoding is '%s', analyzer encoding is '%s'. File will be skipped.", path, host, analyzer))
	return false
}

// Canonical returns the IANA name of a charset label, so that aliases such
// as "utf8", "csUTF8" and "UTF-8" compare equal. Unknown labels are returned
// upper-cased.
func Canonical(label string) string {
	label = strings.TrimSpace(label)
	if enc, err := ianaindex.IANA.Encoding(label); err == nil && enc != nil {
		if name, err := ianaindex.IANA.Name(enc); err == nil {
			return name
		}
	}
	// WHATWG labels cover common aliases the IANA registry lacks.
	if enc, _ := charset.Lookup(label); enc != nil {
		if name, err := ianaindex.IANA.Name(enc); err == nil {
			return name
		}
	}
	return strings.ToUpper(label)
}

// Known reports whether label names a charset in the IANA or WHATWG registries.
func Known(label string) bool {
	label = strings.TrimSpace(label)
	if _, err := ianaindex.IANA.Encoding(label); err == nil {
		return true
	}
	enc, _ := charset.Lookup(label)
	return enc != nil
}

// GeneratedFilter rejects files the analyzer marked as generated.
type GeneratedFilter struct {
	generated map[string]bool
	logger    *slog.Logger
}

// NewGeneratedFilter creates an empty filter. A nil logger uses slog.Default().
func NewGeneratedFilter(logger *slog.Logger) *GeneratedFilter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratedFilter{generated: make(map[string]bool), logger: logger}
}

// Add marks path as generated.
func (g *GeneratedFilter) Add(path string) {
	g.generated[path] = true
}

// Len returns the number of generated files.
func (g *GeneratedFilter) Len() int {
	return len(g.generated)
}

// Accept reports whether path is not a generated file.
func (g *GeneratedFilter) Accept(path string) bool {
	if g.generated[path] {
		g.logger.Debug("Skipping auto generated file: " + path)
		return false
	}
	return true
}
