// Package wildcard resolves report file patterns to files on disk.
package wildcard

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// Provider lists the files matching a pattern relative to BaseDir.
//
// Supported syntax:
//   - "*" and "?" match within a single path segment
//   - "**" matches any number of directories
//   - "{a,b}" and "[abc]" as in doublestar
//
// Both "/" and "\" are accepted as separators.
type Provider struct {
	BaseDir string
}

// New creates a Provider rooted at baseDir.
func New(baseDir string) *Provider {
	return &Provider{BaseDir: baseDir}
}

// ListFiles returns the absolute paths of the regular files matching pattern,
// sorted and without duplicates. A pattern without matches yields an empty
// slice, not an error.
func (p *Provider) ListFiles(pattern string) ([]string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(pattern), `\`, "/")
	if normalized == "" {
		return nil, patternError(pattern, "pattern is empty", nil)
	}
	if !doublestar.ValidatePattern(normalized) {
		return nil, patternError(pattern, "invalid pattern syntax", doublestar.ErrBadPattern)
	}

	// Metacharacters in the base directory are literal; only the pattern is split.
	root, rel := doublestar.SplitPattern(normalized)
	if isAbs(normalized) {
		root = filepath.FromSlash(root)
	} else {
		baseDir, err := filepath.Abs(p.BaseDir)
		if err != nil {
			return nil, ierrors.Wrap(err, fmt.Sprintf("cannot resolve base directory %s", p.BaseDir))
		}
		root = filepath.Join(baseDir, filepath.FromSlash(root))
	}
	if rel == "" {
		rel = "."
	}
	matches, err := doublestar.Glob(os.DirFS(root), rel, doublestar.WithFilesOnly())
	if err != nil {
		return nil, patternError(pattern, err.Error(), err)
	}

	seen := make(map[string]bool, len(matches))
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		abs := filepath.Join(root, filepath.FromSlash(m))
		if seen[abs] {
			continue
		}
		seen[abs] = true
		files = append(files, abs)
	}
	sort.Strings(files)
	return files, nil
}

func isAbs(pattern string) bool {
	return path.IsAbs(pattern) || filepath.IsAbs(filepath.FromSlash(pattern))
}

func patternError(pattern, message string, cause error) *ierrors.ImportError {
	err := ierrors.PatternError("", pattern, message)
	err.Cause = cause
	return err
}
