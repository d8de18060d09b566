// Package aggregate folds the unit test reports matched by configured
// patterns into a single result.
package aggregate

import (
	"errors"
	"log/slog"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
	"github.com/AndreyAkinshin/testimport/internal/testparser"
)

// FileProvider resolves a pattern to the absolute paths of matching files.
type FileProvider interface {
	ListFiles(pattern string) ([]string, error)
}

// Config holds the report patterns per format.
type Config struct {
	VSTest []string
	NUnit  []string
	XUnit  []string
	JUnit  []string
	GoTest []string
}

// HasUnitTestResultsProperty reports whether any pattern is configured.
func (c Config) HasUnitTestResultsProperty() bool {
	for _, f := range c.formats() {
		if len(f.patterns) > 0 {
			return true
		}
	}
	return false
}

type formatPatterns struct {
	format   string
	label    string
	patterns []string
}

// formats lists the configured formats in processing order.
func (c Config) formats() []formatPatterns {
	return []formatPatterns{
		{"vstest", "Visual Studio Test Results", c.VSTest},
		{"nunit", "NUnit Test Results", c.NUnit},
		{"xunit", "xUnit Test Results", c.XUnit},
		{"junit", "JUnit", c.JUnit},
		{"gotest", "go test -json", c.GoTest},
	}
}

// Aggregator parses every report matched by its Config and sums the results.
type Aggregator struct {
	config   Config
	registry *testparser.Registry
	logger   *slog.Logger
}

// New creates an Aggregator. A nil registry uses the built-in parsers and a
// nil logger uses slog.Default().
func New(cfg Config, registry *testparser.Registry, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = testparser.NewRegistry(logger)
	}
	return &Aggregator{
		config:   cfg,
		registry: registry,
		logger:   logger,
	}
}

// HasUnitTestResultsProperty reports whether any report pattern is configured.
func (a *Aggregator) HasUnitTestResultsProperty() bool {
	return a.config.HasUnitTestResultsProperty()
}

// Aggregate resolves every configured pattern with provider, parses each
// matched file and adds the results to initial. Files are processed one at
// a time in pattern order. The first failure aborts the aggregation; the
// results collected so far are discarded.
func (a *Aggregator) Aggregate(provider FileProvider, initial testparser.UnitTestResults) (testparser.UnitTestResults, error) {
	results := initial
	for _, f := range a.config.formats() {
		if len(f.patterns) == 0 {
			continue
		}
		parser := a.registry.GetParser(f.format)
		if parser == nil {
			return testparser.UnitTestResults{}, ierrors.Configf("no parser registered for format %q", f.format)
		}
		for _, pattern := range f.patterns {
			partial, err := a.aggregatePattern(provider, parser, f, pattern)
			if err != nil {
				return testparser.UnitTestResults{}, err
			}
			results = results.Add(partial)
		}
	}
	return results, nil
}

func (a *Aggregator) aggregatePattern(provider FileProvider, parser testparser.Parser, f formatPatterns, pattern string) (testparser.UnitTestResults, error) {
	files, err := provider.ListFiles(pattern)
	if err != nil {
		return testparser.UnitTestResults{}, listError(f.format, pattern, err)
	}
	if len(files) == 0 {
		a.logger.Warn("Could not find any "+f.label+" file matching the pattern", "pattern", pattern)
		return testparser.UnitTestResults{}, nil
	}

	var results testparser.UnitTestResults
	for _, file := range files {
		a.logger.Info("Parsing "+f.label, "file", file)
		partial, err := parser.Parse(file)
		if err != nil {
			return testparser.UnitTestResults{}, err
		}
		a.logger.Debug("Parsed "+f.label, "file", file,
			"tests", partial.Tests,
			"errors", partial.Errors,
			"failures", partial.Failures,
			"skipped", partial.Skipped)
		results = results.Add(partial)
	}
	return results, nil
}

// listError ties a file listing failure to the format and pattern that caused it.
func listError(format, pattern string, err error) error {
	wrapped := ierrors.PatternError(format, pattern, err.Error())
	var ie *ierrors.ImportError
	if errors.As(err, &ie) {
		wrapped.Kind = ie.Kind
		wrapped.Message = ie.Message
	} else {
		wrapped.Kind = ierrors.KindRuntime
	}
	wrapped.Cause = err
	return wrapped
}
