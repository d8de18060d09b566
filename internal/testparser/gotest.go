package testparser

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// maxEventSize bounds a single go test -json line. Output events can carry
// long log lines, well past bufio's 64KiB default.
const maxEventSize = 4 * 1024 * 1024

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time    string  `json:"Time"`
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
	Output  string  `json:"Output"`
}

// GoTestParser parses files holding go test -json output.
type GoTestParser struct {
	// Logger receives the reasons of failed tests at debug level. May be nil.
	Logger *slog.Logger
}

// Name returns the parser name.
func (p *GoTestParser) Name() string {
	return "gotest"
}

// Parse reads the go test -json output stored at path.
func (p *GoTestParser) Parse(path string) (UnitTestResults, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return UnitTestResults{}, ierrors.Wrap(err, fmt.Sprintf("cannot resolve report path %s", path))
	}
	f, err := os.Open(abs)
	if err != nil {
		return UnitTestResults{}, ierrors.Wrap(err, fmt.Sprintf("cannot open report file %s", abs))
	}

	results, parseErr := p.ParseJSON(abs, f)
	if closeErr := f.Close(); closeErr != nil {
		release := &ierrors.ReleaseError{Path: abs, Cause: closeErr}
		if parseErr != nil {
			return UnitTestResults{}, fmt.Errorf("%w; %w", parseErr, release)
		}
		return UnitTestResults{}, release
	}
	return results, parseErr
}

// ParseJSON parses go test -json output from r. Lines that are not JSON
// objects, such as build output interleaved by go test, are ignored.
// Each test and subtest counts once. A package that fails without any
// failing test (a build failure or a panic in TestMain) counts as one
// errored test. The Elapsed values of package-level events add up to the
// execution time.
func (p *GoTestParser) ParseJSON(path string, r io.Reader) (UnitTestResults, error) {
	var (
		results    UnitTestResults
		lineNumber int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	currentOutput := make(map[string][]string) // test name -> output lines
	failedInPackage := make(map[string]int)

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}

		var event TestEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			return UnitTestResults{}, &ierrors.ParseError{
				Message: "Error while parsing the test event: " + err.Error(),
				Path:    path,
				Line:    lineNumber,
				Cause:   err,
			}
		}

		if !validDuration(event.Elapsed) {
			return UnitTestResults{}, &ierrors.ParseError{
				Message: fmt.Sprintf("Expected a duration between 0 and %g seconds instead of %g for \"Elapsed\"", float64(maxDurationSeconds), event.Elapsed),
				Path:    path,
				Line:    lineNumber,
			}
		}

		if event.Test == "" {
			switch event.Action {
			case "pass", "fail":
				results.ExecutionTime = SomeMillis(results.ExecutionTime.Value + secondsToMillis(event.Elapsed))
				if event.Action == "fail" && failedInPackage[event.Package] == 0 {
					results.Tests++
					results.Errors++
				}
			case "skip":
				results.ExecutionTime = SomeMillis(results.ExecutionTime.Value + secondsToMillis(event.Elapsed))
			}
			continue
		}

		key := event.Package + " " + event.Test
		switch event.Action {
		case "output":
			if event.Output != "" {
				currentOutput[key] = append(currentOutput[key], event.Output)
			}
		case "pass":
			results.Tests++
			delete(currentOutput, key)
		case "fail":
			results.Tests++
			results.Failures++
			failedInPackage[event.Package]++
			p.logFailure(event, currentOutput[key])
			delete(currentOutput, key)
		case "skip":
			results.Tests++
			results.Skipped++
			delete(currentOutput, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return UnitTestResults{}, &ierrors.ParseError{
			Message: "Error while reading the test events: " + err.Error(),
			Path:    path,
			Line:    lineNumber + 1,
			Cause:   err,
		}
	}

	return results, nil
}

func (p *GoTestParser) logFailure(event TestEvent, output []string) {
	if p.Logger == nil {
		return
	}
	p.Logger.Debug("Failed test",
		"package", event.Package,
		"test", event.Test,
		"reason", extractFailureReason(output))
}

// extractFailureReason extracts the most relevant failure message from test output.
func extractFailureReason(outputLines []string) string {
	// Look for lines with file:line: pattern (typical Go test error format)
	for _, line := range outputLines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "=== RUN") ||
			strings.HasPrefix(trimmed, "--- FAIL") {
			continue
		}
		idx := strings.Index(trimmed, ".go:")
		if idx < 0 {
			continue
		}
		afterFile := trimmed[idx+4:]
		if colonIdx := strings.Index(afterFile, ": "); colonIdx != -1 {
			return truncateReason(strings.TrimSpace(afterFile[colonIdx+2:]))
		}
	}

	// Fallback: the first non-empty, non-boilerplate line
	for _, line := range outputLines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "=== RUN") &&
			!strings.HasPrefix(trimmed, "--- FAIL") && !strings.HasPrefix(trimmed, "--- PASS") {
			return truncateReason(trimmed)
		}
	}

	return ""
}

func truncateReason(reason string) string {
	const maxLen = 100
	if len(reason) > maxLen {
		return reason[:maxLen-3] + "..."
	}
	return reason
}
