// Package testparser provides unit test report parsing for various test frameworks.
package testparser

import (
	"errors"
	"fmt"
	"math"

	"github.com/AndreyAkinshin/testimport/internal/xmlreader"
)

// Millis is an optional non-negative duration in milliseconds.
type Millis struct {
	Value int64
	Valid bool // false when no report supplied a value
}

// SomeMillis returns a present duration.
func SomeMillis(v int64) Millis {
	return Millis{Value: v, Valid: true}
}

// maxDurationSeconds bounds a single reported duration. Sums of many such
// values still fit in an int64 of milliseconds.
const maxDurationSeconds = 1e12

// secondsToMillis converts a decimal number of seconds as found in report
// attributes. Callers check the range with validDuration first.
func secondsToMillis(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}

func validDuration(seconds float64) bool {
	return seconds >= 0 && seconds <= maxDurationSeconds
}

// durationAttribute reads an optional duration in seconds. Negative and
// out of range values are parse errors.
func durationAttribute(r *xmlreader.Reader, name string) (Millis, error) {
	seconds, present, err := r.DoubleAttribute(name)
	if err != nil || !present {
		return Millis{}, err
	}
	if !validDuration(seconds) {
		return Millis{}, r.ParseError(fmt.Sprintf("Expected a duration between 0 and %g seconds instead of %g for the attribute %q", float64(maxDurationSeconds), seconds, name))
	}
	return SomeMillis(secondsToMillis(seconds)), nil
}

// UnitTestResults holds aggregated unit test result counts.
// Errors, Failures and Skipped are subsets of Tests.
type UnitTestResults struct {
	Tests         int
	Errors        int
	Failures      int
	Skipped       int
	ExecutionTime Millis
}

// New builds the partial result of a single report element.
func New(tests, skipped, failures, errs int, executionTime Millis) UnitTestResults {
	return UnitTestResults{
		Tests:         tests,
		Errors:        errs,
		Failures:      failures,
		Skipped:       skipped,
		ExecutionTime: executionTime,
	}
}

// Add returns the sum of two results without modifying either.
// Counts are summed. ExecutionTime stays absent only when both sides are
// absent; an absent side contributes nothing once the other side is present.
func (r UnitTestResults) Add(other UnitTestResults) UnitTestResults {
	sum := UnitTestResults{
		Tests:         r.Tests + other.Tests,
		Errors:        r.Errors + other.Errors,
		Failures:      r.Failures + other.Failures,
		Skipped:       r.Skipped + other.Skipped,
		ExecutionTime: r.ExecutionTime,
	}
	if other.ExecutionTime.Valid {
		sum.ExecutionTime = SomeMillis(r.ExecutionTime.Value + other.ExecutionTime.Value)
	}
	return sum
}

// Parser defines the interface for report file parsers.
type Parser interface {
	// Parse reads the report at path and returns the results it describes.
	Parse(path string) (UnitTestResults, error)
	// Name returns the name of the parser.
	Name() string
}

// parseXML opens path, runs fn over it and releases the reader. A release
// failure is reported even when fn succeeded.
func parseXML(path string, fn func(r *xmlreader.Reader) (UnitTestResults, error)) (UnitTestResults, error) {
	r, err := xmlreader.Open(path)
	if err != nil {
		return UnitTestResults{}, err
	}

	results, parseErr := fn(r)
	closeErr := r.Close()

	switch {
	case parseErr != nil && closeErr != nil:
		return UnitTestResults{}, errors.Join(parseErr, closeErr)
	case parseErr != nil:
		return UnitTestResults{}, parseErr
	case closeErr != nil:
		return UnitTestResults{}, closeErr
	}
	return results, nil
}
