package testparser

import (
	"errors"
	"strings"
	"testing"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
)

// FuzzGoTestParser tests the go test -json parser with arbitrary input.
// Run: go test -fuzz=FuzzGoTestParser -fuzztime=30s ./internal/testparser
func FuzzGoTestParser(f *testing.F) {
	seeds := []string{
		`{"Action":"pass","Package":"p","Test":"TestA","Elapsed":0.1}`,
		`{"Action":"fail","Package":"p","Test":"TestA"}` + "\n" + `{"Action":"fail","Package":"p","Elapsed":1}`,
		`{"Action":"skip","Package":"p","Test":"TestA/sub"}`,
		`{"Action":"fail","Package":"p"}`,
		"",
		"\n",
		"building...\n",
		"{",
		`{"Action":1}`,
		`{"Elapsed":-5,"Action":"pass","Package":"p"}`,
		"# pkg\n" + strings.Repeat("x", 10000),
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	parser := &GoTestParser{}
	f.Fuzz(func(t *testing.T, input string) {
		result, err := parser.ParseJSON("fuzz.json", strings.NewReader(input))
		if err != nil {
			var pe *ierrors.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if result != (UnitTestResults{}) {
				t.Errorf("error returned with partial results %+v", result)
			}
			return
		}

		if result.Tests < 0 || result.Failures < 0 || result.Skipped < 0 || result.Errors < 0 {
			t.Errorf("negative count: %+v", result)
		}
		if result.Failures+result.Skipped+result.Errors > result.Tests {
			t.Errorf("subsets exceed tests: %+v", result)
		}
	})
}

// FuzzNUnitParser tests the NUnit parser with arbitrary documents.
// Run: go test -fuzz=FuzzNUnitParser -fuzztime=30s ./internal/testparser
func FuzzNUnitParser(f *testing.F) {
	seeds := []string{
		nunit2Sample,
		nunit3Sample,
		`<test-results total="1" errors="0" failures="0"/>`,
		`<test-run total="1" failed="0" duration="1,5"/>`,
		`<test-results total="-1" errors="0" failures="0"/>`,
		"",
		"<",
		`<test-results total="1"`,
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	parser := &NUnitParser{}
	f.Fuzz(func(t *testing.T, input string) {
		path := writeReport(t, "fuzz.xml", input)
		result, err := parser.Parse(path)
		if err != nil {
			var pe *ierrors.ParseError
			if !errors.As(err, &pe) {
				t.Errorf("unexpected error type %T: %v", err, err)
			}
			if pe != nil && pe.Path != path {
				t.Errorf("Path = %q, want %q", pe.Path, path)
			}
			if result != (UnitTestResults{}) {
				t.Errorf("error returned with partial results %+v", result)
			}
		}
	})
}
