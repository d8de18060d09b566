package testparser

import (
	"strings"
	"testing"
)

const xunitSample = `<?xml version="1.0" encoding="utf-8"?>
<assemblies timestamp="01/01/2024 10:00:00">
  <assembly name="A.Tests.dll" total="10" passed="7" failed="2" skipped="1" errors="1" time="1.250">
    <errors>
      <error type="assembly-cleanup" name="Fixture"/>
    </errors>
    <collection total="10" passed="7" failed="2" skipped="1" name="Collection" time="1.2">
      <test name="A.Test1" result="Pass" time="0.1"/>
    </collection>
  </assembly>
  <assembly name="B.Tests.dll" total="5" passed="5" failed="0" skipped="0" time="0,750"/>
</assemblies>`

func TestXUnitParser(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected UnitTestResults
	}{
		{
			name:     "assemblies",
			input:    xunitSample,
			expected: New(15, 1, 2, 1, SomeMillis(2000)),
		},
		{
			name:     "single assembly root",
			input:    `<assembly total="3" failed="1" skipped="0" time="0.1"/>`,
			expected: New(3, 0, 1, 0, SomeMillis(100)),
		},
		{
			name: "assembly without time",
			input: `<assemblies>
  <assembly total="3" failed="0" skipped="1"/>
  <assembly total="2" failed="0" skipped="0" time="0.5"/>
</assemblies>`,
			expected: New(5, 1, 0, 0, SomeMillis(500)),
		},
		{
			name:     "empty assemblies",
			input:    `<assemblies/>`,
			expected: UnitTestResults{},
		},
	}

	parser := &XUnitParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.Parse(writeReport(t, "xunit.xml", tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Parse() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestXUnitParserErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		input   string
		message string
		line    int
	}{
		{
			name:    "unexpected root",
			input:   `<testsuites/>`,
			message: "Expected either an <assemblies> or an <assembly> root tag, but got <testsuites> instead",
			line:    1,
		},
		{
			name:    "missing skipped",
			input:   "<assemblies>\n  <assembly total=\"1\" failed=\"0\"/>\n</assemblies>",
			message: `Missing attribute "skipped" in element <assembly>`,
			line:    2,
		},
		{
			name:    "second assembly invalid",
			input:   "<assemblies>\n  <assembly total=\"1\" failed=\"0\" skipped=\"0\"/>\n  <assembly total=\"x\" failed=\"0\" skipped=\"0\"/>\n</assemblies>",
			message: `Expected an integer instead of "x" for the attribute "total"`,
			line:    3,
		},
	}

	parser := &XUnitParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.Parse(writeReport(t, "xunit.xml", tt.input))
			pe := requireParseError(t, err)
			if got != (UnitTestResults{}) {
				t.Errorf("Parse() returned partial results %+v", got)
			}
			if !strings.Contains(pe.Message, tt.message) {
				t.Errorf("Message = %q, want to contain %q", pe.Message, tt.message)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}
