package testparser

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestGoTestParser(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected UnitTestResults
	}{
		{
			name: "all passing",
			input: `{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestFoo"}
{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/pkg","Test":"TestFoo","Output":"=== RUN   TestFoo\n"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestBar"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestBar","Elapsed":0.02}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Elapsed":0.25}`,
			expected: New(2, 0, 0, 0, SomeMillis(250)),
		},
		{
			name: "mixed results",
			input: `{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestPass"}
{"Time":"2024-01-01T00:00:00Z","Action":"pass","Package":"example.com/pkg","Test":"TestPass","Elapsed":0.01}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestFail"}
{"Time":"2024-01-01T00:00:00Z","Action":"fail","Package":"example.com/pkg","Test":"TestFail","Elapsed":0.02}
{"Time":"2024-01-01T00:00:00Z","Action":"run","Package":"example.com/pkg","Test":"TestSkip"}
{"Time":"2024-01-01T00:00:00Z","Action":"skip","Package":"example.com/pkg","Test":"TestSkip","Elapsed":0.0}
{"Time":"2024-01-01T00:00:00Z","Action":"fail","Package":"example.com/pkg","Elapsed":0.5}`,
			expected: New(3, 1, 1, 0, SomeMillis(500)),
		},
		{
			name: "subtests count individually",
			input: `{"Action":"pass","Package":"p","Test":"TestA/one","Elapsed":0}
{"Action":"pass","Package":"p","Test":"TestA/two","Elapsed":0}
{"Action":"pass","Package":"p","Test":"TestA","Elapsed":0}`,
			expected: New(3, 0, 0, 0, Millis{}),
		},
		{
			name: "build failure counts as an error",
			input: `# example.com/broken
broken.go:3:1: syntax error: non-declaration statement outside function body
{"Time":"2024-01-01T00:00:00Z","Action":"start","Package":"example.com/broken"}
{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/broken","Output":"FAIL\texample.com/broken [build failed]\n"}
{"Time":"2024-01-01T00:00:00Z","Action":"fail","Package":"example.com/broken","Elapsed":0}`,
			expected: New(1, 0, 0, 1, SomeMillis(0)),
		},
		{
			name: "multiple packages",
			input: `{"Action":"pass","Package":"a","Test":"TestA","Elapsed":0.1}
{"Action":"pass","Package":"a","Elapsed":0.1}
{"Action":"skip","Package":"b","Elapsed":0}
{"Action":"pass","Package":"c","Test":"TestC","Elapsed":0.2}
{"Action":"pass","Package":"c","Elapsed":0.3}`,
			expected: New(2, 0, 0, 0, SomeMillis(400)),
		},
		{
			name:     "empty input",
			input:    "",
			expected: UnitTestResults{},
		},
		{
			name:     "no test events",
			input:    `{"Time":"2024-01-01T00:00:00Z","Action":"output","Package":"example.com/pkg","Output":"building...\n"}`,
			expected: UnitTestResults{},
		},
	}

	parser := &GoTestParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := parser.Parse(writeReport(t, "test.json", tt.input))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("Parse() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestGoTestParserMalformedEvent(t *testing.T) {
	t.Parallel()
	input := `{"Action":"pass","Package":"p","Test":"TestA"}
{"Action":"pass","Package":
{"Action":"pass","Package":"p","Test":"TestB"}`

	path := writeReport(t, "test.json", input)
	got, err := (&GoTestParser{}).Parse(path)
	pe := requireParseError(t, err)
	if got != (UnitTestResults{}) {
		t.Errorf("Parse() returned partial results %+v", got)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
}

func TestGoTestParserLongOutputLine(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("x", 200*1024)
	input := `{"Action":"output","Package":"p","Test":"TestA","Output":"` + long + `"}
{"Action":"pass","Package":"p","Test":"TestA"}`

	got, err := (&GoTestParser{}).ParseJSON("test.json", strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if got.Tests != 1 {
		t.Errorf("Tests = %d, want 1", got.Tests)
	}
}

func TestGoTestParserLogsFailureReason(t *testing.T) {
	t.Parallel()
	input := `{"Action":"run","Package":"example.com/pkg","Test":"TestBar"}
{"Action":"output","Package":"example.com/pkg","Test":"TestBar","Output":"    bar_test.go:15: expected 42, got 0\n"}
{"Action":"fail","Package":"example.com/pkg","Test":"TestBar","Elapsed":0.02}`

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	parser := &GoTestParser{Logger: logger}

	if _, err := parser.ParseJSON("test.json", strings.NewReader(input)); err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "test=TestBar") {
		t.Errorf("log output missing test name: %s", out)
	}
	if !strings.Contains(out, `reason="expected 42, got 0"`) {
		t.Errorf("log output missing failure reason: %s", out)
	}
}

func TestExtractFailureReason(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		output   []string
		expected string
	}{
		{
			name:     "file and line",
			output:   []string{"=== RUN   TestBar\n", "    bar_test.go:15: expected 42, got 0\n", "--- FAIL: TestBar (0.00s)\n"},
			expected: "expected 42, got 0",
		},
		{
			name:     "fallback to first line",
			output:   []string{"=== RUN   TestBar\n", "panic: boom\n"},
			expected: "panic: boom",
		},
		{
			name:     "no output",
			output:   nil,
			expected: "",
		},
		{
			name:     "truncated",
			output:   []string{"x_test.go:1: " + strings.Repeat("a", 150)},
			expected: strings.Repeat("a", 97) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractFailureReason(tt.output); got != tt.expected {
				t.Errorf("extractFailureReason() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGoTestParserNegativeElapsed(t *testing.T) {
	t.Parallel()
	input := `{"Action":"pass","Package":"p","Test":"TestA","Elapsed":0.1}
{"Action":"pass","Package":"p","Elapsed":-2}`

	got, err := (&GoTestParser{}).Parse(writeReport(t, "test.json", input))
	pe := requireParseError(t, err)
	if got != (UnitTestResults{}) {
		t.Errorf("Parse() returned partial results %+v", got)
	}
	if pe.Line != 2 {
		t.Errorf("Line = %d, want 2", pe.Line)
	}
	if !strings.Contains(pe.Message, "Expected a duration between 0 and") {
		t.Errorf("Message = %q", pe.Message)
	}
}
