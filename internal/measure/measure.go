// Package measure turns aggregated test results into named measures and
// writes them out.
package measure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	ierrors "github.com/AndreyAkinshin/testimport/internal/errors"
	"github.com/AndreyAkinshin/testimport/internal/testparser"
)

// Metric keys.
const (
	Tests             = "tests"
	TestErrors        = "test_errors"
	TestFailures      = "test_failures"
	SkippedTests      = "skipped_tests"
	TestExecutionTime = "test_execution_time"
)

// Measure is a single named value reported for the project.
type Measure struct {
	Metric string
	Value  int64
}

// FromResults converts results to measures. The execution time is only
// reported when at least one report supplied it.
func FromResults(r testparser.UnitTestResults) []Measure {
	measures := []Measure{
		{Metric: Tests, Value: int64(r.Tests)},
		{Metric: TestErrors, Value: int64(r.Errors)},
		{Metric: TestFailures, Value: int64(r.Failures)},
		{Metric: SkippedTests, Value: int64(r.Skipped)},
	}
	if r.ExecutionTime.Valid {
		measures = append(measures, Measure{Metric: TestExecutionTime, Value: r.ExecutionTime.Value})
	}
	return measures
}

// Sink receives measures. Flush must be called once all measures are saved.
type Sink interface {
	Save(m Measure) error
	Flush() error
}

// Formats lists the supported sink formats.
var Formats = []string{"text", "json", "yaml"}

// NewSink creates a sink writing the given format to w.
func NewSink(format string, w io.Writer) (Sink, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return &TextSink{w: w}, nil
	case "json":
		return &JSONSink{w: w}, nil
	case "yaml", "yml":
		return &YAMLSink{w: w}, nil
	default:
		return nil, ierrors.Configf("unknown output format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

// TextSink writes one "metric: value" line per measure.
type TextSink struct {
	w io.Writer
}

// Save writes the measure immediately.
func (s *TextSink) Save(m Measure) error {
	_, err := fmt.Fprintf(s.w, "%s: %d\n", m.Metric, m.Value)
	return err
}

// Flush is a no-op.
func (s *TextSink) Flush() error {
	return nil
}

// JSONSink collects measures and writes them as a single JSON object,
// keeping the order in which they were saved.
type JSONSink struct {
	w        io.Writer
	measures []Measure
}

// Save buffers the measure until Flush.
func (s *JSONSink) Save(m Measure) error {
	s.measures = append(s.measures, m)
	return nil
}

// Flush writes the buffered measures.
func (s *JSONSink) Flush() error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, m := range s.measures {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(m.Metric)
		if err != nil {
			return err
		}
		fmt.Fprintf(&buf, "\n  %s: %d", key, m.Value)
	}
	if len(s.measures) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	s.measures = nil
	_, err := s.w.Write(buf.Bytes())
	return err
}

// YAMLSink collects measures and writes them as a YAML mapping.
type YAMLSink struct {
	w        io.Writer
	measures []Measure
}

// Save buffers the measure until Flush.
func (s *YAMLSink) Save(m Measure) error {
	s.measures = append(s.measures, m)
	return nil
}

// Flush writes the buffered measures.
func (s *YAMLSink) Flush() error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, m := range s.measures {
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: m.Metric},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", m.Value)},
		)
	}
	s.measures = nil

	enc := yaml.NewEncoder(s.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
