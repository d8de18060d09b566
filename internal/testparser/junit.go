package testparser

import (
	"fmt"

	"github.com/AndreyAkinshin/testimport/internal/xmlreader"
)

// JUnitParser parses JUnit-style XML reports.
type JUnitParser struct{}

// Name returns the parser name.
func (p *JUnitParser) Name() string {
	return "junit"
}

// Parse extracts test results from a JUnit XML report. Only top-level
// <testsuite> elements are counted since nested suites are included in
// their parent's totals:
//
//	<testsuites>
//	  <testsuite name="pkg" tests="3" failures="1" errors="0" skipped="1" time="0.25">
//	    <testcase .../>
//	  </testsuite>
//	</testsuites>
func (p *JUnitParser) Parse(path string) (UnitTestResults, error) {
	return parseXML(path, p.parse)
}

func (p *JUnitParser) parse(r *xmlreader.Reader) (UnitTestResults, error) {
	root, ok, err := r.NextStartTag()
	if err != nil {
		return UnitTestResults{}, err
	}
	switch {
	case ok && root == "testsuite":
		return p.handleSuite(r)
	case ok && root == "testsuites":
	default:
		return UnitTestResults{}, r.ParseError(fmt.Sprintf("Expected either a <testsuites> or a <testsuite> root tag, but got <%s> instead", root))
	}

	var results UnitTestResults
	depth := 1
	for depth > 0 {
		marker, ok, err := r.NextStartOrEndTag()
		if err != nil {
			return UnitTestResults{}, err
		}
		if !ok {
			break
		}
		if marker[1] == '/' {
			depth--
			continue
		}
		depth++
		if depth == 2 && marker == "<testsuite>" {
			partial, err := p.handleSuite(r)
			if err != nil {
				return UnitTestResults{}, err
			}
			results = results.Add(partial)
		}
	}
	return results, nil
}

func (p *JUnitParser) handleSuite(r *xmlreader.Reader) (UnitTestResults, error) {
	tests, err := r.RequiredIntAttribute("tests")
	if err != nil {
		return UnitTestResults{}, err
	}
	var counts [4]int
	for i, name := range []string{"failures", "errors", "skipped", "disabled"} {
		counts[i], err = r.IntAttributeOrZero(name)
		if err != nil {
			return UnitTestResults{}, err
		}
	}

	executionTime, err := durationAttribute(r, "time")
	if err != nil {
		return UnitTestResults{}, err
	}

	return New(tests, counts[2]+counts[3], counts[0], counts[1], executionTime), nil
}
