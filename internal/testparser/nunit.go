package testparser

import (
	"fmt"

	"github.com/AndreyAkinshin/testimport/internal/xmlreader"
)

// NUnitParser parses NUnit 2 (<test-results>) and NUnit 3 (<test-run>) result files.
type NUnitParser struct{}

// Name returns the parser name.
func (p *NUnitParser) Name() string {
	return "nunit"
}

// Parse extracts test results from an NUnit result file.
// NUnit 2 puts the counts on the root element and the timings on the
// directly nested suites:
//
//	<test-results total="10" errors="1" failures="2" not-run="3" inconclusive="1" ignored="2" skipped="0" invalid="0">
//	  <test-suite type="Assembly" time="1.234">...</test-suite>
//	</test-results>
//
// NUnit 3 carries everything on the root:
//
//	<test-run testcasecount="10" total="10" passed="6" failed="2" inconclusive="1" skipped="1" duration="0.51">
func (p *NUnitParser) Parse(path string) (UnitTestResults, error) {
	return parseXML(path, p.parse)
}

func (p *NUnitParser) parse(r *xmlreader.Reader) (UnitTestResults, error) {
	root, ok, err := r.NextStartTag()
	if err != nil {
		return UnitTestResults{}, err
	}
	if !ok {
		root = ""
	}

	switch root {
	case "test-results":
		return p.parseV2(r)
	case "test-run":
		return p.parseV3(r)
	default:
		return UnitTestResults{}, r.ParseError(fmt.Sprintf("Missing root element <test-results> or <test-run>, got <%s>", root))
	}
}

func (p *NUnitParser) parseV2(r *xmlreader.Reader) (UnitTestResults, error) {
	total, err := r.RequiredIntAttribute("total")
	if err != nil {
		return UnitTestResults{}, err
	}
	errs, err := r.RequiredIntAttribute("errors")
	if err != nil {
		return UnitTestResults{}, err
	}
	failures, err := r.RequiredIntAttribute("failures")
	if err != nil {
		return UnitTestResults{}, err
	}
	// Older NUnit 2 versions only write not-run.
	inconclusive, err := r.IntAttributeOrZero("inconclusive")
	if err != nil {
		return UnitTestResults{}, err
	}
	ignored, err := r.IntAttributeOrZero("ignored")
	if err != nil {
		return UnitTestResults{}, err
	}

	executionTime, err := p.nestedSuiteTime(r)
	if err != nil {
		return UnitTestResults{}, err
	}

	tests := total - inconclusive
	skipped := inconclusive + ignored
	return New(tests, skipped, failures, errs, executionTime), nil
}

// nestedSuiteTime sums the time attribute of the <test-suite> elements
// directly nested under the root. Deeper suites are already included in
// their parent's time.
func (p *NUnitParser) nestedSuiteTime(r *xmlreader.Reader) (Millis, error) {
	var total Millis
	depth := 1
	for depth > 0 {
		marker, ok, err := r.NextStartOrEndTag()
		if err != nil {
			return Millis{}, err
		}
		if !ok {
			break
		}
		if marker[1] == '/' {
			depth--
			continue
		}
		depth++
		if depth != 2 || marker != "<test-suite>" {
			continue
		}
		suiteTime, err := durationAttribute(r, "time")
		if err != nil {
			return Millis{}, err
		}
		if suiteTime.Valid {
			total = SomeMillis(total.Value + suiteTime.Value)
		}
	}
	return total, nil
}

func (p *NUnitParser) parseV3(r *xmlreader.Reader) (UnitTestResults, error) {
	total, err := r.RequiredIntAttribute("total")
	if err != nil {
		return UnitTestResults{}, err
	}
	failed, err := r.RequiredIntAttribute("failed")
	if err != nil {
		return UnitTestResults{}, err
	}
	inconclusive, err := r.IntAttributeOrZero("inconclusive")
	if err != nil {
		return UnitTestResults{}, err
	}
	skipped, err := r.IntAttributeOrZero("skipped")
	if err != nil {
		return UnitTestResults{}, err
	}

	executionTime, err := durationAttribute(r, "duration")
	if err != nil {
		return UnitTestResults{}, err
	}

	return New(total-inconclusive, skipped+inconclusive, failed, 0, executionTime), nil
}
