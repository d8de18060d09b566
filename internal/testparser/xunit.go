package testparser

import (
	"fmt"

	"github.com/AndreyAkinshin/testimport/internal/xmlreader"
)

// XUnitParser parses xUnit.net v1 and v2 result files.
type XUnitParser struct{}

// Name returns the parser name.
func (p *XUnitParser) Name() string {
	return "xunit"
}

// Parse extracts test results from an xUnit result file. Each <assembly>
// element contributes its own counts:
//
//	<assemblies>
//	  <assembly name="A.dll" total="10" passed="7" failed="2" skipped="1" errors="0" time="1,234"/>
//	</assemblies>
func (p *XUnitParser) Parse(path string) (UnitTestResults, error) {
	return parseXML(path, p.parse)
}

func (p *XUnitParser) parse(r *xmlreader.Reader) (UnitTestResults, error) {
	tag, ok, err := r.NextStartTag()
	if err != nil {
		return UnitTestResults{}, err
	}
	if !ok || (tag != "assemblies" && tag != "assembly") {
		return UnitTestResults{}, r.ParseError(fmt.Sprintf("Expected either an <assemblies> or an <assembly> root tag, but got <%s> instead", tag))
	}

	var results UnitTestResults
	for ok {
		if tag == "assembly" {
			partial, err := p.handleAssembly(r)
			if err != nil {
				return UnitTestResults{}, err
			}
			results = results.Add(partial)
		}
		tag, ok, err = r.NextStartTag()
		if err != nil {
			return UnitTestResults{}, err
		}
	}
	return results, nil
}

func (p *XUnitParser) handleAssembly(r *xmlreader.Reader) (UnitTestResults, error) {
	total, err := r.RequiredIntAttribute("total")
	if err != nil {
		return UnitTestResults{}, err
	}
	failed, err := r.RequiredIntAttribute("failed")
	if err != nil {
		return UnitTestResults{}, err
	}
	skipped, err := r.RequiredIntAttribute("skipped")
	if err != nil {
		return UnitTestResults{}, err
	}
	errs, err := r.IntAttributeOrZero("errors")
	if err != nil {
		return UnitTestResults{}, err
	}

	executionTime, err := durationAttribute(r, "time")
	if err != nil {
		return UnitTestResults{}, err
	}

	return New(total, skipped, failed, errs, executionTime), nil
}
