package testparser

import (
	"fmt"
	"time"

	"github.com/AndreyAkinshin/testimport/internal/xmlreader"
)

// VSTestParser parses Visual Studio test result (.trx) files.
type VSTestParser struct{}

// Name returns the parser name.
func (p *VSTestParser) Name() string {
	return "vstest"
}

// Parse extracts test results from a .trx file.
// The run summary looks like:
//
//	<TestRun>
//	  <Times start="2024-01-01T10:00:00.000+00:00" finish="2024-01-01T10:00:01.500+00:00"/>
//	  <ResultSummary outcome="Failed">
//	    <Counters total="12" executed="11" passed="9" failed="1" error="1" timeout="0" aborted="0" inconclusive="1" .../>
//	  </ResultSummary>
//	</TestRun>
func (p *VSTestParser) Parse(path string) (UnitTestResults, error) {
	return parseXML(path, p.parse)
}

func (p *VSTestParser) parse(r *xmlreader.Reader) (UnitTestResults, error) {
	if err := r.CheckRootTag("TestRun"); err != nil {
		return UnitTestResults{}, err
	}

	var (
		results       UnitTestResults
		executionTime Millis
		foundCounters bool
	)
	for {
		tag, ok, err := r.NextStartTag()
		if err != nil {
			return UnitTestResults{}, err
		}
		if !ok {
			break
		}

		switch tag {
		case "Times":
			executionTime, err = p.handleTimes(r)
			if err != nil {
				return UnitTestResults{}, err
			}
		case "Counters":
			foundCounters = true
			results, err = p.handleCounters(r)
			if err != nil {
				return UnitTestResults{}, err
			}
		}
	}

	if !foundCounters {
		return UnitTestResults{}, r.ParseError("The mandatory <Counters> tag is missing")
	}
	results.ExecutionTime = executionTime
	return results, nil
}

func (p *VSTestParser) handleCounters(r *xmlreader.Reader) (UnitTestResults, error) {
	var counters [6]int
	for i, name := range []string{"passed", "failed", "error", "timeout", "aborted", "inconclusive"} {
		v, err := r.IntAttributeOrZero(name)
		if err != nil {
			return UnitTestResults{}, err
		}
		counters[i] = v
	}
	passed, failed, errored, timeout, aborted, inconclusive :=
		counters[0], counters[1], counters[2], counters[3], counters[4], counters[5]

	tests := passed + failed + errored + timeout + aborted
	failures := failed + timeout + aborted
	return New(tests, inconclusive, failures, errored, Millis{}), nil
}

func (p *VSTestParser) handleTimes(r *xmlreader.Reader) (Millis, error) {
	startRaw, hasStart := r.Attribute("start")
	finishRaw, hasFinish := r.Attribute("finish")
	if !hasStart || !hasFinish {
		return Millis{}, nil
	}

	start, err := p.parseDate(r, "start", startRaw)
	if err != nil {
		return Millis{}, err
	}
	finish, err := p.parseDate(r, "finish", finishRaw)
	if err != nil {
		return Millis{}, err
	}

	elapsed := finish.Sub(start).Milliseconds()
	if elapsed < 0 {
		return Millis{}, r.ParseError(fmt.Sprintf("The \"finish\" date %q is before the \"start\" date %q", finishRaw, startRaw))
	}
	return SomeMillis(elapsed), nil
}

func (p *VSTestParser) parseDate(r *xmlreader.Reader, name, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, r.ParseError(fmt.Sprintf("Expected a valid date and time instead of %q for the attribute %q", value, name))
	}
	return t, nil
}
