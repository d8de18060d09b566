package config

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AndreyAkinshin/testimport/internal/filefilter"
)

// OutputFormats lists the accepted values of output.format.
var OutputFormats = []string{"text", "json", "yaml"}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
func Validate(cfg *Config) (warnings []string, err error) {
	reportWarnings, err := validateReports(cfg.Reports)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, reportWarnings...)

	if err := validateOutput(cfg.Output); err != nil {
		return nil, err
	}

	warnings = append(warnings, validateFilters(cfg.Filters)...)
	return warnings, nil
}

func validateReports(reports ReportsConfig) ([]string, error) {
	var warnings []string
	for _, fp := range reports.ByFormat() {
		seen := make(map[string]bool, len(fp.Patterns))
		for i, pattern := range fp.Patterns {
			if problem := patternProblem(pattern); problem != "" {
				return nil, &ValidationError{
					Field:   fmt.Sprintf("reports.%s[%d]", fp.Format, i),
					Message: problem,
				}
			}
			if seen[pattern] {
				warnings = append(warnings, fmt.Sprintf("reports.%s: pattern %q is listed more than once; matching reports are counted for each occurrence", fp.Format, pattern))
			}
			seen[pattern] = true
		}
	}
	return warnings, nil
}

func validateOutput(out *OutputConfig) error {
	if out == nil || out.Format == "" {
		return nil
	}
	for _, f := range OutputFormats {
		if strings.EqualFold(out.Format, f) {
			return nil
		}
	}
	return &ValidationError{
		Field:   "output.format",
		Message: fmt.Sprintf("must be one of %s", strings.Join(OutputFormats, ", ")),
	}
}

func validateFilters(filters *FiltersConfig) []string {
	if filters == nil || filters.Charset == "" {
		return nil
	}
	if !filefilter.Known(filters.Charset) {
		return []string{fmt.Sprintf("filters.charset: unrecognized charset %q", filters.Charset)}
	}
	return nil
}

// ValidatePattern checks that a report pattern is non-empty and well formed.
// Backslashes are treated as path separators.
func ValidatePattern(pattern string) error {
	if problem := patternProblem(pattern); problem != "" {
		return &ValidationError{Field: "pattern", Message: problem}
	}
	return nil
}

func patternProblem(pattern string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(pattern), `\`, "/")
	if normalized == "" {
		return "is required"
	}
	if !doublestar.ValidatePattern(normalized) {
		return fmt.Sprintf("%q is not a valid glob pattern", pattern)
	}
	return ""
}
