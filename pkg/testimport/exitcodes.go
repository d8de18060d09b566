// Package testimport provides public constants for tools that run the
// testimport CLI.
package testimport

// Exit codes returned by the testimport CLI.
const (
	// ExitSuccess indicates the measures were written, or there was nothing to import.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure such as an unwritable output file.
	ExitFailure = 1

	// ExitConfigError indicates an invalid configuration, flag or pattern.
	ExitConfigError = 2

	// ExitReportError indicates a malformed or unreadable test report.
	ExitReportError = 3
)
