// Package config provides configuration loading and validation for config.json.
package config

// Config represents the complete config.json configuration.
type Config struct {
	BaseDir string         `json:"base_dir,omitempty"`
	Reports ReportsConfig  `json:"reports"`
	Output  *OutputConfig  `json:"output,omitempty"`
	Filters *FiltersConfig `json:"filters,omitempty"`
}

// ReportsConfig lists report file patterns per format.
type ReportsConfig struct {
	VSTest []string `json:"vstest,omitempty"`
	NUnit  []string `json:"nunit,omitempty"`
	XUnit  []string `json:"xunit,omitempty"`
	JUnit  []string `json:"junit,omitempty"`
	GoTest []string `json:"gotest,omitempty"`
}

// Empty reports whether no pattern is configured for any format.
func (r ReportsConfig) Empty() bool {
	return len(r.VSTest) == 0 && len(r.NUnit) == 0 && len(r.XUnit) == 0 &&
		len(r.JUnit) == 0 && len(r.GoTest) == 0
}

// ByFormat returns the patterns keyed by format name, in processing order.
func (r ReportsConfig) ByFormat() []FormatPatterns {
	return []FormatPatterns{
		{Format: "vstest", Patterns: r.VSTest},
		{Format: "nunit", Patterns: r.NUnit},
		{Format: "xunit", Patterns: r.XUnit},
		{Format: "junit", Patterns: r.JUnit},
		{Format: "gotest", Patterns: r.GoTest},
	}
}

// FormatPatterns pairs a format name with its patterns.
type FormatPatterns struct {
	Format   string
	Patterns []string
}

// OutputConfig configures where measures are written.
type OutputConfig struct {
	Format string `json:"format,omitempty"` // "text", "json" or "yaml"
	File   string `json:"file,omitempty"`   // empty means stdout
}

// FiltersConfig configures source file filtering.
type FiltersConfig struct {
	Index   string `json:"index,omitempty"`   // analysis index (YAML)
	Charset string `json:"charset,omitempty"` // charset used to read source files
}
