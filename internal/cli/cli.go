// Package cli provides command-line interface functionality for testimport.
package cli

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/testimport/internal/config"
	"github.com/AndreyAkinshin/testimport/internal/errors"
	"github.com/AndreyAkinshin/testimport/internal/measure"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		out.Println("testimport %s", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.ExitConfigError
	}

	if len(remaining) == 0 {
		printUsage()
		return 0
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "import":
		return cmdImport(cmdArgs, opts)
	case "filter":
		return cmdFilter(cmdArgs, opts)
	case "config":
		return cmdConfig(cmdArgs, opts)
	default:
		out.ErrorPrefix("unknown command %q", cmd)
		out.Hint("run 'testimport help' for usage")
		return errors.ExitConfigError
	}
}

// GlobalOptions holds parsed global flags.
type GlobalOptions struct {
	Quiet      bool
	Verbose    bool
	ConfigPath string
	BaseDir    string
	Format     string
	OutputFile string
	Index      string
	Charset    string
	// Reports holds patterns given on the command line. A format with
	// patterns here replaces the configured patterns of that format.
	Reports config.ReportsConfig
}

// hasReportOverrides reports whether any report pattern was given as a flag.
func (o *GlobalOptions) hasReportOverrides() bool {
	return !o.Reports.Empty()
}

// valueFlags maps flags taking a value to the option they set.
var valueFlags = map[string]func(o *GlobalOptions, v string){
	"--config":   func(o *GlobalOptions, v string) { o.ConfigPath = v },
	"--base-dir": func(o *GlobalOptions, v string) { o.BaseDir = v },
	"--format":   func(o *GlobalOptions, v string) { o.Format = v },
	"--output":   func(o *GlobalOptions, v string) { o.OutputFile = v },
	"-o":         func(o *GlobalOptions, v string) { o.OutputFile = v },
	"--index":    func(o *GlobalOptions, v string) { o.Index = v },
	"--charset":  func(o *GlobalOptions, v string) { o.Charset = v },
	"--vstest":   func(o *GlobalOptions, v string) { o.Reports.VSTest = append(o.Reports.VSTest, v) },
	"--nunit":    func(o *GlobalOptions, v string) { o.Reports.NUnit = append(o.Reports.NUnit, v) },
	"--xunit":    func(o *GlobalOptions, v string) { o.Reports.XUnit = append(o.Reports.XUnit, v) },
	"--junit":    func(o *GlobalOptions, v string) { o.Reports.JUnit = append(o.Reports.JUnit, v) },
	"--gotest":   func(o *GlobalOptions, v string) { o.Reports.GoTest = append(o.Reports.GoTest, v) },
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Flags may appear anywhere in the argument list. Arguments after -- are
// preserved verbatim, so file names starting with a dash reach the command.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		if name, value, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(name, "-") {
			if set, known := valueFlags[name]; known {
				set(opts, value)
				i++
				continue
			}
		}
		if set, known := valueFlags[arg]; known {
			if i+1 >= len(args) {
				return nil, nil, fmt.Errorf("%s requires a value", arg)
			}
			set(opts, args[i+1])
			i += 2
			continue
		}

		switch arg {
		case "-q", "--quiet":
			opts.Quiet = true
			i++
		case "-v", "--verbose":
			opts.Verbose = true
			i++
		case "--":
			// Everything after -- is passed through
			remaining = append(remaining, args[i:]...)
			i = len(args)
		default:
			remaining = append(remaining, arg)
			i++
		}
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}

	out.SetQuiet(opts.Quiet)

	return opts, remaining, nil
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	if opts.Format != "" {
		if _, err := measure.NewSink(opts.Format, nil); err != nil {
			return fmt.Errorf("invalid --format value %q\n  valid values: %s\n  example: testimport import --format=json",
				opts.Format, strings.Join(measure.Formats, ", "))
		}
	}

	for _, fp := range opts.Reports.ByFormat() {
		for _, p := range fp.Patterns {
			if err := config.ValidatePattern(p); err != nil {
				return fmt.Errorf("invalid --%s pattern %q: %w", fp.Format, p, err)
			}
		}
	}

	return nil
}
