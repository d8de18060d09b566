package cli

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AndreyAkinshin/testimport/internal/aggregate"
	"github.com/AndreyAkinshin/testimport/internal/config"
	"github.com/AndreyAkinshin/testimport/internal/errors"
	"github.com/AndreyAkinshin/testimport/internal/filefilter"
	"github.com/AndreyAkinshin/testimport/internal/importer"
	"github.com/AndreyAkinshin/testimport/internal/measure"
	"github.com/AndreyAkinshin/testimport/internal/output"
	"github.com/AndreyAkinshin/testimport/internal/project"
	"github.com/AndreyAkinshin/testimport/internal/testparser"
	"github.com/AndreyAkinshin/testimport/internal/wildcard"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// Help text alignment widths for consistent formatting.
const (
	helpFlagWidthShort  = 10 // Width for short flags like "-h, --help"
	helpFlagWidthGlobal = 20 // Width for global flags like "--vstest=<pattern>"
)

// loadProject loads the configuration and applies command-line overrides.
// When no workspace exists and allowDefault is set, the defaults rooted at
// the working directory are used instead.
// Returns the project and exit code 0 on success, or nil and the exit code on failure.
func loadProject(opts *GlobalOptions, allowDefault bool) (*project.Project, int) {
	var proj *project.Project
	var err error
	if opts.ConfigPath != "" {
		proj, err = project.LoadFile(opts.ConfigPath)
	} else {
		proj, err = project.LoadProject()
		if err != nil && allowDefault && stderrors.Is(err, project.ErrNoProjectRoot) {
			proj, err = defaultProject()
		}
	}
	if err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}

	for _, w := range proj.Warnings {
		out.Warning("%s", w)
	}

	if err := applyOverrides(proj, opts); err != nil {
		out.ErrorPrefix("%v", err)
		return nil, errors.GetExitCode(err)
	}
	return proj, 0
}

func defaultProject() (*project.Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "cannot determine working directory")
	}
	return &project.Project{Root: cwd, Config: config.Default()}, nil
}

// applyOverrides merges command-line flags into the loaded configuration and
// re-validates the result.
func applyOverrides(proj *project.Project, opts *GlobalOptions) error {
	cfg := proj.Config
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}
	if opts.Format != "" {
		cfg.Output.Format = opts.Format
	}
	if opts.OutputFile != "" {
		cfg.Output.File = opts.OutputFile
	}
	if opts.Index != "" {
		cfg.Filters.Index = opts.Index
	}
	if opts.Charset != "" {
		cfg.Filters.Charset = opts.Charset
	}

	r := &cfg.Reports
	for _, o := range []struct {
		dst *[]string
		src []string
	}{
		{&r.VSTest, opts.Reports.VSTest},
		{&r.NUnit, opts.Reports.NUnit},
		{&r.XUnit, opts.Reports.XUnit},
		{&r.JUnit, opts.Reports.JUnit},
		{&r.GoTest, opts.Reports.GoTest},
	} {
		if len(o.src) > 0 {
			*o.dst = o.src
		}
	}

	if _, err := config.Validate(cfg); err != nil {
		return &errors.ImportError{Kind: errors.KindConfig, Message: err.Error(), Cause: err}
	}
	if info, err := os.Stat(proj.BaseDir()); err != nil || !info.IsDir() {
		return errors.Configf("base directory %q does not exist", proj.BaseDir())
	}
	return nil
}

// cmdImport aggregates the configured reports and writes the measures.
func cmdImport(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printImportUsage()
		return 0
	}

	watch := false
	for _, arg := range args {
		switch arg {
		case "--watch", "-w":
			watch = true
		default:
			out.ErrorPrefix("import: unexpected argument %q", arg)
			return errors.ExitConfigError
		}
	}

	proj, exitCode := loadProject(opts, opts.hasReportOverrides())
	if proj == nil {
		return exitCode
	}

	logger := newLogger(out.Err(), out.Color(), opts)
	run := func() int {
		return runImport(proj, logger)
	}

	if !watch {
		return run()
	}
	return watchImport(proj, logger, run)
}

// runImport performs one import and reports the outcome.
func runImport(proj *project.Project, logger *slog.Logger) int {
	cfg := proj.Config
	toFile := cfg.Output.File != ""

	var buf bytes.Buffer
	var w io.Writer = out.Out()
	if toFile {
		w = &buf
	}
	sink, err := measure.NewSink(cfg.Output.Format, w)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	imp := &importer.Importer{
		Aggregator: aggregate.New(aggregateConfig(cfg.Reports), testparser.NewRegistry(logger), logger),
		Provider:   wildcard.New(proj.BaseDir()),
		Sink:       sink,
		Logger:     logger,
	}

	result, err := imp.Run()
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	if result.Skipped {
		out.Info("No report patterns configured; nothing to import.")
		out.Hint("set reports in %s or pass --vstest, --nunit, --xunit, --junit or --gotest", project.ConfigDirName+"/"+project.ConfigFileName)
		return 0
	}

	if toFile {
		path := proj.Resolve(cfg.Output.File)
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			out.ErrorPrefix("cannot write measures: %v", err)
			return errors.ExitRuntimeError
		}
		printImportSummary(result, path)
	}
	return 0
}

func aggregateConfig(r config.ReportsConfig) aggregate.Config {
	return aggregate.Config{
		VSTest: r.VSTest,
		NUnit:  r.NUnit,
		XUnit:  r.XUnit,
		JUnit:  r.JUnit,
		GoTest: r.GoTest,
	}
}

func printImportSummary(result importer.Result, path string) {
	if out.Quiet() {
		return
	}
	r := result.Results
	out.SummaryHeader("Import Summary")

	rows := make([][]string, 0, 5)
	for _, m := range measure.FromResults(r) {
		rows = append(rows, []string{m.Metric, strconv.FormatInt(m.Value, 10)})
	}
	out.Table([]string{"Metric", "Value"}, rows)
	out.Println("")

	if r.Failures > 0 || r.Errors > 0 {
		out.SummaryFailed("Result", fmt.Sprintf("%d failures, %d errors", r.Failures, r.Errors))
	} else {
		out.SummaryPassed("Result", "no failures")
	}
	out.Success("Measures written to %s", path)
}

// cmdFilter reports which of the given source files take part in an import.
func cmdFilter(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printFilterUsage()
		return 0
	}

	var files []string
	for _, arg := range args {
		if arg != "--" {
			files = append(files, arg)
		}
	}
	if len(files) == 0 {
		out.ErrorPrefix("filter: at least one file is required")
		return errors.ExitConfigError
	}

	proj, exitCode := loadProject(opts, opts.Index != "")
	if proj == nil {
		return exitCode
	}
	if proj.Config.Filters.Index == "" {
		out.ErrorPrefix("filter: no analysis index configured (set filters.index or pass --index)")
		return errors.ExitConfigError
	}

	logger := newLogger(out.Err(), out.Color(), opts)
	encodings, generated, err := filefilter.LoadIndex(proj.Resolve(proj.Config.Filters.Index), proj.BaseDir(), logger)
	if err != nil {
		out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}

	hostCharset := proj.Config.Filters.Charset
	accepted := 0
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			out.ErrorPrefix("%v", err)
			return errors.ExitRuntimeError
		}
		ok, reason := true, ""
		switch {
		case !generated.Accept(abs):
			ok, reason = false, "generated"
		case !encodings.Match(abs, hostCharset):
			ok, reason = false, "encoding"
		}
		if ok {
			accepted++
		}
		out.FileDecision(file, ok, reason)
	}

	out.Info("%d of %d files accepted", accepted, len(files))
	return 0
}

// cmdConfig handles configuration utilities.
func cmdConfig(args []string, opts *GlobalOptions) int {
	if len(args) == 0 {
		out.ErrorPrefix("config: subcommand required (validate)")
		return errors.ExitConfigError
	}

	switch args[0] {
	case "validate":
		return cmdConfigValidate(opts)
	case "-h", "--help":
		printConfigUsage()
		return 0
	default:
		out.ErrorPrefix("config: unknown subcommand %q", args[0])
		return errors.ExitConfigError
	}
}

func cmdConfigValidate(opts *GlobalOptions) int {
	proj, exitCode := loadProject(opts, false)
	if proj == nil {
		return exitCode
	}

	cfg := proj.Config
	var patterns []string
	for _, fp := range cfg.Reports.ByFormat() {
		if n := len(fp.Patterns); n > 0 {
			patterns = append(patterns, fmt.Sprintf("%s %d", fp.Format, n))
		}
	}
	patternSummary := "none"
	if len(patterns) > 0 {
		patternSummary = strings.Join(patterns, ", ")
	}

	out.ValidationSuccess("Configuration is valid.")
	out.SummaryItem("Config", proj.ConfigPath)
	out.SummaryItem("Base directory", proj.BaseDir())
	out.SummaryItem("Report patterns", patternSummary)
	out.SummaryItem("Output format", cfg.Output.Format)
	if len(proj.Warnings) > 0 {
		out.SummaryItem("Warnings", fmt.Sprintf("%d", len(proj.Warnings)))
	}
	if cfg.Reports.Empty() {
		out.Hint("no report patterns configured; 'testimport import' will skip")
	}
	return 0
}
