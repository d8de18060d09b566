package cli

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreyAkinshin/testimport/internal/output"
	"github.com/AndreyAkinshin/testimport/internal/testparser"
)

// reportFlags describes the per-format pattern flags in help order.
var reportFlags = []struct {
	flag  string
	title string
}{
	{"--vstest", "Visual Studio TRX files"},
	{"--nunit", "NUnit 2 or 3 result files"},
	{"--xunit", "xUnit.net v2 XML files"},
	{"--junit", "JUnit XML files"},
	{"--gotest", "go test -json output files"},
}

// formatDescriptions describes the registered parser names.
var formatDescriptions = map[string]string{
	"vstest": "Visual Studio test results (.trx)",
	"trx":    "alias of vstest",
	"nunit":  "NUnit 2 <test-results> and NUnit 3 <test-run>",
	"xunit":  "xUnit.net v2 <assemblies>",
	"junit":  "JUnit <testsuites> and <testsuite>",
	"gotest": "go test -json event streams",
	"go":     "alias of gotest",
}

func printUsage() {
	w := output.New()

	w.HelpTitle("testimport - unit test report importer")

	w.HelpSection("Usage:")
	w.HelpUsage("testimport [flags] <command> [args]")

	w.HelpSection("Commands:")
	w.HelpCommand("import", "Aggregate test reports and write measures", 16)
	w.HelpCommand("filter <files>", "Show which source files an import keeps", 16)
	w.HelpCommand("config validate", "Validate the configuration", 16)
	w.HelpCommand("version", "Show version information", 16)
	w.HelpCommand("help", "Show this help", 16)

	printReportFlags(w)
	printGlobalFlags(w)

	w.HelpSection("Environment:")
	w.HelpEnvVar("NO_COLOR=1", "Disable colored output", 12)

	w.HelpSection("Examples:")
	w.HelpExample("testimport import", "Import the reports configured in .testimport/config.json")
	w.HelpExample("testimport import --vstest='**/*.trx' --format=json", "Import TRX files and print JSON measures")
	w.HelpExample("testimport import --watch", "Re-import whenever reports change")
	w.Println("")
}

func printReportFlags(w *output.Writer) {
	w.HelpSection("Report Flags (repeatable, replace configured patterns):")
	for _, f := range reportFlags {
		w.HelpFlag(f.flag+"=<pattern>", f.title, helpFlagWidthGlobal)
	}
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Global Flags:")
	w.HelpFlag("--config=<path>", "Configuration file (default: search for .testimport/config.json)", helpFlagWidthGlobal)
	w.HelpFlag("--base-dir=<dir>", "Directory relative patterns are resolved against", helpFlagWidthGlobal)
	w.HelpFlag("--format=<fmt>", "Measure output format (text, json, yaml)", helpFlagWidthGlobal)
	w.HelpFlag("-o, --output=<file>", "Write measures to a file instead of stdout", helpFlagWidthGlobal)
	w.HelpFlag("--index=<file>", "Analysis index used by filter", helpFlagWidthGlobal)
	w.HelpFlag("--charset=<name>", "Host charset used by filter (default: UTF-8)", helpFlagWidthGlobal)
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", helpFlagWidthGlobal)
	w.HelpFlag("-v, --verbose", "Debug logging", helpFlagWidthGlobal)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthGlobal)
	w.HelpFlag("--version", "Show version", helpFlagWidthGlobal)
}

// printImportUsage prints the help text for the import command.
func printImportUsage() {
	w := output.New()
	titleCase := cases.Title(language.English)

	w.HelpTitle("testimport import - aggregate unit test reports")

	w.HelpSection("Usage:")
	w.HelpUsage("testimport import [--watch] [flags]")

	w.HelpSection("Description:")
	w.Println("  Parses every report matched by the configured patterns and writes the")
	w.Println("  summed measures: tests, test_errors, test_failures, skipped_tests and,")
	w.Println("  when any report carries a duration, test_execution_time.")
	w.Println("  Any malformed report aborts the import without writing measures.")

	w.HelpSection("Supported Formats:")
	for _, name := range testparser.NewRegistry(nil).Formats() {
		desc, ok := formatDescriptions[name]
		if !ok {
			desc = titleCase.String(name) + " reports"
		}
		w.HelpCommand(name, desc, 8)
	}

	w.HelpSection("Options:")
	w.HelpFlag("-w, --watch", "Re-import when report files change", helpFlagWidthShort)
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthShort)

	printReportFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("testimport import", fmt.Sprintf("%s all configured reports", titleCase.String("import")))
	w.HelpExample("testimport import --junit='build/test-results/**/*.xml' -o measures.yaml --format=yaml", "Write YAML measures for Gradle results")
	w.Println("")
}

// printFilterUsage prints the help text for the filter command.
func printFilterUsage() {
	w := output.New()

	w.HelpTitle("testimport filter - check source files against the analysis index")

	w.HelpSection("Usage:")
	w.HelpUsage("testimport filter [--index=<file>] [--charset=<name>] <files>")

	w.HelpSection("Description:")
	w.Println("  A file is rejected when the index marks it as generated, or when the")
	w.Println("  analyzer read it with a charset different from the host charset.")

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthShort)

	w.HelpSection("Examples:")
	w.HelpExample("testimport filter --index=obj/analysis.yaml src/Program.cs", "")
	w.Println("")
}

// printConfigUsage prints the help text for the config command.
func printConfigUsage() {
	w := output.New()

	w.HelpTitle("testimport config - configuration utilities")

	w.HelpSection("Usage:")
	w.HelpUsage("testimport config <subcommand>")

	w.HelpSection("Subcommands:")
	w.HelpCommand("validate", "Validate the configuration", helpFlagWidthShort)

	w.HelpSection("Options:")
	w.HelpFlag("-h, --help", "Show this help", helpFlagWidthShort)

	w.HelpSection("Examples:")
	w.HelpExample("testimport config validate", "Validate .testimport/config.json")
	w.Println("")
}
