package testparser

import (
	"log/slog"
	"sort"
	"strings"
)

// Registry maps report format identifiers to their parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a new parser registry with all built-in parsers.
// logger is handed to parsers that report details of individual tests; it
// may be nil.
func NewRegistry(logger *slog.Logger) *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	vstestParser := &VSTestParser{}
	goTestParser := &GoTestParser{Logger: logger}
	for _, p := range []Parser{vstestParser, &NUnitParser{}, &XUnitParser{}, &JUnitParser{}, goTestParser} {
		r.RegisterParser(p.Name(), p)
	}
	r.RegisterParser("trx", vstestParser)
	r.RegisterParser("go", goTestParser)

	return r
}

// GetParser returns a parser for the given format identifier.
// Returns nil if no parser is found.
func (r *Registry) GetParser(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format identifiers in sorted order.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// RegisterParser adds a parser for a format identifier, replacing any parser
// already registered under it.
func (r *Registry) RegisterParser(format string, parser Parser) {
	r.parsers[strings.ToLower(format)] = parser
}
