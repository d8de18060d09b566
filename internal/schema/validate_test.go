package schema

import (
	"strings"
	"testing"
)

func TestSchemaValidConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
	}{
		{"empty", `{}`},
		{"minimal", `{"reports": {"vstest": ["**/*.trx"]}}`},
		{"full", `{
			"$schema": "https://github.com/AndreyAkinshin/testimport/schema/config.schema.json",
			"base_dir": ".",
			"reports": {
				"vstest": ["TestResults/*.trx"],
				"nunit": ["nunit/*.xml"],
				"xunit": ["xunit/*.xml"],
				"junit": ["build/test-results/**/*.xml"],
				"gotest": ["go-test.json"]
			},
			"output": {"format": "yaml", "file": "measures.yaml"},
			"filters": {"index": "analysis.yaml", "charset": "UTF-8"}
		}`},
		{"unknown fields are left to the loader", `{"reports": {"mstest": ["*.xml"]}, "extra": true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := ValidateConfig([]byte(tt.data)); err != nil {
				t.Errorf("expected valid config, got error: %v", err)
			}
		})
	}
}

func TestSchemaInvalidConfig(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"malformed JSON", `{"reports": `, "invalid JSON"},
		{"not an object", `"string"`, "config validation failed"},
		{"patterns not an array", `{"reports": {"vstest": "*.trx"}}`, "config validation failed"},
		{"empty pattern", `{"reports": {"xunit": [""]}}`, "config validation failed"},
		{"pattern not a string", `{"reports": {"junit": [42]}}`, "config validation failed"},
		{"unknown format", `{"output": {"format": "xml"}}`, "config validation failed"},
		{"empty charset", `{"filters": {"charset": ""}}`, "config validation failed"},
		{"base dir not a string", `{"base_dir": 1}`, "config validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateConfig([]byte(tt.data))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
