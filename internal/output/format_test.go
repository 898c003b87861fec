package output

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hargabyte/stepgraph/internal/step"
)

func TestGetFormatter(t *testing.T) {
	tests := []struct {
		format  Format
		want    string
		wantErr bool
	}{
		{FormatYAML, "*output.YAMLFormatter", false},
		{FormatJSON, "*output.JSONFormatter", false},
		{Format("cgf"), "", true},
	}
	for _, tt := range tests {
		f, err := GetFormatter(tt.format)
		if (err != nil) != tt.wantErr {
			t.Fatalf("GetFormatter(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if tt.wantErr {
			continue
		}
		switch f.(type) {
		case *YAMLFormatter:
			if tt.want != "*output.YAMLFormatter" {
				t.Errorf("GetFormatter(%q) returned %T", tt.format, f)
			}
		case *JSONFormatter:
			if tt.want != "*output.JSONFormatter" {
				t.Errorf("GetFormatter(%q) returned %T", tt.format, f)
			}
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{" json ", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseDensity(t *testing.T) {
	tests := []struct {
		input   string
		want    Density
		wantErr bool
	}{
		{"sparse", DensitySparse, false},
		{"", DensityMedium, false},
		{"Dense", DensityDense, false},
		{"smart", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDensity(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDensity(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDensity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
	if DensitySparse.IncludesAttributes() {
		t.Error("sparse should not include attributes")
	}
	if !DensityDense.IncludesReferrers() || DensityMedium.IncludesReferrers() {
		t.Error("only dense includes referrers")
	}
}

func TestYAMLFormatterEntity(t *testing.T) {
	out := &EntityOutput{
		ID:   "#4",
		Type: "IFCWALL",
		Line: 12,
		Attributes: []AttributeOutput{
			{Position: "1", Value: "'2O2Fr$t4X7Zf8NOew3FLOH'"},
			{Position: "6", Value: "#3"},
		},
		References: []ReferenceOutput{{Attribute: "6", Entity: "#3", Type: "IFCAXIS2PLACEMENT3D"}},
	}

	text, err := NewYAMLFormatter().Format(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"id: '#4'", "type: IFCWALL", "line: 12", "references:", "  - attribute: \"6\""} {
		if !strings.Contains(text, want) {
			t.Errorf("YAML output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "referenced_by") {
		t.Errorf("empty referenced_by should be omitted:\n%s", text)
	}

	var back EntityOutput
	if err := yaml.Unmarshal([]byte(text), &back); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if back.ID != "#4" || len(back.Attributes) != 2 {
		t.Errorf("unexpected decoded value: %+v", back)
	}
}

func TestJSONFormatterErrorReport(t *testing.T) {
	res := CheckResult{
		Path: "broken.stp",
		Error: &step.ErrorReport{
			Type:    "unexpected_token",
			Line:    3,
			Column:  7,
			Message: "line 3, column 7: expected ';' -> found '#'",
		},
	}

	text, err := NewJSONFormatter().Format(res)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, text)
	}
	errObj, ok := decoded["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", decoded["error"])
	}
	if errObj["lineno"] != float64(3) || errObj["type"] != "unexpected_token" {
		t.Errorf("unexpected error report: %v", errObj)
	}
	if strings.Contains(text, "\\u003e") {
		t.Error("HTML escaping should be disabled")
	}
}
