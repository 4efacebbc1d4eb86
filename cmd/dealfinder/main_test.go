package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kadirpekel/dealfinder/pkg/config"
)

func TestResolveQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
		example  string
		want     string
		wantErr  bool
	}{
		{name: "positional wins", question: "Any noodles?", example: "complex", want: "Any noodles?"},
		{name: "example", example: "simple-kg", want: examples["simple-kg"]},
		{name: "unknown example", example: "nope", wantErr: true},
		{name: "nothing", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveQuestion(tt.question, tt.example)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveQuestion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExampleNames_Sorted(t *testing.T) {
	got := strings.Join(exampleNames(), ",")
	if got != "complex,simple-kg,simple-vector" {
		t.Errorf("exampleNames() = %s", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "c"); got != "c" {
		t.Errorf("firstNonEmpty() = %q, want c", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("one\ntwo"); got != "one" {
		t.Errorf("firstLine() = %q", got)
	}
}

func TestValidateOutput(t *testing.T) {
	var buf bytes.Buffer
	printSuccess(&buf, "json", "cfg.yaml")
	if !strings.Contains(buf.String(), `"valid": true`) {
		t.Errorf("json success = %s", buf.String())
	}

	buf.Reset()
	printLoadError(&buf, "compact", "cfg.yaml", errors.New("boom"))
	if got := buf.String(); got != "cfg.yaml: load error: boom\n" {
		t.Errorf("compact error = %q", got)
	}

	buf.Reset()
	if err := printExpandedConfig(&buf, "compact", "cfg.yaml", config.Default()); err != nil {
		t.Fatalf("printExpandedConfig() error = %v", err)
	}
	if !strings.Contains(buf.String(), "max_iterations: 8") {
		t.Errorf("expanded config missing agent defaults:\n%s", buf.String())
	}
}

func TestValidateCmd_SampleConfig(t *testing.T) {
	path := filepath.Join("..", "..", "configs", "dealfinder.yaml")
	if _, err := os.Stat(path); err != nil {
		t.Skip("sample config not present")
	}
	cmd := &ValidateCmd{Config: path, Format: "compact"}
	if err := cmd.Run(&CLI{}); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}
