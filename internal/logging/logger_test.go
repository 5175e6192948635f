package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"disviz/internal/layout"
)

func TestOptionsFromEnv(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		debug  bool
		want   log.Level
		prefix string
	}{
		{"default", "", false, log.InfoLevel, "disviz "},
		{"env debug", "debug", false, log.DebugLevel, "disviz "},
		{"env warn", "warn", false, log.WarnLevel, "disviz "},
		{"flag wins", "error", true, log.DebugLevel, "disviz "},
		{"unknown level", "loud", false, log.InfoLevel, "disviz "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISVIZ_LOG_LEVEL", tt.level)
			t.Setenv("DISVIZ_LOG_PREFIX", "")
			t.Setenv("DISVIZ_LOG_TO_FILE", "")
			opts := OptionsFromEnv(tt.debug)
			if opts.Level != tt.want {
				t.Errorf("level = %v, want %v", opts.Level, tt.want)
			}
			if opts.Prefix != tt.prefix {
				t.Errorf("prefix = %q, want %q", opts.Prefix, tt.prefix)
			}
			if opts.File != "" {
				t.Errorf("file = %q, want none", opts.File)
			}
		})
	}
}

func TestNew_File(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DISVIZ_LOG_TO_FILE", "1")
	t.Setenv("DISVIZ_LOG_DIR", dir)
	t.Setenv("DISVIZ_LOG_LEVEL", "")

	var stderr bytes.Buffer
	lg := New(&stderr, OptionsFromEnv(false))
	lg.Info("to file")
	if err := lg.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("writer received output with a log file configured:\n%s", stderr.String())
	}

	matches, err := filepath.Glob(filepath.Join(dir, "disviz-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log files = %v, %v", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file content:\n%s", data)
	}
}

func TestDiagnostics(t *testing.T) {
	diags := []layout.Diagnostic{
		{Kind: layout.DiagUnresolvedSuccessor, Function: "main", Block: "B2", Detail: "B404"},
		{Kind: layout.DiagZeroOccurrenceTotal, Function: "main", Loop: "L1"},
	}

	tests := []struct {
		name    string
		level   log.Level
		want    []string
		notWant []string
	}{
		{"info hides routine kinds", log.InfoLevel, []string{"zero-occurrence-total", "loop=L1"}, []string{"B404"}},
		{"debug shows all", log.DebugLevel, []string{"unresolved-successor", "B404", "zero-occurrence-total"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			lg := New(&buf, Options{Level: tt.level, Prefix: "disviz "})
			lg.Diagnostics(diags)

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output contains %q:\n%s", nw, out)
				}
			}
			if err := lg.Close(); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}
}
