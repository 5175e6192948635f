package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"disviz/internal/dump"
)

const testDump = `{"name": "_Z4workv", "blocks": [
  {"name": "B1", "start_address": 256, "end_address": 260, "next_block_numbers": ["B2"],
   "instructions": [{"address": 256, "instruction": "push %rbp", "correspondence": {"work.cpp": [3]}}]},
  {"name": "B2", "start_address": 272, "end_address": 280, "n_instructions": 2, "instructions": [], "next_block_numbers": ["B3", "B9"]},
  {"name": "B3", "start_address": 288, "end_address": 292, "n_instructions": 1, "instructions": [], "next_block_numbers": []},
  {"name": "B9", "start_address": 1280, "end_address": 1292, "n_instructions": 3, "instructions": [], "next_block_numbers": ["B2"]}
 ],
 "loops": [{"name": "L1", "header_block": "B2", "blocks": ["B2", "B9"], "backedges": [["B9", "B2"]]}]}
{"name": "main", "blocks": [
  {"name": "M0", "start_address": 16, "end_address": 24, "n_instructions": 2, "instructions": [], "next_block_numbers": []}
 ]}
`

func writeDump(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dump.jsonl")
	if err := os.WriteFile(path, []byte(testDump), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the root command with args and returns what it wrote to
// stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DISVIZ_CONFIG", "")
	t.Setenv("DISVIZ_NO_COLOR", "1")
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	out := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		out <- buf.String()
	}()

	err = rootCmd.Execute()

	w.Close()
	os.Stdout = old
	return <-out, err
}

func TestRoot_NoTUI(t *testing.T) {
	path := writeDump(t)

	tests := []struct {
		name   string
		args   []string
		prefix string
		want   []string
	}{
		{
			name:   "memory order",
			args:   []string{"--no-tui", "--order", "memory_order", path},
			prefix: "main:",
			want: []string{
				"main:\n  M0  [0x10-0x18]\n",
				"    B9  [0x500-0x50c]  L1 2/2  [pseudo]\n  B3  [0x120-0x124]\n",
			},
		},
		{
			name:   "loop order with instructions",
			args:   []string{"-n", "-i", path},
			prefix: "work():",
			want:   []string{"    100  push %rbp\n", "\nmain:\n  M0  [0x10-0x18]\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("output does not start with %q:\n%s", tt.prefix, got)
			}
		})
	}
}

func TestLayoutCmd(t *testing.T) {
	path := writeDump(t)

	got, err := run(t, "layout", path)
	if err != nil {
		t.Fatal(err)
	}
	var rec dump.ResultRecord
	if err := json.Unmarshal([]byte(got), &rec); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if n := len(rec.MemoryOrderBlocks); n != 6 {
		t.Errorf("memory order has %d entries, want 6", n)
	}
	if first := rec.MemoryOrderBlocks[0].Name; first != "M0" {
		t.Errorf("memory order starts with %s, want M0 (lowest address function first)", first)
	}
	if first := rec.LoopOrderBlocks[0].Name; first != "B1" {
		t.Errorf("loop order starts with %s, want B1 (input order)", first)
	}
	if len(rec.Minimap.LoopOrder.BlockHeights) != len(rec.LoopOrderBlocks) {
		t.Error("loop order minimap length differs from ordering")
	}
	if len(rec.SourceFiles) != 1 || rec.SourceFiles[0] != "work.cpp" {
		t.Errorf("source files = %v", rec.SourceFiles)
	}

	got, err = run(t, "layout", "--order", "memory_order", path)
	if err != nil {
		t.Fatal(err)
	}
	var blocks []dump.BlockRecord
	if err := json.Unmarshal([]byte(got), &blocks); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, got)
	}
	if len(blocks) != 6 || blocks[3].BlockType != "pseudoloop" {
		t.Errorf("memory order blocks = %d, entry 3 type %q", len(blocks), blocks[3].BlockType)
	}
}

func TestPageCmd(t *testing.T) {
	path := writeDump(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"by number", []string{"page", path, "loop_order", "1"}, "Page 1/1", false},
		{"by address", []string{"page", path, "memory_order", "--address", "0x500"}, "B9", false},
		{"out of range", []string{"page", path, "loop_order", "2"}, "", true},
		{"no page or address", []string{"page", path, "loop_order"}, "", true},
		{"bad address", []string{"page", path, "loop_order", "--address", "zz"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestMinimapCmd(t *testing.T) {
	got, err := run(t, "minimap", writeDump(t), "loop_order")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Loop order") {
		t.Errorf("minimap output:\n%s", got)
	}
}

func TestDotCmd(t *testing.T) {
	path := writeDump(t)

	if got, err := run(t, "dot", path, "work"); err != nil || got == "" {
		t.Errorf("dot work: %q, %v", got, err)
	}
	if _, err := run(t, "dot", path, "missing"); err == nil {
		t.Error("dot of unknown function succeeded")
	}
}

func TestReportCmd(t *testing.T) {
	got, err := run(t, "report", writeDump(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# dump.jsonl", "| `work` |", "| `main` |", "`work.cpp`"} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}

func TestSchemaCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"schema"}, "blocksPerPage"},
		{[]string{"schema", "--input"}, "start_address"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got, err := run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if !json.Valid([]byte(got)) {
				t.Fatalf("schema is not valid JSON:\n%s", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("schema missing %q", tt.want)
			}
		})
	}
}

func TestMissingDump(t *testing.T) {
	if _, err := run(t, "layout", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("layout of missing dump succeeded")
	}
}

func TestBlockCmd(t *testing.T) {
	path := writeDump(t)

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{"by name", []string{"block", path, "loop_order", "B1"}, "  B1  [0x100-0x104]\n    100  push %rbp\n", false},
		{"by start", []string{"block", path, "memory_order", "--start", "0x500"}, "B9  [0x500-0x50c]  L1 2/2  [pseudo]", false},
		{"as json", []string{"block", path, "loop_order", "M0", "--json"}, `"name": "M0"`, false},
		{"unknown name", []string{"block", path, "loop_order", "B77"}, "", true},
		{"no name or start", []string{"block", path, "loop_order"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := run(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, got)
			}
		})
	}
}

func TestSourceCmd(t *testing.T) {
	path := writeDump(t)
	dir := t.TempDir()
	src := "#include <cstdio>\n\nint work() {\n  return 0;\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "work.cpp"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("readable", func(t *testing.T) {
		t.Chdir(dir)
		got, err := run(t, "source", path, "work.cpp")
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"int work() {", "return 0;", "0x100"} {
			if !strings.Contains(got, want) {
				t.Errorf("output missing %q:\n%s", want, got)
			}
		}
	})
	t.Run("unreadable", func(t *testing.T) {
		t.Chdir(t.TempDir())
		got, err := run(t, "source", path, "work.cpp")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(got, "0x100") || strings.Contains(got, "return 0;") {
			t.Errorf("indexed-only output:\n%s", got)
		}
	})
	t.Run("unknown file", func(t *testing.T) {
		if _, err := run(t, "source", path, "other.cpp"); err == nil {
			t.Error("source of unknown file succeeded")
		}
	})
}

func TestMinimapCmd_Diagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dangling.json")
	dangling := `{"name": "f", "blocks": [{"name": "B0", "start_address": 16, "end_address": 20,
	  "instructions": [], "next_block_numbers": ["B404"]}]}`
	if err := os.WriteFile(path, []byte(dangling), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := run(t, "minimap", path, "memory_order")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "unresolved-successor") || !strings.Contains(got, "B404") {
		t.Errorf("minimap output lacks diagnostics:\n%s", got)
	}
}
