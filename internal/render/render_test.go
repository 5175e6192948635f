package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zboralski/lattice"

	"disviz/internal/layout"
	"disviz/internal/pager"
	"disviz/internal/source"
)

func block(name string, start, end layout.Address, n int, succs ...string) layout.Block {
	return layout.Block{Name: name, Start: start, End: end, InstructionCount: n, Successors: succs}
}

// splitLoop is a function whose loop body is split by an unrelated block.
func splitLoop() layout.Function {
	b1 := block("B1", 0x100, 0x104, 1, "B2")
	b1.Instructions = []layout.Instruction{{
		Address:        0x100,
		Text:           "push %rbp",
		Correspondence: []layout.Correspondence{{File: "work.cpp", Line: 3}},
	}}
	b9 := block("B9", 0x500, 0x50c, 3, "B2")
	b9.Instructions = []layout.Instruction{
		{Address: 0x500, Text: "mov %eax,%edi"},
		{Address: 0x504, Text: "call 0x900 <_Z4stepi>", Flags: layout.Flags(0).Set(layout.FlagCall)},
		{Address: 0x508, Text: "jmp 0x110"},
	}
	return layout.Function{
		Name: "_Z4workv",
		Blocks: []layout.Block{
			b1,
			block("B2", 0x110, 0x118, 2, "B3", "B9"),
			block("B3", 0x120, 0x124, 1),
			b9,
		},
		Loops: []layout.LoopEntry{{
			Name:      "L1",
			Header:    "B2",
			Members:   []string{"B2", "B9"},
			Backedges: []layout.Backedge{{Source: "B9", Target: "B2"}},
		}},
	}
}

func build(t *testing.T) *layout.Result {
	t.Helper()
	res, err := layout.Build(context.Background(), []layout.Function{splitLoop()}, layout.Options{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestText(t *testing.T) {
	res := build(t)

	var buf bytes.Buffer
	if err := Text(&buf, res.AddressOrder, TextOptions{}); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"work():",
		"  B1  [0x100-0x104]",
		"    B2  [0x110-0x118]  L1 1/2  header",
		"    B9  [0x500-0x50c]  L1 2/2  [pseudo]",
		"  B3  [0x120-0x124]",
		"    B9  [0x500-0x50c]  L1 2/2",
		"",
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Text() (-want +got):\n%s", diff)
	}
}

func TestText_Instructions(t *testing.T) {
	res := build(t)

	var buf bytes.Buffer
	if err := Text(&buf, res.AddressOrder, TextOptions{Instructions: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if got := strings.Count(out, "call 0x900"); got != 1 {
		t.Errorf("call instruction printed %d times, want 1 (pseudo entries omit instructions)\n%s", got, out)
	}
	if !strings.Contains(out, "    100  push %rbp\n") {
		t.Errorf("missing indented instruction line:\n%s", out)
	}
}

func TestText_NoColorEnv(t *testing.T) {
	t.Setenv("DISVIZ_NO_COLOR", "1")
	res := build(t)

	var buf bytes.Buffer
	if err := Text(&buf, res.LoopOrder, TextOptions{Color: true, Instructions: true}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("DISVIZ_NO_COLOR output contains escapes:\n%q", buf.String())
	}
}

func TestText_HidablesAndVariables(t *testing.T) {
	t.Setenv("DISVIZ_NO_COLOR", "1")
	slot := []layout.Variable{{Name: "i", Locations: []layout.VariableLocation{{Start: 0x200, End: 0x210, Location: "-0x4(%rbp)"}}}}
	b := block("B0", 0x200, 0x20c, 4)
	b.Hidables = []layout.Hidable{{Name: "prologue", Start: 0x200, End: 0x201}}
	b.Instructions = []layout.Instruction{
		{Address: 0x200, Text: "push %rbp"},
		{Address: 0x201, Text: "mov %rsp,%rbp"},
		{Address: 0x204, Text: "movl $0x0,-0x4(%rbp)", Variables: slot},
		{Address: 0x20b, Text: "ret"},
	}
	fl := layout.LayoutFunction(layout.Function{Name: "f", Blocks: []layout.Block{b}})

	tests := []struct {
		name string
		opts TextOptions
		want string
	}{
		{
			name: "folded by default",
			opts: TextOptions{Instructions: true},
			want: strings.Join([]string{
				"f:",
				"  B0  [0x200-0x20c]",
				"    [+] prologue, 2 instructions",
				"    204  movl $0x0,-0x4(%rbp)  ; i=-0x4(%rbp)",
				"    20b  ret",
				"",
			}, "\n"),
		},
		{
			name: "shown on request",
			opts: TextOptions{Instructions: true, ShowHidden: true},
			want: strings.Join([]string{
				"f:",
				"  B0  [0x200-0x20c]",
				"    200  push %rbp",
				"    201  mov %rsp,%rbp",
				"    204  movl $0x0,-0x4(%rbp)  ; i=-0x4(%rbp)",
				"    20b  ret",
				"",
			}, "\n"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Text(&buf, fl.AddressOrder, tt.opts); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("Text() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCFG(t *testing.T) {
	cfg := CFG(splitLoop())

	if cfg.Name != "work()" {
		t.Errorf("name = %q", cfg.Name)
	}
	if len(cfg.Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(cfg.Blocks))
	}
	// address order: B1, B2, B3, B9
	b2, b9 := cfg.Blocks[1], cfg.Blocks[3]
	wantB2 := []lattice.Successor{{BlockID: 2}, {BlockID: 3}}
	if diff := cmp.Diff(wantB2, b2.Succs); diff != "" {
		t.Errorf("B2 successors (-want +got):\n%s", diff)
	}
	wantB9 := []lattice.Successor{{BlockID: 1, Cond: "back"}}
	if diff := cmp.Diff(wantB9, b9.Succs); diff != "" {
		t.Errorf("B9 successors (-want +got):\n%s", diff)
	}
	if b9.Start != 4 || b9.End != 7 {
		t.Errorf("B9 instruction range = %d-%d, want 4-7", b9.Start, b9.End)
	}
	if len(b9.Calls) != 1 || b9.Calls[0].Offset != 5 {
		t.Errorf("B9 calls = %+v", b9.Calls)
	}
	if !cfg.Blocks[2].Term || cfg.Blocks[0].Term {
		t.Errorf("terminal flags: B1=%v B3=%v", cfg.Blocks[0].Term, cfg.Blocks[2].Term)
	}
	if DOT(splitLoop()) == "" {
		t.Error("DOT() returned empty output")
	}
}

func TestTables(t *testing.T) {
	res := build(t)

	mm := MinimapTable("Address order", res.AddressOrder, res.AddressMinimap)
	for _, want := range []string{"Address order", "B9 ~", "0x500", "TOTAL"} {
		if !strings.Contains(strings.ToUpper(mm), strings.ToUpper(want)) {
			t.Errorf("minimap table missing %q:\n%s", want, mm)
		}
	}

	p := pager.New(res.LoopOrder, 2)
	pg, err := p.Page(0)
	if err != nil {
		t.Fatal(err)
	}
	pt := PageTable(pg, p.Pages())
	if !strings.Contains(pt, "Page 1/") || !strings.Contains(pt, "L1 1/2") {
		t.Errorf("page table:\n%s", pt)
	}

	if got := DiagnosticsTable(nil); got != "" {
		t.Errorf("DiagnosticsTable(nil) = %q, want empty", got)
	}
	dt := DiagnosticsTable([]layout.Diagnostic{{Kind: layout.DiagEmptyFunction, Function: "f"}})
	if !strings.Contains(dt, "empty-function") {
		t.Errorf("diagnostics table:\n%s", dt)
	}
}

func TestSourceTable(t *testing.T) {
	fn := splitLoop()
	fn.Blocks[0].Instructions[0].Flags = layout.Flags(0).Set(layout.FlagVector)
	idx := source.Build([]layout.Function{fn})

	withText := SourceTable("work.cpp", []string{"#include <vector>", "", "int work() {"}, idx)
	if !strings.Contains(withText, "int work() {") || !strings.Contains(withText, "0x100") {
		t.Errorf("source table:\n%s", withText)
	}
	if !strings.Contains(withText, "VECTORIZED") {
		t.Errorf("line 3 should be tagged VECTORIZED:\n%s", withText)
	}
	if n := strings.Count(withText, "\n"); n < 6 {
		t.Errorf("source table has %d lines, want every source line listed:\n%s", n, withText)
	}

	indexed := SourceTable("work.cpp", nil, idx)
	if strings.Count(indexed, "0x100") != 1 || strings.Contains(indexed, "#include") {
		t.Errorf("indexed-only table:\n%s", indexed)
	}
}

func TestSummarizeAndReport(t *testing.T) {
	res := build(t)
	idx := source.Build([]layout.Function{splitLoop()})

	want := []FunctionSummary{{Name: "_Z4workv", Blocks: 4, Pseudo: 1, Loops: 1, Instructions: 7}}
	if diff := cmp.Diff(want, Summarize(res)); diff != "" {
		t.Errorf("Summarize() (-want +got):\n%s", diff)
	}

	md := Report("disviz", res, idx)
	for _, want := range []string{"# disviz", "Address range `0x100`-`0x50c`.", "| `work` | 4 | 1 | 1 | 7 | 0 |", "- `work.cpp` (1 lines)"} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Diagnostics") {
		t.Errorf("report has diagnostics section without diagnostics:\n%s", md)
	}

	res.Diagnostics = []layout.Diagnostic{{Kind: layout.DiagUnresolvedSuccessor, Function: "_Z4workv", Block: "B2", Detail: "B404"}}
	if md := Report("disviz", res, idx); !strings.Contains(md, "## Diagnostics\n\n```\n") || !strings.Contains(md, "unresolved-successor") {
		t.Errorf("report diagnostics section:\n%s", md)
	}

	out, err := RenderMarkdown(md, 100)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "work.cpp") {
		t.Errorf("rendered report missing source file:\n%s", out)
	}
}
