package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"disviz/internal/layout"
	"disviz/internal/pager"
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func loopTags(b *layout.Block) string {
	tags := make([]string, len(b.Loops))
	for i, occ := range b.Loops {
		tags[i] = LoopTag(occ)
	}
	return strings.Join(tags, ", ")
}

// MinimapTable lists the minimap of an ordering, one row per entry.
func MinimapTable(title string, o layout.Ordering, m layout.Minimap) string {
	t := newTable(title)
	t.AppendHeader(table.Row{"#", "Block", "Start", "Height", "Indent", "Built-in", "Flags"})
	total := 0
	for i := 0; i < m.Len(); i++ {
		name := ""
		if i < len(o) {
			name = o[i].Name
			if o[i].Variant == layout.PseudoLoop {
				name += " ~"
			}
		}
		builtIn := ""
		if m.BuiltIn[i] {
			builtIn = "yes"
		}
		total += m.Heights[i]
		t.AppendRow(table.Row{i, name, m.StartAddress[i].String(), m.Heights[i], m.Indent[i], builtIn, strings.Join(m.Flags[i].Names(), " ")})
	}
	t.AppendFooter(table.Row{"", "", "total", total, "", "", ""})
	return t.Render()
}

// PageTable lists the entries of one page.
func PageTable(p pager.Page, pages int) string {
	t := newTable(fmt.Sprintf("Page %d/%d  %v-%v", p.Number+1, pages, p.StartAddress, p.EndAddress))
	t.AppendHeader(table.Row{"Function", "Block", "Type", "Range", "Instructions", "Loops"})
	for i := range p.Blocks {
		b := &p.Blocks[i]
		t.AppendRow(table.Row{
			b.Function,
			b.Name,
			b.Variant.String(),
			fmt.Sprintf("%v-%v", b.Start, b.End),
			b.InstructionCount,
			loopTags(b),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", p.InstructionCount, ""})
	return t.Render()
}

// DiagnosticsTable lists layout diagnostics. It returns "" when there are
// none.
func DiagnosticsTable(diags []layout.Diagnostic) string {
	if len(diags) == 0 {
		return ""
	}
	t := newTable("Diagnostics")
	t.AppendHeader(table.Row{"Kind", "Function", "Block", "Loop", "Detail"})
	for _, d := range diags {
		t.AppendRow(table.Row{d.Kind.String(), d.Function, d.Block, d.Loop, d.Detail})
	}
	return t.Render()
}
