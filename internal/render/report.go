package render

import (
	"fmt"
	"strings"

	"disviz/internal/disviz/styles"
	"disviz/internal/layout"
	"disviz/internal/pager"
	"disviz/internal/source"
	"disviz/internal/symbols"
)

// FunctionSummary counts the entries of one function layout.
type FunctionSummary struct {
	Name         string
	Blocks       int
	Pseudo       int
	Loops        int
	Instructions int
	Diagnostics  int
}

// Summarize counts blocks, pseudo copies, loops and instructions per
// function.
func Summarize(res *layout.Result) []FunctionSummary {
	out := make([]FunctionSummary, 0, len(res.Functions))
	for i := range res.Functions {
		fl := &res.Functions[i]
		s := FunctionSummary{
			Name:        fl.Name,
			Loops:       len(fl.Annotation.Totals),
			Diagnostics: len(fl.Diagnostics),
		}
		for j := range fl.AddressOrder {
			b := &fl.AddressOrder[j]
			switch b.Variant {
			case layout.Normal:
				s.Blocks++
				s.Instructions += b.InstructionCount
			case layout.PseudoLoop:
				s.Pseudo++
			}
		}
		out = append(out, s)
	}
	return out
}

// Report builds a markdown summary of a program layout.
func Report(title string, res *layout.Result, idx *source.Index) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	sums := Summarize(res)
	var blocks, pseudo, insts int
	for _, s := range sums {
		blocks += s.Blocks
		pseudo += s.Pseudo
		insts += s.Instructions
	}
	fmt.Fprintf(&b, "**%d** functions, **%d** blocks, **%d** pseudo-loop entries, **%d** instructions.\n\n",
		len(sums), blocks, pseudo, insts)
	if lo, hi, err := pager.New(res.AddressOrder, 0).AddressRange(); err == nil {
		fmt.Fprintf(&b, "Address range `%v`-`%v`.\n\n", lo, hi)
	}

	b.WriteString("## Functions\n\n")
	b.WriteString("| Function | Blocks | Pseudo | Loops | Instructions | Diagnostics |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|\n")
	for _, s := range sums {
		fmt.Fprintf(&b, "| `%s` | %d | %d | %d | %d | %d |\n",
			escapeCell(symbols.Short(s.Name)), s.Blocks, s.Pseudo, s.Loops, s.Instructions, s.Diagnostics)
	}

	if idx != nil && len(idx.Files) > 0 {
		b.WriteString("\n## Source files\n\n")
		for _, f := range idx.Files {
			fmt.Fprintf(&b, "- `%s` (%d lines)\n", f, len(idx.Lines(f)))
		}
	}

	if dt := DiagnosticsTable(res.Diagnostics); dt != "" {
		fmt.Fprintf(&b, "\n## Diagnostics\n\n```\n%s\n```\n", dt)
	}
	return b.String()
}

// RenderMarkdown renders markdown for a terminal of the given width.
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := styles.MarkdownRenderer(width)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
