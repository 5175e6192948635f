// Package render turns layouts into text, tables, DOT graphs and markdown.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"

	"disviz/internal/disviz/styles"
	"disviz/internal/layout"
	"disviz/internal/symbols"
	"disviz/internal/ui/colorize"
)

// TextOptions controls Text.
type TextOptions struct {
	// Instructions prints every instruction below its block header.
	Instructions bool
	// Color enables ANSI styling; DISVIZ_NO_COLOR still wins.
	Color bool
	// ShowHidden prints instructions inside hidable ranges, which are
	// otherwise folded into one line per range.
	ShowHidden bool
}

// Text writes an ordering as an indented listing: a line per function change,
// a header per block and optionally its instructions.
func Text(w io.Writer, o layout.Ordering, opts TextOptions) error {
	color := opts.Color && colorize.Enabled()
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	fn := ""
	for i := range o {
		blk := &o[i]
		if i == 0 || blk.Function != fn {
			fn = blk.Function
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%s:\n", style(styles.Header, symbols.Demangle(fn)))
		}

		indent := strings.Repeat("  ", blk.Depth()+1)
		b.WriteString(indent)
		b.WriteString(style(styles.BlockName, blk.Name))
		b.WriteString("  ")
		b.WriteString(style(styles.Range, fmt.Sprintf("[%v-%v]", blk.Start, blk.End)))
		for d, occ := range blk.Loops {
			b.WriteString("  ")
			b.WriteString(style(styles.Loop(d+1), LoopTag(occ)))
		}
		if blk.IsLoopHeader {
			b.WriteString("  ")
			b.WriteString(style(styles.Header, "header"))
		}
		if blk.Variant == layout.PseudoLoop {
			b.WriteString("  ")
			b.WriteString(style(styles.Pseudo, "[pseudo]"))
		}
		b.WriteByte('\n')

		if !opts.Instructions || blk.Variant == layout.PseudoLoop {
			continue
		}
		insts := blk.Instructions
		for j := 0; j < len(insts); j++ {
			in := &insts[j]
			b.WriteString(indent)
			b.WriteString("  ")
			if h, ok := hidableAt(blk.Hidables, in.Address); ok && !opts.ShowHidden {
				n := 1
				for j+1 < len(insts) {
					if _, ok := hidableAt(blk.Hidables, insts[j+1].Address); !ok {
						break
					}
					j++
					n++
				}
				b.WriteString(style(styles.Folded, fmt.Sprintf("[+] %s, %d instructions", h.Name, n)))
				b.WriteByte('\n')
				continue
			}
			if color {
				b.WriteString(colorize.Instruction(uint64(in.Address), in.Text))
			} else {
				fmt.Fprintf(&b, "%x  %s", uint64(in.Address), in.Text)
			}
			if refs := in.Refs(); len(refs) > 0 {
				vars := make([]string, len(refs))
				for k, r := range refs {
					vars[k] = r.Name + "=" + r.Operand
				}
				b.WriteString("  ")
				b.WriteString(style(styles.Variable, "; "+strings.Join(vars, " ")))
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// LoopTag formats a loop occupancy as "L1 1/2".
func LoopTag(occ layout.LoopOccupancy) string {
	return fmt.Sprintf("%s %d/%d", occ.Name, occ.Index, occ.Total)
}

// hidableAt returns the first hidable whose inclusive range holds addr.
func hidableAt(hs []layout.Hidable, addr layout.Address) (layout.Hidable, bool) {
	for _, h := range hs {
		if h.Start <= addr && addr <= h.End {
			return h, true
		}
	}
	return layout.Hidable{}, false
}
