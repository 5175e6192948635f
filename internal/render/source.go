package render

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"disviz/internal/layout"
	"disviz/internal/source"
)

// SourceTable lists a source file line by line with the addresses compiled
// from each line. src holds the file's lines; when it is nil only the
// indexed lines are listed, without text. Lines holding vector
// instructions are tagged VECTORIZED.
func SourceTable(file string, src []string, idx *source.Index) string {
	t := newTable(file)
	t.AppendHeader(table.Row{"Line", "Source", "Addresses", "Tags"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 72},
		{Number: 3, WidthMax: 40},
	})

	row := func(n int, text string) {
		addrs := idx.Addresses(file, n)
		strs := make([]string, len(addrs))
		for i, a := range addrs {
			strs[i] = a.String()
		}
		tag := ""
		if idx.Flags(file, n).Has(layout.FlagVector) {
			tag = "VECTORIZED"
		}
		t.AppendRow(table.Row{n, strings.ReplaceAll(text, "\t", "    "), strings.Join(strs, " "), tag})
	}
	if src == nil {
		for _, n := range idx.Lines(file) {
			row(n, "")
		}
	} else {
		for i, text := range src {
			row(i+1, text)
		}
	}
	return t.Render()
}
