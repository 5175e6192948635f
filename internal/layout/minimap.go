package layout

import "strings"

// DefaultSystemPrefixes marks source files that belong to the toolchain or
// system libraries rather than the analyzed program.
var DefaultSystemPrefixes = []string{"/usr/"}

// Minimap holds per-entry summaries of one ordering. All slices have the
// ordering's length and share its indexing.
type Minimap struct {
	Heights      []int
	BuiltIn      []bool
	StartAddress []Address
	Indent       []int
	Flags        []Flags
}

// Summarize projects an ordering into minimap arrays. Pseudo copies have zero
// height so summing heights counts every real instruction once.
func Summarize(o Ordering, prefixes []string) Minimap {
	m := Minimap{
		Heights:      make([]int, len(o)),
		BuiltIn:      make([]bool, len(o)),
		StartAddress: make([]Address, len(o)),
		Indent:       make([]int, len(o)),
		Flags:        make([]Flags, len(o)),
	}
	for i := range o {
		b := &o[i]
		switch b.Variant {
		case Normal:
			m.Heights[i] = b.InstructionCount
		case PseudoLoop:
			m.Heights[i] = 0
		}
		m.BuiltIn[i] = isBuiltIn(b, prefixes)
		m.StartAddress[i] = b.Start
		m.Indent[i] = b.Depth()
		m.Flags[i] = b.Flags
	}
	return m
}

// Len is the number of entries summarized.
func (m Minimap) Len() int { return len(m.Heights) }

func isBuiltIn(b *Block, prefixes []string) bool {
	for _, inst := range b.Instructions {
		for _, c := range inst.Correspondence {
			for _, p := range prefixes {
				if strings.HasPrefix(c.File, p) {
					return true
				}
			}
		}
	}
	return false
}
