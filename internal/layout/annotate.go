package layout

// unresolvedTotal marks an occupancy whose loop has not finished counting.
const unresolvedTotal = -1

// Annotation is the loop membership of one function's blocks.
type Annotation struct {
	// Stacks maps a block name to its loop stack, outermost first.
	Stacks map[string][]LoopOccupancy
	// Totals maps a loop name to its final occurrence count.
	Totals map[string]int
}

// visit is a processed marker for one block counted toward one loop.
type visit struct {
	block string
	loop  string
}

// Annotate computes the loop stack of every block. Blocks are visited in the
// given order, which should be address order. A block is counted toward its
// innermost enclosing loop only; enclosing loops still get a stack entry so the
// stack length equals the nesting depth.
func Annotate(blocks []Block, loops []LoopEntry) Annotation {
	idx := newLoopIndex(loops)
	ann := Annotation{
		Stacks: make(map[string][]LoopOccupancy, len(blocks)),
		Totals: make(map[string]int),
	}
	for i := range loops {
		counts := annotateLoop(blocks, &loops[i], idx, ann.Stacks, map[string]int{}, map[visit]bool{})
		for _, stack := range ann.Stacks {
			for j := range stack {
				if stack[j].Total != unresolvedTotal {
					continue
				}
				if n, ok := counts[stack[j].Name]; ok {
					stack[j].Total = n
				}
			}
		}
		for name, n := range counts {
			ann.Totals[name] = n
		}
	}
	return ann
}

// annotateLoop appends l's occupancies and recurses into its children. The
// per-tree counters are passed in and handed back so nothing outlives the
// walk of one top-level loop.
func annotateLoop(blocks []Block, l *LoopEntry, idx *loopIndex, stacks map[string][]LoopOccupancy, counts map[string]int, counted map[visit]bool) map[string]int {
	if _, ok := counts[l.Name]; !ok {
		counts[l.Name] = 0
	}
	seen := make(map[string]bool, len(blocks))
	for i := range blocks {
		b := &blocks[i]
		if seen[b.Name] || !idx.contains(l, b.Name) {
			continue
		}
		seen[b.Name] = true
		mark := visit{block: b.Name, loop: l.Name}
		if idx.childOf(l, b.Name) == nil && !counted[mark] {
			counted[mark] = true
			counts[l.Name]++
		}
		stacks[b.Name] = append(stacks[b.Name], LoopOccupancy{
			Name:  l.Name,
			Index: counts[l.Name],
			Total: unresolvedTotal,
		})
	}
	for i := range l.Children {
		counts = annotateLoop(blocks, &l.Children[i], idx, stacks, counts, counted)
	}
	return counts
}

// Apply returns copies of blocks with their loop stacks attached.
func (a Annotation) Apply(blocks []Block) []Block {
	out := make([]Block, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Clone()
		out[i].Loops = append([]LoopOccupancy(nil), a.Stacks[blocks[i].Name]...)
	}
	return out
}
