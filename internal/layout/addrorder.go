package layout

import "sort"

// AddressOrder lists annotated blocks by start address and splices a
// PseudoLoop rerun after the first region of every loop whose body is split
// into several address ranges.
//
// A loop is expanded where the scan steps out of it (the next block's loop
// names are a strict subset of the current block's) while the current block is
// not the loop's last visit. The rerun holds copies of every later block whose
// innermost loop is the same, up to and including the last visit. Each loop is
// expanded at most once per function.
func AddressOrder(blocks []Block) Ordering {
	sorted := make([]Block, len(blocks))
	for i := range blocks {
		sorted[i] = blocks[i].Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := make(Ordering, 0, len(sorted))
	processed := make(map[string]bool)
	for i := range sorted {
		cur := &sorted[i]
		out = append(out, *cur)
		if i+1 >= len(sorted) {
			break
		}
		inner, ok := cur.Innermost()
		if !ok || processed[inner.Name] {
			continue
		}
		if !leavesLoop(cur, &sorted[i+1]) || inner.Index == inner.Total {
			continue
		}
		processed[inner.Name] = true
		out = append(out, pseudoRun(sorted[i+1:], inner.Name)...)
	}
	return out
}

// leavesLoop reports whether next sits in a strict subset of cur's loops.
func leavesLoop(cur, next *Block) bool {
	names := cur.loopNames()
	nextNames := next.loopNames()
	if len(names) <= len(nextNames) {
		return false
	}
	for name := range nextNames {
		if _, ok := names[name]; !ok {
			return false
		}
	}
	return true
}

// pseudoRun copies the remaining visits of loop, stopping after the last one.
func pseudoRun(rest []Block, loop string) []Block {
	var run []Block
	for i := range rest {
		b := &rest[i]
		inner, ok := b.Innermost()
		if !ok || inner.Name != loop {
			continue
		}
		run = append(run, b.pseudo())
		if inner.Index == inner.Total {
			break
		}
	}
	return run
}
